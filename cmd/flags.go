package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ca-srg/osrequests/internal/search/options"
	"github.com/ca-srg/osrequests/internal/search/query"
)

// splitPair splits a field=value flag argument.
func splitPair(flag, arg string) (string, string, error) {
	field, value, ok := strings.Cut(arg, "=")
	field = strings.TrimSpace(field)
	if !ok || field == "" {
		return "", "", fmt.Errorf("--%s expects field=value, got %q", flag, arg)
	}
	return field, value, nil
}

// termClauses turns repeated field=value arguments into term queries.
func termClauses(flag string, args []string) ([]query.Query, error) {
	clauses := make([]query.Query, 0, len(args))
	for _, arg := range args {
		field, value, err := splitPair(flag, arg)
		if err != nil {
			return nil, err
		}
		q, err := query.NewTerm(field, value)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, q)
	}
	return clauses, nil
}

// fuzzinessOption accepts an edit distance or AUTO.
func fuzzinessOption(v string) (options.Option, error) {
	if strings.EqualFold(v, "auto") {
		return options.WithFuzzinessAuto(), nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return options.Option{}, fmt.Errorf("fuzziness must be a number or AUTO, got %q", v)
	}
	return options.WithFuzziness(n), nil
}

// minimumShouldMatchOption accepts a count or a percentage such as "75%".
func minimumShouldMatchOption(v string) (options.Option, error) {
	if strings.HasSuffix(v, "%") {
		return options.WithMinimumShouldMatchPercent(v), nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return options.Option{}, fmt.Errorf("minimum_should_match must be a count or a percentage, got %q", v)
	}
	return options.WithMinimumShouldMatch(n), nil
}

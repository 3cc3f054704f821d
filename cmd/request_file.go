package cmd

import (
	"bytes"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/ca-srg/osrequests/internal/search/options"
	"github.com/ca-srg/osrequests/internal/search/query"
)

// requestFile is the YAML description of a query:
//
//	type: bool
//	size: 10
//	options:
//	  minimum_should_match: 1
//	must:
//	  - type: match
//	    field: title
//	    text: quick brown fox
//	    options:
//	      operator: and
//	filter:
//	  - type: terms
//	    field: tag
//	    values: [go, search]
//
// A null option value sends an explicit null.
type requestFile struct {
	Type    string         `yaml:"type"`
	Field   string         `yaml:"field"`
	Text    string         `yaml:"text"`
	Values  []string       `yaml:"values"`
	Size    *int           `yaml:"size"`
	Options map[string]any `yaml:"options"`
	Must    []requestFile  `yaml:"must"`
	Should  []requestFile  `yaml:"should"`
	MustNot []requestFile  `yaml:"must_not"`
	Filter  []requestFile  `yaml:"filter"`
}

func parseRequestFile(data []byte) (query.Query, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var rf requestFile
	if err := dec.Decode(&rf); err != nil {
		return nil, fmt.Errorf("invalid request file: %w", err)
	}
	return rf.build("$")
}

func (rf requestFile) build(path string) (query.Query, error) {
	opts, err := rf.options(path)
	if err != nil {
		return nil, err
	}
	if rf.Type != "bool" && len(rf.Must)+len(rf.Should)+len(rf.MustNot)+len(rf.Filter) > 0 {
		return nil, fmt.Errorf("%s: clauses are only allowed on bool queries", path)
	}

	switch rf.Type {
	case "match_all":
		return query.NewMatchAll(opts...)
	case "term":
		return query.NewTerm(rf.Field, rf.Text, opts...)
	case "terms":
		return query.NewTerms(rf.Field, rf.Values, opts...)
	case "match":
		return query.NewMatch(rf.Field, rf.Text, opts...)
	case "match_bool_prefix":
		return query.NewMatchBoolPrefix(rf.Field, rf.Text, opts...)
	case "match_phrase":
		return query.NewMatchPhrase(rf.Field, rf.Text, opts...)
	case "match_phrase_prefix":
		return query.NewMatchPhrasePrefix(rf.Field, rf.Text, opts...)
	case "multi_match":
		return query.NewMultiMatch(rf.Text, opts...)
	case "query_string":
		return query.NewQueryString(rf.Text, opts...)
	case "simple_query_string":
		return query.NewSimpleQueryString(rf.Text, opts...)
	case "bool":
		for _, c := range []struct {
			key     string
			clauses []requestFile
			wrap    func(...query.Query) options.Option
		}{
			{"must", rf.Must, query.Must},
			{"should", rf.Should, query.Should},
			{"must_not", rf.MustNot, query.MustNot},
			{"filter", rf.Filter, query.Filter},
		} {
			if len(c.clauses) == 0 {
				continue
			}
			built := make([]query.Query, 0, len(c.clauses))
			for i, child := range c.clauses {
				q, err := child.build(fmt.Sprintf("%s.%s[%d]", path, c.key, i))
				if err != nil {
					return nil, err
				}
				built = append(built, q)
			}
			opts = append(opts, c.wrap(built...))
		}
		return query.NewBool(opts...)
	case "":
		return nil, fmt.Errorf("%s: type is required", path)
	default:
		return nil, fmt.Errorf("%s: unknown query type %q", path, rf.Type)
	}
}

func (rf requestFile) options(path string) ([]options.Option, error) {
	var opts []options.Option
	if rf.Size != nil {
		opts = append(opts, options.WithSize(*rf.Size))
	}

	names := make([]string, 0, len(rf.Options))
	for name := range rf.Options {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		o, err := yamlOption(options.Name(name), rf.Options[name])
		if err != nil {
			return nil, fmt.Errorf("%s.options.%s: %w", path, name, err)
		}
		opts = append(opts, o)
	}
	return opts, nil
}

func yamlOption(name options.Name, v any) (options.Option, error) {
	if v == nil {
		return options.Null(name), nil
	}

	switch name {
	case options.Analyzer:
		return stringOption(v, func(s string) options.Option { return options.WithAnalyzer(options.AnalyzerKind(s)) })
	case options.Operator:
		return stringOption(v, func(s string) options.Option { return options.WithOperator(options.OperatorKind(s)) })
	case options.DefaultOperator:
		return stringOption(v, func(s string) options.Option { return options.WithDefaultOperator(options.OperatorKind(s)) })
	case options.ZeroTermsQuery:
		return stringOption(v, func(s string) options.Option {
			return options.WithZeroTermsQuery(options.ZeroTermsQueryKind(s))
		})
	case options.Rewrite:
		return stringOption(v, func(s string) options.Option { return options.WithRewrite(options.RewriteKind(s)) })
	case options.Type:
		return stringOption(v, func(s string) options.Option { return options.WithType(options.QueryType(s)) })
	case options.DefaultField:
		return stringOption(v, options.WithDefaultField)
	case options.Flags:
		return stringOption(v, options.WithFlags)
	case options.QuoteAnalyzer:
		return stringOption(v, options.WithQuoteAnalyzer)
	case options.QuoteFieldSuffix:
		return stringOption(v, options.WithQuoteFieldSuffix)
	case options.TimeZone:
		return stringOption(v, options.WithTimeZone)

	case options.Boost:
		return floatOption(v, options.WithBoost)
	case options.TieBreaker:
		return floatOption(v, options.WithTieBreaker)

	case options.Slop:
		return intOption(v, options.WithSlop)
	case options.PhraseSlop:
		return intOption(v, options.WithPhraseSlop)
	case options.PrefixLength:
		return intOption(v, options.WithPrefixLength)
	case options.FuzzyPrefixLength:
		return intOption(v, options.WithFuzzyPrefixLength)
	case options.MaxExpansions:
		return intOption(v, options.WithMaxExpansions)
	case options.FuzzyMaxExpansions:
		return intOption(v, options.WithFuzzyMaxExpansions)
	case options.MaxDeterminizedStates:
		return intOption(v, options.WithMaxDeterminizedStates)

	case options.Fuzziness:
		if s, ok := v.(string); ok {
			return fuzzinessOption(s)
		}
		return intOption(v, options.WithFuzziness)
	case options.MinimumShouldMatch:
		if s, ok := v.(string); ok {
			return minimumShouldMatchOption(s)
		}
		return intOption(v, options.WithMinimumShouldMatch)

	case options.AllowLeadingWildcard:
		return boolOption(v, options.WithAllowLeadingWildcard)
	case options.AnalyzeWildcard:
		return boolOption(v, options.WithAnalyzeWildcard)
	case options.AutoGenerateSynonymsPhraseQuery:
		return boolOption(v, options.WithAutoGenerateSynonymsPhraseQuery)
	case options.EnablePositionIncrements:
		return boolOption(v, options.WithEnablePositionIncrements)
	case options.FuzzyTranspositions:
		return boolOption(v, options.WithFuzzyTranspositions)
	case options.Lenient:
		return boolOption(v, options.WithLenient)

	case options.Fields:
		list, ok := v.([]any)
		if !ok {
			return options.Option{}, fmt.Errorf("expected a list of field names, got %T", v)
		}
		fields := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return options.Option{}, fmt.Errorf("expected a field name, got %T", item)
			}
			fields = append(fields, s)
		}
		return options.WithFields(fields...), nil
	}
	return options.Option{}, fmt.Errorf("unknown option")
}

func stringOption(v any, ctor func(string) options.Option) (options.Option, error) {
	s, ok := v.(string)
	if !ok {
		return options.Option{}, fmt.Errorf("expected a string, got %T", v)
	}
	return ctor(s), nil
}

func intOption(v any, ctor func(int) options.Option) (options.Option, error) {
	n, ok := v.(int)
	if !ok {
		return options.Option{}, fmt.Errorf("expected an integer, got %T", v)
	}
	return ctor(n), nil
}

func floatOption(v any, ctor func(float64) options.Option) (options.Option, error) {
	switch n := v.(type) {
	case float64:
		return ctor(n), nil
	case int:
		return ctor(float64(n)), nil
	}
	return options.Option{}, fmt.Errorf("expected a number, got %T", v)
}

func boolOption(v any, ctor func(bool) options.Option) (options.Option, error) {
	b, ok := v.(bool)
	if !ok {
		return options.Option{}, fmt.Errorf("expected a boolean, got %T", v)
	}
	return ctor(b), nil
}

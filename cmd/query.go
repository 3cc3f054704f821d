package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ca-srg/osrequests/internal/search/options"
	"github.com/ca-srg/osrequests/internal/search/query"
)

var (
	queryMatch              string
	queryMatchPhrase        string
	queryTerm               string
	queryMultiMatch         string
	queryQueryString        string
	queryMatchAll           bool
	queryBool               bool
	queryFields             []string
	queryMust               []string
	queryShould             []string
	queryMustNot            []string
	queryFilter             []string
	querySize               int
	queryAnalyzer           string
	queryOperator           string
	queryBoost              float64
	queryFuzziness          string
	queryMinimumShouldMatch string
	queryFile               string
	queryIndex              string
	queryDryRun             bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Build and run a search query",
	Long: `
Build a query from flags or a YAML file. With --dry-run the request body is
printed; otherwise it runs against OpenSearch and the parsed response is printed.

Examples:
  # Match query
  osrequests query --match title="quick brown fox" --operator and --dry-run

  # Multi-field query
  osrequests query --multi-match "search engine" --fields title,body --size 5

  # Bool query from term clauses
  osrequests query --bool --must status=published --must-not lang=de --should tag=go

  # Request described in YAML
  osrequests query --file request.yaml --index books
`,
	RunE: runQuery,
}

func init() {
	f := queryCmd.Flags()
	f.StringVar(&queryMatch, "match", "", "Match query: field=text")
	f.StringVar(&queryMatchPhrase, "match-phrase", "", "Match phrase query: field=text")
	f.StringVar(&queryTerm, "term", "", "Term query: field=value")
	f.StringVar(&queryMultiMatch, "multi-match", "", "Multi-match query text (use with --fields)")
	f.StringVar(&queryQueryString, "query-string", "", "Query string query text")
	f.BoolVar(&queryMatchAll, "match-all", false, "Match every document")
	f.BoolVar(&queryBool, "bool", false, "Bool query built from --must/--should/--must-not/--filter")
	f.StringSliceVar(&queryFields, "fields", nil, "Fields for --multi-match or --query-string")
	f.StringArrayVar(&queryMust, "must", nil, "Bool must clause: field=value (repeatable)")
	f.StringArrayVar(&queryShould, "should", nil, "Bool should clause: field=value (repeatable)")
	f.StringArrayVar(&queryMustNot, "must-not", nil, "Bool must_not clause: field=value (repeatable)")
	f.StringArrayVar(&queryFilter, "filter", nil, "Bool filter clause: field=value (repeatable)")
	f.IntVar(&querySize, "size", 0, "Number of hits to return")
	f.StringVar(&queryAnalyzer, "analyzer", "", "Analyzer: standard|simple|whitespace|stop|keyword|pattern|language|fingerprint")
	f.StringVar(&queryOperator, "operator", "", "Operator: and|or")
	f.Float64Var(&queryBoost, "boost", 1.0, "Relevance boost")
	f.StringVar(&queryFuzziness, "fuzziness", "", "Fuzziness: edit distance or AUTO")
	f.StringVar(&queryMinimumShouldMatch, "minimum-should-match", "", "Minimum should match: count or percentage")
	f.StringVar(&queryFile, "file", "", "YAML file describing the request")
	f.StringVar(&queryIndex, "index", "", "Index to search (default: OPENSEARCH_INDEX)")
	f.BoolVar(&queryDryRun, "dry-run", false, "Print the request body without sending it")
}

func runQuery(cmd *cobra.Command, args []string) error {
	q, err := buildQueryFromFlags(cmd)
	if err != nil {
		return err
	}

	if queryDryRun {
		body, err := q.Body()
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), body)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	rt, err := setupRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close(context.WithoutCancel(ctx))

	index, err := rt.index(queryIndex)
	if err != nil {
		return err
	}
	exec, err := rt.executor()
	if err != nil {
		return err
	}

	res, err := exec.Query(ctx, index, q)
	if err != nil {
		return err
	}
	summary, err := summarize(res)
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), summary)
}

func buildQueryFromFlags(cmd *cobra.Command) (query.Query, error) {
	modes := 0
	for _, set := range []bool{
		queryMatch != "", queryMatchPhrase != "", queryTerm != "", queryMultiMatch != "",
		queryQueryString != "", queryMatchAll, queryBool, queryFile != "",
	} {
		if set {
			modes++
		}
	}
	switch {
	case modes == 0:
		return nil, fmt.Errorf("no query given: use one of --match, --match-phrase, --term, --multi-match, --query-string, --match-all, --bool or --file")
	case modes > 1:
		return nil, fmt.Errorf("only one of --match, --match-phrase, --term, --multi-match, --query-string, --match-all, --bool or --file may be given")
	}

	if queryFile != "" {
		data, err := os.ReadFile(queryFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read request file: %w", err)
		}
		return parseRequestFile(data)
	}

	opts, err := queryFlagOptions(cmd)
	if err != nil {
		return nil, err
	}

	switch {
	case queryMatch != "":
		field, text, err := splitPair("match", queryMatch)
		if err != nil {
			return nil, err
		}
		return query.NewMatch(field, text, opts...)
	case queryMatchPhrase != "":
		field, text, err := splitPair("match-phrase", queryMatchPhrase)
		if err != nil {
			return nil, err
		}
		return query.NewMatchPhrase(field, text, opts...)
	case queryTerm != "":
		field, value, err := splitPair("term", queryTerm)
		if err != nil {
			return nil, err
		}
		return query.NewTerm(field, value, opts...)
	case queryMultiMatch != "":
		return query.NewMultiMatch(queryMultiMatch, opts...)
	case queryQueryString != "":
		return query.NewQueryString(queryQueryString, opts...)
	case queryMatchAll:
		return query.NewMatchAll(opts...)
	default:
		return buildBoolFromFlags(opts)
	}
}

func buildBoolFromFlags(opts []options.Option) (query.Query, error) {
	for _, c := range []struct {
		flag string
		args []string
		wrap func(...query.Query) options.Option
	}{
		{"must", queryMust, query.Must},
		{"should", queryShould, query.Should},
		{"must-not", queryMustNot, query.MustNot},
		{"filter", queryFilter, query.Filter},
	} {
		if len(c.args) == 0 {
			continue
		}
		clauses, err := termClauses(c.flag, c.args)
		if err != nil {
			return nil, err
		}
		opts = append(opts, c.wrap(clauses...))
	}
	return query.NewBool(opts...)
}

// queryFlagOptions collects the options whose flags were given explicitly.
// The variant rejects any it does not support.
func queryFlagOptions(cmd *cobra.Command) ([]options.Option, error) {
	f := cmd.Flags()
	var opts []options.Option

	if f.Changed("size") {
		opts = append(opts, options.WithSize(querySize))
	}
	if f.Changed("fields") {
		opts = append(opts, options.WithFields(queryFields...))
	}
	if f.Changed("analyzer") {
		opts = append(opts, options.WithAnalyzer(options.AnalyzerKind(queryAnalyzer)))
	}
	if f.Changed("operator") {
		opts = append(opts, options.WithOperator(options.OperatorKind(queryOperator)))
	}
	if f.Changed("boost") {
		opts = append(opts, options.WithBoost(queryBoost))
	}
	if f.Changed("fuzziness") {
		o, err := fuzzinessOption(queryFuzziness)
		if err != nil {
			return nil, err
		}
		opts = append(opts, o)
	}
	if f.Changed("minimum-should-match") {
		o, err := minimumShouldMatchOption(queryMinimumShouldMatch)
		if err != nil {
			return nil, err
		}
		opts = append(opts, o)
	}
	return opts, nil
}

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ca-srg/osrequests/internal/search/aggregation"
	"github.com/ca-srg/osrequests/internal/search/options"
	"github.com/ca-srg/osrequests/internal/search/query"
)

var (
	aggType               string
	aggName               string
	aggField              string
	aggFields             []string
	aggPrecisionThreshold int
	aggSigma              float64
	aggFilter             string
	aggSize               int
	aggIndex              string
	aggDryRun             bool
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Build and run an aggregation",
	Long: `
Build a single aggregation and run it, or print its body with --dry-run.

Examples:
  # Sum of a field over published documents, no hits
  osrequests aggregate --type sum --field price --filter status=published --size 0

  # Distinct count
  osrequests aggregate --type cardinality --field user_id --precision-threshold 1000 --dry-run

  # Matrix statistics over several fields
  osrequests aggregate --type matrix_stats --fields price,quantity
`,
	RunE: runAggregate,
}

func init() {
	f := aggregateCmd.Flags()
	f.StringVar(&aggType, "type", "", "Aggregation: sum|min|max|avg|cardinality|value_count|stats|extended_stats|matrix_stats|terms (required)")
	f.StringVar(&aggName, "name", "", "Aggregation name (default: the type)")
	f.StringVar(&aggField, "field", "", "Field to aggregate")
	f.StringSliceVar(&aggFields, "fields", nil, "Fields for matrix_stats")
	f.IntVar(&aggPrecisionThreshold, "precision-threshold", 0, "Cardinality precision threshold")
	f.Float64Var(&aggSigma, "sigma", 2, "Extended stats standard deviations for the bounds")
	f.StringVar(&aggFilter, "filter", "", "Restrict to documents matching a term: field=value")
	f.IntVar(&aggSize, "size", 0, "Number of hits to return alongside the aggregation")
	f.StringVar(&aggIndex, "index", "", "Index to search (default: OPENSEARCH_INDEX)")
	f.BoolVar(&aggDryRun, "dry-run", false, "Print the request body without sending it")

	_ = aggregateCmd.MarkFlagRequired("type")
}

func runAggregate(cmd *cobra.Command, args []string) error {
	agg, err := buildAggregationFromFlags(cmd)
	if err != nil {
		return err
	}

	if aggDryRun {
		body, err := agg.Body()
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

	index, err := rt.index(aggIndex)
	if err != nil {
		return err
	}
	exec, err := rt.executor()
	if err != nil {
		return err
	}

	res, err := exec.Aggregate(ctx, index, agg)
	if err != nil {
		return err
	}
	summary, err := summarize(res)
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), summary)
}

func buildAggregationFromFlags(cmd *cobra.Command) (aggregation.Aggregation, error) {
	f := cmd.Flags()
	name := aggName
	if name == "" {
		name = aggType
	}

	var opts []options.Option
	if f.Changed("size") {
		opts = append(opts, options.WithSize(aggSize))
	}
	if f.Changed("precision-threshold") {
		opts = append(opts, options.WithPrecisionThreshold(aggPrecisionThreshold))
	}
	if f.Changed("sigma") {
		opts = append(opts, options.WithSigma(aggSigma))
	}
	if aggFilter != "" {
		field, value, err := splitPair("filter", aggFilter)
		if err != nil {
			return nil, err
		}
		q, err := query.NewTerm(field, value)
		if err != nil {
			return nil, err
		}
		opts = append(opts, aggregation.WithFilter(q))
	}

	switch aggType {
	case "sum":
		return aggregation.NewSum(name, aggField, opts...)
	case "min":
		return aggregation.NewMin(name, aggField, opts...)
	case "max":
		return aggregation.NewMax(name, aggField, opts...)
	case "avg":
		return aggregation.NewAvg(name, aggField, opts...)
	case "cardinality":
		return aggregation.NewCardinality(name, aggField, opts...)
	case "value_count":
		return aggregation.NewValueCount(name, aggField, opts...)
	case "stats":
		return aggregation.NewStats(name, aggField, opts...)
	case "extended_stats":
		return aggregation.NewExtendedStats(name, aggField, opts...)
	case "matrix_stats":
		return aggregation.NewMatrixStats(name, aggFields, opts...)
	case "terms":
		return aggregation.NewTerms(name, aggField, opts...)
	default:
		return nil, fmt.Errorf("unknown aggregation type %q", aggType)
	}
}

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ca-srg/osrequests/internal/search/result"
)

func writeOutput(w io.Writer, v any) error {
	switch strings.ToLower(outputFormat) {
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q: use json or yaml", outputFormat)
	}
}

type resultSummary struct {
	ScrollID     string                    `json:"scroll_id,omitempty" yaml:"scroll_id,omitempty"`
	Took         int64                     `json:"took" yaml:"took"`
	TimedOut     bool                      `json:"timed_out" yaml:"timed_out"`
	Shards       shardSummary              `json:"shards" yaml:"shards"`
	Total        *totalSummary             `json:"total,omitempty" yaml:"total,omitempty"`
	MaxScore     *float64                  `json:"max_score,omitempty" yaml:"max_score,omitempty"`
	Hits         []hitSummary              `json:"hits,omitempty" yaml:"hits,omitempty"`
	Aggregations map[string]map[string]any `json:"aggregations,omitempty" yaml:"aggregations,omitempty"`
}

type shardSummary struct {
	Total      int `json:"total" yaml:"total"`
	Successful int `json:"successful" yaml:"successful"`
	Skipped    int `json:"skipped" yaml:"skipped"`
	Failed     int `json:"failed" yaml:"failed"`
}

type totalSummary struct {
	Value    int64  `json:"value" yaml:"value"`
	Relation string `json:"relation" yaml:"relation"`
}

type hitSummary struct {
	Index  string           `json:"index" yaml:"index"`
	ID     string           `json:"id" yaml:"id"`
	Score  string           `json:"score" yaml:"score"`
	Source any              `json:"source,omitempty" yaml:"source,omitempty"`
	Fields map[string][]any `json:"fields,omitempty" yaml:"fields,omitempty"`
}

func summarize(res *result.Result) (*resultSummary, error) {
	s := &resultSummary{
		ScrollID: res.ScrollID,
		Took:     res.Took,
		TimedOut: res.TimedOut,
		Shards: shardSummary{
			Total:      res.Shards.Total,
			Successful: res.Shards.Successful,
			Skipped:    res.Shards.Skipped,
			Failed:     res.Shards.Failed,
		},
	}

	if res.Hits != nil {
		s.Total = &totalSummary{Value: res.Hits.Total.Value, Relation: string(res.Hits.Total.Relation)}
		s.MaxScore = res.Hits.MaxScore
		for _, h := range res.Hits.Hits {
			hs := hitSummary{Index: h.Index, ID: h.ID, Score: h.Score, Fields: h.Fields}
			if h.HasSource() {
				if err := h.Decode(&hs.Source); err != nil {
					return nil, fmt.Errorf("hit %s: %w", h.ID, err)
				}
			}
			s.Hits = append(s.Hits, hs)
		}
	}

	if len(res.Aggregations) > 0 {
		s.Aggregations = make(map[string]map[string]any, len(res.Aggregations))
		for name, agg := range res.Aggregations {
			s.Aggregations[name] = aggregationView(agg)
		}
	}
	return s, nil
}

// aggregationView keeps only the fields the engine returned.
func aggregationView(a result.Aggregation) map[string]any {
	out := make(map[string]any)
	setInt := func(k string, v *int64) {
		if v != nil {
			out[k] = *v
		}
	}
	setFloat := func(k string, v *float64) {
		if v != nil {
			out[k] = *v
		}
	}

	setInt("doc_count", a.DocCount)
	if a.Value != nil {
		out["value"] = a.Value
	}
	if a.Type != nil {
		out["type"] = a.Type
	}
	setInt("count", a.Count)
	setFloat("min", a.Min)
	setFloat("max", a.Max)
	setFloat("avg", a.Avg)
	setFloat("sum", a.Sum)
	setFloat("sum_of_squares", a.SumOfSquares)
	setFloat("variance", a.Variance)
	setFloat("variance_population", a.VariancePopulation)
	setFloat("variance_sampling", a.VarianceSampling)
	setFloat("std_deviation", a.StdDeviation)
	setFloat("std_deviation_population", a.StdDeviationPopulation)
	setFloat("std_deviation_sampling", a.StdDeviationSampling)
	if a.StdDeviationBounds != nil {
		out["std_deviation_bounds"] = a.StdDeviationBounds
	}
	if len(a.Fields) > 0 {
		out["fields"] = a.Fields
	}
	setInt("doc_count_error_upper_bound", a.DocCountErrorUpperBound)
	setInt("sum_other_doc_count", a.SumOtherDocCount)
	if a.Buckets != nil {
		buckets := make([]map[string]any, 0, len(a.Buckets))
		for _, b := range a.Buckets {
			bv := map[string]any{"key": b.Key, "doc_count": b.DocCount}
			if b.KeyAsString != "" {
				bv["key_as_string"] = b.KeyAsString
			}
			for name, sub := range b.Aggregations {
				bv[name] = aggregationView(sub)
			}
			buckets = append(buckets, bv)
		}
		out["buckets"] = buckets
	}
	for name, sub := range a.Aggregations {
		out[name] = aggregationView(sub)
	}
	return out
}

package result

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Shards counts the shards that took part in a search.
type Shards struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}

// Relation tells whether Total.Value is exact or a lower bound.
type Relation string

const (
	RelationEq  Relation = "eq"
	RelationGte Relation = "gte"
)

// Total is the number of matching documents.
type Total struct {
	Value    int64    `json:"value"`
	Relation Relation `json:"relation"`
}

// Hit is one matching document.
type Hit struct {
	Index string
	ID    string
	// Score is the score as the engine sent it: the number's literal text,
	// or "null" when the search was not scored.
	Score  string
	Source json.RawMessage
	Fields map[string][]any
}

type wireHit struct {
	Index  string           `json:"_index"`
	ID     string           `json:"_id"`
	Score  json.RawMessage  `json:"_score"`
	Source json.RawMessage  `json:"_source"`
	Fields map[string][]any `json:"fields"`
}

func (h *Hit) UnmarshalJSON(data []byte) error {
	var w wireHit
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	score, err := literalText(w.Score)
	if err != nil {
		return fmt.Errorf("_score: %w", err)
	}
	*h = Hit{
		Index:  w.Index,
		ID:     w.ID,
		Score:  score,
		Source: nullToNil(w.Source),
		Fields: w.Fields,
	}
	return nil
}

// HasSource reports whether the hit carries its source document.
func (h Hit) HasSource() bool { return len(h.Source) > 0 }

// Decode unmarshals the source document into v.
func (h Hit) Decode(v any) error {
	if !h.HasSource() {
		return fmt.Errorf("hit %s/%s has no _source", h.Index, h.ID)
	}
	return json.Unmarshal(h.Source, v)
}

// Hits is the hits section of a response.
type Hits struct {
	Total    Total    `json:"total"`
	MaxScore *float64 `json:"max_score"`
	Hits     []Hit    `json:"hits"`
}

func (h *Hits) Len() int {
	if h == nil {
		return 0
	}
	return len(h.Hits)
}

// StdDeviationBounds is the band returned by extended_stats.
type StdDeviationBounds struct {
	Upper           *float64 `json:"upper"`
	Lower           *float64 `json:"lower"`
	UpperPopulation *float64 `json:"upper_population"`
	LowerPopulation *float64 `json:"lower_population"`
	UpperSampling   *float64 `json:"upper_sampling"`
	LowerSampling   *float64 `json:"lower_sampling"`
}

// MatrixStatsField holds the matrix_stats results for one field.
type MatrixStatsField struct {
	Name        string             `json:"name"`
	Count       *int64             `json:"count"`
	Mean        *float64           `json:"mean"`
	Variance    *float64           `json:"variance"`
	Skewness    *float64           `json:"skewness"`
	Kurtosis    *float64           `json:"kurtosis"`
	Covariance  map[string]float64 `json:"covariance"`
	Correlation map[string]float64 `json:"correlation"`
}

// Bucket is one group of a bucket aggregation. Key holds the key's literal
// text when the engine sent a number or boolean.
type Bucket struct {
	Key          string
	KeyAsString  string
	DocCount     int64
	Aggregations map[string]Aggregation
}

func (b *Bucket) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	key, err := literalText(raw["key"])
	if err != nil {
		return fmt.Errorf("key: %w", err)
	}
	var w struct {
		KeyAsString string `json:"key_as_string"`
		DocCount    int64  `json:"doc_count"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	subs, err := subAggregations(raw, bucketKeys)
	if err != nil {
		return err
	}
	*b = Bucket{Key: key, KeyAsString: w.KeyAsString, DocCount: w.DocCount, Aggregations: subs}
	return nil
}

// Aggregation holds the result of any supported aggregation. Only the fields
// that match the requested aggregation type are populated.
type Aggregation struct {
	DocCount *int64 `json:"doc_count"`
	Value    any    `json:"value"`
	Type     any    `json:"type"`

	Count *int64   `json:"count"`
	Min   *float64 `json:"min"`
	Max   *float64 `json:"max"`
	Avg   *float64 `json:"avg"`
	Sum   *float64 `json:"sum"`

	SumOfSquares           *float64            `json:"sum_of_squares"`
	Variance               *float64            `json:"variance"`
	VariancePopulation     *float64            `json:"variance_population"`
	VarianceSampling       *float64            `json:"variance_sampling"`
	StdDeviation           *float64            `json:"std_deviation"`
	StdDeviationPopulation *float64            `json:"std_deviation_population"`
	StdDeviationSampling   *float64            `json:"std_deviation_sampling"`
	StdDeviationBounds     *StdDeviationBounds `json:"std_deviation_bounds"`
	Fields                 []MatrixStatsField  `json:"fields"`

	DocCountErrorUpperBound *int64   `json:"doc_count_error_upper_bound"`
	SumOtherDocCount        *int64   `json:"sum_other_doc_count"`
	Buckets                 []Bucket `json:"buckets"`

	// Aggregations holds named sub-aggregations nested in this one.
	Aggregations map[string]Aggregation `json:"-"`
}

type aggregationFields Aggregation

func (a *Aggregation) UnmarshalJSON(data []byte) error {
	var f aggregationFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	subs, err := subAggregations(raw, aggregationKeys)
	if err != nil {
		return err
	}
	*a = Aggregation(f)
	a.Aggregations = subs
	return nil
}

// Sub returns the named sub-aggregation.
func (a Aggregation) Sub(name string) (Aggregation, bool) {
	sub, ok := a.Aggregations[name]
	return sub, ok
}

var aggregationKeys = map[string]bool{
	"doc_count": true, "value": true, "type": true,
	"count": true, "min": true, "max": true, "avg": true, "sum": true,
	"sum_of_squares": true, "variance": true, "variance_population": true, "variance_sampling": true,
	"std_deviation": true, "std_deviation_population": true, "std_deviation_sampling": true,
	"std_deviation_bounds": true, "fields": true,
	"doc_count_error_upper_bound": true, "sum_other_doc_count": true, "buckets": true,
	"meta": true, "value_as_string": true,
}

var bucketKeys = map[string]bool{"key": true, "key_as_string": true, "doc_count": true}

// subAggregations decodes every object-valued entry of raw that is not a
// known field and carries at least one aggregation field.
func subAggregations(raw map[string]json.RawMessage, known map[string]bool) (map[string]Aggregation, error) {
	var subs map[string]Aggregation
	for name, v := range raw {
		if known[name] || !isObject(v) {
			continue
		}
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(v, &probe); err != nil {
			return nil, err
		}
		if !hasAny(probe, aggregationKeys) {
			continue
		}
		var sub Aggregation
		if err := json.Unmarshal(v, &sub); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if subs == nil {
			subs = make(map[string]Aggregation)
		}
		subs[name] = sub
	}
	return subs, nil
}

func hasAny(m map[string]json.RawMessage, keys map[string]bool) bool {
	for k := range m {
		if keys[k] {
			return true
		}
	}
	return false
}

func isObject(v json.RawMessage) bool {
	v = bytes.TrimSpace(v)
	return len(v) > 0 && v[0] == '{'
}

// literalText returns a JSON scalar as text: strings unquoted, anything else
// as written on the wire.
func literalText(v json.RawMessage) (string, error) {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return "", nil
	}
	if v[0] == '"' {
		var s string
		err := json.Unmarshal(v, &s)
		return s, err
	}
	if v[0] == '{' || v[0] == '[' {
		return "", fmt.Errorf("expected a scalar, got %s", v)
	}
	return string(v), nil
}

func nullToNil(v json.RawMessage) json.RawMessage {
	if t := bytes.TrimSpace(v); len(t) == 0 || string(t) == "null" {
		return nil
	}
	return v
}

// Result is a parsed _search response.
type Result struct {
	ScrollID     string                 `json:"_scroll_id"`
	Took         int64                  `json:"took"`
	TimedOut     bool                   `json:"timed_out"`
	Shards       Shards                 `json:"_shards"`
	Hits         *Hits                  `json:"hits"`
	Aggregations map[string]Aggregation `json:"aggregations"`
}

// Aggregation returns the named top-level aggregation.
func (r *Result) Aggregation(name string) (Aggregation, bool) {
	a, ok := r.Aggregations[name]
	return a, ok
}

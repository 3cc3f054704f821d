package aggregation

import (
	"github.com/ca-srg/osrequests/internal/search/envelope"
	"github.com/ca-srg/osrequests/internal/search/options"
)

// fieldMetric is a metric computed over a single numeric field.
type fieldMetric struct{ Base }

func newFieldMetric(kind, name, field string, allowed []options.Name, opts []options.Option) (fieldMetric, error) {
	allowed = append([]options.Name{options.Field}, allowed...)
	b, err := newBase(kind, name, allowed, []options.Option{options.Value(options.Field, field)}, opts)
	if err != nil {
		return fieldMetric{}, err
	}
	if f, _ := options.Get[string](b.opts, options.Field); f == "" {
		return fieldMetric{}, options.Invalid(kind, options.Field, "is required")
	}
	return fieldMetric{b}, nil
}

// Field returns the aggregated document field.
func (m *fieldMetric) Field() string {
	f, _ := options.Get[string](m.opts, options.Field)
	return f
}

func (m *fieldMetric) Bare() (map[string]any, error) { return m.render() }

// Sum returns the sum of a field.
type Sum struct{ fieldMetric }

func NewSum(name, field string, opts ...options.Option) (*Sum, error) {
	m, err := newFieldMetric("sum", name, field, nil, opts)
	if err != nil {
		return nil, err
	}
	return &Sum{m}, nil
}

func (a *Sum) Body() (envelope.Body, error) { return envelope.Aggs(a) }

// Min returns the minimum of a field.
type Min struct{ fieldMetric }

func NewMin(name, field string, opts ...options.Option) (*Min, error) {
	m, err := newFieldMetric("min", name, field, nil, opts)
	if err != nil {
		return nil, err
	}
	return &Min{m}, nil
}

func (a *Min) Body() (envelope.Body, error) { return envelope.Aggs(a) }

// Max returns the maximum of a field.
type Max struct{ fieldMetric }

func NewMax(name, field string, opts ...options.Option) (*Max, error) {
	m, err := newFieldMetric("max", name, field, nil, opts)
	if err != nil {
		return nil, err
	}
	return &Max{m}, nil
}

func (a *Max) Body() (envelope.Body, error) { return envelope.Aggs(a) }

// Avg returns the average of a field.
type Avg struct{ fieldMetric }

func NewAvg(name, field string, opts ...options.Option) (*Avg, error) {
	m, err := newFieldMetric("avg", name, field, nil, opts)
	if err != nil {
		return nil, err
	}
	return &Avg{m}, nil
}

func (a *Avg) Body() (envelope.Body, error) { return envelope.Aggs(a) }

// Cardinality counts the unique values of a field. Counts below the precision
// threshold are close to exact.
type Cardinality struct{ fieldMetric }

func NewCardinality(name, field string, opts ...options.Option) (*Cardinality, error) {
	m, err := newFieldMetric("cardinality", name, field, []options.Name{options.PrecisionThreshold}, opts)
	if err != nil {
		return nil, err
	}
	return &Cardinality{m}, nil
}

func (a *Cardinality) Body() (envelope.Body, error) { return envelope.Aggs(a) }

// ValueCount counts the values the aggregation is based on.
type ValueCount struct{ fieldMetric }

func NewValueCount(name, field string, opts ...options.Option) (*ValueCount, error) {
	m, err := newFieldMetric("value_count", name, field, nil, opts)
	if err != nil {
		return nil, err
	}
	return &ValueCount{m}, nil
}

func (a *ValueCount) Body() (envelope.Body, error) { return envelope.Aggs(a) }

// Stats returns min, max, sum, avg and value_count in one aggregation.
type Stats struct{ fieldMetric }

func NewStats(name, field string, opts ...options.Option) (*Stats, error) {
	m, err := newFieldMetric("stats", name, field, nil, opts)
	if err != nil {
		return nil, err
	}
	return &Stats{m}, nil
}

func (a *Stats) Body() (envelope.Body, error) { return envelope.Aggs(a) }

// ExtendedStats adds sum_of_squares, variance, std_deviation and
// std_deviation_bounds to Stats. Sigma sets the width of the bounds.
type ExtendedStats struct{ fieldMetric }

func NewExtendedStats(name, field string, opts ...options.Option) (*ExtendedStats, error) {
	m, err := newFieldMetric("extended_stats", name, field, []options.Name{options.Sigma}, opts)
	if err != nil {
		return nil, err
	}
	return &ExtendedStats{m}, nil
}

func (a *ExtendedStats) Body() (envelope.Body, error) { return envelope.Aggs(a) }

// MatrixStats computes count, mean, variance, skewness, kurtosis and
// correlation across several fields.
type MatrixStats struct{ Base }

func NewMatrixStats(name string, fields []string, opts ...options.Option) (*MatrixStats, error) {
	b, err := newBase("matrix_stats", name, []options.Name{options.Fields}, []options.Option{options.WithFields(fields...)}, opts)
	if err != nil {
		return nil, err
	}
	return &MatrixStats{b}, nil
}

func (a *MatrixStats) Bare() (map[string]any, error) { return a.render() }

func (a *MatrixStats) Body() (envelope.Body, error) { return envelope.Aggs(a) }

package aggregation

import (
	"github.com/ca-srg/osrequests/internal/search/envelope"
	"github.com/ca-srg/osrequests/internal/search/options"
)

// Terms groups documents into one bucket per field value and counts them.
type Terms struct{ fieldMetric }

func NewTerms(name, field string, opts ...options.Option) (*Terms, error) {
	m, err := newFieldMetric("terms", name, field, nil, opts)
	if err != nil {
		return nil, err
	}
	return &Terms{m}, nil
}

func (a *Terms) Body() (envelope.Body, error) { return envelope.Aggs(a) }

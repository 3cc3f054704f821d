package query

import (
	"github.com/ca-srg/osrequests/internal/search/envelope"
	"github.com/ca-srg/osrequests/internal/search/options"
)

// Term matches documents whose field holds exactly value. The value is not
// analyzed, so use it on keyword fields. All hits score the same, which makes
// Term a good filter clause.
type Term struct{ Base }

func NewTerm(field, value string, opts ...options.Option) (*Term, error) {
	b, err := newBase("term", []options.Name{options.Field, options.QueryText}, []options.Option{
		options.Value(options.Field, field),
		options.Value(options.QueryText, value),
	}, opts)
	if err != nil {
		return nil, err
	}
	if _, err := nonEmptyString(b.opts, "term", options.Field); err != nil {
		return nil, err
	}
	if _, err := options.Require[string](b.opts, "term", options.QueryText); err != nil {
		return nil, err
	}
	return &Term{b}, nil
}

func (q *Term) Bare() (map[string]any, error) {
	field, _ := options.Get[string](q.opts, options.Field)
	value, _ := options.Get[string](q.opts, options.QueryText)
	return map[string]any{"term": map[string]any{field: value}}, nil
}

func (q *Term) Body() (envelope.Body, error) { return envelope.Query(q) }

// Terms matches documents whose field holds any of values.
type Terms struct{ Base }

func NewTerms(field string, values []string, opts ...options.Option) (*Terms, error) {
	b, err := newBase("terms", []options.Name{options.Field, options.Values, options.Boost}, []options.Option{
		options.Value(options.Field, field),
		options.Value(options.Values, append([]string(nil), values...)),
	}, opts)
	if err != nil {
		return nil, err
	}
	if _, err := nonEmptyString(b.opts, "terms", options.Field); err != nil {
		return nil, err
	}
	if v, _ := options.Get[[]string](b.opts, options.Values); len(v) == 0 {
		return nil, options.Invalid("terms", options.Values, "must list at least one value")
	}
	return &Terms{b}, nil
}

func (q *Terms) Bare() (map[string]any, error) {
	field, _ := options.Get[string](q.opts, options.Field)
	values, _ := options.Get[[]string](q.opts, options.Values)
	inner := envelope.NonEmpty(q.opts, options.Field, options.Values)
	inner[field] = values
	return map[string]any{"terms": inner}, nil
}

func (q *Terms) Body() (envelope.Body, error) { return envelope.Query(q) }

// MatchAll returns every document. It ignores all options.
type MatchAll struct{ Base }

func NewMatchAll(opts ...options.Option) (*MatchAll, error) {
	b, err := newBase("match_all", []options.Name{options.Boost}, nil, opts)
	if err != nil {
		return nil, err
	}
	return &MatchAll{b}, nil
}

func (q *MatchAll) Bare() (map[string]any, error) {
	return map[string]any{"match_all": map[string]any{}}, nil
}

func (q *MatchAll) Body() (envelope.Body, error) { return envelope.Query(q) }

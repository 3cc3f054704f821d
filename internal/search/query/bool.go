package query

import (
	"github.com/ca-srg/osrequests/internal/search/envelope"
	"github.com/ca-srg/osrequests/internal/search/options"
)

// Bool combines child queries. Each clause option may be given more than
// once; children keep the order they were supplied in.
type Bool struct{ Base }

var clauses = []options.Name{options.Must, options.Should, options.MustNot, options.Filter}

// Must adds clauses every hit has to match. They contribute to the score.
func Must(qs ...Query) options.Option { return options.Append(options.Must, qs...) }

// Should adds clauses hits are expected to match.
func Should(qs ...Query) options.Option { return options.Append(options.Should, qs...) }

// MustNot adds clauses no hit may match.
func MustNot(qs ...Query) options.Option { return options.Append(options.MustNot, qs...) }

// Filter adds clauses every hit has to match without affecting the score.
func Filter(qs ...Query) options.Option { return options.Append(options.Filter, qs...) }

func NewBool(opts ...options.Option) (*Bool, error) {
	allowed := append([]options.Name{options.MinimumShouldMatch, options.Boost}, clauses...)
	b, err := newBase("bool", allowed, nil, opts)
	if err != nil {
		return nil, err
	}
	for _, c := range clauses {
		children, _ := options.Get[[]Query](b.opts, c)
		for _, child := range children {
			if envelope.IsNil(child) {
				return nil, options.Invalid("bool", c, "clause is nil")
			}
		}
	}
	return &Bool{b}, nil
}

// Clauses returns the children under one of must, should, must_not or filter.
func (q *Bool) Clauses(name options.Name) []Query {
	children, _ := options.Get[[]Query](q.opts, name)
	return children
}

func (q *Bool) Bare() (map[string]any, error) {
	inner := envelope.NonEmpty(q.opts, clauses...)
	for _, c := range clauses {
		children := q.Clauses(c)
		if len(children) == 0 {
			continue
		}
		rendered := make([]any, 0, len(children))
		for _, child := range children {
			bare, err := child.Bare()
			if err != nil {
				return nil, err
			}
			rendered = append(rendered, bare)
		}
		inner[string(c)] = rendered
	}
	return map[string]any{"bool": inner}, nil
}

func (q *Bool) Body() (envelope.Body, error) { return envelope.Query(q) }

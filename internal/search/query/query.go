// Package query builds the query nodes of a _search request.
//
// Every constructor validates its options up front and returns an
// *options.ValidationError on failure. A constructed node is never modified
// afterwards, so rendering it is a pure function of its fields.
package query

import (
	"github.com/ca-srg/osrequests/internal/search/envelope"
	"github.com/ca-srg/osrequests/internal/search/options"
)

// Query is a node that renders into the "query" section of a request.
type Query interface {
	envelope.Renderer
	// Kind is the node's wire tag, e.g. "match" or "bool".
	Kind() string
	// Body wraps the bare form as {"query": ...} plus the node's own size.
	Body() (envelope.Body, error)
}

// Base carries what every query node has: its tag and its option set.
// A Base on its own has no bare form.
type Base struct {
	kind string
	opts options.Set
}

// NewBase returns a node with no bare form of its own. Rendering it fails
// with *envelope.UnimplementedRenderError.
func NewBase(kind string, opts ...options.Option) (*Base, error) {
	b, err := newBase(kind, nil, nil, opts)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func newBase(kind string, allowed []options.Name, required, opts []options.Option) (Base, error) {
	allowed = append([]options.Name{options.Size}, allowed...)
	set, err := options.NewFixedSet(kind, allowed, required, opts...)
	if err != nil {
		return Base{}, err
	}
	return Base{kind: kind, opts: set}, nil
}

func (b *Base) Kind() string { return b.kind }

// Options returns the fields the node was constructed with.
func (b *Base) Options() options.Set { return b.opts }

func (b *Base) Size() (int, bool) { return options.Get[int](b.opts, options.Size) }

func (b *Base) Bare() (map[string]any, error) {
	return nil, &envelope.UnimplementedRenderError{Kind: b.kind}
}

func (b *Base) Body() (envelope.Body, error) { return envelope.Query(b) }

// nonEmptyString fails when name is missing from s or holds "".
func nonEmptyString(s options.Set, kind string, name options.Name) (string, error) {
	v, err := options.Require[string](s, kind, name)
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", options.Invalid(kind, name, "must not be empty")
	}
	return v, nil
}

// fieldKeyed renders {<tag>: {<field>: {...options}}}. The field is the key
// and never repeated inside the option dict.
type fieldKeyed struct {
	Base
}

func newFieldKeyed(kind string, allowed []options.Name, field, text string, opts []options.Option) (fieldKeyed, error) {
	allowed = append([]options.Name{options.Field, options.QueryText}, allowed...)
	b, err := newBase(kind, allowed, []options.Option{
		options.Value(options.Field, field),
		options.Value(options.QueryText, text),
	}, opts)
	if err != nil {
		return fieldKeyed{}, err
	}
	if _, err := nonEmptyString(b.opts, kind, options.Field); err != nil {
		return fieldKeyed{}, err
	}
	if _, err := nonEmptyString(b.opts, kind, options.QueryText); err != nil {
		return fieldKeyed{}, err
	}
	return fieldKeyed{Base: b}, nil
}

// Field returns the targeted document field.
func (q *fieldKeyed) Field() string {
	f, _ := options.Get[string](q.opts, options.Field)
	return f
}

func (q *fieldKeyed) Bare() (map[string]any, error) {
	return map[string]any{
		q.kind: map[string]any{
			q.Field(): envelope.NonEmpty(q.opts, options.Field),
		},
	}, nil
}

// flat renders {<tag>: {...options}}, fields included.
type flat struct {
	Base
}

func newFlat(kind string, allowed []options.Name, text string, opts []options.Option) (flat, error) {
	allowed = append([]options.Name{options.QueryText}, allowed...)
	b, err := newBase(kind, allowed, []options.Option{options.Value(options.QueryText, text)}, opts)
	if err != nil {
		return flat{}, err
	}
	if _, err := nonEmptyString(b.opts, kind, options.QueryText); err != nil {
		return flat{}, err
	}
	return flat{Base: b}, nil
}

func (q *flat) Bare() (map[string]any, error) {
	return map[string]any{q.kind: envelope.NonEmpty(q.opts)}, nil
}

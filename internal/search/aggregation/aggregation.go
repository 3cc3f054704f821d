// Package aggregation builds the aggregation nodes of a _search request.
package aggregation

import (
	"github.com/ca-srg/osrequests/internal/search/envelope"
	"github.com/ca-srg/osrequests/internal/search/options"
	"github.com/ca-srg/osrequests/internal/search/query"
)

// Aggregation is a node that renders under its name in the "aggs" section of
// a request.
type Aggregation interface {
	envelope.NamedRenderer
	Kind() string
	// Body wraps the bare form as {"aggs": {<name>: ...}} plus the node's own size.
	Body() (envelope.Body, error)
}

// WithFilter narrows the documents the aggregation runs over.
func WithFilter(q query.Query) options.Option {
	if q == nil {
		return options.Null(options.Filter)
	}
	return options.Value(options.Filter, q)
}

// WithAggs nests child aggregations. Children render under their own names
// and keep the order they were supplied in.
func WithAggs(children ...Aggregation) options.Option {
	return options.Append(options.Aggs, children...)
}

// Base carries the name, filter and child aggregations shared by every
// variant. A Base on its own has no bare form.
type Base struct {
	kind string
	name string
	opts options.Set
}

// NewBase returns a node with no bare form of its own. Rendering it fails
// with *envelope.UnimplementedRenderError.
func NewBase(kind, name string, opts ...options.Option) (*Base, error) {
	b, err := newBase(kind, name, nil, nil, opts)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func newBase(kind, name string, allowed []options.Name, required, opts []options.Option) (Base, error) {
	if name == "" {
		return Base{}, options.Invalid(kind, options.AggName, "is required")
	}
	allowed = append([]options.Name{options.Size, options.Filter, options.Aggs}, allowed...)
	set, err := options.NewFixedSet(kind, allowed, required, opts...)
	if err != nil {
		return Base{}, err
	}
	b := Base{kind: kind, name: name, opts: set}
	if err := b.checkChildren(); err != nil {
		return Base{}, err
	}
	return b, nil
}

func (b *Base) checkChildren() error {
	if f, ok := b.Filter(); ok && envelope.IsNil(f) {
		return options.Invalid(b.kind, options.Filter, "filter query is nil")
	}
	seen := make(map[string]struct{})
	for _, c := range b.Children() {
		if envelope.IsNil(c) {
			return options.Invalid(b.kind, options.Aggs, "child aggregation is nil")
		}
		if _, dup := seen[c.Name()]; dup {
			return options.Invalid(b.kind, options.Aggs, "duplicate child aggregation %q", c.Name())
		}
		seen[c.Name()] = struct{}{}
	}
	return nil
}

func (b *Base) Kind() string { return b.kind }

// Name is the key the aggregation appears under in the request and response.
func (b *Base) Name() string { return b.name }

// Options returns the fields the node was constructed with.
func (b *Base) Options() options.Set { return b.opts }

func (b *Base) Size() (int, bool) { return options.Get[int](b.opts, options.Size) }

// Filter returns the attached filter query, if any.
func (b *Base) Filter() (query.Query, bool) {
	return options.Get[query.Query](b.opts, options.Filter)
}

// Children returns the nested aggregations.
func (b *Base) Children() []Aggregation {
	children, _ := options.Get[[]Aggregation](b.opts, options.Aggs)
	return children
}

func (b *Base) Bare() (map[string]any, error) {
	return nil, &envelope.UnimplementedRenderError{Kind: b.kind}
}

func (b *Base) Body() (envelope.Body, error) { return envelope.Aggs(b) }

// render places the tagged option dict, the filter and the child aggregations
// side by side: {<tag>: {...}, "filter": {...}, "aggs": {...}}.
func (b *Base) render() (map[string]any, error) {
	out := map[string]any{
		b.kind: envelope.NonEmpty(b.opts, options.Filter, options.Aggs),
	}
	if f, ok := b.Filter(); ok {
		bare, err := f.Bare()
		if err != nil {
			return nil, err
		}
		if err := envelope.Merge(out, map[string]any{string(options.Filter): bare}); err != nil {
			return nil, err
		}
	}
	if children := b.Children(); len(children) > 0 {
		aggs := make(map[string]any, len(children))
		for _, c := range children {
			bare, err := c.Bare()
			if err != nil {
				return nil, err
			}
			aggs[c.Name()] = bare
		}
		if err := envelope.Merge(out, map[string]any{string(options.Aggs): aggs}); err != nil {
			return nil, err
		}
	}
	return out, nil
}

package envelope

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ca-srg/osrequests/internal/search/options"
)

type stubNode struct {
	name  string
	bare  map[string]any
	size  int
	sized bool
	err   error
}

func (n stubNode) Bare() (map[string]any, error) { return n.bare, n.err }
func (n stubNode) Size() (int, bool)             { return n.size, n.sized }
func (n stubNode) Name() string                  { return n.name }

func TestQuery(t *testing.T) {
	b, err := Query(stubNode{bare: map[string]any{"match_all": map[string]any{}}})
	require.NoError(t, err)
	js, err := b.JSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"query":{"match_all":{}}}`, string(js))

	b, err = Query(stubNode{bare: map[string]any{"match_all": map[string]any{}}, size: 0, sized: true})
	require.NoError(t, err)
	js, err = b.JSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"query":{"match_all":{}},"size":0}`, string(js))
}

func TestAggs(t *testing.T) {
	n := stubNode{name: "total_price", bare: map[string]any{"sum": map[string]any{"field": "price"}}}
	b, err := Aggs(n)
	require.NoError(t, err)
	js, err := b.JSON()
	require.NoError(t, err)
	assert.Equal(t, `{"aggs":{"total_price":{"sum":{"field":"price"}}}}`, string(js))
}

func TestBarePropagatesError(t *testing.T) {
	boom := &UnimplementedRenderError{Kind: "query"}
	_, err := Query(stubNode{err: boom})
	assert.True(t, errors.Is(err, ErrUnimplementedRender))

	_, err = Aggs(stubNode{name: "x", err: boom})
	assert.ErrorIs(t, err, ErrUnimplementedRender)
	assert.EqualError(t, err, "query: bare form is not implemented; use a concrete variant")
}

func TestNonEmpty_AlwaysExcludesNameAndSize(t *testing.T) {
	allowed := []options.Name{options.AggName, options.Size, options.Field, options.Boost, options.Sigma}
	s, err := options.NewSet("test", allowed,
		options.Value(options.AggName, "stats_of_price"),
		options.WithSize(10),
		options.WithField("price"),
		options.Null(options.Sigma),
	)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"field": "price"}, NonEmpty(s))
	assert.Empty(t, NonEmpty(s, options.Field))
}

func TestIsNil(t *testing.T) {
	var typed *stubNode
	assert.True(t, IsNil(nil))
	assert.True(t, IsNil(typed))
	assert.False(t, IsNil(stubNode{}))
	assert.False(t, IsNil(&stubNode{}))
}

func TestMerge(t *testing.T) {
	dst := map[string]any{"stats": map[string]any{"field": "price"}}
	require.NoError(t, Merge(dst, map[string]any{"filter": map[string]any{}}))
	require.NoError(t, Merge(dst, map[string]any{"aggs": map[string]any{}}))
	assert.Len(t, dst, 3)

	err := Merge(dst, map[string]any{"stats": 1})
	assert.EqualError(t, err, `envelope: key "stats" rendered twice`)
}

// Package envelope turns the bare form of a query or aggregation into a
// complete _search request body.
package envelope

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/ca-srg/osrequests/internal/search/options"
)

// Body is a request body ready to be sent to the _search endpoint.
type Body map[string]any

// JSON encodes the body. Map keys are emitted in sorted order, so equal
// bodies always encode to identical bytes.
func (b Body) JSON() ([]byte, error) {
	return json.Marshal(b)
}

// Indent encodes the body for display.
func (b Body) Indent() ([]byte, error) {
	return json.MarshalIndent(b, "", "  ")
}

// Renderer is a node that can produce its own bare form.
type Renderer interface {
	Bare() (map[string]any, error)
	// Size is the top-level result size. Only the root node's size is used.
	Size() (int, bool)
}

// NamedRenderer is a Renderer that appears under a caller-chosen key, as
// aggregations do under "aggs".
type NamedRenderer interface {
	Renderer
	Name() string
}

// Query wraps r as {"query": <bare>} and attaches "size" when r has one.
func Query(r Renderer) (Body, error) {
	bare, err := r.Bare()
	if err != nil {
		return nil, err
	}
	return withSize(Body{"query": bare}, r), nil
}

// Aggs wraps r as {"aggs": {<name>: <bare>}} and attaches "size" when r has one.
func Aggs(r NamedRenderer) (Body, error) {
	bare, err := r.Bare()
	if err != nil {
		return nil, err
	}
	return withSize(Body{"aggs": map[string]any{r.Name(): bare}}, r), nil
}

func withSize(b Body, r Renderer) Body {
	if n, ok := r.Size(); ok {
		b["size"] = n
	}
	return b
}

// IsNil reports whether r is nil or an interface holding a nil pointer.
func IsNil(r Renderer) bool {
	if r == nil {
		return true
	}
	v := reflect.ValueOf(r)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// NonEmpty returns the valued fields of s keyed by wire name. Unset and null
// fields are dropped, as is everything in exclude. The envelope-level names
// "name" and "size" are always excluded.
func NonEmpty(s options.Set, exclude ...options.Name) map[string]any {
	return s.Dict(append([]options.Name{options.AggName, options.Size}, exclude...)...)
}

// Merge copies the keys of src into dst. Siblings never overwrite each other;
// a key present in both is an error.
func Merge(dst, src map[string]any) error {
	for k, v := range src {
		if _, ok := dst[k]; ok {
			return fmt.Errorf("envelope: key %q rendered twice", k)
		}
		dst[k] = v
	}
	return nil
}

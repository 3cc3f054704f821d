package options

import (
	"fmt"
	"slices"
)

type state uint8

const (
	stateNull state = iota + 1
	stateValue
)

type entry struct {
	state state
	value any
}

// Set holds the fields explicitly supplied to a node at construction time.
// A name is in one of three states: unset (absent), null (explicitly cleared)
// or carrying a value. Only the last one is ever serialized.
type Set struct {
	entries map[Name]entry
}

// NewSet applies opts in order, rejecting any option whose name is not in
// allowed or whose value failed its own domain check.
func NewSet(variant string, allowed []Name, opts ...Option) (Set, error) {
	s := Set{entries: make(map[Name]entry, len(opts))}
	for _, o := range opts {
		if o.name == "" {
			return Set{}, Invalid(variant, "", "option without a name")
		}
		if !slices.Contains(allowed, o.name) {
			return Set{}, Invalid(variant, o.name, "option is not supported")
		}
		if o.reason != "" {
			return Set{}, Invalid(variant, o.name, "%s", o.reason)
		}
		if o.null {
			s.entries[o.name] = entry{state: stateNull}
			continue
		}
		v := o.value
		if o.merge != nil {
			prev := s.entries[o.name]
			merged, err := o.merge(prev.value)
			if err != nil {
				return Set{}, Invalid(variant, o.name, "%v", err)
			}
			v = merged
		}
		if o.name == Size {
			if n, ok := v.(int); !ok || n < 0 {
				return Set{}, Invalid(variant, Size, "must be a non-negative int, got %v", v)
			}
		}
		s.entries[o.name] = entry{state: stateValue, value: v}
	}
	return s, nil
}

// NewFixedSet is NewSet with fixed applied first. The names in fixed come from
// constructor arguments, so opts may not set them again.
func NewFixedSet(variant string, allowed []Name, fixed []Option, opts ...Option) (Set, error) {
	for _, o := range opts {
		for _, f := range fixed {
			if o.name == f.name {
				return Set{}, Invalid(variant, o.name, "is a constructor argument and cannot be set as an option")
			}
		}
	}
	return NewSet(variant, allowed, slices.Concat(fixed, opts)...)
}

// Has reports whether name carries a value.
func (s Set) Has(name Name) bool {
	e, ok := s.entries[name]
	return ok && e.state == stateValue
}

// IsNull reports whether name was explicitly set to null.
func (s Set) IsNull(name Name) bool {
	e, ok := s.entries[name]
	return ok && e.state == stateNull
}

// Lookup returns the value of name if it carries one.
func (s Set) Lookup(name Name) (any, bool) {
	e, ok := s.entries[name]
	if !ok || e.state != stateValue {
		return nil, false
	}
	return e.value, true
}

// Names returns every name that carries a value, sorted.
func (s Set) Names() []Name {
	names := make([]Name, 0, len(s.entries))
	for n, e := range s.entries {
		if e.state == stateValue {
			names = append(names, n)
		}
	}
	slices.Sort(names)
	return names
}

// Dict returns the valued fields keyed by wire name, minus exclude.
// Unset and null fields are always omitted.
func (s Set) Dict(exclude ...Name) map[string]any {
	out := make(map[string]any, len(s.entries))
	for n, e := range s.entries {
		if e.state != stateValue || slices.Contains(exclude, n) {
			continue
		}
		out[string(n)] = e.value
	}
	return out
}

// Get returns the value of name as T.
func Get[T any](s Set, name Name) (T, bool) {
	var zero T
	v, ok := s.Lookup(name)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// Require returns the value of name as T, or a *ValidationError naming the
// variant and field when it is missing.
func Require[T any](s Set, variant string, name Name) (T, error) {
	v, ok := Get[T](s, name)
	if !ok {
		return v, Invalid(variant, name, "is required")
	}
	return v, nil
}

func (s Set) String() string {
	return fmt.Sprint(s.Dict())
}

package options

import "fmt"

// Option supplies one named field to a node constructor.
type Option struct {
	name   Name
	value  any
	null   bool
	reason string
	merge  func(prev any) (any, error)
}

// Name returns the wire key this option writes.
func (o Option) Name() Name { return o.name }

// Value sets name to v without the With* constructor's domain check. NewSet
// still rejects a size that is not a non-negative int.
func Value(name Name, v any) Option {
	return Option{name: name, value: v}
}

// Null marks name as explicitly null. A null field is never serialized.
func Null(name Name) Option {
	return Option{name: name, null: true}
}

// Append adds values to the list held under name, keeping earlier entries.
func Append[T any](name Name, values ...T) Option {
	return Option{
		name: name,
		merge: func(prev any) (any, error) {
			var list []T
			if prev != nil {
				p, ok := prev.([]T)
				if !ok {
					return nil, fmt.Errorf("cannot append %T to %T", values, prev)
				}
				list = append(list, p...)
			}
			return append(list, values...), nil
		},
	}
}

func invalid(name Name, format string, args ...any) Option {
	return Option{name: name, reason: fmt.Sprintf(format, args...)}
}

func nonNegative(name Name, n int) Option {
	if n < 0 {
		return invalid(name, "must be non-negative, got %d", n)
	}
	return Value(name, n)
}

func positive(name Name, n int) Option {
	if n <= 0 {
		return invalid(name, "must be positive, got %d", n)
	}
	return Value(name, n)
}

package options

import (
	"errors"
	"fmt"
)

// ErrValidation is matched by every *ValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// ValidationError reports a node or option constructed with a missing required
// field or a value outside its domain.
type ValidationError struct {
	Variant string
	Field   Name
	Reason  string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Variant != "" && e.Field != "":
		return fmt.Sprintf("%s: %s: %s", e.Variant, e.Field, e.Reason)
	case e.Field != "":
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	case e.Variant != "":
		return fmt.Sprintf("%s: %s", e.Variant, e.Reason)
	default:
		return e.Reason
	}
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid builds a *ValidationError for the given variant and field.
func Invalid(variant string, field Name, format string, args ...any) *ValidationError {
	return &ValidationError{
		Variant: variant,
		Field:   field,
		Reason:  fmt.Sprintf(format, args...),
	}
}

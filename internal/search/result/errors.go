package result

import (
	"errors"
	"fmt"
)

// ErrSchema is matched by every *SchemaValidationError.
var ErrSchema = errors.New("response does not match the search result schema")

// SchemaValidationError reports a response that is missing a required field
// or carries a value of the wrong type. Path is dotted from the document
// root, e.g. "hits.hits[2]".
type SchemaValidationError struct {
	Path   string
	Field  string
	Reason string
}

func (e *SchemaValidationError) Error() string {
	path := e.Path
	if path == "" {
		path = "$"
	}
	if e.Field != "" {
		return fmt.Sprintf("result: %s: missing required field %q", path, e.Field)
	}
	return fmt.Sprintf("result: %s: %s", path, e.Reason)
}

func (e *SchemaValidationError) Is(target error) bool {
	return target == ErrSchema
}

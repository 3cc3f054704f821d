package envelope

import (
	"errors"
	"fmt"
)

// ErrUnimplementedRender is matched by every *UnimplementedRenderError.
var ErrUnimplementedRender = errors.New("render not implemented")

// UnimplementedRenderError is returned when a base node is rendered directly
// instead of through a concrete variant.
type UnimplementedRenderError struct {
	Kind string
}

func (e *UnimplementedRenderError) Error() string {
	return fmt.Sprintf("%s: bare form is not implemented; use a concrete variant", e.Kind)
}

func (e *UnimplementedRenderError) Is(target error) bool {
	return target == ErrUnimplementedRender
}

package search

import (
	"errors"
	"fmt"
)

// ErrCapability is matched by every *CapabilityError.
var ErrCapability = errors.New("search collaborator cannot execute searches")

// CapabilityError reports a collaborator that cannot run searches, such as a
// nil Searcher. It is raised before anything is sent and is never retried.
type CapabilityError struct {
	Searcher string
	Reason   string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("wrong search collaborator %s: %s", e.Searcher, e.Reason)
}

func (e *CapabilityError) Is(target error) bool {
	return target == ErrCapability
}

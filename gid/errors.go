package gid

import (
	"errors"
	"fmt"
)

// ErrInconsistent is the root of all allocation faults. An inconsistent
// allocation would connect the wrong cells and is never recovered from.
var ErrInconsistent = errors.New("inconsistent gid allocation")

// An InconsistencyError describes an allocation fault.
type InconsistencyError struct {
	Set    string
	Reason string
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("%s: set %q: %s", ErrInconsistent, e.Set, e.Reason)
}

// Unwrap allows errors.Is(err, ErrInconsistent).
func (e *InconsistencyError) Unwrap() error {
	return ErrInconsistent
}

func inconsistent(set string, format string, args ...any) error {
	return &InconsistencyError{Set: set, Reason: fmt.Sprintf(format, args...)}
}

package brandform

import (
	"errors"
	"fmt"
)

// Sentinel errors for common build failure conditions.
var (
	ErrInvalidConfig = errors.New("brandform: invalid configuration")
	ErrNoSections    = errors.New("brandform: configuration has no sections")
	ErrEmptyDocument = errors.New("brandform: rendered document is empty")
)

// BuildError represents an error that occurred during a specific build step.
// It wraps an underlying error and includes the step name for context.
type BuildError struct {
	Op  string // step name, e.g. "render", "inject"
	Err error  // underlying error
}

func (e *BuildError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("brandform.%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("brandform.%s: unknown error", e.Op)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// newBuildError creates a new BuildError wrapping the given error with step
// context.
func newBuildError(op string, err error) *BuildError {
	return &BuildError{Op: op, Err: err}
}

package planning

import (
	"errors"
	"fmt"
)

// Store errors.
var (
	// ErrProjectNotFound indicates the project id does not exist.
	ErrProjectNotFound = errors.New("project not found")

	// ErrTaskNotFound indicates the task id does not exist.
	ErrTaskNotFound = errors.New("task not found")

	// ErrDuplicateProject indicates a project with the same title exists.
	ErrDuplicateProject = errors.New("duplicate project title")

	// ErrInvalidInput indicates a create or update payload failed validation.
	ErrInvalidInput = errors.New("invalid input")
)

// ConflictError reports a title collision on project creation.
type ConflictError struct {
	Title      string
	ExistingID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("project %q already exists (id: %s)", e.Title, e.ExistingID)
}

// Is allows errors.Is to work with ConflictError.
func (e *ConflictError) Is(target error) bool {
	return target == ErrDuplicateProject
}

// ValidationError reports which field of a payload was rejected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is allows errors.Is to work with ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

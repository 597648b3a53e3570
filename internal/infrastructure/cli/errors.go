package cli

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/dictado/pkg/domain/planning"
)

// CLIError wraps domain errors with user-facing messages and actionable hints.
type CLIError struct {
	Message  string
	Hint     string
	Err      error
	ExitCode int
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with a default exit code of 1.
func NewCLIError(msg, hint string, err error) *CLIError {
	return &CLIError{
		Message:  msg,
		Hint:     hint,
		Err:      err,
		ExitCode: 1,
	}
}

// MapError converts known domain errors into CLIErrors with actionable hints.
// Unmapped errors are returned as-is.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var conflict *planning.ConflictError
	if errors.As(err, &conflict) {
		return NewCLIError(
			conflict.Error(),
			"Choose a different title or update the existing project",
			err,
		)
	}

	var invalid *planning.ValidationError
	if errors.As(err, &invalid) {
		return NewCLIError(
			invalid.Error(),
			fmt.Sprintf("Check the value given for '%s'", invalid.Field),
			err,
		)
	}

	switch {
	case errors.Is(err, planning.ErrProjectNotFound):
		return NewCLIError("project not found", "Run 'dictado projects' to list available projects", err)
	case errors.Is(err, planning.ErrTaskNotFound):
		return NewCLIError("task not found", "Run 'dictado tasks' to list available tasks", err)
	}

	return err
}

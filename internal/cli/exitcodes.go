package cli

import (
	"context"
	"errors"

	"github.com/thenoetrevino/tandem/internal/models"
)

// Exit codes for CLI commands.
// These codes follow Unix conventions and provide consistent error reporting
// across all CLI commands.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitError indicates a general error occurred.
	// Use for: unexpected failures or any error that doesn't fit the
	// specific categories below.
	ExitError = 1

	// ExitUsage indicates incorrect command usage.
	// Use for: Missing required flags, invalid flag combinations, or a
	// missing acting user.
	ExitUsage = 2

	// ExitNotFound indicates a requested resource was not found.
	// Use for: Task, project or user not found.
	ExitNotFound = 3

	// ExitDataErr indicates invalid or malformed data.
	// Use for: Invalid JSON input or an unreadable config file.
	ExitDataErr = 4

	// ExitValidation indicates a validation error.
	// Use for: Invalid priority, invalid status, empty title, or any case
	// where input fails validation rules.
	ExitValidation = 5

	// ExitAccessDenied indicates the acting user is not a project member
	// (or not its owner, for owner-only operations).
	ExitAccessDenied = 6

	// ExitConflict indicates a busy project or a duplicate resource.
	// Retrying may succeed.
	ExitConflict = 7

	// ExitUnavailable indicates the store failed or the operation was cancelled.
	ExitUnavailable = 8
)

// CodedError carries the process exit code for err. Reported is set once the
// error has been printed so main does not print it twice.
type CodedError struct {
	Code     int
	Err      error
	Reported bool
}

func (e *CodedError) Error() string { return e.Err.Error() }

func (e *CodedError) Unwrap() error { return e.Err }

// ExitCodeFor maps an error onto an exit code
func ExitCodeFor(err error) int {
	var exitErr *CodedError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &exitErr):
		return exitErr.Code
	case errors.Is(err, ErrNoActingUser), errors.Is(err, errUsage):
		return ExitUsage
	case errors.Is(err, models.ErrValidation):
		return ExitValidation
	case errors.Is(err, models.ErrAccessDenied):
		return ExitAccessDenied
	case errors.Is(err, models.ErrNotFound):
		return ExitNotFound
	case errors.Is(err, models.ErrConflict):
		return ExitConflict
	case errors.Is(err, models.ErrStorage),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return ExitUnavailable
	}
	return ExitError
}

// errorCode is the machine-readable code printed in --json mode
func errorCode(err error) string {
	switch ExitCodeFor(err) {
	case ExitUsage:
		return "USAGE_ERROR"
	case ExitValidation:
		return "VALIDATION_ERROR"
	case ExitAccessDenied:
		return "ACCESS_DENIED"
	case ExitNotFound:
		return "NOT_FOUND"
	case ExitConflict:
		return "CONFLICT"
	case ExitUnavailable:
		return "UNAVAILABLE"
	case ExitDataErr:
		return "DATA_ERROR"
	}
	return "ERROR"
}

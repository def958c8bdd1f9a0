package cli

import (
	"errors"
	"fmt"

	sorterrors "github.com/tamirms/linesort/errors"
)

// Process exit codes of the linesort command.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // a sort, merge or generate failed, or verify found disorder
	ExitCommandError = 2 // bad flags or settings, or a missing input file
)

// ExitError carries the exit code a command wants main to return. Message
// is what the user sees; Err, when set, is the library error behind it and
// stays reachable through errors.Is.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError reports a failure that has no underlying error, such as an
// unsorted file.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError attaches an exit code and a user-facing message to err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode maps the error returned by the root command to a process exit
// code. Errors that carry no ExitError, such as cobra's own argument
// errors, are command errors.
func GetExitCode(err error) int {
	var exitErr *ExitError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &exitErr):
		return exitErr.Code
	default:
		return ExitCommandError
	}
}

// wrapSortError classifies a library error: bad input from the user is a
// command error, everything else a failure.
func wrapSortError(message string, err error) *ExitError {
	code := ExitFailure
	if errors.Is(err, sorterrors.ErrInvalidConfig) || errors.Is(err, sorterrors.ErrInputNotFound) {
		code = ExitCommandError
	}
	return WrapExitError(code, message, err)
}

package output

import (
	"errors"
	"strconv"
)

// Exit codes. The CLI contract only distinguishes success from failure;
// the error Kind carries the finer classification.
const (
	ExitSuccess = 0
	ExitFailure = 1
)

// Kind classifies a failure for reporting.
type Kind string

// Failure kinds.
const (
	KindValidation   Kind = "validation"    // bad bump type, malformed version
	KindPrecondition Kind = "precondition"  // dirty tree, failing CI
	KindIO           Kind = "io"            // unreadable or malformed files
	KindSubprocess   Kind = "subprocess"    // git/npm failed after side effects
	KindChecksFailed Kind = "checks_failed" // one or more checks failed
	KindUsage        Kind = "usage"         // unknown command, bad flags
	KindInternal     Kind = "internal"      // recovered panic
)

// ExitError is an error that carries an exit code and a kind for the CLI.
type ExitError struct {
	Code    int
	Kind    Kind
	Message string
	Hint    string
	Cause   error
	// Silent errors have already been reported by the command.
	Silent bool
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/errors.As support.
func (e *ExitError) Unwrap() error {
	return e.Cause
}

// WithHint attaches a follow-up suggestion shown below the error line.
func (e *ExitError) WithHint(hint string) *ExitError {
	e.Hint = hint
	return e
}

func newExitError(kind Kind, message string, cause error) *ExitError {
	return &ExitError{
		Code:    ExitFailure,
		Kind:    kind,
		Message: message,
		Cause:   cause,
	}
}

// NewValidationError reports rejected input before any side effect.
func NewValidationError(message string, cause error) *ExitError {
	return newExitError(KindValidation, message, cause)
}

// NewPreconditionError reports an unmet release precondition.
func NewPreconditionError(message string, cause error) *ExitError {
	return newExitError(KindPrecondition, message, cause)
}

// NewIOError reports a file that could not be read, parsed or written.
func NewIOError(message string, cause error) *ExitError {
	return newExitError(KindIO, message, cause)
}

// NewSubprocessError reports a failed git or package-manager invocation.
func NewSubprocessError(message string, cause error) *ExitError {
	return newExitError(KindSubprocess, message, cause)
}

// NewUsageError reports a CLI usage mistake.
func NewUsageError(message string) *ExitError {
	return newExitError(KindUsage, message, nil)
}

// NewInternalError reports a recovered fault.
func NewInternalError(message string, cause error) *ExitError {
	return newExitError(KindInternal, message, cause)
}

// NewChecksFailedError signals failing checks whose results were already printed.
func NewChecksFailedError(failed int) *ExitError {
	err := newExitError(KindChecksFailed, "maintenance checks failed", nil)
	err.Silent = true
	if failed == 1 {
		err.Message = "1 maintenance check failed"
	} else if failed > 1 {
		err.Message = strconv.Itoa(failed) + " maintenance checks failed"
	}
	return err
}

// GetExitCode extracts the exit code from an error.
// Returns ExitSuccess for nil, ExitFailure for non-ExitError errors.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	return ExitFailure
}

// KindOf returns the kind of err, or KindInternal for untyped errors.
func KindOf(err error) Kind {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Kind
	}
	return KindInternal
}

// IsSilent reports whether err was already rendered by the command that returned it.
func IsSilent(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.Silent
}

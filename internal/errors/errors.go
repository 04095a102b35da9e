// Package errors implements a four-kind error taxonomy: configuration
// errors, programmer/invariant errors,
// numeric warnings (absorbed where they arise: variance estimates are
// clipped to zero without an error or a log record), and resource errors. Every kind shares one structured carrier so the CLI can pick an
// exit code from a single place.
package errors

import (
	"fmt"
)

// Kind classifies an AppError for exit-code and logging purposes.
type Kind string

const (
	KindConfig    Kind = "CONFIG_ERROR"
	KindInvariant Kind = "INVARIANT_ERROR"
	KindNumeric   Kind = "NUMERIC_WARNING"
	KindResource  Kind = "RESOURCE_ERROR"
	KindInternal  Kind = "INTERNAL_ERROR"
)

// AppError represents a structured application error.
type AppError struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError.
func New(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

// Wrap wraps an error with additional context, carrying the kind forward if
// err is already an AppError, else defaulting to KindInternal.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{Kind: appErr.Kind, Message: message, Cause: appErr}
	}
	return &AppError{Kind: KindInternal, Message: message, Cause: err}
}

// Wrapf wraps an error with formatted additional context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// GetKind returns the error kind if it's an AppError, otherwise KindInternal.
func GetKind(err error) Kind {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Kind
	}
	return KindInternal
}

// Config wraps a configuration-time failure: malformed/missing JSON,
// validation failures on user-supplied ranges. Aborts before any simulation.
func Config(message string) *AppError {
	return New(KindConfig, message)
}

// Configf is Config with formatting.
func Configf(format string, args ...interface{}) *AppError {
	return New(KindConfig, fmt.Sprintf(format, args...))
}

// Invariant wraps a programmer/invariant error: illegal lifecycle
// transitions, tic-count desync, undecided toc, run-length overflow.
func Invariant(message string, cause error) *AppError {
	return &AppError{Kind: KindInvariant, Message: message, Cause: cause}
}

// Resource wraps a resource error: output subfolder exhaustion or a
// filesystem write failure. Aborts further output for the affected run only.
func Resource(message string, cause error) *AppError {
	return &AppError{Kind: KindResource, Message: message, Cause: cause}
}

// ExitCode maps an error to a process exit code: 0 on success (never
// called), nonzero otherwise. Configuration and invariant errors get
// distinct codes so operators can tell them apart from logs alone.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch GetKind(err) {
	case KindConfig:
		return 2
	case KindInvariant:
		return 3
	case KindResource:
		return 4
	default:
		return 1
	}
}

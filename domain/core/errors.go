package core

import (
	"errors"
	"fmt"
)

// Domain sentinel errors - centralized so every package can errors.Is
// against the same root cause regardless of which component raised it.
var (
	// ErrInvalidState is raised when a setter that must run before the first
	// observation is called after the process has already observed samples.
	ErrInvalidState = errors.New("invalid state: operation not permitted after first observation")

	// ErrIllegalTransition is raised when a rule lifecycle method is invoked
	// from the wrong state (e.g. tic() while uninitialized).
	ErrIllegalTransition = errors.New("illegal lifecycle transition")

	// ErrTicDesync is raised when a rule's internal tic counter disagrees
	// with the process's history length.
	ErrTicDesync = errors.New("tic count desynchronized from process history")

	// ErrNoDecision is raised when toc() is entered for a cell that decided
	// neither hypothesis - a programmer error, since toc only runs once the
	// grid reports fully decided.
	ErrNoDecision = errors.New("toc entered without a decision")

	// ErrExceededLength is raised by the Monte-Carlo driver when a
	// replication runs past the configured safety length.
	ErrExceededLength = errors.New("replication exceeded maximum observation length")

	// ErrEmptyThresholds is a configuration error: a threshold vector was empty.
	ErrEmptyThresholds = errors.New("threshold vector must be non-empty")

	// ErrNonFinite is a configuration error: a required numeric parameter
	// was NaN or infinite.
	ErrNonFinite = errors.New("parameter must be finite")

	// ErrBadOrdering is a configuration error: model.null must be strictly
	// less than model.smallestAlt.
	ErrBadOrdering = errors.New("null hypothesis mean must be strictly less than the alternative")

	// ErrUnitSphere is a configuration error: autoregressive coefficients
	// must lie strictly inside the unit sphere (sum of squares < 1).
	ErrUnitSphere = errors.New("autoregressive coefficients must lie within the open unit sphere")

	// ErrResourceExhausted marks output-folder prefix exhaustion. Filesystem
	// write failures carry the underlying os error instead.
	ErrResourceExhausted = errors.New("resource exhausted")
)

// Invariant builds an ErrIllegalTransition-rooted error carrying the
// component and the states involved, for readable lifecycle diagnostics.
func Invariant(component string, from, to string) error {
	return fmt.Errorf("%w: %s cannot go from %s to %s", ErrIllegalTransition, component, from, to)
}

// CellError annotates an error with the grid cell (i, j) it was raised at.
func CellError(err error, i, j int) error {
	return fmt.Errorf("%w (cell [%d,%d])", err, i, j)
}

// IsInvalidState reports whether err is, or wraps, ErrInvalidState.
func IsInvalidState(err error) bool { return errors.Is(err, ErrInvalidState) }

// IsIllegalTransition reports whether err is, or wraps, ErrIllegalTransition.
func IsIllegalTransition(err error) bool { return errors.Is(err, ErrIllegalTransition) }

// IsConfigError reports whether err is one of the configuration-time sentinels.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrEmptyThresholds) ||
		errors.Is(err, ErrNonFinite) ||
		errors.Is(err, ErrBadOrdering) ||
		errors.Is(err, ErrUnitSphere)
}

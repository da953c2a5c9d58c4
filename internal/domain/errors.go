package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. a date range too short to fit a single window).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrInvalidWindow is returned when a pick names a start date outside the
// trip's valid-start set. Handlers map this to 422.
var ErrInvalidWindow = errors.New("invalid window")

// ErrDuplicateWindow is returned when a member already holds a pick for the
// same start date under a different rank. Picking the same window twice is
// meaningless and rejected. Handlers map this to 422.
var ErrDuplicateWindow = errors.New("duplicate window")

// ErrPermission is returned when a non-leader attempts a leader-only action
// (opening voting, locking). Handlers map this to 403.
var ErrPermission = errors.New("permission denied")

// ErrInvalidOption is returned when a vote or lock references an option key
// that is not part of the frozen ballot. Handlers map this to 422.
var ErrInvalidOption = errors.New("invalid option")

// ErrConflict is returned when a compare-and-set phase transition lost a
// race to a concurrent leader action. The caller may safely retry after
// re-reading the trip; it signals a stale view, not a permanent rejection.
// Handlers map this to 409.
var ErrConflict = errors.New("conflict")

// StateError reports an operation attempted in a phase where it is not
// legal. It carries the current and required phases so clients can render
// an actionable message. Handlers map this to 409.
type StateError struct {
	// Op is the attempted operation, e.g. "submit pick".
	Op string
	// Current is the trip's phase at the time of the attempt.
	Current TripStatus
	// Required lists the phases in which the operation is legal.
	Required []TripStatus
}

func (e *StateError) Error() string {
	if e.Current == StatusLocked {
		return fmt.Sprintf("%s: already locked", e.Op)
	}
	return fmt.Sprintf("%s: requires status %v, trip is %s", e.Op, e.Required, e.Current)
}

// NewStateError builds a StateError for op attempted in current, legal only
// in required.
func NewStateError(op string, current TripStatus, required ...TripStatus) *StateError {
	return &StateError{Op: op, Current: current, Required: required}
}

package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Concrete errors wrap one of these so callers can branch
// with errors.Is without matching strings. Race losses (duplicate
// submission, stale problem id) are not errors at all; those paths return
// false.
var (
	// ErrValidation marks malformed or missing input.
	ErrValidation = errors.New("invalid input")
	// ErrState marks an operation that is not legal in the room's current
	// lifecycle state.
	ErrState = errors.New("operation not allowed in current state")
	// ErrNotFound marks an unknown room, problem, participant, or set.
	ErrNotFound = errors.New("not found")
)

var (
	ErrEmptyRoomID         = fmt.Errorf("%w: room id must not be empty", ErrValidation)
	ErrRoomExists          = fmt.Errorf("%w: room already exists", ErrValidation)
	ErrRoomNotFound        = fmt.Errorf("room %w", ErrNotFound)
	ErrProblemNotFound     = fmt.Errorf("problem %w", ErrNotFound)
	ErrParticipantNotFound = fmt.Errorf("participant %w", ErrNotFound)
	ErrProblemSetNotFound  = fmt.Errorf("problem set %w", ErrNotFound)
)

// Validationf builds a validation error with context.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Statef builds a lifecycle-state error with context.
func Statef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrState, fmt.Sprintf(format, args...))
}

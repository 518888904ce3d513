package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when an action is requested from a
	// state/role combination not in the transition table
	ErrInvalidTransition = errors.New("invalid workflow transition")

	// ErrValidation is returned when a transition's precondition fails;
	// the record is left unchanged
	ErrValidation = errors.New("validation failed")
)

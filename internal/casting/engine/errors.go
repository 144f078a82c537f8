package engine

import (
	"errors"
	"fmt"
)

// Reason identifies which precondition stopped an action.
type Reason int

const (
	// ReasonNone means every precondition passed.
	ReasonNone Reason = iota
	// ReasonUnavailable: the piece rehearses outside the dancer's availability.
	ReasonUnavailable
	// ReasonConflict: a piece the dancer already holds shares a rehearsal slot.
	ReasonConflict
	// ReasonAtCapacity: the piece is already at its maximum headcount.
	ReasonAtCapacity
	// ReasonNotEligible: the piece is in no tier that permits assignment.
	ReasonNotEligible
	// ReasonNotAssigned: the dancer does not hold the piece being removed.
	ReasonNotAssigned
	// ReasonBelowMinimum: removal would drop the piece under its minimum headcount.
	ReasonBelowMinimum
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonUnavailable:
		return "unavailable"
	case ReasonConflict:
		return "conflict"
	case ReasonAtCapacity:
		return "at_capacity"
	case ReasonNotEligible:
		return "not_eligible"
	case ReasonNotAssigned:
		return "not_assigned"
	case ReasonBelowMinimum:
		return "below_minimum"
	default:
		return "unknown"
	}
}

// PreconditionError reports the first precondition an action failed. It is
// a recoverable branch-pruning signal for the search, never a process
// error.
type PreconditionError struct {
	Action Action
	Reason Reason
}

func (e *PreconditionError) Error() string {
	switch e.Action.Kind {
	case KindAssign, KindUnassign:
		return fmt.Sprintf("%s d=%d p=%d: %s", e.Action.Kind, e.Action.Dancer, e.Action.Piece, e.Reason)
	default:
		return fmt.Sprintf("%s: %s", e.Action.Kind, e.Reason)
	}
}

// ReasonOf extracts the precondition reason from an error chain. The second
// return is false when the chain contains no PreconditionError.
func ReasonOf(err error) (Reason, bool) {
	var pre *PreconditionError
	if errors.As(err, &pre) {
		return pre.Reason, true
	}
	return ReasonNone, false
}

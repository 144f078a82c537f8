// Package engine applies casting actions to assignment snapshots. It is the
// single mutation path in the system: every assignment change flows through
// Apply, which checks the action's preconditions in a fixed order and then
// derives a fresh snapshot, leaving every other dancer's entry untouched.
//
// Precondition failures are expected signals, not faults. The search probes
// many actions per node and treats a failure as "this branch does not
// exist"; nothing about a failed Apply reaches the process error path.
package engine

import (
	"fmt"

	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/casting/domain"
	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/casting/state"
)

// Kind discriminates the three casting actions.
type Kind int

const (
	// KindStutter leaves the state untouched. Traces use it to pad a short
	// solution out to the minimum length.
	KindStutter Kind = iota
	// KindAssign adds one piece to one dancer.
	KindAssign
	// KindUnassign removes one piece from one dancer.
	KindUnassign
)

func (k Kind) String() string {
	switch k {
	case KindStutter:
		return "stutter"
	case KindAssign:
		return "assign"
	case KindUnassign:
		return "unassign"
	default:
		return "unknown"
	}
}

// Action is one step of a trace. Dancer and Piece are dense universe
// indexes and are meaningless for stutters.
type Action struct {
	Kind   Kind
	Dancer int
	Piece  int
}

// Stutter returns the identity action.
func Stutter() Action { return Action{Kind: KindStutter} }

// Assign returns the action giving piece p to dancer d.
func Assign(d, p int) Action { return Action{Kind: KindAssign, Dancer: d, Piece: p} }

// Unassign returns the action taking piece p from dancer d.
func Unassign(d, p int) Action { return Action{Kind: KindUnassign, Dancer: d, Piece: p} }

// Describe renders the action with entity IDs resolved, for logs and
// reports: "assign(ana, nocturne)".
func (a Action) Describe(u *domain.Universe) string {
	switch a.Kind {
	case KindStutter:
		return "stutter"
	case KindAssign, KindUnassign:
		return fmt.Sprintf("%s(%s, %s)", a.Kind, u.DancerAt(a.Dancer).ID, u.PieceAt(a.Piece).ID)
	default:
		return "unknown"
	}
}

// Check probes an action's preconditions without deriving a successor,
// returning ReasonNone when the action would succeed. Assign checks run in
// a fixed order and the first failure wins: availability, then schedule
// conflict, then capacity, then tier eligibility.
func Check(u *domain.Universe, s state.Assignment, act Action, pol domain.Policy) Reason {
	switch act.Kind {
	case KindStutter:
		return ReasonNone
	case KindAssign:
		return checkAssign(u, s, act.Dancer, act.Piece, pol)
	case KindUnassign:
		return checkUnassign(u, s, act.Dancer, act.Piece)
	default:
		return ReasonNone
	}
}

func checkAssign(u *domain.Universe, s state.Assignment, d, p int, pol domain.Policy) Reason {
	if !u.Compatible(d, p) {
		return ReasonUnavailable
	}

	// A held piece overlaps itself, so re-assignment surfaces as a conflict
	// rather than needing its own precondition.
	conflict := false
	s.EachAssigned(d, func(q int) bool {
		if u.Overlaps(q, p) {
			conflict = true
			return false
		}
		return true
	})
	if conflict {
		return ReasonConflict
	}

	piece := u.PieceAt(p)
	if s.Headcount(p) >= piece.MaxDancers {
		return ReasonAtCapacity
	}

	switch u.Tier(d, p) {
	case domain.TierMustHave, domain.TierPreferred:
		return ReasonNone
	case domain.TierAvoid:
		if pol.AvoidException && s.Headcount(p) < piece.MinDancers {
			return ReasonNone
		}
		return ReasonNotEligible
	default:
		return ReasonNotEligible
	}
}

func checkUnassign(u *domain.Universe, s state.Assignment, d, p int) Reason {
	if !s.Has(d, p) {
		return ReasonNotAssigned
	}
	if s.Headcount(p)-1 < u.PieceAt(p).MinDancers {
		return ReasonBelowMinimum
	}
	return ReasonNone
}

// Apply executes one action against a snapshot. On success it returns the
// derived snapshot; the input is never touched. On a precondition failure
// it returns a *PreconditionError naming the first failed check and no
// snapshot; there is no partial mutation.
func Apply(u *domain.Universe, s state.Assignment, act Action, pol domain.Policy) (state.Assignment, error) {
	switch act.Kind {
	case KindStutter, KindAssign, KindUnassign:
	default:
		return state.Assignment{}, fmt.Errorf("engine: unsupported action kind %d", act.Kind)
	}

	if reason := Check(u, s, act, pol); reason != ReasonNone {
		return state.Assignment{}, &PreconditionError{Action: act, Reason: reason}
	}

	switch act.Kind {
	case KindAssign:
		return s.With(act.Dancer, act.Piece), nil
	case KindUnassign:
		return s.Without(act.Dancer, act.Piece), nil
	default:
		return s, nil
	}
}

// Package trace represents the witness a search returns: the ordered
// snapshots from the empty assignment to a goal state, together with the
// action that produced each step. A trace is self-checking: Replay pushes
// the action sequence back through the transition engine and verifies every
// recorded snapshot, so a consumer can trust a trace without trusting the
// search that built it.
package trace

import (
	"errors"
	"fmt"

	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/casting/domain"
	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/casting/engine"
	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/casting/state"
)

// ErrMalformed indicates a trace whose shape is wrong: no states, or an
// action count that does not pair up with the state count.
var ErrMalformed = errors.New("trace: states and actions do not pair up")

// ErrDiverged indicates a recorded snapshot that does not match what the
// engine produces when the actions are replayed.
var ErrDiverged = errors.New("trace: replayed state diverges from recorded state")

// Trace is an ordered action sequence with its snapshots. States always
// holds one more entry than Actions: States[0] is the starting snapshot and
// Actions[i] produced States[i+1].
type Trace struct {
	Actions []engine.Action
	States  []state.Assignment
}

// Len reports the number of transitions (the trace length n in a
// [state_0 … state_n] sequence).
func (t Trace) Len() int { return len(t.Actions) }

// Final returns the last snapshot.
func (t Trace) Final() state.Assignment {
	return t.States[len(t.States)-1]
}

// PadTo extends the trace with stutters until it has at least n
// transitions. Padding repeats the final snapshot; a trace that is already
// long enough comes back unchanged.
func (t Trace) PadTo(n int) Trace {
	if t.Len() >= n {
		return t
	}
	actions := make([]engine.Action, len(t.Actions), n)
	copy(actions, t.Actions)
	states := make([]state.Assignment, len(t.States), n+1)
	copy(states, t.States)
	final := t.Final()
	for len(actions) < n {
		actions = append(actions, engine.Stutter())
		states = append(states, final)
	}
	return Trace{Actions: actions, States: states}
}

// Replay pushes the action sequence through the transition engine from the
// recorded starting snapshot and verifies each recorded state along the
// way.
func (t Trace) Replay(u *domain.Universe, pol domain.Policy) error {
	if len(t.States) == 0 || len(t.States) != len(t.Actions)+1 {
		return ErrMalformed
	}
	current := t.States[0]
	for i, act := range t.Actions {
		next, err := engine.Apply(u, current, act, pol)
		if err != nil {
			return fmt.Errorf("trace: step %d (%s): %w", i+1, act.Describe(u), err)
		}
		if !next.Equal(t.States[i+1]) {
			return fmt.Errorf("trace: step %d (%s): %w", i+1, act.Describe(u), ErrDiverged)
		}
		current = next
	}
	return nil
}

// Script renders the action sequence with IDs resolved, one line per
// transition.
func (t Trace) Script(u *domain.Universe) []string {
	out := make([]string, 0, len(t.Actions))
	for _, act := range t.Actions {
		out = append(out, act.Describe(u))
	}
	return out
}

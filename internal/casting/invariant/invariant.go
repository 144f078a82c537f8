// Package invariant evaluates assignment snapshots against the casting
// rules. Every check is a pure function over an immutable snapshot, so the
// search can call them from parallel branches without coordination.
//
// Two entry points cover the two callers: Valid answers the search's hot
// question ("is this node a goal?") with early exits and no allocation;
// Check produces the full violation list for reports and diagnostics. The
// two are kept equivalent by the soundness test in this package.
package invariant

import (
	"fmt"

	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/casting/domain"
	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/casting/state"
)

// Kind names one casting rule.
type Kind string

const (
	// KindScheduleConflict: a dancer holds two pieces sharing a rehearsal slot.
	KindScheduleConflict Kind = "schedule_conflict"
	// KindAvailability: a dancer holds a piece rehearsing outside their availability.
	KindAvailability Kind = "availability"
	// KindCapacity: a piece's headcount sits outside its min/max bounds.
	KindCapacity Kind = "capacity"
	// KindHardAvoid: a dancer holds a piece from their avoid tier.
	KindHardAvoid Kind = "hard_avoid"
	// KindMustHaveUnreached: a dancer with must-have wishes holds none of them.
	// Reported for visibility; never blocks validity.
	KindMustHaveUnreached Kind = "must_have_unreached"
	// KindFairness: per-dancer assignment counts spread wider than the bound.
	KindFairness Kind = "fairness"
	// KindDancerUnassigned: a dancer holds nothing. Blocks validity only when
	// the policy requires a full cast.
	KindDancerUnassigned Kind = "dancer_unassigned"
)

// Violation describes one broken rule with its subjects resolved to IDs.
type Violation struct {
	Kind    Kind     `json:"kind"`
	Dancer  string   `json:"dancer,omitempty"`
	Piece   string   `json:"piece,omitempty"`
	Pieces  []string `json:"pieces,omitempty"`
	Dancers []string `json:"dancers,omitempty"`
	Detail  string   `json:"detail"`
}

// Set is an ordered violation list. Order is deterministic: checks run in a
// fixed sequence and each walks the universe in index order.
type Set []Violation

// Has reports whether the set contains a violation of the given kind.
func (s Set) Has(kind Kind) bool {
	for _, v := range s {
		if v.Kind == kind {
			return true
		}
	}
	return false
}

// Blocking filters the set down to the violations that make a snapshot
// invalid under the policy: everything except must-have shortfalls, with
// uncast dancers counting only when the policy requires a full cast.
func (s Set) Blocking(pol domain.Policy) Set {
	var out Set
	for _, v := range s {
		switch v.Kind {
		case KindMustHaveUnreached:
			continue
		case KindDancerUnassigned:
			if !pol.RequireFullCast {
				continue
			}
		}
		out = append(out, v)
	}
	return out
}

// ScheduleConflicts reports every pair of same-dancer pieces sharing a
// rehearsal slot.
func ScheduleConflicts(u *domain.Universe, s state.Assignment) Set {
	var out Set
	for d := 0; d < u.DancerCount(); d++ {
		held := s.Pieces(d)
		for i := 0; i < len(held); i++ {
			for j := 0; j < i; j++ {
				p, q := held[j], held[i]
				if !u.Overlaps(p, q) {
					continue
				}
				slot, _ := u.SharedSlot(p, q)
				out = append(out, Violation{
					Kind:   KindScheduleConflict,
					Dancer: u.DancerAt(d).ID,
					Pieces: []string{u.PieceAt(p).ID, u.PieceAt(q).ID},
					Detail: fmt.Sprintf("%s and %s share rehearsal slot %s", u.PieceAt(p).ID, u.PieceAt(q).ID, slot),
				})
			}
		}
	}
	return out
}

// Availability reports every assignment whose piece rehearses outside the
// dancer's availability.
func Availability(u *domain.Universe, s state.Assignment) Set {
	var out Set
	for d := 0; d < u.DancerCount(); d++ {
		s.EachAssigned(d, func(p int) bool {
			if slot, missing := u.MissingSlot(d, p); missing {
				out = append(out, Violation{
					Kind:   KindAvailability,
					Dancer: u.DancerAt(d).ID,
					Piece:  u.PieceAt(p).ID,
					Detail: fmt.Sprintf("rehearsal slot %s is outside availability", slot),
				})
			}
			return true
		})
	}
	return out
}

// Capacity reports every piece whose headcount falls outside [min, max].
func Capacity(u *domain.Universe, s state.Assignment) Set {
	var out Set
	for p := 0; p < u.PieceCount(); p++ {
		piece := u.PieceAt(p)
		hc := s.Headcount(p)
		if hc >= piece.MinDancers && hc <= piece.MaxDancers {
			continue
		}
		out = append(out, Violation{
			Kind:   KindCapacity,
			Piece:  piece.ID,
			Detail: fmt.Sprintf("cast %d of %d..%d", hc, piece.MinDancers, piece.MaxDancers),
		})
	}
	return out
}

// HardAvoid reports dancers holding pieces from their avoid tier. Under the
// avoid exception an assignment is tolerated while the piece's headcount
// stays at or below its minimum (the dancer is load-bearing); the moment
// the piece exceeds its minimum the exception no longer applies.
func HardAvoid(u *domain.Universe, s state.Assignment, pol domain.Policy) Set {
	var out Set
	for d := 0; d < u.DancerCount(); d++ {
		s.EachAssigned(d, func(p int) bool {
			if u.Tier(d, p) != domain.TierAvoid {
				return true
			}
			piece := u.PieceAt(p)
			if pol.AvoidException && s.Headcount(p) <= piece.MinDancers {
				return true
			}
			detail := "assigned to avoided piece"
			if pol.AvoidException {
				detail = fmt.Sprintf("avoided piece holds %d above its minimum %d", s.Headcount(p), piece.MinDancers)
			}
			out = append(out, Violation{
				Kind:   KindHardAvoid,
				Dancer: u.DancerAt(d).ID,
				Piece:  piece.ID,
				Detail: detail,
			})
			return true
		})
	}
	return out
}

// MustHaveUnreached reports dancers whose must-have tier is entirely unmet.
func MustHaveUnreached(u *domain.Universe, s state.Assignment) Set {
	var out Set
	for d := 0; d < u.DancerCount(); d++ {
		if u.MustHaveCount(d) == 0 {
			continue
		}
		met := false
		s.EachAssigned(d, func(p int) bool {
			if u.Tier(d, p) == domain.TierMustHave {
				met = true
				return false
			}
			return true
		})
		if met {
			continue
		}
		out = append(out, Violation{
			Kind:   KindMustHaveUnreached,
			Dancer: u.DancerAt(d).ID,
			Detail: fmt.Sprintf("none of %d must-have pieces assigned", u.MustHaveCount(d)),
		})
	}
	return out
}

// Fairness reports a single violation when assignment counts spread wider
// than the bound. Bounds below 1 disable the check.
func Fairness(u *domain.Universe, s state.Assignment, bound int) Set {
	if bound < 1 {
		return nil
	}
	min, max := s.CountSpread()
	if max-min <= bound {
		return nil
	}
	var low, high string
	for d := 0; d < u.DancerCount(); d++ {
		switch s.Count(d) {
		case min:
			if low == "" {
				low = u.DancerAt(d).ID
			}
		case max:
			if high == "" {
				high = u.DancerAt(d).ID
			}
		}
	}
	return Set{{
		Kind:    KindFairness,
		Dancers: []string{low, high},
		Detail:  fmt.Sprintf("assignment spread %d exceeds bound %d (%s holds %d, %s holds %d)", max-min, bound, high, max, low, min),
	}}
}

// Coverage reports dancers with no assignment at all.
func Coverage(u *domain.Universe, s state.Assignment) Set {
	var out Set
	for d := 0; d < u.DancerCount(); d++ {
		if s.Count(d) > 0 {
			continue
		}
		out = append(out, Violation{
			Kind:   KindDancerUnassigned,
			Dancer: u.DancerAt(d).ID,
			Detail: "no piece assigned",
		})
	}
	return out
}

// Check runs every rule and concatenates the findings in a fixed order.
func Check(u *domain.Universe, s state.Assignment, pol domain.Policy) Set {
	var out Set
	out = append(out, ScheduleConflicts(u, s)...)
	out = append(out, Availability(u, s)...)
	out = append(out, Capacity(u, s)...)
	out = append(out, HardAvoid(u, s, pol)...)
	out = append(out, MustHaveUnreached(u, s)...)
	out = append(out, Fairness(u, s, pol.FairnessBound)...)
	out = append(out, Coverage(u, s)...)
	return out
}

// Valid reports whether the snapshot is an acceptable final assignment:
// conflict-free, within availability and capacity, avoid-tier clean under
// the policy, within the fairness bound, and, when the policy demands a
// full cast, with every dancer holding at least one piece. Must-have
// satisfaction is a scoring concern, not a validity one.
//
// Valid allocates nothing and exits on the first broken rule; the search
// calls it once per generated node.
func Valid(u *domain.Universe, s state.Assignment, pol domain.Policy) bool {
	for p := 0; p < u.PieceCount(); p++ {
		piece := u.PieceAt(p)
		hc := s.Headcount(p)
		if hc < piece.MinDancers || hc > piece.MaxDancers {
			return false
		}
	}

	for d := 0; d < u.DancerCount(); d++ {
		ok := true
		s.EachAssigned(d, func(p int) bool {
			if !u.Compatible(d, p) {
				ok = false
				return false
			}
			switch u.Tier(d, p) {
			case domain.TierAvoid:
				if !pol.AvoidException || s.Headcount(p) > u.PieceAt(p).MinDancers {
					ok = false
					return false
				}
			}
			conflict := false
			s.EachAssigned(d, func(q int) bool {
				if q >= p {
					return false
				}
				if u.Overlaps(q, p) {
					conflict = true
					return false
				}
				return true
			})
			if conflict {
				ok = false
				return false
			}
			return true
		})
		if !ok {
			return false
		}
		if pol.RequireFullCast && s.Count(d) == 0 {
			return false
		}
	}

	if pol.FairnessBound >= 1 {
		min, max := s.CountSpread()
		if max-min > pol.FairnessBound {
			return false
		}
	}
	return true
}

// Package score ranks assignment snapshots by how well they satisfy dancer
// preferences. Scores order valid snapshots during optimization and feed
// reports; they never gate feasibility.
//
// # Determinism
//
// Scores depend only on the universe, the snapshot, and the weights, so
// parallel search branches can score snapshots without coordination.
package score

import (
	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/casting/domain"
	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/casting/state"
)

// Weights prices one assignment per tier. Avoid is expected to be negative.
type Weights struct {
	MustHave  int
	Preferred int
	Avoid     int
}

// DefaultWeights returns the standard pricing: +3 per must-have, +1 per
// preferred, −2 per avoided assignment.
func DefaultWeights() Weights {
	return Weights{MustHave: 3, Preferred: 1, Avoid: -2}
}

// DancerScore computes dancer d's signed satisfaction score.
func DancerScore(u *domain.Universe, s state.Assignment, d int, w Weights) int {
	total := 0
	s.EachAssigned(d, func(p int) bool {
		switch u.Tier(d, p) {
		case domain.TierMustHave:
			total += w.MustHave
		case domain.TierPreferred:
			total += w.Preferred
		case domain.TierAvoid:
			total += w.Avoid
		}
		return true
	})
	return total
}

// TotalScore sums every dancer's score.
func TotalScore(u *domain.Universe, s state.Assignment, w Weights) int {
	total := 0
	for d := 0; d < u.DancerCount(); d++ {
		total += DancerScore(u, s, d, w)
	}
	return total
}

// DancerBreakdown carries one dancer's score with its tier counts, for
// reports.
type DancerBreakdown struct {
	Dancer    string `json:"dancer"`
	Score     int    `json:"score"`
	MustHave  int    `json:"must_have"`
	Preferred int    `json:"preferred"`
	Avoided   int    `json:"avoided"`
}

// Breakdown is the full scoring picture of one snapshot, dancers in
// universe order.
type Breakdown struct {
	Total   int               `json:"total"`
	Dancers []DancerBreakdown `json:"dancers"`
}

// Compute builds the breakdown for a snapshot.
func Compute(u *domain.Universe, s state.Assignment, w Weights) Breakdown {
	out := Breakdown{Dancers: make([]DancerBreakdown, 0, u.DancerCount())}
	for d := 0; d < u.DancerCount(); d++ {
		row := DancerBreakdown{Dancer: u.DancerAt(d).ID}
		s.EachAssigned(d, func(p int) bool {
			switch u.Tier(d, p) {
			case domain.TierMustHave:
				row.MustHave++
				row.Score += w.MustHave
			case domain.TierPreferred:
				row.Preferred++
				row.Score += w.Preferred
			case domain.TierAvoid:
				row.Avoided++
				row.Score += w.Avoid
			}
			return true
		})
		out.Total += row.Score
		out.Dancers = append(out.Dancers, row)
	}
	return out
}

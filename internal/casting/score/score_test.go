package score

import (
	"testing"

	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/casting/domain"
	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/casting/state"
)

func scoringUniverse(t *testing.T) *domain.Universe {
	t.Helper()
	u, err := domain.NewUniverse(domain.UniverseInput{
		Slots: []domain.Slot{"t1", "t2", "t3"},
		Pieces: []domain.PieceInput{
			{ID: "waltz", Rehearsals: []domain.Slot{"t1"}, MinDancers: 1, MaxDancers: 2},
			{ID: "tango", Rehearsals: []domain.Slot{"t2"}, MinDancers: 1, MaxDancers: 2},
			{ID: "salsa", Rehearsals: []domain.Slot{"t3"}, MinDancers: 1, MaxDancers: 2},
		},
		Dancers: []domain.DancerInput{
			{ID: "ana", Availability: []domain.Slot{"t1", "t2", "t3"}, MustHave: []string{"waltz"}, Preferred: []string{"tango"}, Avoid: []string{"salsa"}},
			{ID: "bea", Availability: []domain.Slot{"t1", "t2", "t3"}, Preferred: []string{"waltz"}},
		},
	})
	if err != nil {
		t.Fatalf("new universe: %v", err)
	}
	return u
}

func TestDancerScoreWeighsTiers(t *testing.T) {
	u := scoringUniverse(t)
	ana, _ := u.DancerIndex("ana")
	waltz, _ := u.PieceIndex("waltz")
	tango, _ := u.PieceIndex("tango")
	salsa, _ := u.PieceIndex("salsa")
	w := DefaultWeights()

	s := state.Empty(u.DancerCount(), u.PieceCount())
	if got := DancerScore(u, s, ana, w); got != 0 {
		t.Fatalf("expected 0 for empty assignment, got %d", got)
	}

	s = s.With(ana, waltz).With(ana, tango).With(ana, salsa)
	// 3 (must-have) + 1 (preferred) − 2 (avoid) = 2
	if got := DancerScore(u, s, ana, w); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
}

func TestTotalScoreSumsDancers(t *testing.T) {
	u := scoringUniverse(t)
	ana, _ := u.DancerIndex("ana")
	bea, _ := u.DancerIndex("bea")
	waltz, _ := u.PieceIndex("waltz")
	w := DefaultWeights()

	s := state.Empty(u.DancerCount(), u.PieceCount()).With(ana, waltz).With(bea, waltz)
	if got := TotalScore(u, s, w); got != 4 {
		t.Fatalf("expected 3+1=4, got %d", got)
	}
}

func TestComputeBreakdown(t *testing.T) {
	u := scoringUniverse(t)
	ana, _ := u.DancerIndex("ana")
	waltz, _ := u.PieceIndex("waltz")
	salsa, _ := u.PieceIndex("salsa")

	s := state.Empty(u.DancerCount(), u.PieceCount()).With(ana, waltz).With(ana, salsa)
	got := Compute(u, s, DefaultWeights())

	if got.Total != 1 {
		t.Fatalf("expected total 1, got %d", got.Total)
	}
	if len(got.Dancers) != 2 {
		t.Fatalf("expected every dancer listed, got %d", len(got.Dancers))
	}
	anaRow := got.Dancers[0]
	if anaRow.Dancer != "ana" || anaRow.Score != 1 || anaRow.MustHave != 1 || anaRow.Avoided != 1 || anaRow.Preferred != 0 {
		t.Fatalf("unexpected ana row: %+v", anaRow)
	}
	beaRow := got.Dancers[1]
	if beaRow.Dancer != "bea" || beaRow.Score != 0 {
		t.Fatalf("unexpected bea row: %+v", beaRow)
	}
}

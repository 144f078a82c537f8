package planner

import (
	"errors"
	"time"

	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/casting/domain"
	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/casting/score"
	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/casting/trace"
)

var (
	// ErrNilUniverse reports a query issued without a universe.
	ErrNilUniverse = errors.New("planner: universe is required")
	// ErrBounds reports a horizon whose bounds are malformed.
	ErrBounds = errors.New("planner: invalid horizon bounds")
)

// Query names the planner entry point that produced a result. Archives
// and reports carry it so a stored run can be read back unambiguously.
type Query string

const (
	QueryFeasible Query = "feasible"
	QueryOptimize Query = "optimize"
)

// Status classifies the outcome of a search.
type Status int

const (
	StatusUnspecified Status = iota
	// StatusFound means a valid snapshot was reached and a witness trace
	// is attached to the result.
	StatusFound
	// StatusUnsatWithinHorizon means the reachable state graph was
	// exhausted up to MaxSteps without finding a valid snapshot. It is a
	// proof relative to the horizon, not beyond it.
	StatusUnsatWithinHorizon
	// StatusBudgetExceeded means a node budget, deadline, or context
	// cancellation stopped the search before it was conclusive. The
	// result still carries the best witness found so far, if any.
	StatusBudgetExceeded
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusUnsatWithinHorizon:
		return "unsat_within_horizon"
	case StatusBudgetExceeded:
		return "budget_exceeded"
	default:
		return "unspecified"
	}
}

// Default horizon bounds, applied when a request leaves Bounds zero.
const (
	DefaultMinSteps = 5
	DefaultMaxSteps = 10
)

// Bounds fixes the trace-length window for a query. MinSteps is the
// minimum returned trace length; shorter witnesses are padded with
// trailing stutters, which never changes the final snapshot. MaxSteps
// caps the search depth.
type Bounds struct {
	MinSteps int
	MaxSteps int
}

// DefaultBounds returns the standard search window.
func DefaultBounds() Bounds {
	return Bounds{MinSteps: DefaultMinSteps, MaxSteps: DefaultMaxSteps}
}

func (b Bounds) validate() error {
	if b.MinSteps < 0 {
		return ErrBounds
	}
	if b.MaxSteps < 1 || b.MaxSteps < b.MinSteps {
		return ErrBounds
	}
	return nil
}

// Budget caps the resources a single query may spend. Zero fields mean
// unlimited. MaxNodes counts generated (deduplicated) snapshots and
// cuts deterministically; MaxDuration is a wall-clock cap.
type Budget struct {
	MaxNodes    int
	MaxDuration time.Duration
}

// Request carries everything a query needs beyond the universe.
// The zero value is usable: default bounds, no budget, default policy
// semantics from its zero value, default weights, and one worker per
// available CPU.
type Request struct {
	Bounds  Bounds
	Budget  Budget
	Policy  domain.Policy
	Weights score.Weights

	// Workers sets the expansion parallelism per layer. Values below 1
	// select runtime.GOMAXPROCS(0).
	Workers int

	// OnLayer, when set, is invoked after each fully merged layer. It
	// runs on the search goroutine; keep it fast.
	OnLayer func(LayerInfo)
}

// LayerInfo summarizes one completed search layer for observers.
type LayerInfo struct {
	// Depth is the number of transitions from the root to this layer.
	Depth int
	// Frontier is the number of new unique snapshots entering the next
	// expansion round.
	Frontier int
	// Generated, Duplicates, and Pruned are running totals since the
	// start of the query.
	Generated  int
	Duplicates int
	Pruned     int
}

// Stats reports search effort. Elapsed is wall-clock time; everything
// else is deterministic for a given request and worker-independent.
type Stats struct {
	NodesExpanded  int           `json:"nodes_expanded"`
	NodesGenerated int           `json:"nodes_generated"`
	Duplicates     int           `json:"duplicates"`
	Pruned         int           `json:"pruned"`
	DepthReached   int           `json:"depth_reached"`
	Elapsed        time.Duration `json:"elapsed"`
}

// Result is the outcome of one query.
type Result struct {
	Query  Query
	Status Status

	// Trace is the witness for StatusFound, already padded to MinSteps.
	// For StatusBudgetExceeded it holds the best witness found before
	// the cut, and may be empty when none was reached.
	Trace trace.Trace

	// Score breaks down the witness by dancer. Nil when no witness is
	// attached.
	Score *score.Breakdown

	Stats Stats
}

// Witness reports whether the result carries a usable trace.
func (r Result) Witness() bool {
	return len(r.Trace.States) > 0
}

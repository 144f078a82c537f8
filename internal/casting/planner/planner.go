package planner

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/casting/domain"
	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/casting/engine"
	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/casting/invariant"
	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/casting/score"
	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/casting/state"
	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/casting/trace"
)

var tracer = otel.Tracer("scheduler.planner")

// Feasible searches for any valid assignment reachable within the horizon.
// It returns the first witness in deterministic search order, or
// StatusUnsatWithinHorizon when the reachable graph holds none.
func Feasible(ctx context.Context, u *domain.Universe, req Request) (Result, error) {
	return run(ctx, u, req, QueryFeasible)
}

// Optimize searches the whole horizon and returns the highest-scoring valid
// assignment. Ties break by fewer transitions, then by smallest canonical
// snapshot key, so the answer is unique for a given universe and request.
func Optimize(ctx context.Context, u *domain.Universe, req Request) (Result, error) {
	return run(ctx, u, req, QueryOptimize)
}

func run(ctx context.Context, u *domain.Universe, req Request, q Query) (Result, error) {
	if u == nil {
		return Result{}, ErrNilUniverse
	}
	if ctx == nil {
		ctx = context.Background()
	}

	bounds := req.Bounds
	if bounds == (Bounds{}) {
		bounds = DefaultBounds()
	}
	if err := bounds.validate(); err != nil {
		return Result{}, fmt.Errorf("%w: min_steps=%d max_steps=%d", err, bounds.MinSteps, bounds.MaxSteps)
	}

	weights := req.Weights
	if weights == (score.Weights{}) {
		weights = score.DefaultWeights()
	}
	workers := req.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	ctx, span := tracer.Start(ctx, "planner."+string(q),
		oteltrace.WithAttributes(
			attribute.Int("planner.max_steps", bounds.MaxSteps),
			attribute.Int("planner.workers", workers),
		),
	)
	defer span.End()

	start := time.Now()
	s := &searcher{
		ctx:      ctx,
		u:        u,
		pol:      req.Policy,
		weights:  weights,
		optimize: q == QueryOptimize,
		workers:  workers,
		onLayer:  req.OnLayer,
		maxNodes: req.Budget.MaxNodes,
		visited:  make(map[string]int32),
	}
	if req.Budget.MaxDuration > 0 {
		s.deadline = start.Add(req.Budget.MaxDuration)
	}

	witness := s.search(bounds)
	s.stats.Elapsed = time.Since(start)

	res := Result{Query: q, Status: StatusUnsatWithinHorizon, Stats: s.stats}
	switch {
	case s.cut:
		res.Status = StatusBudgetExceeded
	case witness >= 0:
		res.Status = StatusFound
	}
	if witness >= 0 {
		tr, err := s.buildTrace(witness)
		if err != nil {
			return Result{}, err
		}
		res.Trace = tr.PadTo(bounds.MinSteps)
		bd := score.Compute(u, res.Trace.Final(), weights)
		res.Score = &bd
	}

	span.SetAttributes(
		attribute.String("planner.status", res.Status.String()),
		attribute.Int("planner.nodes_expanded", res.Stats.NodesExpanded),
		attribute.Int("planner.nodes_generated", res.Stats.NodesGenerated),
		attribute.Int("planner.depth_reached", res.Stats.DepthReached),
	)
	if res.Score != nil {
		span.SetAttributes(attribute.Int("planner.score", res.Score.Total))
	}
	return res, nil
}

// nodeRec is one arena entry. Snapshots are not retained here; a witness is
// rebuilt by walking parents to the root and replaying the actions through
// the engine.
type nodeRec struct {
	parent int32
	act    engine.Action
}

// frontierEntry pairs an arena index with the live snapshot the next layer
// expands from.
type frontierEntry struct {
	idx  int32
	snap state.Assignment
}

// candidate is a successor produced by a worker, awaiting the ordered merge.
type candidate struct {
	parent int32
	act    engine.Action
	snap   state.Assignment
	key    string
	valid  bool
	score  int
}

// batch carries one frontier chunk's successors plus worker-local counters,
// so workers never touch shared state. truncated records that interruption
// stopped the chunk before every node was expanded; the merge turns it into
// a budget cut so an unfinished sweep is never reported as proven unsat.
type batch struct {
	cands     []candidate
	expanded  int
	pruned    int
	truncated bool
}

type searcher struct {
	ctx     context.Context
	u       *domain.Universe
	pol     domain.Policy
	weights score.Weights

	optimize bool
	workers  int
	onLayer  func(LayerInfo)

	maxNodes int
	deadline time.Time

	visited map[string]int32
	nodes   []nodeRec

	stats Stats
	cut   bool

	found     bool
	bestIdx   int32
	bestScore int
	bestDepth int
	bestKey   string
}

func (s *searcher) interrupted() bool {
	if s.ctx.Err() != nil {
		return true
	}
	return !s.deadline.IsZero() && time.Now().After(s.deadline)
}

// search runs the layered sweep and returns the witness arena index, or -1
// when none was reached. For optimization the witness is the incumbent at
// the moment the sweep ends, whether the horizon was exhausted or a budget
// cut it short.
func (s *searcher) search(bounds Bounds) int32 {
	init := state.Empty(s.u.DancerCount(), s.u.PieceCount())
	s.nodes = append(s.nodes, nodeRec{parent: -1})
	s.visited[init.Key()] = 0

	if invariant.Valid(s.u, init, s.pol) {
		if !s.optimize {
			return 0
		}
		s.consider(0, init.Key(), score.TotalScore(s.u, init, s.weights), 0)
	}

	frontier := []frontierEntry{{idx: 0, snap: init}}
	for depth := 1; depth <= bounds.MaxSteps && len(frontier) > 0; depth++ {
		if s.interrupted() {
			s.cut = true
			break
		}

		batches := s.expandLayer(frontier)
		next := make([]frontierEntry, 0, len(frontier))
		if goal := s.merge(batches, depth, &next); goal >= 0 {
			// A witness in hand is a definitive answer even when a later
			// chunk of the same layer was truncated.
			s.cut = false
			s.stats.DepthReached = depth
			return goal
		}
		if s.cut {
			break
		}

		s.stats.DepthReached = depth
		if s.onLayer != nil {
			s.onLayer(LayerInfo{
				Depth:      depth,
				Frontier:   len(next),
				Generated:  s.stats.NodesGenerated,
				Duplicates: s.stats.Duplicates,
				Pruned:     s.stats.Pruned,
			})
		}
		frontier = next
	}

	if s.optimize && s.found {
		return s.bestIdx
	}
	return -1
}

// expandLayer fans the frontier out to the workers in contiguous chunks.
// Chunk boundaries depend only on frontier size and worker count, and each
// batch keeps its chunk's candidates in enumeration order, so the merge
// sees one well-defined sequence no matter how the work was split.
func (s *searcher) expandLayer(frontier []frontierEntry) []batch {
	workers := s.workers
	if workers > len(frontier) {
		workers = len(frontier)
	}
	if workers <= 1 {
		return []batch{s.expandChunk(frontier)}
	}

	batches := make([]batch, workers)
	chunk := (len(frontier) + workers - 1) / workers
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > len(frontier) {
			hi = len(frontier)
		}
		if lo >= hi {
			break
		}
		idx := w
		g.Go(func() error {
			batches[idx] = s.expandChunk(frontier[lo:hi])
			return nil
		})
	}
	// Workers expand independently and never fail; interruption is polled
	// inside the chunk loop instead.
	_ = g.Wait()
	return batches
}

func (s *searcher) expandChunk(chunk []frontierEntry) batch {
	b := batch{cands: make([]candidate, 0, len(chunk)*4)}
	for i := range chunk {
		if s.interrupted() {
			b.truncated = true
			break
		}
		s.expandNode(chunk[i], &b)
		b.expanded++
	}
	return b
}

// expandNode enumerates a snapshot's outgoing actions in a fixed order:
// assigns over each dancer's candidate pieces, then avoid-tier assigns when
// the policy admits the exception, then unassigns over held pieces. Stutter
// is a self-loop the dedup would discard, so it is never enumerated; traces
// gain stutters only through padding.
func (s *searcher) expandNode(e frontierEntry, b *batch) {
	u := s.u
	for d := 0; d < u.DancerCount(); d++ {
		for _, p := range u.Candidates(d) {
			s.probe(e, engine.Assign(d, p), b)
		}
	}
	if s.pol.AvoidException {
		for d := 0; d < u.DancerCount(); d++ {
			for _, p := range u.AvoidCandidates(d) {
				s.probe(e, engine.Assign(d, p), b)
			}
		}
	}
	for d := 0; d < u.DancerCount(); d++ {
		e.snap.EachAssigned(d, func(p int) bool {
			s.probe(e, engine.Unassign(d, p), b)
			return true
		})
	}
}

// probe validates one action and, if it survives the engine and the
// fairness prune, records the successor. Check runs before Apply so the
// common rejection path allocates nothing.
func (s *searcher) probe(e frontierEntry, act engine.Action, b *batch) {
	if engine.Check(s.u, e.snap, act, s.pol) != engine.ReasonNone {
		return
	}
	next, err := engine.Apply(s.u, e.snap, act, s.pol)
	if err != nil {
		return
	}

	if s.pol.PruneUnfair && s.pol.FairnessBound >= 1 {
		if lo, hi := next.CountSpread(); hi-lo > s.pol.FairnessBound {
			b.pruned++
			return
		}
	}

	c := candidate{parent: e.idx, act: act, snap: next, key: next.Key()}
	if invariant.Valid(s.u, next, s.pol) {
		c.valid = true
		if s.optimize {
			c.score = score.TotalScore(s.u, next, s.weights)
		}
	}
	b.cands = append(b.cands, c)
}

// merge folds worker batches into the arena in chunk order. Everything
// order-sensitive happens here, on one goroutine: deduplication, goal
// selection, incumbent updates, and the node-budget cut. For feasibility it
// returns the first valid node's index; a goal beats a budget cut landing
// on the same node.
func (s *searcher) merge(batches []batch, depth int, next *[]frontierEntry) int32 {
	for _, b := range batches {
		s.stats.NodesExpanded += b.expanded
		s.stats.Pruned += b.pruned
		if b.truncated {
			s.cut = true
		}
		for i := range b.cands {
			c := &b.cands[i]
			if _, seen := s.visited[c.key]; seen {
				s.stats.Duplicates++
				continue
			}
			idx := int32(len(s.nodes))
			s.visited[c.key] = idx
			s.nodes = append(s.nodes, nodeRec{parent: c.parent, act: c.act})
			s.stats.NodesGenerated++
			*next = append(*next, frontierEntry{idx: idx, snap: c.snap})

			if c.valid {
				if !s.optimize {
					return idx
				}
				s.consider(idx, c.key, c.score, depth)
			}
			if s.maxNodes > 0 && s.stats.NodesGenerated >= s.maxNodes {
				s.cut = true
				return -1
			}
		}
	}
	return -1
}

// consider updates the incumbent under the fixed tie-break: higher score,
// then fewer transitions, then smallest canonical key.
func (s *searcher) consider(idx int32, key string, sc, depth int) {
	switch {
	case !s.found:
	case sc > s.bestScore:
	case sc < s.bestScore:
		return
	case depth < s.bestDepth:
	case depth > s.bestDepth:
		return
	case key < s.bestKey:
	default:
		return
	}
	s.found = true
	s.bestIdx = idx
	s.bestScore = sc
	s.bestDepth = depth
	s.bestKey = key
}

// buildTrace reconstructs the action path root→witness from parent links,
// then replays it through the engine to materialize the intermediate
// snapshots. Replay cannot fail for arena nodes; the error path guards
// against arena corruption.
func (s *searcher) buildTrace(idx int32) (trace.Trace, error) {
	var rev []engine.Action
	for cur := idx; cur > 0; cur = s.nodes[cur].parent {
		rev = append(rev, s.nodes[cur].act)
	}
	actions := make([]engine.Action, len(rev))
	for i, act := range rev {
		actions[len(rev)-1-i] = act
	}

	states := make([]state.Assignment, 0, len(actions)+1)
	cur := state.Empty(s.u.DancerCount(), s.u.PieceCount())
	states = append(states, cur)
	for i, act := range actions {
		next, err := engine.Apply(s.u, cur, act, s.pol)
		if err != nil {
			return trace.Trace{}, fmt.Errorf("planner: rebuild witness step %d: %w", i, err)
		}
		cur = next
		states = append(states, cur)
	}
	return trace.Trace{Actions: actions, States: states}, nil
}

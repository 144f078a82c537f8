package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	castdomain "github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/casting/domain"
	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/casting/invariant"
	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/casting/planner"
	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/casting/score"
	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/casting/state"
	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/ingest"
)

// RosterValidateTool defines the MCP tool schema for roster validation.
func RosterValidateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "roster_validate",
		Description: "Validates a roster document and reports its universe shape",
	}
}

// CastFeasibleTool defines the MCP tool schema for feasibility queries.
func CastFeasibleTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "cast_feasible",
		Description: "Searches for any valid cast within the trace horizon",
	}
}

// CastOptimizeTool defines the MCP tool schema for optimizing queries.
func CastOptimizeTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "cast_optimize",
		Description: "Searches for the best-scoring valid cast within the trace horizon",
	}
}

// AssignmentCheckTool defines the MCP tool schema for checking a hand-built cast.
func AssignmentCheckTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "assignment_check",
		Description: "Evaluates an explicit assignment against the casting rules",
	}
}

// RosterValidateHandler loads a roster and reports whether it builds a
// valid universe. Configuration failures come back in the result, not as
// tool errors, so agents can read the code and subject.
func RosterValidateHandler() mcp.ToolHandlerFor[ValidateInput, ValidateResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input ValidateInput) (*mcp.CallToolResult, ValidateResult, error) {
		roster, err := ingest.Parse([]byte(input.RosterYAML))
		if err != nil {
			return nil, invalidRoster(err), nil
		}
		u, err := roster.Universe()
		if err != nil {
			return nil, invalidRoster(err), nil
		}
		return nil, ValidateResult{
			OK:      true,
			Slots:   u.SlotCount(),
			Pieces:  u.PieceCount(),
			Dancers: u.DancerCount(),
		}, nil
	}
}

// CastFeasibleHandler runs a feasibility query over the roster.
func CastFeasibleHandler(callTimeout time.Duration) mcp.ToolHandlerFor[RosterInput, CastResult] {
	return castHandler(callTimeout, planner.Feasible, false)
}

// CastOptimizeHandler runs an optimizing query over the roster and attaches
// the score breakdown.
func CastOptimizeHandler(callTimeout time.Duration) mcp.ToolHandlerFor[RosterInput, CastResult] {
	return castHandler(callTimeout, planner.Optimize, true)
}

func castHandler(callTimeout time.Duration, query func(context.Context, *castdomain.Universe, planner.Request) (planner.Result, error), withScores bool) mcp.ToolHandlerFor[RosterInput, CastResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RosterInput) (*mcp.CallToolResult, CastResult, error) {
		roster, u, err := loadRoster(input.RosterYAML)
		if err != nil {
			return nil, CastResult{}, err
		}

		bounds := roster.SearchBounds()
		if input.MinSteps != nil {
			bounds.MinSteps = *input.MinSteps
		}
		if input.MaxSteps != nil {
			bounds.MaxSteps = *input.MaxSteps
		}

		req := planner.Request{
			Bounds: bounds,
			Budget: planner.Budget{
				MaxNodes:    input.MaxNodes,
				MaxDuration: time.Duration(input.TimeoutMS) * time.Millisecond,
			},
			Policy: roster.CastingPolicy(),
		}

		runCtx := ctx
		if callTimeout > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(ctx, callTimeout)
			defer cancel()
		}

		res, err := query(runCtx, u, req)
		if err != nil {
			return nil, CastResult{}, fmt.Errorf("run %s query: %w", res.Query, err)
		}

		out := CastResult{
			Status: res.Status.String(),
			Stats: SearchStats{
				NodesExpanded:  res.Stats.NodesExpanded,
				NodesGenerated: res.Stats.NodesGenerated,
				Duplicates:     res.Stats.Duplicates,
				Pruned:         res.Stats.Pruned,
				DepthReached:   res.Stats.DepthReached,
				ElapsedMS:      res.Stats.Elapsed.Milliseconds(),
			},
		}
		if res.Witness() {
			out.Steps = res.Trace.Script(u)
			out.Casts = castSheet(u, res.Trace.Final())
		}
		if withScores && res.Score != nil {
			out.TotalScore = res.Score.Total
			out.Scores = dancerScores(*res.Score)
		}
		return nil, out, nil
	}
}

// AssignmentCheckHandler evaluates a hand-built assignment map against the
// casting rules and scores it.
func AssignmentCheckHandler() mcp.ToolHandlerFor[CheckInput, CheckResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input CheckInput) (*mcp.CallToolResult, CheckResult, error) {
		roster, u, err := loadRoster(input.RosterYAML)
		if err != nil {
			return nil, CheckResult{}, err
		}

		held := make(map[int][]int, len(input.Assignment))
		for dancerID, pieceIDs := range input.Assignment {
			d, ok := u.DancerIndex(dancerID)
			if !ok {
				return nil, CheckResult{}, fmt.Errorf("assignment names unknown dancer %q", dancerID)
			}
			for _, pieceID := range pieceIDs {
				p, ok := u.PieceIndex(pieceID)
				if !ok {
					return nil, CheckResult{}, fmt.Errorf("assignment names unknown piece %q", pieceID)
				}
				held[d] = append(held[d], p)
			}
		}

		snapshot := state.FromAssignments(u.DancerCount(), u.PieceCount(), held)
		pol := roster.CastingPolicy()
		blocking := invariant.Check(u, snapshot, pol).Blocking(pol)
		breakdown := score.Compute(u, snapshot, score.DefaultWeights())

		out := CheckResult{
			Valid:      len(blocking) == 0,
			TotalScore: breakdown.Total,
			Scores:     dancerScores(breakdown),
		}
		for _, v := range blocking {
			out.Violations = append(out.Violations, CheckViolation{
				Kind:    string(v.Kind),
				Dancer:  v.Dancer,
				Piece:   v.Piece,
				Pieces:  v.Pieces,
				Dancers: v.Dancers,
				Detail:  v.Detail,
			})
		}
		return nil, out, nil
	}
}

func loadRoster(doc string) (*ingest.Roster, *castdomain.Universe, error) {
	roster, err := ingest.Parse([]byte(doc))
	if err != nil {
		return nil, nil, fmt.Errorf("parse roster: %w", err)
	}
	u, err := roster.Universe()
	if err != nil {
		return nil, nil, fmt.Errorf("build universe: %w", err)
	}
	return roster, u, nil
}

func invalidRoster(err error) ValidateResult {
	out := ValidateResult{Detail: err.Error()}
	var cfgErr *castdomain.ConfigError
	if errors.As(err, &cfgErr) {
		out.Code = string(cfgErr.Code)
		out.Subject = cfgErr.Subject
		out.Detail = cfgErr.Detail
	}
	return out
}

func castSheet(u *castdomain.Universe, final state.Assignment) []PieceCast {
	casts := make([]PieceCast, 0, u.PieceCount())
	for p := 0; p < u.PieceCount(); p++ {
		piece := u.PieceAt(p)
		cast := PieceCast{
			Piece: piece.ID,
			Min:   piece.MinDancers,
			Max:   piece.MaxDancers,
		}
		for d := 0; d < u.DancerCount(); d++ {
			if final.Has(d, p) {
				cast.Dancers = append(cast.Dancers, u.DancerAt(d).ID)
			}
		}
		casts = append(casts, cast)
	}
	return casts
}

func dancerScores(b score.Breakdown) []DancerScore {
	scores := make([]DancerScore, 0, len(b.Dancers))
	for _, row := range b.Dancers {
		scores = append(scores, DancerScore{
			Dancer:    row.Dancer,
			Score:     row.Score,
			MustHave:  row.MustHave,
			Preferred: row.Preferred,
			Avoided:   row.Avoided,
		})
	}
	return scores
}

// Package domain defines the MCP tool input and output shapes for the
// scheduler. The structs carry json and jsonschema tags so the SDK can
// advertise typed schemas to agent clients.
package domain

// RosterInput carries a roster document plus optional overrides shared by
// every planner-backed tool.
type RosterInput struct {
	RosterYAML string `json:"roster_yaml" jsonschema:"roster document (YAML)"`
	MinSteps   *int   `json:"min_steps,omitempty" jsonschema:"minimum trace length override"`
	MaxSteps   *int   `json:"max_steps,omitempty" jsonschema:"maximum search depth override"`
	MaxNodes   int    `json:"max_nodes,omitempty" jsonschema:"node budget (0 = unlimited)"`
	TimeoutMS  int    `json:"timeout_ms,omitempty" jsonschema:"wall-clock budget in milliseconds (0 = unlimited)"`
}

// ValidateInput is the input for roster_validate.
type ValidateInput struct {
	RosterYAML string `json:"roster_yaml" jsonschema:"roster document (YAML)"`
}

// ValidateResult reports whether a roster loads into a valid universe.
type ValidateResult struct {
	OK      bool   `json:"ok" jsonschema:"whether the roster is valid"`
	Code    string `json:"code,omitempty" jsonschema:"configuration error code"`
	Subject string `json:"subject,omitempty" jsonschema:"entity the error points at"`
	Detail  string `json:"detail,omitempty" jsonschema:"human-readable error detail"`
	Slots   int    `json:"slots,omitempty" jsonschema:"slot domain size"`
	Pieces  int    `json:"pieces,omitempty" jsonschema:"piece count"`
	Dancers int    `json:"dancers,omitempty" jsonschema:"dancer count"`
}

// PieceCast is the final cast of one piece.
type PieceCast struct {
	Piece   string   `json:"piece" jsonschema:"piece identifier"`
	Min     int      `json:"min" jsonschema:"minimum headcount"`
	Max     int      `json:"max" jsonschema:"maximum headcount"`
	Dancers []string `json:"dancers" jsonschema:"assigned dancer identifiers"`
}

// DancerScore is one dancer's satisfaction breakdown.
type DancerScore struct {
	Dancer    string `json:"dancer" jsonschema:"dancer identifier"`
	Score     int    `json:"score" jsonschema:"signed satisfaction score"`
	MustHave  int    `json:"must_have" jsonschema:"satisfied must-have count"`
	Preferred int    `json:"preferred" jsonschema:"satisfied preferred count"`
	Avoided   int    `json:"avoided" jsonschema:"avoided assignments held"`
}

// SearchStats summarizes search effort.
type SearchStats struct {
	NodesExpanded  int   `json:"nodes_expanded" jsonschema:"snapshots expanded"`
	NodesGenerated int   `json:"nodes_generated" jsonschema:"unique snapshots generated"`
	Duplicates     int   `json:"duplicates" jsonschema:"deduplicated successors"`
	Pruned         int   `json:"pruned" jsonschema:"fairness-pruned successors"`
	DepthReached   int   `json:"depth_reached" jsonschema:"deepest completed layer"`
	ElapsedMS      int64 `json:"elapsed_ms" jsonschema:"wall-clock milliseconds"`
}

// CastResult is the output of cast_feasible and cast_optimize.
type CastResult struct {
	Status     string        `json:"status" jsonschema:"found, unsat_within_horizon, or budget_exceeded"`
	Steps      []string      `json:"steps,omitempty" jsonschema:"action script of the witness trace"`
	Casts      []PieceCast   `json:"casts,omitempty" jsonschema:"final cast sheet"`
	TotalScore int           `json:"total_score,omitempty" jsonschema:"aggregate satisfaction score"`
	Scores     []DancerScore `json:"scores,omitempty" jsonschema:"per-dancer breakdown"`
	Stats      SearchStats   `json:"stats" jsonschema:"search effort"`
}

// CheckInput is the input for assignment_check: a roster plus an explicit
// assignment map to evaluate.
type CheckInput struct {
	RosterYAML string              `json:"roster_yaml" jsonschema:"roster document (YAML)"`
	Assignment map[string][]string `json:"assignment" jsonschema:"dancer id to assigned piece ids"`
}

// CheckViolation is one broken casting rule.
type CheckViolation struct {
	Kind    string   `json:"kind" jsonschema:"rule name"`
	Dancer  string   `json:"dancer,omitempty" jsonschema:"dancer involved"`
	Piece   string   `json:"piece,omitempty" jsonschema:"piece involved"`
	Pieces  []string `json:"pieces,omitempty" jsonschema:"pieces involved"`
	Dancers []string `json:"dancers,omitempty" jsonschema:"dancers involved"`
	Detail  string   `json:"detail" jsonschema:"human-readable detail"`
}

// CheckResult reports violations and scores for a hand-built assignment.
type CheckResult struct {
	Valid      bool             `json:"valid" jsonschema:"whether the assignment satisfies every hard rule"`
	Violations []CheckViolation `json:"violations,omitempty" jsonschema:"every broken rule"`
	TotalScore int              `json:"total_score" jsonschema:"aggregate satisfaction score"`
	Scores     []DancerScore    `json:"scores" jsonschema:"per-dancer breakdown"`
}

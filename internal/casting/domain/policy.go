package domain

// DefaultFairnessBound is the maximum allowed spread between any two
// dancers' assignment counts when callers do not configure one.
const DefaultFairnessBound = 2

// Policy carries the run-level knobs that change which assignments count as
// acceptable. The zero value is strict on avoid tiers, does not demand that
// every dancer be cast, and performs no fairness pruning; DefaultPolicy is
// the configuration the CLI and MCP surfaces start from.
type Policy struct {
	// FairnessBound caps the spread between the largest and smallest
	// per-dancer assignment counts. Values below 1 disable the check.
	FairnessBound int

	// AvoidException permits assigning a dancer to an avoided piece while
	// the piece still sits below its minimum headcount. When false, avoid
	// tiers are zero-tolerance.
	AvoidException bool

	// RequireFullCast makes "every dancer holds at least one piece" part of
	// assignment validity. Off by default: universes with more dancers than
	// total capacity are legitimate.
	RequireFullCast bool

	// PruneUnfair lets the search drop branches whose fairness spread
	// already exceeds FairnessBound. With AvoidException enabled, a pruned
	// unfair prefix can in rare shapes hide a fair suffix that is only
	// reachable through it; disable pruning to search exhaustively.
	PruneUnfair bool
}

// DefaultPolicy returns the standard run policy: fairness bound 2, strict
// avoid tiers, optional casting coverage, fairness pruning on.
func DefaultPolicy() Policy {
	return Policy{
		FairnessBound: DefaultFairnessBound,
		PruneUnfair:   true,
	}
}

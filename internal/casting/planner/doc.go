// Package planner searches the casting state graph for assignment
// snapshots that satisfy every hard rule. Nodes are immutable snapshots,
// edges are engine-validated actions, and the root is the empty
// assignment; a layered breadth-first sweep bounded by the horizon
// answers two queries:
//
//   - Feasible: return the first valid snapshot within the horizon, or
//     prove that none exists inside it.
//   - Optimize: return the highest-scoring valid snapshot reachable
//     within the horizon, exhaustively unless a budget cuts the run.
//
// Proving infeasibility within the horizon is a normal outcome; the
// statuses keep it distinct from a budget cut, which is inconclusive.
//
// # Determinism
//
// Results do not depend on the worker count. Each layer's frontier is
// split into contiguous chunks expanded in parallel, but candidate
// batches are merged strictly in chunk order, so deduplication, goal
// selection, and node-budget cuts all see candidates in the same order
// a sequential run would. Optimization ties break by higher score, then
// fewer transitions, then smallest canonical snapshot key.
//
// # Budgets
//
// A request may cap generated nodes and wall-clock time, and the run
// honors context cancellation. On any cutoff the planner stops
// cooperatively and returns the best witness found so far with status
// BudgetExceeded. Node-budget cuts are deterministic; clock and
// cancellation cuts are not.
package planner

// Package domain defines the static casting universe: time slots, pieces,
// dancers with tiered piece preferences, and the policy knobs that govern a
// scheduling run.
//
// The universe is intentionally immutable:
// - entities are created once by NewUniverse and never change afterwards,
// - validation happens up front and fails with a coded ConfigError,
// - and derived lookup structures (dense indexes, slot masks, candidate
//   lists) are built at construction so search-time queries are cheap.
//
// Assignments are not part of this package; they live in the state package
// and change only through the transition engine.
package domain

package domain

import "strings"

// Tier classifies a dancer's stance toward one piece.
type Tier int

const (
	// TierNone means the dancer expressed no preference for the piece. The
	// engine never assigns untiered pieces, so the zero value is meaningful
	// rather than invalid.
	TierNone Tier = iota
	// TierMustHave marks a piece the dancer considers essential.
	TierMustHave
	// TierPreferred marks a piece the dancer would like but can live without.
	TierPreferred
	// TierAvoid marks a piece the dancer asked to stay out of.
	TierAvoid
)

func (t Tier) String() string {
	switch t {
	case TierNone:
		return "none"
	case TierMustHave:
		return "must_have"
	case TierPreferred:
		return "preferred"
	case TierAvoid:
		return "avoid"
	default:
		return "unknown"
	}
}

// Dancer is a cast member with fixed availability and three pairwise
// disjoint preference tiers over pieces. Dancers never change after the
// universe loads.
type Dancer struct {
	ID           string
	Availability []Slot
	MustHave     []string
	Preferred    []string
	Avoid        []string
}

// DancerInput describes a dancer before normalization.
type DancerInput struct {
	ID           string
	Availability []Slot
	MustHave     []string
	Preferred    []string
	Avoid        []string
}

// NormalizeDancerInput trims the dancer ID, canonicalizes the availability
// set, and sorts each preference tier with duplicates removed.
func NormalizeDancerInput(input DancerInput) DancerInput {
	input.ID = strings.TrimSpace(input.ID)
	input.Availability = NormalizeSlots(input.Availability)
	input.MustHave = normalizeIDs(input.MustHave)
	input.Preferred = normalizeIDs(input.Preferred)
	input.Avoid = normalizeIDs(input.Avoid)
	return input
}

func validateDancer(input DancerInput) error {
	if input.ID == "" {
		return configErrorf(ConfigCodeMissingID, "", "dancer id is required")
	}
	seen := make(map[string]Tier, len(input.MustHave)+len(input.Preferred)+len(input.Avoid))
	for _, tier := range []struct {
		tier Tier
		ids  []string
	}{
		{TierMustHave, input.MustHave},
		{TierPreferred, input.Preferred},
		{TierAvoid, input.Avoid},
	} {
		for _, pieceID := range tier.ids {
			if prev, ok := seen[pieceID]; ok {
				return configErrorf(ConfigCodeOverlappingTiers, input.ID,
					"piece %s appears in both %s and %s tiers", pieceID, prev, tier.tier)
			}
			seen[pieceID] = tier.tier
		}
	}
	return nil
}

package domain

import "strings"

// Piece is a choreographed work with fixed rehearsal requirements and a cast
// size bound. Pieces never change after the universe loads.
type Piece struct {
	ID         string
	Rehearsals []Slot
	MinDancers int
	MaxDancers int
}

// PieceInput describes a piece before normalization.
type PieceInput struct {
	ID         string
	Rehearsals []Slot
	MinDancers int
	MaxDancers int
}

// NormalizePieceInput trims the piece ID and canonicalizes its rehearsal
// slots. Capacity values pass through untouched so validation can report the
// original numbers.
func NormalizePieceInput(input PieceInput) PieceInput {
	input.ID = strings.TrimSpace(input.ID)
	input.Rehearsals = NormalizeSlots(input.Rehearsals)
	return input
}

func validatePiece(input PieceInput) error {
	if input.ID == "" {
		return configErrorf(ConfigCodeMissingID, "", "piece id is required")
	}
	if len(input.Rehearsals) == 0 {
		return configErrorf(ConfigCodeEmptyRehearsalSlots, input.ID, "piece has no rehearsal slots")
	}
	if input.MinDancers < 1 {
		return configErrorf(ConfigCodeInvalidCapacity, input.ID, "min dancers %d must be at least 1", input.MinDancers)
	}
	if input.MaxDancers < input.MinDancers {
		return configErrorf(ConfigCodeInvalidCapacity, input.ID, "max dancers %d below min dancers %d", input.MaxDancers, input.MinDancers)
	}
	return nil
}

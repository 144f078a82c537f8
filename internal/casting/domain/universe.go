package domain

import (
	"math/bits"
	"sort"
)

// Universe is the validated, immutable aggregate of one scheduling run: the
// slot domain, every piece, every dancer, and the derived lookup structures
// the engine and search query on every transition.
type Universe struct {
	slots   []Slot
	pieces  []Piece
	dancers []Dancer

	slotIndex   map[Slot]int
	pieceIndex  map[string]int
	dancerIndex map[string]int

	// Slot membership bitmasks, stride words per entity, entity-major.
	stride      int
	pieceMasks  []uint64
	dancerMasks []uint64

	// tiers is a dancers × pieces matrix, row-major.
	tiers []Tier

	candidates      [][]int
	avoidCandidates [][]int
	mustHaveCounts  []int
}

// UniverseInput describes a universe before normalization and validation.
type UniverseInput struct {
	Slots   []Slot
	Pieces  []PieceInput
	Dancers []DancerInput
}

// NewUniverse normalizes, validates, and indexes a universe. Pieces and
// dancers are ordered by ID so dense indexes are stable for a given input
// regardless of declaration order. Validation stops at the first failure,
// reported as a ConfigError.
func NewUniverse(input UniverseInput) (*Universe, error) {
	slots := NormalizeSlots(input.Slots)
	if len(slots) == 0 || len(input.Pieces) == 0 || len(input.Dancers) == 0 {
		return nil, configErrorf(ConfigCodeEmptyUniverse, "",
			"universe needs at least one slot, one piece, and one dancer")
	}

	slotIndex := make(map[Slot]int, len(slots))
	for i, s := range slots {
		slotIndex[s] = i
	}

	pieces := make([]Piece, 0, len(input.Pieces))
	for _, raw := range input.Pieces {
		normalized := NormalizePieceInput(raw)
		if err := validatePiece(normalized); err != nil {
			return nil, err
		}
		for _, s := range normalized.Rehearsals {
			if _, ok := slotIndex[s]; !ok {
				return nil, configErrorf(ConfigCodeUnknownSlot, normalized.ID,
					"rehearsal slot %s is not in the slot domain", s)
			}
		}
		pieces = append(pieces, Piece(normalized))
	}
	sort.Slice(pieces, func(i, j int) bool { return pieces[i].ID < pieces[j].ID })

	pieceIndex := make(map[string]int, len(pieces))
	for i, p := range pieces {
		if _, ok := pieceIndex[p.ID]; ok {
			return nil, configErrorf(ConfigCodeDuplicateID, p.ID, "piece id declared twice")
		}
		pieceIndex[p.ID] = i
	}

	dancers := make([]Dancer, 0, len(input.Dancers))
	for _, raw := range input.Dancers {
		normalized := NormalizeDancerInput(raw)
		if err := validateDancer(normalized); err != nil {
			return nil, err
		}
		for _, s := range normalized.Availability {
			if _, ok := slotIndex[s]; !ok {
				return nil, configErrorf(ConfigCodeUnknownSlot, normalized.ID,
					"availability slot %s is not in the slot domain", s)
			}
		}
		available := make(map[Slot]struct{}, len(normalized.Availability))
		for _, s := range normalized.Availability {
			available[s] = struct{}{}
		}
		for _, tier := range []struct {
			name string
			ids  []string
		}{
			{"must_have", normalized.MustHave},
			{"preferred", normalized.Preferred},
			{"avoid", normalized.Avoid},
		} {
			for _, pieceID := range tier.ids {
				idx, ok := pieceIndex[pieceID]
				if !ok {
					return nil, configErrorf(ConfigCodeUnknownPiece, normalized.ID,
						"%s tier names unknown piece %s", tier.name, pieceID)
				}
				if tier.name == "avoid" {
					continue
				}
				for _, s := range pieces[idx].Rehearsals {
					if _, here := available[s]; !here {
						return nil, configErrorf(ConfigCodePreferenceOutsideAvailability, normalized.ID,
							"%s piece %s rehearses at %s outside availability", tier.name, pieceID, s)
					}
				}
			}
		}
		dancers = append(dancers, Dancer(normalized))
	}
	sort.Slice(dancers, func(i, j int) bool { return dancers[i].ID < dancers[j].ID })

	dancerIndex := make(map[string]int, len(dancers))
	for i, d := range dancers {
		if _, ok := dancerIndex[d.ID]; ok {
			return nil, configErrorf(ConfigCodeDuplicateID, d.ID, "dancer id declared twice")
		}
		dancerIndex[d.ID] = i
	}

	u := &Universe{
		slots:       slots,
		pieces:      pieces,
		dancers:     dancers,
		slotIndex:   slotIndex,
		pieceIndex:  pieceIndex,
		dancerIndex: dancerIndex,
		stride:      (len(slots) + 63) / 64,
	}
	u.buildIndexes()
	return u, nil
}

func (u *Universe) buildIndexes() {
	u.pieceMasks = make([]uint64, len(u.pieces)*u.stride)
	for i, p := range u.pieces {
		mask := u.pieceMasks[i*u.stride : (i+1)*u.stride]
		for _, s := range p.Rehearsals {
			idx := u.slotIndex[s]
			mask[idx/64] |= 1 << (idx % 64)
		}
	}

	u.dancerMasks = make([]uint64, len(u.dancers)*u.stride)
	u.tiers = make([]Tier, len(u.dancers)*len(u.pieces))
	u.candidates = make([][]int, len(u.dancers))
	u.avoidCandidates = make([][]int, len(u.dancers))
	u.mustHaveCounts = make([]int, len(u.dancers))

	for i, d := range u.dancers {
		mask := u.dancerMasks[i*u.stride : (i+1)*u.stride]
		for _, s := range d.Availability {
			idx := u.slotIndex[s]
			mask[idx/64] |= 1 << (idx % 64)
		}

		row := u.tiers[i*len(u.pieces) : (i+1)*len(u.pieces)]
		for _, pieceID := range d.MustHave {
			row[u.pieceIndex[pieceID]] = TierMustHave
		}
		for _, pieceID := range d.Preferred {
			row[u.pieceIndex[pieceID]] = TierPreferred
		}
		for _, pieceID := range d.Avoid {
			row[u.pieceIndex[pieceID]] = TierAvoid
		}
		u.mustHaveCounts[i] = len(d.MustHave)

		for p := range u.pieces {
			if !u.Compatible(i, p) {
				continue
			}
			switch row[p] {
			case TierMustHave, TierPreferred:
				u.candidates[i] = append(u.candidates[i], p)
			case TierAvoid:
				u.avoidCandidates[i] = append(u.avoidCandidates[i], p)
			}
		}
	}
}

// SlotCount reports the size of the slot domain.
func (u *Universe) SlotCount() int { return len(u.slots) }

// PieceCount reports the number of pieces.
func (u *Universe) PieceCount() int { return len(u.pieces) }

// DancerCount reports the number of dancers.
func (u *Universe) DancerCount() int { return len(u.dancers) }

// Slots returns the slot domain in canonical order. Shared storage; callers
// must not modify.
func (u *Universe) Slots() []Slot { return u.slots }

// Pieces returns every piece ordered by ID. Shared storage; callers must not
// modify.
func (u *Universe) Pieces() []Piece { return u.pieces }

// Dancers returns every dancer ordered by ID. Shared storage; callers must
// not modify.
func (u *Universe) Dancers() []Dancer { return u.dancers }

// PieceAt returns the piece at a dense index.
func (u *Universe) PieceAt(p int) Piece { return u.pieces[p] }

// DancerAt returns the dancer at a dense index.
func (u *Universe) DancerAt(d int) Dancer { return u.dancers[d] }

// PieceIndex resolves a piece ID to its dense index.
func (u *Universe) PieceIndex(id string) (int, bool) {
	i, ok := u.pieceIndex[id]
	return i, ok
}

// DancerIndex resolves a dancer ID to its dense index.
func (u *Universe) DancerIndex(id string) (int, bool) {
	i, ok := u.dancerIndex[id]
	return i, ok
}

// Tier reports dancer d's preference tier for piece p.
func (u *Universe) Tier(d, p int) Tier {
	return u.tiers[d*len(u.pieces)+p]
}

// Compatible reports whether piece p rehearses entirely within dancer d's
// availability.
func (u *Universe) Compatible(d, p int) bool {
	pm := u.pieceMasks[p*u.stride : (p+1)*u.stride]
	dm := u.dancerMasks[d*u.stride : (d+1)*u.stride]
	for w := range pm {
		if pm[w]&^dm[w] != 0 {
			return false
		}
	}
	return true
}

// Overlaps reports whether pieces p and q share at least one rehearsal slot.
func (u *Universe) Overlaps(p, q int) bool {
	pm := u.pieceMasks[p*u.stride : (p+1)*u.stride]
	qm := u.pieceMasks[q*u.stride : (q+1)*u.stride]
	for w := range pm {
		if pm[w]&qm[w] != 0 {
			return true
		}
	}
	return false
}

// SharedSlot returns the first rehearsal slot pieces p and q have in common.
func (u *Universe) SharedSlot(p, q int) (Slot, bool) {
	pm := u.pieceMasks[p*u.stride : (p+1)*u.stride]
	qm := u.pieceMasks[q*u.stride : (q+1)*u.stride]
	for w := range pm {
		if common := pm[w] & qm[w]; common != 0 {
			return u.slots[w*64+bits.TrailingZeros64(common)], true
		}
	}
	return "", false
}

// MissingSlot returns the first rehearsal slot of piece p that falls outside
// dancer d's availability, if any.
func (u *Universe) MissingSlot(d, p int) (Slot, bool) {
	dm := u.dancerMasks[d*u.stride : (d+1)*u.stride]
	for _, s := range u.pieces[p].Rehearsals {
		idx := u.slotIndex[s]
		if dm[idx/64]&(1<<(idx%64)) == 0 {
			return s, true
		}
	}
	return "", false
}

// Candidates returns the dense indexes of pieces dancer d can be asked to
// join outright: must-have and preferred pieces rehearsing within their
// availability. Shared storage; callers must not modify.
func (u *Universe) Candidates(d int) []int { return u.candidates[d] }

// AvoidCandidates returns the dense indexes of avoided pieces dancer d could
// still physically attend. Relevant only when policy permits the avoid
// exception. Shared storage; callers must not modify.
func (u *Universe) AvoidCandidates(d int) []int { return u.avoidCandidates[d] }

// MustHaveCount reports how many pieces dancer d marked as must-have.
func (u *Universe) MustHaveCount(d int) int { return u.mustHaveCounts[d] }

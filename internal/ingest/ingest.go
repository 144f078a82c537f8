// Package ingest loads roster documents: the YAML description of slots,
// pieces, dancers, and the optional search and policy sections. Parsing is
// deliberately thin; structural and referential validation belongs to the
// domain package, so every rule is enforced once regardless of how a
// universe was built.
package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/casting/domain"
	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/casting/planner"
)

// ErrEmpty reports a roster document with no content.
var ErrEmpty = errors.New("ingest: empty roster document")

// Roster mirrors the roster file. Slices and sections may be nil; the
// accessor methods apply defaults, and Universe runs the full domain
// validation.
type Roster struct {
	Slots   []string     `yaml:"slots"`
	Pieces  []PieceSpec  `yaml:"pieces"`
	Dancers []DancerSpec `yaml:"dancers"`
	Search  *SearchSpec  `yaml:"search,omitempty"`
	Policy  *PolicySpec  `yaml:"policy,omitempty"`

	digest string
}

// PieceSpec is one piece entry.
type PieceSpec struct {
	ID         string   `yaml:"id"`
	Rehearsals []string `yaml:"rehearsals"`
	MinDancers int      `yaml:"min_dancers"`
	MaxDancers int      `yaml:"max_dancers"`
}

// DancerSpec is one dancer entry with the three preference tiers.
type DancerSpec struct {
	ID           string   `yaml:"id"`
	Availability []string `yaml:"availability"`
	MustHave     []string `yaml:"must_have,omitempty"`
	Preferred    []string `yaml:"preferred,omitempty"`
	Avoid        []string `yaml:"avoid,omitempty"`
}

// SearchSpec overrides the default trace-length window. Pointer fields
// distinguish an absent override from an explicit zero.
type SearchSpec struct {
	MinSteps *int `yaml:"min_steps,omitempty"`
	MaxSteps *int `yaml:"max_steps,omitempty"`
}

// PolicySpec overrides the default casting policy. FairnessBound and
// PruneUnfair are pointers because their explicit zero values (bound
// disabled, pruning off) differ from the defaults.
type PolicySpec struct {
	FairnessBound   *int  `yaml:"fairness_bound,omitempty"`
	AvoidException  bool  `yaml:"avoid_exception,omitempty"`
	RequireFullCast bool  `yaml:"require_full_cast,omitempty"`
	PruneUnfair     *bool `yaml:"prune_unfair,omitempty"`
}

// Parse decodes a roster document and records its digest.
func Parse(data []byte) (*Roster, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	var roster Roster
	if err := yaml.Unmarshal(data, &roster); err != nil {
		return nil, fmt.Errorf("ingest: parse roster: %w", err)
	}
	roster.digest = Digest(data)
	return &roster, nil
}

// LoadReader decodes a roster document from a stream.
func LoadReader(r io.Reader) (*Roster, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("ingest: read roster: %w", err)
	}
	return Parse(data)
}

// LoadFile decodes a roster document from disk.
func LoadFile(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: read roster %s: %w", path, err)
	}
	roster, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("ingest: roster %s: %w", path, err)
	}
	return roster, nil
}

// Digest returns the hex-encoded SHA-256 of a roster document. Archived
// runs carry it so results can be matched to the exact roster bytes that
// produced them.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Digest returns the digest recorded at parse time, or "" for rosters
// assembled in code.
func (r *Roster) Digest() string {
	if r == nil {
		return ""
	}
	return r.digest
}

// Universe validates the roster and builds the indexed universe.
func (r *Roster) Universe() (*domain.Universe, error) {
	if r == nil {
		return nil, errors.New("ingest: nil roster")
	}

	input := domain.UniverseInput{
		Slots:   make([]domain.Slot, 0, len(r.Slots)),
		Pieces:  make([]domain.PieceInput, 0, len(r.Pieces)),
		Dancers: make([]domain.DancerInput, 0, len(r.Dancers)),
	}
	for _, s := range r.Slots {
		input.Slots = append(input.Slots, domain.Slot(s))
	}
	for _, p := range r.Pieces {
		input.Pieces = append(input.Pieces, domain.PieceInput{
			ID:         p.ID,
			Rehearsals: toSlots(p.Rehearsals),
			MinDancers: p.MinDancers,
			MaxDancers: p.MaxDancers,
		})
	}
	for _, d := range r.Dancers {
		input.Dancers = append(input.Dancers, domain.DancerInput{
			ID:           d.ID,
			Availability: toSlots(d.Availability),
			MustHave:     d.MustHave,
			Preferred:    d.Preferred,
			Avoid:        d.Avoid,
		})
	}
	return domain.NewUniverse(input)
}

// SearchBounds returns the roster's trace-length window, falling back to
// the planner defaults field by field.
func (r *Roster) SearchBounds() planner.Bounds {
	bounds := planner.DefaultBounds()
	if r == nil || r.Search == nil {
		return bounds
	}
	if r.Search.MinSteps != nil {
		bounds.MinSteps = *r.Search.MinSteps
	}
	if r.Search.MaxSteps != nil {
		bounds.MaxSteps = *r.Search.MaxSteps
	}
	return bounds
}

// CastingPolicy returns the roster's policy with defaults applied.
func (r *Roster) CastingPolicy() domain.Policy {
	pol := domain.DefaultPolicy()
	if r == nil || r.Policy == nil {
		return pol
	}
	if r.Policy.FairnessBound != nil {
		pol.FairnessBound = *r.Policy.FairnessBound
	}
	pol.AvoidException = r.Policy.AvoidException
	pol.RequireFullCast = r.Policy.RequireFullCast
	if r.Policy.PruneUnfair != nil {
		pol.PruneUnfair = *r.Policy.PruneUnfair
	}
	return pol
}

func toSlots(in []string) []domain.Slot {
	out := make([]domain.Slot, 0, len(in))
	for _, s := range in {
		out = append(out, domain.Slot(s))
	}
	return out
}

// Package state holds the assignment snapshot: which dancer currently holds
// which pieces. Snapshots are immutable values: search branches derive new
// snapshots and never mutate a shared one, so a snapshot can be read from
// any number of goroutines without coordination.
//
// Derivation (With, Without) is reserved for the transition engine; an
// architecture test enforces that no other package calls it.
package state

import (
	"encoding/binary"
	"math/bits"
)

// Assignment maps every dancer to their current piece set. Dancers and
// pieces are addressed by the dense indexes the universe assigns. The zero
// value is unusable; start from Empty.
type Assignment struct {
	dancers int
	pieces  int
	stride  int
	words   []uint64
	heads   []int16
}

// Empty returns the initial snapshot for a universe of the given shape:
// every dancer unassigned, every piece uncast.
func Empty(dancers, pieces int) Assignment {
	stride := (pieces + 63) / 64
	return Assignment{
		dancers: dancers,
		pieces:  pieces,
		stride:  stride,
		words:   make([]uint64, dancers*stride),
		heads:   make([]int16, pieces),
	}
}

// FromAssignments builds a snapshot directly from a dancer-to-pieces map,
// keyed by dense indexes. It constructs rather than derives, so diagnostic
// callers can evaluate a hand-built cast without going through the
// transition engine. Out-of-range indexes are ignored.
func FromAssignments(dancers, pieces int, held map[int][]int) Assignment {
	a := Empty(dancers, pieces)
	for d, ps := range held {
		if d < 0 || d >= dancers {
			continue
		}
		for _, p := range ps {
			if p < 0 || p >= pieces {
				continue
			}
			idx := d*a.stride + p/64
			bit := uint64(1) << (p % 64)
			if a.words[idx]&bit == 0 {
				a.words[idx] |= bit
				a.heads[p]++
			}
		}
	}
	return a
}

// DancerCount reports the number of dancers the snapshot covers.
func (a Assignment) DancerCount() int { return a.dancers }

// PieceCount reports the number of pieces the snapshot covers.
func (a Assignment) PieceCount() int { return a.pieces }

// Has reports whether dancer d currently holds piece p.
func (a Assignment) Has(d, p int) bool {
	return a.words[d*a.stride+p/64]&(1<<(p%64)) != 0
}

// Count reports how many pieces dancer d currently holds.
func (a Assignment) Count(d int) int {
	total := 0
	for _, w := range a.words[d*a.stride : (d+1)*a.stride] {
		total += bits.OnesCount64(w)
	}
	return total
}

// Headcount reports how many dancers currently hold piece p.
func (a Assignment) Headcount(p int) int { return int(a.heads[p]) }

// Pieces returns the dense indexes of dancer d's current pieces in
// ascending order. The slice is freshly allocated.
func (a Assignment) Pieces(d int) []int {
	out := make([]int, 0, 4)
	a.EachAssigned(d, func(p int) bool {
		out = append(out, p)
		return true
	})
	return out
}

// EachAssigned calls fn for each piece dancer d holds, in ascending index
// order, stopping early when fn returns false.
func (a Assignment) EachAssigned(d int, fn func(p int) bool) {
	base := d * a.stride
	for w := 0; w < a.stride; w++ {
		word := a.words[base+w]
		for word != 0 {
			p := w*64 + bits.TrailingZeros64(word)
			if !fn(p) {
				return
			}
			word &= word - 1
		}
	}
}

// CountSpread returns the smallest and largest per-dancer assignment counts.
// The fairness check compares max−min against the configured bound.
func (a Assignment) CountSpread() (min, max int) {
	if a.dancers == 0 {
		return 0, 0
	}
	min, max = a.Count(0), a.Count(0)
	for d := 1; d < a.dancers; d++ {
		c := a.Count(d)
		if c < min {
			min = c
		}
		if c > max {
			max = c
		}
	}
	return min, max
}

// With derives a snapshot where dancer d additionally holds piece p. Every
// other entry is untouched; adding an already-held piece yields an
// equivalent snapshot. Reserved for the transition engine.
func (a Assignment) With(d, p int) Assignment {
	next := a.clone()
	idx := d*a.stride + p/64
	bit := uint64(1) << (p % 64)
	if next.words[idx]&bit == 0 {
		next.words[idx] |= bit
		next.heads[p]++
	}
	return next
}

// Without derives a snapshot where dancer d no longer holds piece p. Every
// other entry is untouched; removing an unheld piece yields an equivalent
// snapshot. Reserved for the transition engine.
func (a Assignment) Without(d, p int) Assignment {
	next := a.clone()
	idx := d*a.stride + p/64
	bit := uint64(1) << (p % 64)
	if next.words[idx]&bit != 0 {
		next.words[idx] &^= bit
		next.heads[p]--
	}
	return next
}

func (a Assignment) clone() Assignment {
	words := make([]uint64, len(a.words))
	copy(words, a.words)
	heads := make([]int16, len(a.heads))
	copy(heads, a.heads)
	return Assignment{
		dancers: a.dancers,
		pieces:  a.pieces,
		stride:  a.stride,
		words:   words,
		heads:   heads,
	}
}

// Key returns a canonical byte-string identity for the snapshot. Two
// snapshots of the same universe share a key exactly when every dancer
// holds the same pieces; the search uses it for deduplication and as its
// deterministic tie-break of last resort.
func (a Assignment) Key() string {
	buf := make([]byte, len(a.words)*8)
	for i, w := range a.words {
		binary.LittleEndian.PutUint64(buf[i*8:], w)
	}
	return string(buf)
}

// Equal reports whether two snapshots of the same universe hold identical
// assignments.
func (a Assignment) Equal(b Assignment) bool {
	if len(a.words) != len(b.words) {
		return false
	}
	for i := range a.words {
		if a.words[i] != b.words[i] {
			return false
		}
	}
	return true
}

package domain

import (
	"sort"
	"strings"
)

// Slot is an opaque rehearsal time token. Slots have no internal structure;
// two slots conflict exactly when they are equal.
type Slot string

// NormalizeSlots trims, drops empties, de-duplicates, and sorts a slot list,
// returning the canonical set form used throughout the package.
func NormalizeSlots(slots []Slot) []Slot {
	out := make([]Slot, 0, len(slots))
	seen := make(map[Slot]struct{}, len(slots))
	for _, s := range slots {
		s = Slot(strings.TrimSpace(string(s)))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func normalizeIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

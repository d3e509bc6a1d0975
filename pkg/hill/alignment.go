package hill

import (
	"cmp"
	"maps"
	"slices"
)

// PairKey identifies an unordered pair of markers. A is always the smaller
// id, so Key(a, b) == Key(b, a).
type PairKey struct {
	A, B string
}

// Key returns the canonical key for the pair (a, b).
func Key(a, b string) PairKey {
	if b < a {
		a, b = b, a
	}
	return PairKey{A: a, B: b}
}

// Has reports whether id is one side of the pair.
func (k PairKey) Has(id string) bool { return k.A == id || k.B == id }

// Alignment is one remembered snap: both markers of Pair render at Position.
type Alignment struct {
	Pair     PairKey `json:"pair"`
	Position float64 `json:"position"`
}

// AlignmentMemory remembers which marker pairs have snapped together and
// at which shared x. It is owned by an [Engine]; the zero value is not
// usable, use [NewAlignmentMemory].
type AlignmentMemory struct {
	entries map[PairKey]float64
}

// NewAlignmentMemory returns an empty memory.
func NewAlignmentMemory() *AlignmentMemory {
	return &AlignmentMemory{entries: make(map[PairKey]float64)}
}

// Get returns the shared position remembered for the pair.
func (m *AlignmentMemory) Get(a, b string) (float64, bool) {
	pos, ok := m.entries[Key(a, b)]
	return pos, ok
}

// Set remembers position as the shared x of the pair.
func (m *AlignmentMemory) Set(a, b string, position float64) {
	m.entries[Key(a, b)] = position
}

// Remove forgets the pair. It reports whether an entry existed.
func (m *AlignmentMemory) Remove(a, b string) bool {
	k := Key(a, b)
	if _, ok := m.entries[k]; !ok {
		return false
	}
	delete(m.entries, k)
	return true
}

// RemoveMarker forgets every pair involving id and returns how many were
// dropped.
func (m *AlignmentMemory) RemoveMarker(id string) int {
	n := 0
	for k := range m.entries {
		if k.Has(id) {
			delete(m.entries, k)
			n++
		}
	}
	return n
}

// Len returns the number of remembered pairs.
func (m *AlignmentMemory) Len() int { return len(m.entries) }

// Clear forgets everything.
func (m *AlignmentMemory) Clear() { clear(m.entries) }

// Entries returns all remembered pairs sorted by key.
func (m *AlignmentMemory) Entries() []Alignment {
	keys := slices.SortedFunc(maps.Keys(m.entries), func(x, y PairKey) int {
		if c := cmp.Compare(x.A, y.A); c != 0 {
			return c
		}
		return cmp.Compare(x.B, y.B)
	})
	out := make([]Alignment, len(keys))
	for i, k := range keys {
		out[i] = Alignment{Pair: k, Position: m.entries[k]}
	}
	return out
}

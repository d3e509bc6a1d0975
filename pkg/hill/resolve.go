package hill

import (
	"cmp"
	"math"
	"slices"

	"github.com/matzehuels/hillchart/pkg/hill/curve"
)

// Role tags how the resolver treated a marker in a pass.
type Role int

const (
	// RoleRegular markers may be snapped and stacked.
	RoleRegular Role = iota
	// RoleFocus is the one marker placed first, always on the curve.
	RoleFocus
)

func (r Role) String() string {
	if r == RoleFocus {
		return "focus"
	}
	return "regular"
}

// Placement is the rendered position of one marker.
type Placement struct {
	Marker Marker  `json:"marker"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Depth  int     `json:"depth"`
	Role   Role    `json:"role"`
}

// Stacked reports whether the marker renders above the curve.
func (p Placement) Stacked() bool { return p.Depth > 0 }

// Resolver turns raw marker positions into an overlap-free layout.
type Resolver struct {
	Curve       curve.Curve
	DotRadius   float64
	StackOffset float64
	TieEpsilon  float64
	OverlapX    float64
	OverlapY    float64
}

// Overlaps reports whether two markers would collide if both were drawn at
// their raw positions on the curve. Only raw positions are compared, so the
// answer does not depend on how markers are currently stacked.
func (r Resolver) Overlaps(a, b Marker) bool {
	dx := math.Abs(a.Position - b.Position)
	dy := math.Abs(r.Curve.HeightAt(a.Position) - r.Curve.HeightAt(b.Position))
	return dx < r.OverlapX*r.DotRadius && dy < r.OverlapY*r.DotRadius
}

// Order returns markers in processing order: ascending raw position, with
// runs of positions within TieEpsilon of the run's first marker ordered by
// ascending rank so that more recently moved markers come later. Ids break
// any remaining tie, making the order total.
func (r Resolver) Order(markers []Marker) []Marker {
	sorted := slices.Clone(markers)
	slices.SortFunc(sorted, func(a, b Marker) int {
		if c := cmp.Compare(a.Position, b.Position); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	for i := 0; i < len(sorted); {
		j := i + 1
		for j < len(sorted) && sorted[j].Position-sorted[i].Position < r.TieEpsilon {
			j++
		}
		slices.SortFunc(sorted[i:j], func(a, b Marker) int {
			if c := cmp.Compare(a.Rank, b.Rank); c != 0 {
				return c
			}
			return cmp.Compare(a.ID, b.ID)
		})
		i = j
	}
	return sorted
}

// Resolve computes one layout pass. focusID names the marker that takes
// precedence (empty for none). mem is read and updated: pairs are
// remembered on their first overlap and forgotten once their raw positions
// stop overlapping.
//
// The focus marker is placed first and never stacked. Every other marker is
// tested, in [Resolver.Order], against all markers placed before it. The
// first overlap snaps it to the pair's shared x; each overlap pushes it one
// level higher, and it always sits above the deepest marker it overlaps.
// Stacked markers whose rendered x differs may sit less than one stack
// offset apart vertically while their raw positions still overlap; their
// dot centers stay at least two dot radii apart.
//
// Placements are returned in processing order, focus first.
func (r Resolver) Resolve(markers []Marker, focusID string, mem *AlignmentMemory) []Placement {
	order := r.Order(markers)
	placed := make([]Placement, 0, len(order))

	focusIdx := -1
	if focusID != "" {
		focusIdx = indexOf(order, focusID)
	}
	if focusIdx >= 0 {
		f := order[focusIdx]
		placed = append(placed, Placement{Marker: f, X: f.Position, Role: RoleFocus})
	}

	for i, c := range order {
		if i == focusIdx {
			continue
		}
		p := Placement{Marker: c, X: c.Position, Role: RoleRegular}
		overlaps, deepest := 0, -1
		for _, q := range placed {
			if !r.Overlaps(c, q.Marker) {
				mem.Remove(c.ID, q.Marker.ID)
				continue
			}
			overlaps++
			deepest = max(deepest, q.Depth)
			if overlaps == 1 {
				p.X = r.share(mem, c, q)
			}
		}
		p.Depth = max(overlaps, deepest+1)
		p.Y = r.Curve.HeightAt(p.X) - float64(p.Depth)*r.StackOffset
		placed = append(placed, p)
	}

	if focusIdx >= 0 {
		r.settleFocus(&placed[0], order, mem)
	}
	return placed
}

// share returns the x that candidate c and the already placed q render at,
// remembering it if the pair is new. The stationary side of a pair wins:
// against the focus the candidate keeps its own raw position.
func (r Resolver) share(mem *AlignmentMemory, c Marker, q Placement) float64 {
	if x, ok := mem.Get(c.ID, q.Marker.ID); ok {
		return x
	}
	x := q.X
	if q.Role == RoleFocus {
		x = c.Position
	}
	mem.Set(c.ID, q.Marker.ID, x)
	return x
}

// settleFocus moves the focus onto the first remembered alignment (in
// processing order) with a marker it still overlaps. It runs after all
// candidates so that pairs first seen in this pass already count, which
// keeps a second pass over the same input identical to the first.
func (r Resolver) settleFocus(f *Placement, order []Marker, mem *AlignmentMemory) {
	f.X = f.Marker.Position
	for _, o := range order {
		if o.ID == f.Marker.ID || !r.Overlaps(f.Marker, o) {
			continue
		}
		if x, ok := mem.Get(f.Marker.ID, o.ID); ok {
			f.X = x
			break
		}
	}
	f.Y = r.Curve.HeightAt(f.X)
}

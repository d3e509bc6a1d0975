package hill

import (
	"math"
	"math/rand/v2"
	"reflect"
	"testing"
)

func testResolver() Resolver { return DefaultConfig().Resolver() }

func mk(id string, pos float64, rank int64) Marker {
	return Marker{ID: id, Position: pos, Rank: rank}
}

func byID(ps []Placement) map[string]Placement {
	out := make(map[string]Placement, len(ps))
	for _, p := range ps {
		out[p.Marker.ID] = p
	}
	return out
}

func TestOverlaps(t *testing.T) {
	r := testResolver()
	tests := []struct {
		name string
		a, b float64
		want bool
	}{
		{"close at foot", 320, 334, true},
		{"far apart", 320, 880, false},
		{"same spot", 600, 600, true},
		{"steep slope", 430, 470, false},
		{"either side of peak", 590, 610, true},
		{"just outside x", 260, 360, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Overlaps(mk("a", tt.a, 0), mk("b", tt.b, 0)); got != tt.want {
				t.Errorf("Overlaps(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestOrderTieGroups(t *testing.T) {
	r := testResolver()
	markers := []Marker{
		mk("d", 700, 0),
		mk("c", 503, 1),
		mk("b", 500, 9),
		mk("a", 501, 4),
		mk("e", 506, 0),
	}
	// 500, 501 and 503 are within 5 of 500; 506 is not.
	want := []string{"c", "a", "b", "e", "d"}

	got := r.Order(markers)
	for i, m := range got {
		if m.ID != want[i] {
			t.Fatalf("order = %v, want %v", ids(got), want)
		}
	}
	if markers[0].ID != "d" {
		t.Error("Order must not modify its input")
	}
}

func ids(ms []Marker) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.ID
	}
	return out
}

func TestResolveCloseSameSpot(t *testing.T) {
	r := testResolver()
	mem := NewAlignmentMemory()
	ps := byID(r.Resolve([]Marker{mk("a", 320, 0), mk("b", 334, 0), mk("c", 880, 0)}, "", mem))

	a, b, c := ps["a"], ps["b"], ps["c"]
	if a.X != 320 || b.X != 320 {
		t.Errorf("pair x = %v, %v, want both 320", a.X, b.X)
	}
	if a.Depth != 0 || b.Depth != 1 {
		t.Errorf("pair depth = %d, %d, want 0, 1", a.Depth, b.Depth)
	}
	h := r.Curve.HeightAt(320)
	if a.Y != h || b.Y != h-r.StackOffset {
		t.Errorf("pair y = %v, %v, want %v, %v", a.Y, b.Y, h, h-r.StackOffset)
	}
	if c.X != 880 || c.Depth != 0 || c.Y != r.Curve.HeightAt(880) {
		t.Errorf("lone marker placed at %+v, want on curve at 880", c)
	}
	if pos, ok := mem.Get("a", "b"); !ok || pos != 320 {
		t.Errorf("alignment = (%v, %v), want 320", pos, ok)
	}
	if mem.Len() != 1 {
		t.Errorf("memory holds %d entries, want 1", mem.Len())
	}
}

func TestResolveFocusMeetsStationary(t *testing.T) {
	r := testResolver()
	mem := NewAlignmentMemory()
	markers := []Marker{mk("a", 320, 0), mk("b", 334, 5)}

	ps := r.Resolve(markers, "b", mem)
	if ps[0].Marker.ID != "b" || ps[0].Role != RoleFocus {
		t.Fatalf("first placement = %+v, want focus b", ps[0])
	}
	got := byID(ps)
	if got["b"].X != 320 || got["b"].Depth != 0 {
		t.Errorf("focus = %+v, want snapped to 320 on the curve", got["b"])
	}
	if got["b"].Y != r.Curve.HeightAt(320) {
		t.Errorf("focus y = %v, want curve height", got["b"].Y)
	}
	if got["a"].X != 320 || got["a"].Depth != 1 || got["a"].Role != RoleRegular {
		t.Errorf("stationary = %+v, want x 320 depth 1", got["a"])
	}
}

func TestResolveIdempotent(t *testing.T) {
	r := testResolver()
	rng := rand.New(rand.NewPCG(7, 11))
	for round := range 50 {
		markers := make([]Marker, 12)
		for i := range markers {
			markers[i] = mk(string(rune('a'+i)), 250+rng.Float64()*700, int64(rng.IntN(4)))
		}
		focus := ""
		if round%2 == 0 {
			focus = markers[rng.IntN(len(markers))].ID
		}
		mem := NewAlignmentMemory()
		first := r.Resolve(markers, focus, mem)
		entries := mem.Entries()
		second := r.Resolve(markers, focus, mem)
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("round %d: passes differ\nfirst:  %+v\nsecond: %+v", round, first, second)
		}
		if !reflect.DeepEqual(entries, mem.Entries()) {
			t.Fatalf("round %d: memory changed on second pass", round)
		}
	}
}

func TestResolveNoOverlap(t *testing.T) {
	r := testResolver()
	rng := rand.New(rand.NewPCG(3, 5))
	for round := range 50 {
		markers := make([]Marker, 10)
		for i := range markers {
			// Crowd markers into the left foot so many pairs overlap.
			markers[i] = mk(string(rune('a'+i)), 250+rng.Float64()*150, int64(i))
		}
		mem := NewAlignmentMemory()
		ps := r.Resolve(markers, markers[round%10].ID, mem)

		for i := range ps {
			for j := i + 1; j < len(ps); j++ {
				p, q := ps[i], ps[j]
				if !r.Overlaps(p.Marker, q.Marker) {
					continue
				}
				if p.Depth == q.Depth {
					t.Fatalf("round %d: %s and %s overlap at the same depth %d", round, p.Marker.ID, q.Marker.ID, p.Depth)
				}
				if p.X == q.X && math.Abs(p.Y-q.Y) < r.StackOffset-1e-9 {
					t.Fatalf("round %d: %s and %s share x but |dy| = %v", round, p.Marker.ID, q.Marker.ID, math.Abs(p.Y-q.Y))
				}
				// Different rendered x may leave |dy| under one stack offset.
				if d := math.Hypot(p.X-q.X, p.Y-q.Y); d < 2*r.DotRadius-1e-9 {
					t.Fatalf("round %d: %s and %s dot centers %v apart", round, p.Marker.ID, q.Marker.ID, d)
				}
			}
		}
	}
}

func TestResolveDecay(t *testing.T) {
	r := testResolver()
	mem := NewAlignmentMemory()
	markers := []Marker{mk("a", 320, 0), mk("b", 334, 0)}
	r.Resolve(markers, "", mem)
	if mem.Len() != 1 {
		t.Fatalf("expected the pair to be remembered, got %d entries", mem.Len())
	}

	markers[1].Position = 600
	ps := byID(r.Resolve(markers, "", mem))
	if mem.Len() != 0 {
		t.Errorf("alignment should decay, memory holds %v", mem.Entries())
	}
	for _, id := range []string{"a", "b"} {
		p := ps[id]
		if p.X != p.Marker.Position || p.Depth != 0 {
			t.Errorf("%s = %+v, want independent on the curve", id, p)
		}
	}
}

func TestResolveReusesAlignment(t *testing.T) {
	r := testResolver()
	mem := NewAlignmentMemory()
	mem.Set("a", "b", 327)
	ps := byID(r.Resolve([]Marker{mk("a", 320, 0), mk("b", 334, 0)}, "", mem))
	if ps["b"].X != 327 {
		t.Errorf("b.X = %v, want remembered 327", ps["b"].X)
	}
	if ps["a"].X != 320 {
		t.Errorf("a.X = %v, want raw 320", ps["a"].X)
	}
}

func TestResolveChainedStack(t *testing.T) {
	r := testResolver()
	mem := NewAlignmentMemory()
	// a and b overlap, b and c overlap, a and c do not.
	markers := []Marker{mk("a", 250, 0), mk("b", 330, 0), mk("c", 360, 0)}
	if !r.Overlaps(markers[0], markers[1]) || !r.Overlaps(markers[1], markers[2]) || r.Overlaps(markers[0], markers[2]) {
		t.Fatal("test setup: want a-b and b-c to overlap but not a-c")
	}
	ps := byID(r.Resolve(markers, "", mem))
	if ps["b"].Depth != 1 {
		t.Errorf("b depth = %d, want 1", ps["b"].Depth)
	}
	if ps["c"].Depth != 2 {
		t.Errorf("c depth = %d, want 2 above b", ps["c"].Depth)
	}
}

func TestResolveEmpty(t *testing.T) {
	if ps := testResolver().Resolve(nil, "x", NewAlignmentMemory()); len(ps) != 0 {
		t.Errorf("Resolve(nil) = %v, want empty", ps)
	}
}

func TestRoleString(t *testing.T) {
	if RoleFocus.String() != "focus" || RoleRegular.String() != "regular" {
		t.Error("unexpected role names")
	}
}

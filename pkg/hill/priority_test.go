package hill

import "testing"

func TestTrackerRanksIncrease(t *testing.T) {
	var tr Tracker
	markers := []Marker{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	steps := []struct {
		idx   int
		begin bool
	}{
		{0, true}, {0, false},
		{2, true}, {2, false},
		{1, true}, {1, false},
		{0, true}, {0, false},
	}

	var last int64
	for i, s := range steps {
		m := &markers[s.idx]
		if s.begin {
			tr.BeginDrag(m)
		} else {
			tr.EndDrag(m)
		}
		if m.Rank <= last {
			t.Fatalf("step %d: rank %d not above previous %d", i, m.Rank, last)
		}
		last = m.Rank

		if !s.begin {
			f, ok := tr.Focus(markers)
			if !ok || f.ID != m.ID {
				t.Fatalf("step %d: focus = %q, want %q", i, f.ID, m.ID)
			}
		}
	}
	if tr.Counter() != int64(len(steps)) {
		t.Errorf("counter = %d, want %d", tr.Counter(), len(steps))
	}
}

func TestTrackerFocus(t *testing.T) {
	tests := []struct {
		name     string
		markers  []Marker
		dragging string
		want     string
	}{
		{"empty", nil, "", ""},
		{"never dragged", []Marker{{ID: "a"}, {ID: "b"}}, "", ""},
		{"highest rank", []Marker{{ID: "a", Rank: 3}, {ID: "b", Rank: 7}, {ID: "c"}}, "", "b"},
		{"dragging wins", []Marker{{ID: "a", Rank: 3}, {ID: "b", Rank: 7}}, "a", "a"},
		{"dragging gone", []Marker{{ID: "a", Rank: 3}}, "zz", "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := Tracker{dragging: tt.dragging}
			f, ok := tr.Focus(tt.markers)
			if got := f.ID; ok != (tt.want != "") || got != tt.want {
				t.Errorf("Focus = (%q, %v), want %q", got, ok, tt.want)
			}
		})
	}
}

func TestTrackerEndDragOtherMarker(t *testing.T) {
	var tr Tracker
	a, b := Marker{ID: "a"}, Marker{ID: "b"}
	tr.BeginDrag(&a)
	tr.EndDrag(&b)
	if id, ok := tr.Dragging(); !ok || id != "a" {
		t.Errorf("Dragging = (%q, %v), want a still open", id, ok)
	}
}

func TestBackfill(t *testing.T) {
	tests := []struct {
		name      string
		ranks     []int64
		want      []int64
		repaired  int
		wantCount int64
	}{
		{"all missing", []int64{0, 0, 0}, []int64{1, 2, 3}, 3, 3},
		{"valid kept", []int64{4, 2, 9}, []int64{4, 2, 9}, 0, 9},
		{"gap filled after max", []int64{5, 0, 2}, []int64{5, 6, 2}, 1, 6},
		{"duplicate", []int64{3, 3, 1}, []int64{3, 4, 1}, 1, 4},
		{"negative", []int64{-1, 2}, []int64{3, 2}, 1, 3},
		{"empty", nil, nil, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			markers := make([]Marker, len(tt.ranks))
			for i, r := range tt.ranks {
				markers[i] = Marker{ID: string(rune('a' + i)), Rank: r}
			}
			tr := Tracker{counter: 100, dragging: "a"}
			if n := tr.Backfill(markers); n != tt.repaired {
				t.Errorf("repaired = %d, want %d", n, tt.repaired)
			}
			for i, m := range markers {
				if m.Rank != tt.want[i] {
					t.Errorf("marker %d rank = %d, want %d", i, m.Rank, tt.want[i])
				}
			}
			if tr.Counter() != tt.wantCount {
				t.Errorf("counter = %d, want %d", tr.Counter(), tt.wantCount)
			}
			if _, ok := tr.Dragging(); ok {
				t.Error("Backfill should clear the open drag")
			}
		})
	}
}

package hill

// Tracker assigns priority ranks and decides which marker is in focus.
//
// Ranks come from one counter that only grows. BeginDrag and EndDrag each
// take the next value, so the marker released last always holds the highest
// rank, even if other markers were reranked while it was being dragged.
type Tracker struct {
	counter  int64
	dragging string
}

// Counter returns the last rank handed out.
func (t *Tracker) Counter() int64 { return t.counter }

// Dragging returns the id of the marker currently being dragged.
func (t *Tracker) Dragging() (string, bool) {
	return t.dragging, t.dragging != ""
}

// BeginDrag ranks m and records it as dragging.
func (t *Tracker) BeginDrag(m *Marker) {
	t.counter++
	m.Rank = t.counter
	t.dragging = m.ID
}

// EndDrag ranks m again and clears the dragging state.
func (t *Tracker) EndDrag(m *Marker) {
	t.counter++
	m.Rank = t.counter
	if t.dragging == m.ID {
		t.dragging = ""
	}
}

// Cancel forgets the current drag without touching ranks. It is used when
// the dragged marker disappears mid-drag.
func (t *Tracker) Cancel() { t.dragging = "" }

// Focus returns the marker that takes precedence in the next layout pass:
// the dragging marker if there is one, otherwise the highest ranked marker
// that has ever been dragged.
func (t *Tracker) Focus(markers []Marker) (Marker, bool) {
	if t.dragging != "" {
		if i := indexOf(markers, t.dragging); i >= 0 {
			return markers[i], true
		}
	}
	var best Marker
	found := false
	for _, m := range markers {
		if !m.Dragged() {
			continue
		}
		if !found || byRankDesc(m, best) < 0 {
			best, found = m, true
		}
	}
	return best, found
}

// Backfill repairs ranks on a freshly loaded marker list. Markers without a
// rank, or whose rank repeats one seen earlier in the list, receive the next
// counter value in stored order. The counter continues from the largest
// valid rank, so ranks stay unique and strictly increasing afterwards.
//
// Backfill reports how many markers were reranked.
func (t *Tracker) Backfill(markers []Marker) int {
	t.counter = 0
	for _, m := range markers {
		t.counter = max(t.counter, m.Rank)
	}
	t.dragging = ""

	claimed := make(map[int64]bool, len(markers))
	repaired := 0
	for i := range markers {
		r := markers[i].Rank
		if r > 0 && !claimed[r] {
			claimed[r] = true
			continue
		}
		t.counter++
		markers[i].Rank = t.counter
		claimed[t.counter] = true
		repaired++
	}
	return repaired
}

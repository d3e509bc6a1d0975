package hill

import (
	"cmp"
	"slices"
)

// Marker is a milestone placed on the hill.
//
// Position is the raw, user-controlled domain coordinate. Progress is derived
// from Position and is rewritten whenever Position changes; it is carried on
// the struct because persisted milestone lists include it for display.
type Marker struct {
	ID          string  `json:"id" bson:"id"`
	Label       string  `json:"label" bson:"label"`
	Position    float64 `json:"position" bson:"position"`
	Progress    float64 `json:"progress" bson:"progress"`
	Rank        int64   `json:"priority_rank,omitempty" bson:"priority_rank,omitempty"`
	LabelOffset float64 `json:"label_offset,omitempty" bson:"label_offset,omitempty"`
}

// Dragged reports whether the marker has ever been placed by a drag.
func (m Marker) Dragged() bool { return m.Rank > 0 }

// Percent returns the progress rounded to a whole percentage.
func (m Marker) Percent() int { return percent(m.Progress) }

// indexOf returns the index of the marker with the given id, or -1.
func indexOf(markers []Marker, id string) int {
	return slices.IndexFunc(markers, func(m Marker) bool { return m.ID == id })
}

// byRankDesc orders markers from most to least recently moved.
func byRankDesc(a, b Marker) int {
	if c := cmp.Compare(b.Rank, a.Rank); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// Package guide computes the visible pieces of the vertical reference line
// drawn through the middle of the hill.
//
// The line is broken around every marker whose rendered x lies within Gap of
// the line, so the line never passes through a marker. Each such marker
// blocks the interval [y-Gap, y+Gap]; blocked intervals are merged and the
// complement inside [Start, End] is what gets drawn.
package guide

import (
	"cmp"
	"math"
	"slices"
)

// DefaultGap is the half-height of the hole cut around a marker, and also
// the horizontal tolerance for a marker to count as "on" the line.
const DefaultGap = 20.0

// Interval is a closed vertical range [Start, End].
type Interval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Len returns the length of the interval.
func (iv Interval) Len() float64 { return iv.End - iv.Start }

// Line is a vertical guide at X spanning [Start, End].
type Line struct {
	X     float64
	Start float64
	End   float64
	Gap   float64
}

// Segments returns the visible pieces of the line given the rendered marker
// positions. Markers farther than Gap from X are ignored.
func (l Line) Segments(markers []Point) []Interval {
	return Complement(l.Start, l.End, Merge(l.Blocked(markers)))
}

// Blocked returns the unmerged holes cut by markers near the line.
func (l Line) Blocked(markers []Point) []Interval {
	var out []Interval
	for _, m := range markers {
		if math.Abs(m.X-l.X) <= l.Gap {
			out = append(out, Interval{Start: m.Y - l.Gap, End: m.Y + l.Gap})
		}
	}
	return out
}

// Point is a rendered marker center.
type Point struct {
	X, Y float64
}

// Merge sorts intervals by start and joins those that overlap or touch.
// The input slice is not modified.
func Merge(intervals []Interval) []Interval {
	if len(intervals) == 0 {
		return nil
	}
	sorted := slices.Clone(intervals)
	slices.SortFunc(sorted, func(a, b Interval) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.End, b.End)
	})

	merged := []Interval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &merged[len(merged)-1]
		if iv.Start <= last.End {
			last.End = max(last.End, iv.End)
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// Complement returns the parts of [start, end] not covered by merged, which
// must be sorted and disjoint (as produced by [Merge]). Zero-length pieces
// are dropped, so a fully covered range yields no segments.
func Complement(start, end float64, merged []Interval) []Interval {
	var out []Interval
	cursor := start
	for _, iv := range merged {
		if iv.End <= cursor {
			continue
		}
		if iv.Start >= end {
			break
		}
		if iv.Start > cursor {
			out = append(out, Interval{Start: cursor, End: iv.Start})
		}
		cursor = max(cursor, iv.End)
	}
	if cursor < end {
		out = append(out, Interval{Start: cursor, End: end})
	}
	return out
}

// Package hill implements the layout engine behind a hill chart.
//
// # Overview
//
// A hill chart shows milestones ("markers") sitting on a bell-shaped curve.
// Markers are dragged left and right along the curve; the engine turns the
// raw marker positions into a legible rendering layout:
//
//   - markers that would overlap are stacked vertically and snapped to a
//     shared x, so a group reads as one column
//   - the marker being dragged (or the one released last) is the focus: it
//     always sits on the curve and anchors any group it joins
//   - snapping is remembered across passes ([AlignmentMemory]), so groups do
//     not flicker apart while a neighbour is dragged through them
//   - a vertical guide line at the midpoint is broken around markers
//
// # Components
//
// The [Engine] owns all mutable state and is the only entry point callers
// need. Internally one layout pass runs:
//
//	markers ─► Tracker.Focus ─► Resolver.Resolve ◄─► AlignmentMemory
//	                                   │
//	                                   ▼
//	                         guide.Line.Segments ─► Frame
//
// [Tracker] keeps the monotonically increasing priority counter,
// [AlignmentMemory] stores snapped pairs, and [Resolver] is the overlap
// algorithm. The curve itself lives in [curve] and the guide line
// computation in [guide].
//
// # Usage
//
//	e := hill.NewEngine(hill.DefaultConfig())
//	a, _ := e.Add("Design review", e.Curve().PositionAt(0.1))
//	e.BeginDrag(a.ID)
//	e.MoveTo(e.Curve().PositionAt(0.4))
//	e.EndDrag(a.ID)
//	frame := e.Frame()
//
// # Concurrency
//
// An Engine is not safe for concurrent use. Every mutating call runs a full
// layout pass synchronously; callers that receive input from several
// goroutines must serialize access (see the chart package).
//
// [curve]: github.com/matzehuels/hillchart/pkg/hill/curve
// [guide]: github.com/matzehuels/hillchart/pkg/hill/guide
package hill

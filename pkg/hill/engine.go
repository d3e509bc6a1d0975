package hill

import (
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/hillchart/pkg/hill/curve"
	"github.com/matzehuels/hillchart/pkg/hill/guide"
)

// Frame is the result of one layout pass: everything a renderer needs.
type Frame struct {
	Curve      []curve.Point    `json:"curve"`
	Placements []Placement      `json:"placements"`
	Guide      []guide.Interval `json:"guide"`
	GuideX     float64          `json:"guide_x"`
	Focus      string           `json:"focus,omitempty"`
}

// Placement returns the placement of the marker with the given id.
func (f Frame) Placement(id string) (Placement, bool) {
	i := slices.IndexFunc(f.Placements, func(p Placement) bool { return p.Marker.ID == id })
	if i < 0 {
		return Placement{}, false
	}
	return f.Placements[i], true
}

func (f Frame) clone() Frame {
	f.Curve = slices.Clone(f.Curve)
	f.Placements = slices.Clone(f.Placements)
	f.Guide = slices.Clone(f.Guide)
	return f
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for drag warnings and debug output.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithIDs replaces the UUID generator used by Add. Tests use it to get
// stable ids.
func WithIDs(next func() string) Option {
	return func(e *Engine) {
		if next != nil {
			e.newID = next
		}
	}
}

// Engine owns the markers and all layout state. Every mutating method runs
// a full layout pass before returning; Frame returns the cached result.
//
// Methods that name a marker return false when the id is unknown and leave
// the engine unchanged.
type Engine struct {
	cfg      Config
	resolver Resolver
	guide    guide.Line
	samples  []curve.Point

	markers []Marker
	tracker Tracker
	memory  *AlignmentMemory
	frame   Frame

	logger *log.Logger
	newID  func() string
}

// NewEngine returns an empty engine. cfg is expected to pass
// [Config.Validate].
func NewEngine(cfg Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:      cfg,
		resolver: cfg.Resolver(),
		guide:    cfg.Guide(),
		samples:  slices.Collect(cfg.Curve.Sample(cfg.Samples)),
		memory:   NewAlignmentMemory(),
		logger:   log.Default(),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.relayout()
	return e
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() Config { return e.cfg }

// Curve returns the hill curve.
func (e *Engine) Curve() curve.Curve { return e.cfg.Curve }

// Load replaces all markers. Positions are clamped, progress is recomputed,
// missing ids are generated and ranks are repaired with [Tracker.Backfill].
// Alignment memory starts empty. Load returns the number of markers whose
// rank was repaired.
func (e *Engine) Load(markers []Marker) int {
	e.markers = e.markers[:0]
	seen := make(map[string]bool, len(markers))
	for _, m := range markers {
		if m.ID == "" || seen[m.ID] {
			m.ID = e.newID()
		}
		seen[m.ID] = true
		e.place(&m, m.Position)
		e.markers = append(e.markers, m)
	}
	repaired := e.tracker.Backfill(e.markers)
	e.memory.Clear()
	if repaired > 0 {
		e.logger.Debug("backfilled marker ranks", "repaired", repaired, "counter", e.tracker.Counter())
	}
	e.relayout()
	return repaired
}

// Markers returns a copy of the markers in stored order.
func (e *Engine) Markers() []Marker { return slices.Clone(e.markers) }

// Len returns the number of markers.
func (e *Engine) Len() int { return len(e.markers) }

// Marker returns the marker with the given id.
func (e *Engine) Marker(id string) (Marker, bool) {
	i := indexOf(e.markers, id)
	if i < 0 {
		return Marker{}, false
	}
	return e.markers[i], true
}

// Add creates a marker at position. A label that is empty after trimming
// is rejected and Add returns false. New markers have no rank until their
// first drag.
func (e *Engine) Add(label string, position float64) (Marker, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return Marker{}, false
	}
	m := Marker{ID: e.newID(), Label: label}
	e.place(&m, position)
	e.markers = append(e.markers, m)
	e.relayout()
	return m, true
}

// Remove deletes a marker along with every alignment naming it. Removing
// the dragged marker cancels the drag.
func (e *Engine) Remove(id string) bool {
	i := indexOf(e.markers, id)
	if i < 0 {
		return false
	}
	e.markers = slices.Delete(e.markers, i, i+1)
	e.memory.RemoveMarker(id)
	if d, ok := e.tracker.Dragging(); ok && d == id {
		e.tracker.Cancel()
	}
	e.relayout()
	return true
}

// Clear removes all markers and forgets every alignment. The rank counter
// keeps its value. Clear returns the number of markers removed.
func (e *Engine) Clear() int {
	n := len(e.markers)
	e.markers = e.markers[:0]
	e.memory.Clear()
	e.tracker.Cancel()
	e.relayout()
	return n
}

// BeginDrag starts dragging a marker. A drag that is still open is ended
// first, as if its EndDrag had been called.
func (e *Engine) BeginDrag(id string) bool {
	i := indexOf(e.markers, id)
	if i < 0 {
		return false
	}
	if stale, ok := e.tracker.Dragging(); ok {
		e.logger.Warn("drag started while another drag is open; ending it", "open", stale, "new", id)
		if j := indexOf(e.markers, stale); j >= 0 {
			e.tracker.EndDrag(&e.markers[j])
		} else {
			e.tracker.Cancel()
		}
	}
	e.tracker.BeginDrag(&e.markers[i])
	e.relayout()
	return true
}

// MoveTo moves the dragged marker to position. It returns false when no
// drag is open.
func (e *Engine) MoveTo(position float64) bool {
	id, ok := e.tracker.Dragging()
	if !ok {
		return false
	}
	i := indexOf(e.markers, id)
	if i < 0 {
		e.tracker.Cancel()
		return false
	}
	e.place(&e.markers[i], position)
	e.relayout()
	return true
}

// EndDrag releases a marker, giving it the highest rank. The raw position
// is kept as dragged even if the marker renders snapped to a neighbour.
func (e *Engine) EndDrag(id string) bool {
	i := indexOf(e.markers, id)
	if i < 0 {
		return false
	}
	e.tracker.EndDrag(&e.markers[i])
	e.relayout()
	return true
}

// Move runs a complete drag of one marker to position.
func (e *Engine) Move(id string, position float64) bool {
	if !e.BeginDrag(id) {
		return false
	}
	e.MoveTo(position)
	return e.EndDrag(id)
}

// Nudge shifts a marker's label horizontally by delta.
func (e *Engine) Nudge(id string, delta float64) bool {
	i := indexOf(e.markers, id)
	if i < 0 {
		return false
	}
	e.markers[i].LabelOffset += delta
	e.relayout()
	return true
}

// Dragging returns the id of the marker being dragged.
func (e *Engine) Dragging() (string, bool) { return e.tracker.Dragging() }

// Focus returns the marker that took precedence in the last pass.
func (e *Engine) Focus() (Marker, bool) { return e.tracker.Focus(e.markers) }

// Counter returns the last rank handed out.
func (e *Engine) Counter() int64 { return e.tracker.Counter() }

// Alignments returns the remembered pairs sorted by key.
func (e *Engine) Alignments() []Alignment { return e.memory.Entries() }

// Frame returns a copy of the most recent layout.
func (e *Engine) Frame() Frame { return e.frame.clone() }

// Relayout runs a layout pass without changing any marker and returns the
// new frame. Passes are idempotent, so this only matters after alignments
// changed outside a mutating call.
func (e *Engine) Relayout() Frame {
	e.relayout()
	return e.Frame()
}

func (e *Engine) place(m *Marker, position float64) {
	m.Position = e.cfg.Curve.Clamp(position)
	m.Progress = e.cfg.Curve.Progress(m.Position)
}

func (e *Engine) relayout() {
	var focusID string
	if f, ok := e.tracker.Focus(e.markers); ok {
		focusID = f.ID
	}
	placements := e.resolver.Resolve(e.markers, focusID, e.memory)

	points := make([]guide.Point, len(placements))
	for i, p := range placements {
		points[i] = guide.Point{X: p.X, Y: p.Y}
	}
	e.frame = Frame{
		Curve:      e.samples,
		Placements: placements,
		Guide:      e.guide.Segments(points),
		GuideX:     e.guide.X,
		Focus:      focusID,
	}
	e.logger.Debug("layout pass",
		"markers", len(e.markers),
		"focus", focusID,
		"alignments", e.memory.Len(),
		"guide_segments", len(e.frame.Guide))
}

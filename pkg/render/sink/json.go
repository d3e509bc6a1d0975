package sink

import (
	"encoding/json"

	"github.com/matzehuels/hillchart/pkg/hill"
	"github.com/matzehuels/hillchart/pkg/hill/curve"
	"github.com/matzehuels/hillchart/pkg/hill/guide"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	indent     bool
	withCurve  bool
	alignments []hill.Alignment
}

// WithJSONIndent pretty-prints the output.
func WithJSONIndent() JSONOption { return func(r *jsonRenderer) { r.indent = true } }

// WithJSONCurve includes the curve samples. They are omitted by default
// since they only change with the configuration.
func WithJSONCurve() JSONOption { return func(r *jsonRenderer) { r.withCurve = true } }

// WithJSONAlignments includes the remembered alignments.
func WithJSONAlignments(a []hill.Alignment) JSONOption {
	return func(r *jsonRenderer) { r.alignments = a }
}

type jsonOutput struct {
	Focus      string           `json:"focus,omitempty"`
	GuideX     float64          `json:"guide_x"`
	Guide      []guide.Interval `json:"guide"`
	Markers    []jsonMarker     `json:"markers"`
	Curve      []curve.Point    `json:"curve,omitempty"`
	Alignments []jsonAlignment  `json:"alignments,omitempty"`
}

type jsonMarker struct {
	ID          string  `json:"id"`
	Label       string  `json:"label"`
	Position    float64 `json:"position"`
	Progress    float64 `json:"progress"`
	Percent     int     `json:"percent"`
	Phase       string  `json:"phase"`
	Rank        int64   `json:"priority_rank,omitempty"`
	LabelOffset float64 `json:"label_offset,omitempty"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Depth       int     `json:"depth"`
	Focus       bool    `json:"focus,omitempty"`
}

type jsonAlignment struct {
	A        string  `json:"a"`
	B        string  `json:"b"`
	Position float64 `json:"position"`
}

// RenderJSON renders the frame as JSON. Markers appear in layout order.
func RenderJSON(f hill.Frame, opts ...JSONOption) ([]byte, error) {
	var r jsonRenderer
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Focus:   f.Focus,
		GuideX:  f.GuideX,
		Guide:   f.Guide,
		Markers: make([]jsonMarker, len(f.Placements)),
	}
	if out.Guide == nil {
		out.Guide = []guide.Interval{}
	}
	for i, p := range f.Placements {
		m := p.Marker
		out.Markers[i] = jsonMarker{
			ID:          m.ID,
			Label:       m.Label,
			Position:    m.Position,
			Progress:    m.Progress,
			Percent:     m.Percent(),
			Phase:       hill.PhaseOf(m.Progress),
			Rank:        m.Rank,
			LabelOffset: m.LabelOffset,
			X:           p.X,
			Y:           p.Y,
			Depth:       p.Depth,
			Focus:       p.Role == hill.RoleFocus,
		}
	}
	if r.withCurve {
		out.Curve = f.Curve
	}
	for _, a := range r.alignments {
		out.Alignments = append(out.Alignments, jsonAlignment{A: a.Pair.A, B: a.Pair.B, Position: a.Position})
	}

	if r.indent {
		return json.MarshalIndent(out, "", "  ")
	}
	return json.Marshal(out)
}

package sink

import (
	"strings"

	"github.com/matzehuels/hillchart/pkg/hill"
	"github.com/matzehuels/hillchart/pkg/hill/curve"
)

// Glyphs used by RenderText.
const (
	GlyphCurve    = '.'
	GlyphGuide    = ':'
	GlyphMarker   = 'o'
	GlyphFocus    = '@'
	GlyphSelected = '*'
)

// TextOption configures terminal rendering via [RenderText].
type TextOption func(*textRenderer)

type textRenderer struct {
	cols, rows    int
	width, height float64
	selected      string
	labels        bool
	labelChars    int
}

// WithCanvas sets the canvas size in terminal cells.
func WithCanvas(cols, rows int) TextOption {
	return func(r *textRenderer) { r.cols, r.rows = cols, rows }
}

// WithViewport sets the chart area mapped onto the canvas, in the same
// units as the frame. It matches the SVG size by default.
func WithViewport(w, h float64) TextOption {
	return func(r *textRenderer) { r.width, r.height = w, h }
}

// WithSelected highlights one marker, e.g. under the editor cursor.
func WithSelected(id string) TextOption { return func(r *textRenderer) { r.selected = id } }

// WithoutLabels draws markers only.
func WithoutLabels() TextOption { return func(r *textRenderer) { r.labels = false } }

// RenderText draws the frame on a character grid. Trailing blanks are
// trimmed from every line.
func RenderText(f hill.Frame, opts ...TextOption) string {
	r := textRenderer{
		cols:       80,
		rows:       24,
		width:      DefaultWidth,
		height:     DefaultHeight,
		labels:     true,
		labelChars: 18,
	}
	for _, opt := range opts {
		opt(&r)
	}
	r.cols, r.rows = max(r.cols, 1), max(r.rows, 1)

	g := newGrid(r.cols, r.rows)
	r.drawCurve(g, f.Curve)
	r.drawGuide(g, f)
	r.drawMarkers(g, f)
	return g.String()
}

func (r *textRenderer) col(x float64) int {
	return clampInt(int(x/r.width*float64(r.cols)), 0, r.cols-1)
}

func (r *textRenderer) row(y float64) int {
	return clampInt(int(y/r.height*float64(r.rows)), 0, r.rows-1)
}

func (r *textRenderer) drawCurve(g *grid, pts []curve.Point) {
	if len(pts) < 2 {
		return
	}
	first, last := r.col(pts[0].X), r.col(pts[len(pts)-1].X)
	for c := first; c <= last; c++ {
		x := (float64(c) + 0.5) * r.width / float64(r.cols)
		g.set(c, r.row(interpolate(pts, x)), GlyphCurve)
	}
}

func (r *textRenderer) drawGuide(g *grid, f hill.Frame) {
	c := r.col(f.GuideX)
	for _, s := range f.Guide {
		for row := r.row(s.Start); row <= r.row(s.End); row++ {
			if g.at(c, row) == ' ' {
				g.set(c, row, GlyphGuide)
			}
		}
	}
}

func (r *textRenderer) drawMarkers(g *grid, f hill.Frame) {
	glyph := func(p hill.Placement) rune {
		switch {
		case p.Marker.ID == r.selected:
			return GlyphSelected
		case p.Role == hill.RoleFocus:
			return GlyphFocus
		default:
			return GlyphMarker
		}
	}
	for _, p := range f.Placements {
		g.set(r.col(p.X), r.row(p.Y), glyph(p))
	}
	if !r.labels {
		return
	}
	for _, p := range f.Placements {
		r.drawLabel(g, p, f.GuideX)
	}
}

// drawLabel writes a one-line label beside its marker without covering
// any marker glyph.
func (r *textRenderer) drawLabel(g *grid, p hill.Placement, center float64) {
	label := []rune(strings.Join(strings.Fields(p.Marker.Label), " "))
	if len(label) > r.labelChars {
		label = append(label[:r.labelChars-1], '~')
	}
	c, row := r.col(p.X), r.row(p.Y)
	start := c + 2
	if p.X < center {
		start = c - 1 - len(label)
	}
	for i, ch := range label {
		cc := start + i
		if isMarkerGlyph(g.at(cc, row)) {
			continue
		}
		g.set(cc, row, ch)
	}
}

func isMarkerGlyph(ch rune) bool {
	return ch == GlyphMarker || ch == GlyphFocus || ch == GlyphSelected
}

// interpolate returns the curve height at x from the samples.
func interpolate(pts []curve.Point, x float64) float64 {
	if x <= pts[0].X {
		return pts[0].Y
	}
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		if x <= b.X {
			t := (x - a.X) / (b.X - a.X)
			return a.Y + t*(b.Y-a.Y)
		}
	}
	return pts[len(pts)-1].Y
}

type grid struct {
	cols, rows int
	cells      [][]rune
}

func newGrid(cols, rows int) *grid {
	cells := make([][]rune, rows)
	for i := range cells {
		cells[i] = []rune(strings.Repeat(" ", cols))
	}
	return &grid{cols: cols, rows: rows, cells: cells}
}

func (g *grid) at(c, r int) rune {
	if c < 0 || c >= g.cols || r < 0 || r >= g.rows {
		return 0
	}
	return g.cells[r][c]
}

func (g *grid) set(c, r int, ch rune) {
	if c < 0 || c >= g.cols || r < 0 || r >= g.rows {
		return
	}
	g.cells[r][c] = ch
}

func (g *grid) String() string {
	lines := make([]string, g.rows)
	for i, row := range g.cells {
		lines[i] = strings.TrimRight(string(row), " ")
	}
	return strings.Join(lines, "\n")
}

func clampInt(v, lo, hi int) int { return max(lo, min(hi, v)) }

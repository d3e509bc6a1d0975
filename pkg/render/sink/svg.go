package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/muesli/reflow/wordwrap"

	"github.com/matzehuels/hillchart/pkg/hill"
	"github.com/matzehuels/hillchart/pkg/hill/curve"
)

// SVG defaults.
const (
	DefaultWidth       = 1200.0
	DefaultHeight      = 600.0
	DefaultDotRadius   = hill.DefaultDotRadius
	DefaultLabelOffset = 80.0
	// DefaultLabelWidth is the wrap width in characters. At the assumed
	// 7px per character it keeps labels within 150px.
	DefaultLabelWidth = 21
	DefaultLineHeight = 14.0
)

const chartCSS = `
    .hill-path { fill: none; stroke: #2d3748; stroke-width: 3; }
    .baseline { stroke: #a0aec0; stroke-width: 1; }
    .guide { stroke: #a0aec0; stroke-width: 1.5; stroke-dasharray: 6 4; }
    .phase-label { font: 14px sans-serif; fill: #718096; text-anchor: middle; }
    .milestone-point circle { fill: #e53e3e; stroke: #fff; stroke-width: 2; }
    .milestone-point.focus circle { fill: #c05621; }
    .milestone-text { font: 12px sans-serif; fill: #1a202c; }
    .chart-title { font: bold 20px sans-serif; fill: #1a202c; text-anchor: middle; }`

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	width, height float64
	dotRadius     float64
	labelOffset   float64
	labelWidth    int
	lineHeight    float64
	captions      bool
	background    string
	title         string
}

// WithSize sets the canvas size in user units.
func WithSize(w, h float64) SVGOption {
	return func(r *svgRenderer) { r.width, r.height = w, h }
}

// WithDotRadius sets the marker radius.
func WithDotRadius(radius float64) SVGOption {
	return func(r *svgRenderer) { r.dotRadius = radius }
}

// WithLabelOffset sets the default horizontal gap between a marker and its
// label. Each marker's own LabelOffset is added to it.
func WithLabelOffset(offset float64) SVGOption {
	return func(r *svgRenderer) { r.labelOffset = offset }
}

// WithLabelWidth sets the label wrap width in characters.
func WithLabelWidth(chars int) SVGOption {
	return func(r *svgRenderer) { r.labelWidth = chars }
}

// WithoutCaptions hides the two phase captions under the curve.
func WithoutCaptions() SVGOption { return func(r *svgRenderer) { r.captions = false } }

// WithBackground fills the canvas. Raster output looks wrong on a
// transparent background, so PNG rendering sets white by default.
func WithBackground(color string) SVGOption {
	return func(r *svgRenderer) { r.background = color }
}

// WithTitle draws a title above the hill.
func WithTitle(title string) SVGOption { return func(r *svgRenderer) { r.title = title } }

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{
		width:       DefaultWidth,
		height:      DefaultHeight,
		dotRadius:   DefaultDotRadius,
		labelOffset: DefaultLabelOffset,
		labelWidth:  DefaultLabelWidth,
		lineHeight:  DefaultLineHeight,
		captions:    true,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderSVG renders the frame as a standalone SVG document.
func RenderSVG(f hill.Frame, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		r.width, r.height, r.width, r.height)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", chartCSS)
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", escapeXML(r.background))
	}
	if r.title != "" {
		fmt.Fprintf(&buf, `  <text class="chart-title" x="%.1f" y="40">%s</text>`+"\n", r.width/2, escapeXML(r.title))
	}

	renderCurve(&buf, f.Curve)
	renderGuide(&buf, f)
	if r.captions {
		renderCaptions(&buf, f)
	}
	r.renderMarkers(&buf, f)

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// curvePath builds a smooth path through the samples: each interior sample
// is a quadratic control point ending halfway to the next sample, and a
// final smooth segment reaches the last sample.
func curvePath(pts []curve.Point) string {
	if len(pts) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "M %.2f %.2f", pts[0].X, pts[0].Y)
	for i := 1; i < len(pts)-1; i++ {
		cur, next := pts[i], pts[i+1]
		fmt.Fprintf(&b, " Q %.2f %.2f %.2f %.2f", cur.X, cur.Y, (cur.X+next.X)/2, (cur.Y+next.Y)/2)
	}
	if len(pts) > 1 {
		last := pts[len(pts)-1]
		fmt.Fprintf(&b, " T %.2f %.2f", last.X, last.Y)
	}
	return b.String()
}

func renderCurve(buf *bytes.Buffer, pts []curve.Point) {
	if len(pts) == 0 {
		return
	}
	buf.WriteString(`  <g class="hill-curve">` + "\n")
	fmt.Fprintf(buf, `    <path d="%s" class="hill-path"/>`+"\n", curvePath(pts))
	first, last := pts[0], pts[len(pts)-1]
	base := baselineY(pts)
	fmt.Fprintf(buf, `    <line class="baseline" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"/>`+"\n", first.X, base, last.X, base)
	buf.WriteString("  </g>\n")
}

func renderGuide(buf *bytes.Buffer, f hill.Frame) {
	buf.WriteString(`  <g class="guide-line">` + "\n")
	for _, s := range f.Guide {
		fmt.Fprintf(buf, `    <line class="guide" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"/>`+"\n",
			f.GuideX, s.Start, f.GuideX, s.End)
	}
	buf.WriteString("  </g>\n")
}

func renderCaptions(buf *bytes.Buffer, f hill.Frame) {
	if len(f.Curve) == 0 {
		return
	}
	y := baselineY(f.Curve) + 30
	left := (f.Curve[0].X + f.GuideX) / 2
	right := (f.GuideX + f.Curve[len(f.Curve)-1].X) / 2
	buf.WriteString(`  <g class="phase-labels">` + "\n")
	fmt.Fprintf(buf, `    <text class="phase-label" x="%.2f" y="%.2f">%s</text>`+"\n", left, y, hill.PhaseUphill)
	fmt.Fprintf(buf, `    <text class="phase-label" x="%.2f" y="%.2f">%s</text>`+"\n", right, y, hill.PhaseDownhill)
	buf.WriteString("  </g>\n")
}

func (r *svgRenderer) renderMarkers(buf *bytes.Buffer, f hill.Frame) {
	buf.WriteString(`  <g class="milestone-points">` + "\n")
	for _, p := range f.Placements {
		class := "milestone-point"
		if p.Role == hill.RoleFocus {
			class += " focus"
		}
		fmt.Fprintf(buf, `    <g class="%s" data-milestone-id="%s" data-depth="%d">`+"\n", class, escapeXML(p.Marker.ID), p.Depth)
		fmt.Fprintf(buf, `      <circle cx="%.2f" cy="%.2f" r="%.1f"/>`+"\n", p.X, p.Y, r.dotRadius)
		r.renderLabel(buf, p, f.GuideX)
		buf.WriteString("    </g>\n")
	}
	buf.WriteString("  </g>\n")
}

func (r *svgRenderer) renderLabel(buf *bytes.Buffer, p hill.Placement, center float64) {
	a := labelAnchor(p, center, r.labelOffset)
	lines := WrapLabel(p.Marker.Label, r.labelWidth)
	top := p.Y - float64(len(lines)-1)*r.lineHeight/2

	buf.WriteString(`      <g class="milestone-label">` + "\n")
	for i, line := range lines {
		fmt.Fprintf(buf, `        <text class="milestone-text" x="%.2f" y="%.2f" text-anchor="%s">%s</text>`+"\n",
			a.x, top+float64(i)*r.lineHeight, a.anchor, escapeXML(line))
	}
	buf.WriteString("      </g>\n")
}

type anchor struct {
	x      float64
	anchor string
	left   bool
}

// labelAnchor places a label on the outer side of its marker.
func labelAnchor(p hill.Placement, center, offset float64) anchor {
	d := offset + p.Marker.LabelOffset
	if p.X < center {
		return anchor{x: p.X - d, anchor: "end", left: true}
	}
	return anchor{x: p.X + d, anchor: "start"}
}

// WrapLabel splits a label into lines of at most width characters,
// breaking at spaces. Single words longer than width are kept whole.
func WrapLabel(label string, width int) []string {
	label = strings.Join(strings.Fields(label), " ")
	if label == "" {
		return nil
	}
	if width < 1 {
		return []string{label}
	}
	lines := strings.Split(wordwrap.String(label, width), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return lines
}

func baselineY(pts []curve.Point) float64 {
	y := pts[0].Y
	for _, p := range pts[1:] {
		y = max(y, p.Y)
	}
	return y
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

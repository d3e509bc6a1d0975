package alignment

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/hillchart/pkg/errors"
	"github.com/matzehuels/hillchart/pkg/hill"
)

// Options configures alignment graph rendering.
type Options struct {
	// Detailed adds position, rank and depth to node labels.
	// When false, only the label and percentage are shown.
	Detailed bool
}

// ToDOT converts a frame and its alignments to Graphviz DOT format.
// Nodes follow layout order, so the graph reads left to right like the hill.
func ToDOT(f hill.Frame, alignments []hill.Alignment, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=11];\n")
	buf.WriteString("\n")

	for _, p := range f.Placements {
		fmt.Fprintf(&buf, "  %q [%s];\n", p.Marker.ID, fmtAttrs(p, opts.Detailed))
	}

	buf.WriteString("\n")
	for _, a := range alignments {
		fmt.Fprintf(&buf, "  %q -- %q [label=%q];\n", a.Pair.A, a.Pair.B, strconv.FormatFloat(a.Position, 'f', 1, 64))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(p hill.Placement, detailed bool) string {
	label := fmt.Sprintf("%s\n%d%%", p.Marker.Label, p.Marker.Percent())
	if !detailed {
		return label
	}
	return fmt.Sprintf("%s\nx: %.1f (raw %.1f)\nrank: %d\ndepth: %d",
		label, p.X, p.Marker.Position, p.Marker.Rank, p.Depth)
}

func fmtAttrs(p hill.Placement, detailed bool) string {
	attrs := fmt.Sprintf("label=%q", fmtLabel(p, detailed))
	if p.Stacked() {
		attrs += ", fillcolor=lightgrey"
	}
	if p.Role == hill.RoleFocus {
		attrs += ", penwidth=3"
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one
// whose width and height match the viewBox.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}

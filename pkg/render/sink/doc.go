// Package sink provides output format renderers for hill chart frames.
//
// # Overview
//
// A "sink" transforms a computed [hill.Frame] into a final output format.
// This package provides renderers for:
//
//   - SVG: the chart as drawn in a browser
//   - JSON: frame data for external tools and the HTTP API
//   - Text: a character canvas for the terminal editor
//   - PDF: Print-ready output (requires rsvg-convert)
//   - PNG: Raster image output (requires rsvg-convert)
//
// Sinks only read the frame. A failed render never touches engine state.
//
// # SVG Output
//
// [RenderSVG] draws the curve as a smoothed quadratic path, the broken
// guide line, one circle per marker and its wrapped label. Labels sit on
// the outer side of a marker: left of it on the uphill half, right of it
// on the downhill half.
//
//	svg := sink.RenderSVG(frame,
//	    sink.WithTitle("Q3 roadmap"),
//	    sink.WithLabelWidth(24),
//	)
//
// # PDF and PNG Output
//
// [RenderPDF] and [RenderPNG] render SVG first and convert it through
// [render.ToPDF] and [render.ToPNG]. Pass [WithCache] to reuse earlier
// conversions of an identical SVG:
//
//	png, err := sink.RenderPNG(ctx, frame, sink.WithScale(2), sink.WithCache(c, nil))
//
// [hill.Frame]: github.com/matzehuels/hillchart/pkg/hill.Frame
// [render.ToPDF]: github.com/matzehuels/hillchart/pkg/render.ToPDF
// [render.ToPNG]: github.com/matzehuels/hillchart/pkg/render.ToPNG
package sink

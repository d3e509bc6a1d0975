// Package render turns layout frames into files.
//
// # Overview
//
// Rendering is split in two layers:
//
//   - [sink] draws a [hill.Frame] as SVG, JSON or a terminal canvas, and
//     rasterizes the SVG to PNG or PDF
//   - [alignment] draws the engine's alignment memory as a graph, for
//     debugging why markers snap together
//
// This package holds the shared SVG conversion used by both.
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert an SVG document using the external
// rsvg-convert tool (from librsvg):
//
//	svg := sink.RenderSVG(frame)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0) // 2x scale
//
// [sink]: github.com/matzehuels/hillchart/pkg/render/sink
// [alignment]: github.com/matzehuels/hillchart/pkg/render/alignment
// [hill.Frame]: github.com/matzehuels/hillchart/pkg/hill.Frame
package render

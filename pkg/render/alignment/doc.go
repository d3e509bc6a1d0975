// Package alignment renders the engine's alignment memory as a graph.
//
// Each marker is a node; each remembered alignment is an edge labeled with
// the shared x the pair snaps to. Markers that are stacked in the current
// frame are drawn filled, the focus marker with a bold outline. The view
// answers "why are these two markers glued together" while debugging a
// layout.
//
//	dot := alignment.ToDOT(engine.Frame(), engine.Alignments(), alignment.Options{})
//	svg, err := alignment.RenderSVG(ctx, dot)
//
// SVG rendering uses Graphviz through go-graphviz (no external binary).
package alignment

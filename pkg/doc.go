// Package pkg provides the libraries behind hillchart.
//
// # Overview
//
// A hill chart shows work items as milestones on a bell curve. The left
// slope is "Problem Analysis", the right slope "Executing Plan". The pkg
// directory is organized into four areas:
//
//  1. [hill] - Layout engine (curve, overlap resolution, priorities)
//  2. [chart] - A persisted, concurrency-safe chart built on the engine
//  3. [store], [cache], [config] - Infrastructure
//  4. [render], [export], [server] - Output surfaces
//
// # Architecture
//
// The flow through hillchart:
//
//	Store (file, redis, mongo)
//	         ↓
//	    [chart] package (load, lock, save on drop)
//	         ↓
//	    [hill] package (layout pass → Frame)
//	         ↓
//	    [render/sink] SVG/PNG/PDF/JSON/text, [export] rows, [server] HTTP
//
// # Quick Start
//
// Lay out two milestones and draw them:
//
//	import (
//	    "github.com/matzehuels/hillchart/pkg/hill"
//	    "github.com/matzehuels/hillchart/pkg/render/sink"
//	)
//
//	e := hill.NewEngine(hill.DefaultConfig())
//	e.Add("Research", e.Curve().PositionAt(0.10))
//	e.Add("Prototype", e.Curve().PositionAt(0.12))
//	svg := sink.RenderSVG(e.Frame())
//
// The two markers overlap, so the second one is stacked above the first
// and snapped to a shared x position.
//
// # Packages
//
// Engine:
//   - [hill]: markers, layout engine, alignment memory, priority tracker
//   - [hill/curve]: the Gaussian hill, position to height and progress
//   - [hill/guide]: the dashed midpoint line with gaps around labels
//
// Infrastructure:
//   - [chart]: a named chart with locking and persistence
//   - [store]: chart documents in files, Redis or MongoDB
//   - [cache]: rendered artifact cache (file, Redis)
//   - [config]: TOML configuration
//   - [errors]: coded errors and input validation
//   - [observability]: hooks for layout, store, render and cache events
//   - [buildinfo]: version information set at build time
//
// Output:
//   - [render/sink]: SVG, JSON, terminal text, PNG and PDF
//   - [render/alignment]: alignment memory as a Graphviz graph
//   - [export]: JSON, CSV, YAML and Markdown milestone tables
//   - [server]: chi HTTP API
//
// [hill]: github.com/matzehuels/hillchart/pkg/hill
// [hill/curve]: github.com/matzehuels/hillchart/pkg/hill/curve
// [hill/guide]: github.com/matzehuels/hillchart/pkg/hill/guide
// [chart]: github.com/matzehuels/hillchart/pkg/chart
// [store]: github.com/matzehuels/hillchart/pkg/store
// [cache]: github.com/matzehuels/hillchart/pkg/cache
// [config]: github.com/matzehuels/hillchart/pkg/config
// [errors]: github.com/matzehuels/hillchart/pkg/errors
// [observability]: github.com/matzehuels/hillchart/pkg/observability
// [buildinfo]: github.com/matzehuels/hillchart/pkg/buildinfo
// [render]: github.com/matzehuels/hillchart/pkg/render
// [render/sink]: github.com/matzehuels/hillchart/pkg/render/sink
// [render/alignment]: github.com/matzehuels/hillchart/pkg/render/alignment
// [export]: github.com/matzehuels/hillchart/pkg/export
// [server]: github.com/matzehuels/hillchart/pkg/server
package pkg

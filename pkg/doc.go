// Package pkg provides the core libraries for Gutterview entity diagrams.
//
// # Overview
//
// Gutterview turns a graph of entities (tables, structs, services) into a
// column diagram. Entities become tiles packed into columns, and every
// reference from an attribute row to another entity becomes a path that
// runs through the gutters between columns, subway-map style. The pkg
// directory is organized into three areas:
//
//  1. Domain logic: [graph], [solver], [layout], [route], [render]
//  2. Infrastructure: [cache], [store], [config], [observability]
//  3. Orchestration: [pipeline] (solve → layout → route → render)
//
// # Architecture
//
// The typical data flow through Gutterview:
//
//	graph document (JSON or TOML)
//	         ↓
//	    [graph] package (index-based model)
//	         ↓
//	    [solver] package (minimum linear arrangement by parallel annealing)
//	         ↓
//	    [layout] package (masonry packing into columns)
//	         ↓
//	    [route] package (gutter tracks, bundling, rounded corners)
//	         ↓
//	    SVG/DOT/JSON output via [render]
//
// # Quick Start
//
// Solve, lay out and render a graph file:
//
//	import (
//	    "context"
//	    "os"
//
//	    "github.com/matzehuels/gutterview/pkg/graph"
//	    "github.com/matzehuels/gutterview/pkg/pipeline"
//	)
//
//	m, _ := graph.LoadFile("schema.json")
//	opts := pipeline.DefaultOptions()
//	opts.Formats = []string{pipeline.FormatSVG}
//	res, _ := pipeline.NewRunner(nil, nil, nil).Execute(context.Background(), m, opts)
//	_ = os.WriteFile("schema.svg", res.Artifacts[pipeline.FormatSVG], 0o644)
//
// Each stage can also be used on its own. [solver.Initialize] starts the
// annealing chains, [layout.Compute] packs tiles for an order, and
// [route.Route] computes gutter paths for a layout.
//
// # Main Packages
//
//   - [graph]: Document, Model and Diagram types with JSON/TOML codecs
//   - [solver]: Annealing chains, cost deltas, reheating and reseeding
//   - [solver/worker]: Background solver with a single in-flight request
//   - [layout]: Column widths, masonry packing and free gutter intervals
//   - [route]: Track assignment, bundle offsets and polyline rounding
//   - [render]: SVG writer and Graphviz DOT export
//   - [pipeline]: Cached orchestration of all stages
//   - [cache]: File, Redis and null caches with content-hash keys
//   - [store]: Run history in memory or MongoDB
//   - [config]: TOML config file with environment overrides
//   - [errors]: Coded errors shared by the CLI and HTTP server
//
// [graph]: https://pkg.go.dev/github.com/matzehuels/gutterview/pkg/graph
// [solver]: https://pkg.go.dev/github.com/matzehuels/gutterview/pkg/solver
// [solver/worker]: https://pkg.go.dev/github.com/matzehuels/gutterview/pkg/solver/worker
// [layout]: https://pkg.go.dev/github.com/matzehuels/gutterview/pkg/layout
// [route]: https://pkg.go.dev/github.com/matzehuels/gutterview/pkg/route
// [render]: https://pkg.go.dev/github.com/matzehuels/gutterview/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/gutterview/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/gutterview/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/gutterview/pkg/store
// [config]: https://pkg.go.dev/github.com/matzehuels/gutterview/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/gutterview/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/gutterview/pkg/errors
// [solver.Initialize]: https://pkg.go.dev/github.com/matzehuels/gutterview/pkg/solver#Initialize
// [layout.Compute]: https://pkg.go.dev/github.com/matzehuels/gutterview/pkg/layout#Compute
// [route.Route]: https://pkg.go.dev/github.com/matzehuels/gutterview/pkg/route#Route
package pkg

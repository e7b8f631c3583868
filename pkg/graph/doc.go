// Package graph provides the entity graph model and the serialization types
// for graph documents and computed diagrams.
//
// # Architecture
//
// The package sits at the serialization boundary between documents on disk
// (or in HTTP requests) and the index-based model the solver, layout engine
// and router work on:
//
//   - [Document], [Entity], [Row]: Input format (JSON or TOML)
//   - [Model], [Node], [Edge]: Index-based graph consumed by pkg/solver,
//     pkg/layout and pkg/route
//   - [Diagram], [Tile], [Path], [Stats]: Output format for computed diagrams
//
// Use [Build] to turn a Document into a Model and [Model.Document] to go back.
//
// # Graph Documents
//
// Entities carry attribute rows. A row whose target names another entity
// becomes an edge from that row to the target tile:
//
//	{
//	  "entities": [
//	    {"id": "parse", "rows": [{"attr": "feeds", "target": "ast"}]},
//	    {"id": "ast"}
//	  ]
//	}
//
// The same structure can be written as TOML using [[entities]] and
// [[entities.rows]] tables.
//
// Common operations:
//
//	m, _ := graph.LoadFile("graph.toml")          // File → Model
//	doc, _ := graph.ReadDocumentFile("g.json")    // File → Document
//	data, _ := graph.MarshalDiagram(d)            // Diagram → []byte
//	d, _ = graph.UnmarshalDiagram(data)           // []byte → Diagram
//
// # Fingerprints
//
// [Fingerprint] hashes the canonical JSON form of a document. Callers use it
// to detect content changes and to decide when cached models, solver chains
// and diagrams must be rebuilt.
package graph

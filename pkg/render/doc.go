// Package render turns a routed [graph.Diagram] into images.
//
// # SVG
//
// [RenderSVG] draws the diagram as the router laid it out: tiles with a
// title header and one line per attribute row, and edges as rounded
// polylines coloured by bundle. Edges that had to use a fallback track are
// dashed so they stand out.
//
//	svg := render.RenderSVG(diagram, render.WithParams(params), render.WithHighlight())
//
// # Graphviz preview
//
// [ToDOT] and [RenderDOT] produce a node-link preview of the same graph
// through Graphviz. It ignores the column layout and is meant for checking
// the graph itself, not the diagram.
//
//	svg, err := render.RenderDOT(ctx, render.ToDOT(diagram))
//
// [graph.Diagram]: github.com/matzehuels/gutterview/pkg/graph.Diagram
package render

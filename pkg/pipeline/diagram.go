package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/gutterview/pkg/graph"
	"github.com/matzehuels/gutterview/pkg/layout"
	"github.com/matzehuels/gutterview/pkg/observability"
	"github.com/matzehuels/gutterview/pkg/route"
	"github.com/matzehuels/gutterview/pkg/solver"
)

// BuildDiagram packs m's tiles in order, routes every edge and collects
// statistics. It does not touch the cache; use [Runner.Diagram] for that.
func BuildDiagram(ctx context.Context, m *graph.Model, order []int, opts Options) (graph.Diagram, error) {
	if err := checkModel(m); err != nil {
		return graph.Diagram{}, err
	}
	if err := opts.ValidateForLayout(); err != nil {
		return graph.Diagram{}, err
	}
	hooks := observability.Pipeline()

	hooks.OnLayoutStart(ctx, m.NodeCount())
	start := time.Now()
	l, err := layout.Compute(order, m.RowCounts(), opts.Width, opts.Columns, opts.Params)
	hooks.OnLayoutComplete(ctx, columnsOf(l), time.Since(start), err)
	if err != nil {
		return graph.Diagram{}, err
	}
	opts.Logger.Debug("packed columns",
		"columns", l.ColumnCount,
		"tile_width", l.TileWidth,
		"height", l.Height)

	start = time.Now()
	edges := route.Route(l, m.Edges)
	stats := route.ComputeStats(m, l, edges, order)
	hooks.OnRouteComplete(ctx, len(edges), stats.FallbackTracks, time.Since(start))
	if stats.FallbackTracks > 0 {
		opts.Logger.Debug("routed with fallback tracks", "count", stats.FallbackTracks, "edges", len(edges))
	}

	var cost uint32
	if p, err := solver.NewProblem(m.NodeCount(), m.Pairs()); err == nil {
		cost = p.Cost(order)
	}

	return graph.Diagram{
		Width:     l.Width,
		Height:    l.Height,
		Columns:   l.ColumnCount,
		TileWidth: l.TileWidth,
		Order:     append([]int(nil), order...),
		Cost:      cost,
		Tiles:     exportTiles(m, l),
		Paths:     exportPaths(m, edges),
		Stats:     stats,
	}, nil
}

func columnsOf(l *layout.Layout) int {
	if l == nil {
		return 0
	}
	return l.ColumnCount
}

func exportTiles(m *graph.Model, l *layout.Layout) []graph.Tile {
	tiles := make([]graph.Tile, len(l.Tiles))
	for i, r := range l.Tiles {
		n := &m.Nodes[i]
		tiles[i] = graph.Tile{
			ID:     n.ID,
			Title:  n.Title,
			Column: l.Column[i],
			X:      r.Left,
			Y:      r.Top,
			Width:  r.Width(),
			Height: r.Height(),
			Rows:   n.Rows,
		}
	}
	return tiles
}

func exportPaths(m *graph.Model, edges []route.Edge) []graph.Path {
	if len(edges) == 0 {
		return nil
	}
	paths := make([]graph.Path, len(edges))
	for i, e := range edges {
		pts := make([]graph.Point, len(e.Points))
		for j, p := range e.Points {
			pts[j] = graph.Point{X: p.X, Y: p.Y}
		}
		to := m.Nodes[e.To].ID
		paths[i] = graph.Path{
			From:     m.Nodes[e.From].ID,
			To:       to,
			Attr:     e.Attr,
			Bundle:   graph.BundleKey(e.Attr, to),
			Points:   pts,
			Length:   e.Length,
			Turns:    e.Turns,
			Span:     e.Span,
			Left:     e.GoLeft,
			Fallback: e.Fallback,
		}
	}
	return paths
}

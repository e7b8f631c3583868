package route

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/matzehuels/gutterview/pkg/graph"
	"github.com/matzehuels/gutterview/pkg/layout"
	"github.com/matzehuels/gutterview/pkg/solver"
)

// ComputeStats summarizes a routed diagram. order is the node order the
// layout was packed from; LinearTotal is its total edge span.
func ComputeStats(m *graph.Model, l *layout.Layout, edges []Edge, order []int) graph.Stats {
	s := graph.Stats{
		Nodes:        m.NodeCount(),
		Edges:        m.EdgeCount(),
		Components:   len(m.Components()),
		Columns:      l.ColumnCount,
		CanvasWidth:  l.Width,
		CanvasHeight: l.Height,
	}
	if area := l.Width * l.Height; area > 0 {
		s.TileCoverage = l.TileArea() / area
	}

	if len(edges) > 0 {
		lengths := make([]float64, len(edges))
		turns := make([]float64, len(edges))
		spans := make([]float64, len(edges))
		for i := range edges {
			e := &edges[i]
			lengths[i] = e.Length
			turns[i] = float64(e.Turns)
			spans[i] = float64(e.Span)
			if e.GoLeft {
				s.LeftEdges++
			}
			if e.Fallback {
				s.FallbackTracks++
			}
		}
		s.TotalEdgeLen = floats.Sum(lengths)
		s.AvgEdgeLen = stat.Mean(lengths, nil)
		s.MaxEdgeLen = floats.Max(lengths)
		s.AvgTurns = stat.Mean(turns, nil)
		s.MaxTurns = int(floats.Max(turns))
		s.AvgSpan = stat.Mean(spans, nil)
		s.MaxSpan = int(floats.Max(spans))
	}

	if m.EdgeCount() > 0 && solver.ValidateOrder(order, m.NodeCount()) == nil {
		pos := make([]int, len(order))
		for i, node := range order {
			pos[node] = i
		}
		total := 0
		for _, e := range m.Edges {
			d := pos[e.From] - pos[e.To]
			if d < 0 {
				d = -d
			}
			total += d
		}
		s.LinearTotal = float64(total)
		s.LinearAvg = float64(total) / float64(m.EdgeCount())
	}
	return s
}

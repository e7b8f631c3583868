package route

import (
	"math"
	"testing"

	"github.com/matzehuels/gutterview/pkg/graph"
	"github.com/matzehuels/gutterview/pkg/layout"
)

func pts(coords ...float64) []layout.Point {
	out := make([]layout.Point, 0, len(coords)/2)
	for i := 0; i+1 < len(coords); i += 2 {
		out = append(out, layout.Point{X: coords[i], Y: coords[i+1]})
	}
	return out
}

func TestPolylineMetrics(t *testing.T) {
	tests := []struct {
		name       string
		in         []layout.Point
		wantLen    int
		wantLength float64
		wantTurns  int
	}{
		{"Empty", nil, 0, 0, 0},
		{"Straight", pts(0, 0, 10, 0, 20, 0), 3, 20, 0},
		{"Duplicates", pts(0, 0, 0.05, 0, 10, 0, 10, 0.05, 10, 10), 3, 10 + 10, 1},
		{"Staircase", pts(0, 0, 5, 0, 5, 5, 10, 5, 10, 10), 5, 20, 3},
		{"Diagonal", pts(0, 0, 3, 4), 2, 7, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dedup(tt.in)
			if len(got) != tt.wantLen {
				t.Fatalf("dedup() kept %d points, want %d: %v", len(got), tt.wantLen, got)
			}
			if l := Length(got); !approx(l, tt.wantLength) {
				t.Errorf("Length() = %g, want %g", l, tt.wantLength)
			}
			if n := Turns(got); n != tt.wantTurns {
				t.Errorf("Turns() = %d, want %d", n, tt.wantTurns)
			}
		})
	}
}

func TestRoundPolyline(t *testing.T) {
	in := pts(0, 0, 10, 0, 10, 10)
	out := RoundPolyline(in, 4, 4)

	if len(out) != 7 {
		t.Fatalf("RoundPolyline() returned %d points, want 7: %v", len(out), out)
	}
	if out[0] != in[0] || out[len(out)-1] != in[2] {
		t.Errorf("endpoints changed: %v", out)
	}
	if out[1] != (layout.Point{X: 6, Y: 0}) {
		t.Errorf("arc starts at %v, want (6, 0)", out[1])
	}
	arcEnd := out[5]
	if !approx(arcEnd.X, 10) || !approx(arcEnd.Y, 4) {
		t.Errorf("arc ends at %v, want (10, 4)", arcEnd)
	}
	for _, p := range out[1:6] {
		if r := math.Hypot(p.X-6, p.Y-4); !approx(r, 4) {
			t.Errorf("arc point %v at radius %g, want 4", p, r)
		}
	}
}

func TestRoundPolylineUnchanged(t *testing.T) {
	tests := []struct {
		name     string
		in       []layout.Point
		radius   float64
		segments int
	}{
		{"TwoPoints", pts(0, 0, 10, 0), 4, 4},
		{"ZeroRadius", pts(0, 0, 10, 0, 10, 10), 0, 4},
		{"NoSegments", pts(0, 0, 10, 0, 10, 10), 4, 0},
		{"Collinear", pts(0, 0, 10, 0, 20, 0), 4, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := RoundPolyline(tt.in, tt.radius, tt.segments)
			if len(out) != len(tt.in) {
				t.Fatalf("got %v, want %v", out, tt.in)
			}
			for i := range out {
				if out[i] != tt.in[i] {
					t.Errorf("point %d = %v, want %v", i, out[i], tt.in[i])
				}
			}
		})
	}
}

func TestRoundPolylineShortSegments(t *testing.T) {
	// Radius shrinks to half of the 2-unit leg.
	out := RoundPolyline(pts(0, 0, 2, 0, 2, 20), 8, 2)
	if out[1] != (layout.Point{X: 1, Y: 0}) {
		t.Errorf("arc starts at %v, want (1, 0)", out[1])
	}
}

func TestPick(t *testing.T) {
	edges := []Edge{
		{Points: pts(0, 0, 100, 0)},
		{Points: pts(0, 50, 100, 50)},
	}
	if got := Pick(edges, layout.Point{X: 40, Y: 45}, 8); got != 1 {
		t.Errorf("Pick() = %d, want 1", got)
	}
	if got := Pick(edges, layout.Point{X: 40, Y: 25}, 8); got != -1 {
		t.Errorf("Pick() = %d, want -1", got)
	}
	if d := DistanceSq(layout.Point{X: 150, Y: 0}, edges[0].Points); !approx(d, 2500) {
		t.Errorf("DistanceSq() = %g, want 2500", d)
	}
}

func TestComputeStats(t *testing.T) {
	doc := graph.Document{Entities: []graph.Entity{
		{ID: "a", Rows: []graph.Row{{Attr: "next", Target: "b"}, {Attr: "far", Target: "c"}}},
		{ID: "b", Rows: []graph.Row{{Attr: "next", Target: "c"}}},
		{ID: "c"},
		{ID: "lonely"},
	}}
	m, err := graph.Build(doc)
	if err != nil {
		t.Fatal(err)
	}
	order := []int{0, 1, 2, 3}
	l, err := layout.Compute(order, m.RowCounts(), 1200, 3, layout.Params{})
	if err != nil {
		t.Fatal(err)
	}
	edges := Route(l, m.Edges)
	s := ComputeStats(m, l, edges, order)

	if s.Nodes != 4 || s.Edges != 3 || s.Components != 2 || s.Columns != 3 {
		t.Errorf("counts = %+v", s)
	}
	// |0-1| + |0-2| + |1-2|
	if s.LinearTotal != 4 || !approx(s.LinearAvg, 4.0/3) {
		t.Errorf("linear = %g / %g, want 4 / 1.333", s.LinearTotal, s.LinearAvg)
	}
	total := 0.0
	for _, e := range edges {
		total += e.Length
		if e.Length > s.MaxEdgeLen {
			t.Errorf("edge longer than MaxEdgeLen")
		}
	}
	if !approx(s.TotalEdgeLen, total) || !approx(s.AvgEdgeLen, total/3) {
		t.Errorf("lengths = %g / %g, want %g", s.TotalEdgeLen, s.AvgEdgeLen, total)
	}
	if s.MaxSpan != 2 || s.TileCoverage <= 0 || s.TileCoverage >= 1 {
		t.Errorf("stats = %+v", s)
	}

	empty := ComputeStats(m, l, nil, []int{0})
	if empty.TotalEdgeLen != 0 || empty.LinearTotal != 0 {
		t.Errorf("no edges and a bad order should leave totals at zero: %+v", empty)
	}
}

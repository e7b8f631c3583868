// Package route draws edges between laid-out tiles as subway lines.
//
// Every edge leaves its source tile at the row that holds the reference and
// travels through the gutters between columns. Vertical runs stay inside
// gutters; horizontal runs cross columns only where the column has a free
// interval. Edges sharing an attribute and a target are bundled into parallel
// lanes of the same gutter so they read as one line.
//
// Routing never fails. When no free interval fits, the edge is still drawn
// and flagged with [Edge.Fallback].
package route

import (
	"hash/fnv"

	"github.com/matzehuels/gutterview/pkg/graph"
	"github.com/matzehuels/gutterview/pkg/layout"
)

// BundleKey groups edges drawn as parallel lanes of one line.
type BundleKey struct {
	Attr string
	To   int
}

// Edge is a routed edge.
type Edge struct {
	From    int
	To      int
	FromRow int
	Attr    string

	Points   []layout.Point
	Length   float64 // Manhattan length
	Turns    int
	Span     int // Number of columns between source and target
	GoLeft   bool
	Fallback bool // Some horizontal run found no free interval

	Underline    layout.Segment
	HasUnderline bool
}

// Bundle returns the key the edge is bundled and coloured by.
func (e *Edge) Bundle() BundleKey { return BundleKey{Attr: e.Attr, To: e.To} }

type boundaryKey struct {
	boundary int
	key      BundleKey
}

type draft struct {
	edge        graph.Edge
	source      layout.Rect
	goLeft      bool
	start, end  layout.Point
	minCol      int
	maxCol      int
	startBound  int
	endBound    int
	startCenter float64
	endCenter   float64
}

// Route routes edges through the gutters of l. Edges referencing unknown
// nodes or degenerate tiles are skipped; all others yield exactly one Edge,
// in input order.
func Route(l *layout.Layout, edges []graph.Edge) []Edge {
	drafts := make([]draft, 0, len(edges))
	for _, e := range edges {
		if d, ok := newDraft(l, e); ok {
			drafts = append(drafts, d)
		}
	}

	offsets := bundleOffsets(l.Params.ColumnGap, drafts)
	routed := make([]Edge, 0, len(drafts))
	for i := range drafts {
		routed = append(routed, routeDraft(l, &drafts[i], offsets))
	}
	return routed
}

func newDraft(l *layout.Layout, e graph.Edge) (draft, bool) {
	n := l.NodeCount()
	if e.From < 0 || e.From >= n || e.To < 0 || e.To >= n {
		return draft{}, false
	}
	src, dst := l.Tiles[e.From], l.Tiles[e.To]
	if !src.Positive() || !dst.Positive() {
		return draft{}, false
	}

	fromCol, toCol := l.Column[e.From], l.Column[e.To]
	half := l.Params.ColumnGap / 2
	goLeft := chooseSide(fromCol, toCol, l.ColumnCount, e.Attr)
	endLeft := goLeft
	if fromCol != toCol {
		endLeft = !goLeft
	}

	d := draft{
		edge:   e,
		source: src,
		goLeft: goLeft,
		minCol: min(fromCol, toCol),
		maxCol: max(fromCol, toCol),
	}
	d.start = l.RowAnchor(src, e.FromRow, goLeft)
	d.end = closestCornerOnSide(dst, d.start, endLeft)

	if goLeft {
		d.startBound, d.startCenter = fromCol-1, src.Left-half
	} else {
		d.startBound, d.startCenter = fromCol, src.Right+half
	}
	if endLeft {
		d.endBound, d.endCenter = toCol-1, dst.Left-half
	} else {
		d.endBound, d.endCenter = toCol, dst.Right+half
	}
	return d, true
}

// chooseSide reports whether an edge leaves its source tile on the left.
// Cross-column edges head towards the target. Same-column edges use the outer
// side of the first and last column and a stable per-attribute bit otherwise.
func chooseSide(fromCol, toCol, columns int, attr string) bool {
	if fromCol != toCol {
		return toCol < fromCol
	}
	last := max(columns-1, 0)
	switch {
	case last == 0:
		return attrBit(attr)
	case fromCol == 0:
		return true
	case fromCol == last:
		return false
	default:
		return attrBit(attr)
	}
}

func attrBit(attr string) bool {
	h := fnv.New32a()
	h.Write([]byte(attr))
	return h.Sum32()&1 == 0
}

func closestCornerOnSide(target layout.Rect, from layout.Point, left bool) layout.Point {
	x := target.Right
	if left {
		x = target.Left
	}
	top := layout.Point{X: x, Y: target.Top}
	bottom := layout.Point{X: x, Y: target.Bottom}
	if distSq(from, top) <= distSq(from, bottom) {
		return top
	}
	return bottom
}

// bundleOffsets spreads the bundles meeting at each gutter evenly across it,
// in first-seen order.
func bundleOffsets(gap float64, drafts []draft) map[boundaryKey]float64 {
	maxOffset := max(gap/2-4, 0)
	keys := make(map[int][]BundleKey)
	var bounds []int
	add := func(b int, k BundleKey) {
		list, seen := keys[b]
		if !seen {
			bounds = append(bounds, b)
		}
		for _, existing := range list {
			if existing == k {
				return
			}
		}
		keys[b] = append(list, k)
	}
	for _, d := range drafts {
		k := BundleKey{Attr: d.edge.Attr, To: d.edge.To}
		add(d.startBound, k)
		add(d.endBound, k)
	}

	offsets := make(map[boundaryKey]float64)
	for _, b := range bounds {
		list := keys[b]
		if len(list) == 1 || maxOffset <= 0.01 {
			offsets[boundaryKey{b, list[0]}] = 0
			continue
		}
		step := 2 * maxOffset / float64(len(list)-1)
		for i, k := range list {
			offsets[boundaryKey{b, k}] = -maxOffset + step*float64(i)
		}
	}
	return offsets
}

func routeDraft(l *layout.Layout, d *draft, offsets map[boundaryKey]float64) Edge {
	key := BundleKey{Attr: d.edge.Attr, To: d.edge.To}
	startOff := offsets[boundaryKey{d.startBound, key}]
	endOff, ok := offsets[boundaryKey{d.endBound, key}]
	if !ok {
		endOff = startOff
	}

	startX := d.startCenter + startOff
	endX := d.endCenter + endOff
	sameGutter := d.startBound == d.endBound
	if !sameGutter {
		if d.startCenter <= d.endCenter {
			startX = clamp(startX, d.startCenter, d.endCenter)
			endX = clamp(endX, startX, d.endCenter)
		} else {
			startX = clamp(startX, d.endCenter, d.startCenter)
			endX = clamp(endX, d.endCenter, startX)
		}
	}

	span := d.maxCol - d.minCol
	var (
		pts      []layout.Point
		fallback bool
	)
	switch {
	case sameGutter:
		pts = []layout.Point{
			d.start,
			{X: startX, Y: d.start.Y},
			{X: startX, Y: d.end.Y},
			d.end,
		}
	case span > 1:
		pts, fallback = walkGutters(l, d, key, startX, offsets)
	default:
		trackY, fb := chooseTrackBetween(l.Free, d.start.Y, d.end.Y, d.minCol, d.maxCol)
		fallback = fb
		pts = []layout.Point{
			d.start,
			{X: d.startCenter, Y: d.start.Y},
			{X: d.startCenter, Y: trackY},
			{X: startX, Y: trackY},
			{X: endX, Y: trackY},
			{X: d.endCenter, Y: trackY},
			{X: d.endCenter, Y: d.end.Y},
			d.end,
		}
	}

	pts = dedup(pts)
	e := Edge{
		From:     d.edge.From,
		To:       d.edge.To,
		FromRow:  d.edge.FromRow,
		Attr:     d.edge.Attr,
		Points:   pts,
		Length:   Length(pts),
		Turns:    Turns(pts),
		Span:     span,
		GoLeft:   d.goLeft,
		Fallback: fallback,
	}
	e.Underline, e.HasUnderline = l.RowUnderline(d.source, d.edge.FromRow, d.goLeft)
	return e
}

// walkGutters routes an edge spanning several columns gutter by gutter,
// crossing each intermediate column at a free track. x never moves backwards.
func walkGutters(l *layout.Layout, d *draft, key BundleKey, startX float64, offsets map[boundaryKey]float64) ([]layout.Point, bool) {
	pts := []layout.Point{d.start, {X: startX, Y: d.start.Y}}
	step := -1
	if d.endBound > d.startBound {
		step = 1
	}
	stepX := d.source.Width() + l.Params.ColumnGap

	fallback := false
	bound := d.startBound
	curY, curX := d.start.Y, startX
	for bound != d.endBound {
		next := bound + step
		col := bound
		if step > 0 {
			col = next
		}
		nextCenter := d.startCenter + float64(next-d.startBound)*stepX

		trackY, fb := curY, true
		if col >= 0 && col < len(l.Free) {
			trackY, fb = chooseTrackMonotonic(l.Free[col], curY, d.end.Y)
		}
		fallback = fallback || fb

		nextX := nextCenter + offsets[boundaryKey{next, key}]
		if (step > 0 && nextX < curX) || (step < 0 && nextX > curX) {
			nextX = curX
		}

		pts = append(pts, layout.Point{X: curX, Y: trackY}, layout.Point{X: nextX, Y: trackY})
		bound, curY, curX = next, trackY, nextX
	}

	pts = append(pts, layout.Point{X: curX, Y: d.end.Y}, d.end)
	return pts, fallback
}

func clamp(v, lo, hi float64) float64 { return min(max(v, lo), hi) }

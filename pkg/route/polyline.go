package route

import (
	"math"

	"github.com/matzehuels/gutterview/pkg/layout"
)

func distSq(a, b layout.Point) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}

// dedup drops consecutive points closer than 0.1 units.
func dedup(pts []layout.Point) []layout.Point {
	if len(pts) == 0 {
		return pts
	}
	out := pts[:1]
	for _, p := range pts[1:] {
		if distSq(out[len(out)-1], p) < 0.01 {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Length returns the Manhattan length of a polyline.
func Length(pts []layout.Point) float64 {
	total := 0.0
	for i := 1; i < len(pts); i++ {
		total += math.Abs(pts[i].X-pts[i-1].X) + math.Abs(pts[i].Y-pts[i-1].Y)
	}
	return total
}

// Turns counts changes between horizontal and vertical segments.
// A segment is horizontal when |dy| <= |dx|.
func Turns(pts []layout.Point) int {
	turns := 0
	for i := 2; i < len(pts); i++ {
		if horizontal(pts[i-2], pts[i-1]) != horizontal(pts[i-1], pts[i]) {
			turns++
		}
	}
	return turns
}

func horizontal(a, b layout.Point) bool {
	return math.Abs(a.Y-b.Y) <= math.Abs(a.X-b.X)
}

// RoundPolyline replaces each corner with a circular arc of the given radius
// sampled at segments points. The radius shrinks to half the shorter adjacent
// segment. Straight joints and very short segments are kept as they are.
func RoundPolyline(pts []layout.Point, radius float64, segments int) []layout.Point {
	if len(pts) < 3 || radius <= 0 || segments <= 0 {
		return append([]layout.Point(nil), pts...)
	}

	out := make([]layout.Point, 0, len(pts)+2*segments)
	out = append(out, pts[0])

	for i := 1; i < len(pts)-1; i++ {
		prev, cur, next := pts[i-1], pts[i], pts[i+1]
		inX, inY := cur.X-prev.X, cur.Y-prev.Y
		outX, outY := next.X-cur.X, next.Y-cur.Y
		lenIn, lenOut := math.Hypot(inX, inY), math.Hypot(outX, outY)
		if lenIn <= 0.01 || lenOut <= 0.01 {
			out = append(out, cur)
			continue
		}
		inX, inY = inX/lenIn, inY/lenIn
		outX, outY = outX/lenOut, outY/lenOut
		if math.Abs(inX*outX+inY*outY) > 0.999 {
			out = append(out, cur)
			continue
		}

		r := min(radius, lenIn/2, lenOut/2)
		if r <= 0.01 {
			out = append(out, cur)
			continue
		}

		p1 := layout.Point{X: cur.X - inX*r, Y: cur.Y - inY*r}
		p2 := layout.Point{X: cur.X + outX*r, Y: cur.Y + outY*r}
		if i == 1 {
			if distSq(out[len(out)-1], p1) > 0.01 {
				out = append(out, p1)
			}
		} else {
			out[len(out)-1] = p1
		}

		cx, cy := cur.X+(outX-inX)*r, cur.Y+(outY-inY)*r
		a1 := math.Atan2(p1.Y-cy, p1.X-cx)
		a2 := math.Atan2(p2.Y-cy, p2.X-cx)
		if inX*outY-inY*outX > 0 {
			if a2 <= a1 {
				a2 += 2 * math.Pi
			}
		} else if a2 >= a1 {
			a2 -= 2 * math.Pi
		}
		step := (a2 - a1) / float64(segments)
		for s := 1; s <= segments; s++ {
			a := a1 + step*float64(s)
			out = append(out, layout.Point{X: cx + math.Cos(a)*r, Y: cy + math.Sin(a)*r})
		}
	}

	return append(out, pts[len(pts)-1])
}

// DistanceSq returns the squared distance from p to the nearest segment of
// the polyline, or +Inf for fewer than two points.
func DistanceSq(p layout.Point, pts []layout.Point) float64 {
	best := math.Inf(1)
	for i := 1; i < len(pts); i++ {
		best = min(best, segmentDistSq(p, pts[i-1], pts[i]))
	}
	return best
}

func segmentDistSq(p, a, b layout.Point) float64 {
	abX, abY := b.X-a.X, b.Y-a.Y
	denom := abX*abX + abY*abY
	if denom <= eps {
		return distSq(p, a)
	}
	t := clamp(((p.X-a.X)*abX+(p.Y-a.Y)*abY)/denom, 0, 1)
	return distSq(p, layout.Point{X: a.X + abX*t, Y: a.Y + abY*t})
}

// Pick returns the index of the edge nearest to p within maxDist, or -1.
func Pick(edges []Edge, p layout.Point, maxDist float64) int {
	best, bestD := -1, maxDist*maxDist
	for i := range edges {
		if d := DistanceSq(p, edges[i].Points); d <= bestD {
			best, bestD = i, d
		}
	}
	return best
}

package layout

// Interval is a vertical span [Top, Bottom] of a column that no tile
// (expanded by the clearance) occupies. Edge tracks may cross the column
// anywhere inside it.
type Interval struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// Contains reports whether y lies within the interval, bounds included.
func (iv Interval) Contains(y float64) bool { return y >= iv.Top && y <= iv.Bottom }

// Center returns the midpoint of the interval.
func (iv Interval) Center() float64 { return (iv.Top + iv.Bottom) / 2 }

// Intersect returns the pairwise intersections of two sorted, disjoint
// interval lists. Empty or zero-length overlaps are dropped.
func Intersect(a, b []Interval) []Interval {
	var out []Interval
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		top := max(a[i].Top, b[j].Top)
		bottom := min(a[i].Bottom, b[j].Bottom)
		if bottom > top {
			out = append(out, Interval{Top: top, Bottom: bottom})
		}
		if a[i].Bottom < b[j].Bottom {
			i++
		} else {
			j++
		}
	}
	return out
}

// InAny reports whether y lies in one of the intervals.
func InAny(ivs []Interval, y float64) bool {
	for _, iv := range ivs {
		if iv.Contains(y) {
			return true
		}
	}
	return false
}

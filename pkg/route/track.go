package route

import (
	"math"

	"github.com/matzehuels/gutterview/pkg/layout"
)

const eps = 1.1920929e-07

// chooseTrackY returns the center of the corridor closest to both ends.
func chooseTrackY(corridors []layout.Interval, startY, endY float64) float64 {
	best := corridors[0].Center()
	bestCost := math.Inf(1)
	for _, c := range corridors {
		y := c.Center()
		cost := math.Abs(startY-y) + math.Abs(endY-y)
		if cost < bestCost {
			bestCost = cost
			best = y
		}
	}
	return best
}

// chooseTrackMonotonic picks the y at which a horizontal run crosses a column
// while walking from cur towards end. It prefers a corridor reachable without
// moving away from end and reports fallback when none exists.
func chooseTrackMonotonic(corridors []layout.Interval, cur, end float64) (y float64, fallback bool) {
	if len(corridors) == 0 {
		return cur, true
	}

	down := end >= cur
	found := false
	bestDelta := math.Inf(1)
	for _, c := range corridors {
		var cand, delta float64
		if down {
			if c.Bottom < cur || c.Top > end {
				continue
			}
			cand = min(max(cur, c.Top), c.Bottom)
			delta = cand - cur
		} else {
			if c.Top > cur || c.Bottom < end {
				continue
			}
			cand = max(min(cur, c.Bottom), c.Top)
			delta = cur - cand
		}
		if delta < bestDelta {
			bestDelta, y, found = delta, cand, true
			if delta <= eps {
				break
			}
		}
	}
	if found {
		return y, false
	}

	bestDelta = math.Inf(1)
	for _, c := range corridors {
		var cand float64
		if down {
			if c.Bottom < cur {
				continue
			}
			cand = min(max(cur, c.Top), c.Bottom)
		} else {
			if c.Top > cur {
				continue
			}
			cand = max(min(cur, c.Bottom), c.Top)
		}
		if delta := math.Abs(cand - cur); delta < bestDelta {
			bestDelta, y, found = delta, cand, true
		}
	}
	if found {
		return y, true
	}

	return chooseTrackY(corridors, cur, end), true
}

// chooseTrackBetween picks a track y free in every column from minCol to
// maxCol, as close to startY as possible without overshooting endY.
func chooseTrackBetween(free [][]layout.Interval, startY, endY float64, minCol, maxCol int) (float64, bool) {
	if minCol < 0 || minCol >= len(free) || len(free[minCol]) == 0 {
		return (startY + endY) / 2, true
	}
	first := free[minCol]

	corridors := first
	for c := minCol + 1; c <= maxCol && c < len(free); c++ {
		corridors = layout.Intersect(corridors, free[c])
		if len(corridors) == 0 {
			break
		}
	}
	if len(corridors) == 0 {
		return chooseTrackY(first, startY, endY), true
	}

	down := endY >= startY
	if down {
		for _, c := range corridors {
			if c.Bottom < startY {
				continue
			}
			if c.Top > endY {
				break
			}
			return min(max(startY, c.Top), endY), false
		}
		for _, c := range corridors {
			if c.Bottom >= startY {
				return max(startY, c.Top), true
			}
		}
	} else {
		for i := len(corridors) - 1; i >= 0; i-- {
			c := corridors[i]
			if c.Top > startY {
				continue
			}
			if c.Bottom < endY {
				break
			}
			return max(min(startY, c.Bottom), endY), false
		}
		for i := len(corridors) - 1; i >= 0; i-- {
			if c := corridors[i]; c.Top <= startY {
				return min(startY, c.Bottom), true
			}
		}
	}

	return chooseTrackY(corridors, startY, endY), true
}

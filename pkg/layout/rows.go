package layout

// Point is a position on the canvas.
type Point struct {
	X, Y float64
}

// Segment is a horizontal underline drawn beneath a row.
type Segment struct {
	From, To Point
}

// RowLineY returns the baseline y of row within tile: just above the bottom
// of the row's text band.
func (l *Layout) RowLineY(tile Rect, row int) float64 {
	p := l.Params
	rowTop := tile.Top + p.TilePadding + p.HeaderHeight + float64(row)*p.RowHeight
	y := rowTop + p.RowHeight - 3
	return max(y, rowTop+2)
}

// RowAnchor returns the point on the tile border where an edge leaving row
// starts, on the left or right side.
func (l *Layout) RowAnchor(tile Rect, row int, left bool) Point {
	x := tile.Right
	if left {
		x = tile.Left
	}
	return Point{X: x, Y: l.RowLineY(tile, row)}
}

// RowUnderline returns the underline connecting a row's key or value column
// to the tile border its edge leaves from. ok is false when the tile is too
// small to draw one.
func (l *Layout) RowUnderline(tile Rect, row int, left bool) (seg Segment, ok bool) {
	inner := tile.Shrink(l.Params.TilePadding)
	if !inner.Positive() {
		return Segment{}, false
	}

	const (
		inset  = 4.0
		minLen = 6.0
	)
	y := l.RowLineY(tile, row)
	keyW := min(max(inner.Width()*0.42, 56), 120)
	divider := min(inner.Left+keyW, inner.Right)

	var start, end float64
	if left {
		start = tile.Left
		end = divider - inset
		if end < start+minLen {
			end = min(start+minLen, inner.Right)
		}
	} else {
		end = tile.Right
		start = divider + inset
		if start > end-minLen {
			start = max(end-minLen, inner.Left)
		}
	}

	if end-start <= 0.5 {
		return Segment{}, false
	}
	return Segment{From: Point{X: start, Y: y}, To: Point{X: end, Y: y}}, true
}

// KeyWidth returns the width of the key column inside a tile.
func (l *Layout) KeyWidth() float64 {
	inner := l.TileWidth - 2*l.Params.TilePadding
	return min(max(inner*0.42, 56), 120)
}

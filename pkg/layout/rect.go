package layout

// Rect is an axis-aligned tile rectangle in canvas units.
// The y axis grows downwards, so Top <= Bottom.
type Rect struct {
	Left, Right float64
	Top, Bottom float64
}

// RectFromSize builds a rectangle from its top-left corner and size.
func RectFromSize(x, y, w, h float64) Rect {
	return Rect{Left: x, Right: x + w, Top: y, Bottom: y + h}
}

// Width returns the horizontal span of the rectangle.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns the vertical span of the rectangle.
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// CenterX returns the horizontal center.
func (r Rect) CenterX() float64 { return (r.Left + r.Right) / 2 }

// CenterY returns the vertical center.
func (r Rect) CenterY() float64 { return (r.Top + r.Bottom) / 2 }

// Area returns Width * Height.
func (r Rect) Area() float64 { return r.Width() * r.Height() }

// Positive reports whether the rectangle has a non-empty interior.
func (r Rect) Positive() bool { return r.Right > r.Left && r.Bottom > r.Top }

// Shrink returns the rectangle inset by d on every side.
func (r Rect) Shrink(d float64) Rect {
	return Rect{Left: r.Left + d, Right: r.Right - d, Top: r.Top + d, Bottom: r.Bottom - d}
}

// Overlaps reports whether the interiors of r and o intersect.
func (r Rect) Overlaps(o Rect) bool {
	return r.Left < o.Right && o.Left < r.Right && r.Top < o.Bottom && o.Top < r.Bottom
}

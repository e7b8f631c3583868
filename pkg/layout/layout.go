// Package layout packs entity tiles into columns.
//
// [Compute] assigns every tile to a column of equal-width tiles using a
// masonry heuristic: tiles are visited in the given order and each one is
// appended to the currently shortest column. Visiting tiles in a good linear
// arrangement keeps neighbours close, which shortens the routed edges.
//
// Besides tile rectangles, a [Layout] records the free vertical intervals of
// every column. Edges crossing a column horizontally must stay inside them.
package layout

import (
	"math"

	errs "github.com/matzehuels/gutterview/pkg/errors"
	"github.com/matzehuels/gutterview/pkg/solver"
)

// Params holds the layout metrics. Zero fields take the defaults of
// [DefaultParams] in [Params.WithDefaults].
type Params struct {
	ColumnGap        float64 `json:"column_gap" toml:"column_gap" env:"COLUMN_GAP"`
	MinTileWidth     float64 `json:"min_tile_width" toml:"min_tile_width" env:"MIN_TILE_WIDTH"`
	DesiredTileWidth float64 `json:"desired_tile_width" toml:"desired_tile_width" env:"DESIRED_TILE_WIDTH"`
	MaxTileWidth     float64 `json:"max_tile_width" toml:"max_tile_width" env:"MAX_TILE_WIDTH"`
	SingleMinWidth   float64 `json:"single_min_width" toml:"single_min_width" env:"SINGLE_MIN_WIDTH"`
	SingleMaxWidth   float64 `json:"single_max_width" toml:"single_max_width" env:"SINGLE_MAX_WIDTH"`
	TilePadding      float64 `json:"tile_padding" toml:"tile_padding" env:"TILE_PADDING"`
	HeaderHeight     float64 `json:"header_height" toml:"header_height" env:"HEADER_HEIGHT"`
	RowHeight        float64 `json:"row_height" toml:"row_height" env:"ROW_HEIGHT"`
	RowGap           float64 `json:"row_gap" toml:"row_gap" env:"ROW_GAP"`
	Clearance        float64 `json:"clearance" toml:"clearance" env:"CLEARANCE"`
}

// DefaultParams returns the standard metrics.
func DefaultParams() Params {
	return Params{
		ColumnGap:        48,
		MinTileWidth:     160,
		DesiredTileWidth: 220,
		MaxTileWidth:     260,
		SingleMinWidth:   180,
		SingleMaxWidth:   520,
		TilePadding:      8,
		HeaderHeight:     22,
		RowHeight:        18,
		RowGap:           24,
		Clearance:        4,
	}
}

// WithDefaults returns p with every non-positive field replaced by its default.
func (p Params) WithDefaults() Params {
	d := DefaultParams()
	fill := func(v *float64, def float64) {
		if *v <= 0 {
			*v = def
		}
	}
	fill(&p.ColumnGap, d.ColumnGap)
	fill(&p.MinTileWidth, d.MinTileWidth)
	fill(&p.DesiredTileWidth, d.DesiredTileWidth)
	fill(&p.MaxTileWidth, d.MaxTileWidth)
	fill(&p.SingleMinWidth, d.SingleMinWidth)
	fill(&p.SingleMaxWidth, d.SingleMaxWidth)
	fill(&p.TilePadding, d.TilePadding)
	fill(&p.HeaderHeight, d.HeaderHeight)
	fill(&p.RowHeight, d.RowHeight)
	fill(&p.RowGap, d.RowGap)
	fill(&p.Clearance, d.Clearance)
	p.MaxTileWidth = max(p.MaxTileWidth, p.MinTileWidth)
	p.SingleMaxWidth = max(p.SingleMaxWidth, p.SingleMinWidth)
	return p
}

// OuterPad is the horizontal margin left and right of the columns.
func (p Params) OuterPad() float64 { return p.ColumnGap }

// TopPad is the vertical margin above the first row of tiles.
func (p Params) TopPad() float64 { return p.RowGap }

// BottomPad is the vertical margin below the tallest column.
func (p Params) BottomPad() float64 { return p.RowGap }

// TileHeight returns the height of a tile with the given number of rows.
// Tiles without rows are as tall as tiles with one.
func (p Params) TileHeight(rows int) float64 {
	return 2*p.TilePadding + p.HeaderHeight + p.RowHeight*float64(max(rows, 1))
}

// Layout is the result of [Compute].
type Layout struct {
	Tiles       []Rect       // Indexed by node
	Column      []int        // Column of each node
	ColumnNodes [][]int      // Nodes per column, top to bottom
	Free        [][]Interval // Free intervals per column, sorted top to bottom
	ColumnCount int
	TileWidth   float64
	Width       float64 // Canvas width
	Height      float64 // Canvas height
	Params      Params
}

// Compute places the tiles of order into columns.
//
// rows[i] is the row count of node i. width is the available canvas width;
// the column count is derived from it unless forcedColumns is positive.
func Compute(order, rows []int, width float64, forcedColumns int, p Params) (*Layout, error) {
	n := len(rows)
	if n == 0 {
		return nil, errs.Wrap(errs.ErrCodeInvalidGraph, solver.ErrNoNodes, "compute layout")
	}
	if err := solver.ValidateOrder(order, n); err != nil {
		return nil, err
	}
	p = p.WithDefaults()

	cols, tileW := columnGeometry(n, width, forcedColumns, p)
	gap, pad := p.ColumnGap, p.OuterPad()
	top := p.TopPad()

	l := &Layout{
		Tiles:       make([]Rect, n),
		Column:      make([]int, n),
		ColumnNodes: make([][]int, cols),
		ColumnCount: cols,
		TileWidth:   tileW,
		Params:      p,
	}

	bottoms := make([]float64, cols)
	for c := range bottoms {
		bottoms[c] = top
	}
	for _, node := range order {
		col := 0
		for c := 1; c < cols; c++ {
			if bottoms[c] < bottoms[col] {
				col = c
			}
		}
		x := pad + float64(col)*(tileW+gap)
		h := p.TileHeight(rows[node])
		l.Tiles[node] = RectFromSize(x, bottoms[col], tileW, h)
		l.Column[node] = col
		l.ColumnNodes[col] = append(l.ColumnNodes[col], node)
		bottoms[col] += h + p.RowGap
	}

	content := top
	for _, b := range bottoms {
		if b > top {
			b -= p.RowGap
		}
		content = max(content, b)
	}
	l.Height = max(content+p.BottomPad(), top+p.BottomPad())
	l.Width = 2*pad + tileW*float64(cols) + gap*float64(cols-1)
	l.Free = freeIntervals(l)

	return l, nil
}

// columnGeometry returns the column count and tile width for n tiles.
func columnGeometry(n int, width float64, forced int, p Params) (int, float64) {
	gap := p.ColumnGap
	usable := max(width-2*p.OuterPad(), p.MinTileWidth)

	cols := forced
	if forced <= 0 {
		cols = int(math.Floor((usable + gap) / (p.DesiredTileWidth + gap)))
	}
	cols = min(max(cols, 1), n)

	for {
		if cols == 1 {
			return 1, min(max(width, p.SingleMinWidth), p.SingleMaxWidth)
		}
		raw := (usable - gap*float64(cols-1)) / float64(cols)
		if raw >= p.MinTileWidth {
			return cols, min(raw, p.MaxTileWidth)
		}
		if forced > 0 {
			return cols, max(raw, 1)
		}
		cols--
	}
}

// freeIntervals computes, per column, the complement of its tiles expanded
// by the clearance within [0, Height].
func freeIntervals(l *Layout) [][]Interval {
	clearance := l.Params.Clearance
	free := make([][]Interval, l.ColumnCount)
	for c, nodes := range l.ColumnNodes {
		var ivs []Interval
		cursor := 0.0
		for _, node := range nodes {
			r := l.Tiles[node]
			top := max(r.Top-clearance, 0)
			if top > cursor {
				ivs = append(ivs, Interval{Top: cursor, Bottom: top})
			}
			cursor = max(r.Bottom+clearance, cursor)
		}
		if cursor < l.Height {
			ivs = append(ivs, Interval{Top: cursor, Bottom: l.Height})
		}
		if len(ivs) == 0 {
			ivs = append(ivs, Interval{Top: 0, Bottom: l.Height})
		}
		free[c] = ivs
	}
	return free
}

// NodeCount returns the number of tiles.
func (l *Layout) NodeCount() int { return len(l.Tiles) }

// ColumnLeft returns the x coordinate of the left edge of column c.
func (l *Layout) ColumnLeft(c int) float64 {
	return l.Params.OuterPad() + float64(c)*(l.TileWidth+l.Params.ColumnGap)
}

// TileArea returns the summed area of all tiles.
func (l *Layout) TileArea() float64 {
	total := 0.0
	for _, r := range l.Tiles {
		total += r.Area()
	}
	return total
}

// Validate checks that tiles sharing a column are at least the clearance
// apart and sit inside their column.
func (l *Layout) Validate() error {
	clearance := l.Params.Clearance
	for c, nodes := range l.ColumnNodes {
		left := l.ColumnLeft(c)
		for i, node := range nodes {
			r := l.Tiles[node]
			if math.Abs(r.Left-left) > 1e-6 || l.Column[node] != c {
				return errs.New(errs.ErrCodeInternal, "tile %d is not aligned with column %d", node, c)
			}
			for _, other := range nodes[i+1:] {
				o := l.Tiles[other]
				a := Rect{Left: r.Left, Right: r.Right, Top: r.Top - clearance, Bottom: r.Bottom + clearance}
				if a.Overlaps(o) {
					return errs.New(errs.ErrCodeInternal, "tiles %d and %d overlap in column %d", node, other, c)
				}
			}
		}
	}
	return nil
}

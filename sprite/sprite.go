/*
Package sprite implements OR-color sprite packing for the MSX2 VDP
(V9938, SCREEN 5).

In sprite mode 2 the hardware assigns each sprite a color per scanline
and, where sprites flagged for combination overlap, displays the
bitwise OR of their palette indices. A source image is split into
fixed-size cells and each cell is reproduced by a small stack of sprite
planes; a scanline needing more distinct colors than there are planes
is only displayable if the extra colors happen to equal the OR of
colors already on the line.

The packer finds a minimal plane assignment per cell, the validator
reports every scanline of an existing sheet that breaks the rule, and
the minimiser searches palette orderings for the cheapest overall
packing.
*/
package sprite

const (
	// DefaultCellWidth and DefaultCellHeight match the V9938 native
	// 16x16 sprite size.
	DefaultCellWidth  = 16
	DefaultCellHeight = 16

	// DefaultMaxPlanes is the number of sprites conventionally
	// stacked at one position for OR-color combination.
	DefaultMaxPlanes = 2

	// MaxColors is the number of palette entries in SCREEN 5.
	MaxColors = 16
)

// Config controls cell geometry and the hardware combination limit.
// The zero value selects the defaults.
type Config struct {
	CellWidth   int   // sprite width in pixels, a multiple of 8, at most 64
	CellHeight  int   // sprite height in pixels, at most 64
	MaxPlanes   int   // maximum overlapping planes per scanline
	Transparent uint8 // palette index treated as transparent
}

func (c Config) withDefaults() Config {
	if c.CellWidth == 0 {
		c.CellWidth = DefaultCellWidth
	}
	if c.CellHeight == 0 {
		c.CellHeight = DefaultCellHeight
	}
	if c.MaxPlanes == 0 {
		c.MaxPlanes = DefaultMaxPlanes
	}
	return c
}

// Plane is one hardware sprite covering one cell: a color and a pixel
// bitmask for every scanline. Bit CellWidth-1 of a mask is the
// leftmost pixel. A color byte of zero on a line means the plane is
// inactive there.
type Plane struct {
	Colors []uint8
	Masks  []uint64
}

// Cell holds the ordered planes reproducing one tile of the source
// image. Overlapping planes combine via bitwise OR of their color
// indices.
type Cell struct {
	Col, Row int // cell coordinates within the sheet
	X, Y     int // pixel coordinates of the top-left corner
	Planes   []Plane
}

// Combined reports whether plane p overlaps any earlier plane on the
// given scanline, which is where the hardware applies OR combination.
func (c *Cell) Combined(p, line int) bool {
	if p <= 0 {
		return false
	}
	var earlier uint64
	for q := 0; q < p; q++ {
		earlier |= c.Planes[q].Masks[line]
	}
	return c.Planes[p].Masks[line]&earlier != 0
}

// Result is the outcome of packing a whole sheet. Cells are in
// row-major order and include empty cells with no planes.
type Result struct {
	Config      Config
	Cols, Rows  int
	Cells       []Cell
	TotalPlanes int
}

// IndexAt reconstructs the palette index displayed at image
// coordinates (x, y) by OR-ing every plane covering that pixel.
func (r *Result) IndexAt(x, y int) uint8 {
	col, row := x/r.Config.CellWidth, y/r.Config.CellHeight
	c := &r.Cells[row*r.Cols+col]
	lx, ly := x-c.X, y-c.Y
	bit := uint64(1) << (r.Config.CellWidth - 1 - lx)

	var v uint8
	for i := range c.Planes {
		if c.Planes[i].Masks[ly]&bit != 0 {
			v |= c.Planes[i].Colors[ly]
		}
	}
	if v == 0 {
		return r.Config.Transparent
	}
	return v
}

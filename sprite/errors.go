package sprite

import (
	"errors"
	"fmt"
)

// ErrPaletteOverflow is returned when an image needs more than
// MaxColors palette entries.
var ErrPaletteOverflow = errors.New("sprite: palette has more than 16 colors")

// DimensionError reports an image whose size is not an exact multiple
// of the cell size.
type DimensionError struct {
	Width, Height         int
	CellWidth, CellHeight int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("sprite: image size %dx%d is not a multiple of sprite size %dx%d",
		e.Width, e.Height, e.CellWidth, e.CellHeight)
}

// InvalidIndexError reports a pixel value outside the palette,
// signalling a corrupt or mismatched image/palette pair.
type InvalidIndexError struct {
	X, Y    int
	Index   uint8
	Palette int
}

func (e *InvalidIndexError) Error() string {
	return fmt.Sprintf("sprite: pixel (%d,%d) has index %d outside palette of %d colors",
		e.X, e.Y, e.Index, e.Palette)
}

// UnpackableCellError reports a cell whose colors cannot be assigned
// to the available planes. Line is the offending scanline within the
// cell, or -1 when the conflict spans several scanlines.
type UnpackableCellError struct {
	Col, Row int
	Line     int
	Colors   []uint8
	Planes   int
}

func (e *UnpackableCellError) Error() string {
	if e.Line >= 0 {
		return fmt.Sprintf("sprite: cell (%d,%d) line %d: colors %v cannot be combined with %d planes",
			e.Col, e.Row, e.Line, e.Colors, e.Planes)
	}
	return fmt.Sprintf("sprite: cell (%d,%d): colors %v cannot be assigned to %d planes",
		e.Col, e.Row, e.Colors, e.Planes)
}

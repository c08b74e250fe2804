package sprite

import (
	"fmt"
	"image"
	"image/color"
)

// Sheet is an image sliced into sprite cells with the per-scanline
// color sets that drive the packer, the validator and the minimiser.
type Sheet struct {
	cfg        Config
	pal        color.Palette
	cols, rows int
	cells      []sheetCell
}

type sheetCell struct {
	col, row int
	pixels   []uint8   // cell pixels in row-major order
	lines    [][]uint8 // per scanline, distinct colors in left-to-right order
	empty    bool
}

// Cols returns the number of cell columns in the sheet.
func (s *Sheet) Cols() int { return s.cols }

// Rows returns the number of cell rows in the sheet.
func (s *Sheet) Rows() int { return s.rows }

// Config returns the configuration the sheet was extracted with, with
// defaults applied.
func (s *Sheet) Config() Config { return s.cfg }

// Palette returns the palette of the source image.
func (s *Sheet) Palette() color.Palette { return s.pal }

// Extract slices m into non-overlapping cells and records, for every
// scanline of every cell, the set of distinct non-transparent palette
// indices present. The image dimensions must be exact multiples of the
// cell size. Index zero and cfg.Transparent are both treated as
// background; the VDP displays neither.
func Extract(m *image.Paletted, cfg Config) (*Sheet, error) {
	cfg = cfg.withDefaults()
	if cfg.CellWidth%8 != 0 || cfg.CellWidth > 64 || cfg.CellWidth <= 0 ||
		cfg.CellHeight > 64 || cfg.CellHeight <= 0 {
		return nil, fmt.Errorf("sprite: unsupported cell size %dx%d", cfg.CellWidth, cfg.CellHeight)
	}
	if cfg.MaxPlanes < 1 || cfg.MaxPlanes > 8 {
		return nil, fmt.Errorf("sprite: unsupported plane limit %d", cfg.MaxPlanes)
	}
	if len(m.Palette) > MaxColors {
		return nil, ErrPaletteOverflow
	}

	b := m.Bounds()
	w, h := b.Dx(), b.Dy()
	if w%cfg.CellWidth != 0 || h%cfg.CellHeight != 0 {
		return nil, &DimensionError{w, h, cfg.CellWidth, cfg.CellHeight}
	}

	s := &Sheet{
		cfg:  cfg,
		pal:  m.Palette,
		cols: w / cfg.CellWidth,
		rows: h / cfg.CellHeight,
	}
	s.cells = make([]sheetCell, 0, s.cols*s.rows)

	for row := 0; row < s.rows; row++ {
		for col := 0; col < s.cols; col++ {
			c := sheetCell{
				col:    col,
				row:    row,
				pixels: make([]uint8, cfg.CellWidth*cfg.CellHeight),
				lines:  make([][]uint8, cfg.CellHeight),
				empty:  true,
			}
			for y := 0; y < cfg.CellHeight; y++ {
				var seen uint16
				for x := 0; x < cfg.CellWidth; x++ {
					px := b.Min.X + col*cfg.CellWidth + x
					py := b.Min.Y + row*cfg.CellHeight + y
					idx := m.ColorIndexAt(px, py)
					if int(idx) >= len(m.Palette) {
						return nil, &InvalidIndexError{px, py, idx, len(m.Palette)}
					}
					c.pixels[y*cfg.CellWidth+x] = idx
					if idx == 0 || idx == cfg.Transparent {
						continue
					}
					if seen&(1<<idx) == 0 {
						seen |= 1 << idx
						c.lines[y] = append(c.lines[y], idx)
						c.empty = false
					}
				}
			}
			s.cells = append(s.cells, c)
		}
	}

	return s, nil
}

func (s *Sheet) background(idx uint8) bool {
	return idx == 0 || idx == s.cfg.Transparent
}

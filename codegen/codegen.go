/*
Package codegen renders packed sprite data as C, assembly or MSX-BASIC
source, in the layout the VDP expects: per hardware sprite a block of
color bytes (one per scanline, with the OR-combination bit set where
the sprite overlaps an earlier plane) and a block of pattern bytes,
column-major by 8-pixel half.
*/
package codegen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pvmm/spritetools/sprite"
)

var errEmpty = errors.New("codegen: no sprites to emit")

// CC is the color byte flag telling the VDP to OR this sprite with the
// planes in front of it.
const CC = 0x40

// Component is one hardware sprite ready for code emission.
type Component struct {
	X, Y     int // screen position of the cell this sprite belongs to
	Colors   []byte
	Patterns []byte
}

// Components flattens a packing result into hardware sprite records,
// skipping empty cells.
func Components(res *sprite.Result) []Component {
	w, h := res.Config.CellWidth, res.Config.CellHeight
	halves := w / 8

	var out []Component
	for i := range res.Cells {
		c := &res.Cells[i]
		for p := range c.Planes {
			comp := Component{
				X:        c.X,
				Y:        c.Y,
				Colors:   make([]byte, h),
				Patterns: make([]byte, 0, h*halves),
			}
			for y := 0; y < h; y++ {
				comp.Colors[y] = c.Planes[p].Colors[y]
				if comp.Colors[y] != 0 && c.Combined(p, y) {
					comp.Colors[y] |= CC
				}
			}
			for half := 0; half < halves; half++ {
				shift := uint(w - 8*(half+1))
				for y := 0; y < h; y++ {
					comp.Patterns = append(comp.Patterns, byte(c.Planes[p].Masks[y]>>shift))
				}
			}
			out = append(out, comp)
		}
	}
	return out
}

// Size returns the number of bytes the sprite data occupies in VRAM.
func Size(res *sprite.Result) int {
	h := res.Config.CellHeight
	return res.TotalPlanes * (h + h*res.Config.CellWidth/8)
}

// hexRows formats bytes as 0x-prefixed values, eight per row.
func hexRows(src []byte) string {
	var b strings.Builder
	for i := 0; i < len(src); i += 8 {
		row := src[i:min(i+8, len(src))]
		for j, v := range row {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "0x%02x", v)
		}
		b.WriteString(",\n")
	}
	return b.String()
}

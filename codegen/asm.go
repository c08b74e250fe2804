package codegen

import (
	"fmt"
	"image/color"
	"io"
	"strings"

	"github.com/pvmm/spritetools/palette"
	"github.com/pvmm/spritetools/sprite"
)

// WriteAsm emits the sprite data as z80 assembler db blocks, one
// color and one pattern label per hardware sprite.
func WriteAsm(w io.Writer, id string, res *sprite.Result, pal color.Palette, withPalette bool) error {
	comps := Components(res)
	if len(comps) == 0 {
		return errEmpty
	}

	p := printer{w: w}
	p.printf("%s_TOTAL = %d\n\n", strings.ToUpper(id), Size(res))
	p.printf("%s:\n\n", id)

	for i, c := range comps {
		p.printf("%s_color%d:\n", id, i)
		p.printf("%s\n", asmRows(c.Colors))
		p.printf("%s_pattern%d:\n", id, i)
		p.printf("%s\n", asmRows(c.Patterns))
	}

	if withPalette {
		var regs []byte
		for _, c := range pal {
			v := palette.VDPBytes(c)
			regs = append(regs, v[0], v[1])
		}
		p.printf("%s_palette:\n", id)
		p.printf("%s\n", asmRows(regs))
	}

	return p.err
}

// asmRows formats bytes as tab-indented db directives, eight per row.
func asmRows(src []byte) string {
	var b strings.Builder
	for i := 0; i < len(src); i += 8 {
		b.WriteString("\tdb ")
		row := src[i:min(i+8, len(src))]
		for j, v := range row {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "#%02x", v)
		}
		b.WriteString("\n")
	}
	return b.String()
}

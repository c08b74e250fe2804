package codegen

import (
	"fmt"
	"image/color"
	"io"
	"strings"

	"github.com/pvmm/spritetools/palette"
	"github.com/pvmm/spritetools/sprite"
)

// WriteC emits the sprite data as a C header. The arrays are guarded
// behind a LOCAL define so the header can both declare and define
// them. With withPalette the VDP palette register bytes are included
// as well.
func WriteC(w io.Writer, id string, res *sprite.Result, pal color.Palette, withPalette bool) error {
	comps := Components(res)
	if len(comps) == 0 {
		return errEmpty
	}

	upper := strings.ToUpper(id)

	var colors, patterns strings.Builder
	for _, c := range comps {
		colors.WriteString("{\n" + hexRows(c.Colors) + "},\n")
		patterns.WriteString("{\n" + hexRows(c.Patterns) + "},\n")
	}

	p := printer{w: w}
	p.printf("#ifndef _%s_H\n", upper)
	p.printf("#define _%s_H\n\n", upper)
	p.printf("#define %s_TOTAL %d\n\n", upper, Size(res))
	p.printf("#ifdef LOCAL\n\n")
	p.printf("const unsigned char %s_colors[%d][%d] = {\n%s};\n\n",
		id, len(comps), len(comps[0].Colors), colors.String())
	p.printf("const unsigned char %s_patterns[%d][%d] = {\n%s};\n\n",
		id, len(comps), len(comps[0].Patterns), patterns.String())
	if withPalette {
		var regs []byte
		for _, c := range pal {
			v := palette.VDPBytes(c)
			regs = append(regs, v[0], v[1])
		}
		p.printf("const unsigned char %s_palette[%d][2] = {\n%s};\n\n",
			id, len(pal), hexRows(regs))
	}
	p.printf("#else\n\n")
	p.printf("extern const unsigned char %s_colors[%d][%d];\n",
		id, len(comps), len(comps[0].Colors))
	p.printf("extern const unsigned char %s_patterns[%d][%d];\n",
		id, len(comps), len(comps[0].Patterns))
	if withPalette {
		p.printf("extern const unsigned char %s_palette[%d][2];\n", id, len(pal))
	}
	p.printf("\n#endif // LOCAL\n")
	p.printf("#endif // _%s_H\n", upper)

	return p.err
}

// printer accumulates the first write error so emitters read as
// straight-line code.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

package codegen

import (
	"fmt"
	"image/color"
	"io"
	"strings"

	"github.com/pvmm/spritetools/palette"
	"github.com/pvmm/spritetools/sprite"
)

// WriteBasic emits a runnable MSX-BASIC program that sets up SCREEN 5,
// loads the palette and sprite data and puts every sprite on screen at
// its sheet position.
func WriteBasic(w io.Writer, id string, res *sprite.Result, pal color.Palette) error {
	comps := Components(res)
	if len(comps) == 0 {
		return errEmpty
	}

	upper := strings.ToUpper(id)
	b := basicWriter{printer: printer{w: w}, line: 100}

	b.printf("SCREEN 5,2")
	b.printf("VDP(9)=VDP(9) OR &H20: COLOR 15,0,0")
	b.printf("REM PALETTE")
	for i, c := range pal {
		r, g, bl := palette.MSX(c)
		cr, cg, cb, _ := c.RGBA()
		b.printf("COLOR=(%d, %d, %d, %d): REM RGB=(%d, %d, %d)", i, r, g, bl, cr>>8, cg>>8, cb>>8)
	}
	for i, c := range comps {
		b.printf("REM READ %s_COLORS(%d)", upper, i)
		b.printf("A$=\"\":FOR I = 1 TO %d:READ A%%:A$=A$+CHR$(A%%):NEXT:COLOR SPRITE$(%d)=A$", len(c.Colors), i)
		b.printf("REM READ %s_PATTERN(%d)", upper, i)
		b.printf("A$=\"\":FOR I = 1 TO %d:READ A%%:A$=A$+CHR$(A%%):NEXT:SPRITE$(%d)=A$", len(c.Patterns), i)
	}
	b.printf("REM PUT %s SPRITE ON SCREEN", upper)
	for i, c := range comps {
		b.printf("PUT SPRITE %d,(%d,%d),,%d", i, 100+c.X, 100+c.Y, i)
	}
	b.printf("IF INKEY$ = \"\" GOTO %d", b.line)
	b.printf("END")

	// Round the data section up to the next power of ten so it stands
	// apart from the program.
	next := 10
	for next <= b.line {
		next *= 10
	}
	b.line = next

	b.printf("REM %s_TOTAL = %d", upper, Size(res))
	for i, c := range comps {
		b.printf("REM %s_COLORS(%d)", upper, i)
		b.printf("%s", basicData(c.Colors))
		b.printf("REM %s_PATTERN(%d)", upper, i)
		b.printf("%s", basicData(c.Patterns))
	}

	return b.err
}

// basicWriter numbers emitted lines in steps of ten.
type basicWriter struct {
	printer
	line int
}

func (b *basicWriter) printf(format string, args ...interface{}) {
	b.printer.printf("%d ", b.line)
	b.printer.printf(format, args...)
	b.printer.printf("\n")
	b.line += 10
}

func basicData(src []byte) string {
	parts := make([]string, len(src))
	for i, v := range src {
		parts[i] = fmt.Sprintf("&H%02X", v)
	}
	return "DATA " + strings.Join(parts, ", ")
}

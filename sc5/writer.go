package sc5

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/ericpauley/go-quantize/quantize"
	"github.com/pvmm/spritetools/palette"
)

type encoder struct {
	w io.Writer
}

func (e *encoder) encode(m *image.Paletted) error {
	header := [headerSize]byte{
		magic,
		0x00, 0x00,
		byte((dumpSize - 1) & 0xff), byte((dumpSize - 1) >> 8),
		0x00, 0x00,
	}
	if _, err := e.w.Write(header[:]); err != nil {
		return err
	}

	data := make([]byte, dumpSize)
	b := m.Bounds()
	for y := 0; y < b.Dy() && y < maxLines; y++ {
		for x := 0; x < b.Dx() && x < screenWidth; x += 2 {
			var right byte
			if x+1 < b.Dx() {
				right = m.ColorIndexAt(x+1, y) & 0x0f
			}
			data[y*bytesPerLine+x>>1] = m.ColorIndexAt(x, y)&0x0f<<4 | right
		}
	}

	for i, c := range m.Palette {
		v := palette.VDPBytes(c)
		data[paletteOffset+i*2] = v[0]
		data[paletteOffset+i*2+1] = v[1]
	}

	_, err := e.w.Write(data)
	return err
}

// Encode writes m to w as a full-screen BSAVE SCREEN 5 dump, palette
// area included. Images smaller than 256x212 are placed at the top
// left corner; larger ones are an error.
func Encode(w io.Writer, m image.Image) error {
	b := m.Bounds()
	if b.Dx() > screenWidth || b.Dy() > maxLines {
		return errors.New("sc5: image does not fit a SCREEN 5 page")
	}

	pm, _ := m.(*image.Paletted)
	if pm == nil {
		if cp, ok := m.ColorModel().(color.Palette); ok && len(cp) <= palette.MaxColors {
			pm = image.NewPaletted(b, cp)
			draw.Draw(pm, b, m, b.Min, draw.Src)
		}
	}
	if pm == nil || len(pm.Palette) > palette.MaxColors {
		q := quantize.MedianCutQuantizer{}
		pm = image.NewPaletted(b, q.Quantize(make(color.Palette, 0, palette.MaxColors), m))
		draw.Draw(pm, b, m, b.Min, draw.Src)
	}

	// Adjust image so that the top-left corner is at (0, 0)
	if pm.Rect.Min != (image.Point{}) {
		dup := *pm
		dup.Rect = dup.Rect.Sub(dup.Rect.Min)
		pm = &dup
	}

	e := encoder{w: w}

	return e.encode(pm)
}

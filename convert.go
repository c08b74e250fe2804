package spritetools

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/ericpauley/go-quantize/quantize"

	"github.com/pvmm/spritetools/palette"
	"github.com/pvmm/spritetools/sprite"
)

// UnknownColorError reports an image color that is not part of the
// palette, when nearest mapping is disabled.
type UnknownColorError struct {
	X, Y  int
	Color color.RGBA
}

func (e *UnknownColorError) Error() string {
	return fmt.Sprintf("spritetools: color #%02x%02x%02x at (%d,%d) not in palette",
		e.Color.R, e.Color.G, e.Color.B, e.X, e.Y)
}

// Convert packs m into sprite planes. A nil pal derives the palette
// from the image: its own palette when it is already indexed,
// otherwise the distinct colors keyed on magenta transparency. The
// returned palette is the one the result's indices refer to, which
// differs from the input order when minimising.
func (c *Converter) Convert(ctx context.Context, m image.Image, pal color.Palette) (*sprite.Result, color.Palette, error) {
	pm, err := c.Indexed(m, pal)
	if err != nil {
		return nil, nil, err
	}

	sheet, err := sprite.Extract(pm, c.opts.Cell)
	if err != nil {
		return nil, nil, err
	}

	if c.opts.Minimise {
		min, err := sheet.Minimise(ctx, c.opts.Workers)
		if err != nil {
			return nil, nil, err
		}
		c.logger.Printf("minimised to %d planes, mapping %v\n", min.Result.TotalPlanes, min.Mapping)
		return min.Result, min.Palette, nil
	}

	res, err := sheet.Pack()
	if err != nil {
		return nil, nil, err
	}
	c.logger.Printf("packed into %d planes\n", res.TotalPlanes)
	return res, pm.Palette, nil
}

// Validate checks an existing sprite sheet against the OR-color rule,
// reporting every offending scanline.
func (c *Converter) Validate(m image.Image, pal color.Palette) (sprite.Report, error) {
	pm, err := c.Indexed(m, pal)
	if err != nil {
		return nil, err
	}
	return sprite.Validate(pm, c.opts.Cell)
}

// Indexed maps m onto pal, producing the indexed raster the packer and
// validator consume. Colors are matched exactly unless the nearest or
// quantize options are set; the magenta key color always maps to the
// transparent index.
func (c *Converter) Indexed(m image.Image, pal color.Palette) (*image.Paletted, error) {
	if pm, ok := m.(*image.Paletted); ok && pal == nil {
		if len(pm.Palette) > sprite.MaxColors {
			return nil, sprite.ErrPaletteOverflow
		}
		return pm, nil
	}

	nearest := c.opts.Nearest
	if pal == nil {
		var err error
		pal, err = palette.FromImage(m)
		if errors.Is(err, palette.ErrTooManyColors) && c.opts.Quantize {
			q := quantize.MedianCutQuantizer{}
			qp := q.Quantize(make(color.Palette, 0, sprite.MaxColors-1), m)
			pal = append(color.Palette{palette.Transparent}, qp...)
			nearest = true
			c.logger.Printf("quantized to %d colors\n", len(pal)-1)
		} else if err != nil {
			return nil, err
		}
	}
	if len(pal) > sprite.MaxColors {
		return nil, sprite.ErrPaletteOverflow
	}

	lookup := palette.Lookup(pal)
	key := palette.Transparent

	b := m.Bounds()
	pm := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), pal)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			rgba := color.RGBAModel.Convert(m.At(x, y)).(color.RGBA)
			rgba.A = 0xff
			if rgba == key {
				pm.SetColorIndex(x-b.Min.X, y-b.Min.Y, 0)
				continue
			}
			idx, ok := lookup[rgba]
			if !ok {
				if !nearest {
					return nil, &UnknownColorError{x, y, rgba}
				}
				idx = palette.Nearest(pal, rgba)
			}
			pm.SetColorIndex(x-b.Min.X, y-b.Min.Y, idx)
		}
	}
	return pm, nil
}

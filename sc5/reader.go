package sc5

import (
	"errors"
	"image"
	"image/color"
	"io"

	"github.com/pvmm/spritetools/palette"
)

var (
	errBadHeader  = errors.New("sc5: not a BSAVE SCREEN 5 dump")
	errBadAddress = errors.New("sc5: dump does not start at VRAM address zero")
	errNotEnough  = errors.New("sc5: not enough image data")
	errTooMuch    = errors.New("sc5: too much image data")
)

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

type decoder struct {
	r io.Reader

	lines   int
	data    []byte
	palette color.Palette

	image *image.Paletted
}

func (d *decoder) readHeader() error {
	var header [headerSize]byte
	if err := readFull(d.r, header[:]); err != nil {
		return err
	}
	if header[0] != magic {
		return errBadHeader
	}

	start := int(header[1]) | int(header[2])<<8
	end := int(header[3]) | int(header[4])<<8
	if start != 0 {
		return errBadAddress
	}

	d.data = make([]byte, end-start+1)
	if err := readFull(d.r, d.data); err != nil {
		return err
	}

	d.lines = len(d.data) / bytesPerLine
	if d.lines > maxLines {
		d.lines = maxLines
	}
	if d.lines == 0 {
		return errNotEnough
	}
	return nil
}

func (d *decoder) readPalette() {
	if len(d.data) < paletteOffset+paletteBytes {
		d.palette = DefaultPalette
		return
	}
	d.palette = make(color.Palette, palette.MaxColors)
	for i := range d.palette {
		d.palette[i] = palette.FromVDPBytes([2]byte{
			d.data[paletteOffset+i*2],
			d.data[paletteOffset+i*2+1],
		})
	}
}

func (d *decoder) decode(r io.Reader, configOnly bool) error {
	d.r = r

	if err := d.readHeader(); err != nil {
		if err == io.ErrUnexpectedEOF {
			return errNotEnough
		}
		return err
	}

	if n, err := r.Read(make([]byte, 1)); n != 0 || (err != io.EOF && err != io.ErrUnexpectedEOF) {
		if err != nil {
			return err
		}
		return errTooMuch
	}

	d.readPalette()

	if configOnly {
		return nil
	}

	d.image = image.NewPaletted(image.Rect(0, 0, screenWidth, d.lines), d.palette)
	for y := 0; y < d.lines; y++ {
		for x := 0; x < bytesPerLine; x++ {
			b := d.data[y*bytesPerLine+x]
			d.image.SetColorIndex(x<<1, y, upperNibble(b))
			d.image.SetColorIndex(x<<1+1, y, lowerNibble(b))
		}
	}
	return nil
}

// Decode reads a BSAVE SCREEN 5 dump from r and returns it as an
// image.Image. Partial bitmap dumps yield an image shorter than the
// full 212-line screen.
func Decode(r io.Reader) (image.Image, error) {
	var d decoder
	if err := d.decode(r, false); err != nil {
		return nil, err
	}
	return d.image, nil
}

// DecodeConfig returns the color model and dimensions of a dump
// without decoding the bitmap.
func DecodeConfig(r io.Reader) (image.Config, error) {
	var d decoder
	if err := d.decode(r, true); err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: d.palette,
		Width:      screenWidth,
		Height:     d.lines,
	}, nil
}

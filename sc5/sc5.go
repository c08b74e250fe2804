/*
Package sc5 implements a decoder and encoder for MSX BSAVE dumps of
SCREEN 5 video memory.

A dump starts with the 7-byte BSAVE header (magic 0xfe, little-endian
start, end and execution addresses) followed by the raw VRAM bytes. In
SCREEN 5 the bitmap starts at address zero with 128 bytes per 256
pixel line, one 4-bit palette index per pixel with the left pixel in
the high nibble. The palette registers live at 0x7680, two bytes per
color. Partial dumps covering only the top of the bitmap are common
and decode to a correspondingly shorter image with the default V9938
palette.
*/
package sc5

import (
	"image/color"

	"github.com/pvmm/spritetools/palette"
)

const (
	headerSize   = 7
	magic        = 0xfe
	screenWidth  = 256
	maxLines     = 212
	bytesPerLine = screenWidth >> 1

	paletteOffset = 0x7680
	paletteBytes  = palette.MaxColors * 2

	dumpSize = paletteOffset + paletteBytes
)

// DefaultPalette is the palette the V9938 resets to, color zero being
// transparent.
var DefaultPalette = color.Palette{
	color.RGBA{0x00, 0x00, 0x00, 0xff},
	color.RGBA{0x00, 0x00, 0x00, 0xff},
	color.RGBA{0x24, 0xda, 0x24, 0xff},
	color.RGBA{0x6d, 0xff, 0x6d, 0xff},
	color.RGBA{0x24, 0x24, 0xff, 0xff},
	color.RGBA{0x48, 0x6d, 0xff, 0xff},
	color.RGBA{0xb6, 0x24, 0x24, 0xff},
	color.RGBA{0x48, 0xda, 0xff, 0xff},
	color.RGBA{0xff, 0x24, 0x24, 0xff},
	color.RGBA{0xff, 0x6d, 0x6d, 0xff},
	color.RGBA{0xda, 0xda, 0x24, 0xff},
	color.RGBA{0xda, 0xda, 0x91, 0xff},
	color.RGBA{0x24, 0x91, 0x24, 0xff},
	color.RGBA{0xda, 0x48, 0xb6, 0xff},
	color.RGBA{0xb6, 0xb6, 0xb6, 0xff},
	color.RGBA{0xff, 0xff, 0xff, 0xff},
}

func upperNibble(b byte) byte {
	return b >> 4 & 0x0f
}

func lowerNibble(b byte) byte {
	return b & 0x0f
}

package sc5

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// latticePalette holds colors the VDP's 3-bit channels represent
// exactly, so encoding and decoding them is lossless.
var latticePalette = color.Palette{
	color.RGBA{0xff, 0x00, 0xff, 0xff},
	color.RGBA{0x00, 0x00, 0x00, 0xff},
	color.RGBA{0xff, 0xff, 0xff, 0xff},
	color.RGBA{0x24, 0x48, 0x6d, 0xff},
}

func TestRoundTrip(t *testing.T) {
	m := image.NewPaletted(image.Rect(0, 0, 16, 16), latticePalette)
	m.SetColorIndex(0, 0, 1)
	m.SetColorIndex(1, 0, 2)
	m.SetColorIndex(15, 15, 3)

	b := new(bytes.Buffer)
	require.NoError(t, Encode(b, m))
	assert.Equal(t, headerSize+dumpSize, b.Len())

	decoded, err := Decode(bytes.NewReader(b.Bytes()))
	require.NoError(t, err)

	pm, ok := decoded.(*image.Paletted)
	require.True(t, ok)
	assert.Equal(t, image.Rect(0, 0, screenWidth, maxLines), pm.Bounds())

	assert.Equal(t, uint8(1), pm.ColorIndexAt(0, 0))
	assert.Equal(t, uint8(2), pm.ColorIndexAt(1, 0))
	assert.Equal(t, uint8(3), pm.ColorIndexAt(15, 15))
	assert.Equal(t, uint8(0), pm.ColorIndexAt(100, 100))

	for i, c := range latticePalette {
		assert.Equal(t, c, pm.Palette[i], "palette entry %d", i)
	}
}

func TestDecodeConfig(t *testing.T) {
	m := image.NewPaletted(image.Rect(0, 0, 8, 8), latticePalette)
	b := new(bytes.Buffer)
	require.NoError(t, Encode(b, m))

	cfg, err := DecodeConfig(b)
	require.NoError(t, err)
	assert.Equal(t, screenWidth, cfg.Width)
	assert.Equal(t, maxLines, cfg.Height)

	p, ok := cfg.ColorModel.(color.Palette)
	require.True(t, ok)
	assert.Equal(t, latticePalette[2], p[2])
}

func TestDecodePartialDump(t *testing.T) {
	// A dump covering only the first 16 lines of the bitmap carries
	// no palette area; the default palette applies.
	data := make([]byte, 16*bytesPerLine)
	data[0] = 0x12
	dump := append(bsaveHeader(len(data)), data...)

	m, err := Decode(bytes.NewReader(dump))
	require.NoError(t, err)

	pm := m.(*image.Paletted)
	assert.Equal(t, image.Rect(0, 0, screenWidth, 16), pm.Bounds())
	assert.Equal(t, uint8(1), pm.ColorIndexAt(0, 0))
	assert.Equal(t, uint8(2), pm.ColorIndexAt(1, 0))
	assert.Equal(t, DefaultPalette, color.Palette(pm.Palette))
}

func TestDecodeErrors(t *testing.T) {
	tables := []struct {
		name string
		dump []byte
		want error
	}{
		{
			name: "bad magic",
			dump: []byte{0xff, 0x00, 0x00, 0x7f, 0x00, 0x00, 0x00},
			want: errBadHeader,
		},
		{
			name: "nonzero start",
			dump: []byte{magic, 0x00, 0x40, 0xff, 0x7f, 0x00, 0x00},
			want: errBadAddress,
		},
		{
			name: "truncated",
			dump: append(bsaveHeader(bytesPerLine), make([]byte, 16)...),
			want: errNotEnough,
		},
		{
			name: "short of a line",
			dump: append(bsaveHeader(100), make([]byte, 100)...),
			want: errNotEnough,
		},
		{
			name: "trailing garbage",
			dump: append(append(bsaveHeader(bytesPerLine), make([]byte, bytesPerLine)...), 0x00),
			want: errTooMuch,
		},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			_, err := Decode(bytes.NewReader(table.dump))
			assert.ErrorIs(t, err, table.want)
		})
	}
}

func TestEncodeTooLarge(t *testing.T) {
	m := image.NewPaletted(image.Rect(0, 0, screenWidth, maxLines+1), latticePalette)
	assert.Error(t, Encode(new(bytes.Buffer), m))
}

func TestEncodeOffsetImage(t *testing.T) {
	m := image.NewPaletted(image.Rect(32, 32, 48, 48), latticePalette)
	m.SetColorIndex(32, 32, 3)

	b := new(bytes.Buffer)
	require.NoError(t, Encode(b, m))

	decoded, err := Decode(b)
	require.NoError(t, err)
	assert.Equal(t, uint8(3), decoded.(*image.Paletted).ColorIndexAt(0, 0))
}

func bsaveHeader(size int) []byte {
	end := size - 1
	return []byte{magic, 0x00, 0x00, byte(end), byte(end >> 8), 0x00, 0x00}
}

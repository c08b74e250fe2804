package sprite

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPalette(n int) color.Palette {
	p := make(color.Palette, n)
	p[0] = color.RGBA{0xff, 0x00, 0xff, 0xff}
	for i := 1; i < n; i++ {
		p[i] = color.RGBA{uint8(i * 16), uint8(i * 8), uint8(i * 4), 0xff}
	}
	return p
}

func testImage(w, h, colors int) *image.Paletted {
	return image.NewPaletted(image.Rect(0, 0, w, h), testPalette(colors))
}

func mustPack(t *testing.T, m *image.Paletted, cfg Config) *Result {
	t.Helper()
	s, err := Extract(m, cfg)
	require.NoError(t, err)
	res, err := s.Pack()
	require.NoError(t, err)
	return res
}

func TestPackTwoColorLines(t *testing.T) {
	m := testImage(16, 16, 4)
	for y := 0; y < 8; y++ {
		for x := 0; x < 4; x++ {
			m.SetColorIndex(x, y, 1)
			m.SetColorIndex(x+4, y, 2)
		}
	}
	for y := 8; y < 16; y++ {
		for x := 0; x < 8; x++ {
			m.SetColorIndex(x, y, 3)
		}
	}

	res := mustPack(t, m, Config{})
	require.Len(t, res.Cells, 1)
	require.Len(t, res.Cells[0].Planes, 2)
	assert.Equal(t, 2, res.TotalPlanes)

	p0, p1 := res.Cells[0].Planes[0], res.Cells[0].Planes[1]
	assert.Equal(t, uint8(1), p0.Colors[0])
	assert.Equal(t, uint64(0xf000), p0.Masks[0])
	assert.Equal(t, uint8(3), p0.Colors[8])
	assert.Equal(t, uint64(0xff00), p0.Masks[8])
	assert.Equal(t, uint8(2), p1.Colors[0])
	assert.Equal(t, uint64(0x0f00), p1.Masks[0])
	assert.Equal(t, uint8(0), p1.Colors[8])
}

func TestPackORCombination(t *testing.T) {
	// Color 3 is the OR of colors 1 and 2, so a scanline showing all
	// three fits in two planes overlapping where color 3 appears.
	m := testImage(16, 16, 4)
	m.SetColorIndex(0, 0, 1)
	m.SetColorIndex(1, 0, 2)
	m.SetColorIndex(2, 0, 3)

	res := mustPack(t, m, Config{})
	c := res.Cells[0]
	require.Len(t, c.Planes, 2)

	assert.Equal(t, uint8(1), c.Planes[0].Colors[0])
	assert.Equal(t, uint64(0xa000), c.Planes[0].Masks[0])
	assert.Equal(t, uint8(2), c.Planes[1].Colors[0])
	assert.Equal(t, uint64(0x6000), c.Planes[1].Masks[0])

	assert.False(t, c.Combined(0, 0))
	assert.True(t, c.Combined(1, 0))

	assert.Equal(t, uint8(3), res.IndexAt(2, 0))
}

func TestPackRoundTrip(t *testing.T) {
	m := testImage(32, 16, 8)
	fill := []struct{ x, y int; idx uint8 }{
		{0, 0, 1}, {1, 0, 2}, {2, 0, 3}, {15, 0, 1},
		{0, 5, 5}, {7, 5, 4}, {8, 5, 1},
		{3, 15, 7}, {4, 15, 6},
		{16, 0, 2}, {31, 15, 5},
	}
	for _, f := range fill {
		m.SetColorIndex(f.x, f.y, f.idx)
	}

	res := mustPack(t, m, Config{MaxPlanes: 3})
	for y := 0; y < 16; y++ {
		for x := 0; x < 32; x++ {
			assert.Equal(t, m.ColorIndexAt(x, y), res.IndexAt(x, y), "pixel (%d,%d)", x, y)
		}
	}
}

func TestPackScanlineWithinLimit(t *testing.T) {
	// k distinct colors with k <= MaxPlanes always pack as one plane
	// per color.
	m := testImage(16, 16, 6)
	m.SetColorIndex(0, 0, 5)
	res := mustPack(t, m, Config{})
	require.Len(t, res.Cells[0].Planes, 1)
	assert.Equal(t, uint8(5), res.Cells[0].Planes[0].Colors[0])

	m.SetColorIndex(1, 0, 4)
	res = mustPack(t, m, Config{})
	assert.Len(t, res.Cells[0].Planes, 2)
}

func TestPackUnpackableScanline(t *testing.T) {
	m := testImage(16, 16, 9)
	for i, idx := range []uint8{1, 2, 4, 8} {
		m.SetColorIndex(i, 0, idx)
	}

	s, err := Extract(m, Config{})
	require.NoError(t, err)
	_, err = s.Pack()

	var uc *UnpackableCellError
	require.ErrorAs(t, err, &uc)
	assert.Equal(t, 0, uc.Col)
	assert.Equal(t, 0, uc.Row)
	assert.Equal(t, 0, uc.Line)
	assert.Equal(t, []uint8{1, 2, 4, 8}, uc.Colors)
}

func TestPackUnpackableConflictGraph(t *testing.T) {
	// Pairs (1,2), (2,4) and (1,4) on separate scanlines form an odd
	// cycle: no scanline exceeds two colors but no consistent
	// two-plane assignment exists.
	m := testImage(16, 16, 5)
	m.SetColorIndex(0, 0, 1)
	m.SetColorIndex(1, 0, 2)
	m.SetColorIndex(0, 1, 2)
	m.SetColorIndex(1, 1, 4)
	m.SetColorIndex(0, 2, 1)
	m.SetColorIndex(1, 2, 4)

	s, err := Extract(m, Config{})
	require.NoError(t, err)
	_, err = s.Pack()

	var uc *UnpackableCellError
	require.ErrorAs(t, err, &uc)
	assert.Equal(t, -1, uc.Line)
	assert.Equal(t, []uint8{1, 2, 4}, uc.Colors)
}

func TestPackEmptyImage(t *testing.T) {
	res := mustPack(t, testImage(32, 32, 4), Config{})
	assert.Equal(t, 0, res.TotalPlanes)
	assert.Len(t, res.Cells, 4)
	for _, c := range res.Cells {
		assert.Empty(t, c.Planes)
	}
}

func TestPackDeterministic(t *testing.T) {
	m := testImage(16, 16, 8)
	for i, idx := range []uint8{1, 2, 3, 5, 1, 7} {
		m.SetColorIndex(i, i, idx)
		m.SetColorIndex(15-i, i, idx)
	}
	a := mustPack(t, m, Config{MaxPlanes: 3})
	b := mustPack(t, m, Config{MaxPlanes: 3})
	assert.Equal(t, a, b)
}

func TestExtractDimensionMismatch(t *testing.T) {
	m := image.NewPaletted(image.Rect(0, 0, 20, 16), testPalette(4))
	_, err := Extract(m, Config{})

	var de *DimensionError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 20, de.Width)
	assert.Equal(t, 16, de.CellWidth)
}

func TestExtractInvalidIndex(t *testing.T) {
	m := testImage(16, 16, 2)
	m.SetColorIndex(3, 2, 5)
	_, err := Extract(m, Config{})

	var ie *InvalidIndexError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, 3, ie.X)
	assert.Equal(t, 2, ie.Y)
	assert.Equal(t, uint8(5), ie.Index)
}

func TestExtractPaletteOverflow(t *testing.T) {
	m := image.NewPaletted(image.Rect(0, 0, 16, 16), testPalette(17))
	_, err := Extract(m, Config{})
	assert.ErrorIs(t, err, ErrPaletteOverflow)
}

func TestExtractScanlineOrder(t *testing.T) {
	m := testImage(16, 16, 5)
	for i, idx := range []uint8{2, 1, 2, 3} {
		m.SetColorIndex(i, 4, idx)
	}
	s, err := Extract(m, Config{})
	require.NoError(t, err)
	assert.Equal(t, []uint8{2, 1, 3}, s.cells[0].lines[4])
}

func TestExtractCustomTransparent(t *testing.T) {
	m := testImage(16, 16, 4)
	m.SetColorIndex(0, 0, 1)
	m.SetColorIndex(1, 0, 2)

	s, err := Extract(m, Config{Transparent: 1})
	require.NoError(t, err)
	assert.Equal(t, []uint8{2}, s.cells[0].lines[0])
}

package sprite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCleanSheet(t *testing.T) {
	// Three colors on one scanline, the third being the OR of the
	// other two: displayable with two overlapping sprites.
	m := testImage(16, 16, 4)
	m.SetColorIndex(0, 0, 1)
	m.SetColorIndex(1, 0, 2)
	m.SetColorIndex(2, 0, 3)

	report, err := Validate(m, Config{})
	require.NoError(t, err)
	assert.Empty(t, report)
}

func TestValidateNoDecomposition(t *testing.T) {
	// No pair of {1, 2, 4} ORs to the third.
	m := testImage(16, 16, 5)
	m.SetColorIndex(0, 3, 4)
	m.SetColorIndex(1, 3, 1)
	m.SetColorIndex(2, 3, 2)

	report, err := Validate(m, Config{})
	require.NoError(t, err)
	require.Len(t, report, 1)

	v := report[0]
	assert.Equal(t, 0, v.Col)
	assert.Equal(t, 0, v.Row)
	assert.Equal(t, 3, v.Line)
	assert.Equal(t, []uint8{4, 1, 2}, v.Colors)
	assert.Contains(t, v.Reason, "no OR decomposition")
}

func TestValidateCapacityExceeded(t *testing.T) {
	m := testImage(16, 16, 9)
	for i, idx := range []uint8{1, 2, 4, 8} {
		m.SetColorIndex(i, 0, idx)
	}

	report, err := Validate(m, Config{})
	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.Contains(t, report[0].Reason, "exceed")
}

func TestValidateReportsEveryViolation(t *testing.T) {
	m := testImage(32, 16, 9)
	// cell 0, line 0: fine (3 = 1 | 2)
	m.SetColorIndex(0, 0, 1)
	m.SetColorIndex(1, 0, 2)
	m.SetColorIndex(2, 0, 3)
	// cell 0, line 2: no decomposition
	m.SetColorIndex(0, 2, 1)
	m.SetColorIndex(1, 2, 2)
	m.SetColorIndex(2, 2, 4)
	// cell 1, line 5: too many colors
	for i, idx := range []uint8{1, 2, 4, 8} {
		m.SetColorIndex(16+i, 5, idx)
	}

	report, err := Validate(m, Config{})
	require.NoError(t, err)
	require.Len(t, report, 2)

	assert.Equal(t, 0, report[0].Col)
	assert.Equal(t, 2, report[0].Line)
	assert.Equal(t, 1, report[1].Col)
	assert.Equal(t, 5, report[1].Line)
}

func TestValidateWithinLimitAlwaysValid(t *testing.T) {
	m := testImage(16, 16, 9)
	m.SetColorIndex(0, 0, 4)
	m.SetColorIndex(1, 0, 8)

	report, err := Validate(m, Config{})
	require.NoError(t, err)
	assert.Empty(t, report)
}

func TestValidateIdempotent(t *testing.T) {
	m := testImage(32, 16, 9)
	for i, idx := range []uint8{1, 2, 4, 8} {
		m.SetColorIndex(i, 0, idx)
		m.SetColorIndex(16+i, 9, idx)
	}

	first, err := Validate(m, Config{})
	require.NoError(t, err)
	second, err := Validate(m, Config{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, first, 2)
}

func TestValidateDimensionMismatch(t *testing.T) {
	m := testImage(24, 16, 4)
	_, err := Validate(m, Config{})
	var de *DimensionError
	require.ErrorAs(t, err, &de)
}

func TestValidateThreePlanes(t *testing.T) {
	// With three planes a scanline may hold up to seven colors as
	// long as the extras decompose, e.g. 7 = 1 | 2 | 4.
	m := testImage(16, 16, 8)
	for i, idx := range []uint8{1, 2, 4, 7} {
		m.SetColorIndex(i, 0, idx)
	}

	report, err := Validate(m, Config{MaxPlanes: 3})
	require.NoError(t, err)
	assert.Empty(t, report)

	report, err = Validate(m, Config{MaxPlanes: 2})
	require.NoError(t, err)
	assert.Len(t, report, 1)
}

func TestExtractDimensions(t *testing.T) {
	m := testImage(64, 32, 4)
	s, err := Extract(m, Config{})
	require.NoError(t, err)
	assert.Equal(t, 4, s.Cols())
	assert.Equal(t, 2, s.Rows())
	assert.Equal(t, DefaultCellWidth, s.Config().CellWidth)
	assert.Equal(t, DefaultMaxPlanes, s.Config().MaxPlanes)
}

package sprite

import (
	"fmt"
	"image"
)

// Violation pinpoints one scanline whose colors the hardware cannot
// display with the configured number of overlapping planes.
type Violation struct {
	Col, Row int
	Line     int
	Colors   []uint8 // distinct colors in left-to-right order
	Reason   string
}

func (v Violation) String() string {
	return fmt.Sprintf("sprite (%d,%d) line %d: colors %v: %s",
		v.Col, v.Row, v.Line, v.Colors, v.Reason)
}

// Report collects every scanline violation found in a sheet, in cell
// then scanline order. An empty report means the sheet honors the
// OR-color rule.
type Report []Violation

// Validate checks that every scanline of every cell of m can be
// displayed with at most cfg.MaxPlanes overlapping sprites. Unlike
// packing, validation never stops at the first offending scanline; the
// report enumerates them all.
func Validate(m *image.Paletted, cfg Config) (Report, error) {
	s, err := Extract(m, cfg)
	if err != nil {
		return nil, err
	}
	return s.Validate(), nil
}

// Validate re-checks the extracted scanline color sets against the
// OR-combination rule. The sheet is not modified; running it twice
// yields identical reports.
func (s *Sheet) Validate() Report {
	var report Report
	capacity := 1<<s.cfg.MaxPlanes - 1
	for i := range s.cells {
		c := &s.cells[i]
		for y, line := range c.lines {
			if len(line) <= s.cfg.MaxPlanes {
				continue
			}

			colors := make([]uint8, len(line))
			copy(colors, line)

			if len(line) > capacity {
				report = append(report, Violation{
					Col: c.col, Row: c.row, Line: y, Colors: colors,
					Reason: fmt.Sprintf("%d distinct colors exceed the %d color capacity of %d planes",
						len(line), capacity, s.cfg.MaxPlanes),
				})
				continue
			}

			if _, _, ok := decombine(mapSet(line, identityMapping()), s.cfg.MaxPlanes); !ok {
				report = append(report, Violation{
					Col: c.col, Row: c.row, Line: y, Colors: colors,
					Reason: fmt.Sprintf("no OR decomposition found with %d planes", s.cfg.MaxPlanes),
				})
			}
		}
	}
	return report
}

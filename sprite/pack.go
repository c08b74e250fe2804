package sprite

import (
	"errors"
	"math/bits"
)

// errBound signals that a packing attempt exceeded the minimiser's
// running bound and was abandoned.
var errBound = errors.New("sprite: plane bound exceeded")

// Pack allocates sprite planes for every cell using the palette order
// as-is. It fails with an UnpackableCellError as soon as one cell
// needs more than Config.MaxPlanes overlapping planes.
func (s *Sheet) Pack() (*Result, error) {
	return s.pack(identityMapping(), 0)
}

// pack packs the whole sheet with every pixel index remapped through
// m. A bound greater than zero abandons the attempt with errBound once
// the running plane count reaches it.
func (s *Sheet) pack(m [MaxColors]uint8, bound int) (*Result, error) {
	res := &Result{
		Config: s.cfg,
		Cols:   s.cols,
		Rows:   s.rows,
		Cells:  make([]Cell, 0, len(s.cells)),
	}
	for i := range s.cells {
		cell, err := s.packCell(&s.cells[i], m)
		if err != nil {
			return nil, err
		}
		res.Cells = append(res.Cells, cell)
		res.TotalPlanes += len(cell.Planes)
		if bound > 0 && res.TotalPlanes >= bound {
			return nil, errBound
		}
	}
	return res, nil
}

// packCell decombines each scanline into base colors, assigns base
// colors to planes via the cell's conflict graph and fills in the
// per-plane color bytes and pixel bitmasks.
func (s *Sheet) packCell(c *sheetCell, m [MaxColors]uint8) (Cell, error) {
	out := Cell{
		Col: c.col, Row: c.row,
		X: c.col * s.cfg.CellWidth, Y: c.row * s.cfg.CellHeight,
	}
	if c.empty {
		return out, nil
	}

	base := make([]uint16, s.cfg.CellHeight)
	factors := make([]map[uint8]uint16, s.cfg.CellHeight)
	var used uint16
	for y, line := range c.lines {
		if len(line) == 0 {
			continue
		}
		set := mapSet(line, m)
		b, f, ok := decombine(set, s.cfg.MaxPlanes)
		if !ok {
			return Cell{}, &UnpackableCellError{
				Col: c.col, Row: c.row, Line: y,
				Colors: setColors(set), Planes: s.cfg.MaxPlanes,
			}
		}
		base[y] = b
		factors[y] = f
		used |= b
	}

	assign, planes, ok := colorPlanes(base, used, s.cfg.MaxPlanes)
	if !ok {
		return Cell{}, &UnpackableCellError{
			Col: c.col, Row: c.row, Line: -1,
			Colors: setColors(used), Planes: s.cfg.MaxPlanes,
		}
	}

	out.Planes = make([]Plane, planes)
	for p := range out.Planes {
		out.Planes[p] = Plane{
			Colors: make([]uint8, s.cfg.CellHeight),
			Masks:  make([]uint64, s.cfg.CellHeight),
		}
	}

	w := s.cfg.CellWidth
	for y := 0; y < s.cfg.CellHeight; y++ {
		if base[y] == 0 {
			continue
		}
		for x := 0; x < w; x++ {
			idx := c.pixels[y*w+x]
			if s.background(idx) {
				continue
			}
			v := m[idx]
			members := uint16(1) << v
			if base[y]&members == 0 {
				members = factors[y][v]
			}
			for set := members; set != 0; set &= set - 1 {
				b := uint8(bits.TrailingZeros16(set))
				p := assign[b]
				out.Planes[p].Colors[y] = b
				out.Planes[p].Masks[y] |= 1 << (w - 1 - x)
			}
		}
	}

	return out, nil
}

// decombine splits a scanline's color set into base colors and derived
// colors realizable as the bitwise OR of overlapping base planes. The
// returned map gives, for every derived color value, the base subset
// whose values OR to it. The smallest workable base set wins, ties
// broken by ascending color index.
func decombine(set uint16, maxPlanes int) (uint16, map[uint8]uint16, bool) {
	colors := setColors(set)
	switch {
	case len(colors) == 0:
		return 0, nil, true
	case len(colors) == 1:
		return set, nil, true
	}

	limit := maxPlanes
	if len(colors) < limit {
		limit = len(colors)
	}
	for size := 1; size <= limit; size++ {
		var (
			foundBase    uint16
			foundFactors map[uint8]uint16
		)
		ok := combine(colors, size, 0, 0, func(base uint16) bool {
			f, ok := coverDerived(set, base, maxPlanes)
			if ok {
				foundBase, foundFactors = base, f
			}
			return ok
		})
		if ok {
			return foundBase, foundFactors, true
		}
	}
	return 0, nil, false
}

// combine visits every size-element subset of colors in ascending
// lexicographic order until fn returns true.
func combine(colors []uint8, size, start int, mask uint16, fn func(uint16) bool) bool {
	if size == 0 {
		return fn(mask)
	}
	for i := start; i <= len(colors)-size; i++ {
		if combine(colors, size-1, i+1, mask|1<<colors[i], fn) {
			return true
		}
	}
	return false
}

// coverDerived maps every non-base color of set to the smallest base
// subset whose values OR to it exactly.
func coverDerived(set, base uint16, maxPlanes int) (map[uint8]uint16, bool) {
	derived := set &^ base
	if derived == 0 {
		return nil, true
	}
	baseColors := setColors(base)
	factors := make(map[uint8]uint16, bits.OnesCount16(derived))
	for d := derived; d != 0; d &= d - 1 {
		v := uint8(bits.TrailingZeros16(d))
		sub, ok := orSubset(baseColors, v, maxPlanes)
		if !ok {
			return nil, false
		}
		factors[v] = sub
	}
	return factors, true
}

// orSubset finds the smallest subset of at least two base colors, no
// larger than the plane limit, whose values OR to v.
func orSubset(base []uint8, v uint8, maxPlanes int) (uint16, bool) {
	limit := maxPlanes
	if len(base) < limit {
		limit = len(base)
	}
	for size := 2; size <= limit; size++ {
		var found uint16
		ok := combine(base, size, 0, 0, func(mask uint16) bool {
			if orValue(mask) == v {
				found = mask
				return true
			}
			return false
		})
		if ok {
			return found, true
		}
	}
	return 0, false
}

// colorPlanes assigns every base color used in the cell to a plane
// such that colors sharing a scanline land on distinct planes, using
// as few planes as possible. Colors are considered in ascending index
// order and take the lowest available plane, which keeps the output
// deterministic.
func colorPlanes(lines []uint16, used uint16, maxPlanes int) (map[uint8]int, int, bool) {
	colors := setColors(used)
	if len(colors) == 0 {
		return nil, 0, true
	}

	adj := make(map[uint8]uint16, len(colors))
	min := 1
	for _, b := range lines {
		if n := bits.OnesCount16(b); n > min {
			min = n
		}
		for m := b; m != 0; m &= m - 1 {
			v := uint8(bits.TrailingZeros16(m))
			adj[v] |= b &^ (1 << v)
		}
	}

	for k := min; k <= maxPlanes; k++ {
		assign := make(map[uint8]int, len(colors))
		if assignPlanes(colors, adj, assign, k, 0) {
			return assign, k, true
		}
	}
	return nil, 0, false
}

func assignPlanes(colors []uint8, adj map[uint8]uint16, assign map[uint8]int, k, i int) bool {
	if i == len(colors) {
		return true
	}
	c := colors[i]
	for p := 0; p < k; p++ {
		if planeTaken(adj[c], assign, p) {
			continue
		}
		assign[c] = p
		if assignPlanes(colors, adj, assign, k, i+1) {
			return true
		}
		delete(assign, c)
	}
	return false
}

func planeTaken(neighbors uint16, assign map[uint8]int, p int) bool {
	for m := neighbors; m != 0; m &= m - 1 {
		if q, ok := assign[uint8(bits.TrailingZeros16(m))]; ok && q == p {
			return true
		}
	}
	return false
}

func identityMapping() [MaxColors]uint8 {
	var m [MaxColors]uint8
	for i := range m {
		m[i] = uint8(i)
	}
	return m
}

func mapSet(line []uint8, m [MaxColors]uint8) uint16 {
	var set uint16
	for _, idx := range line {
		set |= 1 << m[idx]
	}
	return set
}

// setColors expands a color bitmask into an ascending slice of color
// values.
func setColors(set uint16) []uint8 {
	colors := make([]uint8, 0, bits.OnesCount16(set))
	for m := set; m != 0; m &= m - 1 {
		colors = append(colors, uint8(bits.TrailingZeros16(m)))
	}
	return colors
}

// orValue ORs together the color values selected by mask; a set bit's
// position is the palette index it stands for.
func orValue(mask uint16) uint8 {
	var v uint8
	for m := mask; m != 0; m &= m - 1 {
		v |= uint8(bits.TrailingZeros16(m))
	}
	return v
}

package sprite

import (
	"context"
	"errors"
	"image/color"
	"math/bits"
	"runtime"
	"sync"
)

// Minimised is the outcome of a palette permutation search.
type Minimised struct {
	// Result is the cheapest packing found. Its plane colors are
	// expressed in the permuted palette.
	Result *Result

	// Mapping takes an index of the original palette to its index in
	// the permuted palette. Unused and transparent entries map to
	// themselves.
	Mapping [MaxColors]uint8

	// Palette is the permuted palette.
	Palette color.Palette
}

// Minimise searches permutations of the palette indices, keeping index
// zero and the transparent index fixed, for the ordering that packs
// the sheet into the fewest planes. A permutation changes which colors
// OR together cheaply, so a good ordering can save planes at no pixel
// cost.
//
// The search is exhaustive and can take a long time for large
// palettes; candidates are abandoned as soon as their running plane
// count exceeds the best found, and the whole search stops early once
// the information-theoretic lower bound is reached. Cancelling ctx
// stops the search and returns the best ordering found so far. The
// identity ordering is always evaluated, so the result is never worse
// than Pack. workers limits the goroutines sharded over the
// permutation space; zero or less means one per CPU.
func (s *Sheet) Minimise(ctx context.Context, workers int) (*Minimised, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	st := &searchState{bound: s.lowerBound()}

	// The unpermuted palette is the baseline every candidate has to
	// beat.
	identity := identityMapping()
	s.try(st, identity)

	vals := s.permutable()
	if !st.done(st.snapshot()) && len(vals) > 1 {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		branches := s.permutationBranches(ctx, vals)

		var wg sync.WaitGroup
		wg.Add(workers)
		for i := 0; i < workers; i++ {
			go func() {
				defer wg.Done()
				for branch := range branches {
					s.searchBranch(ctx, st, cancel, branch)
				}
			}()
		}
		wg.Wait()
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.best == nil {
		return nil, st.packErr
	}

	pal := make(color.Palette, len(s.pal))
	for i, c := range s.pal {
		pal[st.mapping[i]] = c
	}
	return &Minimised{Result: st.best, Mapping: st.mapping, Palette: pal}, nil
}

// permutable lists the palette indices taking part in the permutation
// search, in ascending order.
func (s *Sheet) permutable() []uint8 {
	var vals []uint8
	for i := 1; i < len(s.pal) && i < MaxColors; i++ {
		if uint8(i) == s.cfg.Transparent {
			continue
		}
		vals = append(vals, uint8(i))
	}
	return vals
}

// lowerBound sums, over all cells, the minimum plane count any palette
// ordering could achieve: a scanline showing k distinct colors needs
// at least ceil(log2(k+1)) planes since p planes display at most
// 2^p - 1 colors.
func (s *Sheet) lowerBound() int {
	total := 0
	for i := range s.cells {
		cell := 0
		for _, line := range s.cells[i].lines {
			if p := bits.Len(uint(len(line))); p > cell {
				cell = p
			}
		}
		total += cell
	}
	return total
}

// permutationBranches emits one branch per choice of first permuted
// value; each branch is the lexicographically first arrangement with
// that prefix.
func (s *Sheet) permutationBranches(ctx context.Context, vals []uint8) <-chan []uint8 {
	out := make(chan []uint8)
	go func() {
		defer close(out)
		for i := range vals {
			branch := make([]uint8, 0, len(vals))
			branch = append(branch, vals[i])
			for j := range vals {
				if j != i {
					branch = append(branch, vals[j])
				}
			}
			select {
			case out <- branch:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// searchBranch walks every arrangement sharing the branch's first
// element in lexicographic order.
func (s *Sheet) searchBranch(ctx context.Context, st *searchState, cancel context.CancelFunc, branch []uint8) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if snap := s.try(st, s.mapping(branch)); st.done(snap) {
			cancel()
			return
		}
		if !nextPermutation(branch[1:]) {
			return
		}
	}
}

// mapping turns an arrangement of the permutable values into a full
// index mapping.
func (s *Sheet) mapping(arrangement []uint8) [MaxColors]uint8 {
	m := identityMapping()
	pos := 0
	for i := 1; i < len(s.pal) && i < MaxColors; i++ {
		if uint8(i) == s.cfg.Transparent {
			continue
		}
		m[i] = arrangement[pos]
		pos++
	}
	return m
}

// try packs the sheet under one candidate mapping and folds the
// outcome into the shared state. It returns the plane count of the
// best packing seen so far.
func (s *Sheet) try(st *searchState, m [MaxColors]uint8) int {
	res, err := s.pack(m, st.packBound())
	if err != nil {
		if !errors.Is(err, errBound) {
			st.fail(m, err)
		}
		return st.snapshot()
	}
	return st.update(res, m)
}

// nextPermutation advances p to the next lexicographic arrangement,
// returning false once the sequence wraps around.
func nextPermutation(p []uint8) bool {
	i := len(p) - 2
	for i >= 0 && p[i] >= p[i+1] {
		i--
	}
	if i < 0 {
		return false
	}
	j := len(p) - 1
	for p[j] <= p[i] {
		j--
	}
	p[i], p[j] = p[j], p[i]
	for l, r := i+1, len(p)-1; l < r; l, r = l+1, r-1 {
		p[l], p[r] = p[r], p[l]
	}
	return true
}

// searchState is the shared best-result-so-far of a permutation
// search. Workers read the bound opportunistically; a slightly stale
// bound only costs efficiency, never correctness.
type searchState struct {
	mu      sync.Mutex
	bound   int // lower bound at which the search may stop
	best    *Result
	mapping [MaxColors]uint8
	errMap  [MaxColors]uint8
	packErr error
}

// packBound returns the running plane count at which a candidate
// packing should be abandoned, or zero for no bound. Candidates tying
// the best are packed to completion so the deterministic tie-break on
// the mapping can apply.
func (st *searchState) packBound() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.best == nil {
		return 0
	}
	return st.best.TotalPlanes + 1
}

func (st *searchState) snapshot() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.best == nil {
		return -1
	}
	return st.best.TotalPlanes
}

// done reports whether a plane count has met the lower bound, at which
// point no ordering can do better.
func (st *searchState) done(count int) bool {
	return count >= 0 && count <= st.bound
}

// update installs res as the new best if it is cheaper, or equally
// cheap under a lexicographically smaller mapping. The tie-break makes
// an exhausted search independent of worker scheduling; a search
// stopped at the lower bound keeps whichever optimum it found first.
func (st *searchState) update(res *Result, m [MaxColors]uint8) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.best == nil || res.TotalPlanes < st.best.TotalPlanes ||
		(res.TotalPlanes == st.best.TotalPlanes && lessMapping(m, st.mapping)) {
		st.best = res
		st.mapping = m
	}
	return st.best.TotalPlanes
}

// fail remembers the packing error of the lexicographically smallest
// failing mapping so that an entirely infeasible search surfaces a
// deterministic UnpackableCellError.
func (st *searchState) fail(m [MaxColors]uint8, err error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.packErr == nil || lessMapping(m, st.errMap) {
		st.packErr = err
		st.errMap = m
	}
}

func lessMapping(a, b [MaxColors]uint8) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

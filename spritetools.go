/*
Package spritetools converts truecolor images into MSX2 SCREEN 5
OR-color sprite data and validates existing sprite sheets against the
hardware's color combination rule.
*/
package spritetools

import (
	"io"
	"log"

	"github.com/pvmm/spritetools/sprite"
)

// Options configures a Converter.
type Options struct {
	// Cell selects the sprite geometry and plane limit; the zero
	// value uses the hardware defaults.
	Cell sprite.Config

	// Minimise searches palette orderings for the cheapest packing
	// instead of packing with the palette order as given.
	Minimise bool

	// Workers limits the goroutines used by the minimiser; zero means
	// one per CPU.
	Workers int

	// Nearest maps colors missing from the palette to the
	// perceptually nearest entry instead of failing.
	Nearest bool

	// Quantize reduces images needing more than 16 colors with a
	// median cut instead of failing. Implies nearest mapping for the
	// reduced palette.
	Quantize bool
}

// Converter turns images into sprite data.
type Converter struct {
	opts   Options
	logger *log.Logger
}

// New returns a Converter with the given options. A nil logger
// discards diagnostics.
func New(opts Options, logger *log.Logger) *Converter {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Converter{
		opts:   opts,
		logger: logger,
	}
}

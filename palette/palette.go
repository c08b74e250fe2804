/*
Package palette handles SCREEN 5 palettes: loading palette files,
deriving a palette from a key-colored image and converting between
24-bit RGB and the V9938's 9-bit color space.
*/
package palette

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
)

// MaxColors is the number of palette entries in SCREEN 5.
const MaxColors = 16

// Transparent is the key color marking transparent pixels in source
// images; it always occupies palette index zero.
var Transparent = color.RGBA{0xff, 0x00, 0xff, 0xff}

var (
	// ErrTooManyColors is returned when an image or file needs more
	// than MaxColors palette entries.
	ErrTooManyColors = errors.New("palette: more than 16 colors")

	errBadTriple = errors.New("palette: values are not complete (r, g, b) triples")
)

// FromImage collects the distinct colors of m into a palette, sorted
// by RGB value, with the magenta key color as the transparent entry at
// index zero.
func FromImage(m image.Image) (color.Palette, error) {
	seen := make(map[color.RGBA]struct{})
	b := m.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.RGBAModel.Convert(m.At(x, y)).(color.RGBA)
			c.A = 0xff
			if c == Transparent {
				continue
			}
			seen[c] = struct{}{}
		}
	}
	if len(seen)+1 > MaxColors {
		return nil, ErrTooManyColors
	}

	colors := make([]color.RGBA, 0, len(seen))
	for c := range seen {
		colors = append(colors, c)
	}
	sort.Slice(colors, func(i, j int) bool {
		a, b := colors[i], colors[j]
		if a.R != b.R {
			return a.R < b.R
		}
		if a.G != b.G {
			return a.G < b.G
		}
		return a.B < b.B
	})

	p := make(color.Palette, 0, len(colors)+1)
	p = append(p, Transparent)
	for _, c := range colors {
		p = append(p, c)
	}
	return p, nil
}

// Parse reads a palette as whitespace- or punctuation-separated
// decimal (r, g, b) triples, up to MaxColors of them. The layout is
// free-form; "(255, 0, 255), (0, 0, 0)" and one triple per line both
// work. The first triple is the transparent color.
func Parse(r io.Reader) (color.Palette, error) {
	var values []int
	s := bufio.NewScanner(r)
	s.Split(bufio.ScanWords)
	for s.Scan() {
		tok := s.Text()
		num := ""
		for _, c := range tok {
			if c >= '0' && c <= '9' {
				num += string(c)
				continue
			}
			if num != "" {
				v, err := strconv.Atoi(num)
				if err != nil {
					return nil, err
				}
				values = append(values, v)
				num = ""
			}
		}
		if num != "" {
			v, err := strconv.Atoi(num)
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}

	if len(values) == 0 || len(values)%3 != 0 {
		return nil, errBadTriple
	}
	if len(values)/3 > MaxColors {
		return nil, ErrTooManyColors
	}

	p := make(color.Palette, 0, len(values)/3)
	for i := 0; i < len(values); i += 3 {
		for j := 0; j < 3; j++ {
			if values[i+j] > 0xff {
				return nil, fmt.Errorf("palette: channel value %d out of range", values[i+j])
			}
		}
		p = append(p, color.RGBA{uint8(values[i]), uint8(values[i+1]), uint8(values[i+2]), 0xff})
	}
	return p, nil
}

// Load reads a palette file from disk.
func Load(path string) (color.Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Parse(f)
}

// Lookup builds an exact color to palette index table.
func Lookup(p color.Palette) map[color.RGBA]uint8 {
	m := make(map[color.RGBA]uint8, len(p))
	for i := len(p) - 1; i >= 0; i-- {
		c := color.RGBAModel.Convert(p[i]).(color.RGBA)
		c.A = 0xff
		m[c] = uint8(i)
	}
	return m
}

// Nearest returns the index of the palette color perceptually closest
// to c, measured in CIE Lab space. The transparent entry at index zero
// is never chosen.
func Nearest(p color.Palette, c color.Color) uint8 {
	target, _ := colorful.MakeColor(opaque(c))
	best, bestDist := 0, -1.0
	for i := 1; i < len(p); i++ {
		candidate, _ := colorful.MakeColor(opaque(p[i]))
		if d := target.DistanceLab(candidate); bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return uint8(best)
}

func opaque(c color.Color) color.RGBA {
	rgba := color.RGBAModel.Convert(c).(color.RGBA)
	rgba.A = 0xff
	return rgba
}

// MSX truncates a color to the VDP's 3 bits per channel.
func MSX(c color.Color) (r, g, b uint8) {
	rgba := opaque(c)
	return to3bit(rgba.R), to3bit(rgba.G), to3bit(rgba.B)
}

// VDPBytes packs a color into the two-byte palette register format,
// 0RRR0BBB followed by 00000GGG.
func VDPBytes(c color.Color) [2]byte {
	r, g, b := MSX(c)
	return [2]byte{r<<4 | b, g}
}

// FromVDPBytes expands a two-byte palette register pair back to 24-bit
// RGB.
func FromVDPBytes(p [2]byte) color.RGBA {
	return color.RGBA{
		to8bit(p[0] >> 4 & 0x07),
		to8bit(p[1] & 0x07),
		to8bit(p[0] & 0x07),
		0xff,
	}
}

func to3bit(v uint8) uint8 {
	return uint8((uint16(v)*7 + 127) / 255)
}

func to8bit(v uint8) uint8 {
	return uint8(uint16(v) * 255 / 7)
}

/*
Package glyph maps luminance rasters onto characters.

A Ramp is an ordered run of glyphs from most visually dense, used for the
darkest samples, to least dense, used for the brightest. Each sample is
mapped independently of its neighbours so rendering the same raster always
produces the same text.
*/
package glyph

import (
	"errors"
	"math"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/width"
)

// DefaultGlyphs is the canonical ten glyph ramp. The trailing space is the
// sparsest glyph.
const DefaultGlyphs = "@%#*+=-:. "

var (
	errTooShort = errors.New("glyph: ramp needs at least two glyphs")
	errInvalid  = errors.New("glyph: ramp is not valid UTF-8")
	errControl  = errors.New("glyph: ramp contains a control character")
	errWide     = errors.New("glyph: ramp contains a double width glyph")
	errZero     = errors.New("glyph: ramp contains a zero width glyph")
)

// Default is the ramp built from DefaultGlyphs.
var Default = mustRamp(DefaultGlyphs)

// Ramp is an immutable, brightness ordered sequence of glyphs. The zero value
// behaves like Default.
type Ramp struct {
	glyphs []rune
	lut    *[256]rune
}

func mustRamp(s string) Ramp {
	r, err := NewRamp(s)
	if err != nil {
		panic(err)
	}
	return r
}

// NewRamp returns a ramp of the glyphs in s ordered densest first. Every
// glyph must occupy exactly one cell of a monospace grid.
func NewRamp(s string) (Ramp, error) {
	if !utf8.ValidString(s) {
		return Ramp{}, errInvalid
	}

	glyphs := []rune(s)
	if len(glyphs) < 2 {
		return Ramp{}, errTooShort
	}
	for _, g := range glyphs {
		if unicode.IsControl(g) {
			return Ramp{}, errControl
		}
		// Combining marks and format characters take no cell of their own
		if unicode.In(g, unicode.Mn, unicode.Me, unicode.Cf) {
			return Ramp{}, errZero
		}
		switch width.LookupRune(g).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			return Ramp{}, errWide
		}
	}

	return newRamp(glyphs), nil
}

func newRamp(glyphs []rune) Ramp {
	r := Ramp{glyphs: glyphs, lut: new([256]rune)}
	for p := range r.lut {
		r.lut[p] = glyphs[index(uint8(p), len(glyphs))]
	}
	return r
}

func (r Ramp) orDefault() Ramp {
	if r.lut == nil {
		return Default
	}
	return r
}

// index maps p onto [0, n-1], rounding to the nearest glyph.
func index(p uint8, n int) int {
	ratio := math.Max(0, math.Min(1, float64(p)/255))
	idx := int(math.Round(ratio * float64(n-1)))
	// Guard the top edge against rounding past the last glyph
	switch {
	case idx < 0:
		idx = 0
	case idx >= n:
		idx = n - 1
	}
	return idx
}

// Len returns the number of glyphs in the ramp.
func (r Ramp) Len() int {
	return len(r.orDefault().glyphs)
}

// Index returns the position in the ramp used for sample p.
func (r Ramp) Index(p uint8) int {
	return index(p, r.Len())
}

// Glyph returns the glyph used for sample p.
func (r Ramp) Glyph(p uint8) rune {
	return r.orDefault().lut[p]
}

// Contains reports whether g is one of the ramp's glyphs.
func (r Ramp) Contains(g rune) bool {
	for _, c := range r.orDefault().glyphs {
		if c == g {
			return true
		}
	}
	return false
}

// Reverse returns the ramp ordered sparsest first, for light text on a dark
// background.
func (r Ramp) Reverse() Ramp {
	src := r.orDefault().glyphs
	glyphs := make([]rune, len(src))
	for i, g := range src {
		glyphs[len(src)-1-i] = g
	}
	return newRamp(glyphs)
}

func (r Ramp) String() string {
	return string(r.orDefault().glyphs)
}

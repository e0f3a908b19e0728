/*
Package raster turns encoded image bytes into a luminance raster ready to be
mapped onto glyphs.

The container format is sniffed from the content itself using the standard
image registry. PNG, JPEG and GIF are registered by the standard library,
BMP, TIFF and WebP by golang.org/x/image. After decoding the image is
converted to 8-bit grayscale and resampled so that its width matches the
requested number of columns and its height preserves the aspect ratio of the
source once the output is viewed in a monospace font, where each cell is
roughly twice as tall as it is wide.
*/
package raster

import (
	"errors"
	"fmt"
	"image"
)

// CellAspect is the height to width ratio of a monospace text cell.
const CellAspect = 2

var (
	// ErrInvalidArgument is returned for empty input or a non-positive width.
	ErrInvalidArgument = errors.New("raster: invalid argument")
	// ErrDecode is returned when the bytes are not a recognised image or the
	// image has no pixels.
	ErrDecode = errors.New("raster: decode error")
	// ErrResample is returned when resampling fails to produce a grayscale
	// raster of the requested size.
	ErrResample = errors.New("raster: resample error")
)

// TargetHeight returns the number of rows needed to render an image of w by
// h pixels at width columns. The result is never less than one.
func TargetHeight(w, h, width int) int {
	if w <= 0 || h <= 0 || width <= 0 {
		return 1
	}
	rows := float64(h) * float64(width) / float64(w) / CellAspect
	if rows < 1 {
		return 1
	}
	return int(rows)
}

// Prepare decodes b, converts it to grayscale and resamples it to width
// columns using the filter f. An empty filter selects DefaultFilter.
func Prepare(b []byte, width int, f Filter) (*image.Gray, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: input bytes are empty", ErrInvalidArgument)
	}
	if width <= 0 {
		return nil, fmt.Errorf("%w: width must be > 0, got %d", ErrInvalidArgument, width)
	}
	if f == "" {
		f = DefaultFilter
	}
	if !f.Valid() {
		return nil, fmt.Errorf("%w: unknown filter %q", ErrInvalidArgument, f)
	}

	m, _, err := Decode(b)
	if err != nil {
		return nil, err
	}

	g := Grayscale(m)
	height := TargetHeight(g.Rect.Dx(), g.Rect.Dy(), width)

	return Resample(g, width, height, f)
}

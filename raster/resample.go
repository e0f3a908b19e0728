package raster

import (
	"fmt"
	"image"
	"sort"

	"github.com/nfnt/resize"
	xdraw "golang.org/x/image/draw"
)

// Filter names an interpolation kernel used when resampling. Only smooth
// kernels are available; nearest-neighbour and box filters leave visible
// blocks that the glyph mapping would exaggerate.
type Filter string

// Available filters.
const (
	Lanczos3   Filter = "lanczos3"
	Lanczos2   Filter = "lanczos2"
	Mitchell   Filter = "mitchell"
	Bicubic    Filter = "bicubic"
	Bilinear   Filter = "bilinear"
	CatmullRom Filter = "catmull-rom"

	// DefaultFilter is used when no filter is given.
	DefaultFilter = Lanczos3
)

var interpolations = map[Filter]resize.InterpolationFunction{
	Lanczos3: resize.Lanczos3,
	Lanczos2: resize.Lanczos2,
	Mitchell: resize.MitchellNetravali,
	Bicubic:  resize.Bicubic,
	Bilinear: resize.Bilinear,
}

// Valid reports whether f names a supported filter.
func (f Filter) Valid() bool {
	if f == CatmullRom {
		return true
	}
	_, ok := interpolations[f]
	return ok
}

func (f Filter) String() string {
	return string(f)
}

// Filters returns the supported filters in name order.
func Filters() []Filter {
	filters := make([]Filter, 0, len(interpolations)+1)
	for f := range interpolations {
		filters = append(filters, f)
	}
	filters = append(filters, CatmullRom)
	sort.Slice(filters, func(i, j int) bool { return filters[i] < filters[j] })
	return filters
}

// ParseFilter returns the filter named s.
func ParseFilter(s string) (Filter, error) {
	if f := Filter(s); f.Valid() {
		return f, nil
	}
	return "", fmt.Errorf("%w: unknown filter %q", ErrInvalidArgument, s)
}

// Resample scales g to exactly width by height pixels.
func Resample(g *image.Gray, width, height int, f Filter) (*image.Gray, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: cannot resample to %dx%d", ErrInvalidArgument, width, height)
	}
	if g == nil || g.Rect.Empty() {
		return nil, fmt.Errorf("%w: source raster is empty", ErrResample)
	}

	var m image.Image
	switch f {
	case CatmullRom:
		dst := image.NewGray(image.Rect(0, 0, width, height))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), g, g.Bounds(), xdraw.Src, nil)
		m = dst
	default:
		interp, ok := interpolations[f]
		if !ok {
			return nil, fmt.Errorf("%w: unknown filter %q", ErrInvalidArgument, f)
		}
		m = resize.Resize(uint(width), uint(height), g, interp)
	}

	out, ok := m.(*image.Gray)
	if !ok {
		return nil, fmt.Errorf("%w: failed to convert resized image to grayscale pixels", ErrResample)
	}
	if out.Rect.Dx() != width || out.Rect.Dy() != height {
		return nil, fmt.Errorf("%w: resized image is %dx%d, wanted %dx%d", ErrResample, out.Rect.Dx(), out.Rect.Dy(), width, height)
	}

	// Adjust image so that top-left corner is at (0, 0)
	if out.Rect.Min != (image.Point{}) {
		dup := *out
		dup.Rect = dup.Rect.Sub(dup.Rect.Min)
		out = &dup
	}

	return out, nil
}

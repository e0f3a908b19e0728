package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // register GIF
	_ "image/jpeg" // register JPEG
	_ "image/png"  // register PNG

	_ "golang.org/x/image/bmp"  // register BMP
	_ "golang.org/x/image/tiff" // register TIFF
	_ "golang.org/x/image/webp" // register WebP
)

// Decode sniffs the format of b and decodes it. It returns the decoded image
// along with the registered format name.
func Decode(b []byte) (image.Image, string, error) {
	if len(b) == 0 {
		return nil, "", fmt.Errorf("%w: input bytes are empty", ErrInvalidArgument)
	}

	// Reject empty images before allocating anything for the pixels
	cfg, format, err := image.DecodeConfig(bytes.NewReader(b))
	if err != nil {
		return nil, "", fmt.Errorf("%w: failed to guess image format: %v", ErrDecode, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, "", fmt.Errorf("%w: %s image has zero width or height", ErrDecode, format)
	}

	m, format, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, "", fmt.Errorf("%w: failed to decode %s image: %v", ErrDecode, format, err)
	}
	if r := m.Bounds(); r.Dx() <= 0 || r.Dy() <= 0 {
		return nil, "", fmt.Errorf("%w: decoded image has zero width or height", ErrDecode)
	}

	return m, format, nil
}

// Grayscale returns a copy of m converted to 8-bit luminance with its
// top-left corner at (0, 0). Alpha is discarded, the luminance is that of the
// unpremultiplied color.
func Grayscale(m image.Image) *image.Gray {
	b := m.Bounds()
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(m.At(x, y)).(color.NRGBA)
			c.A = 0xff
			g.SetGray(x-b.Min.X, y-b.Min.Y, color.GrayModel.Convert(c).(color.Gray))
		}
	}
	return g
}

/*
Package asciify is a library for rendering raster images as ASCII art.

Images are decoded, converted to grayscale and resampled to the requested
number of columns, halving the height so the result looks undistorted in a
terminal. Each sample is then replaced by a glyph from a brightness ordered
ramp.
*/
package asciify

import (
	"crypto/sha1"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/bodgit/asciify/glyph"
	"github.com/bodgit/asciify/raster"
)

// Errors returned by Convert. Use errors.Is to test for them.
var (
	ErrInvalidArgument = raster.ErrInvalidArgument
	ErrDecode          = raster.ErrDecode
	ErrResample        = raster.ErrResample
)

const defaultWorkers = 10

// Converter renders images using a fixed ramp and resampling filter. It is
// safe for concurrent use.
type Converter struct {
	ramp       glyph.Ramp
	filter     raster.Filter
	cache      *Cache
	logger     *log.Logger
	workers    int
	rowWorkers int
}

// Option configures a Converter.
type Option func(*Converter)

// WithRamp sets the glyph ramp, glyph.Default otherwise.
func WithRamp(r glyph.Ramp) Option {
	return func(c *Converter) {
		c.ramp = r
	}
}

// WithFilter sets the resampling filter, raster.DefaultFilter otherwise.
func WithFilter(f raster.Filter) Option {
	return func(c *Converter) {
		c.filter = f
	}
}

// WithCache stores and reuses rendered text in cache.
func WithCache(cache *Cache) Option {
	return func(c *Converter) {
		c.cache = cache
	}
}

// WithLogger sets the logger, by default nothing is logged.
func WithLogger(logger *log.Logger) Option {
	return func(c *Converter) {
		c.logger = logger
	}
}

// WithWorkers sets the number of files Scan converts at once.
func WithWorkers(n int) Option {
	return func(c *Converter) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithRowWorkers maps the rows of each image on up to n goroutines.
func WithRowWorkers(n int) Option {
	return func(c *Converter) {
		c.rowWorkers = n
	}
}

// New returns a Converter configured with opts.
func New(opts ...Option) *Converter {
	c := &Converter{
		ramp:    glyph.Default,
		filter:  raster.DefaultFilter,
		logger:  log.New(io.Discard, "", 0),
		workers: defaultWorkers,
	}
	for _, o := range opts {
		o(c)
	}
	if c.filter == "" {
		c.filter = raster.DefaultFilter
	}
	return c
}

// Convert renders the encoded image b at width columns using the default
// ramp and filter.
func Convert(b []byte, width int) (string, error) {
	return New().Convert(b, width)
}

func checksum(b []byte) string {
	return fmt.Sprintf("%X", sha1.Sum(b))
}

// Convert renders the encoded image b at width columns. On error the
// returned string is always empty.
func (c *Converter) Convert(b []byte, width int) (string, error) {
	if err := validate(b, width); err != nil {
		return "", err
	}

	sum, text, ok := c.lookup(b, width)
	if ok {
		return text, nil
	}

	g, err := raster.Prepare(b, width, c.filter)
	if err != nil {
		return "", err
	}

	text = glyph.RenderParallel(g, c.ramp, c.rowWorkers)
	c.store(sum, width, text)

	return text, nil
}

// ConvertTo renders the encoded image b at width columns, writing the text to
// w row by row. Nothing is written if b can't be decoded.
func (c *Converter) ConvertTo(w io.Writer, b []byte, width int) error {
	if err := validate(b, width); err != nil {
		return err
	}

	sum, text, ok := c.lookup(b, width)
	if ok {
		_, err := io.WriteString(w, text)
		return err
	}

	g, err := raster.Prepare(b, width, c.filter)
	if err != nil {
		return err
	}

	if c.cache == nil {
		return glyph.Write(w, g, c.ramp)
	}

	var sb strings.Builder
	if err := glyph.Write(io.MultiWriter(w, &sb), g, c.ramp); err != nil {
		return err
	}
	c.store(sum, width, sb.String())

	return nil
}

func validate(b []byte, width int) error {
	if len(b) == 0 {
		return fmt.Errorf("%w: input bytes are empty", ErrInvalidArgument)
	}
	if width <= 0 {
		return fmt.Errorf("%w: width must be > 0, got %d", ErrInvalidArgument, width)
	}
	return nil
}

// lookup returns the checksum of b and any cached text for it.
func (c *Converter) lookup(b []byte, width int) (string, string, bool) {
	if c.cache == nil {
		return "", "", false
	}

	sum := checksum(b)
	text, ok, err := c.cache.Get(sum, width, c.ramp.String(), c.filter.String())
	if err != nil {
		c.logger.Printf("Cache lookup for %s failed: %v\n", sum, err)
		return sum, "", false
	}
	return sum, text, ok
}

func (c *Converter) store(sum string, width int, text string) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Put(sum, width, c.ramp.String(), c.filter.String(), text); err != nil {
		c.logger.Printf("Cache store for %s failed: %v\n", sum, err)
	}
}

// ConvertReader reads an encoded image from r and renders it.
func (c *Converter) ConvertReader(r io.Reader, width int) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return c.Convert(b, width)
}

// ConvertFile renders the image stored in file.
func (c *Converter) ConvertFile(file string, width int) (string, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return "", err
	}
	return c.Convert(b, width)
}

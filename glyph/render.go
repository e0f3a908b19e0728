package glyph

import (
	"bufio"
	"image"
	"io"
	"sync"
	"unicode/utf8"
)

func appendRow(dst []byte, g *image.Gray, y int, lut *[256]rune) []byte {
	i := g.PixOffset(g.Rect.Min.X, y)
	for _, p := range g.Pix[i : i+g.Rect.Dx()] {
		dst = utf8.AppendRune(dst, lut[p])
	}
	return append(dst, '\n')
}

func rowSize(g *image.Gray, r Ramp) int {
	n := 1
	for _, c := range r.glyphs {
		if l := utf8.RuneLen(c); l > n {
			n = l
		}
	}
	return g.Rect.Dx()*n + 1
}

// Render maps every sample of g onto a glyph of r. Rows are emitted top to
// bottom, each terminated by a single line break. An empty raster renders
// as the empty string.
func Render(g *image.Gray, r Ramp) string {
	if g == nil || g.Rect.Empty() {
		return ""
	}
	r = r.orDefault()

	b := make([]byte, 0, rowSize(g, r)*g.Rect.Dy())
	for y := g.Rect.Min.Y; y < g.Rect.Max.Y; y++ {
		b = appendRow(b, g, y, r.lut)
	}
	return string(b)
}

// RenderParallel is like Render but maps rows on up to workers goroutines.
// The output is identical to Render.
func RenderParallel(g *image.Gray, r Ramp, workers int) string {
	if g == nil || g.Rect.Empty() {
		return ""
	}
	if h := g.Rect.Dy(); workers > h {
		workers = h
	}
	if workers <= 1 {
		return Render(g, r)
	}
	r = r.orDefault()

	rows := make([][]byte, g.Rect.Dy())
	size := rowSize(g, r)

	in := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for y := range in {
				rows[y-g.Rect.Min.Y] = appendRow(make([]byte, 0, size), g, y, r.lut)
			}
		}()
	}
	for y := g.Rect.Min.Y; y < g.Rect.Max.Y; y++ {
		in <- y
	}
	close(in)
	wg.Wait()

	b := make([]byte, 0, size*len(rows))
	for _, row := range rows {
		b = append(b, row...)
	}
	return string(b)
}

// Write renders g to w one row at a time.
func Write(w io.Writer, g *image.Gray, r Ramp) error {
	if g == nil || g.Rect.Empty() {
		return nil
	}
	r = r.orDefault()

	bw := bufio.NewWriter(w)
	row := make([]byte, 0, rowSize(g, r))
	for y := g.Rect.Min.Y; y < g.Rect.Max.Y; y++ {
		row = appendRow(row[:0], g, y, r.lut)
		if _, err := bw.Write(row); err != nil {
			return err
		}
	}
	return bw.Flush()
}

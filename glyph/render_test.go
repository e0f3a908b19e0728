package glyph

import (
	"bytes"
	"image"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gradient(w, h int) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for i := range g.Pix {
		g.Pix[i] = uint8(i * 255 / (len(g.Pix) - 1))
	}
	return g
}

func TestRender(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 3, 2))
	copy(g.Pix, []uint8{0, 128, 255, 255, 28, 0})

	want := "@= \n %@\n"
	if diff := cmp.Diff(want, Render(g, Default)); diff != "" {
		t.Errorf("Render() mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderDimensions(t *testing.T) {
	blocks, err := NewRamp("█▓▒░ ")
	require.NoError(t, err)

	for _, r := range []Ramp{Default, blocks} {
		out := Render(gradient(17, 5), r)
		require.True(t, strings.HasSuffix(out, "\n"))

		lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
		assert.Len(t, lines, 5)
		for _, line := range lines {
			assert.Equal(t, 17, utf8.RuneCountInString(line))
			for _, c := range line {
				assert.True(t, r.Contains(c), "%q", c)
			}
		}
	}
}

func TestRenderPreservesSpaces(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 4, 2))
	for i := range g.Pix {
		g.Pix[i] = 0xff
	}
	assert.Equal(t, "    \n    \n", Render(g, Default))
}

func TestRenderSubImage(t *testing.T) {
	g := gradient(8, 8)
	sub := g.SubImage(image.Rect(2, 3, 5, 6)).(*image.Gray)

	var want strings.Builder
	for y := 3; y < 6; y++ {
		for x := 2; x < 5; x++ {
			want.WriteRune(Default.Glyph(g.GrayAt(x, y).Y))
		}
		want.WriteByte('\n')
	}

	assert.Equal(t, want.String(), Render(sub, Default))
}

func TestRenderEmpty(t *testing.T) {
	assert.Equal(t, "", Render(nil, Default))
	assert.Equal(t, "", Render(image.NewGray(image.Rect(0, 0, 0, 4)), Default))
	assert.Equal(t, "", RenderParallel(image.NewGray(image.Rect(0, 0, 5, 0)), Default, 4))
}

func TestRenderDeterministic(t *testing.T) {
	g := gradient(31, 9)
	want := Render(g, Default)
	for i := 0; i < 5; i++ {
		assert.Equal(t, want, Render(g, Default))
	}
}

func TestRenderParallel(t *testing.T) {
	g := gradient(40, 23)
	want := Render(g, Default)

	for _, workers := range []int{-1, 0, 1, 2, 7, 23, 100} {
		assert.Equal(t, want, RenderParallel(g, Default, workers), "workers %d", workers)
	}

	sub := g.SubImage(image.Rect(5, 4, 30, 20)).(*image.Gray)
	assert.Equal(t, Render(sub, Default), RenderParallel(sub, Default, 3))
}

func TestWrite(t *testing.T) {
	g := gradient(12, 6)

	b := new(bytes.Buffer)
	require.NoError(t, Write(b, g, Default.Reverse()))
	assert.Equal(t, Render(g, Default.Reverse()), b.String())

	b.Reset()
	require.NoError(t, Write(b, nil, Default))
	assert.Zero(t, b.Len())
}

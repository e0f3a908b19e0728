package asciify

import (
	"bytes"
	"image/color"
	"log"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T) *Cache {
	t.Helper()
	cache, err := NewCache(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestCache(t *testing.T) {
	cache := newCache(t)

	_, ok, err := cache.Get("ABCD", 10, "@ ", "lanczos3")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Put("ABCD", 10, "@ ", "lanczos3", "@@\n"))
	require.NoError(t, cache.Put("ABCD", 20, "@ ", "lanczos3", "@@@@\n"))
	require.NoError(t, cache.Put("ABCD", 10, "@ ", "bilinear", "  \n"))

	text, ok, err := cache.Get("ABCD", 10, "@ ", "lanczos3")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "@@\n", text)

	text, ok, err = cache.Get("ABCD", 10, "@ ", "bilinear")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "  \n", text)

	_, ok, err = cache.Get("ABCD", 10, "# ", "lanczos3")
	require.NoError(t, err)
	assert.False(t, ok)

	// Replacing an entry doesn't add another
	require.NoError(t, cache.Put("ABCD", 10, "@ ", "lanczos3", "##\n"))
	text, _, err = cache.Get("ABCD", 10, "@ ", "lanczos3")
	require.NoError(t, err)
	assert.Equal(t, "##\n", text)

	n, err := cache.Length()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, cache.Purge())
	n, err = cache.Length()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCacheReopen(t *testing.T) {
	file := filepath.Join(t.TempDir(), "cache.db")

	cache, err := NewCache(file)
	require.NoError(t, err)
	require.NoError(t, cache.Put("1234", 5, "@ ", "lanczos3", "@@@@@\n"))
	require.NoError(t, cache.Close())

	cache, err = NewCache(file)
	require.NoError(t, err)
	defer cache.Close()

	text, ok, err := cache.Get("1234", 5, "@ ", "lanczos3")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "@@@@@\n", text)
}

func TestConvertWithCache(t *testing.T) {
	cache := newCache(t)
	b := encodePNG(t, stripes(50, 20))

	want, err := Convert(b, 25)
	require.NoError(t, err)

	c := New(WithCache(cache))
	got, err := c.Convert(b, 25)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	n, err := cache.Length()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// A hit returns the stored text rather than rendering again
	require.NoError(t, cache.Put(checksum(b), 25, c.ramp.String(), c.filter.String(), "cached\n"))
	got, err = c.Convert(b, 25)
	require.NoError(t, err)
	assert.Equal(t, "cached\n", got)

	// Failures are never stored
	_, err = c.Convert([]byte("not an image"), 25)
	assert.Error(t, err)
	n, err = cache.Length()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestConvertWithClosedCache(t *testing.T) {
	cache, err := NewCache(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	require.NoError(t, cache.Close())

	logs := new(bytes.Buffer)
	c := New(WithCache(cache), WithLogger(log.New(logs, "", 0)))

	text, err := c.Convert(encodePNG(t, uniform(4, 4, color.Black)), 4)
	require.NoError(t, err)
	assert.Equal(t, "@@@@\n@@@@\n", text)
	assert.True(t, strings.Contains(logs.String(), "Cache lookup"))
}

func TestConvertToWithCache(t *testing.T) {
	cache := newCache(t)
	b := encodePNG(t, stripes(40, 40))

	want, err := Convert(b, 20)
	require.NoError(t, err)

	c := New(WithCache(cache))
	out := new(bytes.Buffer)
	require.NoError(t, c.ConvertTo(out, b, 20))
	assert.Equal(t, want, out.String())

	// The streamed text is what gets stored
	text, ok, err := cache.Get(checksum(b), 20, c.ramp.String(), c.filter.String())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, text)

	out.Reset()
	require.NoError(t, c.ConvertTo(out, b, 20))
	assert.Equal(t, want, out.String())
}

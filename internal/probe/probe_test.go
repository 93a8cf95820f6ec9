package probe

import (
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/abaddouh/fakeimg/internal/errors"
)

func writeImage(t *testing.T, path string, w, h int, encode func(io.Writer, image.Image) error) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, encode(f, img))
}

func TestProbeFormats(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name   string
		w, h   int
		encode func(io.Writer, image.Image) error
	}{
		{"a.png", 640, 480, png.Encode},
		{"b.jpg", 33, 7, func(w io.Writer, m image.Image) error { return jpeg.Encode(w, m, nil) }},
		{"c.gif", 12, 90, func(w io.Writer, m image.Image) error { return gif.Encode(w, m, nil) }},
		{"d.bmp", 5, 5, bmp.Encode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			writeImage(t, path, tt.w, tt.h, tt.encode)

			dims, err := Probe(path)
			require.NoError(t, err)
			assert.Equal(t, Dimensions{Width: tt.w, Height: tt.h}, dims)
		})
	}
}

func TestProbeIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "src.png")
	writeImage(t, path, 101, 57, png.Encode)

	first, err := Probe(path)
	require.NoError(t, err)
	second, err := Probe(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "101x57", first.String())
}

func TestProbeNotAnImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

	_, err := Probe(path)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindUnreadableImage))
	assert.Contains(t, err.Error(), path)
}

func TestProbeMissingFile(t *testing.T) {
	_, err := Probe(filepath.Join(t.TempDir(), "missing.png"))
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindUnreadableImage))
}

func TestProbeDirectory(t *testing.T) {
	_, err := Probe(t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindUnreadableImage))
}

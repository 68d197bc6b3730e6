package image

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestImage(t *testing.T, name string, w, h int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	img := imaging.New(w, h, color.NRGBA{R: 200, A: 255})
	require.NoError(t, imaging.Save(img, path))
	return path
}

func TestLoad(t *testing.T) {
	for _, name := range []string{"a.png", "a.jpg", "a.tif", "a.bmp", "a.gif"} {
		t.Run(name, func(t *testing.T) {
			l, err := Load(writeTestImage(t, name, 30, 20))
			require.NoError(t, err)
			assert.Equal(t, 30, l.Width())
			assert.Equal(t, 20, l.Height())
			assert.Equal(t, 30.0, l.Size().Width)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.png"))
	assert.ErrorContains(t, err, "nope.png")
}

func TestScaledIsCached(t *testing.T) {
	l := FromImage("mem", image.NewRGBA(image.Rect(0, 0, 100, 50)))

	a := l.Scaled(50, 25)
	require.NotNil(t, a)
	assert.Equal(t, image.Rect(0, 0, 50, 25), a.Bounds())
	assert.Same(t, a, l.Scaled(50, 25))
	assert.NotSame(t, a, l.Scaled(40, 20))
	assert.Nil(t, l.Scaled(0, 10))
}

func TestPixelAt(t *testing.T) {
	img := image.NewRGBA(image.Rect(5, 5, 10, 10))
	img.Set(5, 5, color.White)
	l := FromImage("mem", img)

	assert.Equal(t, color.RGBA{255, 255, 255, 255}, l.PixelAt(0, 0))
	assert.Equal(t, color.Black, l.PixelAt(5, 5))
}

func TestIsImageFile(t *testing.T) {
	assert.True(t, IsImageFile("photo.JPG"))
	assert.True(t, IsImageFile("/x/y.webp"))
	assert.False(t, IsImageFile("notes.txt"))
	assert.False(t, IsImageFile("photo.jpg.annotations.json"))
}

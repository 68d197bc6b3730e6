package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"

	"image-annotator/internal/annotation"
	"image-annotator/internal/selection"
	"image-annotator/pkg/geometry"
)

var _ selection.Surface = (*Surface)(nil)

func alphaAt(img *image.RGBA, x, y int) uint8 {
	return img.RGBAAt(x, y).A
}

func TestNewSurfaceIsTransparent(t *testing.T) {
	s := NewSurface(20, 10)
	w, h := s.Size()
	assert.Equal(t, 20, w)
	assert.Equal(t, 10, h)
	assert.Equal(t, uint8(0), alphaAt(s.Snapshot(), 5, 5))
}

func TestStrokeRectPaintsOutlineOnly(t *testing.T) {
	s := NewSurface(40, 40)
	s.SetStrokeColor(color.Black)
	s.SetLineWidth(1)
	s.StrokeRect(10.5, 10.5, 20, 20)

	img := s.Snapshot()
	assert.Equal(t, uint8(255), alphaAt(img, 10, 20), "left edge")
	assert.Equal(t, uint8(255), alphaAt(img, 30, 20), "right edge")
	assert.Equal(t, uint8(0), alphaAt(img, 20, 20), "interior")
	assert.Equal(t, uint8(0), alphaAt(img, 2, 2), "outside")
}

func TestClearErasesStrokes(t *testing.T) {
	s := NewSurface(40, 40)
	s.StrokeRect(10.5, 10.5, 20, 20)
	s.Clear()
	assert.Equal(t, uint8(0), alphaAt(s.Snapshot(), 10, 20))
}

func TestNegativeRectStrokesSameEdges(t *testing.T) {
	s := NewSurface(40, 40)
	s.StrokeRect(30.5, 30.5, -20, -20)

	img := s.Snapshot()
	for _, p := range []image.Point{{10, 20}, {30, 20}, {20, 10}, {20, 30}} {
		assert.Equal(t, uint8(255), alphaAt(img, p.X, p.Y), "edge at %v", p)
	}
	assert.Equal(t, uint8(0), alphaAt(img, 20, 20))
}

func TestResizeDiscardsContent(t *testing.T) {
	s := NewSurface(10, 10)
	s.StrokeRect(1.5, 1.5, 5, 5)
	s.Resize(30, 20)
	w, h := s.Size()
	assert.Equal(t, 30, w)
	assert.Equal(t, 20, h)
	assert.Equal(t, uint8(0), alphaAt(s.Snapshot(), 1, 3))

	s.Resize(0, -4)
	w, h = s.Size()
	assert.Equal(t, 1, w)
	assert.Equal(t, 1, h)
}

func TestSelectionDrawsOnSurface(t *testing.T) {
	s := NewSurface(60, 60)
	selection.RectRenderer{Style: selection.DefaultStyle()}.DrawShape(s,
		annotation.NewRectShape(geometry.NewRectangle(10, 10, 30, 30)), true)

	img := s.Snapshot()
	outer := img.RGBAAt(10, 25)
	inner := img.RGBAAt(11, 25)
	assert.Equal(t, uint8(255), outer.A)
	assert.Less(t, outer.R, uint8(128), "outer stroke is dark")
	assert.Greater(t, inner.R, uint8(128), "inner stroke is the light highlight")
	assert.Equal(t, uint8(0), alphaAt(img, 25, 25))
}

func TestCompose(t *testing.T) {
	base := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range base.Pix {
		base.Pix[i] = 255
	}
	out := Compose(8, 8, color.Black,
		Layer{Image: base, At: image.Pt(2, 2), Opacity: 1},
		Layer{Image: nil, Opacity: 1},
	)

	assert.Equal(t, color.NRGBA{0, 0, 0, 255}, out.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, out.NRGBAAt(3, 3))
}

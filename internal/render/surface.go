// Package render provides raster drawing surfaces and compositing.
package render

import (
	"image"
	"image/color"
	"sync"

	"github.com/fogleman/gg"
)

// Surface is a transparent RGBA drawing surface backed by a gg context.
// Drawing and snapshotting may happen from different goroutines.
type Surface struct {
	mu        sync.Mutex
	dc        *gg.Context
	stroke    color.Color
	lineWidth float64
}

// NewSurface creates a transparent surface of w×h pixels.
func NewSurface(w, h int) *Surface {
	return &Surface{
		dc:        gg.NewContext(clampSize(w), clampSize(h)),
		stroke:    color.Black,
		lineWidth: 1,
	}
}

func clampSize(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// Resize replaces the backing image when the size changes. Content is discarded.
func (s *Surface) Resize(w, h int) {
	w, h = clampSize(w), clampSize(h)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dc.Width() == w && s.dc.Height() == h {
		return
	}
	s.dc = gg.NewContext(w, h)
}

// Size returns the surface dimensions in pixels.
func (s *Surface) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dc.Width(), s.dc.Height()
}

// Clear makes every pixel transparent.
func (s *Surface) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dc.SetColor(color.Transparent)
	s.dc.Clear()
}

// SetStrokeColor sets the color used by subsequent strokes.
func (s *Surface) SetStrokeColor(c color.Color) {
	s.mu.Lock()
	s.stroke = c
	s.mu.Unlock()
}

// SetLineWidth sets the width used by subsequent strokes.
func (s *Surface) SetLineWidth(w float64) {
	s.mu.Lock()
	s.lineWidth = w
	s.mu.Unlock()
}

// StrokeRect outlines the rectangle. Negative sizes extend left or up.
func (s *Surface) StrokeRect(x, y, w, h float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dc.SetColor(s.stroke)
	s.dc.SetLineWidth(s.lineWidth)
	s.dc.DrawRectangle(x, y, w, h)
	s.dc.Stroke()
}

// Snapshot returns a copy of the current pixels.
func (s *Surface) Snapshot() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	src := s.dc.Image().(*image.RGBA)
	out := image.NewRGBA(src.Bounds())
	copy(out.Pix, src.Pix)
	return out
}

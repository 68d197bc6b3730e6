// Package coords converts between viewport and image-intrinsic coordinates.
package coords

import (
	"errors"
	"fmt"
	"math"

	"image-annotator/pkg/geometry"
)

var (
	// ErrNonFinite is returned for NaN or infinite coordinates.
	ErrNonFinite = errors.New("non-finite coordinates")
	// ErrInvalidScale is returned when a mapper would not be invertible.
	ErrInvalidScale = errors.New("scale must be positive and finite")
)

// Mapper is an immutable transform from image coordinates to viewport
// coordinates (uniform scale, then offset) and back.
//
// A Mapper describes one display size. Build a new one with Fit whenever
// the image is displayed at a different size.
type Mapper struct {
	scale   float64
	offset  geometry.Point
	forward geometry.AffineTransform // item -> viewport
	inverse geometry.AffineTransform // viewport -> item
}

// Identity returns a mapper whose two spaces coincide.
func Identity() Mapper {
	return Mapper{
		scale:   1,
		forward: geometry.Identity(),
		inverse: geometry.Identity(),
	}
}

// NewMapper creates a mapper that scales image coordinates by scale and then
// translates them by offset.
func NewMapper(scale float64, offset geometry.Point) (Mapper, error) {
	if math.IsNaN(scale) || math.IsInf(scale, 0) || scale <= 0 {
		return Mapper{}, fmt.Errorf("%w: %v", ErrInvalidScale, scale)
	}
	if !offset.IsFinite() {
		return Mapper{}, fmt.Errorf("offset: %w", ErrNonFinite)
	}
	fwd := geometry.Translation(offset.X, offset.Y).Compose(geometry.Scale(scale, scale))
	inv, ok := fwd.Inverse()
	if !ok {
		return Mapper{}, fmt.Errorf("%w: %v", ErrInvalidScale, scale)
	}
	return Mapper{scale: scale, offset: offset, forward: fwd, inverse: inv}, nil
}

// Fit returns the mapper that displays an image of the natural size centered
// inside display, scaled to fit while keeping its aspect ratio.
func Fit(natural, display geometry.Size) (Mapper, error) {
	if natural.IsEmpty() || display.IsEmpty() {
		return Mapper{}, fmt.Errorf("%w: natural %vx%v, display %vx%v", ErrInvalidScale,
			natural.Width, natural.Height, display.Width, display.Height)
	}
	scale := math.Min(display.Width/natural.Width, display.Height/natural.Height)
	offset := geometry.NewPoint(
		(display.Width-natural.Width*scale)/2,
		(display.Height-natural.Height*scale)/2,
	)
	return NewMapper(scale, offset)
}

// Scale returns the viewport pixels per image pixel.
func (m Mapper) Scale() float64 { return m.scale }

// Offset returns the viewport position of the image origin.
func (m Mapper) Offset() geometry.Point { return m.offset }

// DisplayRect returns the viewport rectangle an image of the given natural
// size occupies.
func (m Mapper) DisplayRect(natural geometry.Size) geometry.Rectangle {
	return geometry.NewRectangle(m.offset.X, m.offset.Y, natural.Width*m.scale, natural.Height*m.scale)
}

// ToItemCoordinates converts a viewport point to image coordinates. Points
// outside the image are converted like any other.
func (m Mapper) ToItemCoordinates(p geometry.Point) (geometry.Point, error) {
	if !p.IsFinite() {
		return geometry.Point{}, ErrNonFinite
	}
	return m.inverse.Apply(p), nil
}

// ToViewportCoordinates converts an image point to viewport coordinates.
func (m Mapper) ToViewportCoordinates(p geometry.Point) (geometry.Point, error) {
	if !p.IsFinite() {
		return geometry.Point{}, ErrNonFinite
	}
	return m.forward.Apply(p), nil
}

// RectToViewport converts an image-space rectangle to viewport space.
func (m Mapper) RectToViewport(r geometry.Rectangle) (geometry.Rectangle, error) {
	return mapRect(r, m.ToViewportCoordinates)
}

// RectToItem converts a viewport rectangle to image space.
func (m Mapper) RectToItem(r geometry.Rectangle) (geometry.Rectangle, error) {
	return mapRect(r, m.ToItemCoordinates)
}

func mapRect(r geometry.Rectangle, f func(geometry.Point) (geometry.Point, error)) (geometry.Rectangle, error) {
	tl, err := f(r.TopLeft())
	if err != nil {
		return geometry.Rectangle{}, err
	}
	br, err := f(r.BottomRight())
	if err != nil {
		return geometry.Rectangle{}, err
	}
	return geometry.NewRectangle(tl.X, tl.Y, br.X-tl.X, br.Y-tl.Y), nil
}

package coords

import (
	"fmt"

	"image-annotator/internal/annotation"
	"image-annotator/pkg/geometry"
)

// ShapeToViewport converts a shape in image coordinates to viewport coordinates.
func (m Mapper) ShapeToViewport(s annotation.Shape) (annotation.Shape, error) {
	return mapShape(s, m.RectToViewport)
}

// ShapeToItem converts a shape in viewport coordinates to image coordinates.
func (m Mapper) ShapeToItem(s annotation.Shape) (annotation.Shape, error) {
	return mapShape(s, m.RectToItem)
}

func mapShape(s annotation.Shape, f func(geometry.Rectangle) (geometry.Rectangle, error)) (annotation.Shape, error) {
	switch g := s.Geometry.(type) {
	case annotation.Rect:
		r, err := f(geometry.Rectangle(g))
		if err != nil {
			return annotation.Shape{}, err
		}
		return annotation.NewRectShape(r), nil
	default:
		return annotation.Shape{}, fmt.Errorf("%w: %q", annotation.ErrUnknownShapeType, s.Type)
	}
}

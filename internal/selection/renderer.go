package selection

import (
	"errors"
	"fmt"
	"sync"

	"image-annotator/internal/annotation"
)

// ErrUnsupportedShape is returned when no renderer is registered for a shape type.
var ErrUnsupportedShape = errors.New("unsupported shape type")

// Renderer draws shapes of one kind. Shapes passed to DrawShape are in
// viewport coordinates.
type Renderer interface {
	SupportedShapeType() annotation.ShapeType
	DrawShape(s Surface, shape annotation.Shape, highlight bool)
}

// Registry dispatches drawing to the renderer registered for a shape type.
type Registry struct {
	mu        sync.RWMutex
	renderers map[annotation.ShapeType]Renderer
}

// NewRegistry creates a registry holding the given renderers.
func NewRegistry(renderers ...Renderer) *Registry {
	r := &Registry{renderers: make(map[annotation.ShapeType]Renderer)}
	for _, rr := range renderers {
		r.Register(rr)
	}
	return r
}

// Register adds or replaces the renderer for its supported shape type.
func (r *Registry) Register(renderer Renderer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renderers[renderer.SupportedShapeType()] = renderer
}

// Lookup returns the renderer for t.
func (r *Registry) Lookup(t annotation.ShapeType) (Renderer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	renderer, ok := r.renderers[t]
	return renderer, ok
}

// Draw renders shape with the renderer registered for its type.
func (r *Registry) Draw(s Surface, shape annotation.Shape, highlight bool) error {
	renderer, ok := r.Lookup(shape.Type)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedShape, shape.Type)
	}
	renderer.DrawShape(s, shape, highlight)
	return nil
}

// RectRenderer draws rectangles as a dark outer outline with a lighter
// inner outline.
type RectRenderer struct {
	Style Style
}

// SupportedShapeType implements Renderer.
func (RectRenderer) SupportedShapeType() annotation.ShapeType {
	return annotation.ShapeRectangle
}

// DrawShape implements Renderer. Shapes of other types are ignored.
func (rr RectRenderer) DrawShape(s Surface, shape annotation.Shape, highlight bool) {
	rect, ok := shape.Rectangle()
	if !ok {
		return
	}

	inner, lineWidth := rr.Style.InnerColor, rr.Style.LineWidth
	if highlight {
		inner, lineWidth = rr.Style.HighlightColor, rr.Style.HighlightLineWidth
	}

	// Half-pixel offsets put 1px strokes on pixel centers.
	s.SetStrokeColor(rr.Style.OutlineColor)
	s.SetLineWidth(lineWidth)
	s.StrokeRect(rect.X+0.5, rect.Y+0.5, rect.Width+1, rect.Height+1)
	s.SetStrokeColor(inner)
	s.StrokeRect(rect.X+1.5, rect.Y+1.5, rect.Width-1, rect.Height-1)
}

// Package viewer draws committed annotations and tracks which one the
// pointer is over.
package viewer

import (
	"log/slog"

	"image-annotator/internal/annotation"
	"image-annotator/internal/coords"
	"image-annotator/internal/events"
	"image-annotator/internal/logging"
	"image-annotator/internal/selection"
)

// Viewer holds the committed annotations of one image and renders them onto
// its own surface, separate from the selector's.
type Viewer struct {
	surface   selection.Surface
	publisher events.Publisher
	renderers *selection.Registry
	mapper    coords.Mapper

	annotations []annotation.Annotation
	hovered     string // ID of the highlighted annotation, "" if none
}

// New creates a viewer drawing on surface.
func New(surface selection.Surface, publisher events.Publisher, renderers *selection.Registry) *Viewer {
	return &Viewer{
		surface:   surface,
		publisher: publisher,
		renderers: renderers,
		mapper:    coords.Identity(),
	}
}

// SetMapper replaces the coordinate mapper and redraws.
func (v *Viewer) SetMapper(m coords.Mapper) {
	v.mapper = m
	v.Redraw()
}

// AddAnnotation adds a committed annotation and redraws.
func (v *Viewer) AddAnnotation(a annotation.Annotation) {
	v.annotations = append(v.annotations, a)
	v.Redraw()
	v.fire(events.AnnotationCreated, events.AnnotationCreatedEvent{Annotation: a})
}

// RemoveAnnotation removes the annotation with the given ID.
func (v *Viewer) RemoveAnnotation(id string) bool {
	for i, a := range v.annotations {
		if a.ID != id {
			continue
		}
		if v.hovered == id {
			v.MouseOut()
		}
		v.annotations = append(v.annotations[:i], v.annotations[i+1:]...)
		v.Redraw()
		return true
	}
	return false
}

// Annotations returns a copy of the committed annotations.
func (v *Viewer) Annotations() []annotation.Annotation {
	out := make([]annotation.Annotation, len(v.annotations))
	copy(out, v.annotations)
	return out
}

// Highlighted returns the annotation under the pointer, if any.
func (v *Viewer) Highlighted() (annotation.Annotation, bool) {
	for _, a := range v.annotations {
		if a.ID == v.hovered {
			return a, true
		}
	}
	return annotation.Annotation{}, false
}

// MouseMove updates the highlighted annotation for a pointer position in
// viewport coordinates. When annotations overlap the smallest one wins.
func (v *Viewer) MouseMove(ev events.PointerEvent) {
	p, err := v.mapper.ToItemCoordinates(ev.Point())
	if err != nil {
		return
	}

	var top *annotation.Annotation
	for i := range v.annotations {
		a := &v.annotations[i]
		if !a.Shape.Contains(p) {
			continue
		}
		if top == nil || a.Shape.BoundingBox().Area() < top.Shape.BoundingBox().Area() {
			top = a
		}
	}

	switch {
	case top == nil:
		v.MouseOut()
	case top.ID != v.hovered:
		v.MouseOut()
		v.hovered = top.ID
		v.Redraw()
		v.fire(events.MouseOverAnnotation, events.MouseOverAnnotationEvent{Annotation: *top, MouseEvent: ev})
	}
}

// MouseOut clears the highlight, if any.
func (v *Viewer) MouseOut() {
	prev, ok := v.Highlighted()
	if !ok {
		return
	}
	v.hovered = ""
	v.Redraw()
	v.fire(events.MouseOutOfAnnotation, events.MouseOutOfAnnotationEvent{Annotation: prev})
}

// Redraw clears the surface and draws every annotation at the current scale.
func (v *Viewer) Redraw() {
	v.surface.Clear()
	for _, a := range v.annotations {
		shape, err := v.mapper.ShapeToViewport(a.Shape)
		if err == nil {
			err = v.renderers.Draw(v.surface, shape, a.ID == v.hovered)
		}
		if err != nil {
			logging.WithComponent("viewer").Warn("cannot draw annotation",
				slog.String("id", a.ID), slog.Any("err", err))
		}
	}
}

func (v *Viewer) fire(t events.EventType, data interface{}) {
	if v.publisher == nil {
		return
	}
	if err := v.publisher.FireEvent(t, data); err != nil {
		logging.WithComponent("viewer").Error("event dispatch failed",
			slog.String("event", string(t)), slog.Any("err", err))
	}
}

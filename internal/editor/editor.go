// Package editor holds the model behind the popup that names a finished
// selection.
package editor

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"image-annotator/internal/annotation"
	"image-annotator/internal/events"
	"image-annotator/internal/logging"
	"image-annotator/pkg/geometry"
)

// ErrClosed is returned when Save or Cancel is called on an editor that has
// already been saved or canceled.
var ErrClosed = errors.New("editor closed")

// Editor edits one pending annotation. It is created from a completed
// selection and closes after a single Save or Cancel.
type Editor struct {
	publisher events.Publisher
	selector  events.Selector
	bounds    geometry.Bounds
	anchor    geometry.Point
	closed    bool
}

// New creates an editor for a completed selection. The editor is placed
// below the selection's bottom-left corner, offset pixels down.
func New(publisher events.Publisher, ev events.SelectionCompletedEvent, offset float64) *Editor {
	return &Editor{
		publisher: publisher,
		selector:  ev.Selector,
		bounds:    ev.ViewportBounds,
		anchor:    geometry.NewPoint(ev.ViewportBounds.Left, ev.ViewportBounds.Bottom+offset),
	}
}

// Anchor is the viewport position of the editor's top-left corner.
func (e *Editor) Anchor() geometry.Point { return e.anchor }

// Bounds returns the viewport bounds of the selection being edited.
func (e *Editor) Bounds() geometry.Bounds { return e.bounds }

// Closed reports whether Save or Cancel has already run.
func (e *Editor) Closed() bool { return e.closed }

// Save commits the selection with the given text.
func (e *Editor) Save(text string) (annotation.Annotation, error) {
	if e.closed {
		return annotation.Annotation{}, ErrClosed
	}
	if e.selector == nil {
		return annotation.Annotation{}, errors.New("save annotation: no selector")
	}
	shape, err := e.selector.GetShape()
	if err != nil {
		return annotation.Annotation{}, fmt.Errorf("save annotation: %w", err)
	}
	e.closed = true

	a := annotation.New(strings.TrimSpace(text), shape)
	logging.WithComponent("editor").Debug("annotation saved", slog.String("id", a.ID))
	return a, e.publisher.FireEvent(events.AnnotationEditSave, events.AnnotationEditSaveEvent{Annotation: a})
}

// Cancel discards the selection.
func (e *Editor) Cancel() error {
	if e.closed {
		return ErrClosed
	}
	e.closed = true
	logging.WithComponent("editor").Debug("edit canceled")
	return e.publisher.FireEvent(events.AnnotationEditCancel, events.AnnotationEditCancelEvent{})
}

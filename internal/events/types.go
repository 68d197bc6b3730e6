package events

import (
	"image-annotator/internal/annotation"
	"image-annotator/pkg/geometry"
)

// EventType identifies an event. The string values are part of the contract
// with collaborators.
type EventType string

const (
	SelectionStarted   EventType = "SELECTION_STARTED"
	SelectionCompleted EventType = "SELECTION_COMPLETED"
	SelectionCanceled  EventType = "SELECTION_CANCELED"

	AnnotationEditSave   EventType = "ANNOTATION_EDIT_SAVE"
	AnnotationEditCancel EventType = "ANNOTATION_EDIT_CANCEL"
	AnnotationCreated    EventType = "ANNOTATION_CREATED"

	MouseOverAnnotation  EventType = "MOUSE_OVER_ANNOTATION"
	MouseOutOfAnnotation EventType = "MOUSE_OUT_OF_ANNOTATION"

	MouseOverAnnotatableMedia  EventType = "MOUSE_OVER_ANNOTATABLE_MEDIA"
	MouseOutOfAnnotatableMedia EventType = "MOUSE_OUT_OF_ANNOTATABLE_MEDIA"
)

// PointerEvent is a pointer event in viewport coordinates.
type PointerEvent struct {
	OffsetX float64
	OffsetY float64
	Button  int
}

// Point returns the event position.
func (e PointerEvent) Point() geometry.Point {
	return geometry.NewPoint(e.OffsetX, e.OffsetY)
}

// Selector is what event payloads expose of the selector that produced them.
type Selector interface {
	StartSelection(x, y float64)
	StopSelection()
	GetShape() (annotation.Shape, error)
	GetViewportBounds() (geometry.Bounds, bool)
}

// SelectionStartedEvent is the payload of SelectionStarted.
type SelectionStartedEvent struct {
	OffsetX float64
	OffsetY float64
}

// SelectionCompletedEvent is the payload of SelectionCompleted.
type SelectionCompletedEvent struct {
	MouseEvent     PointerEvent
	Shape          annotation.Shape // image coordinates
	ViewportBounds geometry.Bounds
	Selector       Selector
}

// SelectionCanceledEvent is the payload of SelectionCanceled.
type SelectionCanceledEvent struct{}

// AnnotationEditSaveEvent is the payload of AnnotationEditSave.
type AnnotationEditSaveEvent struct {
	Annotation annotation.Annotation
}

// AnnotationEditCancelEvent is the payload of AnnotationEditCancel.
type AnnotationEditCancelEvent struct{}

// AnnotationCreatedEvent is the payload of AnnotationCreated.
type AnnotationCreatedEvent struct {
	Annotation annotation.Annotation
}

// MouseOverAnnotationEvent is the payload of MouseOverAnnotation.
type MouseOverAnnotationEvent struct {
	Annotation annotation.Annotation
	MouseEvent PointerEvent
}

// MouseOutOfAnnotationEvent is the payload of MouseOutOfAnnotation.
type MouseOutOfAnnotationEvent struct {
	Annotation annotation.Annotation
}

// MediaEvent is the payload of the annotatable-media hover events.
type MediaEvent struct {
	MouseEvent PointerEvent
}

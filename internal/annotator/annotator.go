// Package annotator wires the selector, viewer and editor of one image
// together through a shared event broker.
package annotator

import (
	"fmt"
	"log/slog"
	"math"
	"sync"

	"image-annotator/internal/annotation"
	"image-annotator/internal/config"
	"image-annotator/internal/coords"
	"image-annotator/internal/editor"
	"image-annotator/internal/events"
	"image-annotator/internal/logging"
	"image-annotator/internal/render"
	"image-annotator/internal/selection"
	"image-annotator/internal/viewer"
	"image-annotator/pkg/geometry"
)

// Layers is a snapshot of what the annotation layer currently shows.
type Layers struct {
	View        *render.Surface
	ViewOpacity float64
	Edit        *render.Surface // nil while hidden
	HintOpacity float64
}

// ImageAnnotator is the annotation layer over one displayed image. It owns
// the broker and the coordinate mapper and implements the selector's Host.
//
// Pointer methods must be called from a single goroutine. Layers may be read
// from another one.
type ImageAnnotator struct {
	cfg     *config.Config
	broker  *events.Broker
	natural geometry.Size
	display geometry.Size
	mapper  coords.Mapper

	viewSurface *render.Surface
	editSurface *render.Surface
	renderers   *selection.Registry
	selector    *selection.RectDragSelector
	viewer      *viewer.Viewer
	editor      *editor.Editor

	// mu guards the fields read while compositing: display, mapper and
	// the ones below.
	mu          sync.Mutex
	editVisible bool
	viewOpacity float64
	hintOpacity float64

	textSelection bool

	// OnTextSelection, if set, is told when text selection in the host UI
	// should be enabled or disabled.
	OnTextSelection func(enabled bool)
	// OnChange, if set, is called after anything visible changed.
	OnChange func()
}

var _ selection.Host = (*ImageAnnotator)(nil)

// New creates an annotator for an image of the given natural size, initially
// displayed at that size.
func New(natural geometry.Size, cfg *config.Config) (*ImageAnnotator, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if natural.IsEmpty() {
		return nil, fmt.Errorf("new annotator: %w", coords.ErrInvalidScale)
	}

	a := &ImageAnnotator{
		cfg:           cfg,
		broker:        events.NewBroker(),
		natural:       natural,
		display:       natural,
		mapper:        coords.Identity(),
		viewOpacity:   cfg.Viewer.InactiveOpacity,
		textSelection: true,
	}
	w, h := pixelSize(natural)
	a.viewSurface = render.NewSurface(w, h)
	a.editSurface = render.NewSurface(w, h)

	style := cfg.Style()
	a.selector = selection.NewRectDragSelector(a.editSurface, a, style)
	a.renderers = selection.NewRegistry(a.selector)
	a.viewer = viewer.New(a.viewSurface, a, a.renderers)

	a.AddHandler(events.SelectionCompleted, a.onSelectionCompleted)
	a.AddHandler(events.SelectionCanceled, a.onSelectionCanceled)
	a.AddHandler(events.AnnotationEditCancel, a.onEditCancel)
	a.AddHandler(events.AnnotationEditSave, a.onEditSave)
	a.AddHandler(events.MouseOverAnnotation, func(data interface{}) {
		ev := data.(events.MouseOverAnnotationEvent)
		logging.WithComponent("annotator").Debug("mouse over annotation",
			slog.String("id", ev.Annotation.ID), slog.String("text", ev.Annotation.Text))
	})
	a.AddHandler(events.MouseOutOfAnnotation, func(data interface{}) {
		ev := data.(events.MouseOutOfAnnotationEvent)
		logging.WithComponent("annotator").Debug("mouse out of annotation",
			slog.String("id", ev.Annotation.ID))
	})
	return a, nil
}

func pixelSize(s geometry.Size) (int, int) {
	return int(math.Ceil(s.Width)), int(math.Ceil(s.Height))
}

// AddHandler registers a handler on the annotator's broker.
func (a *ImageAnnotator) AddHandler(t events.EventType, h events.Handler) {
	a.broker.AddHandler(t, h)
}

// FireEvent dispatches an event on the annotator's broker.
func (a *ImageAnnotator) FireEvent(t events.EventType, data interface{}) error {
	return a.broker.FireEvent(t, data)
}

// ToItemCoordinates maps a viewport point to image coordinates.
func (a *ImageAnnotator) ToItemCoordinates(p geometry.Point) (geometry.Point, error) {
	return a.mapper.ToItemCoordinates(p)
}

// ToViewportCoordinates maps an image point to viewport coordinates.
func (a *ImageAnnotator) ToViewportCoordinates(p geometry.Point) (geometry.Point, error) {
	return a.mapper.ToViewportCoordinates(p)
}

// SetTextSelection records whether the host UI may select text and forwards
// it to OnTextSelection.
func (a *ImageAnnotator) SetTextSelection(enabled bool) {
	a.textSelection = enabled
	if a.OnTextSelection != nil {
		a.OnTextSelection(enabled)
	}
}

// TextSelectionEnabled reports the last value passed to SetTextSelection.
func (a *ImageAnnotator) TextSelectionEnabled() bool { return a.textSelection }

// Mapper returns the current coordinate mapper.
func (a *ImageAnnotator) Mapper() coords.Mapper {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mapper
}

// NaturalSize returns the intrinsic size of the annotated image.
func (a *ImageAnnotator) NaturalSize() geometry.Size { return a.natural }

// DisplaySize returns the size of the viewport.
func (a *ImageAnnotator) DisplaySize() geometry.Size {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.display
}

// Resize fits the image into a viewport of the given size. A pending edit is
// canceled and a drag in progress is abandoned. Resizing to the current size
// does nothing.
func (a *ImageAnnotator) Resize(display geometry.Size) error {
	if display == a.DisplaySize() {
		return nil
	}
	m, err := coords.Fit(a.natural, display)
	if err != nil {
		return fmt.Errorf("resize annotator: %w", err)
	}
	if a.editor != nil {
		a.cancelEdit()
	} else if a.selector.Active() {
		a.closeEdit()
	}
	a.mu.Lock()
	a.display = display
	a.mapper = m
	a.mu.Unlock()

	w, h := pixelSize(display)
	a.viewSurface.Resize(w, h)
	a.editSurface.Resize(w, h)
	a.viewer.SetMapper(m)
	a.changed()
	return nil
}

// MouseDown starts a new selection. A pending edit is canceled first.
func (a *ImageAnnotator) MouseDown(ev events.PointerEvent) {
	if a.editor != nil {
		a.cancelEdit()
	}
	a.viewer.MouseOut()
	a.setEditVisible(true)
	a.selector.StartSelection(ev.OffsetX, ev.OffsetY)
	a.changed()
}

// MouseMove drives the selection while dragging and hover otherwise.
func (a *ImageAnnotator) MouseMove(ev events.PointerEvent) {
	if a.selector.Active() {
		a.selector.MouseMove(ev.OffsetX, ev.OffsetY)
	} else if a.editor == nil {
		a.viewer.MouseMove(ev)
	}
	a.changed()
}

// MouseUp finishes the selection in progress, if any.
func (a *ImageAnnotator) MouseUp(ev events.PointerEvent) {
	a.selector.MouseUp(ev)
	a.changed()
}

// MouseOverLayer brings the annotations to full opacity and shows the hint.
func (a *ImageAnnotator) MouseOverLayer(ev events.PointerEvent) {
	a.mu.Lock()
	a.viewOpacity = a.cfg.Viewer.ActiveOpacity
	a.hintOpacity = a.cfg.Viewer.HintOpacity
	a.mu.Unlock()
	a.fire(events.MouseOverAnnotatableMedia, events.MediaEvent{MouseEvent: ev})
	a.changed()
}

// MouseOutOfLayer dims the annotations and hides the hint.
func (a *ImageAnnotator) MouseOutOfLayer(ev events.PointerEvent) {
	a.mu.Lock()
	a.viewOpacity = a.cfg.Viewer.InactiveOpacity
	a.hintOpacity = 0
	a.mu.Unlock()
	if !a.selector.Active() {
		a.viewer.MouseOut()
	}
	a.fire(events.MouseOutOfAnnotatableMedia, events.MediaEvent{MouseEvent: ev})
	a.changed()
}

// Layers returns the surfaces to composite over the image.
func (a *ImageAnnotator) Layers() Layers {
	a.mu.Lock()
	defer a.mu.Unlock()
	l := Layers{
		View:        a.viewSurface,
		ViewOpacity: a.viewOpacity,
		HintOpacity: a.hintOpacity,
	}
	if a.editVisible {
		l.Edit = a.editSurface
	}
	return l
}

// HintText is the text shown while the pointer is over the layer.
func (a *ImageAnnotator) HintText() string { return a.cfg.Viewer.HintText }

// EditSurfaceVisible reports whether the selection surface is shown.
func (a *ImageAnnotator) EditSurfaceVisible() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.editVisible
}

// Editor returns the open editor, or nil.
func (a *ImageAnnotator) Editor() *editor.Editor { return a.editor }

// Selector returns the drag selector.
func (a *ImageAnnotator) Selector() *selection.RectDragSelector { return a.selector }

// Viewer returns the viewer of committed annotations.
func (a *ImageAnnotator) Viewer() *viewer.Viewer { return a.viewer }

// Renderers returns the shape renderers used by the viewer.
func (a *ImageAnnotator) Renderers() *selection.Registry { return a.renderers }

// Annotations returns the committed annotations.
func (a *ImageAnnotator) Annotations() []annotation.Annotation {
	return a.viewer.Annotations()
}

// AddAnnotation commits an annotation directly, as when loading a project.
func (a *ImageAnnotator) AddAnnotation(ann annotation.Annotation) {
	a.viewer.AddAnnotation(ann)
	a.changed()
}

// RemoveAnnotation deletes a committed annotation.
func (a *ImageAnnotator) RemoveAnnotation(id string) bool {
	ok := a.viewer.RemoveAnnotation(id)
	if ok {
		a.changed()
	}
	return ok
}

func (a *ImageAnnotator) onSelectionCompleted(data interface{}) {
	ev := data.(events.SelectionCompletedEvent)
	a.editor = editor.New(a, ev, a.cfg.Editor.Offset)
	a.log().Debug("editor opened",
		slog.Float64("x", a.editor.Anchor().X), slog.Float64("y", a.editor.Anchor().Y))
}

func (a *ImageAnnotator) onSelectionCanceled(interface{}) {
	a.closeEdit()
}

func (a *ImageAnnotator) onEditCancel(interface{}) {
	a.closeEdit()
}

func (a *ImageAnnotator) onEditSave(data interface{}) {
	ev := data.(events.AnnotationEditSaveEvent)
	a.setEditVisible(false)
	a.viewer.AddAnnotation(ev.Annotation)
	a.selector.StopSelection()
	a.editor = nil
}

// cancelEdit cancels the pending editor so that listeners see
// ANNOTATION_EDIT_CANCEL. onEditCancel then closes the edit.
func (a *ImageAnnotator) cancelEdit() {
	ed := a.editor
	if err := ed.Cancel(); err != nil {
		a.log().Warn("cancel pending edit", slog.Any("err", err))
	}
	if a.editor == ed {
		a.closeEdit()
	}
}

func (a *ImageAnnotator) closeEdit() {
	a.setEditVisible(false)
	a.selector.StopSelection()
	a.editor = nil
}

func (a *ImageAnnotator) setEditVisible(v bool) {
	a.mu.Lock()
	a.editVisible = v
	a.mu.Unlock()
}

func (a *ImageAnnotator) fire(t events.EventType, data interface{}) {
	if err := a.FireEvent(t, data); err != nil {
		a.log().Error("event dispatch failed", slog.String("event", string(t)), slog.Any("err", err))
	}
}

func (a *ImageAnnotator) changed() {
	if a.OnChange != nil {
		a.OnChange()
	}
}

func (a *ImageAnnotator) log() *slog.Logger {
	return logging.WithComponent("annotator")
}

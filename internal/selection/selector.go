package selection

import (
	"errors"
	"log/slog"

	"image-annotator/internal/annotation"
	"image-annotator/internal/events"
	"image-annotator/internal/logging"
	"image-annotator/pkg/geometry"
)

// ErrNoSelection is returned by GetShape when no drag distance was recorded.
var ErrNoSelection = errors.New("no selection")

// Host is what a selector needs from the annotator that owns it.
type Host interface {
	FireEvent(t events.EventType, data interface{}) error
	ToItemCoordinates(p geometry.Point) (geometry.Point, error)
	// SetTextSelection enables or disables text selection in the host UI.
	SetTextSelection(enabled bool)
}

// Phase is the interaction phase of a selector.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDragging
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDragging:
		return "dragging"
	default:
		return "unknown"
	}
}

type input interface{ isInput() }

type (
	startInput   struct{ at geometry.Point }
	moveInput    struct{ at geometry.Point }
	releaseInput struct{}
	stopInput    struct{}
)

func (startInput) isInput()   {}
func (moveInput) isInput()    {}
func (releaseInput) isInput() {}
func (stopInput) isInput()    {}

// dragState is the selector's state. anchor and current outlive a release so
// the finished shape can still be read; stop discards current.
type dragState struct {
	phase      Phase
	anchor     geometry.Point
	current    geometry.Point
	hasCurrent bool
}

func (s dragState) next(in input) dragState {
	switch in := in.(type) {
	case startInput:
		return dragState{phase: PhaseDragging, anchor: in.at}
	case moveInput:
		if s.phase != PhaseDragging {
			return s
		}
		s.current, s.hasCurrent = in.at, true
		return s
	case releaseInput:
		s.phase = PhaseIdle
		return s
	case stopInput:
		return dragState{phase: PhaseIdle, anchor: s.anchor}
	}
	return s
}

// RectDragSelector is a click-and-drag rectangle selector.
type RectDragSelector struct {
	surface Surface
	host    Host
	style   Style
	state   dragState
}

var (
	_ Renderer        = (*RectDragSelector)(nil)
	_ events.Selector = (*RectDragSelector)(nil)
)

// NewRectDragSelector creates a selector drawing on surface.
func NewRectDragSelector(surface Surface, host Host, style Style) *RectDragSelector {
	return &RectDragSelector{
		surface: surface,
		host:    host,
		style:   style,
	}
}

// SupportedShapeType implements Renderer.
func (s *RectDragSelector) SupportedShapeType() annotation.ShapeType {
	return annotation.ShapeRectangle
}

// Phase returns the current interaction phase.
func (s *RectDragSelector) Phase() Phase {
	return s.state.phase
}

// Active reports whether a drag is in progress.
func (s *RectDragSelector) Active() bool {
	return s.state.phase == PhaseDragging
}

// StartSelection starts a selection at viewport coordinates (x, y).
func (s *RectDragSelector) StartSelection(x, y float64) {
	s.state = s.state.next(startInput{at: geometry.NewPoint(x, y)})
	s.host.SetTextSelection(false)

	logging.WithComponent("selector").Debug("selection started",
		slog.Float64("x", x), slog.Float64("y", y))
	s.fire(events.SelectionStarted, events.SelectionStartedEvent{OffsetX: x, OffsetY: y})
}

// MouseMove updates the live selection while dragging.
func (s *RectDragSelector) MouseMove(x, y float64) {
	if !s.Active() {
		return
	}
	s.state = s.state.next(moveInput{at: geometry.NewPoint(x, y)})
	s.redraw()
}

// MouseUp ends the drag and publishes either a completed or a canceled selection.
func (s *RectDragSelector) MouseUp(ev events.PointerEvent) {
	if !s.Active() {
		return
	}
	s.state = s.state.next(releaseInput{})
	s.host.SetTextSelection(true)

	log := logging.WithComponent("selector")
	shape, err := s.GetShape()
	if err != nil {
		if !errors.Is(err, ErrNoSelection) {
			log.Warn("selection could not be mapped", slog.Any("err", err))
		}
		log.Debug("selection canceled")
		s.fire(events.SelectionCanceled, events.SelectionCanceledEvent{})
		return
	}

	bounds, _ := s.GetViewportBounds()
	log.Debug("selection completed",
		slog.Float64("left", bounds.Left), slog.Float64("top", bounds.Top),
		slog.Float64("right", bounds.Right), slog.Float64("bottom", bounds.Bottom))
	s.fire(events.SelectionCompleted, events.SelectionCompletedEvent{
		MouseEvent:     ev,
		Shape:          shape,
		ViewportBounds: bounds,
		Selector:       s,
	})
}

// StopSelection clears the drawing and returns to idle. The selector can be
// started again afterwards. Calling it while idle only re-clears the surface.
func (s *RectDragSelector) StopSelection() {
	s.surface.Clear()
	s.host.SetTextSelection(true)
	s.state = s.state.next(stopInput{})
}

// GetShape returns the selected shape in image coordinates.
//
// The final point is pulled back by one viewport pixel on each axis before
// mapping, to account for the cursor sitting past the drawn outline.
// TODO: confirm the one-pixel pullback against real pointer devices.
func (s *RectDragSelector) GetShape() (annotation.Shape, error) {
	st := s.state
	if !st.hasCurrent || st.current == st.anchor {
		return annotation.Shape{}, ErrNoSelection
	}

	anchor, err := s.host.ToItemCoordinates(st.anchor)
	if err != nil {
		return annotation.Shape{}, err
	}
	opposite, err := s.host.ToItemCoordinates(st.current.Sub(geometry.NewPoint(1, 1)))
	if err != nil {
		return annotation.Shape{}, err
	}
	return annotation.NewRectShape(geometry.RectFromPoints(anchor, opposite)), nil
}

// ViewportRect returns the normalized selection rectangle in viewport
// coordinates, without the pullback applied by GetShape.
func (s *RectDragSelector) ViewportRect() (geometry.Rectangle, bool) {
	if !s.state.hasCurrent {
		return geometry.Rectangle{}, false
	}
	return geometry.RectFromPoints(s.state.anchor, s.state.current), true
}

// GetViewportBounds returns the edges of the selection in viewport
// coordinates, whichever corner the drag started from.
func (s *RectDragSelector) GetViewportBounds() (geometry.Bounds, bool) {
	if !s.state.hasCurrent {
		return geometry.Bounds{}, false
	}
	return geometry.BoundsOf(s.state.anchor, s.state.current), true
}

// DrawShape implements Renderer.
func (s *RectDragSelector) DrawShape(surface Surface, shape annotation.Shape, highlight bool) {
	RectRenderer{Style: s.style}.DrawShape(surface, shape, highlight)
}

// redraw paints the live outline. The inner stroke is inset toward the
// inside of the outer one, which depends on the drag direction.
func (s *RectDragSelector) redraw() {
	a, c := s.state.anchor, s.state.current
	w := c.X - a.X
	h := c.Y - a.Y

	s.surface.Clear()
	s.surface.SetLineWidth(s.style.LineWidth)
	s.surface.SetStrokeColor(s.style.OutlineColor)
	s.surface.StrokeRect(a.X+0.5, a.Y+0.5, w, h)
	s.surface.SetStrokeColor(s.style.InnerColor)

	switch {
	case w > 0 && h > 0:
		s.surface.StrokeRect(a.X+1.5, a.Y+1.5, w-2, h-2)
	case w > 0 && h < 0:
		s.surface.StrokeRect(a.X+1.5, a.Y-0.5, w-2, h+2)
	case w < 0 && h < 0:
		s.surface.StrokeRect(a.X-0.5, a.Y-0.5, w+2, h+2)
	default:
		s.surface.StrokeRect(a.X-0.5, a.Y+1.5, w+2, h-2)
	}
}

func (s *RectDragSelector) fire(t events.EventType, data interface{}) {
	if err := s.host.FireEvent(t, data); err != nil {
		logging.WithComponent("selector").Error("event dispatch failed",
			slog.String("event", string(t)), slog.Any("err", err))
	}
}

package selection

import (
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-annotator/internal/annotation"
	"image-annotator/internal/coords"
	"image-annotator/internal/events"
	"image-annotator/pkg/colorutil"
	"image-annotator/pkg/geometry"
)

// strokeOp is one StrokeRect call with the state it was drawn with.
type strokeOp struct {
	Color      color.Color
	LineWidth  float64
	X, Y, W, H float64
}

// recordingSurface remembers what was stroked since the last Clear.
type recordingSurface struct {
	clears    int
	color     color.Color
	lineWidth float64
	ops       []strokeOp
}

func (r *recordingSurface) Clear()                       { r.clears++; r.ops = nil }
func (r *recordingSurface) SetStrokeColor(c color.Color) { r.color = c }
func (r *recordingSurface) SetLineWidth(w float64)       { r.lineWidth = w }
func (r *recordingSurface) StrokeRect(x, y, w, h float64) {
	r.ops = append(r.ops, strokeOp{Color: r.color, LineWidth: r.lineWidth, X: x, Y: y, W: w, H: h})
}

type firedEvent struct {
	Type events.EventType
	Data interface{}
}

// fakeHost records fired events and maps through a coords.Mapper.
type fakeHost struct {
	mapper        coords.Mapper
	fired         []firedEvent
	textSelection bool
}

func newFakeHost() *fakeHost {
	return &fakeHost{mapper: coords.Identity(), textSelection: true}
}

func (h *fakeHost) FireEvent(t events.EventType, data interface{}) error {
	h.fired = append(h.fired, firedEvent{Type: t, Data: data})
	return nil
}

func (h *fakeHost) ToItemCoordinates(p geometry.Point) (geometry.Point, error) {
	return h.mapper.ToItemCoordinates(p)
}

func (h *fakeHost) SetTextSelection(enabled bool) { h.textSelection = enabled }

func (h *fakeHost) types() []events.EventType {
	var out []events.EventType
	for _, f := range h.fired {
		out = append(out, f.Type)
	}
	return out
}

func (h *fakeHost) last() firedEvent {
	return h.fired[len(h.fired)-1]
}

func newTestSelector() (*RectDragSelector, *recordingSurface, *fakeHost) {
	surface := &recordingSurface{}
	host := newFakeHost()
	return NewRectDragSelector(surface, host, DefaultStyle()), surface, host
}

func TestStartSelectionFiresStartedAndDisablesTextSelection(t *testing.T) {
	sel, _, host := newTestSelector()

	sel.StartSelection(10, 20)

	assert.True(t, sel.Active())
	assert.False(t, host.textSelection)
	require.Len(t, host.fired, 1)
	assert.Equal(t, events.SelectionStarted, host.fired[0].Type)
	assert.Equal(t, events.SelectionStartedEvent{OffsetX: 10, OffsetY: 20}, host.fired[0].Data)
}

func TestDragCompletesWithShapeAndBounds(t *testing.T) {
	sel, _, host := newTestSelector()

	sel.StartSelection(10, 10)
	sel.MouseMove(50, 40)

	vr, ok := sel.ViewportRect()
	require.True(t, ok)
	assert.Equal(t, geometry.NewRectangle(10, 10, 40, 30), vr)

	sel.MouseUp(events.PointerEvent{OffsetX: 50, OffsetY: 40})

	assert.False(t, sel.Active())
	assert.True(t, host.textSelection)
	require.Equal(t, []events.EventType{events.SelectionStarted, events.SelectionCompleted}, host.types())

	done := host.last().Data.(events.SelectionCompletedEvent)
	assert.Equal(t, geometry.Bounds{Top: 10, Left: 10, Right: 50, Bottom: 40}, done.ViewportBounds)
	assert.Equal(t, events.PointerEvent{OffsetX: 50, OffsetY: 40}, done.MouseEvent)
	assert.Same(t, sel, done.Selector)

	rect, ok := done.Shape.Rectangle()
	require.True(t, ok)
	// The final point is pulled back by one pixel before mapping.
	assert.Equal(t, geometry.NewRectangle(10, 10, 39, 29), rect)

	// The shape is still readable after release, until StopSelection.
	shape, err := sel.GetShape()
	require.NoError(t, err)
	assert.Equal(t, done.Shape, shape)
}

func TestReverseDragHasSameBounds(t *testing.T) {
	sel, _, host := newTestSelector()

	sel.StartSelection(50, 40)
	sel.MouseMove(10, 10)
	sel.MouseUp(events.PointerEvent{OffsetX: 10, OffsetY: 10})

	done := host.last().Data.(events.SelectionCompletedEvent)
	assert.Equal(t, geometry.Bounds{Top: 10, Left: 10, Right: 50, Bottom: 40}, done.ViewportBounds)

	vr, _ := sel.ViewportRect()
	assert.Equal(t, geometry.NewRectangle(10, 10, 40, 30), vr)
}

func TestMouseUpWithoutMoveCancels(t *testing.T) {
	sel, _, host := newTestSelector()

	sel.StartSelection(10, 10)
	_, err := sel.GetShape()
	assert.ErrorIs(t, err, ErrNoSelection)

	sel.MouseUp(events.PointerEvent{OffsetX: 10, OffsetY: 10})

	assert.Equal(t, []events.EventType{events.SelectionStarted, events.SelectionCanceled}, host.types())
	assert.Equal(t, events.SelectionCanceledEvent{}, host.last().Data)
	assert.False(t, sel.Active())
}

func TestMouseUpBackAtAnchorCancels(t *testing.T) {
	sel, _, host := newTestSelector()

	sel.StartSelection(10, 10)
	sel.MouseMove(30, 30)
	sel.MouseMove(10, 10)
	sel.MouseUp(events.PointerEvent{})

	assert.Equal(t, events.SelectionCanceled, host.last().Type)
}

func TestMouseEventsWhileIdleAreIgnored(t *testing.T) {
	sel, surface, host := newTestSelector()

	sel.MouseMove(5, 5)
	sel.MouseUp(events.PointerEvent{})

	assert.Empty(t, host.fired)
	assert.Empty(t, surface.ops)
	_, ok := sel.GetViewportBounds()
	assert.False(t, ok)
}

func TestViewportBoundsAllQuadrants(t *testing.T) {
	anchor := geometry.NewPoint(100, 100)
	for _, d := range []geometry.Point{{X: 30, Y: 20}, {X: 30, Y: -20}, {X: -30, Y: -20}, {X: -30, Y: 20}} {
		sel, _, _ := newTestSelector()
		sel.StartSelection(anchor.X, anchor.Y)
		sel.MouseMove(anchor.X+d.X, anchor.Y+d.Y)

		b, ok := sel.GetViewportBounds()
		require.True(t, ok)
		assert.LessOrEqual(t, b.Left, b.Right, "delta %v", d)
		assert.LessOrEqual(t, b.Top, b.Bottom, "delta %v", d)
		assert.Equal(t, 30.0, b.Width())
		assert.Equal(t, 20.0, b.Height())
	}
}

func TestGetShapeMapsNormalizedCorner(t *testing.T) {
	m, err := coords.NewMapper(0.5, geometry.NewPoint(10, 10))
	require.NoError(t, err)

	for _, tc := range []struct{ ax, ay, bx, by float64 }{
		{20, 20, 61, 41},
		{61, 41, 20, 20},
		{20, 41, 61, 20},
		{61, 20, 20, 41},
	} {
		sel, _, host := newTestSelector()
		host.mapper = m
		sel.StartSelection(tc.ax, tc.ay)
		sel.MouseMove(tc.bx, tc.by)

		shape, err := sel.GetShape()
		require.NoError(t, err)
		rect, _ := shape.Rectangle()

		a, _ := m.ToItemCoordinates(geometry.NewPoint(tc.ax, tc.ay))
		b, _ := m.ToItemCoordinates(geometry.NewPoint(tc.bx-1, tc.by-1))
		assert.InDelta(t, math.Min(a.X, b.X), rect.X, 1e-9)
		assert.InDelta(t, math.Min(a.Y, b.Y), rect.Y, 1e-9)
		assert.InDelta(t, math.Abs(b.X-a.X), rect.Width, 1e-9)
		assert.InDelta(t, math.Abs(b.Y-a.Y), rect.Height, 1e-9)
		assert.True(t, rect.IsNormalized())
	}
}

func TestGetShapeNonFiniteIsReportedAndCancels(t *testing.T) {
	sel, _, host := newTestSelector()
	sel.StartSelection(math.NaN(), 0)
	sel.MouseMove(10, 10)

	_, err := sel.GetShape()
	assert.ErrorIs(t, err, coords.ErrNonFinite)

	sel.MouseUp(events.PointerEvent{})
	assert.Equal(t, events.SelectionCanceled, host.last().Type)
}

func TestLiveRedrawFourCases(t *testing.T) {
	tests := []struct {
		name  string
		to    geometry.Point
		outer [4]float64
		inner [4]float64
	}{
		{"down-right", geometry.Point{X: 50, Y: 40}, [4]float64{10.5, 10.5, 40, 30}, [4]float64{11.5, 11.5, 38, 28}},
		{"up-right", geometry.Point{X: 50, Y: 0}, [4]float64{10.5, 10.5, 40, -10}, [4]float64{11.5, 9.5, 38, -8}},
		{"up-left", geometry.Point{X: 0, Y: 0}, [4]float64{10.5, 10.5, -10, -10}, [4]float64{9.5, 9.5, -8, -8}},
		{"down-left", geometry.Point{X: 0, Y: 40}, [4]float64{10.5, 10.5, -10, 30}, [4]float64{9.5, 11.5, -8, 28}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, surface, _ := newTestSelector()
			sel.StartSelection(10, 10)
			sel.MouseMove(tt.to.X, tt.to.Y)

			require.Len(t, surface.ops, 2)
			outer, inner := surface.ops[0], surface.ops[1]
			assert.Equal(t, tt.outer, [4]float64{outer.X, outer.Y, outer.W, outer.H})
			assert.Equal(t, tt.inner, [4]float64{inner.X, inner.Y, inner.W, inner.H})
			assert.Equal(t, colorutil.Black, outer.Color)
			assert.Equal(t, colorutil.White, inner.Color)
			assert.Equal(t, 1.0, outer.LineWidth)

			// The inner outline stays inside the outer one.
			o := geometry.NewRectangle(outer.X, outer.Y, outer.W, outer.H).Bounds()
			i := geometry.NewRectangle(inner.X, inner.Y, inner.W, inner.H).Bounds()
			assert.Greater(t, i.Left, o.Left)
			assert.Less(t, i.Right, o.Right)
			assert.Greater(t, i.Top, o.Top)
			assert.Less(t, i.Bottom, o.Bottom)
		})
	}
}

func TestEachMoveClearsBeforeRedraw(t *testing.T) {
	sel, surface, _ := newTestSelector()
	sel.StartSelection(0, 0)
	sel.MouseMove(10, 10)
	sel.MouseMove(20, 20)

	assert.Equal(t, 2, surface.clears)
	assert.Len(t, surface.ops, 2)
}

func TestStopSelectionIsIdempotent(t *testing.T) {
	sel, surface, host := newTestSelector()
	sel.StartSelection(0, 0)
	sel.MouseMove(10, 10)

	sel.StopSelection()
	first := *sel
	sel.StopSelection()

	assert.Equal(t, first.state, sel.state)
	assert.Equal(t, PhaseIdle, sel.Phase())
	assert.True(t, host.textSelection)
	assert.Empty(t, surface.ops)
	_, err := sel.GetShape()
	assert.ErrorIs(t, err, ErrNoSelection)
}

func TestStopWhileIdleClearsAndEnablesTextSelection(t *testing.T) {
	sel, surface, host := newTestSelector()
	host.textSelection = false

	sel.StopSelection()

	assert.Equal(t, 1, surface.clears)
	assert.True(t, host.textSelection)
	assert.Empty(t, host.fired)
}

func TestSelectorIsReusableAfterStop(t *testing.T) {
	sel, _, host := newTestSelector()
	sel.StartSelection(0, 0)
	sel.MouseMove(10, 10)
	sel.StopSelection()

	sel.StartSelection(5, 5)
	_, ok := sel.GetViewportBounds()
	assert.False(t, ok, "a new selection starts without a current point")

	sel.MouseMove(15, 25)
	sel.MouseUp(events.PointerEvent{})
	assert.Equal(t, events.SelectionCompleted, host.last().Type)
}

func TestSelectorDrawShapeUsesRectRenderer(t *testing.T) {
	sel, _, _ := newTestSelector()
	surface := &recordingSurface{}

	assert.Equal(t, annotation.ShapeRectangle, sel.SupportedShapeType())
	sel.DrawShape(surface, annotation.NewRectShape(geometry.NewRectangle(10, 10, 40, 30)), false)
	require.Len(t, surface.ops, 2)
}

func TestStateTransitions(t *testing.T) {
	var s dragState
	s = s.next(moveInput{at: geometry.NewPoint(1, 1)})
	assert.False(t, s.hasCurrent, "moves while idle are not recorded")

	s = s.next(startInput{at: geometry.NewPoint(2, 2)})
	assert.Equal(t, PhaseDragging, s.phase)
	assert.False(t, s.hasCurrent)

	s = s.next(moveInput{at: geometry.NewPoint(5, 6)})
	s = s.next(releaseInput{})
	assert.Equal(t, PhaseIdle, s.phase)
	assert.True(t, s.hasCurrent)

	s = s.next(stopInput{})
	assert.False(t, s.hasCurrent)
	assert.Equal(t, "idle", s.phase.String())
}

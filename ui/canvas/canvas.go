// Package canvas provides the widget that shows an image with its
// annotation layer and routes pointer input to the annotator.
package canvas

import (
	"image"
	"image/color"
	"math"
	"sync"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"image-annotator/internal/annotator"
	"image-annotator/internal/events"
	annimage "image-annotator/internal/image"
	"image-annotator/internal/render"
	"image-annotator/pkg/geometry"
)

var background = color.NRGBA{R: 40, G: 40, B: 40, A: 255}

// AnnotationCanvas displays one image fitted to the widget, with committed
// annotations and the live selection composited on top.
//
// Viewport coordinates are widget positions in fyne units.
type AnnotationCanvas struct {
	widget.BaseWidget

	mu        sync.Mutex
	layer     *annimage.Layer
	annotator *annotator.ImageAnnotator

	raster *fynecanvas.Raster
	hint   *fynecanvas.Text

	// Last pointer position while dragging, for DragEnd.
	lastDrag fyne.Position
	dragging bool

	// Last rendered output
	lastOutput *image.NRGBA
}

var (
	_ desktop.Mouseable = (*AnnotationCanvas)(nil)
	_ desktop.Hoverable = (*AnnotationCanvas)(nil)
	_ fyne.Draggable    = (*AnnotationCanvas)(nil)
)

// NewAnnotationCanvas creates an empty canvas.
func NewAnnotationCanvas() *AnnotationCanvas {
	c := &AnnotationCanvas{}
	c.raster = fynecanvas.NewRaster(c.draw)
	c.raster.ScaleMode = fynecanvas.ImageScaleSmooth
	c.hint = fynecanvas.NewText("", color.Transparent)
	c.hint.TextSize = theme.TextSize()
	c.ExtendBaseWidget(c)
	return c
}

// SetImage shows layer, annotated by a. Either may be nil to clear the canvas.
func (c *AnnotationCanvas) SetImage(layer *annimage.Layer, a *annotator.ImageAnnotator) {
	c.mu.Lock()
	c.layer = layer
	c.annotator = a
	c.dragging = false
	c.mu.Unlock()

	if a != nil {
		a.OnChange = c.Refresh
		c.hint.Text = a.HintText()
		c.fit(c.Size())
	}
	c.Refresh()
}

// Annotator returns the annotator of the shown image, or nil.
func (c *AnnotationCanvas) Annotator() *annotator.ImageAnnotator {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.annotator
}

// Layer returns the shown image, or nil.
func (c *AnnotationCanvas) Layer() *annimage.Layer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.layer
}

// GetRenderedOutput returns the last rendered canvas output.
func (c *AnnotationCanvas) GetRenderedOutput() *image.NRGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastOutput
}

// Refresh redraws the canvas.
func (c *AnnotationCanvas) Refresh() {
	if a := c.Annotator(); a != nil {
		alpha := uint8(math.Round(a.Layers().HintOpacity * 255))
		c.hint.Color = color.NRGBA{R: 255, G: 255, B: 255, A: alpha}
		c.hint.Refresh()
	}
	c.raster.Refresh()
}

// MinSize implements fyne.Widget.
func (c *AnnotationCanvas) MinSize() fyne.Size {
	return fyne.NewSize(200, 150)
}

func (c *AnnotationCanvas) fit(size fyne.Size) {
	a := c.Annotator()
	if a == nil || size.Width <= 0 || size.Height <= 0 {
		return
	}
	if err := a.Resize(geometry.NewSize(float64(size.Width), float64(size.Height))); err != nil {
		fyne.LogError("fit annotation canvas", err)
	}
}

func pointerEvent(pos fyne.Position, button desktop.MouseButton) events.PointerEvent {
	return events.PointerEvent{
		OffsetX: float64(pos.X),
		OffsetY: float64(pos.Y),
		Button:  int(button),
	}
}

// MouseDown starts a selection on primary-button press.
func (c *AnnotationCanvas) MouseDown(ev *desktop.MouseEvent) {
	a := c.Annotator()
	if a == nil || ev.Button != desktop.MouseButtonPrimary {
		return
	}
	c.mu.Lock()
	c.lastDrag = ev.Position
	c.mu.Unlock()
	a.MouseDown(pointerEvent(ev.Position, ev.Button))
}

// MouseUp finishes a selection. It may arrive before or after DragEnd; the
// second call is ignored by the selector.
func (c *AnnotationCanvas) MouseUp(ev *desktop.MouseEvent) {
	a := c.Annotator()
	if a == nil || ev.Button != desktop.MouseButtonPrimary {
		return
	}
	c.mu.Lock()
	c.dragging = false
	c.mu.Unlock()
	a.MouseUp(pointerEvent(ev.Position, ev.Button))
}

// Dragged extends the selection. fyne reports moves with a button held as
// drags rather than MouseMoved.
func (c *AnnotationCanvas) Dragged(ev *fyne.DragEvent) {
	a := c.Annotator()
	if a == nil {
		return
	}
	c.mu.Lock()
	c.lastDrag = ev.Position
	c.dragging = true
	c.mu.Unlock()
	a.MouseMove(pointerEvent(ev.Position, desktop.MouseButtonPrimary))
}

// DragEnd finishes the selection at the last dragged position.
func (c *AnnotationCanvas) DragEnd() {
	a := c.Annotator()
	if a == nil {
		return
	}
	c.mu.Lock()
	pos, was := c.lastDrag, c.dragging
	c.dragging = false
	c.mu.Unlock()
	if was {
		a.MouseUp(pointerEvent(pos, desktop.MouseButtonPrimary))
	}
}

// MouseIn activates the annotation layer.
func (c *AnnotationCanvas) MouseIn(ev *desktop.MouseEvent) {
	if a := c.Annotator(); a != nil {
		a.MouseOverLayer(pointerEvent(ev.Position, ev.Button))
	}
}

// MouseMoved updates annotation hover.
func (c *AnnotationCanvas) MouseMoved(ev *desktop.MouseEvent) {
	if a := c.Annotator(); a != nil {
		a.MouseMove(pointerEvent(ev.Position, ev.Button))
	}
}

// MouseOut dims the annotation layer.
func (c *AnnotationCanvas) MouseOut() {
	if a := c.Annotator(); a != nil {
		a.MouseOutOfLayer(events.PointerEvent{})
	}
}

// draw is the raster drawing function. It composites at the annotator's
// display size and lets the raster scale to device pixels.
func (c *AnnotationCanvas) draw(w, h int) image.Image {
	c.mu.Lock()
	layer, a := c.layer, c.annotator
	c.mu.Unlock()

	if layer == nil || a == nil {
		return render.Compose(max(w, 1), max(h, 1), background)
	}

	display := a.DisplaySize()
	dw, dh := int(math.Ceil(display.Width)), int(math.Ceil(display.Height))
	rect := a.Mapper().DisplayRect(a.NaturalSize())
	scaled := layer.Scaled(int(math.Round(rect.Width)), int(math.Round(rect.Height)))

	l := a.Layers()
	var layers []render.Layer
	if scaled != nil {
		at := image.Pt(int(math.Round(rect.X)), int(math.Round(rect.Y)))
		layers = append(layers, render.Layer{Image: scaled, At: at, Opacity: 1})
	}
	layers = append(layers, render.Layer{Image: l.View.Snapshot(), Opacity: l.ViewOpacity})
	if l.Edit != nil {
		layers = append(layers, render.Layer{Image: l.Edit.Snapshot(), Opacity: 1})
	}
	out := render.Compose(dw, dh, background, layers...)

	c.mu.Lock()
	c.lastOutput = out
	c.mu.Unlock()
	return out
}

// CreateRenderer implements fyne.Widget.
func (c *AnnotationCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &annotationCanvasRenderer{canvas: c}
}

type annotationCanvasRenderer struct {
	canvas *AnnotationCanvas
}

func (r *annotationCanvasRenderer) Layout(size fyne.Size) {
	r.canvas.raster.Resize(size)
	r.canvas.raster.Move(fyne.NewPos(0, 0))
	pad := theme.Padding()
	r.canvas.hint.Move(fyne.NewPos(pad, pad))
	r.canvas.hint.Resize(r.canvas.hint.MinSize())
	r.canvas.fit(size)
}

func (r *annotationCanvasRenderer) MinSize() fyne.Size {
	return r.canvas.MinSize()
}

func (r *annotationCanvasRenderer) Refresh() {
	r.canvas.raster.Refresh()
	r.canvas.hint.Refresh()
}

func (r *annotationCanvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.canvas.raster, r.canvas.hint}
}

func (r *annotationCanvasRenderer) Destroy() {}

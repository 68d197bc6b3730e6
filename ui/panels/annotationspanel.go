// Package panels provides UI panels for the application.
package panels

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"image-annotator/internal/annotation"
	"image-annotator/internal/app"
)

// AnnotationsPanel lists the annotations of the open image.
type AnnotationsPanel struct {
	state     *app.State
	window    fyne.Window
	container fyne.CanvasObject

	list        *widget.List
	detailCard  *widget.Card
	deleteBtn   *widget.Button
	items       []annotation.Annotation
	selectedIdx int
}

// NewAnnotationsPanel creates the panel.
func NewAnnotationsPanel(state *app.State) *AnnotationsPanel {
	ap := &AnnotationsPanel{
		state:       state,
		selectedIdx: -1,
	}

	ap.list = widget.NewList(
		func() int {
			return len(ap.items)
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("Annotation text")
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id < len(ap.items) {
				obj.(*widget.Label).SetText(Label(ap.items[id]))
			}
		},
	)
	ap.list.OnSelected = func(id widget.ListItemID) {
		ap.selectedIdx = id
		ap.showDetail()
	}
	ap.list.OnUnselected = func(widget.ListItemID) {
		ap.selectedIdx = -1
		ap.showDetail()
	}

	ap.detailCard = widget.NewCard("Selected Annotation", "", widget.NewLabel(""))
	ap.deleteBtn = widget.NewButtonWithIcon("Delete", theme.DeleteIcon(), ap.deleteSelected)
	ap.deleteBtn.Disable()

	ap.container = container.NewBorder(
		nil,
		container.NewVBox(ap.detailCard, ap.deleteBtn),
		nil, nil,
		ap.list,
	)
	return ap
}

// Label formats an annotation for the list.
func Label(a annotation.Annotation) string {
	text := a.Text
	if text == "" {
		text = "(no text)"
	}
	r := a.Shape.BoundingBox()
	return fmt.Sprintf("%s  %.0f×%.0f", text, r.Width, r.Height)
}

// SetWindow sets the parent window for dialogs.
func (ap *AnnotationsPanel) SetWindow(w fyne.Window) {
	ap.window = w
}

// Container returns the panel container.
func (ap *AnnotationsPanel) Container() fyne.CanvasObject {
	return ap.container
}

// Sync reloads the list from the open image.
func (ap *AnnotationsPanel) Sync() {
	ap.items = nil
	if ap.state.Annotator != nil {
		ap.items = ap.state.Annotator.Annotations()
	}
	ap.selectedIdx = -1
	ap.list.UnselectAll()
	ap.list.Refresh()
	ap.showDetail()
}

// Len returns the number of listed annotations.
func (ap *AnnotationsPanel) Len() int { return len(ap.items) }

// Select selects the annotation at index i.
func (ap *AnnotationsPanel) Select(i int) { ap.list.Select(i) }

func (ap *AnnotationsPanel) showDetail() {
	if ap.selectedIdx < 0 || ap.selectedIdx >= len(ap.items) {
		ap.detailCard.SetSubTitle("")
		ap.detailCard.SetContent(widget.NewLabel(""))
		ap.deleteBtn.Disable()
		return
	}
	a := ap.items[ap.selectedIdx]
	r := a.Shape.BoundingBox()
	ap.detailCard.SetSubTitle(a.Created.Format("2006-01-02 15:04"))
	body := widget.NewLabel(fmt.Sprintf("%s\n\nx %.0f  y %.0f\n%.0f × %.0f px", a.Text, r.X, r.Y, r.Width, r.Height))
	body.Wrapping = fyne.TextWrapWord
	ap.detailCard.SetContent(body)
	ap.deleteBtn.Enable()
}

// deleteSelected removes the selected annotation after confirmation.
func (ap *AnnotationsPanel) deleteSelected() {
	if ap.selectedIdx < 0 || ap.selectedIdx >= len(ap.items) {
		return
	}
	a := ap.items[ap.selectedIdx]

	remove := func(confirmed bool) {
		if confirmed && ap.state.RemoveAnnotation(a.ID) {
			ap.Sync()
		}
	}
	if ap.window == nil {
		remove(true)
		return
	}
	dialog.ShowConfirm("Delete Annotation",
		fmt.Sprintf("Delete annotation %q?", Label(a)),
		remove, ap.window)
}

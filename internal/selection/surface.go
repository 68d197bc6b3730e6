// Package selection implements the drag selector that turns pointer input
// into shapes, and the renderer contract used to draw those shapes.
package selection

import (
	"image/color"

	"image-annotator/pkg/colorutil"
)

// Surface is a 2D drawing target with canvas-like stroke semantics.
// Rectangles may have negative width or height.
type Surface interface {
	Clear()
	SetStrokeColor(c color.Color)
	SetLineWidth(w float64)
	StrokeRect(x, y, w, h float64)
}

// Style holds the colors and line widths used for outlines.
type Style struct {
	OutlineColor       color.Color // outer stroke
	InnerColor         color.Color // inner stroke of normal shapes and the live drag
	HighlightColor     color.Color // inner stroke of highlighted shapes
	LineWidth          float64
	HighlightLineWidth float64
}

// DefaultStyle returns the black/white outline with a yellow highlight.
func DefaultStyle() Style {
	return Style{
		OutlineColor:       colorutil.Black,
		InnerColor:         colorutil.White,
		HighlightColor:     colorutil.Highlight,
		LineWidth:          1,
		HighlightLineWidth: 1.2,
	}
}

package render

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Layer is an image placed on a composition with an opacity.
type Layer struct {
	Image   image.Image
	At      image.Point
	Opacity float64
}

// Compose paints layers in order over an opaque background of the given size.
func Compose(w, h int, background color.Color, layers ...Layer) *image.NRGBA {
	out := imaging.New(w, h, background)
	for _, l := range layers {
		if l.Image == nil || l.Opacity <= 0 {
			continue
		}
		out = imaging.Overlay(out, l.Image, l.At, l.Opacity)
	}
	return out
}

// Package image loads the pictures that get annotated.
package image

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"image-annotator/pkg/geometry"
)

// Layer is a loaded image together with a cached display-sized copy.
type Layer struct {
	Path  string      // Original file path
	Image image.Image // Decoded image, EXIF orientation applied

	mu     sync.Mutex
	scaled *image.NRGBA
}

// Load loads an image from path. JPEG EXIF orientation is applied so the
// image's natural size is the one it is displayed at.
func Load(path string) (*Layer, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to load image %s: %w", filepath.Base(path), err)
	}
	return &Layer{Path: path, Image: img}, nil
}

// FromImage wraps an already decoded image.
func FromImage(path string, img image.Image) *Layer {
	return &Layer{Path: path, Image: img}
}

// Width returns the image width in pixels.
func (l *Layer) Width() int {
	if l.Image == nil {
		return 0
	}
	return l.Image.Bounds().Dx()
}

// Height returns the image height in pixels.
func (l *Layer) Height() int {
	if l.Image == nil {
		return 0
	}
	return l.Image.Bounds().Dy()
}

// Size returns the natural image dimensions.
func (l *Layer) Size() geometry.Size {
	return geometry.NewSize(float64(l.Width()), float64(l.Height()))
}

// PixelAt returns the color at the specified pixel coordinates.
func (l *Layer) PixelAt(x, y int) color.Color {
	if l.Image == nil {
		return color.Black
	}
	p := image.Pt(x, y).Add(l.Image.Bounds().Min)
	if !p.In(l.Image.Bounds()) {
		return color.Black
	}
	return l.Image.At(p.X, p.Y)
}

// Scaled returns the image resized to w×h. The last result is cached, so
// repeated redraws at one size resample only once.
func (l *Layer) Scaled(w, h int) *image.NRGBA {
	if l.Image == nil || w < 1 || h < 1 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.scaled != nil && l.scaled.Bounds().Dx() == w && l.scaled.Bounds().Dy() == h {
		return l.scaled
	}
	l.scaled = imaging.Resize(l.Image, w, h, imaging.Linear)
	return l.scaled
}

// SupportedFormats returns the list of supported image extensions.
func SupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp"}
}

// IsImageFile checks if the given path has a supported image extension.
func IsImageFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}

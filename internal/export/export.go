// Package export writes an image with its annotations burned in.
package export

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"image-annotator/internal/annotation"
	"image-annotator/internal/logging"
	"image-annotator/internal/render"
	"image-annotator/internal/selection"
)

// ErrUnsupportedFormat is returned for output extensions no encoder handles.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Options controls encoder quality.
type Options struct {
	JPEGQuality int
	WebPQuality int
}

// DefaultOptions returns the encoder settings used when none are configured.
func DefaultOptions() Options {
	return Options{JPEGQuality: 90, WebPQuality: 90}
}

// Render draws annotations over img at its natural size. Shapes are in image
// coordinates, so no mapping is applied.
func Render(img image.Image, anns []annotation.Annotation, renderers *selection.Registry) *image.NRGBA {
	b := img.Bounds()
	overlay := render.NewSurface(b.Dx(), b.Dy())
	for _, a := range anns {
		if err := renderers.Draw(overlay, a.Shape, false); err != nil {
			logging.WithComponent("export").Warn("skipping annotation",
				slog.String("id", a.ID), slog.Any("err", err))
		}
	}
	return render.Compose(b.Dx(), b.Dy(), color.Black,
		render.Layer{Image: img, Opacity: 1},
		render.Layer{Image: overlay.Snapshot(), Opacity: 1},
	)
}

// Save encodes img to path, choosing the format from the extension.
func Save(path string, img image.Image, opts Options) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".webp" {
		return saveWebP(path, img, opts)
	}

	if _, err := imaging.FormatFromFilename(path); err != nil {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err := imaging.Save(img, path, imaging.JPEGQuality(opts.JPEGQuality)); err != nil {
		return fmt.Errorf("failed to export %s: %w", filepath.Base(path), err)
	}
	logging.WithComponent("export").Info("exported", slog.String("path", path))
	return nil
}

func saveWebP(path string, img image.Image, opts Options) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to export %s: %w", filepath.Base(path), err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to export %s: %w", filepath.Base(path), cerr)
		}
	}()

	if err := webp.Encode(f, img, &webp.Options{Quality: float32(opts.WebPQuality)}); err != nil {
		return fmt.Errorf("failed to encode webp: %w", err)
	}
	logging.WithComponent("export").Info("exported", slog.String("path", path))
	return nil
}

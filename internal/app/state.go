// Package app holds the application state shared by the main window: the
// open image, its annotator and its annotation sidecar.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"image-annotator/internal/annotator"
	"image-annotator/internal/config"
	"image-annotator/internal/events"
	"image-annotator/internal/export"
	"image-annotator/internal/image"
	"image-annotator/internal/logging"
	"image-annotator/internal/project"
)

// ErrNoImage is returned by operations that need an open image.
var ErrNoImage = errors.New("no image loaded")

// Application events, fired on the state's broker.
const (
	EventImageLoaded      events.EventType = "IMAGE_LOADED"
	EventAnnotationsSaved events.EventType = "ANNOTATIONS_SAVED"
	EventExported         events.EventType = "EXPORTED"
	EventModified         events.EventType = "MODIFIED"
)

// State holds the application state.
type State struct {
	mu sync.RWMutex

	Config *config.Config

	ImagePath string
	Image     *image.Layer
	Annotator *annotator.ImageAnnotator
	Project   *project.File
	Modified  bool

	broker *events.Broker
}

// NewState creates an empty application state.
func NewState(cfg *config.Config) *State {
	if cfg == nil {
		cfg = config.Default()
	}
	return &State{
		Config: cfg,
		broker: events.NewBroker(),
	}
}

// On registers a listener for an application event.
func (s *State) On(event events.EventType, listener events.Handler) {
	s.broker.AddHandler(event, listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event events.EventType, data interface{}) {
	if err := s.broker.FireEvent(event, data); err != nil {
		logging.WithComponent("app").Error("listener failed",
			slog.String("event", string(event)), slog.Any("err", err))
	}
}

// SetModified marks the annotations as modified and emits an event.
func (s *State) SetModified(modified bool) {
	s.mu.Lock()
	s.Modified = modified
	s.mu.Unlock()
	s.Emit(EventModified, modified)
}

// IsModified reports whether there are unsaved annotation changes.
func (s *State) IsModified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Modified
}

// LoadImage opens an image, builds its annotator and restores the
// annotations from its sidecar if there is one.
func (s *State) LoadImage(path string) error {
	layer, err := image.Load(path)
	if err != nil {
		return err
	}
	proj, err := project.LoadForImage(path)
	if err != nil {
		return err
	}
	a, err := annotator.New(layer.Size(), s.Config)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	for _, ann := range proj.Annotations {
		a.AddAnnotation(ann)
	}

	a.AddHandler(events.AnnotationCreated, func(interface{}) { s.SetModified(true) })

	s.mu.Lock()
	s.ImagePath = path
	s.Image = layer
	s.Annotator = a
	s.Project = proj
	s.Modified = false
	s.mu.Unlock()

	logging.WithComponent("app").Info("image loaded",
		slog.String("path", path),
		slog.Int("width", layer.Width()), slog.Int("height", layer.Height()),
		slog.Int("annotations", len(proj.Annotations)))
	s.Emit(EventImageLoaded, path)
	return nil
}

// RemoveAnnotation deletes a committed annotation from the open image.
func (s *State) RemoveAnnotation(id string) bool {
	s.mu.RLock()
	a := s.Annotator
	s.mu.RUnlock()
	if a == nil || !a.RemoveAnnotation(id) {
		return false
	}
	s.SetModified(true)
	return true
}

// SaveAnnotations writes the annotations of the open image to its sidecar.
func (s *State) SaveAnnotations() error {
	s.mu.RLock()
	a, proj, path := s.Annotator, s.Project, s.ImagePath
	s.mu.RUnlock()
	if a == nil {
		return ErrNoImage
	}

	proj.Annotations = a.Annotations()
	sidecar := project.SidecarPath(path)
	if err := proj.Save(sidecar); err != nil {
		return err
	}
	s.SetModified(false)
	s.Emit(EventAnnotationsSaved, sidecar)
	return nil
}

// Export renders the open image with its annotations to path.
func (s *State) Export(path string) error {
	s.mu.RLock()
	a, layer := s.Annotator, s.Image
	s.mu.RUnlock()
	if a == nil {
		return ErrNoImage
	}

	out := export.Render(layer.Image, a.Annotations(), a.Renderers())
	opts := export.Options{
		JPEGQuality: s.Config.Export.JPEGQuality,
		WebPQuality: s.Config.Export.WebPQuality,
	}
	if err := export.Save(path, out, opts); err != nil {
		return err
	}
	s.Emit(EventExported, path)
	return nil
}

// Package project persists the annotations of an image in a JSON sidecar
// file next to it.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"image-annotator/internal/annotation"
)

// CurrentVersion is the sidecar format version written by Save.
const CurrentVersion = 1

// SidecarSuffix is appended to an image path to name its sidecar.
const SidecarSuffix = ".annotations.json"

// File represents an annotation sidecar (<image>.annotations.json).
type File struct {
	Version  int       `json:"version"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`

	// Image path (relative to the sidecar)
	Image string `json:"image"`

	Annotations []annotation.Annotation `json:"annotations"`
}

// New creates an empty sidecar for the image at imagePath.
func New(imagePath string) *File {
	now := time.Now()
	p := &File{
		Version:     CurrentVersion,
		Created:     now,
		Modified:    now,
		Annotations: []annotation.Annotation{},
	}
	p.SetImage(SidecarPath(imagePath), imagePath)
	return p
}

// SidecarPath returns the sidecar path for an image.
func SidecarPath(imagePath string) string {
	return imagePath + SidecarSuffix
}

// Load loads a sidecar file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read annotations: %w", err)
	}

	var proj File
	if err := json.Unmarshal(data, &proj); err != nil {
		return nil, fmt.Errorf("failed to parse annotations %s: %w", filepath.Base(path), err)
	}
	if proj.Version > CurrentVersion {
		return nil, fmt.Errorf("annotations %s: unsupported version %d", filepath.Base(path), proj.Version)
	}

	return &proj, nil
}

// LoadForImage loads the sidecar of imagePath, or returns a new empty one if
// the image has none yet.
func LoadForImage(imagePath string) (*File, error) {
	p, err := Load(SidecarPath(imagePath))
	if errors.Is(err, os.ErrNotExist) {
		return New(imagePath), nil
	}
	return p, err
}

// Save writes the sidecar to path.
func (p *File) Save(path string) error {
	p.Modified = time.Now()
	if p.Annotations == nil {
		p.Annotations = []annotation.Annotation{}
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode annotations: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write annotations: %w", err)
	}
	return nil
}

// SetImage sets the image path (relative to the sidecar).
func (p *File) SetImage(sidecarPath, imagePath string) {
	rel, err := filepath.Rel(filepath.Dir(sidecarPath), imagePath)
	if err != nil {
		p.Image = imagePath
	} else {
		p.Image = rel
	}
}

// ImagePath returns the absolute path to the image.
func (p *File) ImagePath(sidecarPath string) string {
	if p.Image == "" {
		return ""
	}
	if filepath.IsAbs(p.Image) {
		return p.Image
	}
	return filepath.Join(filepath.Dir(sidecarPath), p.Image)
}

// Package annotation defines shapes and the annotations built from them.
package annotation

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"image-annotator/pkg/geometry"
)

// ShapeType tags the kind of geometry a Shape carries.
type ShapeType string

const (
	ShapeRectangle ShapeType = "rect"
)

var (
	// ErrGeometryMismatch is returned when a geometry does not match its shape type.
	ErrGeometryMismatch = errors.New("geometry does not match shape type")
	// ErrUnknownShapeType is returned when decoding a shape of an unsupported type.
	ErrUnknownShapeType = errors.New("unknown shape type")
)

// Geometry is the payload of a Shape. Each shape kind has its own concrete type.
type Geometry interface {
	// ShapeType reports which shape kind this geometry belongs to.
	ShapeType() ShapeType
	// BoundingBox returns the normalized axis-aligned extent of the geometry.
	BoundingBox() geometry.Rectangle
}

// Rect is the geometry of a rectangle shape.
type Rect geometry.Rectangle

func (Rect) ShapeType() ShapeType { return ShapeRectangle }

func (r Rect) BoundingBox() geometry.Rectangle {
	return geometry.Rectangle(r).Normalize()
}

// Shape is a tagged geometric region.
type Shape struct {
	Type     ShapeType
	Geometry Geometry
}

// NewShape returns a shape whose geometry is checked against the declared type.
func NewShape(t ShapeType, g Geometry) (Shape, error) {
	if g == nil || g.ShapeType() != t {
		return Shape{}, fmt.Errorf("%w: %q", ErrGeometryMismatch, t)
	}
	return Shape{Type: t, Geometry: g}, nil
}

// NewRectShape returns a rectangle shape with normalized geometry.
func NewRectShape(r geometry.Rectangle) Shape {
	return Shape{Type: ShapeRectangle, Geometry: Rect(r.Normalize())}
}

// Rectangle returns the geometry as a rectangle if the shape is one.
func (s Shape) Rectangle() (geometry.Rectangle, bool) {
	r, ok := s.Geometry.(Rect)
	return geometry.Rectangle(r), ok
}

// BoundingBox returns the extent of the shape's geometry.
func (s Shape) BoundingBox() geometry.Rectangle {
	if s.Geometry == nil {
		return geometry.Rectangle{}
	}
	return s.Geometry.BoundingBox()
}

// Contains reports whether p lies within the shape.
func (s Shape) Contains(p geometry.Point) bool {
	if s.Geometry == nil {
		return false
	}
	return s.Geometry.BoundingBox().Contains(p)
}

type shapeJSON struct {
	Type     ShapeType       `json:"type"`
	Geometry json.RawMessage `json:"geometry"`
}

// MarshalJSON implements json.Marshaler.
func (s Shape) MarshalJSON() ([]byte, error) {
	g, err := json.Marshal(s.Geometry)
	if err != nil {
		return nil, err
	}
	return json.Marshal(shapeJSON{Type: s.Type, Geometry: g})
}

// UnmarshalJSON implements json.Unmarshaler, dispatching on the type tag.
func (s *Shape) UnmarshalJSON(data []byte) error {
	var raw shapeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Type {
	case ShapeRectangle:
		var r geometry.Rectangle
		if err := json.Unmarshal(raw.Geometry, &r); err != nil {
			return fmt.Errorf("decode rect geometry: %w", err)
		}
		*s = NewRectShape(r)
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownShapeType, raw.Type)
	}
}

// Annotation is a shape in image coordinates plus the text attached to it.
type Annotation struct {
	ID      string    `json:"id"`
	Text    string    `json:"text"`
	Shape   Shape     `json:"shape"`
	Created time.Time `json:"created"`
}

// New creates an annotation with a fresh ID.
func New(text string, shape Shape) Annotation {
	return Annotation{
		ID:      newID(),
		Text:    text,
		Shape:   shape,
		Created: time.Now(),
	}
}

func newID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("a%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}

package geometry

import (
	"fmt"

	"github.com/san-kum/demsim/internal/dynamo"
)

// Shape is the kind of volume a geometry describes.
type Shape int

const (
	STL Shape = iota
	Sphere
	Box
	Cylinder
	HollowSphere
)

var shapeNames = map[Shape]string{
	STL:          "stl",
	Sphere:       "sphere",
	Box:          "box",
	Cylinder:     "cylinder",
	HollowSphere: "hollow_sphere",
}

func (s Shape) String() string {
	if n, ok := shapeNames[s]; ok {
		return n
	}
	return "unknown"
}

// ParseShape maps a configuration name onto a Shape.
func ParseShape(name string) (Shape, error) {
	for s, n := range shapeNames {
		if n == name {
			return s, nil
		}
	}
	return STL, fmt.Errorf("shape %q: %w", name, dynamo.ErrInvalidGeometry)
}

func (s Shape) MarshalYAML() (any, error) { return s.String(), nil }

func (s *Shape) UnmarshalYAML(unmarshal func(any) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}
	v, err := ParseShape(name)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Sizes holds the shape specific dimensions. Unused fields are ignored.
type Sizes struct {
	Width       float64 `yaml:"width,omitempty" json:"width,omitempty"`
	Depth       float64 `yaml:"depth,omitempty" json:"depth,omitempty"`
	Height      float64 `yaml:"height,omitempty" json:"height,omitempty"`
	Radius      float64 `yaml:"radius,omitempty" json:"radius,omitempty"`
	InnerRadius float64 `yaml:"inner_radius,omitempty" json:"inner_radius,omitempty"`
}

func (s Sizes) scaled(f float64) Sizes {
	return Sizes{
		Width:       s.Width * f,
		Depth:       s.Depth * f,
		Height:      s.Height * f,
		Radius:      s.Radius * f,
		InnerRadius: s.InnerRadius * f,
	}
}

// Validate checks that the sizes describe a non-degenerate volume of the shape.
func (s Sizes) Validate(shape Shape) error {
	bad := func(msg string) error {
		return fmt.Errorf("%s: %s: %w", shape, msg, dynamo.ErrInvalidGeometry)
	}
	switch shape {
	case Sphere:
		if s.Radius <= 0 {
			return bad("radius must be positive")
		}
	case Box:
		if s.Width <= 0 || s.Depth <= 0 || s.Height <= 0 {
			return bad("width, depth and height must be positive")
		}
	case Cylinder:
		if s.Radius <= 0 || s.Height <= 0 {
			return bad("radius and height must be positive")
		}
	case HollowSphere:
		if s.InnerRadius <= 0 || s.Radius <= s.InnerRadius {
			return bad("need 0 < inner radius < radius")
		}
	}
	return nil
}

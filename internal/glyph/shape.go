// Package glyph defines the glyph descriptor derived from a resonance
// vector: the shape family, animation frequency, color, and nesting
// complexity the renderer draws from.
package glyph

import (
	"encoding/json"
	"fmt"
)

// Shape identifies one of the six glyph geometries.
type Shape uint8

const (
	ShapeCircle Shape = iota
	ShapeTriangle
	ShapeSquare
	ShapeHexagon
	ShapeStar
	ShapeSpiral

	shapeCount = 6
)

var shapeNames = [shapeCount]string{
	"circle",
	"triangle",
	"square",
	"hexagon",
	"star",
	"spiral",
}

func (s Shape) String() string {
	if int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return fmt.Sprintf("shape(%d)", uint8(s))
}

// ParseShape converts a shape name back to its constant.
func ParseShape(name string) (Shape, error) {
	for i, n := range shapeNames {
		if n == name {
			return Shape(i), nil
		}
	}
	return ShapeCircle, fmt.Errorf("unknown shape %q", name)
}

// MarshalJSON encodes the shape as its lowercase name, matching the
// records older clients already hold.
func (s Shape) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Shape) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("decode shape: %w", err)
	}
	parsed, err := ParseShape(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

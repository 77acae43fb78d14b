package glyph

// Descriptor captures everything the renderer needs to draw one
// glyph: the shape family, pulse frequency, color, and how many
// nested copies the geometry carries.
type Descriptor struct {
	Shape      Shape     `json:"shape"`
	Frequency  float64   `json:"frequency"`
	Color      ColorSpec `json:"color"`
	Complexity int       `json:"complexity"`
}

// DefaultDescriptor is the descriptor embedded in the default vector:
// a slow indigo circle. Analysis failures surface as this glyph.
func DefaultDescriptor() Descriptor {
	return Descriptor{
		Shape:      ShapeCircle,
		Frequency:  0.5,
		Color:      "#6366f1",
		Complexity: 3,
	}
}

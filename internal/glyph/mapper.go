package glyph

import (
	"math"

	"github.com/talgya/resonance/internal/vmath"
)

// FromMetrics derives a descriptor from the three glyph-facing scores.
// Inputs are clamped to [0, 100] first, so vectors loaded from old
// records cannot push the shape index or color out of range.
//
// The mapping is pure: identical scores always yield an identical
// descriptor.
func FromMetrics(cognitive, emotional, symbolic float64) Descriptor {
	cognitive = vmath.Clamp(cognitive, 0, 100)
	emotional = vmath.Clamp(emotional, 0, 100)
	symbolic = vmath.Clamp(symbolic, 0, 100)

	idx := int(math.Floor((cognitive+emotional)/33)) % shapeCount
	hue := math.Floor(((cognitive + emotional + symbolic) / 3) * 3.6)
	sat := math.Max(50, emotional)
	light := math.Max(30, math.Min(70, 100-cognitive))

	return Descriptor{
		Shape:      Shape(idx),
		Frequency:  math.Max(0.5, emotional/100),
		Color:      HSLSpec(hue, sat, light),
		Complexity: int(math.Floor((cognitive + symbolic) / 20)),
	}
}

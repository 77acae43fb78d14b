// Package resonance scores free text into a multi-dimensional
// resonance signature: four scalar metrics, the emergence points where
// individual sentences spike, a composed meaning signature, and the
// glyph descriptor the renderer draws from.
//
// Scoring is deterministic and local. The same text always produces
// the same vector, and no call ever fails: malformed or empty input
// degrades to a fixed default vector instead.
package resonance

import "github.com/talgya/resonance/internal/glyph"

// Vector is the resonance signature of one block of text. All scalar
// metrics are clamped to [0, 100] at the point of computation.
type Vector struct {
	CognitiveLoad      float64          `json:"cognitiveLoad"`
	EmotionalIntensity float64          `json:"emotionalIntensity"`
	SymbolicDensity    float64          `json:"symbolicDensity"`
	TemporalFlow       float64          `json:"temporalFlow"`
	EmergencePoints    []float64        `json:"emergencePoints"`
	MeaningSignature   string           `json:"meaningSignature"`
	Glyph              glyph.Descriptor `json:"glyphDescriptor"`
}

// Default is the vector substituted for empty input or an internal
// scoring failure. Its values are part of the public contract and
// must not drift between releases.
func Default() Vector {
	return Vector{
		CognitiveLoad:      50,
		EmotionalIntensity: 30,
		SymbolicDensity:    40,
		TemporalFlow:       35,
		EmergencePoints:    []float64{25, 75},
		MeaningSignature:   "Neutral resonance with contemplative undertones",
		Glyph:              glyph.DefaultDescriptor(),
	}
}

// Clone returns a deep copy. EmergencePoints is reallocated so the
// caller cannot alias the original slice.
func (v Vector) Clone() Vector {
	out := v
	out.EmergencePoints = append([]float64(nil), v.EmergencePoints...)
	return out
}

// Package render turns a resonance vector into pixels: a layered
// procedural glyph, a particle swarm, and a scalar wave field
// composited onto one raster surface, either as a single still or as
// a perpetually evolving animation.
package render

// Options configures one engine instance. Width and Height are
// required; the rest defaults to a full static render with every
// layer enabled.
type Options struct {
	Width  int
	Height int

	// Animate selects the repeating frame loop. When false, Start
	// renders a single static frame and never schedules.
	Animate bool

	// ShowParticles and ShowField toggle the two ambient layers
	// around the central glyph.
	ShowParticles bool
	ShowField     bool

	// Complexity is carried for callers that display it alongside
	// the render; the drawn nesting always comes from the vector's
	// own descriptor.
	Complexity int

	// Seed pins the turbulence noise basis. The particle spawn
	// randomness is injected separately at engine construction.
	Seed int64

	// Turbulence adds simplex-noise drift to particle motion.
	// Zero disables it, keeping trajectories fully determined by
	// the injected randomness source.
	Turbulence float64

	// FPS paces the real-time scheduler built by viewers and the
	// offline GIF export; the engine itself is frame-rate agnostic.
	FPS int
}

// DefaultOptions mirrors the interactive viewer defaults.
func DefaultOptions() Options {
	return Options{
		Width:         600,
		Height:        600,
		Animate:       true,
		ShowParticles: true,
		ShowField:     true,
		FPS:           60,
	}
}

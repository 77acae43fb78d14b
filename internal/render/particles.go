package render

import (
	"math"

	"github.com/gogpu/gg"
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/resonance/internal/entropy"
	"github.com/talgya/resonance/internal/glyph"
)

// Particle is one mote of the swarm orbiting the glyph center. The
// exported form only appears in snapshot copies; live particles never
// escape the system.
type Particle struct {
	X, Y    float64
	VX, VY  float64
	Size    float64
	Life    float64
	MaxLife float64
	Color   glyph.Color
}

// particleCount derives the swarm size from symbolic density. The
// count is fixed for the duration of one animation run.
func particleCount(symbolicDensity float64) int {
	return int(symbolicDensity/10) + 10
}

// particleSystem simulates a constant-size swarm. Dead particles are
// respawned in place rather than removed, so the slice never grows or
// shrinks during a run.
type particleSystem struct {
	particles []Particle
	width     float64
	height    float64
	color     glyph.Color
	rng       entropy.Source

	noise      opensimplex.Noise
	turbulence float64
	phase      float64
}

func newParticleSystem(rng entropy.Source, turbulence float64, seed int64) *particleSystem {
	ps := &particleSystem{rng: rng, turbulence: turbulence}
	if turbulence > 0 {
		ps.noise = opensimplex.NewNormalized(seed)
	}
	return ps
}

// initialize builds a fresh swarm of count particles scattered across
// the surface.
func (ps *particleSystem) initialize(count int, width, height float64, c glyph.Color) {
	ps.width, ps.height = width, height
	ps.color = c
	ps.particles = make([]Particle, count)
	for i := range ps.particles {
		ps.spawn(&ps.particles[i])
	}
}

// spawn resets one particle per the spawn policy: uniform position
// inside the current bounds, velocity components in [-1,1], size in
// [1,4], lifespan in [50,150] ticks.
func (ps *particleSystem) spawn(p *Particle) {
	p.X = ps.rng.Range(0, ps.width)
	p.Y = ps.rng.Range(0, ps.height)
	p.VX = ps.rng.Range(-1, 1)
	p.VY = ps.rng.Range(-1, 1)
	p.Size = ps.rng.Range(1, 4)
	p.MaxLife = ps.rng.Range(50, 150)
	p.Life = p.MaxLife
	p.Color = ps.color
}

// setBounds updates the spawn bounds after a surface resize. Live
// particles keep their positions; out-of-bounds survivors drift back
// in under the attraction force rather than being relocated.
func (ps *particleSystem) setBounds(width, height float64) {
	ps.width, ps.height = width, height
}

// tick advances every particle one step: attraction toward the glyph
// center, a tangential orbit impulse, optional noise turbulence,
// damping, and lifecycle. dt is in frame units; the engine passes 1.
func (ps *particleSystem) tick(centerX, centerY, frequency, dt float64) {
	ps.phase += dt
	for i := range ps.particles {
		p := &ps.particles[i]

		dx := centerX - p.X
		dy := centerY - p.Y
		if d := math.Hypot(dx, dy); d > 0 {
			p.VX += dx * 0.001 * frequency * dt
			p.VY += dy * 0.001 * frequency * dt
			angle := math.Atan2(dy, dx)
			p.VX += math.Cos(angle+math.Pi/2) * 0.01 * frequency * dt
			p.VY += math.Sin(angle+math.Pi/2) * 0.01 * frequency * dt
		}

		if ps.noise != nil {
			nx := ps.noise.Eval3(p.X*0.01, p.Y*0.01, ps.phase*0.01)*2 - 1
			ny := ps.noise.Eval3(p.X*0.01+37, p.Y*0.01+59, ps.phase*0.01)*2 - 1
			p.VX += nx * ps.turbulence * dt
			p.VY += ny * ps.turbulence * dt
		}

		p.X += p.VX * dt
		p.Y += p.VY * dt
		p.VX *= 0.99
		p.VY *= 0.99

		p.Life -= dt
		if p.Life <= 0 {
			ps.spawn(p)
		}
	}
}

// render draws each particle as a soft dot: a wide faint halo under a
// solid core, alpha fading as life runs out.
func (ps *particleSystem) render(dc *gg.Context) {
	for i := range ps.particles {
		p := &ps.particles[i]
		if p.MaxLife <= 0 {
			continue
		}
		alpha := p.Life / p.MaxLife
		dc.SetRGBA(p.Color.R, p.Color.G, p.Color.B, alpha*0.25)
		dc.DrawCircle(p.X, p.Y, p.Size*2.2)
		dc.Fill()
		dc.SetRGBA(p.Color.R, p.Color.G, p.Color.B, alpha)
		dc.DrawCircle(p.X, p.Y, p.Size)
		dc.Fill()
	}
}

// snapshot copies the swarm for inspectors.
func (ps *particleSystem) snapshot() []Particle {
	return append([]Particle(nil), ps.particles...)
}

package render

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/gogpu/gg"

	"github.com/talgya/resonance/internal/anim"
	"github.com/talgya/resonance/internal/entropy"
	"github.com/talgya/resonance/internal/resonance"
)

// ErrSurfaceUnavailable reports that the raster surface could not be
// acquired. It is fatal to engine construction and never retried.
var ErrSurfaceUnavailable = errors.New("render: surface unavailable")

// State is the engine lifecycle. There is no paused state; stopping
// and restarting is cheap and always legal.
type State uint8

const (
	StateIdle State = iota
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// background is the deep near-black the surface fades toward.
var background = gg.RGBA{R: 0.04, G: 0.04, B: 0.08, A: 1}

// Engine owns one drawing surface and everything animated onto it.
// Exported methods are safe for concurrent use; frames themselves run
// one at a time on the scheduler, and a caller must not share one
// engine's surface with another renderer.
type Engine struct {
	mu    sync.Mutex
	dc    *gg.Context
	opts  Options
	sched anim.Scheduler
	clock anim.Clock

	field     *scalarField
	particles *particleSystem

	vec     resonance.Vector
	state   State
	handle  anim.Handle
	pending bool
	origin  time.Time

	// run increments on every Start and Stop; a tick scheduled for
	// an older run returns without drawing or rescheduling, so two
	// loops can never stay alive at once.
	run uint64
}

// New builds an engine with its own raster surface. Invalid surface
// dimensions or missing collaborators surface as
// ErrSurfaceUnavailable; a nil randomness source falls back to a
// crypto-seeded one.
func New(opts Options, sched anim.Scheduler, clock anim.Clock, rng entropy.Source) (*Engine, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d surface", ErrSurfaceUnavailable, opts.Width, opts.Height)
	}
	if sched == nil || clock == nil {
		return nil, fmt.Errorf("%w: nil scheduler or clock", ErrSurfaceUnavailable)
	}
	if rng == nil {
		rng = entropy.New(0)
	}

	dc := gg.NewContext(opts.Width, opts.Height)
	dc.ClearWithColor(background)

	return &Engine{
		dc:        dc,
		opts:      opts,
		sched:     sched,
		clock:     clock,
		field:     newScalarField(opts.Width, opts.Height),
		particles: newParticleSystem(rng, opts.Turbulence, opts.Seed),
		vec:       resonance.Default(),
	}, nil
}

// Start resets the animation to the given vector and begins the frame
// loop: cancel any previous pending frame, reset the clock origin,
// rebuild the particle swarm, then schedule. Starting twice without a
// Stop replaces the run instead of doubling it. With Options.Animate
// false, Start renders one static frame and stays idle.
func (e *Engine) Start(vec resonance.Vector) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancelPending()
	e.run++
	e.vec = vec.Clone()

	if _, ok := e.vec.Glyph.Color.Resolve(); !ok {
		slog.Warn("glyph color unparseable, using neutral",
			"color", string(e.vec.Glyph.Color))
	}

	if !e.opts.Animate {
		e.state = StateIdle
		e.renderStatic()
		return
	}

	col, _ := e.vec.Glyph.Color.Resolve()
	e.origin = e.clock.Now()
	e.particles.initialize(particleCount(e.vec.SymbolicDensity),
		float64(e.opts.Width), float64(e.opts.Height), col)
	e.dc.ClearWithColor(background)
	e.state = StateRunning
	e.schedule()
}

// Stop cancels the pending frame and parks the engine. Stop is
// idempotent: stopping an idle engine is a no-op.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelPending()
	e.run++
	e.state = StateIdle
}

// RenderStatic draws one frame of the vector at time zero: cleared
// surface, glyph, emergence markers. No particles, no field, no
// scheduling.
func (e *Engine) RenderStatic(vec resonance.Vector) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vec = vec.Clone()
	e.renderStatic()
}

// Resize swaps the surface to new dimensions mid-run. The field is
// rebuilt before the next update; particles keep their positions and
// pick up the new bounds on their next respawn.
func (e *Engine) Resize(width, height int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.dc.Resize(width, height); err != nil {
		return fmt.Errorf("resize surface: %w", err)
	}
	e.opts.Width = width
	e.opts.Height = height
	e.field.resize(width, height)
	e.particles.setBounds(float64(width), float64(height))
	e.dc.ClearWithColor(background)
	return nil
}

// State reports the lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Vector returns a copy of the vector currently rendered.
func (e *Engine) Vector() resonance.Vector {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.vec.Clone()
}

// Options returns the engine options; Width and Height track resizes.
func (e *Engine) Options() Options {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.opts
}

// SetLayers toggles the ambient layers for subsequent frames without
// restarting the loop, so viewers keep their fade trails.
func (e *Engine) SetLayers(particles, field bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opts.ShowParticles = particles
	e.opts.ShowField = field
}

// Snapshot copies the current surface. The returned image belongs to
// the caller; later frames do not mutate it.
func (e *Engine) Snapshot() *image.RGBA {
	e.mu.Lock()
	defer e.mu.Unlock()
	src := e.dc.Image()
	b := src.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, src, b.Min, draw.Src)
	return out
}

// FieldSnapshot copies the scalar field grid as rows of cells.
func (e *Engine) FieldSnapshot() [][]float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.field.snapshot()
}

// FieldEnergy is the mean absolute field cell value, a cheap activity
// meter for HUDs.
func (e *Engine) FieldEnergy() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.field.energy()
}

// ParticleSnapshot copies the particle swarm.
func (e *Engine) ParticleSnapshot() []Particle {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.particles.snapshot()
}

// EncodePNG writes the current surface as a PNG image.
func (e *Engine) EncodePNG(w io.Writer) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func (e *Engine) cancelPending() {
	if e.pending {
		e.sched.Cancel(e.handle)
		e.pending = false
	}
}

func (e *Engine) schedule() {
	run := e.run
	e.handle = e.sched.Schedule(func() { e.tick(run) })
	e.pending = true
}

// tick renders one frame and reschedules. A stale tick, left over
// from a run that has since stopped or restarted, returns without
// touching the surface.
func (e *Engine) tick(run uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if run != e.run || e.state != StateRunning {
		return
	}
	e.pending = false

	elapsed := e.clock.Now().Sub(e.origin).Seconds()
	e.drawFrame(elapsed)
	e.schedule()
}

// drawFrame composites one frame in fixed order: fade, field, glyph,
// particles, emergence markers, frequency rings. A panic inside the
// pass is recovered into a skipped frame so the loop stays alive.
func (e *Engine) drawFrame(elapsed float64) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("frame skipped", "panic", r, "elapsed", elapsed)
		}
	}()

	e.fadeSurface()
	if e.opts.ShowField {
		col, _ := e.vec.Glyph.Color.Resolve()
		e.field.update(&e.vec, elapsed)
		e.field.render(e.dc, col)
	}
	drawGlyph(e.dc, &e.vec, elapsed)
	if e.opts.ShowParticles {
		e.particles.tick(float64(e.opts.Width)/2, float64(e.opts.Height)/2,
			e.vec.Glyph.Frequency, 1)
		e.particles.render(e.dc)
	}
	e.drawEmergenceMarkers(elapsed)
	e.drawFrequencyRings(elapsed)
}

// fadeSurface overdraws translucent background, decaying previous
// frames into motion trails.
func (e *Engine) fadeSurface() {
	e.dc.SetRGBA(background.R, background.G, background.B, 0.08)
	e.dc.DrawRectangle(0, 0, float64(e.opts.Width), float64(e.opts.Height))
	e.dc.Fill()
}

func (e *Engine) renderStatic() {
	e.dc.ClearWithColor(background)
	drawGlyph(e.dc, &e.vec, 0)
	e.drawEmergenceMarkers(0)
}

// drawEmergenceMarkers places one pulsing dot per emergence point on
// a fixed ring around the glyph, at an angle proportional to the
// point's position in the text.
func (e *Engine) drawEmergenceMarkers(elapsed float64) {
	if len(e.vec.EmergencePoints) == 0 {
		return
	}
	col, _ := e.vec.Glyph.Color.Resolve()
	cx := float64(e.opts.Width) / 2
	cy := float64(e.opts.Height) / 2
	ringR := math.Min(float64(e.opts.Width), float64(e.opts.Height)) * 0.35

	for _, p := range e.vec.EmergencePoints {
		angle := p / 100 * 2 * math.Pi
		x := cx + math.Cos(angle)*ringR
		y := cy + math.Sin(angle)*ringR
		size := 3 + 1.5*math.Sin(elapsed*3+angle)
		e.dc.SetRGBA(col.R, col.G, col.B, 0.9)
		e.dc.DrawCircle(x, y, size)
		e.dc.Fill()
	}
}

// drawFrequencyRings draws three breathing rings around the whole
// composition; their opacity tracks temporal flow.
func (e *Engine) drawFrequencyRings(elapsed float64) {
	col, _ := e.vec.Glyph.Color.Resolve()
	cx := float64(e.opts.Width) / 2
	cy := float64(e.opts.Height) / 2
	base := math.Min(float64(e.opts.Width), float64(e.opts.Height)) * 0.45
	alpha := 0.08 + e.vec.TemporalFlow/100*0.22
	freq := e.vec.Glyph.Frequency

	e.dc.SetLineWidth(1)
	for i, scale := range [3]float64{0.5, 0.7, 0.9} {
		r := base*scale + math.Sin(elapsed*freq+float64(i)*2*math.Pi/3)*6
		e.dc.SetRGBA(col.R, col.G, col.B, alpha)
		e.dc.DrawCircle(cx, cy, r)
		e.dc.Stroke()
	}
}

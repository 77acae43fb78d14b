// Command glyphview opens a live window on a glyph animation. The
// engine is stepped manually from the game loop, one frame per update
// tick, so pausing freezes elapsed time instead of resetting it.
//
// Keys: space pauses, P and F toggle the particle and field layers,
// S saves a PNG snapshot, H hides the HUD, Q or escape quits.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/talgya/resonance/internal/anim"
	"github.com/talgya/resonance/internal/entropy"
	"github.com/talgya/resonance/internal/render"
	"github.com/talgya/resonance/internal/resonance"
)

const tickInterval = time.Second / 60

type viewer struct {
	engine *render.Engine
	sched  *anim.Manual
	clock  *anim.ManualClock

	vec       resonance.Vector
	particles bool
	field     bool
	paused    bool
	hud       bool
}

func (v *viewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		v.paused = !v.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		v.particles = !v.particles
		v.engine.SetLayers(v.particles, v.field)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF) {
		v.field = !v.field
		v.engine.SetLayers(v.particles, v.field)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		v.hud = !v.hud
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		v.saveSnapshot()
	}

	if !v.paused {
		v.clock.Advance(tickInterval)
		v.sched.Step()
	}
	return nil
}

func (v *viewer) Draw(screen *ebiten.Image) {
	screen.WritePixels(v.engine.Snapshot().Pix)
	if v.hud {
		ebitenutil.DebugPrint(screen, v.hudText())
	}
}

func (v *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	opts := v.engine.Options()
	return opts.Width, opts.Height
}

func (v *viewer) hudText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", v.vec.MeaningSignature)
	fmt.Fprintf(&b, "glyph %s  energy %.3f\n", v.vec.Glyph.Shape, v.engine.FieldEnergy())
	fmt.Fprintf(&b, "particles %s  field %s", onOff(v.particles), onOff(v.field))
	if v.paused {
		b.WriteString("  [paused]")
	}
	b.WriteString("\nspace pause  P/F layers  S snapshot  H hud  Q quit")
	return b.String()
}

func (v *viewer) saveSnapshot() {
	name := fmt.Sprintf("glyph-%s.png", time.Now().Format("20060102-150405"))
	f, err := os.Create(name)
	if err != nil {
		slog.Error("snapshot failed", "error", err)
		return
	}
	defer f.Close()
	if err := v.engine.EncodePNG(f); err != nil {
		slog.Error("snapshot failed", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", name)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	var (
		file       = flag.String("f", "", "read text from file instead of arguments")
		width      = flag.Int("w", 600, "window width in pixels")
		height     = flag.Int("h", 600, "window height in pixels")
		seed       = flag.Int64("seed", 0, "spawn and turbulence seed, 0 for random")
		turbulence = flag.Float64("turbulence", 0.4, "noise drift strength, 0 disables")
	)
	flag.Parse()

	text := strings.Join(flag.Args(), " ")
	if *file != "" {
		data, err := os.ReadFile(*file)
		if err != nil {
			slog.Error("cannot read input", "error", err)
			os.Exit(1)
		}
		text = string(data)
	}
	vec := resonance.Analyze(text)

	opts := render.DefaultOptions()
	opts.Width, opts.Height = *width, *height
	opts.Seed = *seed
	opts.Turbulence = *turbulence

	sched := anim.NewManual()
	clock := anim.NewManualClock(time.Now())
	engine, err := render.New(opts, sched, clock, entropy.New(*seed))
	if err != nil {
		slog.Error("cannot build engine", "error", err)
		os.Exit(1)
	}
	engine.Start(vec)

	v := &viewer{
		engine:    engine,
		sched:     sched,
		clock:     clock,
		vec:       vec,
		particles: opts.ShowParticles,
		field:     opts.ShowField,
		hud:       true,
	}

	ebiten.SetWindowSize(*width, *height)
	ebiten.SetWindowTitle("resonance: " + vec.MeaningSignature)
	if err := ebiten.RunGame(v); err != nil && !errors.Is(err, ebiten.Termination) {
		slog.Error("viewer exited", "error", err)
		os.Exit(1)
	}
}

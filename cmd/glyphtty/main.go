// Command glyphtty renders a glyph animation straight into the
// terminal. The engine draws offscreen at a fixed resolution; each
// frame is downscaled to the cell grid and blitted with upper-half
// blocks, giving two square-ish pixels per character cell. A two-row
// HUD shows the signature and a spring-smoothed field energy meter.
//
// Keys: space pauses, p and f toggle the particle and field layers,
// s saves a PNG snapshot, q or escape quits.
package main

import (
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/harmonica"
	"github.com/gdamore/tcell/v2"
	xdraw "golang.org/x/image/draw"

	"github.com/talgya/resonance/internal/anim"
	"github.com/talgya/resonance/internal/entropy"
	"github.com/talgya/resonance/internal/render"
	"github.com/talgya/resonance/internal/resonance"
)

const (
	hudRows    = 2
	meterWidth = 16
)

type tty struct {
	screen tcell.Screen
	engine *render.Engine
	sched  *anim.Manual
	clock  *anim.ManualClock
	vec    resonance.Vector

	interval  time.Duration
	particles bool
	field     bool
	paused    bool

	meter    harmonica.Spring
	meterPos float64
	meterVel float64

	scaled *image.RGBA

	notice      string
	noticeUntil time.Time
}

func (t *tty) run() {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			events <- t.screen.PollEvent()
		}
	}()

	for {
		select {
		case ev := <-events:
			if !t.handleEvent(ev) {
				return
			}
		case <-ticker.C:
			if !t.paused {
				t.clock.Advance(t.interval)
				t.sched.Step()
			}
			t.draw()
		}
	}
}

func (t *tty) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() != tcell.KeyRune {
			return true
		}
		switch ev.Rune() {
		case 'q':
			return false
		case ' ':
			t.paused = !t.paused
		case 'p':
			t.particles = !t.particles
			t.engine.SetLayers(t.particles, t.field)
		case 'f':
			t.field = !t.field
			t.engine.SetLayers(t.particles, t.field)
		case 's':
			t.saveSnapshot()
		}
	case *tcell.EventResize:
		t.screen.Sync()
	}
	return true
}

// draw downscales the current frame to the largest square that fits
// the cell grid and paints it with '▀' cells, foreground carrying the
// upper pixel and background the lower one.
func (t *tty) draw() {
	cols, rows := t.screen.Size()
	if cols < 2 || rows <= hudRows {
		return
	}
	side := min(cols, (rows-hudRows)*2)

	if t.scaled == nil || t.scaled.Bounds().Dx() != side {
		t.scaled = image.NewRGBA(image.Rect(0, 0, side, side))
	}
	snap := t.engine.Snapshot()
	xdraw.CatmullRom.Scale(t.scaled, t.scaled.Bounds(), snap, snap.Bounds(), xdraw.Src, nil)

	t.screen.Clear()
	offsetX := (cols - side) / 2
	for cy := 0; cy < side/2; cy++ {
		for cx := 0; cx < side; cx++ {
			top := t.scaled.RGBAAt(cx, cy*2)
			bottom := t.scaled.RGBAAt(cx, cy*2+1)
			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(top.R), int32(top.G), int32(top.B))).
				Background(tcell.NewRGBColor(int32(bottom.R), int32(bottom.G), int32(bottom.B)))
			t.screen.SetContent(offsetX+cx, cy, '▀', nil, style)
		}
	}
	t.drawHUD(cols, rows)
	t.screen.Show()
}

func (t *tty) drawHUD(cols, rows int) {
	t.meterPos, t.meterVel = t.meter.Update(t.meterPos, t.meterVel, t.engine.FieldEnergy())

	line1 := t.vec.MeaningSignature
	if t.notice != "" && time.Now().Before(t.noticeUntil) {
		line1 = t.notice
	}

	filled := int(t.meterPos*meterWidth + 0.5)
	filled = max(0, min(filled, meterWidth))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", meterWidth-filled)

	line2 := fmt.Sprintf("energy %s  particles %s  field %s",
		bar, onOff(t.particles), onOff(t.field))
	if t.paused {
		line2 += "  [paused]"
	}
	line2 += "  space/p/f/s/q"

	putLine(t.screen, 0, rows-2, cols, line1, tcell.StyleDefault.Bold(true))
	putLine(t.screen, 0, rows-1, cols, line2, tcell.StyleDefault)
}

func (t *tty) saveSnapshot() {
	name := fmt.Sprintf("glyph-%s.png", time.Now().Format("20060102-150405"))
	f, err := os.Create(name)
	if err != nil {
		t.flash("snapshot failed: " + err.Error())
		return
	}
	defer f.Close()
	if err := t.engine.EncodePNG(f); err != nil {
		t.flash("snapshot failed: " + err.Error())
		return
	}
	t.flash("saved " + name)
}

// flash shows a transient message on the HUD; logging to stderr would
// scribble over the tcell screen.
func (t *tty) flash(msg string) {
	t.notice = msg
	t.noticeUntil = time.Now().Add(2 * time.Second)
}

func putLine(screen tcell.Screen, x, y, width int, text string, style tcell.Style) {
	col := x
	for _, r := range text {
		if col >= x+width {
			break
		}
		screen.SetContent(col, y, r, nil, style)
		col++
	}
	for ; col < x+width; col++ {
		screen.SetContent(col, y, ' ', nil, style)
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	var (
		file       = flag.String("f", "", "read text from file instead of arguments")
		size       = flag.Int("size", 320, "offscreen render resolution in pixels")
		fps        = flag.Int("fps", 20, "terminal frame rate")
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

	if *fps < 1 {
		*fps = 1
	}
	opts := render.DefaultOptions()
	opts.Width, opts.Height = *size, *size
	opts.Seed = *seed
	opts.Turbulence = *turbulence
	opts.FPS = *fps

	sched := anim.NewManual()
	clock := anim.NewManualClock(time.Now())
	engine, err := render.New(opts, sched, clock, entropy.New(*seed))
	if err != nil {
		slog.Error("cannot build engine", "error", err)
		os.Exit(1)
	}
	engine.Start(vec)

	screen, err := tcell.NewScreen()
	if err != nil {
		slog.Error("cannot open terminal", "error", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		slog.Error("cannot init terminal", "error", err)
		os.Exit(1)
	}
	defer screen.Fini()

	t := &tty{
		screen:    screen,
		engine:    engine,
		sched:     sched,
		clock:     clock,
		vec:       vec,
		interval:  time.Second / time.Duration(*fps),
		particles: opts.ShowParticles,
		field:     opts.ShowField,
		meter:     harmonica.NewSpring(harmonica.FPS(*fps), 6.0, 0.8),
	}
	t.run()
}

package render

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"
	"math"
	"time"

	"github.com/talgya/resonance/internal/anim"
	"github.com/talgya/resonance/internal/entropy"
	"github.com/talgya/resonance/internal/resonance"
)

// RenderStill writes a one-shot static PNG of the vector without a
// live animation run.
func RenderStill(vec resonance.Vector, opts Options, w io.Writer) error {
	opts.Animate = false
	eng, err := New(opts, anim.NewManual(), anim.SystemClock{}, entropy.New(opts.Seed))
	if err != nil {
		return err
	}
	eng.RenderStatic(vec)
	return eng.EncodePNG(w)
}

// RenderGIF runs the animation offline on a manual scheduler and
// encodes the frames as a looping GIF. The seed pins the particle
// trajectories, so the same arguments always produce the same bytes.
func RenderGIF(vec resonance.Vector, opts Options, seconds float64, fps int, w io.Writer) error {
	if fps <= 0 {
		fps = 30
	}
	if seconds <= 0 {
		seconds = 4
	}
	frames := int(math.Round(seconds * float64(fps)))
	if frames < 1 {
		frames = 1
	}

	manual := anim.NewManual()
	clock := anim.NewManualClock(time.Unix(0, 0))
	opts.Animate = true
	eng, err := New(opts, manual, clock, entropy.New(opts.Seed))
	if err != nil {
		return err
	}

	eng.Start(vec)
	defer eng.Stop()

	step := time.Second / time.Duration(fps)
	delay := 100 / fps // GIF delay unit is centiseconds
	if delay < 2 {
		delay = 2
	}

	out := gif.GIF{LoopCount: 0}
	for i := 0; i < frames; i++ {
		clock.Advance(step)
		manual.Step()
		frame := eng.Snapshot()
		pal := image.NewPaletted(frame.Bounds(), palette.Plan9)
		draw.FloydSteinberg.Draw(pal, frame.Bounds(), frame, image.Point{})
		out.Image = append(out.Image, pal)
		out.Delay = append(out.Delay, delay)
	}

	if err := gif.EncodeAll(w, &out); err != nil {
		return fmt.Errorf("encode gif: %w", err)
	}
	return nil
}

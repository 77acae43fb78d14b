package render

import (
	"bytes"
	"errors"
	"image/gif"
	"testing"

	"github.com/talgya/resonance/internal/resonance"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func TestRenderStillWritesPNG(t *testing.T) {
	var buf bytes.Buffer
	opts := Options{Width: 160, Height: 160}
	if err := RenderStill(resonance.Default(), opts, &buf); err != nil {
		t.Fatalf("RenderStill: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
		t.Errorf("output does not start with the PNG signature: % x", buf.Bytes()[:8])
	}
}

func TestRenderStillRejectsBadSurface(t *testing.T) {
	var buf bytes.Buffer
	err := RenderStill(resonance.Default(), Options{Width: 0, Height: 100}, &buf)
	if !errors.Is(err, ErrSurfaceUnavailable) {
		t.Errorf("err = %v, want ErrSurfaceUnavailable", err)
	}
}

func TestRenderGIFFrameLayout(t *testing.T) {
	var buf bytes.Buffer
	opts := Options{Width: 120, Height: 90, ShowParticles: true, ShowField: true, Seed: 11}
	if err := RenderGIF(resonance.Default(), opts, 0.5, 8, &buf); err != nil {
		t.Fatalf("RenderGIF: %v", err)
	}

	g, err := gif.DecodeAll(&buf)
	if err != nil {
		t.Fatalf("DecodeAll: %v", err)
	}
	if got := len(g.Image); got != 4 {
		t.Errorf("frame count = %d, want 4 for 0.5s at 8fps", got)
	}
	if g.LoopCount != 0 {
		t.Errorf("loop count = %d, want 0 (loop forever)", g.LoopCount)
	}
	for i, d := range g.Delay {
		if d != 12 {
			t.Errorf("frame %d delay = %d centiseconds, want 12", i, d)
		}
	}
	b := g.Image[0].Bounds()
	if b.Dx() != 120 || b.Dy() != 90 {
		t.Errorf("frame size = %dx%d, want 120x90", b.Dx(), b.Dy())
	}
}

func TestRenderGIFDeterministic(t *testing.T) {
	render := func() []byte {
		var buf bytes.Buffer
		opts := Options{Width: 80, Height: 80, ShowParticles: true, ShowField: true, Seed: 42}
		vec := resonance.Analyze("Time dissolves like mist over water.")
		if err := RenderGIF(vec, opts, 0.25, 8, &buf); err != nil {
			t.Fatalf("RenderGIF: %v", err)
		}
		return buf.Bytes()
	}
	if !bytes.Equal(render(), render()) {
		t.Error("same seed produced different GIF bytes")
	}
}

func TestRenderGIFDefaultsPacing(t *testing.T) {
	var buf bytes.Buffer
	opts := Options{Width: 40, Height: 40}
	// Non-positive duration and rate fall back to 4s at 30fps.
	if err := RenderGIF(resonance.Default(), opts, 0, 0, &buf); err != nil {
		t.Fatalf("RenderGIF: %v", err)
	}
	g, err := gif.DecodeAll(&buf)
	if err != nil {
		t.Fatalf("DecodeAll: %v", err)
	}
	if got := len(g.Image); got != 120 {
		t.Errorf("frame count = %d, want 120 for the 4s/30fps fallback", got)
	}
	for i, d := range g.Delay {
		if d != 3 {
			t.Errorf("frame %d delay = %d centiseconds, want 3", i, d)
			break
		}
	}
}

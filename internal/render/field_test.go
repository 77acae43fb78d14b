package render

import (
	"testing"

	"github.com/talgya/resonance/internal/resonance"
)

func TestScalarFieldDimensions(t *testing.T) {
	tests := []struct {
		w, h       int
		cols, rows int
	}{
		{400, 400, 20, 20},
		{800, 600, 40, 30},
		{401, 399, 21, 20},
		{20, 20, 1, 1},
		{10, 10, 1, 1},
	}
	for _, tt := range tests {
		f := newScalarField(tt.w, tt.h)
		if f.cols != tt.cols || f.rows != tt.rows {
			t.Errorf("%dx%d surface: grid %dx%d, want %dx%d",
				tt.w, tt.h, f.cols, f.rows, tt.cols, tt.rows)
		}
		if len(f.cells) != tt.cols*tt.rows {
			t.Errorf("%dx%d surface: %d cells, want %d",
				tt.w, tt.h, len(f.cells), tt.cols*tt.rows)
		}
	}
}

func TestScalarFieldResizeMidAnimation(t *testing.T) {
	f := newScalarField(400, 400)
	vec := resonance.Default()
	f.update(&vec, 1.0)

	f.resize(800, 600)
	if f.cols != 40 || f.rows != 30 {
		t.Fatalf("grid after resize = %dx%d, want 40x30", f.cols, f.rows)
	}
	for i, v := range f.cells {
		if v != 0 {
			t.Fatalf("cell %d not zeroed after resize: %v", i, v)
		}
	}

	// The next update must fill the new grid without panicking.
	f.update(&vec, 2.0)
	nonzero := 0
	for _, v := range f.cells {
		if v != 0 {
			nonzero++
		}
	}
	if nonzero == 0 {
		t.Error("update after resize left the whole grid at zero")
	}
}

func TestScalarFieldValuesBounded(t *testing.T) {
	f := newScalarField(400, 400)
	vec := resonance.Analyze("Love fear rage!! The truth is like a void; however, time flows.")
	for _, elapsed := range []float64{0, 0.5, 1, 10, 100} {
		f.update(&vec, elapsed)
		for i, v := range f.cells {
			// Two unit-amplitude waves averaged can never leave [-1, 1].
			if v < -1 || v > 1 {
				t.Fatalf("elapsed %v: cell %d = %v out of [-1,1]", elapsed, i, v)
			}
		}
	}
}

func TestScalarFieldSnapshotIsCopy(t *testing.T) {
	f := newScalarField(100, 100)
	vec := resonance.Default()
	f.update(&vec, 1.0)

	snap := f.snapshot()
	if len(snap) != f.rows || len(snap[0]) != f.cols {
		t.Fatalf("snapshot %dx%d, want %dx%d", len(snap), len(snap[0]), f.rows, f.cols)
	}
	orig := f.cells[0]
	snap[0][0] = 42
	if f.cells[0] != orig {
		t.Error("snapshot aliases the live grid")
	}
}

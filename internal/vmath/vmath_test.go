package vmath

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name      string
		v, lo, hi float64
		want      float64
	}{
		{"below", -5, 0, 100, 0},
		{"above", 250, 0, 100, 100},
		{"inside", 42, 0, 100, 42},
		{"at lower bound", 0, 0, 100, 0},
		{"at upper bound", 100, 0, 100, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.v, tt.lo, tt.hi); got != tt.want {
				t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tt.v, tt.lo, tt.hi, got, tt.want)
			}
		})
	}
}

func TestClampInt(t *testing.T) {
	if got := Clamp(7, 0, 5); got != 5 {
		t.Errorf("Clamp(7, 0, 5) = %d, want 5", got)
	}
}

func TestLerp(t *testing.T) {
	if got := Lerp(0.0, 10.0, 0.5); got != 5.0 {
		t.Errorf("Lerp(0, 10, 0.5) = %v, want 5", got)
	}
	if got := Lerp(2.0, 4.0, 0.0); got != 2.0 {
		t.Errorf("Lerp(2, 4, 0) = %v, want 2", got)
	}
	if got := Lerp(2.0, 4.0, 1.0); got != 4.0 {
		t.Errorf("Lerp(2, 4, 1) = %v, want 4", got)
	}
}

func TestDist(t *testing.T) {
	if got := Dist(0, 0, 3, 4); got != 5 {
		t.Errorf("Dist(0,0,3,4) = %v, want 5", got)
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		v, period, want float64
	}{
		{370, 360, 10},
		{-10, 360, 350},
		{0, 360, 0},
		{359, 360, 359},
	}
	for _, tt := range tests {
		if got := Wrap(tt.v, tt.period); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Wrap(%v, %v) = %v, want %v", tt.v, tt.period, got, tt.want)
		}
	}
}

// Package vmath provides the small numeric helpers shared by the
// scoring and rendering packages.
package vmath

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Clamp limits v to the inclusive range [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp interpolates between a and b by t, where t=0 yields a and t=1
// yields b. t is not clamped.
func Lerp[T constraints.Float](a, b, t T) T {
	return a + (b-a)*t
}

// Dist returns the Euclidean distance between (x1, y1) and (x2, y2).
func Dist(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}

// Wrap folds v into [0, period). Negative inputs wrap from the top,
// so Wrap(-10, 360) is 350.
func Wrap(v, period float64) float64 {
	m := math.Mod(v, period)
	if m < 0 {
		m += period
	}
	return m
}

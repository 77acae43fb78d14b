package render

import (
	"math"

	"github.com/gogpu/gg"

	"github.com/talgya/resonance/internal/glyph"
	"github.com/talgya/resonance/internal/resonance"
)

// shapeStyle carries the resolved color and opacity one glyph is
// drawn with. Strokes use the full opacity; fills a quarter of it,
// so nested outlines stay legible over the filled base.
type shapeStyle struct {
	color   glyph.Color
	opacity float64
}

func (s shapeStyle) stroke(dc *gg.Context) {
	dc.SetRGBA(s.color.R, s.color.G, s.color.B, s.opacity)
}

func (s shapeStyle) fill(dc *gg.Context) {
	dc.SetRGBA(s.color.R, s.color.G, s.color.B, s.opacity*0.25)
}

// drawGlyph draws the central glyph at the given elapsed time. The
// whole glyph rotates with the descriptor frequency and breathes with
// a sinusoidal pulse; each shape adds its own nesting from the
// descriptor's complexity. A color that fails to parse degrades to
// the neutral gray.
func drawGlyph(dc *gg.Context, vec *resonance.Vector, elapsed float64) {
	d := vec.Glyph
	col, _ := d.Color.Resolve()
	size := math.Min(float64(dc.Width()), float64(dc.Height())) * 0.4
	style := shapeStyle{
		color:   col,
		opacity: 0.7 + vec.EmotionalIntensity/100*0.3,
	}

	dc.Push()
	dc.Translate(float64(dc.Width())/2, float64(dc.Height())/2)
	dc.Rotate(elapsed * d.Frequency * 0.5)
	pulse := 1 + math.Sin(elapsed*d.Frequency*2)*0.1
	dc.Scale(pulse, pulse)
	dc.SetLineWidth(2 + vec.SymbolicDensity/100*3)

	switch d.Shape {
	case glyph.ShapeCircle:
		drawCircleGlyph(dc, style, size, d.Complexity)
	case glyph.ShapeTriangle:
		drawTriangleGlyph(dc, style, size, d.Complexity)
	case glyph.ShapeSquare:
		drawSquareGlyph(dc, style, size, d.Complexity)
	case glyph.ShapeHexagon:
		drawHexagonGlyph(dc, style, size, d.Complexity)
	case glyph.ShapeStar:
		drawStarGlyph(dc, style, size, d.Complexity)
	case glyph.ShapeSpiral:
		drawSpiralGlyph(dc, style, size, d.Complexity, elapsed)
	default:
		// A corrupt descriptor still draws something.
		drawCircleGlyph(dc, style, size, d.Complexity)
	}

	dc.Pop()
}

// drawCircleGlyph draws concentric rings, radii shrinking 20% per
// ring from the outside in. Only the outermost ring is filled.
func drawCircleGlyph(dc *gg.Context, s shapeStyle, size float64, complexity int) {
	rings := max(1, complexity/2)
	radius := size / 2
	for i := 0; i < rings; i++ {
		dc.DrawCircle(0, 0, radius)
		if i == 0 {
			s.fill(dc)
			dc.FillPreserve()
		}
		s.stroke(dc)
		dc.Stroke()
		radius *= 0.8
	}
}

// drawTriangleGlyph draws a filled base triangle plus shrinking
// nested outlines.
func drawTriangleGlyph(dc *gg.Context, s shapeStyle, size float64, complexity int) {
	polygonPath(dc, 3, size/2)
	s.fill(dc)
	dc.FillPreserve()
	s.stroke(dc)
	dc.Stroke()

	for i := 1; i < complexity; i++ {
		scale := 1 - float64(i)*0.3
		if scale <= 0 {
			break
		}
		polygonPath(dc, 3, size/2*scale)
		s.stroke(dc)
		dc.Stroke()
	}
}

// drawSquareGlyph draws a filled base square plus nested copies, each
// shrunk a further 20% and rotated a further 45 degrees.
func drawSquareGlyph(dc *gg.Context, s shapeStyle, size float64, complexity int) {
	dc.DrawRectangle(-size/2, -size/2, size, size)
	s.fill(dc)
	dc.FillPreserve()
	s.stroke(dc)
	dc.Stroke()

	for i := 1; i < complexity; i++ {
		scale := 1 - float64(i)*0.2
		if scale <= 0 {
			break
		}
		side := size * scale
		dc.Push()
		dc.Rotate(float64(i) * math.Pi / 4)
		dc.DrawRectangle(-side/2, -side/2, side, side)
		s.stroke(dc)
		dc.Stroke()
		dc.Pop()
	}
}

// drawHexagonGlyph draws a filled base hexagon plus nested outlines
// shrinking 25% per level.
func drawHexagonGlyph(dc *gg.Context, s shapeStyle, size float64, complexity int) {
	polygonPath(dc, 6, size/2)
	s.fill(dc)
	dc.FillPreserve()
	s.stroke(dc)
	dc.Stroke()

	for i := 1; i < complexity; i++ {
		scale := 1 - float64(i)*0.25
		if scale <= 0 {
			break
		}
		polygonPath(dc, 6, size/2*scale)
		s.stroke(dc)
		dc.Stroke()
	}
}

// drawStarGlyph draws a single star whose point count grows with
// complexity. The inner radius is fixed at 40% of the outer.
func drawStarGlyph(dc *gg.Context, s shapeStyle, size float64, complexity int) {
	points := 5 + complexity
	outer := size / 2
	inner := outer * 0.4
	for k := 0; k < points*2; k++ {
		r := outer
		if k%2 == 1 {
			r = inner
		}
		angle := -math.Pi/2 + float64(k)*math.Pi/float64(points)
		x := math.Cos(angle) * r
		y := math.Sin(angle) * r
		if k == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	dc.ClosePath()
	s.fill(dc)
	dc.FillPreserve()
	s.stroke(dc)
	dc.Stroke()
}

// drawSpiralGlyph draws an open polyline spiral. The spiral alone
// keeps rotating with elapsed time on top of the whole-glyph
// rotation.
func drawSpiralGlyph(dc *gg.Context, s shapeStyle, size float64, complexity int, elapsed float64) {
	const samples = 100
	turns := float64(3 + complexity)
	for k := 0; k <= samples; k++ {
		t := float64(k) / samples
		angle := t*turns*2*math.Pi + elapsed
		r := t * size / 2
		x := math.Cos(angle) * r
		y := math.Sin(angle) * r
		if k == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	s.stroke(dc)
	dc.Stroke()
}

// polygonPath traces a regular n-gon of the given circumradius with
// the first vertex pointing up.
func polygonPath(dc *gg.Context, n int, r float64) {
	for k := 0; k < n; k++ {
		angle := -math.Pi/2 + float64(k)*2*math.Pi/float64(n)
		x := math.Cos(angle) * r
		y := math.Sin(angle) * r
		if k == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	dc.ClosePath()
}

package render

import (
	"math"

	"github.com/gogpu/gg"

	"github.com/talgya/resonance/internal/glyph"
	"github.com/talgya/resonance/internal/resonance"
	"github.com/talgya/resonance/internal/vmath"
)

// fieldCellSize is the edge length of one field cell in pixels.
const fieldCellSize = 20

// scalarField is the wave-interference layer behind the glyph: a
// coarse grid whose every cell is recomputed each tick from elapsed
// time and the vector. The grid is rebuilt, never patched, when the
// surface changes size.
type scalarField struct {
	cols, rows int
	cells      []float64
}

func newScalarField(width, height int) *scalarField {
	f := &scalarField{}
	f.resize(width, height)
	return f
}

// resize rebuilds the grid for new surface dimensions with all cells
// zeroed. The next update repopulates them.
func (f *scalarField) resize(width, height int) {
	f.cols = int(math.Ceil(float64(width) / fieldCellSize))
	f.rows = int(math.Ceil(float64(height) / fieldCellSize))
	f.cells = make([]float64, f.cols*f.rows)
}

// update superimposes two radial waves per cell: one driven by the
// glyph frequency and emotional intensity, one by temporal flow and
// cognitive load. Distances are measured in cell units from the grid
// center.
func (f *scalarField) update(vec *resonance.Vector, elapsed float64) {
	centerCol := float64(f.cols) / 2
	centerRow := float64(f.rows) / 2
	freq := vec.Glyph.Frequency

	for row := 0; row < f.rows; row++ {
		for col := 0; col < f.cols; col++ {
			d := vmath.Dist(float64(col), float64(row), centerCol, centerRow)
			wave1 := math.Sin(d*0.3-elapsed*freq*2) * vec.EmotionalIntensity / 100
			wave2 := math.Cos(d*0.2+elapsed*vec.TemporalFlow/50) * vec.CognitiveLoad / 100
			f.cells[row*f.cols+col] = (wave1 + wave2) * 0.5
		}
	}
}

// render paints each sufficiently energetic cell as a translucent
// square. Cells below the visibility threshold are skipped, which
// keeps quiet fields cheap to draw.
func (f *scalarField) render(dc *gg.Context, c glyph.Color) {
	for row := 0; row < f.rows; row++ {
		for col := 0; col < f.cols; col++ {
			v := f.cells[row*f.cols+col]
			alpha := math.Min(0.3, math.Abs(v)*0.5)
			if alpha <= 0.05 {
				continue
			}
			dc.SetRGBA(c.R, c.G, c.B, alpha)
			dc.DrawRectangle(float64(col)*fieldCellSize, float64(row)*fieldCellSize, fieldCellSize, fieldCellSize)
			dc.Fill()
		}
	}
}

// energy is the mean absolute cell value, used by viewers for a cheap
// activity meter.
func (f *scalarField) energy() float64 {
	if len(f.cells) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range f.cells {
		sum += math.Abs(v)
	}
	return sum / float64(len(f.cells))
}

// snapshot copies the grid as rows of cells for external inspectors;
// the live slice never escapes.
func (f *scalarField) snapshot() [][]float64 {
	out := make([][]float64, f.rows)
	for row := 0; row < f.rows; row++ {
		out[row] = append([]float64(nil), f.cells[row*f.cols:(row+1)*f.cols]...)
	}
	return out
}

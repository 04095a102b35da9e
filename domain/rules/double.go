package rules

import (
	"math"

	"sprtsim/domain/likelihood"
	"sprtsim/domain/model"
	"sprtsim/domain/process"
)

// DoubleDesign implements the double SPRT: a fixed intermediate reference
// mean μ_mid, with the statistic's distance to μ₀ and μ₁ recomputed from
// scratch every tic rather than accumulated.
type DoubleDesign struct {
	relativeMid    float64 // m, in (0, 1)
	asymptoticInit bool
	huffman        bool

	null, alt float64
	muMid     [][]float64

	distanceNull [][]float64
	distanceAlt  [][]float64
}

// NewDoubleDesign constructs a DoubleDesign.
func NewDoubleDesign(relativeMid float64, asymptoticInit, huffman bool) *DoubleDesign {
	return &DoubleDesign{relativeMid: relativeMid, asymptoticInit: asymptoticInit, huffman: huffman}
}

// IsThresholdIndependent is true only when neither optional toggle is set.
func (d *DoubleDesign) IsThresholdIndependent() bool {
	return !d.asymptoticInit && !d.huffman
}

func (d *DoubleDesign) OnInitialized(m model.Model, nullThresholds, altThresholds []float64) {
	d.null = m.Null()
	d.alt = m.SmallestAlt()
	rows, cols := len(nullThresholds), len(altThresholds)
	d.muMid = newMatrix(rows, cols)
	d.distanceNull = newMatrix(rows, cols)
	d.distanceAlt = newMatrix(rows, cols)

	switch {
	case d.huffman:
		for i, a := range nullThresholds {
			for j, b := range altThresholds {
				ratio := 1 / (1 + math.Sqrt(a/b))
				delta := (d.alt - d.null) * ratio
				r := normalQuantile(ratio)
				mid := d.null + delta + r*delta/math.Sqrt(2*a)
				if mid > d.alt {
					mid = d.alt
				}
				d.muMid[i][j] = mid
			}
		}
	case d.asymptoticInit:
		for i, a := range nullThresholds {
			for j, b := range altThresholds {
				d.muMid[i][j] = asymptoticMu(d.null, d.alt, a, b)
			}
		}
	default:
		mid := d.null + d.relativeMid*(d.alt-d.null)
		for i := range d.muMid {
			for j := range d.muMid[i] {
				d.muMid[i][j] = mid
			}
		}
	}
}

func (d *DoubleDesign) OnReset() {}

// OnTic recomputes the distance matrices from scratch — closed form, O(mn)
// per tic — since the process already holds an O(1) cumulative likelihood
// query.
func (d *DoubleDesign) OnTic(p *process.Process, l *likelihood.Tracker) {
	for i := range d.muMid {
		for j := range d.muMid[i] {
			mid := d.muMid[i][j]
			d.distanceNull[i][j] = p.CurrentUnscaledLogLikelihoodBetween(mid, d.null)
			d.distanceAlt[i][j] = p.CurrentUnscaledLogLikelihoodBetween(mid, d.alt)
		}
	}
}

func (d *DoubleDesign) OnToc(*process.Process, *likelihood.Tracker) {}

func (d *DoubleDesign) DoDecideNull(threshold float64, row, col int) bool {
	return d.distanceAlt[row][col] > threshold
}

func (d *DoubleDesign) DoDecideAlt(threshold float64, row, col int) bool {
	return d.distanceNull[row][col] > threshold
}

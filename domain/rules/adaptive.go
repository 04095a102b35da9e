package rules

import (
	"sprtsim/domain/likelihood"
	"sprtsim/domain/model"
	"sprtsim/domain/process"
)

// AdaptiveFlavor selects which variant of the adaptive SPRT's offset
// recursion is used.
type AdaptiveFlavor int

const (
	AdaptiveSimple AdaptiveFlavor = iota
	AdaptiveGeneral
	AdaptiveUnconstrained
)

// AdaptiveDesign implements the adaptive SPRT: a delayed-MLE rule whose
// statistic is built from a one-time initial distance plus a recursively
// accumulated offset.
type AdaptiveDesign struct {
	flavor         AdaptiveFlavor
	relativeNull   float64 // g0, relative initial guess toward mu0->mu1
	relativeAlt    float64 // g1
	asymptoticInit bool

	null, alt float64

	muGuessNull, muGuessAlt [][]float64
	initNull, initAlt       [][]float64

	offsetNull, offsetAlt float64
	muDelayed             float64
	ticIndex              int
}

// NewAdaptiveDesign constructs an AdaptiveDesign. relativeNull and
// relativeAlt must lie in [0, 1]; callers validate at configuration time.
func NewAdaptiveDesign(flavor AdaptiveFlavor, relativeNull, relativeAlt float64, asymptoticInit bool) *AdaptiveDesign {
	return &AdaptiveDesign{flavor: flavor, relativeNull: relativeNull, relativeAlt: relativeAlt, asymptoticInit: asymptoticInit}
}

// IsThresholdIndependent is true unless the asymptotic-init toggle is set,
// since the asymptotic guess depends on the cell's own thresholds.
func (d *AdaptiveDesign) IsThresholdIndependent() bool { return !d.asymptoticInit }

func (d *AdaptiveDesign) OnInitialized(m model.Model, nullThresholds, altThresholds []float64) {
	d.null = m.Null()
	d.alt = m.SmallestAlt()
	rows, cols := len(nullThresholds), len(altThresholds)
	d.muGuessNull = newMatrix(rows, cols)
	d.muGuessAlt = newMatrix(rows, cols)
	d.initNull = newMatrix(rows, cols)
	d.initAlt = newMatrix(rows, cols)

	if d.asymptoticInit {
		for i, a := range nullThresholds {
			for j, b := range altThresholds {
				guess := asymptoticMu(d.null, d.alt, a, b)
				d.muGuessNull[i][j] = guess
				d.muGuessAlt[i][j] = guess
			}
		}
		return
	}
	guessNull := d.null + d.relativeNull*(d.alt-d.null)
	guessAlt := d.null + d.relativeAlt*(d.alt-d.null)
	for i := range d.muGuessNull {
		for j := range d.muGuessNull[i] {
			d.muGuessNull[i][j] = guessNull
			d.muGuessAlt[i][j] = guessAlt
		}
	}
}

func (d *AdaptiveDesign) OnReset() {
	d.ticIndex = 0
	d.offsetNull = 0
	d.offsetAlt = 0
	d.muDelayed = 0
	for i := range d.initNull {
		for j := range d.initNull[i] {
			d.initNull[i][j] = 0
			d.initAlt[i][j] = 0
		}
	}
}

func (d *AdaptiveDesign) OnTic(p *process.Process, l *likelihood.Tracker) {
	if d.ticIndex == 0 {
		for i := range d.initNull {
			for j := range d.initNull[i] {
				d.initNull[i][j] = p.CurrentUnscaledLogLikelihoodBetween(d.muGuessNull[i][j], d.null)
				switch d.flavor {
				case AdaptiveGeneral:
					mu1Hat := l.ConstrainedAgainst(d.alt)
					d.initAlt[i][j] = p.CurrentUnscaledLogLikelihoodBetween(d.muGuessAlt[i][j], d.null) -
						p.CurrentUnscaledLogLikelihoodBetween(mu1Hat, d.null)
				default: // simple, unconstrained
					d.initAlt[i][j] = p.CurrentUnscaledLogLikelihoodBetween(d.muGuessAlt[i][j], d.alt)
				}
			}
		}
	} else {
		t := p.Count() - 1
		d.offsetNull += p.UnscaledLogLikelihoodAt(t, d.muDelayed, d.null)
		switch d.flavor {
		case AdaptiveGeneral:
			mu1Hat := l.ConstrainedAgainst(d.alt)
			d.offsetAlt = d.offsetNull - p.CurrentUnscaledLogLikelihoodBetween(mu1Hat, d.null)
		default:
			d.offsetAlt += p.UnscaledLogLikelihoodAt(t, d.muDelayed, d.alt)
		}
	}

	if d.flavor == AdaptiveUnconstrained {
		d.muDelayed = l.LatestUnconstrained()
	} else {
		d.muDelayed = l.LatestConstrained()
	}
	d.ticIndex++
}

func (d *AdaptiveDesign) OnToc(*process.Process, *likelihood.Tracker) {}

func (d *AdaptiveDesign) DoDecideNull(threshold float64, row, col int) bool {
	return d.initAlt[row][col]+d.offsetAlt > threshold
}

func (d *AdaptiveDesign) DoDecideAlt(threshold float64, row, col int) bool {
	return d.initNull[row][col]+d.offsetNull > threshold
}

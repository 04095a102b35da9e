package noise

import (
	"fmt"
	"math"

	"sprtsim/domain/core"
	"sprtsim/ports"
)

// AutoRegressive implements v(t) = w(t) + Σ ρ[i]·v(t-1-i), driven by an
// underlying White generator.
type AutoRegressive struct {
	white   *White
	rho     []float64
	history *Sliding
	current float64
}

// NewAutoRegressive validates and constructs an AutoRegressive noise
// generator. The coefficients must lie strictly inside the open unit
// sphere: Σ ρ[i]² < 1.
func NewAutoRegressive(white *White, rho []float64) (*AutoRegressive, error) {
	sumSquares := 0.0
	for i, r := range rho {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return nil, fmt.Errorf("%w: AR coefficient rho[%d]", core.ErrNonFinite, i)
		}
		sumSquares += r * r
	}
	if math.IsNaN(sumSquares) || math.IsInf(sumSquares, 0) || sumSquares >= 1 {
		return nil, core.ErrUnitSphere
	}
	cp := make([]float64, len(rho))
	copy(cp, rho)
	return &AutoRegressive{white: white, rho: cp, history: NewSliding(len(cp))}, nil
}

// Tic draws one white sample, folds in the AR feedback, pushes the result
// onto the history window, and stores it as the current value.
func (a *AutoRegressive) Tic(engine ports.Engine) float64 {
	w := a.white.Tic(engine)
	v := w
	for i, r := range a.rho {
		v += r * a.history.At(i)
	}
	a.history.Push(v)
	a.current = v
	return v
}

// Current returns the latest AR output.
func (a *AutoRegressive) Current() float64 { return a.current }

// Reset zeroes the underlying white noise and the AR history.
func (a *AutoRegressive) Reset() {
	a.white.Reset()
	a.history.Reset()
	a.current = 0
}

// WindowSize returns k, the number of AR coefficients / history depth.
func (a *AutoRegressive) WindowSize() int { return len(a.rho) }

// Scale returns the innovation variance of the underlying white component.
func (a *AutoRegressive) Scale() float64 { return a.white.Scale() }

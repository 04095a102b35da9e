package noise

import (
	"fmt"
	"math"

	"sprtsim/domain/core"
	"sprtsim/ports"
)

// White draws independent N(0, σ²) samples.
type White struct {
	sigma   float64
	current float64
}

// NewWhite validates and constructs a White noise generator. σ must be
// finite and strictly positive.
func NewWhite(sigma float64) (*White, error) {
	if math.IsNaN(sigma) || math.IsInf(sigma, 0) || sigma <= 0 {
		return nil, fmt.Errorf("%w: white noise sigma must be finite and positive", core.ErrNonFinite)
	}
	return &White{sigma: sigma}, nil
}

// Sigma returns the noise standard deviation.
func (w *White) Sigma() float64 { return w.sigma }

// Tic draws one N(0, σ²) sample and stores it as the current value.
func (w *White) Tic(engine ports.Engine) float64 {
	w.current = w.sigma * engine.NormFloat64()
	return w.current
}

// Current returns the latest drawn value.
func (w *White) Current() float64 { return w.current }

// Reset zeroes the current value.
func (w *White) Reset() { w.current = 0 }

// Scale returns σ², the noise variance.
func (w *White) Scale() float64 { return w.sigma * w.sigma }

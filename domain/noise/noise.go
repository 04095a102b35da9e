// Package noise implements the two noise generators over the injected
// random engine: white Gaussian noise and an autoregressive process driven
// by it.
package noise

import "sprtsim/ports"

// Noise is the polymorphic noise capability: advance one tic given an
// engine, read back the current value, and reset to the zero state.
type Noise interface {
	Tic(engine ports.Engine) float64
	Current() float64
	Reset()
	// Scale returns the innovation variance σ², used by the process as the
	// log-likelihood scale and to rescale the threshold grid at init time.
	Scale() float64
}

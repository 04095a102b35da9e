// Package process implements the observation process: the composition of a
// signal, a noise source, and a true signal strength μ*, together with the
// running sufficient statistics the rest of the core reads from.
package process

import (
	"fmt"
	"math"

	"sprtsim/domain/core"
	"sprtsim/domain/noise"
	"sprtsim/domain/signal"
	"sprtsim/ports"
)

// Process composes one signal, one noise source, and one actual μ*. It
// tracks the full observation history, the running sums S_ry = Σ r(i)y(i)
// and S_rr = Σ r(i)², and a per-time snapshot of both so that cumulative
// log-likelihood queries at arbitrary past times are O(1).
type Process struct {
	signal signal.Signal
	noise  noise.Noise
	muStar float64

	history []float64
	sry     float64
	srr     float64
	sryHist []float64
	srrHist []float64

	observed bool
}

// New validates and constructs a Process. μ* must be finite.
func New(sig signal.Signal, ns noise.Noise, muStar float64) (*Process, error) {
	if math.IsNaN(muStar) || math.IsInf(muStar, 0) {
		return nil, fmt.Errorf("%w: actual signal strength", core.ErrNonFinite)
	}
	return &Process{signal: sig, noise: ns, muStar: muStar}, nil
}

// SetSignal replaces the signal. Fails once the process has observed at
// least one sample.
func (p *Process) SetSignal(sig signal.Signal) error {
	if p.observed {
		return core.ErrInvalidState
	}
	p.signal = sig
	return nil
}

// SetNoise replaces the noise source. Fails once the process has observed
// at least one sample.
func (p *Process) SetNoise(ns noise.Noise) error {
	if p.observed {
		return core.ErrInvalidState
	}
	p.noise = ns
	return nil
}

// SetMuStar replaces the actual signal strength. Fails once the process has
// observed at least one sample.
func (p *Process) SetMuStar(muStar float64) error {
	if p.observed {
		return core.ErrInvalidState
	}
	if math.IsNaN(muStar) || math.IsInf(muStar, 0) {
		return fmt.Errorf("%w: actual signal strength", core.ErrNonFinite)
	}
	p.muStar = muStar
	return nil
}

// MuStar returns the actual (simulated) signal strength.
func (p *Process) MuStar() float64 { return p.muStar }

// LogLikelihoodScale returns σ², the noise variance used to rescale
// threshold grids at rule initialization.
func (p *Process) LogLikelihoodScale() float64 { return p.noise.Scale() }

// Tic advances the process by one observation: draws noise, reads the
// deterministic signal value, composes y(t) = μ*r(t) + n(t), and updates the
// running sufficient statistics.
func (p *Process) Tic(engine ports.Engine) float64 {
	n := p.noise.Tic(engine)
	t := len(p.history)
	r := p.signal.At(t)
	y := p.muStar*r + n

	p.history = append(p.history, y)
	p.sry += r * y
	p.srr += r * r
	p.sryHist = append(p.sryHist, p.sry)
	p.srrHist = append(p.srrHist, p.srr)
	p.observed = true
	return y
}

// Reset clears history, running sums, and noise state.
func (p *Process) Reset() {
	p.history = p.history[:0]
	p.sryHist = p.sryHist[:0]
	p.srrHist = p.srrHist[:0]
	p.sry = 0
	p.srr = 0
	p.noise.Reset()
	p.observed = false
}

// Count returns the number of tics observed so far; invariant: equals
// len(history).
func (p *Process) Count() int { return len(p.history) }

// EstimateSignalStrength returns μ̂ = S_ry / S_rr, the single-pass MLE.
func (p *Process) EstimateSignalStrength() float64 {
	if p.srr == 0 {
		return 0
	}
	return p.sry / p.srr
}

// UnscaledLogLikelihoodAt returns the unscaled log-likelihood increment at
// time i between two candidate strengths θ, η:
// (θ-η)·r(i)·(y(i) - ((θ+η)/2)·r(i)).
func (p *Process) UnscaledLogLikelihoodAt(i int, theta, eta float64) float64 {
	r := p.signal.At(i)
	y := p.history[i]
	return (theta - eta) * r * (y - ((theta+eta)/2)*r)
}

// UnscaledLogLikelihoodBetween returns the unscaled cumulative
// log-likelihood between θ, η over history[0..t] inclusive, in O(1) via the
// stored running-sum snapshot at time t. t == -1 means "no history" and
// returns 0.
func (p *Process) UnscaledLogLikelihoodBetween(theta, eta float64, t int) float64 {
	if t < 0 {
		return 0
	}
	sry := p.sryHist[t]
	srr := p.srrHist[t]
	return (theta - eta) * (sry - ((theta+eta)/2)*srr)
}

// CurrentUnscaledLogLikelihoodBetween is UnscaledLogLikelihoodBetween
// evaluated at the process's current time (Count()-1), the value rules use
// on every tic.
func (p *Process) CurrentUnscaledLogLikelihoodBetween(theta, eta float64) float64 {
	return p.UnscaledLogLikelihoodBetween(theta, eta, p.Count()-1)
}

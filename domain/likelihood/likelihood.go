// Package likelihood implements the likelihood tracker: an observer of the
// observation process that maintains the running maximum-likelihood
// estimator sequences every rule reads from.
package likelihood

import "sprtsim/domain/process"

// Tracker appends one (μ̂, μ̂₀) pair per process tic. μ̂ is the raw,
// unconstrained MLE; μ̂₀ = max(μ̂, μ₀) is the null-constrained MLE.
type Tracker struct {
	null          float64
	unconstrained []float64
	constrained   []float64
}

// New constructs a Tracker for the given null mean μ₀.
func New(null float64) *Tracker {
	return &Tracker{null: null}
}

// OnTic appends the process's current MLE to both sequences.
func (t *Tracker) OnTic(p *process.Process) {
	mu := p.EstimateSignalStrength()
	t.unconstrained = append(t.unconstrained, mu)
	constrained := mu
	if t.null > constrained {
		constrained = t.null
	}
	t.constrained = append(t.constrained, constrained)
}

// OnReset clears both sequences.
func (t *Tracker) OnReset() {
	t.unconstrained = t.unconstrained[:0]
	t.constrained = t.constrained[:0]
}

// OnToc clears both sequences; rules that need them must read before toc.
func (t *Tracker) OnToc() {
	t.OnReset()
}

// Len returns the number of tracked observations.
func (t *Tracker) Len() int { return len(t.unconstrained) }

// LatestUnconstrained returns μ̂ at the most recent tic, or 0 if empty.
func (t *Tracker) LatestUnconstrained() float64 {
	if len(t.unconstrained) == 0 {
		return 0
	}
	return t.unconstrained[len(t.unconstrained)-1]
}

// LatestConstrained returns μ̂₀ = max(μ̂, μ₀) at the most recent tic.
func (t *Tracker) LatestConstrained() float64 {
	if len(t.constrained) == 0 {
		return t.null
	}
	return t.constrained[len(t.constrained)-1]
}

// ConstrainedAgainst returns max(μ̂, threshold) at the most recent tic — used
// by rules that need μ̂ constrained against μ₁ rather than μ₀ (μ̂₁ in the
// usual notation).
func (t *Tracker) ConstrainedAgainst(threshold float64) float64 {
	mu := t.LatestUnconstrained()
	if threshold > mu {
		return threshold
	}
	return mu
}

// UnconstrainedAt returns μ̂ at time i.
func (t *Tracker) UnconstrainedAt(i int) float64 { return t.unconstrained[i] }

// ConstrainedAt returns μ̂₀ at time i.
func (t *Tracker) ConstrainedAt(i int) float64 { return t.constrained[i] }

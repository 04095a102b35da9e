package signal

import (
	"fmt"
	"math"

	"sprtsim/domain/core"
)

// Transitionary is r(t) = transition[t] for t < k, level otherwise, where k
// is the length of the transition window.
type Transitionary struct {
	level      float64
	transition []float64
}

// NewTransitionary validates and constructs a Transitionary signal. The
// transition slice is copied so later caller mutation cannot reach into the
// signal (Signal implementations are stateless and must stay so).
func NewTransitionary(level float64, transition []float64) (Transitionary, error) {
	if math.IsNaN(level) || math.IsInf(level, 0) {
		return Transitionary{}, fmt.Errorf("%w: transitionary signal level", core.ErrNonFinite)
	}
	for i, v := range transition {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Transitionary{}, fmt.Errorf("%w: transitionary signal transition[%d]", core.ErrNonFinite, i)
		}
	}
	cp := make([]float64, len(transition))
	copy(cp, transition)
	return Transitionary{level: level, transition: cp}, nil
}

// At returns transition[t] while t is within the transition window, level
// afterwards.
func (t Transitionary) At(i int) float64 {
	if i >= 0 && i < len(t.transition) {
		return t.transition[i]
	}
	return t.level
}

// WindowSize returns k, the length of the transition window.
func (t Transitionary) WindowSize() int { return len(t.transition) }

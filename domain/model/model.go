// Package model holds the hypothesis model: the pair (μ₀, μ₁) every rule
// and every OC in this repository is evaluated against.
package model

import (
	"fmt"
	"math"

	"sprtsim/domain/core"
)

// Model holds the two finite hypothesis means μ₀ < μ₁. Immutable after
// construction (invariant: μ₀ strictly less than μ₁; both
// finite.").
type Model struct {
	null        float64
	smallestAlt float64
}

// New validates and constructs a Model.
func New(null, smallestAlt float64) (Model, error) {
	if math.IsNaN(null) || math.IsInf(null, 0) || math.IsNaN(smallestAlt) || math.IsInf(smallestAlt, 0) {
		return Model{}, fmt.Errorf("%w: model means", core.ErrNonFinite)
	}
	if !(null < smallestAlt) {
		return Model{}, core.ErrBadOrdering
	}
	return Model{null: null, smallestAlt: smallestAlt}, nil
}

// Null returns μ₀.
func (m Model) Null() float64 { return m.null }

// SmallestAlt returns μ₁.
func (m Model) SmallestAlt() float64 { return m.smallestAlt }

// Span returns μ₁ - μ₀.
func (m Model) Span() float64 { return m.smallestAlt - m.null }

// TrueHypothesisIsNull reports whether the analyzed signal strength used for
// an OC pass equals the null mean — the ground truth a decision is scored
// against once a grid has stopped.
func (m Model) TrueHypothesisIsNull(analyzed float64) bool {
	return analyzed == m.null
}

// TrueHypothesisIsAlt reports whether the analyzed signal strength equals
// the smallest alternative mean.
func (m Model) TrueHypothesisIsAlt(analyzed float64) bool {
	return analyzed == m.smallestAlt
}

// String renders the canonical "null-alt" form used in output folder names.
func (m Model) String() string {
	return fmt.Sprintf("%g-%g", m.null, m.smallestAlt)
}

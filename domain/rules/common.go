// Package rules implements the concrete SPRT rule variants: Adaptive,
// Double, and Generalized. Each is a grid.Design — the variant-specific
// math behind the shared two-SPRT grid scaffolding.
package rules

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

var standardNormal = distuv.Normal{Mu: 0, Sigma: 1}

// normalQuantile is Φ⁻¹, the standard normal inverse CDF.
func normalQuantile(p float64) float64 {
	return standardNormal.Quantile(p)
}

// asymptoticMu computes μ₀ + (μ₁-μ₀)/(1+√(a/b)), the shared asymptotic
// initial-guess formula used by all three rule variants when their
// asymptotic-init toggle is set.
func asymptoticMu(null, alt, a, b float64) float64 {
	return null + (alt-null)/(1+math.Sqrt(a/b))
}

// newMatrix allocates a rows×cols grid of float64, zero-initialized.
func newMatrix(rows, cols int) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}
	return m
}

// newBoolMatrix allocates a rows×cols grid of bool, zero-initialized.
func newBoolMatrix(rows, cols int) [][]bool {
	m := make([][]bool, rows)
	for i := range m {
		m[i] = make([]bool, cols)
	}
	return m
}

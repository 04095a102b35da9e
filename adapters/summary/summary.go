// Package summary logs a descriptive digest of each operating
// characteristic pass: median and quartiles of the mean/variance grids,
// flattened across cells.
package summary

import (
	"gonum.org/v1/gonum/mat"

	"github.com/montanaflynn/stats"

	"sprtsim/internal/obslog"
)

// Log flattens mean into a []float64 and reports its median and quartile
// spread at INFO, tagged with label (e.g. "double-1/ess_null"). Percentile
// failures (empty input) are swallowed — callers may log zero-replication
// passes without special-casing them.
func Log(logger *obslog.Logger, label string, mean *mat.Dense) {
	data := flatten(mean)
	if len(data) == 0 {
		return
	}
	median, _ := stats.Median(data)
	q25, _ := stats.Percentile(data, 25)
	q75, _ := stats.Percentile(data, 75)
	stdDev, _ := stats.StandardDeviation(data)
	logger.Info("%s: median=%.6g iqr=[%.6g, %.6g] stddev=%.6g", label, median, q25, q75, stdDev)
}

func flatten(m *mat.Dense) []float64 {
	if m == nil {
		return nil
	}
	rows, cols := m.Dims()
	out := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out = append(out, m.At(i, j))
		}
	}
	return out
}

package moment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

// TestAccumulatorOnConsecutiveIntegers exercises testable property 4: 195
// consecutive integers 0..194 have population mean 97 and sample variance
// 3185, regardless of shift or order.
func TestAccumulatorOnConsecutiveIntegers(t *testing.T) {
	for _, shift := range []float64{0, 25, 100} {
		for _, order := range []int{0, 1, 3, 7} {
			acc := New[float64](shift, order)
			for i := 0; i < 195; i++ {
				acc.Observe(float64(i))
			}
			assert.InDelta(t, 97.0, acc.Mean(), 1e-9, "shift=%v order=%v", shift, order)
			assert.InDelta(t, 3185.0, acc.Variance(), 1e-6, "shift=%v order=%v", shift, order)
		}
	}
}

func TestAccumulatorClearResetsToShift(t *testing.T) {
	acc := New[float64](5, 3)
	acc.Observe(10)
	acc.Observe(20)
	acc.Clear()
	assert.Equal(t, 0, acc.Count())
	assert.Equal(t, 5.0, acc.Mean())
	assert.Equal(t, 0.0, acc.Variance())
}

func TestAccumulatorVarianceNeverNegative(t *testing.T) {
	acc := New[float64](1000, 3)
	acc.Observe(1000)
	acc.Observe(1000.0000001)
	assert.GreaterOrEqual(t, acc.Variance(), 0.0)
}

func TestAccumulatorMergeMatchesCombinedObservations(t *testing.T) {
	combined := New[float64](0, 3)
	left := New[float64](0, 3)
	right := New[float64](0, 3)
	for i := 0; i < 100; i++ {
		combined.Observe(float64(i))
		left.Observe(float64(i))
	}
	for i := 100; i < 195; i++ {
		combined.Observe(float64(i))
		right.Observe(float64(i))
	}
	left.Merge(right)
	assert.Equal(t, combined.Count(), left.Count())
	assert.InDelta(t, combined.Mean(), left.Mean(), 1e-9)
	assert.InDelta(t, combined.Variance(), left.Variance(), 1e-9)
}

func TestMatrixAccumulatorMatchesScalarPerEntry(t *testing.T) {
	scalar := New[float64](0, 3)
	m := NewMatrix(1, 1, 3)

	values := []float64{1, 4, 9, 2, 7, 3}
	for _, v := range values {
		scalar.Observe(v)
		m.Observe(mat.NewDense(1, 1, []float64{v}))
	}

	assert.InDelta(t, scalar.Mean(), m.Mean().At(0, 0), 1e-9)
	assert.InDelta(t, scalar.Variance(), m.Variance().At(0, 0), 1e-9)
}

func TestMatrixAccumulatorClear(t *testing.T) {
	m := NewMatrixDefault(2, 2)
	m.Observe(mat.NewDense(2, 2, []float64{1, 2, 3, 4}))
	m.Clear()
	assert.Equal(t, 0, m.Count())
	mean := m.Mean()
	assert.Equal(t, 0.0, mean.At(0, 0))
}

func TestMatrixAccumulatorShiftedClearRestoresShift(t *testing.T) {
	shift := mat.NewDense(1, 1, []float64{50})
	m := NewMatrixShifted(shift, 3)
	m.Observe(mat.NewDense(1, 1, []float64{10}))
	m.Clear()
	assert.Equal(t, 0, m.Count())
	assert.Equal(t, 50.0, m.Mean().At(0, 0))
}

func TestMatrixAccumulatorShiftedMatchesUnshifted(t *testing.T) {
	unshifted := NewMatrix(1, 1, 3)
	shifted := NewMatrixShifted(mat.NewDense(1, 1, []float64{7}), 3)

	for _, v := range []float64{1, 4, 9, 2, 7, 3} {
		unshifted.Observe(mat.NewDense(1, 1, []float64{v}))
		shifted.Observe(mat.NewDense(1, 1, []float64{v}))
	}

	assert.InDelta(t, unshifted.Mean().At(0, 0), shifted.Mean().At(0, 0), 1e-9)
	assert.InDelta(t, unshifted.Variance().At(0, 0), shifted.Variance().At(0, 0), 1e-9)
}

package moment

import "gonum.org/v1/gonum/mat"

// MatrixAccumulator is the matrix-valued counterpart to Accumulator,
// tracking elementwise mean and variance over a sequence of equally-shaped
// matrices. Used for the two-SPRT grid's decision-error and run-length
// statistics, which are m×n-valued rather than scalar.
type MatrixAccumulator struct {
	rows, cols int
	order      int
	count      int
	binIndex   int
	shift      *mat.Dense
	sums       []*mat.Dense
	squares    []*mat.Dense
}

// NewMatrix constructs a zero-shift MatrixAccumulator for rows×cols matrices
// at the given order. Order must be >= 0; a negative order is treated as 0.
func NewMatrix(rows, cols, order int) *MatrixAccumulator {
	return NewMatrixShifted(mat.NewDense(rows, cols, nil), order)
}

// NewMatrixDefault constructs a zero-shift MatrixAccumulator at the default
// order.
func NewMatrixDefault(rows, cols int) *MatrixAccumulator {
	return NewMatrix(rows, cols, defaultOrder)
}

// NewMatrixShifted constructs a MatrixAccumulator whose observations are
// offset by shift before being folded into the running sums, e.g. an
// anticipated run length used to keep run-length sums numerically small.
func NewMatrixShifted(shift *mat.Dense, order int) *MatrixAccumulator {
	if order < 0 {
		order = 0
	}
	rows, cols := shift.Dims()
	bredth := order + 1
	sums := make([]*mat.Dense, bredth)
	squares := make([]*mat.Dense, bredth)
	for i := range sums {
		sums[i] = mat.NewDense(rows, cols, nil)
		squares[i] = mat.NewDense(rows, cols, nil)
	}
	shiftCopy := mat.NewDense(rows, cols, nil)
	shiftCopy.Copy(shift)
	return &MatrixAccumulator{rows: rows, cols: cols, order: order, shift: shiftCopy, sums: sums, squares: squares}
}

// Clear resets count and all bins to zero, preserving shape, shift, and
// order.
func (a *MatrixAccumulator) Clear() {
	a.count = 0
	a.binIndex = 0
	for i := range a.sums {
		a.sums[i].Zero()
		a.squares[i].Zero()
	}
}

// Observe folds one rows×cols matrix into the current bin. Panics if value
// doesn't match the accumulator's shape, mirroring gonum's own dimension
// checks.
func (a *MatrixAccumulator) Observe(value *mat.Dense) {
	r, c := value.Dims()
	if r != a.rows || c != a.cols {
		panic("moment: matrix observation shape mismatch")
	}
	var x mat.Dense
	x.Sub(value, a.shift)

	sum := a.sums[a.binIndex]
	sum.Add(sum, &x)

	var sq mat.Dense
	sq.MulElem(&x, &x)
	square := a.squares[a.binIndex]
	square.Add(square, &sq)

	a.count++
	a.binIndex = (a.binIndex + 1) % len(a.sums)
}

// Count returns the total number of matrices folded in so far.
func (a *MatrixAccumulator) Count() int { return a.count }

// Merge folds another accumulator's bins into this one in place. Both must
// share shape, shift, and bin count — the expected shape when reducing
// per-worker accumulators built from identical grid configuration.
func (a *MatrixAccumulator) Merge(other *MatrixAccumulator) {
	for i := range a.sums {
		a.sums[i].Add(a.sums[i], other.sums[i])
		a.squares[i].Add(a.squares[i], other.squares[i])
	}
	a.count += other.count
}

// Mean returns the elementwise sample mean across all observations.
func (a *MatrixAccumulator) Mean() *mat.Dense {
	mean := mat.NewDense(a.rows, a.cols, nil)
	mean.Copy(a.shift)
	if a.count == 0 {
		return mean
	}
	n := float64(a.count)
	for _, s := range a.sums {
		var scaled mat.Dense
		scaled.Scale(1/n, s)
		mean.Add(mean, &scaled)
	}
	return mean
}

// Variance returns the elementwise bias-corrected sample variance, clipped
// to nonnegative entrywise.
func (a *MatrixAccumulator) Variance() *mat.Dense {
	variance := mat.NewDense(a.rows, a.cols, nil)
	if a.count < 2 {
		return variance
	}
	n := float64(a.count)
	nLessOne := float64(a.count - 1)

	sa := mat.NewDense(a.rows, a.cols, nil)
	sb := mat.NewDense(a.rows, a.cols, nil)
	for _, s := range a.sums {
		sa.Add(sa, s)
	}
	sb.Scale(1/n, sa)
	sa.Scale(1/nLessOne, sa)

	for _, q := range a.squares {
		variance.Add(variance, q)
	}
	variance.Scale(1/nLessOne, variance)

	var cross mat.Dense
	cross.MulElem(sa, sb)
	variance.Sub(variance, &cross)

	variance.Apply(func(_, _ int, v float64) float64 {
		if v < 0 {
			return 0
		}
		return v
	}, variance)
	return variance
}

// Dims returns the matrix shape this accumulator was constructed for.
func (a *MatrixAccumulator) Dims() (rows, cols int) { return a.rows, a.cols }

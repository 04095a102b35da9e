package grid

import (
	"sprtsim/domain/likelihood"
	"sprtsim/domain/model"
	"sprtsim/domain/process"
)

// Design is the small set of verbs every SPRT rule variant implements. The
// grid state machine owns the shared lifecycle and threshold bookkeeping;
// a Design supplies only the variant-specific math.
type Design interface {
	// IsThresholdIndependent reports whether the decision predicates below
	// are monotone in their own threshold, independent of the other axis.
	// True enables the fast monotone decision scan; false falls back to a
	// full grid scan every tic.
	IsThresholdIndependent() bool

	// OnInitialized is invoked once, after the grid has allocated and
	// scaled its threshold vectors, with the model and the scaled
	// thresholds themselves.
	OnInitialized(m model.Model, nullThresholds, altThresholds []float64)

	// OnReset is invoked at the start of every replication, before the
	// grid wipes its own per-replication state.
	OnReset()

	// OnTic is invoked once per observation, before the grid polls the
	// decision predicates.
	OnTic(p *process.Process, l *likelihood.Tracker)

	// OnToc is invoked once the grid has no active cells left, before it
	// reads the decision matrices to compute errors and run lengths.
	OnToc(p *process.Process, l *likelihood.Tracker)

	// DoDecideNull reports whether the null hypothesis should be accepted
	// at the given scaled threshold and cell indices.
	DoDecideNull(threshold float64, row, col int) bool

	// DoDecideAlt reports whether the alternative hypothesis should be
	// accepted at the given scaled threshold and cell indices.
	DoDecideAlt(threshold float64, row, col int) bool
}

// Package grid implements the shared two-SPRT grid state machine: the
// lifecycle, threshold bookkeeping, and decision-scan scaffolding common to
// every SPRT rule variant. Variant-specific math lives behind the Design
// interface; everything else here is identical across variants.
package grid

import (
	"fmt"
	"math"
	"sort"

	"sprtsim/domain/core"
	"sprtsim/domain/likelihood"
	"sprtsim/domain/model"
	"sprtsim/domain/moment"
	"sprtsim/domain/process"

	"gonum.org/v1/gonum/mat"
)

// State is one of the four lifecycle stages a grid passes through.
type State int

const (
	Uninitialized State = iota
	Listening
	Decided
	Finalized
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Listening:
		return "listening"
	case Decided:
		return "decided"
	case Finalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// ChangeOfMeasure names the parameter a replication is simulated under and
// the one its operating characteristic is analyzed under. When the two
// differ, toc reweights the realization by the likelihood ratio between
// them.
type ChangeOfMeasure struct {
	Analyzed  float64
	Simulated float64
}

// IsIdentity reports whether no reweighting is needed.
func (c ChangeOfMeasure) IsIdentity() bool { return c.Analyzed == c.Simulated }

// TwoSPRT is the shared scaffolding for every 2-SPRT rule: an m×n grid of
// (null threshold, alt threshold) pairs, each cell an independent stopping
// rule sharing one observation stream.
type TwoSPRT struct {
	design Design
	model  model.Model

	state     State
	countTics int

	anticipatedRunLength float64
	nullThresholds       []float64 // scaled
	altThresholds        []float64 // scaled

	decisionErrors *moment.MatrixAccumulator
	runLengths     *moment.MatrixAccumulator

	hasDecidedNull [][]bool
	hasDecidedAlt  [][]bool
	runLength      [][]int
	mask           *mask

	firstUncrossedNull int
	firstUncrossedAlt  int
}

// New constructs an uninitialized grid around the given variant design.
func New(design Design) *TwoSPRT {
	return &TwoSPRT{design: design}
}

// Design returns the variant design this grid was constructed around, for
// callers that need variant-specific labeling.
func (g *TwoSPRT) Design() Design { return g.design }

// State returns the current lifecycle stage.
func (g *TwoSPRT) State() State { return g.state }

// DecisionErrors returns the accumulated decision-error statistics.
func (g *TwoSPRT) DecisionErrors() *moment.MatrixAccumulator { return g.decisionErrors }

// RunLengths returns the accumulated run-length statistics.
func (g *TwoSPRT) RunLengths() *moment.MatrixAccumulator { return g.runLengths }

// NullThresholds returns the sorted, scaled null (A) thresholds.
func (g *TwoSPRT) NullThresholds() []float64 { return g.nullThresholds }

// AltThresholds returns the sorted, scaled alt (B) thresholds.
func (g *TwoSPRT) AltThresholds() []float64 { return g.altThresholds }

// Initialize validates and allocates the grid. Requires Uninitialized.
func (g *TwoSPRT) Initialize(m model.Model, anticipatedRunLength, scale float64, nullThresholds, altThresholds []float64) error {
	if g.state != Uninitialized {
		return core.Invariant("grid", g.state.String(), "initialized")
	}
	if len(nullThresholds) == 0 || len(altThresholds) == 0 {
		return core.ErrEmptyThresholds
	}
	if math.IsNaN(anticipatedRunLength) || math.IsInf(anticipatedRunLength, 0) || anticipatedRunLength < 0 {
		return fmt.Errorf("%w: anticipated run length must be finite and nonnegative", core.ErrNonFinite)
	}
	if math.IsNaN(scale) || math.IsInf(scale, 0) || scale <= 0 {
		return fmt.Errorf("%w: log-likelihood scale must be finite and positive", core.ErrNonFinite)
	}
	for _, a := range nullThresholds {
		if math.IsNaN(a) || math.IsInf(a, 0) {
			return fmt.Errorf("%w: null threshold", core.ErrNonFinite)
		}
	}
	for _, b := range altThresholds {
		if math.IsNaN(b) || math.IsInf(b, 0) {
			return fmt.Errorf("%w: alt threshold", core.ErrNonFinite)
		}
	}

	a := append([]float64(nil), nullThresholds...)
	b := append([]float64(nil), altThresholds...)
	sort.Float64s(a)
	sort.Float64s(b)
	for i := range a {
		a[i] *= scale
	}
	for j := range b {
		b[j] *= scale
	}

	mRows, nCols := len(a), len(b)
	g.model = m
	g.anticipatedRunLength = anticipatedRunLength
	g.nullThresholds = a
	g.altThresholds = b

	g.allocatePerReplication(mRows, nCols)

	zero := mat.NewDense(mRows, nCols, nil)
	anticipated := mat.NewDense(mRows, nCols, nil)
	anticipated.Apply(func(_, _ int, _ float64) float64 { return anticipatedRunLength }, anticipated)

	g.decisionErrors = moment.NewMatrixShifted(zero, 3)
	g.runLengths = moment.NewMatrixShifted(anticipated, 3)

	g.design.OnInitialized(m, g.nullThresholds, g.altThresholds)
	g.state = Finalized
	return nil
}

func (g *TwoSPRT) allocatePerReplication(rows, cols int) {
	g.hasDecidedNull = make([][]bool, rows)
	g.hasDecidedAlt = make([][]bool, rows)
	g.runLength = make([][]int, rows)
	for i := 0; i < rows; i++ {
		g.hasDecidedNull[i] = make([]bool, cols)
		g.hasDecidedAlt[i] = make([]bool, cols)
		g.runLength[i] = make([]int, cols)
	}
	g.mask = newMask(rows, cols)
	g.firstUncrossedNull = 0
	g.firstUncrossedAlt = 0
}

// Reset prepares the grid for another replication, keeping aggregate
// statistics. Requires Finalized.
func (g *TwoSPRT) Reset() error {
	if g.state != Finalized {
		return core.Invariant("grid", g.state.String(), "listening")
	}
	g.design.OnReset()
	g.softReset()
	g.state = Listening
	return nil
}

func (g *TwoSPRT) softReset() {
	g.countTics = 0
	rows := len(g.nullThresholds)
	cols := len(g.altThresholds)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			g.hasDecidedNull[i][j] = false
			g.hasDecidedAlt[i][j] = false
			g.runLength[i][j] = 0
		}
	}
	g.mask.wipe()
	g.firstUncrossedNull = 0
	g.firstUncrossedAlt = 0
}

// IsListening reports whether the grid still has active cells.
func (g *TwoSPRT) IsListening() bool { return g.state == Listening }

// HasStopped reports whether every cell has decided.
func (g *TwoSPRT) HasStopped() bool { return g.state == Decided }

// Tic advances the grid by one observation. Requires Listening or Decided;
// a no-op in Decided.
func (g *TwoSPRT) Tic(p *process.Process, l *likelihood.Tracker) error {
	switch g.state {
	case Listening:
	case Decided:
		return nil
	default:
		return core.Invariant("grid", g.state.String(), "listening")
	}

	g.countTics++
	if g.countTics != p.Count() {
		return core.ErrTicDesync
	}
	g.design.OnTic(p, l)

	rows := len(g.nullThresholds)
	cols := len(g.altThresholds)

	if g.design.IsThresholdIndependent() {
		g.monotoneScan(rows, cols)
	} else {
		g.gridScan()
	}
	return nil
}

// monotoneScan implements the fast path for threshold-independent designs:
// a single pass per axis, advancing the frontier while the predicate holds.
func (g *TwoSPRT) monotoneScan(rows, cols int) {
	nextNull := g.firstUncrossedNull
	for i := g.firstUncrossedNull; i < rows; i++ {
		if !g.design.DoDecideNull(g.nullThresholds[i], i, 0) {
			break
		}
		nextNull = i + 1
		for j := g.firstUncrossedAlt; j < cols; j++ {
			g.hasDecidedNull[i][j] = true
			g.runLength[i][j] = g.countTics
		}
	}

	nextAlt := g.firstUncrossedAlt
	for j := g.firstUncrossedAlt; j < cols; j++ {
		if !g.design.DoDecideAlt(g.altThresholds[j], 0, j) {
			break
		}
		nextAlt = j + 1
		for i := g.firstUncrossedNull; i < rows; i++ {
			g.hasDecidedAlt[i][j] = true
			g.runLength[i][j] = g.countTics
		}
	}

	g.firstUncrossedNull = nextNull
	g.firstUncrossedAlt = nextAlt
	if g.firstUncrossedNull >= rows || g.firstUncrossedAlt >= cols {
		g.state = Decided
	}
}

// gridScan implements the general path: poll every still-active cell at
// its own thresholds, then commit the ones that decided.
func (g *TwoSPRT) gridScan() {
	g.mask.scan(func(i, j int) bool {
		a := g.nullThresholds[i]
		b := g.altThresholds[j]
		maybeNull := g.design.DoDecideNull(a, i, j)
		maybeAlt := g.design.DoDecideAlt(b, i, j)
		g.hasDecidedNull[i][j] = maybeNull
		g.hasDecidedAlt[i][j] = maybeAlt
		g.runLength[i][j] = g.countTics
		return maybeNull || maybeAlt
	})
	if g.mask.empty() {
		g.state = Decided
	}
}

// Toc finalizes the replication: computes per-cell decision errors and
// change-of-measure-corrected run lengths, feeds them into the aggregate
// statistics, and resets for the next replication. Requires Decided.
func (g *TwoSPRT) Toc(p *process.Process, l *likelihood.Tracker, com ChangeOfMeasure) error {
	if g.state != Decided {
		return core.Invariant("grid", g.state.String(), "decided")
	}
	g.design.OnToc(p, l)

	rows := len(g.nullThresholds)
	cols := len(g.altThresholds)

	isNullTrue := g.model.TrueHypothesisIsNull(com.Analyzed)
	isAltTrue := g.model.TrueHypothesisIsAlt(com.Analyzed)

	correctedRunLengths := mat.NewDense(rows, cols, nil)
	correctedErrors := mat.NewDense(rows, cols, nil)

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			crossedNull := g.hasDecidedNull[i][j]
			crossedAlt := g.hasDecidedAlt[i][j]
			if !crossedNull && !crossedAlt {
				return core.CellError(core.ErrNoDecision, i, j)
			}

			runLength := g.runLength[i][j]
			error := 0.0
			if crossedNull && crossedAlt {
				error = 1
			}
			if crossedNull && isAltTrue {
				error = 1
			}
			if crossedAlt && isNullTrue {
				error = 1
			}

			t := float64(runLength)
			e := error
			if !com.IsIdentity() {
				correction := math.Exp(p.UnscaledLogLikelihoodBetween(com.Simulated, com.Analyzed, runLength-1) / p.LogLikelihoodScale())
				t /= correction
				e /= correction
			}
			correctedRunLengths.Set(i, j, t)
			correctedErrors.Set(i, j, e)
		}
	}

	g.runLengths.Observe(correctedRunLengths)
	g.decisionErrors.Observe(correctedErrors)
	g.softReset()
	g.state = Finalized
	return nil
}

// MergeFrom folds another grid's aggregate statistics into this one, for
// reducing per-worker results after outer-concurrency replication. Both
// grids must have been initialized identically.
func (g *TwoSPRT) MergeFrom(other *TwoSPRT) {
	g.decisionErrors.Merge(other.decisionErrors)
	g.runLengths.Merge(other.runLengths)
}

// CleanUp wipes aggregate statistics and per-replication state. Requires
// Finalized.
func (g *TwoSPRT) CleanUp() error {
	if g.state != Finalized {
		return core.Invariant("grid", g.state.String(), "finalized")
	}
	g.softReset()
	g.decisionErrors.Clear()
	g.runLengths.Clear()
	return nil
}

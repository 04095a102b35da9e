package grid

import (
	"testing"

	"sprtsim/domain/core"
	"sprtsim/domain/likelihood"
	"sprtsim/domain/model"
	"sprtsim/domain/noise"
	"sprtsim/domain/process"
	"sprtsim/domain/signal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedEngine struct{ norms []float64 }

func (e *fixedEngine) Uint32() uint32 { return 0 }
func (e *fixedEngine) NormFloat64() float64 {
	v := e.norms[0]
	e.norms = e.norms[1:]
	return v
}

// countingDesign accepts a hypothesis once the process has observed at
// least `threshold` many tics scaled by 1 — deliberately simplistic, but
// genuinely monotone in the threshold (more tics never un-crosses a
// smaller threshold), which is all IsThresholdIndependent promises.
type countingDesign struct {
	independent bool
	tics        int
}

func (d *countingDesign) IsThresholdIndependent() bool { return d.independent }
func (d *countingDesign) OnInitialized(model.Model, []float64, []float64) {}
func (d *countingDesign) OnReset()                                        { d.tics = 0 }
func (d *countingDesign) OnTic(*process.Process, *likelihood.Tracker)     { d.tics++ }
func (d *countingDesign) OnToc(*process.Process, *likelihood.Tracker)     {}
func (d *countingDesign) DoDecideNull(threshold float64, row, col int) bool {
	return float64(d.tics) >= threshold
}
func (d *countingDesign) DoDecideAlt(threshold float64, row, col int) bool {
	return float64(d.tics) >= threshold
}

func newHarness(t *testing.T) (*process.Process, *likelihood.Tracker, *fixedEngine) {
	t.Helper()
	sig, err := signal.NewConstant(1)
	require.NoError(t, err)
	w, err := noise.NewWhite(1)
	require.NoError(t, err)
	p, err := process.New(sig, w, 0)
	require.NoError(t, err)
	return p, likelihood.New(0), &fixedEngine{norms: []float64{0, 0, 0, 0, 0}}
}

func TestGridLifecycleMonotonePath(t *testing.T) {
	m, err := model.New(0, 1)
	require.NoError(t, err)

	design := &countingDesign{independent: true}
	g := New(design)

	require.NoError(t, g.Initialize(m, 10, 1, []float64{1, 2}, []float64{1, 2}))
	require.Equal(t, Finalized, g.State())
	require.NoError(t, g.Reset())
	require.Equal(t, Listening, g.State())

	p, l, eng := newHarness(t)
	for i := 0; i < 2 && g.IsListening(); i++ {
		p.Tic(eng)
		l.OnTic(p)
		require.NoError(t, g.Tic(p, l))
	}
	assert.True(t, g.HasStopped())

	require.NoError(t, g.Toc(p, l, ChangeOfMeasure{Analyzed: 0, Simulated: 0}))
	assert.Equal(t, Finalized, g.State())
	assert.Equal(t, 1, g.RunLengths().Count())
	assert.Equal(t, 1, g.DecisionErrors().Count())
}

// gridModeDesign is intentionally not threshold-independent, forcing the
// full-grid scan path and mask commit.
type gridModeDesign struct{ tics int }

func (d *gridModeDesign) IsThresholdIndependent() bool                      { return false }
func (d *gridModeDesign) OnInitialized(model.Model, []float64, []float64)   {}
func (d *gridModeDesign) OnReset()                                         { d.tics = 0 }
func (d *gridModeDesign) OnTic(*process.Process, *likelihood.Tracker)      { d.tics++ }
func (d *gridModeDesign) OnToc(*process.Process, *likelihood.Tracker)      {}
func (d *gridModeDesign) DoDecideNull(threshold float64, row, col int) bool {
	return float64(d.tics) >= threshold
}
func (d *gridModeDesign) DoDecideAlt(threshold float64, row, col int) bool {
	return float64(d.tics) >= threshold
}

func TestGridLifecycleGridScanPath(t *testing.T) {
	m, err := model.New(0, 1)
	require.NoError(t, err)

	design := &gridModeDesign{}
	g := New(design)
	require.NoError(t, g.Initialize(m, 5, 1, []float64{1, 2}, []float64{1, 2}))
	require.NoError(t, g.Reset())

	p, l, eng := newHarness(t)
	for i := 0; i < 2 && g.IsListening(); i++ {
		p.Tic(eng)
		l.OnTic(p)
		require.NoError(t, g.Tic(p, l))
	}
	assert.True(t, g.HasStopped())
	require.NoError(t, g.Toc(p, l, ChangeOfMeasure{Analyzed: 0, Simulated: 0}))
}

func TestGridRejectsEmptyThresholds(t *testing.T) {
	m, err := model.New(0, 1)
	require.NoError(t, err)
	g := New(&countingDesign{independent: true})
	err = g.Initialize(m, 1, 1, nil, []float64{1})
	assert.ErrorIs(t, err, core.ErrEmptyThresholds)
}

func TestGridChangeOfMeasureIdentityWhenEqual(t *testing.T) {
	com := ChangeOfMeasure{Analyzed: 0.5, Simulated: 0.5}
	assert.True(t, com.IsIdentity())
	com2 := ChangeOfMeasure{Analyzed: 0, Simulated: 1}
	assert.False(t, com2.IsIdentity())
}

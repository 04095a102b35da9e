package montecarlo

import (
	"testing"

	"sprtsim/domain/grid"
	"sprtsim/domain/likelihood"
	"sprtsim/domain/model"
	"sprtsim/domain/noise"
	"sprtsim/domain/process"
	"sprtsim/domain/rules"
	"sprtsim/domain/signal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cyclicEngine repeats a fixed sequence of normal draws indefinitely, long
// enough to drive a handful of small replications to a decision.
type cyclicEngine struct {
	norms []float64
	i     int
}

func (e *cyclicEngine) Uint32() uint32 { return 0 }
func (e *cyclicEngine) NormFloat64() float64 {
	v := e.norms[e.i%len(e.norms)]
	e.i++
	return v
}

func newDriver(t *testing.T, n int) *Driver {
	t.Helper()
	m, err := model.New(0, 1)
	require.NoError(t, err)

	design := rules.NewDoubleDesign(0.5, false, false)
	g := grid.New(design)
	require.NoError(t, g.Initialize(m, 10, 1, []float64{1, 2}, []float64{1, 2}))

	sig, err := signal.NewConstant(1)
	require.NoError(t, err)
	w, err := noise.NewWhite(1)
	require.NoError(t, err)
	p, err := process.New(sig, w, 1) // simulate under the alternative

	require.NoError(t, err)

	return &Driver{
		N:          n,
		MaxLength:  1000,
		Process:    p,
		Likelihood: likelihood.New(0),
		Rules:      []*grid.TwoSPRT{g},
		Engine:     &cyclicEngine{norms: []float64{0.8, 0.5, -0.1, 0.3, 0.6, -0.2}},
		Measure:    grid.ChangeOfMeasure{Analyzed: 1, Simulated: 1},
	}
}

func TestDriverRunCompletesReplicationsAndAccumulatesStatistics(t *testing.T) {
	d := newDriver(t, 5)
	require.NoError(t, d.Run())
	assert.Equal(t, 5, d.Rules[0].RunLengths().Count())
	assert.Equal(t, 5, d.Rules[0].DecisionErrors().Count())
}

func TestDriverRejectsNonPositiveReplicationCount(t *testing.T) {
	d := newDriver(t, 0)
	err := d.Run()
	assert.Error(t, err)
}

package process

import (
	"testing"

	"sprtsim/domain/core"
	"sprtsim/domain/noise"
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

func newTestProcess(t *testing.T) *Process {
	t.Helper()
	sig, err := signal.NewConstant(1)
	require.NoError(t, err)
	w, err := noise.NewWhite(1)
	require.NoError(t, err)
	p, err := New(sig, w, 0.5)
	require.NoError(t, err)
	return p
}

func TestProcessEstimateMatchesRunningSums(t *testing.T) {
	p := newTestProcess(t)
	eng := &fixedEngine{norms: []float64{0.1, -0.2, 0.3}}

	for i := 0; i < 3; i++ {
		p.Tic(eng)
	}

	assert.Equal(t, 3, p.Count())
	// mu* = 0.5 and r = 1, so y = 0.6, 0.3, 0.8: S_ry = 1.7 and S_rr = 3.
	assert.InDelta(t, 1.7/3.0, p.EstimateSignalStrength(), 1e-12)
}

func TestProcessSetterFailsAfterObservation(t *testing.T) {
	p := newTestProcess(t)
	eng := &fixedEngine{norms: []float64{0.0}}
	p.Tic(eng)

	err := p.SetMuStar(1.0)
	assert.True(t, core.IsInvalidState(err))
}

func TestProcessResetClearsHistory(t *testing.T) {
	p := newTestProcess(t)
	eng := &fixedEngine{norms: []float64{0.0, 0.0}}
	p.Tic(eng)
	p.Tic(eng)
	require.Equal(t, 2, p.Count())

	p.Reset()
	assert.Equal(t, 0, p.Count())
	assert.Equal(t, 0.0, p.EstimateSignalStrength())

	// setter works again post-reset
	require.NoError(t, p.SetMuStar(2.0))
}

func TestUnscaledLogLikelihoodBetweenMatchesManualSum(t *testing.T) {
	p := newTestProcess(t)
	eng := &fixedEngine{norms: []float64{0.5, -0.3, 0.1}}
	for i := 0; i < 3; i++ {
		p.Tic(eng)
	}

	theta, eta := 1.0, 0.0
	want := 0.0
	for i := 0; i < 3; i++ {
		want += p.UnscaledLogLikelihoodAt(i, theta, eta)
	}
	got := p.UnscaledLogLikelihoodBetween(theta, eta, 2)
	assert.InDelta(t, want, got, 1e-9)
}

func TestUnscaledLogLikelihoodBetweenEmptyHistory(t *testing.T) {
	p := newTestProcess(t)
	assert.Equal(t, 0.0, p.UnscaledLogLikelihoodBetween(1, 0, -1))
}

package likelihood

import (
	"testing"

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

// TestConstrainedEqualsMaxOfUnconstrainedAndNull exercises testable
// property 5: μ̂₀ = max(μ̂, μ₀) holds elementwise across time.
func TestConstrainedEqualsMaxOfUnconstrainedAndNull(t *testing.T) {
	sig, err := signal.NewConstant(1)
	require.NoError(t, err)
	w, err := noise.NewWhite(1)
	require.NoError(t, err)
	p, err := process.New(sig, w, -2) // negative mu* drives mu-hat below 0
	require.NoError(t, err)

	tracker := New(0) // null = 0
	eng := &fixedEngine{norms: []float64{0.1, -0.2, 0.05, 0.3}}

	for i := 0; i < 4; i++ {
		p.Tic(eng)
		tracker.OnTic(p)
	}

	require.Equal(t, 4, tracker.Len())
	for i := 0; i < 4; i++ {
		want := tracker.UnconstrainedAt(i)
		if want < 0 {
			want = 0
		}
		assert.Equal(t, want, tracker.ConstrainedAt(i))
	}
}

func TestResetAndTocClearSequences(t *testing.T) {
	tracker := New(0)
	sig, _ := signal.NewConstant(1)
	w, _ := noise.NewWhite(1)
	p, _ := process.New(sig, w, 0)
	eng := &fixedEngine{norms: []float64{0.0}}
	p.Tic(eng)
	tracker.OnTic(p)
	require.Equal(t, 1, tracker.Len())

	tracker.OnReset()
	assert.Equal(t, 0, tracker.Len())

	p.Tic(eng)
	tracker.OnTic(p)
	tracker.OnToc()
	assert.Equal(t, 0, tracker.Len())
}

package noise

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// constEngine always returns a fixed normal deviate, for deterministic tests.
type constEngine struct{ norm float64 }

func (e constEngine) Uint32() uint32       { return 0 }
func (e constEngine) NormFloat64() float64 { return e.norm }

func TestWhiteTicScalesBySigma(t *testing.T) {
	w, err := NewWhite(2.0)
	require.NoError(t, err)

	v := w.Tic(constEngine{norm: 1.5})
	assert.Equal(t, 3.0, v)
	assert.Equal(t, 3.0, w.Current())

	w.Reset()
	assert.Equal(t, 0.0, w.Current())
}

func TestWhiteRejectsNonPositiveSigma(t *testing.T) {
	_, err := NewWhite(0)
	assert.Error(t, err)
	_, err = NewWhite(-1)
	assert.Error(t, err)
}

func TestAutoRegressiveRejectsOutsideUnitSphere(t *testing.T) {
	w, _ := NewWhite(1.0)
	_, err := NewAutoRegressive(w, []float64{0.8, 0.8})
	assert.Error(t, err)
}

func TestAutoRegressiveFeedback(t *testing.T) {
	w, err := NewWhite(1.0)
	require.NoError(t, err)
	ar, err := NewAutoRegressive(w, []float64{0.5})
	require.NoError(t, err)

	v1 := ar.Tic(constEngine{norm: 1.0}) // w=1, history=0 -> v=1
	assert.Equal(t, 1.0, v1)

	v2 := ar.Tic(constEngine{norm: 1.0}) // w=1, history.At(0)=1 -> v=1+0.5*1=1.5
	assert.Equal(t, 1.5, v2)
}

// TestSlidingWindowContents exercises the windowing behavior: capacity 3, pushed with 0,1,2,...; after t pushes contents
// equal {t-3,t-2,t-1} in insertion order.
func TestSlidingWindowContents(t *testing.T) {
	s := NewSliding(3)
	for i := 0; i < 10; i++ {
		s.Push(float64(i))
	}
	assert.Equal(t, []float64{7, 8, 9}, s.Snapshot())
}

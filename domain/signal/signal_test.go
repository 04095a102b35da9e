package signal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstantAt(t *testing.T) {
	s, err := NewConstant(3)
	require.NoError(t, err)

	assert.Equal(t, 3.0, s.At(0))
	assert.Equal(t, 3.0, s.At(1))
	assert.Equal(t, 3.0, s.At(1000))
}

func TestConstantRejectsNonFinite(t *testing.T) {
	_, err := NewConstant(math.NaN())
	assert.Error(t, err)
}

func TestTransitionaryAt(t *testing.T) {
	s, err := NewTransitionary(3, []float64{7, 8})
	require.NoError(t, err)

	assert.Equal(t, 7.0, s.At(0))
	assert.Equal(t, 8.0, s.At(1))
	assert.Equal(t, 3.0, s.At(2))
	assert.Equal(t, 3.0, s.At(100))
	assert.Equal(t, 2, s.WindowSize())
}

func TestTransitionaryCopiesInput(t *testing.T) {
	window := []float64{1, 2, 3}
	s, err := NewTransitionary(0, window)
	require.NoError(t, err)

	window[0] = 99
	assert.Equal(t, 1.0, s.At(0))
}

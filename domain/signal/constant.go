package signal

import (
	"fmt"
	"math"

	"sprtsim/domain/core"
)

// Constant is r(t) = level for all t.
type Constant struct {
	level float64
}

// NewConstant validates and constructs a Constant signal.
func NewConstant(level float64) (Constant, error) {
	if math.IsNaN(level) || math.IsInf(level, 0) {
		return Constant{}, fmt.Errorf("%w: constant signal level", core.ErrNonFinite)
	}
	return Constant{level: level}, nil
}

// At returns the constant level, independent of t.
func (c Constant) At(t int) float64 { return c.level }

// Level returns the constant level.
func (c Constant) Level() float64 { return c.level }

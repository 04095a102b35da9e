// Package rngengine implements ports.Engine over math/rand, seeded from the
// system clock at construction so no package-level singleton is needed.
package rngengine

import (
	"math/rand"
	"time"
)

// Engine wraps a private *rand.Rand. Not safe for concurrent use; the
// Monte-Carlo pool gives every worker its own Engine.
type Engine struct {
	rng *rand.Rand
}

// New seeds a fresh Engine from the system clock.
func New() *Engine {
	return &Engine{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSeeded constructs an Engine from an explicit seed, for reproducible
// tests and debugging runs.
func NewSeeded(seed int64) *Engine {
	return &Engine{rng: rand.New(rand.NewSource(seed))}
}

// NewPool draws n distinct seeds sequentially from master and returns one
// freshly-seeded Engine per draw. Call this from the single goroutine that
// owns master before fanning work out across workers — math/rand sources
// are not safe for concurrent use, so master itself must not be touched
// again once its children are handed to other goroutines.
func NewPool(master *Engine, n int) []*Engine {
	pool := make([]*Engine, n)
	for i := range pool {
		seed := int64(master.Uint32())<<32 | int64(master.Uint32())
		pool[i] = NewSeeded(seed)
	}
	return pool
}

// Uint32 returns a uniformly-distributed 32-bit word.
func (e *Engine) Uint32() uint32 { return e.rng.Uint32() }

// NormFloat64 returns a standard normal deviate.
func (e *Engine) NormFloat64() float64 { return e.rng.NormFloat64() }

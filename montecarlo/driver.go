// Package montecarlo implements the replication loop that drives one
// process and a list of two-SPRT grids through N independent replications,
// plus the outer concurrency pool that partitions replications across
// workers and reduces their statistics by summation.
package montecarlo

import (
	"fmt"

	"sprtsim/domain/core"
	"sprtsim/domain/grid"
	"sprtsim/domain/likelihood"
	"sprtsim/domain/process"
	"sprtsim/ports"
)

// defaultMaxLength is the safety cap on observations per replication.
const defaultMaxLength = 1_000_000

// Driver runs N replications of one process against a shared list of
// two-SPRT grids, all observing the same realization each replication.
type Driver struct {
	N         int
	MaxLength int // 0 means defaultMaxLength

	Process    *process.Process
	Likelihood *likelihood.Tracker
	Rules      []*grid.TwoSPRT
	Engine     ports.Engine
	Measure    grid.ChangeOfMeasure

	// OnStart is invoked once, after every rule has transitioned to
	// listening but before the first observation. Returning an error
	// aborts the run before any replication executes.
	OnStart func() error
	// OnStop is invoked once after every replication has completed.
	OnStop func()
}

// Run executes the configured number of replications. It halts immediately
// on any rule or process error, after cleanly finishing the current tic.
func (d *Driver) Run() error {
	if d.N <= 0 {
		return fmt.Errorf("%w: replication count must be positive", core.ErrNonFinite)
	}
	maxLength := d.MaxLength
	if maxLength <= 0 {
		maxLength = defaultMaxLength
	}

	d.Process.Reset()
	if err := resetRules(d.Rules); err != nil {
		return err
	}

	if d.OnStart != nil {
		if err := d.OnStart(); err != nil {
			return err
		}
	}

	for i := 0; i < d.N; i++ {
		for anyListening(d.Rules) {
			d.Process.Tic(d.Engine)
			d.Likelihood.OnTic(d.Process)
			for _, r := range d.Rules {
				if err := r.Tic(d.Process, d.Likelihood); err != nil {
					return err
				}
			}
			if d.Process.Count() > maxLength {
				return fmt.Errorf("%w: replication %d", core.ErrExceededLength, i)
			}
		}

		for _, r := range d.Rules {
			if err := r.Toc(d.Process, d.Likelihood, d.Measure); err != nil {
				return err
			}
		}
		d.Likelihood.OnToc()
		d.Process.Reset()
		if err := resetRules(d.Rules); err != nil {
			return err
		}
	}

	if d.OnStop != nil {
		d.OnStop()
	}
	return nil
}

// resetRules transitions every rule from Finalized back to Listening,
// ready for the next replication.
func resetRules(rules []*grid.TwoSPRT) error {
	for _, r := range rules {
		if err := r.Reset(); err != nil {
			return err
		}
	}
	return nil
}

func anyListening(rules []*grid.TwoSPRT) bool {
	for _, r := range rules {
		if r.IsListening() {
			return true
		}
	}
	return false
}

package montecarlo

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// WorkerBuild constructs one worker's private Driver, given its share of
// the total replication count. Each worker must own its own process and
// grid instances — rules hold no shared mutable state, and the driver
// requires exclusive ownership of both for the run's duration.
type WorkerBuild func(replications int) *Driver

// Pool partitions a target replication count across up to Threads workers,
// each running its own Driver to completion, then reduces their grids by
// summing moment-statistic bins. No locks are needed: workers communicate
// only by returning their finished Driver to the reducer.
type Pool struct {
	Threads int
	Build   WorkerBuild
}

// Run executes total replications split evenly across the pool's worker
// budget and merges every worker's rule statistics into the first worker's
// Driver, which is returned. Once every worker has returned, the first
// worker error (in worker order) is returned instead and nothing is merged.
func (p *Pool) Run(ctx context.Context, total int) (*Driver, error) {
	threads := p.Threads
	if threads <= 0 {
		threads = 1
	}
	if threads > total {
		threads = total
	}

	shares := partition(total, threads)
	sem := semaphore.NewWeighted(int64(threads))

	drivers := make([]*Driver, len(shares))
	errs := make([]error, len(shares))

	for i, share := range shares {
		if share == 0 {
			continue
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, fmt.Errorf("acquiring worker slot: %w", err)
		}
		i, share := i, share
		go func() {
			defer sem.Release(1)
			d := p.Build(share)
			errs[i] = d.Run()
			drivers[i] = d
		}()
	}

	// Wait for every slot to free up, meaning every worker returned.
	if err := sem.Acquire(ctx, int64(threads)); err != nil {
		return nil, fmt.Errorf("awaiting workers: %w", err)
	}
	sem.Release(int64(threads))

	var reduced *Driver
	for i, d := range drivers {
		if errs[i] != nil {
			return nil, errs[i]
		}
		if d == nil {
			continue
		}
		if reduced == nil {
			reduced = d
			continue
		}
		for j, rule := range reduced.Rules {
			rule.MergeFrom(d.Rules[j])
		}
	}
	return reduced, nil
}

// partition splits total into parts workers as evenly as possible.
func partition(total, workers int) []int {
	shares := make([]int, workers)
	base := total / workers
	remainder := total % workers
	for i := range shares {
		shares[i] = base
		if i < remainder {
			shares[i]++
		}
	}
	return shares
}

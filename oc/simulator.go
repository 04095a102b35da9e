// Package oc orchestrates the four standard operating characteristics each
// rule is scored on: expected sample size under the null and under the
// alternative, probability of false alarm, and probability of missed
// signal. Each is one Monte-Carlo driver pass with a specific
// (analyzed, simulated) signal-strength pair. Callers may additionally
// request arbitrary auxiliary passes (CustomMeasures) for signal-strength
// pairs outside the four standard ones.
package oc

import (
	"context"

	"sprtsim/domain/grid"
	"sprtsim/domain/likelihood"
	"sprtsim/domain/model"
	"sprtsim/domain/process"
	"sprtsim/montecarlo"
	"sprtsim/ports"
)

// Kind names one of the four standard operating characteristics, or the
// auxiliary "custom" pass used for caller-supplied signal-strength pairs.
type Kind int

const (
	ESSNull Kind = iota
	ESSAlt
	PFA
	PMS
	Custom
)

func (k Kind) String() string {
	switch k {
	case ESSNull:
		return "ess_null"
	case ESSAlt:
		return "ess_alt"
	case PFA:
		return "pfa"
	case PMS:
		return "pms"
	case Custom:
		return "custom"
	default:
		return "unknown"
	}
}

// measure returns the (analyzed, simulated) signal-strength pair a
// standard OC is evaluated under.
func (k Kind) measure(m model.Model) grid.ChangeOfMeasure {
	switch k {
	case ESSNull:
		return grid.ChangeOfMeasure{Analyzed: m.Null(), Simulated: m.Null()}
	case ESSAlt:
		return grid.ChangeOfMeasure{Analyzed: m.SmallestAlt(), Simulated: m.SmallestAlt()}
	case PFA:
		return grid.ChangeOfMeasure{Analyzed: m.Null(), Simulated: m.SmallestAlt()}
	case PMS:
		return grid.ChangeOfMeasure{Analyzed: m.SmallestAlt(), Simulated: m.Null()}
	default:
		return grid.ChangeOfMeasure{}
	}
}

// StandardKinds lists the four operating characteristics evaluated for
// every rule on every run.
var StandardKinds = [4]Kind{ESSNull, ESSAlt, PFA, PMS}

// Result holds one rule's outcome for one operating characteristic. Measure
// is always populated, including for standard kinds, so a writer never has
// to recompute it from the model.
type Result struct {
	Kind    Kind
	Measure grid.ChangeOfMeasure
	Rule    *grid.TwoSPRT
}

// RuleFactory builds a fresh, uninitialized grid wrapping one rule design.
// For every (rule, OC) pair, Simulator calls it once for a probe grid and
// once per pool worker, since grid state cannot be reused across
// independently-measured passes.
type RuleFactory func() *grid.TwoSPRT

// Simulator runs one Monte-Carlo pass per (rule, OC) combination and
// collects the resulting grids for the writer adapter to serialize.
type Simulator struct {
	Model                model.Model
	AnticipatedRunLength float64
	LogLikelihoodScale   float64
	NullThresholds       []float64
	AltThresholds        []float64

	Simulations int
	Threads     int
	MaxLength   int

	NewProcess func(muStar float64) *process.Process
	// NewEngine builds one fresh random engine per pool worker. Drivers
	// run concurrently under montecarlo.Pool, and a math/rand source is
	// not safe to share across goroutines, so every worker gets its own.
	NewEngine func() ports.Engine
	Rules     []RuleFactory

	// CustomMeasures lists additional (analyzed, simulated) pairs to run
	// beyond the four standard OCs, e.g. the "signal strengths" entries of
	// a run descriptor. Each produces one auxiliary Result per rule.
	CustomMeasures []grid.ChangeOfMeasure
}

// Run executes every (rule, OC) combination, in rule-major, OC-minor order,
// followed by every (rule, custom measure) combination, and returns one
// Result per combination.
func (s *Simulator) Run(ctx context.Context) ([]Result, error) {
	var results []Result
	for _, factory := range s.Rules {
		for _, kind := range StandardKinds {
			r, err := s.runOne(ctx, factory, kind, kind.measure(s.Model))
			if err != nil {
				return nil, err
			}
			results = append(results, r)
		}
		for _, com := range s.CustomMeasures {
			r, err := s.runOne(ctx, factory, Custom, com)
			if err != nil {
				return nil, err
			}
			results = append(results, r)
		}
	}
	return results, nil
}

// runOne validates the (rule, measure) combination once up front, then fans
// the replication count across the pool. The probe grid is discarded; every
// worker builds its own from the same factory and initialization arguments,
// so a later Initialize failure inside the pool would be a genuine
// programmer error rather than a reachable configuration failure.
func (s *Simulator) runOne(ctx context.Context, factory RuleFactory, kind Kind, com grid.ChangeOfMeasure) (Result, error) {
	probe := factory()
	if err := probe.Initialize(s.Model, s.AnticipatedRunLength, s.LogLikelihoodScale, s.NullThresholds, s.AltThresholds); err != nil {
		return Result{}, err
	}

	build := func(replications int) *montecarlo.Driver {
		g := factory()
		if err := g.Initialize(s.Model, s.AnticipatedRunLength, s.LogLikelihoodScale, s.NullThresholds, s.AltThresholds); err != nil {
			panic(err) // already validated by the probe initialization above
		}
		proc := s.NewProcess(com.Simulated)
		return &montecarlo.Driver{
			N:          replications,
			MaxLength:  s.MaxLength,
			Process:    proc,
			Likelihood: likelihood.New(s.Model.Null()),
			Rules:      []*grid.TwoSPRT{g},
			Engine:     s.NewEngine(),
			Measure:    com,
		}
	}

	pool := &montecarlo.Pool{Threads: s.Threads, Build: build}
	driver, err := pool.Run(ctx, s.Simulations)
	if err != nil {
		return Result{}, err
	}
	return Result{Kind: kind, Measure: com, Rule: driver.Rules[0]}, nil
}

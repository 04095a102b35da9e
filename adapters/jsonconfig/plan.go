package jsonconfig

import (
	"encoding/json"
	"math"

	"sprtsim/domain/grid"
	"sprtsim/domain/model"
	"sprtsim/domain/noise"
	"sprtsim/domain/rules"
	"sprtsim/domain/signal"
	apperr "sprtsim/internal/errors"
)

// Plan is the fully-validated, domain-typed form of a Document: everything
// main.go needs to drive the simulator core without ever looking at JSON
// again.
type Plan struct {
	MatOutput   string
	Simulations int
	Threads     int

	Signal signal.Signal
	// NewNoise builds a fresh noise source per process instance. Noise is
	// stateful, so it cannot be shared across the concurrent pool workers
	// the way the stateless Signal can be.
	NewNoise func() noise.Noise

	Runs []RunPlan
}

// RunPlan is one run descriptor, fully resolved: a hypothesis model, any
// auxiliary signal-strength passes, and one entry per rule that run scores.
type RunPlan struct {
	Model          model.Model
	CustomMeasures []grid.ChangeOfMeasure
	Rules          []RunRule
}

// RunRule binds a rule design factory to the threshold grid and anticipated
// run length it's scored over within one run.
type RunRule struct {
	ID                   string
	NewGrid              func() *grid.TwoSPRT
	AnticipatedRunLength float64
	NullThresholds       []float64
	AltThresholds        []float64
}

// Build validates the document and maps it onto domain value objects.
// Every failure is an *apperr.AppError of KindConfig.
func (d *Document) Build() (*Plan, error) {
	if d.Simulations <= 0 {
		return nil, apperr.Configf("simulations must be positive, got %d", d.Simulations)
	}
	if d.Threads <= 0 {
		return nil, apperr.Configf("threads must be positive, got %d", d.Threads)
	}

	sig, err := buildSignal(d.Signal)
	if err != nil {
		return nil, err
	}
	newNoise, err := buildNoiseFactory(d.Noise)
	if err != nil {
		return nil, err
	}

	designs := make(map[string]func() grid.Design, len(d.Rules))
	for _, r := range d.Rules {
		if r.ID == "" {
			return nil, apperr.Config("every rule design requires a non-empty id")
		}
		if _, dup := designs[r.ID]; dup {
			return nil, apperr.Configf("duplicate rule id %q", r.ID)
		}
		factory, err := newDesignFactory(r)
		if err != nil {
			return nil, err
		}
		designs[r.ID] = factory
	}

	runs := make([]RunPlan, 0, len(d.Runs))
	for ri, run := range d.Runs {
		m, err := model.New(run.Model.NullMu, run.Model.SmallestAlt)
		if err != nil {
			return nil, apperr.Configf("run %d: %v", ri, err)
		}

		custom := make([]grid.ChangeOfMeasure, len(run.SignalStrengths))
		for i, pair := range run.SignalStrengths {
			custom[i] = grid.ChangeOfMeasure{Analyzed: pair.Analyzed, Simulated: pair.Simulated}
		}

		runRules := make([]RunRule, 0, len(run.Inits))
		for _, init := range run.Inits {
			factory, ok := designs[init.ID]
			if !ok {
				return nil, apperr.Configf("run %d: init references unknown rule id %q", ri, init.ID)
			}
			nullThresholds, err := spacedThresholds(run.ThresholdSpacing, run.ThresholdCount.Null, init.ThresholdRange.Null)
			if err != nil {
				return nil, apperr.Configf("run %d, rule %q: null thresholds: %v", ri, init.ID, err)
			}
			altThresholds, err := spacedThresholds(run.ThresholdSpacing, run.ThresholdCount.Alt, init.ThresholdRange.Alt)
			if err != nil {
				return nil, apperr.Configf("run %d, rule %q: alt thresholds: %v", ri, init.ID, err)
			}
			id := init.ID
			runRules = append(runRules, RunRule{
				ID:                   id,
				NewGrid:              func() *grid.TwoSPRT { return grid.New(factory()) },
				AnticipatedRunLength: init.AnticipatedRunLength,
				NullThresholds:       nullThresholds,
				AltThresholds:        altThresholds,
			})
		}

		runs = append(runs, RunPlan{Model: m, CustomMeasures: custom, Rules: runRules})
	}

	matOutput, err := ExpandHome(d.MatOutput)
	if err != nil {
		return nil, err
	}

	return &Plan{
		MatOutput:   matOutput,
		Simulations: d.Simulations,
		Threads:     d.Threads,
		Signal:      sig,
		NewNoise:    newNoise,
		Runs:        runs,
	}, nil
}

func buildSignal(k RawKind) (signal.Signal, error) {
	switch k.Type {
	case "constant":
		var f struct {
			Level float64 `json:"level"`
		}
		if err := json.Unmarshal(k.Fields, &f); err != nil {
			return nil, apperr.Configf("constant signal: %v", err)
		}
		sig, err := signal.NewConstant(f.Level)
		if err != nil {
			return nil, apperr.Configf("constant signal: %v", err)
		}
		return sig, nil
	case "transitionary":
		var f struct {
			Level      float64   `json:"level"`
			Transition []float64 `json:"transition"`
		}
		if err := json.Unmarshal(k.Fields, &f); err != nil {
			return nil, apperr.Configf("transitionary signal: %v", err)
		}
		sig, err := signal.NewTransitionary(f.Level, f.Transition)
		if err != nil {
			return nil, apperr.Configf("transitionary signal: %v", err)
		}
		return sig, nil
	default:
		return nil, apperr.Configf("unknown signal type %q", k.Type)
	}
}

func buildNoiseFactory(k RawKind) (func() noise.Noise, error) {
	switch k.Type {
	case "white":
		var f struct {
			Sigma float64 `json:"sigma"`
		}
		if err := json.Unmarshal(k.Fields, &f); err != nil {
			return nil, apperr.Configf("white noise: %v", err)
		}
		if _, err := noise.NewWhite(f.Sigma); err != nil {
			return nil, apperr.Configf("white noise: %v", err)
		}
		return func() noise.Noise {
			w, _ := noise.NewWhite(f.Sigma)
			return w
		}, nil
	case "autoregressive":
		var f struct {
			Sigma float64   `json:"sigma"`
			Rho   []float64 `json:"rho"`
		}
		if err := json.Unmarshal(k.Fields, &f); err != nil {
			return nil, apperr.Configf("autoregressive noise: %v", err)
		}
		probeWhite, err := noise.NewWhite(f.Sigma)
		if err != nil {
			return nil, apperr.Configf("autoregressive noise: %v", err)
		}
		if _, err := noise.NewAutoRegressive(probeWhite, f.Rho); err != nil {
			return nil, apperr.Configf("autoregressive noise: %v", err)
		}
		return func() noise.Noise {
			w, _ := noise.NewWhite(f.Sigma)
			ar, _ := noise.NewAutoRegressive(w, f.Rho)
			return ar
		}, nil
	default:
		return nil, apperr.Configf("unknown noise type %q", k.Type)
	}
}

func newDesignFactory(r Rule) (func() grid.Design, error) {
	switch r.Type {
	case "adaptive sprt":
		flavor, err := adaptiveFlavor(r.Flavor)
		if err != nil {
			return nil, apperr.Configf("rule %q: %v", r.ID, err)
		}
		if r.RelativeMuNullInit < 0 || r.RelativeMuNullInit > 1 || r.RelativeMuAltInit < 0 || r.RelativeMuAltInit > 1 {
			return nil, apperr.Configf("rule %q: relative mu inits must lie in [0, 1]", r.ID)
		}
		return func() grid.Design {
			return rules.NewAdaptiveDesign(flavor, r.RelativeMuNullInit, r.RelativeMuAltInit, r.AsymptoticInit)
		}, nil
	case "double sprt":
		return func() grid.Design {
			return rules.NewDoubleDesign(r.RelativeMuMid, r.AsymptoticInit, r.Huffman)
		}, nil
	case "generalized sprt":
		flavor, err := generalizedFlavor(r.Flavor)
		if err != nil {
			return nil, apperr.Configf("rule %q: %v", r.ID, err)
		}
		return func() grid.Design {
			return rules.NewGeneralizedDesign(flavor, r.RelativeMuCutoff, r.AsymptoticInit)
		}, nil
	default:
		return nil, apperr.Configf("rule %q: unknown type %q", r.ID, r.Type)
	}
}

func adaptiveFlavor(s string) (rules.AdaptiveFlavor, error) {
	switch s {
	case "simple":
		return rules.AdaptiveSimple, nil
	case "general":
		return rules.AdaptiveGeneral, nil
	case "unconstrained":
		return rules.AdaptiveUnconstrained, nil
	default:
		return 0, apperr.Configf("unknown adaptive sprt flavor %q", s)
	}
}

func generalizedFlavor(s string) (rules.GeneralizedFlavor, error) {
	switch s {
	case "general":
		return rules.GeneralizedGeneral, nil
	case "cutoff":
		return rules.GeneralizedCutoff, nil
	default:
		return 0, apperr.Configf("unknown generalized sprt flavor %q", s)
	}
}

// spacedThresholds generates count values across [r.From, r.To] under the
// named spacing. "linear" (the default) is evenly spaced; "logarithmic" is
// evenly spaced in log-space (a geometric progression, requiring strictly
// positive bounds); "exponential" grows along an exponential curve so later
// thresholds are spaced further apart than earlier ones.
func spacedThresholds(spacing string, count int, r Range) ([]float64, error) {
	if count <= 0 {
		return nil, apperr.Configf("threshold count must be positive, got %d", count)
	}
	out := make([]float64, count)
	if count == 1 {
		out[0] = r.From
		return out, nil
	}
	switch spacing {
	case "", "linear":
		step := (r.To - r.From) / float64(count-1)
		for i := range out {
			out[i] = r.From + step*float64(i)
		}
	case "logarithmic":
		if r.From <= 0 || r.To <= 0 {
			return nil, apperr.Config("logarithmic threshold spacing requires strictly positive bounds")
		}
		logFrom, logTo := math.Log(r.From), math.Log(r.To)
		step := (logTo - logFrom) / float64(count-1)
		for i := range out {
			out[i] = math.Exp(logFrom + step*float64(i))
		}
	case "exponential":
		for i := range out {
			frac := (math.Exp(float64(i)/float64(count-1)) - 1) / (math.E - 1)
			out[i] = r.From + (r.To-r.From)*frac
		}
	default:
		return nil, apperr.Configf("unknown threshold spacing %q", spacing)
	}
	return out, nil
}

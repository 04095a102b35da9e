// Command sprtsim reads ./config.json and writes one result workbook per
// (rule, OC-set) combination under the configured mat output directory.
// Single entry point, no arguments.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"sync/atomic"

	"gonum.org/v1/gonum/mat"

	"sprtsim/adapters/jsonconfig"
	"sprtsim/adapters/rngengine"
	"sprtsim/adapters/summary"
	"sprtsim/adapters/tablewriter"
	"sprtsim/domain/core"
	"sprtsim/domain/model"
	"sprtsim/domain/process"
	apperr "sprtsim/internal/errors"
	"sprtsim/internal/obslog"
	"sprtsim/oc"
	"sprtsim/ports"
)

func main() {
	log.SetOutput(os.Stdout)
	logger := obslog.NewDefault()
	if err := run(logger); err != nil {
		logger.Error("%v", err)
		os.Exit(apperr.ExitCode(err))
	}
}

func run(logger *obslog.Logger) error {
	runID := core.RunID(core.NewID())
	started := core.Now()

	doc, err := jsonconfig.Load("./config.json")
	if err != nil {
		return err
	}
	plan, err := doc.Build()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(plan.MatOutput, 0o755); err != nil {
		return apperr.Resource("creating mat output directory", err)
	}
	writer := tablewriter.New(plan.MatOutput)
	master := rngengine.New()

	ctx := context.Background()
	logger.Info("run %s: starting at %s", runID, started)
	var resourceErr error
	for _, runPlan := range plan.Runs {
		modelString := runPlan.Model.String()
		folder, err := tablewriter.ReserveRunFolder(plan.MatOutput, master, modelString)
		if err == nil {
			logger.Info("run %s: reserved output folder %s", runID, folder)
			for _, rule := range runPlan.Rules {
				if err = runOneRule(ctx, logger, writer, plan, runPlan, rule, folder, runID); err != nil {
					break
				}
			}
		}
		if err != nil {
			if apperr.GetKind(err) != apperr.KindResource {
				return err
			}
			logger.Error("run %s: model %s: %v; no further output for this run", runID, modelString, err)
			if resourceErr == nil {
				resourceErr = err
			}
		}
	}
	logger.Info("run %s: completed %d run(s) in %s", runID, len(plan.Runs), core.Now().Time().Sub(started.Time()))
	return resourceErr
}

// newEnginePool partitions plan.Threads fresh engines across the
// concurrent pool workers the simulator spins up: one child Engine per
// worker, seeded sequentially from master before any goroutine starts.
func newEnginePool(master *rngengine.Engine, threads int) func() ports.Engine {
	pool := rngengine.NewPool(master, threads)
	var next int32
	return func() ports.Engine {
		i := int(atomic.AddInt32(&next, 1)-1) % len(pool)
		return pool[i]
	}
}

func runOneRule(ctx context.Context, logger *obslog.Logger, writer *tablewriter.Writer, plan *jsonconfig.Plan, runPlan jsonconfig.RunPlan, rule jsonconfig.RunRule, folder string, runID core.RunID) error {
	probeNoise := plan.NewNoise()
	scale := probeNoise.Scale()

	fingerprint := core.RunFingerprint(canonicalRuleDescriptor(runPlan.Model, rule))
	logger.Debug("run %s: rule %s fingerprint %s", runID, rule.ID, fingerprint.Short(12))

	sim := &oc.Simulator{
		Model:                runPlan.Model,
		AnticipatedRunLength: rule.AnticipatedRunLength,
		LogLikelihoodScale:   scale,
		NullThresholds:       rule.NullThresholds,
		AltThresholds:        rule.AltThresholds,
		Simulations:          plan.Simulations,
		Threads:              plan.Threads,
		NewProcess: func(muStar float64) *process.Process {
			p, err := process.New(plan.Signal, plan.NewNoise(), muStar)
			if err != nil {
				panic(err) // muStar is a model mean or a configured signal strength, both decoded from JSON numbers and so finite
			}
			return p
		},
		NewEngine:      newEnginePool(rngengine.New(), plan.Threads),
		Rules:          []oc.RuleFactory{rule.NewGrid},
		CustomMeasures: runPlan.CustomMeasures,
	}

	results, err := sim.Run(ctx)
	if err != nil {
		return err
	}

	standard, custom := splitResults(results)

	if len(standard) > 0 {
		table := standardTable(folder, rule.ID, runPlan.Model, standard)
		if err := writer.Write(table); err != nil {
			return err
		}
		logger.Info("run %s: rule %s wrote %s", runID, rule.ID, table.Name)
		for label, rows := range table.Variables {
			summary.Log(logger, rule.ID+"/"+label, denseFromRows(rows))
		}
	}

	for i, res := range custom {
		table := moreTable(folder, rule.ID, i, res)
		if err := writer.Write(table); err != nil {
			return err
		}
		logger.Info("run %s: rule %s wrote %s", runID, rule.ID, table.Name)
	}

	return nil
}

// canonicalRuleDescriptor renders the values that determine a rule's
// result matrices into one string, stable across runs with identical
// configuration, for the fingerprint logged alongside each written table.
func canonicalRuleDescriptor(m model.Model, rule jsonconfig.RunRule) string {
	return fmt.Sprintf("%s|%s|null=%v|alt=%v|arl=%g", m, rule.ID, rule.NullThresholds, rule.AltThresholds, rule.AnticipatedRunLength)
}

// splitResults partitions one rule's Results into the four standard OCs
// (always exactly one of each, in StandardKinds order) and the auxiliary
// custom passes, in the order they were requested.
func splitResults(results []oc.Result) (standard map[oc.Kind]oc.Result, custom []oc.Result) {
	standard = make(map[oc.Kind]oc.Result, len(oc.StandardKinds))
	for _, r := range results {
		if r.Kind == oc.Custom {
			custom = append(custom, r)
			continue
		}
		standard[r.Kind] = r
	}
	return standard, custom
}

// standardTable combines every standard OC for one rule into the single
// workbook a run produces per rule: scalar mu_null/mu_alt, vector
// b_null/b_alt, and the four mean/variance pairs.
func standardTable(dir, ruleID string, m model.Model, standard map[oc.Kind]oc.Result) ports.Table {
	vars := map[string][][]float64{
		"mu_null": {{m.Null()}},
		"mu_alt":  {{m.SmallestAlt()}},
	}

	if essNull, ok := standard[oc.ESSNull]; ok {
		vars["b_null"] = columnVector(essNull.Rule.NullThresholds())
		vars["b_alt"] = rowVector(essNull.Rule.AltThresholds())
		vars["ess_null"] = toRows(essNull.Rule.RunLengths().Mean())
		vars["vss_null"] = toRows(essNull.Rule.RunLengths().Variance())
	}
	if essAlt, ok := standard[oc.ESSAlt]; ok {
		vars["ess_alt"] = toRows(essAlt.Rule.RunLengths().Mean())
		vars["vss_alt"] = toRows(essAlt.Rule.RunLengths().Variance())
	}
	if pfa, ok := standard[oc.PFA]; ok {
		vars["pfa"] = toRows(pfa.Rule.DecisionErrors().Mean())
		vars["vfa"] = toRows(pfa.Rule.DecisionErrors().Variance())
	}
	if pms, ok := standard[oc.PMS]; ok {
		vars["pms"] = toRows(pms.Rule.DecisionErrors().Mean())
		vars["vms"] = toRows(pms.Rule.DecisionErrors().Variance())
	}

	return ports.Table{Dir: dir, Name: ruleID, Variables: vars}
}

// moreTable renders one auxiliary custom-measure pass as its own workbook,
// "<rule id>-more" for the first pass and "<rule id>-more-<n>" for pass n
// after it: flat decision-error and run-length statistics
// plus the (analyzed, simulated) pair they were evaluated under.
func moreTable(dir, ruleID string, index int, res oc.Result) ports.Table {
	name := ruleID + "-more"
	if index > 0 {
		name = ruleID + "-more-" + strconv.Itoa(index)
	}
	return ports.Table{
		Dir:  dir,
		Name: name,
		Variables: map[string][][]float64{
			"perror":       toRows(res.Rule.DecisionErrors().Mean()),
			"verror":       toRows(res.Rule.DecisionErrors().Variance()),
			"ess":          toRows(res.Rule.RunLengths().Mean()),
			"vss":          toRows(res.Rule.RunLengths().Variance()),
			"analyzed_mu":  {{res.Measure.Analyzed}},
			"simulated_mu": {{res.Measure.Simulated}},
		},
	}
}

func columnVector(v []float64) [][]float64 {
	rows := make([][]float64, len(v))
	for i, x := range v {
		rows[i] = []float64{x}
	}
	return rows
}

func rowVector(v []float64) [][]float64 {
	return [][]float64{append([]float64(nil), v...)}
}

func toRows(m *mat.Dense) [][]float64 {
	rows, cols := m.Dims()
	out := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		out[i] = make([]float64, cols)
		for j := 0; j < cols; j++ {
			out[i][j] = m.At(i, j)
		}
	}
	return out
}

func denseFromRows(rows [][]float64) *mat.Dense {
	if len(rows) == 0 {
		return mat.NewDense(0, 0, nil)
	}
	r, c := len(rows), len(rows[0])
	flat := make([]float64, 0, r*c)
	for _, row := range rows {
		flat = append(flat, row...)
	}
	return mat.NewDense(r, c, flat)
}

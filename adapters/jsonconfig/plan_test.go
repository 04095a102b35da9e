package jsonconfig

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `{
  "mat output": "./mat/",
  "simulations": 200,
  "threads": 4,
  "signal": {"type": "constant", "level": 1},
  "noise": {"type": "white", "sigma": 1},
  "rules": [
    {"id": "double-1", "type": "double sprt", "relative mu intermediate": 0.5},
    {"id": "adaptive-1", "type": "adaptive sprt", "flavor": "simple", "relative mu null init": 0.1, "relative mu alt init": 0.9}
  ],
  "runs": [
    {
      "model": {"null mu": 0, "smallest alt mu": 1},
      "threshold spacing": "linear",
      "threshold count": {"null": 3, "alt": 3},
      "signal strengths": [{"analyzed": 0.5, "simulated": 0.5}],
      "inits": [
        {"id": "double-1", "threshold range": {"null": {"from": 1, "to": 3}, "alt": {"from": 1, "to": 3}}, "anticipated run length": 10},
        {"id": "adaptive-1", "threshold range": {"null": {"from": 2, "to": 4}, "alt": {"from": 2, "to": 4}}, "anticipated run length": 12}
      ]
    }
  ]
}`

func parseSample(t *testing.T) *Document {
	t.Helper()
	var doc Document
	require.NoError(t, json.Unmarshal([]byte(sampleConfig), &doc))
	doc.applyDefaults()
	return &doc
}

func TestBuildProducesOneRunRulePerInit(t *testing.T) {
	doc := parseSample(t)
	plan, err := doc.Build()
	require.NoError(t, err)

	require.Len(t, plan.Runs, 1)
	run := plan.Runs[0]
	assert.Equal(t, 0.0, run.Model.Null())
	assert.Equal(t, 1.0, run.Model.SmallestAlt())
	require.Len(t, run.Rules, 2)
	require.Len(t, run.CustomMeasures, 1)
	assert.Equal(t, 0.5, run.CustomMeasures[0].Analyzed)
}

func TestBuildGeneratesLinearThresholds(t *testing.T) {
	doc := parseSample(t)
	plan, err := doc.Build()
	require.NoError(t, err)

	rule := plan.Runs[0].Rules[0]
	assert.Equal(t, []float64{1, 2, 3}, rule.NullThresholds)
	assert.Equal(t, []float64{1, 2, 3}, rule.AltThresholds)
	assert.Equal(t, 10.0, rule.AnticipatedRunLength)
}

func TestBuildRejectsUnknownRuleReference(t *testing.T) {
	doc := parseSample(t)
	doc.Runs[0].Inits[0].ID = "does-not-exist"
	_, err := doc.Build()
	assert.Error(t, err)
}

func TestBuildRejectsNonPositiveSimulations(t *testing.T) {
	doc := parseSample(t)
	doc.Simulations = 0
	_, err := doc.Build()
	assert.Error(t, err)
}

func TestSpacedThresholdsLogarithmicIsGeometric(t *testing.T) {
	out, err := spacedThresholds("logarithmic", 3, Range{From: 1, To: 100})
	require.NoError(t, err)
	assert.InDelta(t, 1, out[0], 1e-9)
	assert.InDelta(t, 10, out[1], 1e-9)
	assert.InDelta(t, 100, out[2], 1e-9)
}

func TestSpacedThresholdsRejectsBadCount(t *testing.T) {
	_, err := spacedThresholds("linear", 0, Range{From: 0, To: 1})
	assert.Error(t, err)
}

func TestExpandHomeLeavesNonTildePathsUntouched(t *testing.T) {
	out, err := ExpandHome("./mat/")
	require.NoError(t, err)
	assert.Equal(t, "./mat/", out)
}

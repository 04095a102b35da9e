// Package jsonconfig parses the on-disk configuration document and maps it
// to the domain value objects the simulator core is built from: models,
// signals, noise sources, and rule designs. Nothing outside this package
// and main.go ever sees the raw JSON shape.
package jsonconfig

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	apperr "sprtsim/internal/errors"
)

// Document is the root configuration shape, unmarshaled directly from
// config.json. Field names follow the on-disk spelling (lower-cased,
// space-separated) via explicit json tags.
type Document struct {
	MatOutput                string   `json:"mat output"`
	Simulations              int      `json:"simulations"`
	Threads                  int      `json:"threads"`
	DisableOCPass            bool     `json:"disable oc pass"`
	DisableGrayPass          bool     `json:"disable gray pass"`
	LimitingDistributionOnly bool     `json:"limiting distribution only"`
	LimitingObservations     int      `json:"limiting observations"`
	LimitingCutoffTime       int      `json:"limiting cutoff time"`
	Signal                   RawKind  `json:"signal"`
	Noise                    RawKind  `json:"noise"`
	Rules                    []Rule   `json:"rules"`
	Runs                     []Run    `json:"runs"`
}

// RawKind is a tagged variant object discriminated by "type", deferring
// field-specific unmarshaling until the variant's type is known.
type RawKind struct {
	Type   string          `json:"type"`
	Fields json.RawMessage `json:"-"`
}

// UnmarshalJSON captures the discriminator and keeps the remaining bytes
// around for a second, variant-specific unmarshal pass.
func (r *RawKind) UnmarshalJSON(data []byte) error {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	r.Type = head.Type
	r.Fields = append(json.RawMessage(nil), data...)
	return nil
}

// Rule is one rule design entry: a caller-supplied id, a type discriminator,
// and the union of every rule-type's own fields (unused ones left zero).
type Rule struct {
	ID                 string  `json:"id"`
	Type               string  `json:"type"`
	Flavor             string  `json:"flavor"`
	RelativeMuNullInit float64 `json:"relative mu null init"`
	RelativeMuAltInit  float64 `json:"relative mu alt init"`
	RelativeMuMid      float64 `json:"relative mu intermediate"`
	RelativeMuCutoff   float64 `json:"relative mu cutoff"`
	AsymptoticInit     bool    `json:"asymptotic init"`
	Huffman            bool    `json:"huffman"`
}

// Run is one run descriptor: a hypothesis model, a threshold-grid recipe,
// optional extra signal-strength passes, and per-rule threshold ranges.
type Run struct {
	Model            RunModel        `json:"model"`
	ThresholdSpacing string          `json:"threshold spacing"`
	ThresholdCount   ThresholdCount  `json:"threshold count"`
	SignalStrengths  []SignalPair    `json:"signal strengths"`
	Inits            []Init          `json:"inits"`
}

type RunModel struct {
	NullMu       float64 `json:"null mu"`
	SmallestAlt  float64 `json:"smallest alt mu"`
}

type ThresholdCount struct {
	Null int `json:"null"`
	Alt  int `json:"alt"`
}

type SignalPair struct {
	Analyzed  float64 `json:"analyzed"`
	Simulated float64 `json:"simulated"`
}

// Init binds one rule id to its own threshold range and anticipated run
// length within a run. The grid's actual null/alt threshold vectors are
// generated from ThresholdSpacing/ThresholdCount over this range.
type Init struct {
	ID                   string        `json:"id"`
	ThresholdRange       ThresholdRange `json:"threshold range"`
	AnticipatedRunLength float64        `json:"anticipated run length"`
}

type ThresholdRange struct {
	Null Range `json:"null"`
	Alt  Range `json:"alt"`
}

type Range struct {
	From float64 `json:"from"`
	To   float64 `json:"to"`
}

// Load reads and parses path, applying defaults for every omitted field
// that has one. It does not validate ranges beyond what's needed to apply
// defaults; call Document.Build for full domain-object validation.
func Load(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.Configf("reading %s: %v", path, err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, apperr.Configf("malformed configuration JSON: %v", err)
	}
	doc.applyDefaults()
	return &doc, nil
}

func (d *Document) applyDefaults() {
	if d.MatOutput == "" {
		d.MatOutput = "./mat/"
	}
	if d.Simulations == 0 {
		d.Simulations = 1000
	}
	if d.Threads == 0 {
		d.Threads = 1
	}
	if d.LimitingObservations == 0 {
		d.LimitingObservations = 1000
	}
	if d.LimitingCutoffTime == 0 {
		d.LimitingCutoffTime = 5000
	}
}

// ExpandHome rewrites a leading "~" using HOME (or USERPROFILE on Windows).
func ExpandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home := os.Getenv("HOME")
	if runtime.GOOS == "windows" || home == "" {
		if up := os.Getenv("USERPROFILE"); up != "" {
			home = up
		}
	}
	if home == "" {
		return "", apperr.Config("cannot expand ~: neither HOME nor USERPROFILE is set")
	}
	rest := strings.TrimPrefix(path, "~")
	return filepath.Join(home, rest), nil
}

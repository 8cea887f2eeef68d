package analysis

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Verdict is the outcome of applying thresholds to an aggregated summary.
type Verdict string

const (
	VerdictPass Verdict = "PASS"
	VerdictWarn Verdict = "WARN"
	VerdictFail Verdict = "FAIL"
)

// Status maps a verdict onto outcome counting, where WARN still counts as
// passed. Only FAIL and ERROR gate the exit code.
func (v Verdict) Status() Status {
	if v == VerdictFail {
		return StatusFail
	}
	return StatusPass
}

// Thresholds collects the acceptance criteria applied to aggregated
// summaries. All evaluators are pure functions over (summary, Thresholds).
type Thresholds struct {
	// MinSuccessRate is the detection success floor for range and motion
	// tests, in percent.
	MinSuccessRate float64 `yaml:"min_success_rate_pct"`
	// TargetSuccessRate is drawn as a reference line on plots only.
	TargetSuccessRate float64 `yaml:"target_success_rate_pct"`
	// MaxDistanceError is the accuracy ceiling for range tests, in metres.
	MaxDistanceError float64 `yaml:"max_distance_error_m"`
	// TargetDistanceError is drawn as a reference line on plots only.
	TargetDistanceError float64 `yaml:"target_distance_error_m"`
	// FalsePositivePass and FalsePositiveWarn bound the PASS and WARN bands
	// for the false positive rate, in percent.
	FalsePositivePass float64 `yaml:"false_positive_pass_pct"`
	FalsePositiveWarn float64 `yaml:"false_positive_warn_pct"`
}

// DefaultThresholds are the XM125 acceptance criteria.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinSuccessRate:      70,
		TargetSuccessRate:   90,
		MaxDistanceError:    0.5,
		TargetDistanceError: 0.2,
		FalsePositivePass:   5,
		FalsePositiveWarn:   10,
	}
}

// LoadThresholds layers a YAML override file over the defaults.
func LoadThresholds(path string) (Thresholds, error) {
	th := DefaultThresholds()
	raw, err := os.ReadFile(path)
	if err != nil {
		return th, fmt.Errorf("failed to read thresholds file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &th); err != nil {
		return th, fmt.Errorf("failed to parse thresholds file: %w", err)
	}
	return th, nil
}

// EffectiveRange returns the maximum nominal distance whose success rate
// meets the floor; ok is false when no tested distance qualifies.
func (t Thresholds) EffectiveRange(results map[float64]RangeResult) (float64, bool) {
	var best float64
	ok := false
	for d, res := range results {
		if res.SuccessRate >= t.MinSuccessRate && (!ok || d > best) {
			best, ok = d, true
		}
	}
	return best, ok
}

// RangeAccuracyOK reports whether every defined distance error is below the
// accuracy ceiling. Undefined errors (buckets with no detections) are
// excluded from the check.
func (t Thresholds) RangeAccuracyOK(results map[float64]RangeResult) bool {
	for _, res := range results {
		if res.DistanceErrorDefined && res.DistanceError >= t.MaxDistanceError {
			return false
		}
	}
	return true
}

// EvaluateRange combines reach and accuracy: FAIL when no tested distance
// meets the success floor or when any defined error is out of bounds.
func (t Thresholds) EvaluateRange(results map[float64]RangeResult) Verdict {
	if _, ok := t.EffectiveRange(results); !ok {
		return VerdictFail
	}
	if !t.RangeAccuracyOK(results) {
		return VerdictFail
	}
	return VerdictPass
}

// EvaluateFalsePositive bands the false positive rate into PASS/WARN/FAIL.
func (t Thresholds) EvaluateFalsePositive(res FalsePositiveResult) Verdict {
	switch {
	case res.Rate <= t.FalsePositivePass:
		return VerdictPass
	case res.Rate <= t.FalsePositiveWarn:
		return VerdictWarn
	default:
		return VerdictFail
	}
}

// EvaluateMotion passes only when every tested motion label meets the
// success floor.
func (t Thresholds) EvaluateMotion(results map[string]MotionResult) Verdict {
	for _, res := range results {
		if res.SuccessRate < t.MinSuccessRate {
			return VerdictFail
		}
	}
	return VerdictPass
}

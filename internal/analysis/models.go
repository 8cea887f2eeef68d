package analysis

import (
	"encoding/json"
	"sort"
	"time"
)

// Status classifies a single test outcome.
type Status string

const (
	StatusPass  Status = "PASS"
	StatusFail  Status = "FAIL"
	StatusError Status = "ERROR"
)

// RangeResult summarises one nominal-distance range test file.
type RangeResult struct {
	NominalDistance     float64 `json:"nominal_distance_m"`
	SuccessRate         float64 `json:"success_rate_pct"`
	Detections          int     `json:"detections"`
	Total               int     `json:"total"`
	AvgMeasuredDistance float64 `json:"avg_measured_distance_m"`
	// DistanceError is |avg measured - nominal|. It is meaningful only when
	// DistanceErrorDefined is true, i.e. at least one detection occurred.
	DistanceError        float64 `json:"-"`
	DistanceErrorDefined bool    `json:"-"`
}

// MarshalJSON renders an undefined distance error as the literal string
// "undefined" so it can never be read as a small numeric error.
func (r RangeResult) MarshalJSON() ([]byte, error) {
	type alias RangeResult
	out := struct {
		alias
		DistanceError interface{} `json:"distance_error_m"`
	}{alias: alias(r)}
	if r.DistanceErrorDefined {
		out.DistanceError = r.DistanceError
	} else {
		out.DistanceError = "undefined"
	}
	return json.Marshal(out)
}

// FalsePositiveResult summarises a no-target test run.
type FalsePositiveResult struct {
	Rate           float64 `json:"rate_pct"`
	FalsePositives int     `json:"false_positives"`
	Total          int     `json:"total"`
}

// MotionResult summarises one motion-speed test file.
type MotionResult struct {
	Label       string  `json:"label"`
	SuccessRate float64 `json:"success_rate_pct"`
	AvgIntra    float64 `json:"avg_intra"`
	AvgInter    float64 `json:"avg_inter"`
	Detections  int     `json:"detections"`
	Total       int     `json:"total"`
}

// StabilityResult characterises the distance series of a fixed-target run.
type StabilityResult struct {
	Mean          float64 `json:"mean_distance_m"`
	StdDev        float64 `json:"stddev_m"`
	Min           float64 `json:"min_distance_m"`
	Max           float64 `json:"max_distance_m"`
	DetectionRate float64 `json:"detection_rate_pct"`
	Samples       int     `json:"samples"`
}

// LogOutcome is the result of scanning one log file for failure indicators.
type LogOutcome struct {
	TestName          string   `json:"test_name"`
	Status            Status   `json:"status"`
	LogSizeBytes      int64    `json:"log_size_bytes"`
	MatchedIndicators []string `json:"matched_indicators,omitempty"`
}

// MotionLabels is the fixed set of motion test speeds, in report order.
var MotionLabels = []string{"slow", "normal", "fast"}

// Report accumulates every category outcome for one analyzer invocation.
// It is the only mutable state threaded through the pipeline.
type Report struct {
	GeneratedAt   time.Time               `json:"generated_at"`
	TestDir       string                  `json:"test_directory"`
	Range         map[float64]RangeResult `json:"-"`
	FalsePositive *FalsePositiveResult    `json:"false_positive,omitempty"`
	Motion        map[string]MotionResult `json:"motion,omitempty"`
	Stability     *StabilityResult        `json:"stability,omitempty"`
	Logs          []LogOutcome            `json:"logs,omitempty"`
	Warnings      []string                `json:"warnings,omitempty"`

	Total   int `json:"total_tests"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Errored int `json:"errored"`
}

// NewReport returns an empty report for the given test directory.
func NewReport(testDir string) *Report {
	return &Report{
		GeneratedAt: time.Now(),
		TestDir:     testDir,
		Range:       make(map[float64]RangeResult),
		Motion:      make(map[string]MotionResult),
	}
}

// PassRate is passed/total as a percentage, 0 when no tests were found.
func (r *Report) PassRate() float64 {
	if r.Total == 0 {
		return 0
	}
	return 100 * float64(r.Passed) / float64(r.Total)
}

// RangeDistances returns the tested nominal distances in ascending order.
func (r *Report) RangeDistances() []float64 {
	distances := make([]float64, 0, len(r.Range))
	for d := range r.Range {
		distances = append(distances, d)
	}
	sort.Float64s(distances)
	return distances
}

// record tallies one test outcome into the overall counts. WARN verdicts are
// recorded as passed upstream; only FAIL and ERROR gate the exit code.
func (r *Report) record(status Status) {
	r.Total++
	switch status {
	case StatusPass:
		r.Passed++
	case StatusFail:
		r.Failed++
	case StatusError:
		r.Errored++
	}
}

package analysis

import (
	"math"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/dynamicdevices/xm125-analyzer/internal/parser"
)

// FailureIndicators are the phrases scanned for, case-insensitively, in log
// files. Matches are reported in this order.
var FailureIndicators = []string{
	"ERROR",
	"FAILED",
	"error:",
	"failed:",
	"timeout",
	"not found",
	"permission denied",
}

// successRate is 100*detections/total, defined as 0 for an empty sample.
func successRate(detections, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(detections) / float64(total)
}

// meanOrZero averages a series, treating an empty series as 0 rather than an
// error. Rates and means in this tool never fail on empty input.
func meanOrZero(data []float64) float64 {
	m, err := stats.Mean(data)
	if err != nil {
		return 0
	}
	return m
}

func countDetections(records []parser.Record) int {
	n := 0
	for _, rec := range records {
		if rec.Presence {
			n++
		}
	}
	return n
}

// AggregateRange reduces one range test file into its per-distance summary.
// Measured distance is averaged over detections only; with no detections the
// distance error stays undefined so it can never read as a small error.
func AggregateRange(nominal float64, records []parser.Record) RangeResult {
	detected := make([]float64, 0, len(records))
	for _, rec := range records {
		if rec.Presence {
			detected = append(detected, rec.Distance)
		}
	}

	res := RangeResult{
		NominalDistance:     nominal,
		SuccessRate:         successRate(len(detected), len(records)),
		Detections:          len(detected),
		Total:               len(records),
		AvgMeasuredDistance: meanOrZero(detected),
	}
	if len(detected) > 0 {
		res.DistanceError = math.Abs(res.AvgMeasuredDistance - nominal)
		res.DistanceErrorDefined = true
	}
	return res
}

// AggregateFalsePositive computes the detection rate of a no-target run,
// where every detection is by definition a false positive.
func AggregateFalsePositive(records []parser.Record) FalsePositiveResult {
	fp := countDetections(records)
	return FalsePositiveResult{
		Rate:           successRate(fp, len(records)),
		FalsePositives: fp,
		Total:          len(records),
	}
}

// AggregateMotion reduces one motion test file. Intra/inter scores are
// averaged over detections only.
func AggregateMotion(label string, records []parser.Record) MotionResult {
	var intra, inter []float64
	for _, rec := range records {
		if rec.Presence {
			intra = append(intra, rec.Intra)
			inter = append(inter, rec.Inter)
		}
	}
	return MotionResult{
		Label:       label,
		SuccessRate: successRate(len(intra), len(records)),
		AvgIntra:    meanOrZero(intra),
		AvgInter:    meanOrZero(inter),
		Detections:  len(intra),
		Total:       len(records),
	}
}

// AggregateStability characterises the full distance series of a
// fixed-target run. The detection rate covers every row regardless of
// presence; sample standard deviation below 2 samples is 0.
func AggregateStability(records []parser.Record) StabilityResult {
	res := StabilityResult{
		Samples:       len(records),
		DetectionRate: successRate(countDetections(records), len(records)),
	}
	if len(records) == 0 {
		return res
	}

	distances := make([]float64, len(records))
	for i, rec := range records {
		distances[i] = rec.Distance
	}
	res.Mean = meanOrZero(distances)
	if v, err := stats.Min(distances); err == nil {
		res.Min = v
	}
	if v, err := stats.Max(distances); err == nil {
		res.Max = v
	}
	if len(distances) >= 2 {
		if sd, err := stats.StandardDeviationSample(distances); err == nil {
			res.StdDev = sd
		}
	}
	return res
}

// ScanLog classifies raw log content by substring search over the fixed
// failure indicator list. Any match means FAIL; read failures are handled by
// the caller as ERROR.
func ScanLog(testName string, content []byte) LogOutcome {
	out := LogOutcome{
		TestName:     testName,
		Status:       StatusPass,
		LogSizeBytes: int64(len(content)),
	}
	lower := strings.ToLower(string(content))
	for _, indicator := range FailureIndicators {
		if strings.Contains(lower, strings.ToLower(indicator)) {
			out.MatchedIndicators = append(out.MatchedIndicators, indicator)
		}
	}
	if len(out.MatchedIndicators) > 0 {
		out.Status = StatusFail
	}
	return out
}

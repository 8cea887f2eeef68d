package analysis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rangeResults(rates map[float64]float64) map[float64]RangeResult {
	out := make(map[float64]RangeResult, len(rates))
	for d, rate := range rates {
		out[d] = RangeResult{
			NominalDistance:      d,
			SuccessRate:          rate,
			DistanceError:        0.05,
			DistanceErrorDefined: true,
		}
	}
	return out
}

func TestEffectiveRange(t *testing.T) {
	th := DefaultThresholds()
	results := rangeResults(map[float64]float64{1.0: 95, 2.0: 85, 3.0: 40})

	d, ok := th.EffectiveRange(results)
	require.True(t, ok)
	assert.InDelta(t, 2.0, d, 1e-9, "3m falls below the 70%% floor")
}

func TestEffectiveRange_NoneQualifies(t *testing.T) {
	th := DefaultThresholds()
	_, ok := th.EffectiveRange(rangeResults(map[float64]float64{1.0: 30, 2.0: 10}))
	assert.False(t, ok)
}

func TestRangeAccuracy(t *testing.T) {
	th := DefaultThresholds()

	good := rangeResults(map[float64]float64{1.0: 95})
	assert.True(t, th.RangeAccuracyOK(good))

	bad := rangeResults(map[float64]float64{1.0: 95})
	res := bad[1.0]
	res.DistanceError = 0.6
	bad[1.0] = res
	assert.False(t, th.RangeAccuracyOK(bad))

	// An undefined error (no detections) is excluded from the accuracy
	// check, it can never pass as a small error.
	undefined := rangeResults(map[float64]float64{1.0: 95})
	res = undefined[1.0]
	res.DistanceError = 0
	res.DistanceErrorDefined = false
	undefined[1.0] = res
	assert.True(t, th.RangeAccuracyOK(undefined))
}

func TestEvaluateFalsePositive(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		rate float64
		want Verdict
	}{
		{0, VerdictPass},
		{5, VerdictPass},
		{7.5, VerdictWarn},
		{10, VerdictWarn},
		{10.1, VerdictFail},
	}
	for _, tt := range tests {
		got := th.EvaluateFalsePositive(FalsePositiveResult{Rate: tt.rate})
		assert.Equal(t, tt.want, got, "rate %.1f", tt.rate)
	}
}

func TestEvaluateMotion(t *testing.T) {
	th := DefaultThresholds()

	passing := map[string]MotionResult{
		"slow":   {SuccessRate: 80},
		"normal": {SuccessRate: 95},
		"fast":   {SuccessRate: 70},
	}
	assert.Equal(t, VerdictPass, th.EvaluateMotion(passing))

	passing["fast"] = MotionResult{SuccessRate: 69.9}
	assert.Equal(t, VerdictFail, th.EvaluateMotion(passing))
}

func TestEvaluatorsAreDeterministic(t *testing.T) {
	th := DefaultThresholds()
	results := rangeResults(map[float64]float64{1.0: 95, 2.0: 85, 3.0: 40})

	first := th.EvaluateRange(results)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, th.EvaluateRange(results))
	}
}

func TestVerdictStatus(t *testing.T) {
	assert.Equal(t, StatusPass, VerdictPass.Status())
	assert.Equal(t, StatusPass, VerdictWarn.Status(), "WARN still counts as passed")
	assert.Equal(t, StatusFail, VerdictFail.Status())
}

func TestLoadThresholds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	require.NoError(t, os.WriteFile(path, []byte("min_success_rate_pct: 80\nfalse_positive_pass_pct: 2\n"), 0o644))

	th, err := LoadThresholds(path)
	require.NoError(t, err)

	assert.InDelta(t, 80, th.MinSuccessRate, 1e-9)
	assert.InDelta(t, 2, th.FalsePositivePass, 1e-9)
	// Unset fields keep their defaults.
	assert.InDelta(t, 0.5, th.MaxDistanceError, 1e-9)
	assert.InDelta(t, 10, th.FalsePositiveWarn, 1e-9)
}

func TestLoadThresholds_Missing(t *testing.T) {
	_, err := LoadThresholds(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

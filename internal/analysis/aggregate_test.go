package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dynamicdevices/xm125-analyzer/internal/parser"
)

func records(presences []bool, distances []float64) []parser.Record {
	recs := make([]parser.Record, len(presences))
	for i := range presences {
		recs[i] = parser.Record{Presence: presences[i], Distance: distances[i]}
	}
	return recs
}

func TestAggregateRange(t *testing.T) {
	recs := records(
		[]bool{true, true, true, false},
		[]float64{2.02, 2.06, 2.04, 0},
	)
	res := AggregateRange(2.0, recs)

	assert.InDelta(t, 75.0, res.SuccessRate, 1e-9)
	assert.Equal(t, 3, res.Detections)
	assert.Equal(t, 4, res.Total)
	assert.InDelta(t, 2.04, res.AvgMeasuredDistance, 1e-9)
	require.True(t, res.DistanceErrorDefined)
	assert.InDelta(t, 0.04, res.DistanceError, 1e-9)
}

func TestAggregateRange_NoDetections(t *testing.T) {
	recs := records([]bool{false, false}, []float64{0, 0})
	res := AggregateRange(3.0, recs)

	assert.Zero(t, res.SuccessRate)
	assert.Zero(t, res.AvgMeasuredDistance)
	assert.False(t, res.DistanceErrorDefined, "no detections must leave the error undefined")
}

func TestAggregateRange_Empty(t *testing.T) {
	res := AggregateRange(1.0, nil)

	assert.Zero(t, res.SuccessRate)
	assert.Zero(t, res.Total)
	assert.False(t, res.DistanceErrorDefined)
}

func TestSuccessRateBounds(t *testing.T) {
	assert.Zero(t, successRate(0, 0))
	assert.InDelta(t, 100.0, successRate(5, 5), 1e-9)
	assert.GreaterOrEqual(t, successRate(1, 3), 0.0)
	assert.LessOrEqual(t, successRate(1, 3), 100.0)
}

func TestAggregateFalsePositive(t *testing.T) {
	presences := make([]bool, 40)
	presences[3], presences[17], presences[29] = true, true, true
	res := AggregateFalsePositive(records(presences, make([]float64, 40)))

	assert.InDelta(t, 7.5, res.Rate, 1e-9)
	assert.Equal(t, 3, res.FalsePositives)
	assert.Equal(t, 40, res.Total)
}

func TestAggregateFalsePositive_Empty(t *testing.T) {
	res := AggregateFalsePositive(nil)
	assert.Zero(t, res.Rate)
}

func TestAggregateMotion(t *testing.T) {
	recs := []parser.Record{
		{Presence: true, Intra: 100, Inter: 50},
		{Presence: true, Intra: 200, Inter: 70},
		{Presence: false, Intra: 999, Inter: 999}, // excluded from score means
	}
	res := AggregateMotion("slow", recs)

	assert.Equal(t, "slow", res.Label)
	assert.InDelta(t, 66.666, res.SuccessRate, 0.001)
	assert.InDelta(t, 150.0, res.AvgIntra, 1e-9)
	assert.InDelta(t, 60.0, res.AvgInter, 1e-9)
}

func TestAggregateStability(t *testing.T) {
	recs := records(
		[]bool{true, true, false},
		[]float64{1.0, 1.0, 1.0},
	)
	res := AggregateStability(recs)

	assert.InDelta(t, 1.0, res.Mean, 1e-9)
	assert.Zero(t, res.StdDev)
	assert.InDelta(t, 1.0, res.Min, 1e-9)
	assert.InDelta(t, 1.0, res.Max, 1e-9)
	assert.Equal(t, 3, res.Samples)
	// Detection rate spans the full row count, not just detections.
	assert.InDelta(t, 66.666, res.DetectionRate, 0.001)
}

func TestAggregateStability_SingleSample(t *testing.T) {
	res := AggregateStability(records([]bool{true}, []float64{1.5}))

	assert.Zero(t, res.StdDev, "stddev below 2 samples is 0, never an error")
	assert.InDelta(t, 1.5, res.Mean, 1e-9)
	assert.InDelta(t, 1.5, res.Min, 1e-9)
	assert.InDelta(t, 1.5, res.Max, 1e-9)
}

func TestAggregateStability_Empty(t *testing.T) {
	res := AggregateStability(nil)

	assert.Zero(t, res.Samples)
	assert.Zero(t, res.Mean)
	assert.Zero(t, res.StdDev)
	assert.Zero(t, res.DetectionRate)
}

func TestScanLog_Timeout(t *testing.T) {
	content := []byte("sensor bring-up: connection TIMEOUT after 5s\n")
	out := ScanLog("sensor_init", content)

	assert.Equal(t, StatusFail, out.Status)
	assert.Contains(t, out.MatchedIndicators, "timeout")
	assert.Equal(t, int64(len(content)), out.LogSizeBytes)
}

func TestScanLog_Clean(t *testing.T) {
	out := ScanLog("system_check", []byte("all systems nominal\n"))

	assert.Equal(t, StatusPass, out.Status)
	assert.Empty(t, out.MatchedIndicators)
}

func TestScanLog_MultipleIndicators(t *testing.T) {
	out := ScanLog("boot", []byte("ERROR: device not found, init FAILED\n"))

	assert.Equal(t, StatusFail, out.Status)
	// Matches are reported in indicator-list order.
	assert.Equal(t, []string{"ERROR", "FAILED", "error:", "not found"}, out.MatchedIndicators)
}

package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dynamicdevices/xm125-analyzer/internal/analysis"
)

// Fixed output filenames inside the test directory. Re-runs overwrite these
// and nothing else.
const (
	SummaryFileName = "analysis_summary.txt"
	ReportFileName  = "analysis_report.json"
	PlotFileName    = "range_performance.png"
	PDFFileName     = "analysis_report.pdf"
)

const (
	glyphPass = "✅ PASS"
	glyphWarn = "⚠️  WARN"
	glyphFail = "❌ FAIL"
)

func glyph(v analysis.Verdict) string {
	switch v {
	case analysis.VerdictWarn:
		return glyphWarn
	case analysis.VerdictFail:
		return glyphFail
	default:
		return glyphPass
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// WriteText streams the human-readable summary: one section per test
// category plus the overall assessment.
func WriteText(w io.Writer, rep *analysis.Report, th analysis.Thresholds) error {
	var b strings.Builder
	sep := strings.Repeat("=", 60)
	fmt.Fprintf(&b, "%s\nXM125 HARDWARE TEST ANALYSIS SUMMARY\n%s\n", sep, sep)
	fmt.Fprintf(&b, "Test Directory: %s\n", rep.TestDir)
	fmt.Fprintf(&b, "Analysis Date: %s\n", rep.GeneratedAt.Format("2006-01-02 15:04:05"))

	writeRangeSection(&b, rep)
	writeFalsePositiveSection(&b, rep, th)
	writeMotionSection(&b, rep)
	writeStabilitySection(&b, rep)
	writeLogSection(&b, rep)
	writeOverallSection(&b, rep, th)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeRangeSection(b *strings.Builder, rep *analysis.Report) {
	fmt.Fprintf(b, "\n=== RANGE TEST ANALYSIS ===\n")
	distances := rep.RangeDistances()
	if len(distances) == 0 {
		fmt.Fprintln(b, "No range test files found")
		return
	}
	for _, d := range distances {
		res := rep.Range[d]
		errStr := "undefined"
		if res.DistanceErrorDefined {
			errStr = fmt.Sprintf("%.2fm", res.DistanceError)
		}
		fmt.Fprintf(b, "%.1fm: %.1f%% success (%d/%d), Measured: %.2fm, Error: %s\n",
			d, res.SuccessRate, res.Detections, res.Total, res.AvgMeasuredDistance, errStr)
	}
}

func writeFalsePositiveSection(b *strings.Builder, rep *analysis.Report, th analysis.Thresholds) {
	fmt.Fprintf(b, "\n=== FALSE POSITIVE ANALYSIS ===\n")
	if rep.FalsePositive == nil {
		fmt.Fprintln(b, "No false positive test file found")
		return
	}
	res := *rep.FalsePositive
	fmt.Fprintf(b, "False Positive Rate: %.1f%% (%d/%d)\n", res.Rate, res.FalsePositives, res.Total)
	switch th.EvaluateFalsePositive(res) {
	case analysis.VerdictWarn:
		fmt.Fprintf(b, "%s: False positive rate marginal\n", glyphWarn)
	case analysis.VerdictFail:
		fmt.Fprintf(b, "%s: False positive rate too high\n", glyphFail)
	default:
		fmt.Fprintf(b, "%s: False positive rate acceptable\n", glyphPass)
	}
}

func writeMotionSection(b *strings.Builder, rep *analysis.Report) {
	fmt.Fprintf(b, "\n=== MOTION SENSITIVITY ANALYSIS ===\n")
	if len(rep.Motion) == 0 {
		fmt.Fprintln(b, "No motion test files found")
		return
	}
	for _, label := range analysis.MotionLabels {
		res, ok := rep.Motion[label]
		if !ok {
			continue
		}
		fmt.Fprintf(b, "%s motion: %.1f%% success, Intra: %.2f, Inter: %.2f\n",
			capitalize(label), res.SuccessRate, res.AvgIntra, res.AvgInter)
	}
}

func writeStabilitySection(b *strings.Builder, rep *analysis.Report) {
	fmt.Fprintf(b, "\n=== STABILITY ANALYSIS ===\n")
	if rep.Stability == nil {
		fmt.Fprintln(b, "No stability test file found")
		return
	}
	res := *rep.Stability
	fmt.Fprintf(b, "Mean distance: %.3fm, StdDev: %.3fm, Min: %.3fm, Max: %.3fm\n",
		res.Mean, res.StdDev, res.Min, res.Max)
	fmt.Fprintf(b, "Detection rate: %.1f%% over %d samples\n", res.DetectionRate, res.Samples)
}

func writeLogSection(b *strings.Builder, rep *analysis.Report) {
	fmt.Fprintf(b, "\n=== LOG SCAN ===\n")
	if len(rep.Logs) == 0 {
		fmt.Fprintln(b, "No log files found")
		return
	}
	for _, o := range rep.Logs {
		if len(o.MatchedIndicators) > 0 {
			fmt.Fprintf(b, "%s: %s (%d bytes, indicators: %s)\n",
				o.TestName, o.Status, o.LogSizeBytes, strings.Join(o.MatchedIndicators, ", "))
		} else {
			fmt.Fprintf(b, "%s: %s (%d bytes)\n", o.TestName, o.Status, o.LogSizeBytes)
		}
	}
}

func writeOverallSection(b *strings.Builder, rep *analysis.Report, th analysis.Thresholds) {
	fmt.Fprintf(b, "\n=== OVERALL ASSESSMENT ===\n")
	if len(rep.Range) > 0 {
		if d, ok := th.EffectiveRange(rep.Range); ok {
			fmt.Fprintf(b, "Maximum effective range: %.1fm\n", d)
		} else {
			fmt.Fprintf(b, "Maximum effective range: none (no distance reached %.0f%% success)\n",
				th.MinSuccessRate)
		}
		accuracy := glyphPass
		if !th.RangeAccuracyOK(rep.Range) {
			accuracy = glyphFail
		}
		fmt.Fprintf(b, "Distance accuracy: %s\n", accuracy)
	}
	if rep.FalsePositive != nil {
		fmt.Fprintf(b, "False positive rate: %s (%.1f%%)\n",
			glyph(th.EvaluateFalsePositive(*rep.FalsePositive)), rep.FalsePositive.Rate)
	}
	if len(rep.Motion) > 0 {
		fmt.Fprintf(b, "Motion sensitivity: %s\n", glyph(th.EvaluateMotion(rep.Motion)))
	}
	fmt.Fprintf(b, "\nTotal tests: %d (passed: %d, failed: %d, errors: %d)\n",
		rep.Total, rep.Passed, rep.Failed, rep.Errored)
	fmt.Fprintf(b, "Pass rate: %.1f%%\n", rep.PassRate())
}

// SaveSummary writes the text summary to its fixed filename in the test
// directory. Failure here is fatal for the tool.
func SaveSummary(rep *analysis.Report, th analysis.Thresholds) (string, error) {
	var buf bytes.Buffer
	if err := WriteText(&buf, rep, th); err != nil {
		return "", err
	}
	path := filepath.Join(rep.TestDir, SummaryFileName)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write summary: %w", err)
	}
	return path, nil
}

// document is the durable structured report: the Report with computed
// verdicts and overall counts attached.
type document struct {
	GeneratedAt    time.Time                     `json:"generated_at"`
	TestDirectory  string                        `json:"test_directory"`
	RangeTests     []analysis.RangeResult        `json:"range_tests,omitempty"`
	EffectiveRange *float64                      `json:"effective_range_m,omitempty"`
	FalsePositive  *analysis.FalsePositiveResult `json:"false_positive,omitempty"`
	Motion         []analysis.MotionResult       `json:"motion,omitempty"`
	Stability      *analysis.StabilityResult     `json:"stability,omitempty"`
	Logs           []analysis.LogOutcome         `json:"logs,omitempty"`
	Verdicts       map[string]analysis.Verdict   `json:"verdicts,omitempty"`
	Warnings       []string                      `json:"warnings,omitempty"`
	Overall        overall                       `json:"overall"`
}

type overall struct {
	TotalTests int     `json:"total_tests"`
	Passed     int     `json:"passed"`
	Failed     int     `json:"failed"`
	Errored    int     `json:"errored"`
	PassRate   float64 `json:"pass_rate_pct"`
}

func buildDocument(rep *analysis.Report, th analysis.Thresholds) document {
	doc := document{
		GeneratedAt:   rep.GeneratedAt,
		TestDirectory: rep.TestDir,
		FalsePositive: rep.FalsePositive,
		Stability:     rep.Stability,
		Logs:          rep.Logs,
		Verdicts:      make(map[string]analysis.Verdict),
		Warnings:      rep.Warnings,
		Overall: overall{
			TotalTests: rep.Total,
			Passed:     rep.Passed,
			Failed:     rep.Failed,
			Errored:    rep.Errored,
			PassRate:   rep.PassRate(),
		},
	}
	for _, d := range rep.RangeDistances() {
		doc.RangeTests = append(doc.RangeTests, rep.Range[d])
	}
	if len(rep.Range) > 0 {
		doc.Verdicts["range"] = th.EvaluateRange(rep.Range)
		if d, ok := th.EffectiveRange(rep.Range); ok {
			doc.EffectiveRange = &d
		}
	}
	if rep.FalsePositive != nil {
		doc.Verdicts["false_positive"] = th.EvaluateFalsePositive(*rep.FalsePositive)
	}
	for _, label := range analysis.MotionLabels {
		if res, ok := rep.Motion[label]; ok {
			doc.Motion = append(doc.Motion, res)
		}
	}
	if len(rep.Motion) > 0 {
		doc.Verdicts["motion"] = th.EvaluateMotion(rep.Motion)
	}
	if len(doc.Verdicts) == 0 {
		doc.Verdicts = nil
	}
	return doc
}

// SaveJSON writes the structured report document to its fixed filename in
// the test directory. Failure here is fatal for the tool.
func SaveJSON(rep *analysis.Report, th analysis.Thresholds) (string, error) {
	doc := buildDocument(rep, th)
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}
	path := filepath.Join(rep.TestDir, ReportFileName)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

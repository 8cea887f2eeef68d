package analysis

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/dynamicdevices/xm125-analyzer/internal/parser"
)

// ErrMissingDirectory is returned when the test directory does not exist.
var ErrMissingDirectory = errors.New("test directory not found")

// Test file naming conventions produced by the XM125 test harness.
const (
	rangeFilePattern  = "range_*.csv"
	falsePositiveFile = "false_positive_test.csv"
	motionFilePrefix  = "motion_"
	stabilityFile     = "stability_test.csv"
	logFilePattern    = "*.log"
)

// Analyzer walks one test directory and reduces every recognised test
// artifact into a Report. Categories are independent: a missing or empty
// file skips its category, it never aborts the run.
type Analyzer struct {
	dir        string
	thresholds Thresholds
	logger     *log.Logger
}

// New returns an analyzer for the given test directory.
func New(dir string, thresholds Thresholds, logger *log.Logger) *Analyzer {
	if logger == nil {
		logger = log.Default()
	}
	return &Analyzer{dir: dir, thresholds: thresholds, logger: logger}
}

// Run processes the directory end to end and returns the accumulated report.
// The only fatal condition is a missing test directory.
func (a *Analyzer) Run() (*Report, error) {
	info, err := os.Stat(a.dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrMissingDirectory, a.dir)
	}

	rep := NewReport(a.dir)
	a.analyzeRange(rep)
	a.analyzeFalsePositives(rep)
	a.analyzeMotion(rep)
	a.analyzeStability(rep)
	a.analyzeLogs(rep)
	return rep, nil
}

func (a *Analyzer) analyzeRange(rep *Report) {
	files, _ := filepath.Glob(filepath.Join(a.dir, rangeFilePattern))
	if len(files) == 0 {
		a.logger.Warn("no range test files found", "dir", a.dir)
		return
	}

	for _, file := range files {
		nominal, err := parser.NominalDistanceFromFilename(file)
		if err != nil {
			a.warn(rep, fmt.Sprintf("%s: %v, file skipped", filepath.Base(file), err))
			continue
		}
		records, ok := a.parse(rep, file)
		if !ok || len(records) == 0 {
			continue
		}
		rep.Range[nominal] = AggregateRange(nominal, records)
	}
	if len(rep.Range) > 0 {
		rep.record(a.thresholds.EvaluateRange(rep.Range).Status())
	}
}

func (a *Analyzer) analyzeFalsePositives(rep *Report) {
	file := filepath.Join(a.dir, falsePositiveFile)
	if _, err := os.Stat(file); err != nil {
		a.logger.Warn("no false positive test file found", "dir", a.dir)
		return
	}
	records, ok := a.parse(rep, file)
	if !ok || len(records) == 0 {
		return
	}
	res := AggregateFalsePositive(records)
	rep.FalsePositive = &res
	rep.record(a.thresholds.EvaluateFalsePositive(res).Status())
}

func (a *Analyzer) analyzeMotion(rep *Report) {
	for _, label := range MotionLabels {
		file := filepath.Join(a.dir, motionFilePrefix+label+".csv")
		if _, err := os.Stat(file); err != nil {
			continue
		}
		records, ok := a.parse(rep, file)
		if !ok || len(records) == 0 {
			continue
		}
		rep.Motion[label] = AggregateMotion(label, records)
	}
	if len(rep.Motion) == 0 {
		a.logger.Warn("no motion test files found", "dir", a.dir)
		return
	}
	rep.record(a.thresholds.EvaluateMotion(rep.Motion).Status())
}

func (a *Analyzer) analyzeStability(rep *Report) {
	file := filepath.Join(a.dir, stabilityFile)
	if _, err := os.Stat(file); err != nil {
		a.logger.Warn("no stability test file found", "dir", a.dir)
		return
	}
	records, ok := a.parse(rep, file)
	if !ok || len(records) == 0 {
		return
	}
	res := AggregateStability(records)
	rep.Stability = &res
	// Stability characterises the sensor rather than gating it.
	rep.record(StatusPass)
}

func (a *Analyzer) analyzeLogs(rep *Report) {
	files, _ := filepath.Glob(filepath.Join(a.dir, logFilePattern))
	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		content, err := os.ReadFile(file)
		if err != nil {
			a.warn(rep, fmt.Sprintf("%s: %v", filepath.Base(file), err))
			outcome := LogOutcome{TestName: name, Status: StatusError}
			rep.Logs = append(rep.Logs, outcome)
			rep.record(outcome.Status)
			continue
		}
		outcome := ScanLog(name, content)
		rep.Logs = append(rep.Logs, outcome)
		rep.record(outcome.Status)
	}
}

// parse reads one results file, folding its row-level warnings into the
// report. A read failure skips the file with a warning.
func (a *Analyzer) parse(rep *Report, path string) ([]parser.Record, bool) {
	pf, err := parser.ParseFile(path)
	if err != nil {
		a.warn(rep, fmt.Sprintf("%s: %v", filepath.Base(path), err))
		return nil, false
	}
	for _, w := range pf.Warnings {
		a.warn(rep, fmt.Sprintf("%s: %s", filepath.Base(path), w))
	}
	return pf.Records, true
}

func (a *Analyzer) warn(rep *Report, msg string) {
	a.logger.Warn(msg)
	rep.Warnings = append(rep.Warnings, msg)
}

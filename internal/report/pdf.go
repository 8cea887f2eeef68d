package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/dynamicdevices/xm125-analyzer/internal/analysis"
)

const (
	pdfMargin       = 15.0 // mm
	pdfContentWidth = 210 - 2*pdfMargin
	pdfLineHeight   = 6.0
)

// SavePDF renders the report as a PDF: header, overall assessment, one
// section per category and the range chart when one was generated
// (plotPath may be empty). Returns the written path.
func SavePDF(rep *analysis.Report, th analysis.Thresholds, plotPath string) (string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(pdfContentWidth, 10, "XM125 Hardware Test Analysis", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(pdfContentWidth, pdfLineHeight, fmt.Sprintf("Test directory: %s", rep.TestDir), "", 1, "C", false, 0, "")
	pdf.CellFormat(pdfContentWidth, pdfLineHeight, fmt.Sprintf("Generated: %s", rep.GeneratedAt.Format("2006-01-02 15:04:05")), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	writePDFOverall(pdf, rep, th)
	writePDFRange(pdf, rep, th)
	writePDFMotion(pdf, rep)
	writePDFLogs(pdf, rep)

	if plotPath != "" {
		if img, err := os.ReadFile(plotPath); err == nil {
			embedRangeChart(pdf, img)
		}
	}

	path := filepath.Join(rep.TestDir, PDFFileName)
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("failed to write PDF report: %w", err)
	}
	return path, nil
}

func sectionHeader(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 13)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(pdfContentWidth, 8, title, "", 1, "L", false, 0, "")
}

func bodyLine(pdf *gofpdf.Fpdf, text string) {
	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(0, 0, 0)
	pdf.MultiCell(pdfContentWidth, pdfLineHeight, text, "", "L", false)
}

// verdictText is the PDF rendition of a verdict; the txt summary's emoji
// glyphs are outside the core fonts.
func verdictText(v analysis.Verdict) string {
	return string(v)
}

func writePDFOverall(pdf *gofpdf.Fpdf, rep *analysis.Report, th analysis.Thresholds) {
	sectionHeader(pdf, "Overall Assessment")
	if len(rep.Range) > 0 {
		if d, ok := th.EffectiveRange(rep.Range); ok {
			bodyLine(pdf, fmt.Sprintf("Maximum effective range: %.1f m", d))
		} else {
			bodyLine(pdf, fmt.Sprintf("Maximum effective range: none (no distance reached %.0f%% success)", th.MinSuccessRate))
		}
		accuracy := "PASS"
		if !th.RangeAccuracyOK(rep.Range) {
			accuracy = "FAIL"
		}
		bodyLine(pdf, fmt.Sprintf("Distance accuracy: %s", accuracy))
	}
	if rep.FalsePositive != nil {
		bodyLine(pdf, fmt.Sprintf("False positive rate: %s (%.1f%%)",
			verdictText(th.EvaluateFalsePositive(*rep.FalsePositive)), rep.FalsePositive.Rate))
	}
	if len(rep.Motion) > 0 {
		bodyLine(pdf, fmt.Sprintf("Motion sensitivity: %s", verdictText(th.EvaluateMotion(rep.Motion))))
	}
	if rep.Stability != nil {
		s := rep.Stability
		bodyLine(pdf, fmt.Sprintf("Stability: mean %.3f m, stddev %.3f m, detection rate %.1f%% over %d samples",
			s.Mean, s.StdDev, s.DetectionRate, s.Samples))
	}
	bodyLine(pdf, fmt.Sprintf("Total tests: %d (passed %d, failed %d, errors %d), pass rate %.1f%%",
		rep.Total, rep.Passed, rep.Failed, rep.Errored, rep.PassRate()))
	pdf.Ln(3)
}

func writePDFRange(pdf *gofpdf.Fpdf, rep *analysis.Report, th analysis.Thresholds) {
	if len(rep.Range) == 0 {
		return
	}
	sectionHeader(pdf, "Range Tests")

	widths := []float64{30, 35, 35, 40, 40}
	headers := []string{"Nominal (m)", "Success (%)", "Detections", "Measured (m)", "Error (m)"}
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(200, 200, 200)
	for i, h := range headers {
		pdf.CellFormat(widths[i], pdfLineHeight, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	for _, d := range rep.RangeDistances() {
		res := rep.Range[d]
		errStr := "undefined"
		if res.DistanceErrorDefined {
			errStr = fmt.Sprintf("%.2f", res.DistanceError)
		}
		// Below-floor success rates are called out in red, like the txt
		// summary's FAIL glyphs.
		if res.SuccessRate < th.MinSuccessRate {
			pdf.SetFont("Arial", "B", 9)
			pdf.SetTextColor(200, 0, 0)
		} else {
			pdf.SetFont("Arial", "", 9)
			pdf.SetTextColor(50, 50, 50)
		}
		cells := []string{
			fmt.Sprintf("%.1f", res.NominalDistance),
			fmt.Sprintf("%.1f", res.SuccessRate),
			fmt.Sprintf("%d/%d", res.Detections, res.Total),
			fmt.Sprintf("%.2f", res.AvgMeasuredDistance),
			errStr,
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], pdfLineHeight, c, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(3)
}

func writePDFMotion(pdf *gofpdf.Fpdf, rep *analysis.Report) {
	if len(rep.Motion) == 0 {
		return
	}
	sectionHeader(pdf, "Motion Sensitivity")
	for _, label := range analysis.MotionLabels {
		res, ok := rep.Motion[label]
		if !ok {
			continue
		}
		bodyLine(pdf, fmt.Sprintf("%s: %.1f%% success (%d/%d), intra %.2f, inter %.2f",
			capitalize(label), res.SuccessRate, res.Detections, res.Total, res.AvgIntra, res.AvgInter))
	}
	pdf.Ln(3)
}

func writePDFLogs(pdf *gofpdf.Fpdf, rep *analysis.Report) {
	if len(rep.Logs) == 0 {
		return
	}
	sectionHeader(pdf, "Log Scan")
	for _, o := range rep.Logs {
		line := fmt.Sprintf("%s: %s (%d bytes)", o.TestName, o.Status, o.LogSizeBytes)
		if len(o.MatchedIndicators) > 0 {
			line += " - indicators: " + strings.Join(o.MatchedIndicators, ", ")
		}
		bodyLine(pdf, line)
	}
	pdf.Ln(3)
}

func embedRangeChart(pdf *gofpdf.Fpdf, img []byte) {
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("range_performance", opts, bytes.NewReader(img))
	pdf.AddPage()
	sectionHeader(pdf, "Range Performance")
	pdf.ImageOptions("range_performance", pdfMargin, pdf.GetY()+2, pdfContentWidth, 0, false, opts, 0, "")
}

package main

import (
	"fmt"
	"os"

	log "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dynamicdevices/xm125-analyzer/internal/analysis"
	"github.com/dynamicdevices/xm125-analyzer/internal/report"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		plotFlag       bool
		pdfFlag        bool
		thresholdsFile string
	)

	cmd := &cobra.Command{
		Use:   "analyze <test-directory>",
		Short: "Analyze XM125 hardware test results",
		Long: `Analyze ingests the CSV and log artifacts produced by XM125 hardware
test runs (range, false positive, motion sensitivity, stability) and produces
aggregate pass/fail metrics, a textual summary and a structured report in the
test directory.

Exit code is 0 when no test failed or errored, 1 otherwise.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], thresholdsFile, plotFlag, pdfFlag)
		},
	}
	cmd.Flags().BoolVar(&plotFlag, "plot", false, "generate range performance charts")
	cmd.Flags().BoolVar(&pdfFlag, "pdf", false, "generate a PDF rendition of the report")
	cmd.Flags().StringVar(&thresholdsFile, "thresholds", "", "YAML file overriding the default acceptance thresholds")
	return cmd
}

func run(testDir, thresholdsFile string, plotFlag, pdfFlag bool) error {
	th := analysis.DefaultThresholds()
	if thresholdsFile != "" {
		var err error
		th, err = analysis.LoadThresholds(thresholdsFile)
		if err != nil {
			return err
		}
	}

	rep, err := analysis.New(testDir, th, log.Default()).Run()
	if err != nil {
		return err
	}

	if err := report.WriteText(os.Stdout, rep, th); err != nil {
		return err
	}

	// The durable report is the tool's primary deliverable: write failures
	// are fatal, unlike everything parsing-related.
	summaryPath, err := report.SaveSummary(rep, th)
	if err != nil {
		return err
	}
	jsonPath, err := report.SaveJSON(rep, th)
	if err != nil {
		return err
	}
	log.Info("report written", "summary", summaryPath, "json", jsonPath)

	plotPath := ""
	if plotFlag {
		plotPath, err = report.SaveRangePlot(rep, th)
		if err != nil {
			log.Warn("plotting skipped", "error", err)
			plotPath = ""
		} else {
			log.Info("range performance plot saved", "path", plotPath)
		}
	}
	if pdfFlag {
		pdfPath, err := report.SavePDF(rep, th, plotPath)
		if err != nil {
			log.Warn("PDF generation skipped", "error", err)
		} else {
			log.Info("PDF report saved", "path", pdfPath)
		}
	}

	if rep.Failed > 0 || rep.Errored > 0 {
		return fmt.Errorf("analysis found %d failed and %d errored tests", rep.Failed, rep.Errored)
	}
	return nil
}

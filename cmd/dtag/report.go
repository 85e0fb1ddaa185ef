package main

import (
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/franz/discogs-tagger/internal/report"
	"github.com/franz/discogs-tagger/internal/util"
)

var reportCmd = &cobra.Command{
	Use:   "report <run-id>",
	Short: "Generate a summary report for a tagging run",
	Long: `Generate a summary report of one tagging run in Markdown format.

The report includes:
- Release, source and destination of the run
- Every written track with its size
- Top errors from the event log (with --event-log)

The report is saved to artifacts/reports/<run-id>.md`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	// Report-specific flags
	reportCmd.Flags().String("out", "", "Output directory for report (default: artifacts/reports)")
	reportCmd.Flags().String("event-log", "", "Path to event log file (optional)")
}

func runReport(cmd *cobra.Command, args []string) error {
	runID := args[0]
	dbPath := viper.GetString("db")

	util.InfoLog("=== Generating Summary Report ===")
	util.InfoLog("Database: %s", dbPath)

	// Open database
	db, err := openStore(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	// Get event log path if specified
	eventLogPath, _ := cmd.Flags().GetString("event-log")

	summaryReport, err := report.GenerateSummaryReport(db, runID, eventLogPath)
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	summaryReport.DatabasePath = dbPath

	// Determine output path
	outputDir, _ := cmd.Flags().GetString("out")
	if outputDir == "" {
		outputDir = filepath.Join(viper.GetString("artifacts"), "reports")
	}

	outputPath := filepath.Join(outputDir, runID+".md")

	// Write markdown report
	util.InfoLog("Writing report to: %s", outputPath)
	if err := report.WriteMarkdownReport(summaryReport, outputPath); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	// Summary
	util.SuccessLog("Report generated successfully!")
	util.InfoLog("")
	util.InfoLog("Summary:")
	util.InfoLog("  Release: %d", summaryReport.Run.ReleaseID)
	util.InfoLog("  Tracks: %d on %d disc(s)", len(summaryReport.Files), summaryReport.Discs)
	util.InfoLog("  Bytes written: %s", humanize.Bytes(uint64(summaryReport.BytesWritten)))
	if summaryReport.Run.Error != "" {
		util.WarnLog("  Error: %s", summaryReport.Run.Error)
	}

	return nil
}

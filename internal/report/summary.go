package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/franz/discogs-tagger/internal/store"
)

// SummaryReport describes one tagging run
type SummaryReport struct {
	GeneratedAt time.Time

	Run          *store.Run
	Files        []*store.RunFile
	Discs        int
	BytesWritten int64

	// Details
	TopErrors []ErrorSummary

	// Metadata
	DatabasePath string
	EventLogPath string
}

// ErrorSummary represents an error with its count
type ErrorSummary struct {
	Error string
	Count int
}

// GenerateSummaryReport creates a summary of run runID from the database and its event log
func GenerateSummaryReport(db *store.Store, runID, eventLogPath string) (*SummaryReport, error) {
	run, err := db.GetRun(runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}
	if run == nil {
		return nil, fmt.Errorf("run %s not found", runID)
	}

	files, err := db.GetRunFiles(runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load run files: %w", err)
	}

	report := &SummaryReport{
		GeneratedAt:  time.Now(),
		Run:          run,
		Files:        files,
		EventLogPath: eventLogPath,
		TopErrors:    make([]ErrorSummary, 0),
	}

	discs := make(map[int]bool)
	for _, f := range files {
		report.BytesWritten += f.BytesWritten
		discs[f.Disc] = true
	}
	report.Discs = len(discs)

	if eventLogPath != "" {
		report.TopErrors = gatherTopErrors(eventLogPath, runID, 10)
	}

	return report, nil
}

// gatherTopErrors counts the error events of a run in the event log
func gatherTopErrors(eventLogPath, runID string, limit int) []ErrorSummary {
	file, err := os.Open(eventLogPath)
	if err != nil {
		return []ErrorSummary{}
	}
	defer file.Close()

	counts := make(map[string]int)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var e Event
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue
		}
		if e.Error == "" || (runID != "" && e.RunID != runID) {
			continue
		}
		counts[e.Error]++
	}

	errors := make([]ErrorSummary, 0, len(counts))
	for msg, n := range counts {
		errors = append(errors, ErrorSummary{Error: msg, Count: n})
	}
	sort.Slice(errors, func(i, j int) bool {
		if errors[i].Count != errors[j].Count {
			return errors[i].Count > errors[j].Count
		}
		return errors[i].Error < errors[j].Error
	})
	if len(errors) > limit {
		errors = errors[:limit]
	}
	return errors
}

// WriteMarkdownReport writes report as markdown to outputPath
func WriteMarkdownReport(report *SummaryReport, outputPath string) error {
	// Create output directory
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var md strings.Builder
	run := report.Run

	// Header
	md.WriteString("# Discogs Tagger - Run Report\n\n")
	md.WriteString(fmt.Sprintf("**Generated:** %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05")))

	if report.DatabasePath != "" {
		md.WriteString(fmt.Sprintf("**Database:** `%s`\n\n", report.DatabasePath))
	}
	if report.EventLogPath != "" {
		md.WriteString(fmt.Sprintf("**Event Log:** `%s`\n\n", report.EventLogPath))
	}

	md.WriteString("---\n\n")

	// Overview
	md.WriteString("## 📊 Overview\n\n")
	md.WriteString("| Metric | Value |\n")
	md.WriteString("|--------|-------|\n")
	md.WriteString(fmt.Sprintf("| Run | `%s` |\n", run.ID))
	md.WriteString(fmt.Sprintf("| Release | %d |\n", run.ReleaseID))
	md.WriteString(fmt.Sprintf("| Source | `%s` |\n", truncatePath(run.SrcDir, 80)))
	if run.DestDir != "" {
		md.WriteString(fmt.Sprintf("| Destination | `%s` |\n", truncatePath(run.DestDir, 80)))
	}
	if run.DryRun {
		md.WriteString("| Mode | dry run |\n")
	}
	md.WriteString(fmt.Sprintf("| Status | %s |\n", runStatus(run)))
	if !run.CompletedAt.IsZero() {
		md.WriteString(fmt.Sprintf("| Duration | %s |\n", run.CompletedAt.Sub(run.StartedAt).Round(time.Millisecond)))
	}
	md.WriteString("\n")

	// Files
	if len(report.Files) > 0 {
		md.WriteString("## 📁 Files\n\n")
		md.WriteString(fmt.Sprintf("%d tracks on %d disc(s), %s written\n\n",
			len(report.Files), report.Discs, humanize.Bytes(uint64(report.BytesWritten))))
		md.WriteString("| Disc | Track | Destination | Size |\n")
		md.WriteString("|------|-------|-------------|------|\n")
		for _, f := range report.Files {
			md.WriteString(fmt.Sprintf("| %d | %d | `%s` | %s |\n",
				f.Disc, f.Track, truncatePath(f.DestPath, 60), humanize.Bytes(uint64(f.BytesWritten))))
		}
		md.WriteString("\n")
	}

	// Errors
	if len(report.TopErrors) > 0 {
		md.WriteString("## ⚠️ Top Errors\n\n")
		md.WriteString("| Count | Error |\n")
		md.WriteString("|-------|-------|\n")
		for _, err := range report.TopErrors {
			md.WriteString(fmt.Sprintf("| %d | %s |\n", err.Count, err.Error))
		}
		md.WriteString("\n")
	}

	// Footer
	md.WriteString("---\n\n")
	md.WriteString("*Generated by dtag*\n")

	if err := os.WriteFile(outputPath, []byte(md.String()), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

func runStatus(run *store.Run) string {
	switch {
	case run.CompletedAt.IsZero():
		return "in progress"
	case run.Error != "":
		return "failed: " + run.Error
	default:
		return "ok"
	}
}

// truncatePath truncates a file path to a maximum length
func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	// Truncate from the middle, keeping start and end
	start := maxLen/2 - 2
	end := len(path) - (maxLen/2 - 2)
	return path[:start] + "..." + path[end:]
}

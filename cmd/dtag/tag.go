package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/franz/discogs-tagger/internal/report"
	"github.com/franz/discogs-tagger/internal/store"
	"github.com/franz/discogs-tagger/internal/tagger"
	"github.com/franz/discogs-tagger/internal/util"
)

var tagCmd = &cobra.Command{
	Use:   "tag <source-dir>",
	Short: "Tag one album folder from a Discogs release",
	Long: `Tag the audio files of one album folder with a Discogs release.

This command:
1. Resolves the release id (--release, or the id file in the source folder)
2. Fetches the release (cached in the state database)
3. Pairs the sorted audio files with the release tracks
4. Copies the files into a new album folder below the destination
5. Writes album and track tags, cover images, .nfo and .m3u files

Safety features:
- An existing album folder is never overwritten
- Atomic copy (write to .part, then rename)
- The source is only deleted after a fully successful run,
  and only with details.keep_original set to false

Use --dry-run to preview the destination names.`,
	Args: cobra.ExactArgs(1),
	RunE: runTag,
}

func init() {
	rootCmd.AddCommand(tagCmd)

	tagCmd.Flags().IntP("release", "r", 0, "Discogs release id (default: read from the id file)")
	tagCmd.Flags().StringP("dest", "d", "", "destination base folder (default: next to the source)")
	tagCmd.Flags().Bool("dry-run", false, "show what would be written without touching any file")
	tagCmd.Flags().Bool("no-report", false, "do not write a markdown run report")
}

func runTag(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	src := args[0]
	releaseID, _ := cmd.Flags().GetInt("release")
	dest, _ := cmd.Flags().GetString("dest")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	noReport, _ := cmd.Flags().GetBool("no-report")

	if info, err := os.Stat(src); err != nil || !info.IsDir() {
		return fmt.Errorf("source %s is not a directory", src)
	}

	cfg, err := taggerConfig()
	if err != nil {
		return err
	}
	cfg.DryRun = dryRun

	dbPath := viper.GetString("db")
	db, err := openStore(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	client, cache, err := newCatalog(db)
	if err != nil {
		return err
	}

	artifacts := viper.GetString("artifacts")
	logger, err := report.NewEventLogger(filepath.Join(artifacts, "events"), eventLevel())
	if err != nil {
		util.WarnLog("Failed to create event logger: %v", err)
		logger = report.NullLogger()
	}
	defer logger.Close()

	if logger.Path() != "" {
		util.DebugLog("Event log: %s", logger.Path())
	}

	t := tagger.New(cfg, cache, client, db, logger)

	startTime := time.Now()
	res, runErr := t.Run(ctx, src, dest, releaseID)
	duration := time.Since(startTime)

	if res != nil && res.Exec != nil {
		printSummary(res, duration)
	}

	if res != nil && res.RunID != "" && !dryRun && !noReport && res.Exec != nil {
		writeRunReport(db, dbPath, res.RunID, logger.Path(), artifacts)
	}

	if runErr != nil {
		return fmt.Errorf("tagging failed: %w", runErr)
	}
	return nil
}

func printSummary(res *tagger.Result, duration time.Duration) {
	exec := res.Exec

	util.InfoLog("")
	util.SuccessLog("=== Tagging Summary ===")
	util.InfoLog("Release: %d (%s)", res.ReleaseID, res.Album.Title)
	util.InfoLog("Destination: %s", res.Plan.DestDir)
	util.InfoLog("Total time: %v", duration.Round(time.Millisecond))
	util.InfoLog("Tracks: %d", exec.Processed)
	if exec.Skipped > 0 {
		util.InfoLog("  Dry run: %d", exec.Skipped)
	} else {
		util.InfoLog("  Written: %d", exec.Succeeded)
	}
	if exec.Failed > 0 {
		util.WarnLog("  Failed: %d", exec.Failed)
	}
	util.InfoLog("Images: %d", exec.Images)
	util.InfoLog("Bytes written: %s", humanize.Bytes(uint64(exec.BytesWritten)))

	if len(exec.Errors) > 0 {
		util.InfoLog("")
		util.WarnLog("Errors encountered:")
		for i, err := range exec.Errors {
			if i >= 10 {
				util.WarnLog("... and %d more errors", len(exec.Errors)-10)
				break
			}
			util.WarnLog("  - %v", err)
		}
	}
}

// writeRunReport saves the markdown summary of a run below the artifacts folder
func writeRunReport(db *store.Store, dbPath, runID, eventLog, artifacts string) {
	summaryReport, err := report.GenerateSummaryReport(db, runID, eventLog)
	if err != nil {
		util.WarnLog("Failed to generate summary report: %v", err)
		return
	}
	summaryReport.DatabasePath = dbPath

	reportPath := filepath.Join(artifacts, "reports", runID+".md")
	if err := report.WriteMarkdownReport(summaryReport, reportPath); err != nil {
		util.WarnLog("Failed to write summary report: %v", err)
		return
	}
	util.SuccessLog("Summary report saved to: %s", reportPath)
}

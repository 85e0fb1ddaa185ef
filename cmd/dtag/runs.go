package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/franz/discogs-tagger/internal/store"
	"github.com/franz/discogs-tagger/internal/util"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show the tagging history",
	Long: `List the recorded tagging runs, newest first.

Use 'dtag runs --files <run-id>' to list the files written by one run.`,
	RunE: runRuns,
}

func init() {
	rootCmd.AddCommand(runsCmd)

	runsCmd.Flags().IntP("limit", "n", 20, "number of runs to show (0 = all)")
	runsCmd.Flags().String("files", "", "list the files written by this run")
}

func runRuns(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	filesOf, _ := cmd.Flags().GetString("files")

	db, err := openStore(viper.GetString("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if filesOf != "" {
		return showRunFiles(db, filesOf)
	}

	runs, err := db.ListRuns(limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		util.InfoLog("No runs recorded yet. Run 'dtag tag <source-dir>' first.")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.ID, strconv.Itoa(r.ReleaseID), humanize.Time(r.StartedAt),
			strconv.Itoa(r.Tracks), runStatus(r), r.DestDir,
		})
	}
	fmt.Println(renderTable([]string{"Run", "Release", "Started", "Tracks", "Status", "Destination"}, rows, 1, 3))
	return nil
}

func runStatus(r *store.Run) string {
	switch {
	case r.CompletedAt.IsZero():
		return "running"
	case r.Error != "":
		return "failed"
	case r.DryRun:
		return "dry run"
	}
	return "ok"
}

func showRunFiles(db *store.Store, runID string) error {
	run, err := db.GetRun(runID)
	if err != nil {
		return fmt.Errorf("failed to load run: %w", err)
	}
	if run == nil {
		return fmt.Errorf("run %s not found", runID)
	}
	files, err := db.GetRunFiles(runID)
	if err != nil {
		return fmt.Errorf("failed to list run files: %w", err)
	}

	util.InfoLog("Run %s: release %d, %s", run.ID, run.ReleaseID, runStatus(run))
	if run.Error != "" {
		util.WarnLog("Error: %s", run.Error)
	}

	rows := make([][]string, 0, len(files))
	for _, f := range files {
		rows = append(rows, []string{
			strconv.Itoa(f.Disc), strconv.Itoa(f.Track),
			humanize.Bytes(uint64(f.BytesWritten)), f.SrcPath, f.DestPath,
		})
	}
	fmt.Println(renderTable([]string{"Disc", "Track", "Size", "Source", "Destination"}, rows, 0, 1, 2))
	return nil
}

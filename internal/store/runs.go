package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run is one invocation of the tagger against a source directory
type Run struct {
	ID          string
	ReleaseID   int
	SrcDir      string
	DestDir     string
	DryRun      bool
	StartedAt   time.Time
	CompletedAt time.Time // zero while the run is in progress
	Tracks      int
	Error       string
}

// Succeeded reports whether the run finished without error
func (r *Run) Succeeded() bool {
	return !r.CompletedAt.IsZero() && r.Error == ""
}

// RunFile records one audio file written by a run
type RunFile struct {
	RunID        string
	SrcPath      string
	DestPath     string
	Disc         int
	Track        int
	BytesWritten int64
}

// CreateRun starts a new run record and returns it with a fresh id
func (s *Store) CreateRun(releaseID int, srcDir string, dryRun bool) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		ReleaseID: releaseID,
		SrcDir:    srcDir,
		DryRun:    dryRun,
		StartedAt: time.Now().UTC(),
	}

	_, err := s.db.Exec(`
		INSERT INTO runs (id, release_id, src_dir, dry_run, started_at)
		VALUES (?, ?, ?, ?, ?)
	`, run.ID, run.ReleaseID, run.SrcDir, boolToInt(dryRun), run.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return run, nil
}

// CompleteRun marks a run finished. A non-nil runErr is stored as the failure reason.
func (s *Store) CompleteRun(run *Run, destDir string, tracks int, runErr error) error {
	run.DestDir = destDir
	run.Tracks = tracks
	run.CompletedAt = time.Now().UTC()
	run.Error = ""
	if runErr != nil {
		run.Error = runErr.Error()
	}

	res, err := s.db.Exec(`
		UPDATE runs
		SET dest_dir = ?, tracks = ?, completed_at = ?, error = ?
		WHERE id = ?
	`, run.DestDir, run.Tracks, run.CompletedAt, nullString(run.Error), run.ID)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s not found", run.ID)
	}
	return nil
}

// RecordFiles stores the files written by a run in one transaction.
// A file recorded again for the same destination replaces the earlier row.
func (s *Store) RecordFiles(files []*RunFile) error {
	if len(files) == 0 {
		return nil
	}
	return s.Transaction(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT OR REPLACE INTO run_files
			(run_id, src_path, dest_path, disc, track, bytes_written)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, f := range files {
			if _, err := stmt.Exec(f.RunID, f.SrcPath, f.DestPath, f.Disc, f.Track, f.BytesWritten); err != nil {
				return fmt.Errorf("failed to record %s: %w", f.DestPath, err)
			}
		}
		return nil
	})
}

// ListRuns returns the most recent runs first. A limit of zero returns all runs.
func (s *Store) ListRuns(limit int) ([]*Run, error) {
	query := `
		SELECT id, release_id, src_dir, COALESCE(dest_dir, ''), dry_run,
		       started_at, completed_at, tracks, COALESCE(error, '')
		FROM runs
		ORDER BY started_at DESC
	`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var r Run
		var dryRun int
		var completedAt sql.NullTime

		err := rows.Scan(&r.ID, &r.ReleaseID, &r.SrcDir, &r.DestDir, &dryRun,
			&r.StartedAt, &completedAt, &r.Tracks, &r.Error)
		if err != nil {
			return nil, err
		}
		r.DryRun = dryRun == 1
		if completedAt.Valid {
			r.CompletedAt = completedAt.Time
		}
		runs = append(runs, &r)
	}

	return runs, rows.Err()
}

// GetRun returns the run with id, or nil when there is none
func (s *Store) GetRun(id string) (*Run, error) {
	var r Run
	var dryRun int
	var completedAt sql.NullTime

	err := s.db.QueryRow(`
		SELECT id, release_id, src_dir, COALESCE(dest_dir, ''), dry_run,
		       started_at, completed_at, tracks, COALESCE(error, '')
		FROM runs
		WHERE id = ?
	`, id).Scan(&r.ID, &r.ReleaseID, &r.SrcDir, &r.DestDir, &dryRun,
		&r.StartedAt, &completedAt, &r.Tracks, &r.Error)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	r.DryRun = dryRun == 1
	if completedAt.Valid {
		r.CompletedAt = completedAt.Time
	}
	return &r, nil
}

// GetRunFiles returns the files of a run in disc and track order
func (s *Store) GetRunFiles(runID string) ([]*RunFile, error) {
	rows, err := s.db.Query(`
		SELECT run_id, src_path, dest_path, disc, track, COALESCE(bytes_written, 0)
		FROM run_files
		WHERE run_id = ?
		ORDER BY disc, track
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []*RunFile
	for rows.Next() {
		var f RunFile
		if err := rows.Scan(&f.RunID, &f.SrcPath, &f.DestPath, &f.Disc, &f.Track, &f.BytesWritten); err != nil {
			return nil, err
		}
		files = append(files, &f)
	}

	return files, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

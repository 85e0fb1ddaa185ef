package execute

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/sourcegraph/conc/pool"

	"github.com/franz/discogs-tagger/internal/album"
	"github.com/franz/discogs-tagger/internal/meta"
	"github.com/franz/discogs-tagger/internal/plan"
	"github.com/franz/discogs-tagger/internal/report"
	"github.com/franz/discogs-tagger/internal/store"
	"github.com/franz/discogs-tagger/internal/util"
)

// ImageFetcher downloads release images
type ImageFetcher interface {
	FetchImage(ctx context.Context, uri string) ([]byte, error)
}

// Executor writes a plan to disk: images, tagged audio files, other files,
// the NFO and the playlist
type Executor struct {
	store        *store.Store
	images       ImageFetcher
	runID        string
	concurrency  int
	dryRun       bool
	writeTags    bool
	embedArtwork bool
	deleteSource bool
	keepTags     []meta.Field
	tagOptions   meta.BuildOptions
	bufferSize   int
	retryConfig  *util.RetryConfig
	logger       *report.EventLogger
}

// Config holds executor configuration
type Config struct {
	Store        *store.Store // nil disables file records
	Images       ImageFetcher // nil disables image downloads
	RunID        string
	Concurrency  int
	DryRun       bool
	WriteTags    bool
	EmbedArtwork bool // embed the first image into every audio file
	DeleteSource bool // remove the source folder after a fully successful run
	KeepTags     []meta.Field
	TagOptions   meta.BuildOptions
	BufferSize   int               // Buffer size for file copying (0 = use default)
	RetryConfig  *util.RetryConfig // Retry configuration (nil = use default)
	Logger       *report.EventLogger
}

// New creates a new Executor
func New(cfg *Config) *Executor {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 128 * 1024
	}
	if cfg.RetryConfig == nil {
		cfg.RetryConfig = &util.RetryConfig{MaxAttempts: 1}
	}

	return &Executor{
		store:        cfg.Store,
		images:       cfg.Images,
		runID:        cfg.RunID,
		concurrency:  cfg.Concurrency,
		dryRun:       cfg.DryRun,
		writeTags:    cfg.WriteTags,
		embedArtwork: cfg.EmbedArtwork,
		deleteSource: cfg.DeleteSource,
		keepTags:     cfg.KeepTags,
		tagOptions:   cfg.TagOptions,
		bufferSize:   cfg.BufferSize,
		retryConfig:  cfg.RetryConfig,
		logger:       cfg.Logger,
	}
}

// Result represents execution results
type Result struct {
	Processed    int
	Succeeded    int
	Skipped      int
	Failed       int
	Images       int
	BytesWritten int64
	Errors       []error
}

// Execute writes p for album a.
// An existing destination folder is refused with util.ErrConflict before
// anything is written. Failures of single tracks are collected in the result.
func (e *Executor) Execute(ctx context.Context, p *plan.Plan, a *album.Album) (*Result, error) {
	if _, err := os.Stat(p.DestDir); err == nil {
		e.logger.LogConflict(p.SrcDir, p.DestDir, "destination exists")
		return nil, fmt.Errorf("%w: %s", util.ErrConflict, p.DestDir)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to check destination: %w", err)
	}

	if e.dryRun {
		return e.dryRunPlan(p, a), nil
	}

	util.InfoLog("Writing %d tracks to %s", len(p.Items), p.DestDir)

	dirs := []string{p.DestDir}
	for _, d := range p.DiscDirs {
		dirs = append(dirs, filepath.Join(p.DestDir, d))
	}
	for _, dir := range dirs {
		if err := util.RetryableMkdirAll(ctx, dir, 0755, e.retryConfig); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	result := &Result{
		Errors: make([]error, 0),
	}

	art := e.fetchImages(ctx, p, a, result)
	if !e.embedArtwork {
		art = nil
	}

	if err := e.writeTracks(ctx, p, a, art, result); err != nil {
		return result, err
	}

	for _, o := range p.Other {
		if _, err := e.copyFile(ctx, o.Src, o.Dest); err != nil {
			util.WarnLog("Failed to copy %s: %v", o.Src, err)
			e.logger.LogError(report.EventCopy, o.Src, err)
		}
	}

	err := report.WriteNFO(p.NFOPath, a.Info())
	e.logger.LogWrite(report.EventNFO, p.NFOPath, err)
	if err != nil {
		result.Errors = append(result.Errors, err)
	}

	err = report.WriteM3U(p.M3UPath, playlistEntries(p, e.tagOptions.ArtistSeparator))
	e.logger.LogWrite(report.EventM3U, p.M3UPath, err)
	if err != nil {
		result.Errors = append(result.Errors, err)
	}

	if e.deleteSource && p.SrcDir != "" {
		if result.Failed > 0 || len(result.Errors) > 0 {
			util.WarnLog("Keeping source %s, the run had errors", p.SrcDir)
		} else if err := os.RemoveAll(p.SrcDir); err != nil {
			util.WarnLog("Failed to delete source %s: %v", p.SrcDir, err)
		} else {
			util.InfoLog("Deleted source %s", p.SrcDir)
		}
	}

	util.SuccessLog("Execution complete: %d tracks, %d failed, %d images, %s written",
		result.Succeeded, result.Failed, result.Images, humanize.Bytes(uint64(result.BytesWritten)))

	return result, nil
}

// dryRunPlan logs every write of p without touching the filesystem
func (e *Executor) dryRunPlan(p *plan.Plan, a *album.Album) *Result {
	util.InfoLog("DRY-RUN mode: no files will be written")

	result := &Result{Errors: make([]error, 0)}
	for _, it := range p.Items {
		util.InfoLog("DRY-RUN: %s -> %s", filepath.Base(it.Src), it.RelPath)
		e.logger.LogSkip("copy", it.Src, it.Dest)
		result.Processed++
		result.Skipped++
	}
	for i, dest := range p.ImagePaths {
		e.logger.LogSkip("image", a.Images[i], dest)
	}
	for _, o := range p.Other {
		e.logger.LogSkip("copy", o.Src, o.Dest)
	}
	e.logger.LogSkip("nfo", "", p.NFOPath)
	e.logger.LogSkip("m3u", "", p.M3UPath)

	return result
}

// fetchImages downloads the release images. Failures are logged and skipped.
// It returns the first image as artwork, or nil.
func (e *Executor) fetchImages(ctx context.Context, p *plan.Plan, a *album.Album, result *Result) *meta.Artwork {
	if e.images == nil {
		return nil
	}

	var art *meta.Artwork
	for i, uri := range a.Images {
		if i >= len(p.ImagePaths) {
			break
		}
		dest := p.ImagePaths[i]

		data, err := e.images.FetchImage(ctx, uri)
		if err == nil {
			err = e.writeFile(ctx, dest, data)
		}
		e.logger.LogImage(uri, dest, int64(len(data)), err)
		if err != nil {
			if ctx.Err() != nil {
				return art
			}
			util.WarnLog("Failed to fetch image %s: %v", uri, err)
			continue
		}

		result.Images++
		if i == 0 {
			art = meta.NewArtwork(data)
		}
	}
	return art
}

// writeTracks copies and tags every planned audio file on a bounded pool
func (e *Executor) writeTracks(ctx context.Context, p *plan.Plan, a *album.Album, art *meta.Artwork, result *Result) error {
	var succeeded, failed atomic.Int64
	var bytesWritten atomic.Int64
	var mu sync.Mutex
	var records []*store.RunFile

	var bar *progressbar.ProgressBar
	if util.IsTerminal(os.Stderr.Fd()) && !util.IsQuiet() {
		bar = progressbar.NewOptions(len(p.Items),
			progressbar.OptionSetDescription("Tagging"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(200*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
	}

	workers := pool.New().WithContext(ctx).WithMaxGoroutines(e.concurrency)
	for _, item := range p.Items {
		workers.Go(func(ctx context.Context) error {
			n, err := e.writeTrack(ctx, item, a, art)
			if err != nil {
				util.ErrorLog("Failed to write %s: %v", item.RelPath, err)
				mu.Lock()
				result.Errors = append(result.Errors, fmt.Errorf("%s: %w", item.RelPath, err))
				mu.Unlock()
				failed.Add(1)
			} else {
				succeeded.Add(1)
				bytesWritten.Add(n)
				mu.Lock()
				records = append(records, &store.RunFile{
					RunID:        e.runID,
					SrcPath:      item.Src,
					DestPath:     item.Dest,
					Disc:         item.Track.Disc,
					Track:        item.Track.Number,
					BytesWritten: n,
				})
				mu.Unlock()
			}
			if bar != nil {
				bar.Add(1)
			}
			return nil
		})
	}
	workers.Wait()

	if bar != nil {
		bar.Finish()
	}

	if e.store != nil && e.runID != "" {
		if err := e.store.RecordFiles(records); err != nil {
			util.WarnLog("Failed to record written files: %v", err)
		}
	}

	result.Processed = len(p.Items)
	result.Succeeded = int(succeeded.Load())
	result.Failed = int(failed.Load())
	result.BytesWritten = bytesWritten.Load()

	return ctx.Err()
}

// writeTrack copies one audio file and writes its tags.
// Keep-tags are read from the source before the copy is retagged.
func (e *Executor) writeTrack(ctx context.Context, item plan.Item, a *album.Album, art *meta.Artwork) (int64, error) {
	start := time.Now()

	var keep meta.Tags
	if e.writeTags && len(e.keepTags) > 0 {
		var err error
		keep, err = meta.ReadKeepTags(item.Src, e.keepTags)
		if err != nil {
			util.WarnLog("Failed to read tags to keep from %s: %v", item.Src, err)
		}
	}

	n, err := e.copyFile(ctx, item.Src, item.Dest)
	if err == nil {
		err = verifySize(item.Src, item.Dest)
	}
	e.logger.LogCopy(item.Src, item.Dest, n, time.Since(start), err)
	if err != nil {
		return 0, err
	}

	if e.writeTags {
		opts := e.tagOptions
		opts.AlbumSuffix = item.AlbumSuffix

		tags := meta.BuildTags(a, item.Track, opts)
		tags.Merge(keep)

		err := meta.WriteTags(item.Dest, tags, art)
		e.logger.LogTag(item.Dest, len(tags.Fields()), err)
		switch {
		case errors.Is(err, util.ErrUnsupported):
			util.WarnLog("Copied %s untagged: %v", item.RelPath, err)
		case err != nil:
			return n, fmt.Errorf("failed to write tags: %w", err)
		}
	}

	return n, nil
}

// playlistEntries lists the planned tracks relative to the destination folder
func playlistEntries(p *plan.Plan, sep string) []report.PlaylistEntry {
	if sep == "" {
		sep = album.DefaultArtistSeparator
	}
	entries := make([]report.PlaylistEntry, 0, len(p.Items))
	for _, it := range p.Items {
		entries = append(entries, report.PlaylistEntry{
			Path:     it.RelPath,
			Artist:   it.Track.Artist(sep),
			Title:    it.Track.Title,
			Duration: it.Track.Duration,
		})
	}
	return entries
}

// copyFile copies a file atomically using a .part temporary file
func (e *Executor) copyFile(ctx context.Context, srcPath, destPath string) (int64, error) {
	if err := util.RetryableMkdirAll(ctx, filepath.Dir(destPath), 0755, e.retryConfig); err != nil {
		return 0, fmt.Errorf("failed to create directory: %w", err)
	}

	src, err := util.RetryWithBackoff(ctx, e.retryConfig, func() (*os.File, error) {
		return os.Open(srcPath)
	}, fmt.Sprintf("open(%s)", srcPath))
	if err != nil {
		return 0, fmt.Errorf("failed to open source: %w", err)
	}
	defer src.Close()

	tempPath := destPath + ".part"
	dest, err := os.Create(tempPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}

	bytesWritten, err := copyWithContext(ctx, dest, src, e.bufferSize)
	if cerr := dest.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tempPath)
		return 0, fmt.Errorf("failed to copy: %w", err)
	}

	if err := util.RetryableRename(ctx, tempPath, destPath, e.retryConfig); err != nil {
		os.Remove(tempPath)
		return 0, fmt.Errorf("failed to rename: %w", err)
	}

	util.DebugLog("Copied: %s -> %s (%s)", srcPath, destPath, humanize.Bytes(uint64(bytesWritten)))
	return bytesWritten, nil
}

// writeFile writes data atomically using a .part temporary file
func (e *Executor) writeFile(ctx context.Context, path string, data []byte) error {
	tempPath := path + ".part"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := util.RetryableRename(ctx, tempPath, path, e.retryConfig); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename: %w", err)
	}
	return nil
}

// verifySize checks that the copy has the size of its source
func verifySize(srcPath, destPath string) error {
	src, err := os.Stat(srcPath)
	if err != nil {
		return err
	}
	dest, err := os.Stat(destPath)
	if err != nil {
		return err
	}
	if src.Size() != dest.Size() {
		return fmt.Errorf("verification failed: %s has %d bytes, source has %d", destPath, dest.Size(), src.Size())
	}
	return nil
}

// copyWithContext copies data with context cancellation support
func copyWithContext(ctx context.Context, dst io.Writer, src io.Reader, bufferSize int) (int64, error) {
	if bufferSize <= 0 {
		bufferSize = 128 * 1024 // Default 128KB
	}

	buf := make([]byte, bufferSize)
	var written int64

	for {
		select {
		case <-ctx.Done():
			return written, ctx.Err()
		default:
		}

		nr, er := src.Read(buf)
		if nr > 0 {
			nw, ew := dst.Write(buf[0:nr])
			if nw < 0 || nr < nw {
				nw = 0
				if ew == nil {
					ew = fmt.Errorf("invalid write result")
				}
			}
			written += int64(nw)
			if ew != nil {
				return written, ew
			}
			if nr != nw {
				return written, io.ErrShortWrite
			}
		}
		if er != nil {
			if er != io.EOF {
				return written, er
			}
			break
		}
	}
	return written, nil
}

// Package tagger runs one tagging pass: it resolves the release, maps it,
// plans the destination and writes the tagged copy.
package tagger

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/franz/discogs-tagger/internal/album"
	"github.com/franz/discogs-tagger/internal/discogs"
	"github.com/franz/discogs-tagger/internal/execute"
	"github.com/franz/discogs-tagger/internal/meta"
	"github.com/franz/discogs-tagger/internal/plan"
	"github.com/franz/discogs-tagger/internal/report"
	"github.com/franz/discogs-tagger/internal/scan"
	"github.com/franz/discogs-tagger/internal/store"
	"github.com/franz/discogs-tagger/internal/util"
)

// Config holds every setting of a tagging run
type Config struct {
	Logger *util.Logger // nil uses util.Default()

	ReleaseFile  string // per-release id file name, default id.yaml
	DryRun       bool
	KeepOriginal bool // keep the source folder after a successful run
	EmbedArtwork bool
	Concurrency  int

	// Naming
	Format          plan.Format
	SplitDiscs      bool
	Lowercase       bool
	UseFolderJPG    bool
	CopyOtherFiles  bool
	ArtistSeparator string

	// Tags
	WriteTags      bool
	UseStyle       bool
	GenreSeparator string
	Encoder        string
	KeepTags       []meta.Field
	Overrides      meta.Tags // applied to every release, before the id file tags
}

// Tagger wires the catalog, the state store and the event log into runs
type Tagger struct {
	cfg      Config
	log      *util.Logger
	releases discogs.ReleaseSource
	images   execute.ImageFetcher
	store    *store.Store
	events   *report.EventLogger
}

// New creates a Tagger. images, db and events may be nil.
func New(cfg Config, releases discogs.ReleaseSource, images execute.ImageFetcher, db *store.Store, events *report.EventLogger) *Tagger {
	log := cfg.Logger
	if log == nil {
		log = util.Default()
	}
	return &Tagger{
		cfg:      cfg,
		log:      log,
		releases: releases,
		images:   images,
		store:    db,
		events:   events,
	}
}

// Result describes a finished run
type Result struct {
	RunID     string // empty without a state store
	ReleaseID int
	Album     *album.Album
	Plan      *plan.Plan
	Exec      *execute.Result
	Duration  time.Duration
}

// Run tags the audio files in src as releaseID and writes them below dest.
// A zero releaseID is read from the release file in src. An empty dest
// places the release next to src. Mapping and planning errors abort the run
// before any file is written.
func (t *Tagger) Run(ctx context.Context, src, dest string, releaseID int) (res *Result, err error) {
	start := time.Now()

	rf, err := LoadReleaseFile(src, t.cfg.ReleaseFile)
	if err != nil {
		return nil, err
	}
	if releaseID == 0 {
		releaseID = rf.ID
	}
	if releaseID <= 0 {
		return nil, fmt.Errorf("%w for %s", util.ErrMissingReleaseID, src)
	}

	overrides := make(meta.Tags)
	overrides.Merge(t.cfg.Overrides)
	fileTags, err := meta.ParseOverrides(rf.Tags)
	if err != nil {
		return nil, fmt.Errorf("release file tags: %w", err)
	}
	overrides.Merge(fileTags)

	if dest == "" {
		dest = filepath.Dir(filepath.Clean(src))
	}

	res = &Result{ReleaseID: releaseID}

	var run *store.Run
	if t.store != nil {
		run, err = t.store.CreateRun(releaseID, src, t.cfg.DryRun)
		if err != nil {
			return nil, err
		}
		res.RunID = run.ID
		t.events.SetRunID(run.ID)

		defer func() {
			destDir, tracks := "", 0
			if res.Plan != nil {
				destDir = res.Plan.DestDir
			}
			if res.Exec != nil {
				tracks = res.Exec.Succeeded
			}
			if cerr := t.store.CompleteRun(run, destDir, tracks, err); cerr != nil {
				t.log.Warnf("Failed to complete run %s: %v", run.ID, cerr)
			}
		}()
	}

	t.log.Infof("Fetching release %d", releaseID)
	fetchStart := time.Now()
	rel, err := t.releases.GetRelease(ctx, releaseID)
	t.events.LogFetch(releaseID, time.Since(fetchStart), err)
	if err != nil {
		return res, fmt.Errorf("failed to fetch release %d: %w", releaseID, err)
	}

	a, err := album.Map(rel)
	if err != nil {
		t.events.LogMap(releaseID, 0, 0, err)
		return res, err
	}
	t.events.LogMap(releaseID, len(a.Tracks), a.DiscTotal, nil)
	res.Album = a

	sep := t.cfg.ArtistSeparator
	if sep == "" {
		sep = album.DefaultArtistSeparator
	}
	t.log.Infof("Tagging album '%s - %s'", album.CleanName(a.Artist(sep)), a.Title)

	source, err := scan.ListAudioFiles(ctx, src)
	if err != nil {
		return res, err
	}
	idFile := t.cfg.ReleaseFile
	if idFile == "" {
		idFile = DefaultReleaseFile
	}
	source.Other = slices.DeleteFunc(source.Other, func(path string) bool {
		return filepath.Base(path) == idFile
	})

	p, err := plan.Build(a, source, plan.Options{
		DestRoot:        dest,
		Format:          t.cfg.Format,
		SplitDiscs:      t.cfg.SplitDiscs,
		Lowercase:       t.cfg.Lowercase,
		UseFolderJPG:    t.cfg.UseFolderJPG,
		CopyOtherFiles:  t.cfg.CopyOtherFiles,
		ArtistSeparator: t.cfg.ArtistSeparator,
	})
	if err != nil {
		return res, err
	}
	for _, it := range p.Items {
		t.events.LogPlan(it.Src, it.Dest, it.Track.Disc, it.Track.Number)
	}
	res.Plan = p

	executor := execute.New(&execute.Config{
		Store:        t.store,
		Images:       t.images,
		RunID:        res.RunID,
		Concurrency:  t.cfg.Concurrency,
		DryRun:       t.cfg.DryRun,
		WriteTags:    t.cfg.WriteTags,
		EmbedArtwork: t.cfg.EmbedArtwork,
		DeleteSource: !t.cfg.KeepOriginal,
		KeepTags:     t.cfg.KeepTags,
		TagOptions: meta.BuildOptions{
			ArtistSeparator: t.cfg.ArtistSeparator,
			GenreSeparator:  t.cfg.GenreSeparator,
			UseStyle:        t.cfg.UseStyle,
			Encoder:         t.cfg.Encoder,
			Overrides:       overrides,
		},
		RetryConfig: util.DefaultRetryConfig(),
		Logger:      t.events,
	})

	res.Exec, err = executor.Execute(ctx, p, a)
	res.Duration = time.Since(start)
	if err != nil {
		return res, err
	}
	if res.Exec.Failed > 0 {
		return res, fmt.Errorf("%d of %d tracks failed: %w", res.Exec.Failed, res.Exec.Processed, errors.Join(res.Exec.Errors...))
	}

	t.log.Successf("Tagged %d tracks into %s", res.Exec.Succeeded, p.DestDir)
	return res, nil
}

package main

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/franz/discogs-tagger/internal/discogs"
	"github.com/franz/discogs-tagger/internal/meta"
	"github.com/franz/discogs-tagger/internal/plan"
	"github.com/franz/discogs-tagger/internal/report"
	"github.com/franz/discogs-tagger/internal/store"
	"github.com/franz/discogs-tagger/internal/tagger"
	"github.com/franz/discogs-tagger/internal/util"
)

func setDefaults() {
	viper.SetDefault("artifacts", "artifacts")

	viper.SetDefault("database.network_share", false)
	viper.SetDefault("database.busy_timeout", store.DefaultOptions().BusyTimeout)

	viper.SetDefault("discogs.rate_limit", discogs.DefaultRateLimit)
	viper.SetDefault("discogs.timeout", 30*time.Second)
	viper.SetDefault("discogs.cache_max_age", 30*24*time.Hour)

	viper.SetDefault("details.keep_original", true)
	viper.SetDefault("details.embed_coverart", false)
	viper.SetDefault("details.use_lower_filenames", false)
	viper.SetDefault("details.use_folder_jpg", true)
	viper.SetDefault("details.copy_other_files", false)
	viper.SetDefault("details.use_style", false)
	viper.SetDefault("details.split_discs_folder", true)
	viper.SetDefault("details.split_artists", " & ")
	viper.SetDefault("details.split_genres_and_styles", ", ")
	viper.SetDefault("details.write_tags", true)
	viper.SetDefault("details.concurrency", 4)

	def := plan.DefaultFormat()
	viper.SetDefault("file_format.dir", def.Dir)
	viper.SetDefault("file_format.song", def.Song)
	viper.SetDefault("file_format.nfo", def.NFO)
	viper.SetDefault("file_format.m3u", def.M3U)
	viper.SetDefault("file_format.images", def.Images)
	viper.SetDefault("file_format.disc_folder", def.DiscFolder)
	viper.SetDefault("file_format.disc_suffix", def.DiscSuffix)

	viper.SetDefault("batch.id_file", tagger.DefaultReleaseFile)
}

// GetConfigString retrieves a string config value with proper precedence:
// 1. Command-line flag (if set)
// 2. Environment variable (DTAG_*)
// 3. Config file
// 4. Default value
func GetConfigString(key string, defaultValue string) string {
	val := viper.GetString(key)
	if val == "" {
		return defaultValue
	}
	return val
}

// GetConfigInt retrieves an int config value with proper precedence
func GetConfigInt(key string, defaultValue int) int {
	val := viper.GetInt(key)
	if val == 0 {
		return defaultValue
	}
	return val
}

// taggerConfig builds the run configuration from viper
func taggerConfig() (tagger.Config, error) {
	keep, err := meta.ParseKeepList(viper.GetStringSlice("details.keep_tags"))
	if err != nil {
		return tagger.Config{}, fmt.Errorf("details.keep_tags: %w", err)
	}
	overrides, err := meta.ParseOverrides(viper.GetStringMapString("tags.overrides"))
	if err != nil {
		return tagger.Config{}, fmt.Errorf("tags.overrides: %w", err)
	}

	return tagger.Config{
		Logger:       util.Default(),
		ReleaseFile:  GetConfigString("batch.id_file", tagger.DefaultReleaseFile),
		KeepOriginal: viper.GetBool("details.keep_original"),
		EmbedArtwork: viper.GetBool("details.embed_coverart"),
		Concurrency:  GetConfigInt("details.concurrency", 4),

		Format: plan.Format{
			Dir:        viper.GetString("file_format.dir"),
			Song:       viper.GetString("file_format.song"),
			NFO:        viper.GetString("file_format.nfo"),
			M3U:        viper.GetString("file_format.m3u"),
			Images:     viper.GetString("file_format.images"),
			DiscFolder: viper.GetString("file_format.disc_folder"),
			DiscSuffix: viper.GetString("file_format.disc_suffix"),
		},
		SplitDiscs:      viper.GetBool("details.split_discs_folder"),
		Lowercase:       viper.GetBool("details.use_lower_filenames"),
		UseFolderJPG:    viper.GetBool("details.use_folder_jpg"),
		CopyOtherFiles:  viper.GetBool("details.copy_other_files"),
		ArtistSeparator: viper.GetString("details.split_artists"),

		WriteTags:      viper.GetBool("details.write_tags"),
		UseStyle:       viper.GetBool("details.use_style"),
		GenreSeparator: viper.GetString("details.split_genres_and_styles"),
		Encoder:        viper.GetString("tags.encoder"),
		KeepTags:       keep,
		Overrides:      overrides,
	}, nil
}

// openStore opens the state database at path with the database.* settings
func openStore(path string) (*store.Store, error) {
	opts := store.DefaultOptions()
	opts.NetworkShare = viper.GetBool("database.network_share")
	if d := viper.GetDuration("database.busy_timeout"); d > 0 {
		opts.BusyTimeout = d
	}

	util.DebugLog("Opening database: %s (network share: %v)", path, opts.NetworkShare)
	db, err := store.OpenWithOptions(path, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// newCatalog creates the Discogs client and the release cache in db
func newCatalog(db *store.Store) (*discogs.Client, *discogs.Cache, error) {
	cfg := discogs.DefaultConfig()
	cfg.Token = viper.GetString("discogs.token")
	cfg.UserAgent = GetConfigString("discogs.user_agent", cfg.UserAgent)
	cfg.RateLimit = viper.GetDuration("discogs.rate_limit")
	if d := viper.GetDuration("discogs.timeout"); d > 0 {
		cfg.Timeout = d
	}

	client := discogs.NewClient(cfg)
	cache := discogs.NewCache(db.DB(), client, viper.GetDuration("discogs.cache_max_age"))
	if err := cache.EnsureSchema(); err != nil {
		return nil, nil, err
	}
	return client, cache, nil
}

// eventLevel maps the verbosity flags to the event log level
func eventLevel() report.EventLevel {
	switch {
	case viper.GetBool("quiet"):
		return report.LevelWarning
	case viper.GetBool("verbose"):
		return report.LevelDebug
	}
	return report.LevelInfo
}

package scan

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/franz/discogs-tagger/internal/util"
)

// AudioExtensions are the default supported audio file extensions
var AudioExtensions = []string{
	".mp3",
	".flac",
	".m4a",
	".aac",
	".ogg",
	".opus",
	".wav",
	".aiff",
	".aif",
	".wma",
	".ape",
	".wv",  // WavPack
	".mpc", // Musepack
}

// skippedExtensions are never carried over as "other files"
var skippedExtensions = map[string]bool{
	".m3u":  true,
	".m3u8": true,
	".part": true,
}

// Scanner lists the files of one release directory
type Scanner struct {
	extensions map[string]bool
}

// Config holds scanner configuration
type Config struct {
	AdditionalExts []string
}

// New creates a new Scanner
func New(cfg *Config) *Scanner {
	if cfg == nil {
		cfg = &Config{}
	}

	// Build extension map (case-insensitive)
	extMap := make(map[string]bool)
	for _, ext := range AudioExtensions {
		extMap[strings.ToLower(ext)] = true
	}
	for _, ext := range cfg.AdditionalExts {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extMap[strings.ToLower(ext)] = true
	}

	return &Scanner{extensions: extMap}
}

// Source is the content of a release directory
type Source struct {
	Dir   string
	Audio []string // sorted by path, one per track
	Other []string // non-audio files worth copying alongside
}

// ListAudioFiles scans dir with the default extensions
func ListAudioFiles(ctx context.Context, dir string) (*Source, error) {
	return New(nil).Scan(ctx, dir)
}

// Scan walks dir and sorts its files into audio and other files.
// Hidden files and directories are skipped.
func (s *Scanner) Scan(ctx context.Context, dir string) (*Source, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source %s is not a directory", dir)
	}

	src := &Source{Dir: dir}

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		// Check for cancellation
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			return fmt.Errorf("access error: %s: %w", path, err)
		}

		if path != dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		// Skip directories
		if d.IsDir() {
			return nil
		}

		switch {
		case s.isAudioFile(path):
			src.Audio = append(src.Audio, path)
		case !skippedExtensions[strings.ToLower(filepath.Ext(path))]:
			src.Other = append(src.Other, path)
		}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	slices.Sort(src.Audio)
	slices.Sort(src.Other)

	util.DebugLog("Scanned %s: %d audio files, %d other files", dir, len(src.Audio), len(src.Other))
	return src, nil
}

// isAudioFile checks if a file has a supported audio extension
func (s *Scanner) isAudioFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return s.extensions[ext]
}

// GetSupportedExtensions returns the list of supported extensions
func (s *Scanner) GetSupportedExtensions() []string {
	exts := make([]string, 0, len(s.extensions))
	for ext := range s.extensions {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

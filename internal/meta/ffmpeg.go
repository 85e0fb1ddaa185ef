package meta

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/franz/discogs-tagger/internal/util"
)

// writeFFmpeg rewrites the container with only the given tags.
// The audio stream is copied, not re-encoded.
func writeFFmpeg(path string, tags Tags) error {
	metadataArgs := buildMetadataArgs(tags)

	// Keep the extension so ffmpeg picks the same muxer
	ext := filepath.Ext(path)
	tempPath := strings.TrimSuffix(path, ext) + ".tagged" + ext

	// ffmpeg -i in.m4a -map 0 -map_metadata -1 -metadata title="Title" -c copy out.m4a
	args := []string{
		"-i", path,
		"-map", "0",
		"-map_metadata", "-1", // Drop existing tags
	}
	args = append(args, metadataArgs...)
	args = append(args,
		"-c", "copy", // Copy codec (don't re-encode)
		"-y",         // Overwrite output
		tempPath,
	)

	cmd := exec.Command("ffmpeg", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("ffmpeg failed: %w (output: %s)", err, string(output))
	}

	// Replace original file with tagged version
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename tagged file: %w", err)
	}

	util.DebugLog("ffmpeg rewrote tags of: %s", path)
	return nil
}

// buildMetadataArgs builds ffmpeg -metadata arguments in field order
func buildMetadataArgs(tags Tags) []string {
	var args []string

	addMeta := func(key, value string) {
		if value != "" {
			args = append(args, "-metadata", fmt.Sprintf("%s=%s", key, value))
		}
	}

	for _, field := range tags.Fields() {
		switch field {
		case FieldTrack:
			addMeta(keys[field].ffmpeg, numberPair(tags[field], tags[FieldTrackTotal]))
		case FieldDisc:
			addMeta(keys[field].ffmpeg, numberPair(tags[field], tags[FieldDiscTotal]))
		case FieldTrackTotal, FieldDiscTotal:
			// written as part of track and disc
		default:
			addMeta(keys[field].ffmpeg, tags[field])
		}
	}

	return args
}

// CanWriteTags checks if we can write tags for this file format
func CanWriteTags(filePath string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))

	supportedFormats := map[string]bool{
		".mp3":  true,
		".m4a":  true,
		".flac": true,
		".ogg":  true,
		".opus": true,
		".wma":  true,
		".wav":  true, // WAV supports ID3v2 tags
		".aiff": true,
		".ape":  true,
		".wv":   true, // WavPack
		".tta":  true,
		".mpc":  true,
	}

	return supportedFormats[ext]
}

// ValidateFFmpeg checks if ffmpeg is available
func ValidateFFmpeg() error {
	cmd := exec.Command("ffmpeg", "-version")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg not found or not executable: %w", err)
	}
	return nil
}

package meta

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/franz/discogs-tagger/internal/util"
)

// Artwork is a cover image to embed
type Artwork struct {
	Data []byte
	MIME string
}

// NewArtwork wraps image data, detecting jpeg or png.
// Other formats return nil as they cannot be embedded.
func NewArtwork(data []byte) *Artwork {
	mime := DetectImageMIME(data)
	if mime == "" {
		return nil
	}
	return &Artwork{Data: data, MIME: mime}
}

// DetectImageMIME returns the mime type of jpeg and png data, or ""
func DetectImageMIME(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return "image/jpeg"
	case bytes.HasPrefix(data, []byte{0x89, 'P', 'N', 'G'}):
		return "image/png"
	}
	return ""
}

// WriteTags replaces all tags of path with tags.
// art may be nil; it is ignored for formats written through ffmpeg.
func WriteTags(path string, tags Tags, art *Artwork) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("file does not exist: %w", err)
	}

	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".flac":
		err = writeFLAC(path, tags, art)
	case ".mp3":
		err = writeMP3(path, tags, art)
	default:
		if !CanWriteTags(path) {
			return fmt.Errorf("writing tags to %s: %w", filepath.Base(path), util.ErrUnsupported)
		}
		err = writeFFmpeg(path, tags)
	}
	if err != nil {
		return err
	}

	util.DebugLog("Wrote %d tags to: %s", len(tags.Fields()), path)
	return nil
}

// numberPair renders n or n/total
func numberPair(n, total string) string {
	if total == "" {
		return n
	}
	return n + "/" + total
}

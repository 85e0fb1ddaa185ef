package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// PlaylistEntry is one track of an M3U playlist
type PlaylistEntry struct {
	Path     string // relative to the playlist
	Artist   string
	Title    string
	Duration string // catalog duration such as "4:05", may be empty
}

// CreateM3U renders an extended M3U playlist:
//
//	#EXTM3U
//	#EXTINF:245,Artist - Title
//	disc1/01-artist-title.flac
func CreateM3U(entries []PlaylistEntry) string {
	var sb strings.Builder

	sb.WriteString("#EXTM3U\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "#EXTINF:%d,%s - %s\n", DurationSeconds(e.Duration), e.Artist, e.Title)
		sb.WriteString(filepath.ToSlash(e.Path) + "\n")
	}

	return sb.String()
}

// WriteM3U writes the playlist for entries to path
func WriteM3U(path string, entries []PlaylistEntry) error {
	if err := os.WriteFile(path, []byte(CreateM3U(entries)), 0644); err != nil {
		return fmt.Errorf("failed to write playlist: %w", err)
	}
	return nil
}

// DurationSeconds parses "m:ss" or "h:mm:ss" into seconds.
// Unknown or malformed durations return -1, the M3U convention for unknown length.
func DurationSeconds(d string) int {
	d = strings.TrimSpace(d)
	if d == "" {
		return -1
	}

	total := 0
	for _, part := range strings.Split(d, ":") {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return -1
		}
		total = total*60 + n
	}
	return total
}

package meta

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/franz/discogs-tagger/internal/util"
)

// minimalFLAC is a stream marker followed by an empty STREAMINFO block
func minimalFLAC() []byte {
	b := []byte("fLaC")
	b = append(b, 0x80, 0x00, 0x00, 0x22) // last block, STREAMINFO, 34 bytes
	return append(b, make([]byte, 34)...)
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

var roundTripTags = Tags{
	FieldTitle:       "Blue Room",
	FieldArtist:      "The Orb",
	FieldAlbum:       "U.F.Orb",
	FieldAlbumArtist: "The Orb",
	FieldGenre:       "Electronic",
	FieldYear:        "1992",
	FieldTrack:       "3",
	FieldTrackTotal:  "7",
	FieldDiscogsID:   "40522",
}

func checkRoundTrip(t *testing.T, path string) {
	t.Helper()
	keep := []Field{FieldTitle, FieldArtist, FieldAlbum, FieldAlbumArtist, FieldGenre, FieldYear}
	got, err := ReadKeepTags(path, keep)
	if err != nil {
		t.Fatalf("ReadKeepTags failed: %v", err)
	}
	for _, f := range keep {
		if got[f] != roundTripTags[f] {
			t.Errorf("%s = %q, want %q", f, got[f], roundTripTags[f])
		}
	}
}

func TestWriteTagsMP3(t *testing.T) {
	path := writeFile(t, "track.mp3", bytes.Repeat([]byte{0}, 256))

	if err := WriteTags(path, roundTripTags, nil); err != nil {
		t.Fatalf("WriteTags failed: %v", err)
	}
	checkRoundTrip(t, path)

	// A second write replaces rather than appends
	if err := WriteTags(path, Tags{FieldTitle: "Other"}, nil); err != nil {
		t.Fatalf("second WriteTags failed: %v", err)
	}
	got, err := ReadKeepTags(path, []Field{FieldTitle, FieldArtist})
	if err != nil {
		t.Fatal(err)
	}
	if got[FieldTitle] != "Other" || got[FieldArtist] != "" {
		t.Errorf("old tags survived a rewrite: %v", got)
	}
}

func TestWriteTagsFLAC(t *testing.T) {
	path := writeFile(t, "track.flac", minimalFLAC())

	if err := WriteTags(path, roundTripTags, nil); err != nil {
		t.Fatalf("WriteTags failed: %v", err)
	}
	checkRoundTrip(t, path)
}

func TestWriteTagsUnsupported(t *testing.T) {
	path := writeFile(t, "notes.txt", []byte("hello"))

	err := WriteTags(path, roundTripTags, nil)
	if !errors.Is(err, util.ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestWriteTagsMissingFile(t *testing.T) {
	if err := WriteTags(filepath.Join(t.TempDir(), "gone.mp3"), roundTripTags, nil); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestReadKeepTagsNoTags(t *testing.T) {
	path := writeFile(t, "plain.mp3", bytes.Repeat([]byte{0}, 256))

	got, err := ReadKeepTags(path, []Field{FieldTitle})
	if err != nil {
		t.Fatalf("untagged files should not fail: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no tags, got %v", got)
	}
}

func TestDetectImageMIME(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00}, "image/jpeg"},
		{"png", []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A}, "image/png"},
		{"gif", []byte("GIF89a"), ""},
		{"short", []byte{0xFF}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectImageMIME(tt.data); got != tt.want {
				t.Errorf("DetectImageMIME = %q, want %q", got, tt.want)
			}
		})
	}

	if NewArtwork([]byte("GIF89a")) != nil {
		t.Error("gif artwork should not be embeddable")
	}
}

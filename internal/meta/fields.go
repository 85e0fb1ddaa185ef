package meta

import (
	"fmt"
	"strings"

	"github.com/franz/discogs-tagger/internal/util"
)

// Field names one tag in the closed set the tagger knows how to write
type Field string

const (
	FieldTitle           Field = "title"
	FieldArtist          Field = "artist"
	FieldArtistSort      Field = "artist_sort"
	FieldAlbum           Field = "album"
	FieldAlbumArtist     Field = "albumartist"
	FieldAlbumArtistSort Field = "albumartist_sort"
	FieldComposer        Field = "composer"
	FieldLabel           Field = "label"
	FieldYear            Field = "year"
	FieldCountry         Field = "country"
	FieldURL             Field = "url"
	FieldGrouping        Field = "grouping"
	FieldCatalogNumber   Field = "catalognumber"
	FieldGenre           Field = "genre"
	FieldDiscogsID       Field = "discogs_id"
	FieldDisc            Field = "disc"
	FieldDiscTotal       Field = "disctotal"
	FieldTrack           Field = "track"
	FieldTrackTotal      Field = "tracktotal"
	FieldCompilation     Field = "comp"
	FieldComments        Field = "comments"
	FieldEncoder         Field = "encoder"
	FieldDiscSubtitle    Field = "discsubtitle"
	FieldLyrics          Field = "lyrics"
)

// fieldKeys maps a field to its name in each tag format.
// An id3 key starting with "TXXX:" is written as a user defined text frame.
type fieldKeys struct {
	vorbis string
	id3    string
	ffmpeg string
}

// allFields lists every field in write order
var allFields = []Field{
	FieldTitle, FieldArtist, FieldArtistSort, FieldAlbum, FieldAlbumArtist,
	FieldAlbumArtistSort, FieldComposer, FieldLabel, FieldYear, FieldCountry,
	FieldURL, FieldGrouping, FieldCatalogNumber, FieldGenre, FieldDiscogsID,
	FieldDisc, FieldDiscTotal, FieldTrack, FieldTrackTotal, FieldCompilation,
	FieldComments, FieldEncoder, FieldDiscSubtitle, FieldLyrics,
}

var keys = map[Field]fieldKeys{
	FieldTitle:           {"TITLE", "TIT2", "title"},
	FieldArtist:          {"ARTIST", "TPE1", "artist"},
	FieldArtistSort:      {"ARTISTSORT", "TSOP", "artist-sort"},
	FieldAlbum:           {"ALBUM", "TALB", "album"},
	FieldAlbumArtist:     {"ALBUMARTIST", "TPE2", "album_artist"},
	FieldAlbumArtistSort: {"ALBUMARTISTSORT", "TSO2", "album_artist-sort"},
	FieldComposer:        {"COMPOSER", "TCOM", "composer"},
	FieldLabel:           {"LABEL", "TPUB", "publisher"},
	FieldYear:            {"DATE", "TDRC", "date"},
	FieldCountry:         {"RELEASECOUNTRY", "TXXX:MusicBrainz Album Release Country", "releasecountry"},
	FieldURL:             {"WWW", "TXXX:URL", "url"},
	FieldGrouping:        {"GROUPING", "TIT1", "grouping"},
	FieldCatalogNumber:   {"CATALOGNUMBER", "TXXX:CATALOGNUMBER", "catalognumber"},
	FieldGenre:           {"GENRE", "TCON", "genre"},
	FieldDiscogsID:       {"DISCOGS_RELEASE_ID", "TXXX:DISCOGS_RELEASE_ID", "discogs_release_id"},
	FieldDisc:            {"DISCNUMBER", "TPOS", "disc"},
	FieldDiscTotal:       {"DISCTOTAL", "", "disctotal"},
	FieldTrack:           {"TRACKNUMBER", "TRCK", "track"},
	FieldTrackTotal:      {"TRACKTOTAL", "", "tracktotal"},
	FieldCompilation:     {"COMPILATION", "TCMP", "compilation"},
	FieldComments:        {"COMMENT", "COMM", "comment"},
	FieldEncoder:         {"ENCODER", "TSSE", "encoder"},
	FieldDiscSubtitle:    {"DISCSUBTITLE", "TSST", "discsubtitle"},
	FieldLyrics:          {"LYRICS", "USLT", "lyrics"},
}

// readable fields can be carried over from a source file's existing tags
var readable = map[Field]bool{
	FieldTitle:       true,
	FieldArtist:      true,
	FieldAlbum:       true,
	FieldAlbumArtist: true,
	FieldComposer:    true,
	FieldGenre:       true,
	FieldYear:        true,
	FieldComments:    true,
	FieldLyrics:      true,
}

// ParseField resolves a field name, ignoring case and surrounding space
func ParseField(name string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := keys[f]; !ok {
		return "", fmt.Errorf("unknown tag field %q: %w", name, util.ErrInvalidConfig)
	}
	return f, nil
}

// Tags holds field values. Empty values are never written.
type Tags map[Field]string

// Set stores v under f, skipping empty values
func (t Tags) Set(f Field, v string) {
	if v == "" {
		return
	}
	t[f] = v
}

// Merge copies every value of other into t, replacing existing values
func (t Tags) Merge(other Tags) {
	for f, v := range other {
		t.Set(f, v)
	}
}

// Fields returns the set fields in write order
func (t Tags) Fields() []Field {
	var out []Field
	for _, f := range allFields {
		if t[f] != "" {
			out = append(out, f)
		}
	}
	return out
}

// ParseOverrides converts field name -> value pairs into Tags
func ParseOverrides(raw map[string]string) (Tags, error) {
	tags := make(Tags, len(raw))
	for name, value := range raw {
		f, err := ParseField(name)
		if err != nil {
			return nil, fmt.Errorf("tag override: %w", err)
		}
		tags.Set(f, value)
	}
	return tags, nil
}

// ParseKeepList resolves the fields whose existing values survive retagging
func ParseKeepList(names []string) ([]Field, error) {
	var out []Field
	seen := make(map[Field]bool)
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		f, err := ParseField(name)
		if err != nil {
			return nil, fmt.Errorf("keep tags: %w", err)
		}
		if !readable[f] {
			return nil, fmt.Errorf("keep tags: field %q cannot be read from audio files: %w", f, util.ErrInvalidConfig)
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}

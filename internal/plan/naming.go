package plan

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/franz/discogs-tagger/internal/album"
)

// Format holds the name templates for everything a run writes
type Format struct {
	Dir        string // release folder
	Song       string // audio file name; the source extension always ends it, wherever %TYPE% sits
	NFO        string
	M3U        string
	Images     string // base name of downloaded images
	DiscFolder string // disc sub folder when discs are split
	DiscSuffix string // appended to the album tag when discs are split
}

// DefaultFormat returns the classic scene-style naming
func DefaultFormat() Format {
	return Format{
		Dir:        "%ALBARTIST%-%ALBTITLE%-(%CATNO%)-%YEAR%",
		Song:       "%TRACKNUMBER%-%ARTIST%-%TITLE%%TYPE%",
		NFO:        "00-%ALBARTIST%-%ALBTITLE%",
		M3U:        "00-%ALBARTIST%-%ALBTITLE%",
		Images:     "00-image",
		DiscFolder: "disc%DISCNUMBER%",
		DiscSuffix: " (disc %DISCNUMBER%)",
	}
}

// withDefaults fills empty templates from DefaultFormat
func (f Format) withDefaults() Format {
	d := DefaultFormat()
	for _, p := range []struct{ v, def *string }{
		{&f.Dir, &d.Dir}, {&f.Song, &d.Song}, {&f.NFO, &d.NFO}, {&f.M3U, &d.M3U},
		{&f.Images, &d.Images}, {&f.DiscFolder, &d.DiscFolder}, {&f.DiscSuffix, &d.DiscSuffix},
	} {
		if *p.v == "" {
			*p.v = *p.def
		}
	}
	return f
}

// Values are the substitutions available to a template
type Values map[string]string

// AlbumValues returns the release wide template values
func AlbumValues(a *album.Album, artistSep string) Values {
	if artistSep == "" {
		artistSep = album.DefaultArtistSeparator
	}
	return Values{
		"%ALBARTIST%": album.CleanName(a.Artist(artistSep)),
		"%ALBTITLE%":  a.Title,
		"%YEAR%":      a.Year,
		"%CATNO%":     a.CatalogNumber(),
		"%LABEL%":     a.Label(),
		"%GENRE%":     first(a.Genres),
		"%STYLE%":     first(a.Styles),
		"%COUNTRY%":   a.Country,
	}
}

// TrackValues extends the album values with the fields of t.
// ext is the source file extension including the dot.
func TrackValues(base Values, t album.Track, artistSep, ext string) Values {
	if artistSep == "" {
		artistSep = album.DefaultArtistSeparator
	}
	v := make(Values, len(base)+6)
	for k, s := range base {
		v[k] = s
	}
	v["%ARTIST%"] = t.Artist(artistSep)
	v["%TITLE%"] = t.Title
	v["%TRACKNUMBER%"] = fmt.Sprintf("%02d", t.Number)
	v["%DISCNUMBER%"] = fmt.Sprintf("%d", t.Disc)
	v["%DISCTITLE%"] = t.DiscSubtitle
	v["%TYPE%"] = strings.ToLower(ext)
	return v
}

// Expand substitutes every known token in format with its raw value
func Expand(format string, v Values) string {
	return replacer(v, func(s string) string { return s }).Replace(format)
}

// RenderName expands format into a single file or folder name.
// Values are sanitized before substitution so a value can never introduce a path separator.
func RenderName(format string, v Values) string {
	return SanitizePathComponent(replacer(v, sanitizeValue).Replace(format))
}

func replacer(v Values, clean func(string) string) *strings.Replacer {
	pairs := make([]string, 0, len(v)*2)
	for token, value := range v {
		if token == "%TYPE%" {
			pairs = append(pairs, token, value)
			continue
		}
		pairs = append(pairs, token, clean(value))
	}
	return strings.NewReplacer(pairs...)
}

func first(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

// sanitizeValue replaces characters that are illegal inside one path component
func sanitizeValue(s string) string {
	s = norm.NFC.String(s)

	replacer := strings.NewReplacer(
		"/", "-",
		"\\", "-",
		":", "-",
		"*", "",
		"?", "",
		"\"", "'",
		"<", "",
		">", "",
		"|", "-",
	)
	s = replacer.Replace(s)

	// Tabs and newlines become spaces, other control characters are dropped
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
}

// SanitizePathComponent cleans one rendered file or folder name
func SanitizePathComponent(s string) string {
	s = sanitizeValue(s)

	// Collapse whitespace
	s = strings.Join(strings.Fields(s), " ")

	// Trim spaces and dots (Windows issues)
	s = strings.Trim(s, " .")

	// Empty fields leave dangling separators like "Artist--Title" or "()"
	s = strings.ReplaceAll(s, "()", "")
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	s = strings.Trim(s, " .-")

	if s == "" {
		return "Unknown"
	}

	// Limit length to 200 bytes (filesystem limits)
	if len(s) > 200 {
		s = s[:200]
		for !utf8.ValidString(s) {
			s = s[:len(s)-1]
		}
		s = strings.TrimRight(s, " _.-")
	}

	return s
}

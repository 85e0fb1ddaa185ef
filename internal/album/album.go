package album

import (
	"iter"
	"regexp"
	"strings"

	"github.com/franz/discogs-tagger/internal/discogs"
)

const (
	// UnknownYear is used when the catalog year is absent or unparsable
	UnknownYear = "1900"

	// VariousArtists is the catalog's placeholder credit for compilations
	VariousArtists = "Various"

	// DefaultSeparator joins multi-value fields for display
	DefaultSeparator = ", "

	// DefaultArtistSeparator joins artist credits for display
	DefaultArtistSeparator = " & "
)

var goodYear = regexp.MustCompile(`^\d{4}`)

// Album holds the normalized album-level facts of one release
// together with its numbered track list.
type Album struct {
	ID             int
	Title          string
	Artists        []string
	SortArtist     string
	Labels         []string
	CatalogNumbers []string
	Year           string
	Country        string
	Genres         []string
	Styles         []string
	Notes          string // empty when the catalog has none
	DiscTotal      int
	IsCompilation  bool
	MasterID       int // zero when the release has no master
	Images         []string

	Tracks []Track

	// disc number -> highest track number on that disc
	discTracks map[int]int
	release    *discogs.Release
}

// Map builds the album model and its track list from a release snapshot.
// Any failure aborts the whole mapping; no partially built album is returned.
func Map(rel *discogs.Release) (*Album, error) {
	a, err := newAlbum(rel)
	if err != nil {
		return nil, err
	}

	tracks, discTracks, err := BuildTracks(rel.Tracklist, a)
	if err != nil {
		return nil, err
	}
	a.Tracks = tracks
	a.discTracks = discTracks

	return a, nil
}

func newAlbum(rel *discogs.Release) (*Album, error) {
	if rel == nil {
		return nil, &MappingError{Field: "release", Reason: "missing"}
	}

	discTotal, err := discTotal(rel.Formats)
	if err != nil {
		return nil, err
	}

	a := &Album{
		ID:            rel.ID,
		Title:         rel.Title,
		Year:          parseYear(rel.Year.String()),
		Country:       rel.Country,
		Genres:        rel.Genres,
		Styles:        rel.Styles,
		Notes:         rel.Notes,
		DiscTotal:     discTotal,
		IsCompilation: isCompilation(rel),
		MasterID:      rel.MasterID,
		release:       rel,
	}

	for _, credit := range rel.Artists {
		a.Artists = append(a.Artists, CleanName(credit.Name))
	}
	if len(rel.Artists) > 0 {
		a.SortArtist = CleanName(rel.Artists[0].Name)
	}

	for label, catno := range a.LabelsAndCatalogNumbers() {
		a.Labels = append(a.Labels, label)
		a.CatalogNumbers = append(a.CatalogNumbers, catno)
	}

	for _, img := range rel.Images {
		if img.URI != "" {
			a.Images = append(a.Images, img.URI)
		}
	}

	return a, nil
}

// discTotal reads the quantity of the first physical format
func discTotal(formats []discogs.Format) (int, error) {
	if len(formats) == 0 {
		return 0, &MappingError{Field: "formats", Reason: "release has no format entries"}
	}
	qty := strings.TrimSpace(formats[0].Qty.String())
	if qty == "" {
		return 0, &MappingError{Field: "formats[0].qty", Reason: "missing"}
	}
	n, err := discogs.FlexString(qty).Int()
	if err != nil {
		return 0, &MappingError{Field: "formats[0].qty", Reason: "not an integer: " + qty}
	}
	if n < 1 {
		return 0, &MappingError{Field: "formats[0].qty", Reason: "must be at least 1"}
	}
	return n, nil
}

// parseYear extracts a leading 4-digit year, falling back to UnknownYear
func parseYear(raw string) string {
	if y := goodYear.FindString(strings.TrimSpace(raw)); y != "" {
		return y
	}
	return UnknownYear
}

func isCompilation(rel *discogs.Release) bool {
	if len(rel.Artists) > 0 && rel.Artists[0].Name == VariousArtists {
		return true
	}
	for _, f := range rel.Formats {
		for _, d := range f.Descriptions {
			if d == "compilation" {
				return true
			}
		}
	}
	return false
}

// LabelsAndCatalogNumbers yields (label, catalog number) pairs in credit order.
// Label names lose their duplicate suffix but are not otherwise rewritten.
func (a *Album) LabelsAndCatalogNumbers() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		if a.release == nil {
			for i := range a.Labels {
				if !yield(a.Labels[i], a.CatalogNumbers[i]) {
					return
				}
			}
			return
		}
		for _, l := range a.release.Labels {
			if !yield(StripDuplicateSuffix(l.Name), l.CatNo) {
				return
			}
		}
	}
}

// TrackTotalOnDisc returns the highest track number on disc, or 0 for an unknown disc
func (a *Album) TrackTotalOnDisc(disc int) int {
	return a.discTracks[disc]
}

// URL returns the catalog page of the release
func (a *Album) URL() string {
	return discogs.ReleaseURL(a.ID)
}

// MasterURL returns the catalog page of the master release, or "" when there is none
func (a *Album) MasterURL() string {
	if a.MasterID == 0 {
		return ""
	}
	return discogs.MasterURL(a.MasterID)
}

// Artist joins the album artists with sep
func (a *Album) Artist(sep string) string {
	return strings.Join(a.Artists, sep)
}

// Label returns the first credited label
func (a *Album) Label() string {
	if len(a.Labels) == 0 {
		return ""
	}
	return a.Labels[0]
}

// CatalogNumber returns the catalog number of the first credited label
func (a *Album) CatalogNumber() string {
	if len(a.CatalogNumbers) == 0 {
		return ""
	}
	return a.CatalogNumbers[0]
}

// Genre joins the genres with sep
func (a *Album) Genre(sep string) string {
	return strings.Join(a.Genres, sep)
}

// Style joins the styles with sep
func (a *Album) Style(sep string) string {
	return strings.Join(a.Styles, sep)
}

// Disc returns the tracks on disc, in order
func (a *Album) Disc(disc int) []Track {
	var tracks []Track
	for _, t := range a.Tracks {
		if t.Disc == disc {
			tracks = append(tracks, t)
		}
	}
	return tracks
}

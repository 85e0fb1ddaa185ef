package album

import (
	"errors"
	"reflect"
	"testing"

	"github.com/franz/discogs-tagger/internal/discogs"
)

func credits(names ...string) []discogs.ArtistCredit {
	out := make([]discogs.ArtistCredit, len(names))
	for i, n := range names {
		out[i] = discogs.ArtistCredit{Name: n}
	}
	return out
}

func track(position, title string, artists ...string) discogs.TrackEntry {
	return discogs.TrackEntry{
		Type:     discogs.EntryTrack,
		Position: position,
		Title:    title,
		Duration: "3:00",
		Artists:  credits(artists...),
	}
}

func baseRelease() *discogs.Release {
	return &discogs.Release{
		ID:      40522,
		Title:   "House For All",
		Artists: credits("Blunted Dummies (2)"),
		Labels: []discogs.Label{
			{Name: "Definitive Recordings (3)", CatNo: "12DEF006"},
			{Name: "Sony, The", CatNo: "SONY1"},
		},
		Genres:  []string{"Electronic"},
		Styles:  []string{"House", "Deep House"},
		Year:    "1993",
		Country: "UK",
		Formats: []discogs.Format{{Name: "Vinyl", Qty: "1"}},
		Images:  []discogs.Image{{URI: "https://img/1.jpg"}, {URI: "https://img/2.jpg"}},
		Tracklist: []discogs.TrackEntry{
			track("1", "Original Mix"),
			track("2", "Robots Mix"),
		},
	}
}

func TestMapAlbumFields(t *testing.T) {
	a, err := Map(baseRelease())
	if err != nil {
		t.Fatalf("Map failed: %v", err)
	}

	if a.ID != 40522 || a.Title != "House For All" {
		t.Errorf("unexpected id/title: %d %q", a.ID, a.Title)
	}
	if !reflect.DeepEqual(a.Artists, []string{"Blunted Dummies"}) {
		t.Errorf("Artists = %v", a.Artists)
	}
	if a.SortArtist != "Blunted Dummies" {
		t.Errorf("SortArtist = %q", a.SortArtist)
	}
	// Labels only lose the duplicate suffix, no "The" rewrite
	if !reflect.DeepEqual(a.Labels, []string{"Definitive Recordings", "Sony, The"}) {
		t.Errorf("Labels = %v", a.Labels)
	}
	if !reflect.DeepEqual(a.CatalogNumbers, []string{"12DEF006", "SONY1"}) {
		t.Errorf("CatalogNumbers = %v", a.CatalogNumbers)
	}
	if len(a.Labels) != len(a.CatalogNumbers) {
		t.Error("labels and catalog numbers must be parallel")
	}
	if a.Year != "1993" || a.Country != "UK" {
		t.Errorf("Year/Country = %q/%q", a.Year, a.Country)
	}
	if a.DiscTotal != 1 {
		t.Errorf("DiscTotal = %d", a.DiscTotal)
	}
	if a.IsCompilation {
		t.Error("not a compilation")
	}
	if a.MasterID != 0 || a.MasterURL() != "" {
		t.Error("master should be absent")
	}
	if a.Notes != "" {
		t.Errorf("Notes = %q", a.Notes)
	}
	if len(a.Images) != 2 {
		t.Errorf("Images = %v", a.Images)
	}
	if a.URL() != "https://www.discogs.com/release/40522" {
		t.Errorf("URL = %q", a.URL())
	}
	if a.Label() != "Definitive Recordings" || a.CatalogNumber() != "12DEF006" {
		t.Errorf("Label/CatalogNumber = %q/%q", a.Label(), a.CatalogNumber())
	}
}

func TestLabelsAndCatalogNumbersIsLazy(t *testing.T) {
	a, err := Map(baseRelease())
	if err != nil {
		t.Fatal(err)
	}

	var seen []string
	for label, catno := range a.LabelsAndCatalogNumbers() {
		seen = append(seen, label+"|"+catno)
		break
	}
	if !reflect.DeepEqual(seen, []string{"Definitive Recordings|12DEF006"}) {
		t.Errorf("unexpected pairs %v", seen)
	}
}

func TestYearFallback(t *testing.T) {
	tests := []struct {
		year     discogs.FlexString
		expected string
	}{
		{"1997", "1997"},
		{"2001-05-03", "2001"},
		{"", UnknownYear},
		{"0", UnknownYear},
		{"unknown", UnknownYear},
		{"97", UnknownYear},
	}

	for _, tt := range tests {
		rel := baseRelease()
		rel.Year = tt.year
		a, err := Map(rel)
		if err != nil {
			t.Fatalf("Map failed: %v", err)
		}
		if a.Year != tt.expected {
			t.Errorf("year %q -> %q, expected %q", tt.year, a.Year, tt.expected)
		}
	}
}

func TestYearAndCountryAreIndependent(t *testing.T) {
	rel := baseRelease()
	rel.Year = "1985"
	rel.Country = "Germany"
	a, err := Map(rel)
	if err != nil {
		t.Fatal(err)
	}
	if a.Year != "1985" || a.Country != "Germany" {
		t.Errorf("Year/Country = %q/%q", a.Year, a.Country)
	}
}

func TestIsCompilation(t *testing.T) {
	tests := []struct {
		name     string
		artist   string
		descs    []string
		expected bool
	}{
		{"various placeholder", "Various", nil, true},
		{"various artists is not the placeholder", "Various Artists", nil, false},
		{"compilation descriptor", "Goldie", []string{"Album", "compilation"}, true},
		{"descriptor must match exactly", "Goldie", []string{"Compilation Album"}, false},
		{"plain album", "Goldie", []string{"Album"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rel := baseRelease()
			rel.Artists = credits(tt.artist)
			rel.Formats = []discogs.Format{{Name: "CD", Qty: "1", Descriptions: tt.descs}}
			a, err := Map(rel)
			if err != nil {
				t.Fatal(err)
			}
			if a.IsCompilation != tt.expected {
				t.Errorf("IsCompilation = %v, expected %v", a.IsCompilation, tt.expected)
			}
		})
	}
}

func TestDiscTotalErrors(t *testing.T) {
	tests := []struct {
		name    string
		formats []discogs.Format
	}{
		{"no formats", []discogs.Format{}},
		{"missing qty", []discogs.Format{{Name: "CD"}}},
		{"non numeric qty", []discogs.Format{{Name: "CD", Qty: "two"}}},
		{"zero qty", []discogs.Format{{Name: "CD", Qty: "0"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rel := baseRelease()
			rel.Formats = tt.formats
			a, err := Map(rel)
			if a != nil {
				t.Error("no album expected on error")
			}
			var me *MappingError
			if !errors.As(err, &me) {
				t.Fatalf("expected *MappingError, got %v", err)
			}
			if !errors.Is(err, ErrMapping) {
				t.Error("MappingError should match ErrMapping")
			}
		})
	}
}

func TestMapNilRelease(t *testing.T) {
	if _, err := Map(nil); err == nil {
		t.Error("expected error for nil release")
	}
}

func TestMasterAndNotes(t *testing.T) {
	rel := baseRelease()
	rel.MasterID = 1234
	rel.Notes = "Limited pressing."
	a, err := Map(rel)
	if err != nil {
		t.Fatal(err)
	}
	if a.MasterURL() != "https://www.discogs.com/master/1234" {
		t.Errorf("MasterURL = %q", a.MasterURL())
	}
	if a.Notes != "Limited pressing." {
		t.Errorf("Notes = %q", a.Notes)
	}
}

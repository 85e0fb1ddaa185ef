package meta

import (
	"testing"

	"github.com/franz/discogs-tagger/internal/album"
	"github.com/franz/discogs-tagger/internal/discogs"
)

func testAlbum(t *testing.T, qty discogs.FlexString, tracklist ...discogs.TrackEntry) *album.Album {
	t.Helper()
	rel := &discogs.Release{
		ID:        1234,
		Title:     "Selected Works",
		Artists:   []discogs.ArtistCredit{{Name: "Orb, The"}},
		Labels:    []discogs.Label{{Name: "Warp (2)", CatNo: "WARP1"}},
		Genres:    []string{"Electronic"},
		Styles:    []string{"Ambient", "Dub"},
		Year:      "1991",
		Country:   "UK",
		Notes:     "Pressed on clear vinyl.",
		Formats:   []discogs.Format{{Name: "CD", Qty: qty}},
		Tracklist: tracklist,
	}
	a, err := album.Map(rel)
	if err != nil {
		t.Fatalf("Map failed: %v", err)
	}
	return a
}

func entry(pos, title string, artists ...string) discogs.TrackEntry {
	e := discogs.TrackEntry{Type: discogs.EntryTrack, Position: pos, Title: title, Duration: "4:00"}
	for _, n := range artists {
		e.Artists = append(e.Artists, discogs.ArtistCredit{Name: n})
	}
	return e
}

func TestBuildTagsSingleDisc(t *testing.T) {
	a := testAlbum(t, "1", entry("1", "Little Fluffy Clouds"), entry("2", "Perpetual Dawn", "Orb (2)"))

	tags := BuildTags(a, a.Tracks[1], BuildOptions{Encoder: "lame"})

	want := map[Field]string{
		FieldAlbum:           "Selected Works",
		FieldAlbumArtist:     "The Orb",
		FieldComposer:        "The Orb",
		FieldAlbumArtistSort: "The Orb",
		FieldLabel:           "Warp",
		FieldCatalogNumber:   "WARP1",
		FieldYear:            "1991",
		FieldCountry:         "UK",
		FieldURL:             "https://www.discogs.com/release/1234",
		FieldGrouping:        "Ambient, Dub",
		FieldGenre:           "Electronic",
		FieldDiscogsID:       "1234",
		FieldComments:        "Pressed on clear vinyl.",
		FieldEncoder:         "lame",
		FieldTitle:           "Perpetual Dawn",
		FieldArtist:          "Orb (2)",
		FieldArtistSort:      "Orb",
		FieldTrack:           "2",
		FieldTrackTotal:      "2",
	}
	for f, v := range want {
		if tags[f] != v {
			t.Errorf("%s = %q, want %q", f, tags[f], v)
		}
	}
	for _, f := range []Field{FieldDisc, FieldDiscTotal, FieldCompilation, FieldDiscSubtitle} {
		if _, ok := tags[f]; ok {
			t.Errorf("%s should not be set on a single disc release, got %q", f, tags[f])
		}
	}
}

func TestBuildTagsMultiDisc(t *testing.T) {
	a := testAlbum(t, "2",
		discogs.TrackEntry{Type: discogs.EntryTrack, Title: "Live"},
		entry("1-1", "A"),
		entry("2-1", "B"),
		entry("2-2", "C"),
	)

	first := BuildTags(a, a.Tracks[0], BuildOptions{AlbumSuffix: " (CD1)"})
	if first[FieldDisc] != "1" || first[FieldDiscTotal] != "2" {
		t.Errorf("disc = %q/%q", first[FieldDisc], first[FieldDiscTotal])
	}
	if first[FieldTrackTotal] != "1" {
		t.Errorf("tracktotal on disc 1 = %q", first[FieldTrackTotal])
	}
	if first[FieldDiscSubtitle] != "Live" {
		t.Errorf("discsubtitle = %q", first[FieldDiscSubtitle])
	}
	if first[FieldAlbum] != "Selected Works (CD1)" {
		t.Errorf("album = %q", first[FieldAlbum])
	}

	last := BuildTags(a, a.Tracks[2], BuildOptions{})
	if last[FieldTrack] != "2" || last[FieldTrackTotal] != "2" {
		t.Errorf("track = %q/%q", last[FieldTrack], last[FieldTrackTotal])
	}
}

func TestBuildTagsStyleAndOverrides(t *testing.T) {
	a := testAlbum(t, "1", entry("1", "A"))

	tags := BuildTags(a, a.Tracks[0], BuildOptions{
		UseStyle:       true,
		GenreSeparator: "; ",
		Overrides:      Tags{FieldYear: "1990", FieldLyrics: "none"},
	})

	if tags[FieldGenre] != "Ambient; Dub" {
		t.Errorf("genre = %q", tags[FieldGenre])
	}
	if tags[FieldYear] != "1990" {
		t.Errorf("override not applied, year = %q", tags[FieldYear])
	}
	if tags[FieldLyrics] != "none" {
		t.Errorf("lyrics = %q", tags[FieldLyrics])
	}
}

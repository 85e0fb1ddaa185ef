package album

import (
	"fmt"
	"strings"

	"github.com/franz/discogs-tagger/internal/discogs"
)

// Track is one numbered track of an album
type Track struct {
	Position     int // 1-based index over all tracks of the release
	Disc         int
	Number       int // track number on its disc
	Title        string
	Artists      []string
	SortArtist   string
	DiscSubtitle string // empty when the disc has no subtitle
	Duration     string
}

// Artist joins the track artists with sep
func (t Track) Artist(sep string) string {
	return strings.Join(t.Artists, sep)
}

// BuildTracks numbers the raw tracklist of a release in one pass.
// It returns the tracks in catalog order together with the highest track
// number found on each disc. Artist fallbacks and the disc count come from a.
//
// Only entries of type Track take part. A Track entry without position and
// duration names a disc; its title becomes the subtitle of every following
// track, across disc changes, until the next such entry.
func BuildTracks(entries []discogs.TrackEntry, a *Album) ([]Track, map[int]int, error) {
	tracks := make([]Track, 0, len(entries))
	discTracks := make(map[int]int)

	var subtitle string
	for _, e := range entries {
		if e.Type != discogs.EntryTrack {
			continue
		}
		if isSubtitleEntry(e) {
			subtitle = e.Title
			continue
		}

		pos, err := resolvePosition(e, a.DiscTotal)
		if err != nil {
			return nil, nil, err
		}

		t := Track{
			Position:     len(tracks) + 1,
			Disc:         pos.Disc,
			Number:       pos.Track,
			Title:        e.Title,
			DiscSubtitle: subtitle,
			Duration:     e.Duration,
		}

		if len(e.Artists) > 0 {
			for _, credit := range e.Artists {
				t.Artists = append(t.Artists, credit.Name)
			}
			t.SortArtist = CleanName(e.Artists[0].Name)
		} else {
			t.Artists = a.Artists
			t.SortArtist = a.SortArtist
		}

		if pos.Track > discTracks[pos.Disc] {
			discTracks[pos.Disc] = pos.Track
		}
		tracks = append(tracks, t)
	}

	return tracks, discTracks, nil
}

// isSubtitleEntry reports whether e labels a disc rather than naming a track
func isSubtitleEntry(e discogs.TrackEntry) bool {
	return e.Title != "" && strings.TrimSpace(e.Position) == "" && strings.TrimSpace(e.Duration) == ""
}

func resolvePosition(e discogs.TrackEntry, discTotal int) (Position, error) {
	var pos Position
	var err error
	if discTotal > 1 {
		pos, err = ParsePosition(e.Position)
	} else {
		pos, err = parseSingleDisc(e.Position)
	}
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.Title = e.Title
		}
		return Position{}, err
	}

	if pos.Disc < 1 || pos.Disc > discTotal {
		return Position{}, &ParseError{
			Position: e.Position,
			Title:    e.Title,
			Reason:   fmt.Sprintf("disc %d outside 1..%d", pos.Disc, discTotal),
		}
	}
	if pos.Track < 1 {
		return Position{}, &ParseError{
			Position: e.Position,
			Title:    e.Title,
			Reason:   fmt.Sprintf("track number %d is not positive", pos.Track),
		}
	}
	return pos, nil
}

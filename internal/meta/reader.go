package meta

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dhowden/tag"
)

// ReadKeepTags reads the keep fields from the existing tags of path.
// Fields the file does not carry are absent from the result.
func ReadKeepTags(path string, keep []Field) (Tags, error) {
	tags := make(Tags)
	if len(keep) == 0 {
		return tags, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err == tag.ErrNoTagsFound {
		return tags, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read tags from %s: %w", path, err)
	}

	for _, field := range keep {
		switch field {
		case FieldTitle:
			tags.Set(field, m.Title())
		case FieldArtist:
			tags.Set(field, m.Artist())
		case FieldAlbum:
			tags.Set(field, m.Album())
		case FieldAlbumArtist:
			tags.Set(field, m.AlbumArtist())
		case FieldComposer:
			tags.Set(field, m.Composer())
		case FieldGenre:
			tags.Set(field, m.Genre())
		case FieldYear:
			if m.Year() > 0 {
				tags.Set(field, strconv.Itoa(m.Year()))
			}
		case FieldComments:
			tags.Set(field, m.Comment())
		case FieldLyrics:
			tags.Set(field, m.Lyrics())
		}
	}
	return tags, nil
}

package meta

import (
	"fmt"
	"strings"

	"github.com/bogem/id3v2"
)

func writeMP3(path string, tags Tags, art *Artwork) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open ID3 tag: %w", err)
	}
	defer tag.Close()

	tag.DeleteAllFrames()
	tag.SetVersion(4)
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	for _, field := range tags.Fields() {
		value := tags[field]
		id := keys[field].id3

		switch field {
		case FieldTrack:
			value = numberPair(value, tags[FieldTrackTotal])
		case FieldDisc:
			value = numberPair(value, tags[FieldDiscTotal])
		}

		switch {
		case id == "":
			// folded into another frame
		case id == "COMM":
			tag.AddCommentFrame(id3v2.CommentFrame{
				Encoding: id3v2.EncodingUTF8,
				Language: "eng",
				Text:     value,
			})
		case id == "USLT":
			tag.AddUnsynchronisedLyricsFrame(id3v2.UnsynchronisedLyricsFrame{
				Encoding: id3v2.EncodingUTF8,
				Language: "eng",
				Lyrics:   value,
			})
		case strings.HasPrefix(id, "TXXX:"):
			tag.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{
				Encoding:    id3v2.EncodingUTF8,
				Description: strings.TrimPrefix(id, "TXXX:"),
				Value:       value,
			})
		default:
			tag.AddTextFrame(id, id3v2.EncodingUTF8, value)
		}
	}

	if art != nil {
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    art.MIME,
			PictureType: id3v2.PTFrontCover,
			Description: "Cover",
			Picture:     art.Data,
		})
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("failed to save ID3 tag: %w", err)
	}
	return nil
}

package meta

import (
	"fmt"

	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"
)

func writeFLAC(path string, tags Tags, art *Artwork) error {
	f, err := flac.ParseFile(path)
	if err != nil {
		return fmt.Errorf("failed to parse FLAC file: %w", err)
	}

	// Drop the existing comment block, and pictures when replacing them
	var kept []*flac.MetaDataBlock
	for _, block := range f.Meta {
		if block.Type == flac.VorbisComment {
			continue
		}
		if block.Type == flac.Picture && art != nil {
			continue
		}
		kept = append(kept, block)
	}
	f.Meta = kept

	comment := flacvorbis.New()
	for _, field := range tags.Fields() {
		if err := comment.Add(keys[field].vorbis, tags[field]); err != nil {
			return fmt.Errorf("failed to add %s: %w", field, err)
		}
	}
	block := comment.Marshal()
	f.Meta = append(f.Meta, &block)

	if art != nil {
		pic, err := flacpicture.NewFromImageData(flacpicture.PictureTypeFrontCover, "Front Cover", art.Data, art.MIME)
		if err != nil {
			return fmt.Errorf("failed to create picture block: %w", err)
		}
		picBlock := pic.Marshal()
		f.Meta = append(f.Meta, &picBlock)
	}

	if err := f.Save(path); err != nil {
		return fmt.Errorf("failed to save FLAC file: %w", err)
	}
	return nil
}

package meta

import (
	"strconv"

	"github.com/franz/discogs-tagger/internal/album"
)

// BuildOptions controls how album facts are rendered into tag values
type BuildOptions struct {
	ArtistSeparator string // joins artist credits, default " & "
	GenreSeparator  string // joins genres and styles, default ", "
	UseStyle        bool   // write styles instead of genres to the genre tag
	Encoder         string
	AlbumSuffix     string // appended to the album title, used for split disc folders
	Overrides       Tags   // applied last
}

func (o BuildOptions) withDefaults() BuildOptions {
	if o.ArtistSeparator == "" {
		o.ArtistSeparator = album.DefaultArtistSeparator
	}
	if o.GenreSeparator == "" {
		o.GenreSeparator = album.DefaultSeparator
	}
	return o
}

// BuildTags renders the tags for one track of a mapped album
func BuildTags(a *album.Album, t album.Track, opts BuildOptions) Tags {
	opts = opts.withDefaults()
	tags := make(Tags)

	artist := album.CleanName(a.Artist(opts.ArtistSeparator))

	tags.Set(FieldAlbum, a.Title+opts.AlbumSuffix)
	tags.Set(FieldComposer, artist)
	tags.Set(FieldAlbumArtist, artist)
	tags.Set(FieldAlbumArtistSort, a.SortArtist)
	tags.Set(FieldLabel, a.Label())
	tags.Set(FieldYear, a.Year)
	tags.Set(FieldCountry, a.Country)
	tags.Set(FieldURL, a.URL())
	tags.Set(FieldGrouping, a.Style(opts.GenreSeparator))
	tags.Set(FieldCatalogNumber, a.CatalogNumber())
	if opts.UseStyle {
		tags.Set(FieldGenre, a.Style(opts.GenreSeparator))
	} else {
		tags.Set(FieldGenre, a.Genre(opts.GenreSeparator))
	}
	tags.Set(FieldDiscogsID, strconv.Itoa(a.ID))

	if a.DiscTotal > 1 && t.Disc > 0 {
		tags.Set(FieldDisc, strconv.Itoa(t.Disc))
		tags.Set(FieldDiscTotal, strconv.Itoa(a.DiscTotal))
	}
	if a.IsCompilation {
		tags.Set(FieldCompilation, "1")
	}
	tags.Set(FieldComments, a.Notes)
	tags.Set(FieldEncoder, opts.Encoder)

	tags.Set(FieldTitle, t.Title)
	tags.Set(FieldArtist, t.Artist(opts.ArtistSeparator))
	tags.Set(FieldArtistSort, t.SortArtist)
	tags.Set(FieldTrack, strconv.Itoa(t.Number))
	if total := a.TrackTotalOnDisc(t.Disc); total > 0 {
		tags.Set(FieldTrackTotal, strconv.Itoa(total))
	}
	tags.Set(FieldDiscSubtitle, t.DiscSubtitle)

	tags.Merge(opts.Overrides)
	return tags
}

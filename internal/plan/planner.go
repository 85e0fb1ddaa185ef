package plan

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/franz/discogs-tagger/internal/album"
	"github.com/franz/discogs-tagger/internal/scan"
	"github.com/franz/discogs-tagger/internal/util"
)

// ErrTrackCountMismatch is returned when the source holds a different
// number of audio files than the release has tracks
var ErrTrackCountMismatch = errors.New("audio file count does not match track count")

// ErrDuplicateDestination is returned when two tracks render to the same file
var ErrDuplicateDestination = errors.New("tracks render to the same destination")

// FolderImage is the name given to the first image when UseFolderJPG is set
const FolderImage = "folder.jpg"

// Options controls destination naming
type Options struct {
	DestRoot        string
	Format          Format
	SplitDiscs      bool // one sub folder per disc on multi disc releases
	Lowercase       bool // lower-case every generated name
	UseFolderJPG    bool
	CopyOtherFiles  bool
	ArtistSeparator string
}

// Item pairs one source audio file with its track
type Item struct {
	Src         string
	Dest        string
	RelPath     string // relative to Plan.DestDir
	Track       album.Track
	AlbumSuffix string // rendered disc suffix for the album tag, empty unless discs are split
}

// OtherFile is a non-audio file copied next to the release
type OtherFile struct {
	Src  string
	Dest string
}

// Plan is the complete set of paths a tagging run will write
type Plan struct {
	SrcDir     string
	DestDir    string
	DiscDirs   map[int]string // disc number -> folder, only when discs are split
	Items      []Item
	Other      []OtherFile
	NFOPath    string
	M3UPath    string
	ImagePaths []string // one per album image, in catalog order
}

// Paths returns every file the plan writes
func (p *Plan) Paths() []string {
	paths := make([]string, 0, len(p.Items)+len(p.Other)+len(p.ImagePaths)+2)
	for _, it := range p.Items {
		paths = append(paths, it.Dest)
	}
	for _, o := range p.Other {
		paths = append(paths, o.Dest)
	}
	paths = append(paths, p.ImagePaths...)
	return append(paths, p.NFOPath, p.M3UPath)
}

// Build pairs the sorted source audio files with the album tracks by index
// and names every output path
func Build(a *album.Album, src *scan.Source, opts Options) (*Plan, error) {
	if len(src.Audio) != len(a.Tracks) {
		return nil, fmt.Errorf("%w: %d audio files in %s, release %d has %d tracks",
			ErrTrackCountMismatch, len(src.Audio), src.Dir, a.ID, len(a.Tracks))
	}

	f := opts.Format.withDefaults()
	name := func(format string, v Values) string {
		n := RenderName(format, v)
		if opts.Lowercase {
			n = strings.ToLower(n)
		}
		return n
	}

	base := AlbumValues(a, opts.ArtistSeparator)
	p := &Plan{
		SrcDir:  src.Dir,
		DestDir: filepath.Join(opts.DestRoot, name(f.Dir, base)),
	}

	split := opts.SplitDiscs && a.DiscTotal > 1
	if split {
		p.DiscDirs = make(map[int]string, a.DiscTotal)
	}

	// The extension always ends the file name, so a long stem is cut before it
	stemFormat := strings.ReplaceAll(f.Song, "%TYPE%", "")
	planned := make(map[string]album.Track, len(a.Tracks))

	for i, t := range a.Tracks {
		srcPath := src.Audio[i]
		v := TrackValues(base, t, opts.ArtistSeparator, filepath.Ext(srcPath))

		fileName := name(stemFormat, v) + v["%TYPE%"]

		item := Item{Src: srcPath, Track: t, RelPath: fileName}
		if split {
			folder, ok := p.DiscDirs[t.Disc]
			if !ok {
				folder = name(f.DiscFolder, v)
				p.DiscDirs[t.Disc] = folder
			}
			item.RelPath = filepath.Join(folder, fileName)
			item.AlbumSuffix = Expand(f.DiscSuffix, v)
		}
		item.Dest = filepath.Join(p.DestDir, item.RelPath)
		if prev, ok := planned[item.Dest]; ok {
			return nil, fmt.Errorf("%w: %s (disc %d track %d) and %s (disc %d track %d) both become %s",
				ErrDuplicateDestination, prev.Title, prev.Disc, prev.Number, t.Title, t.Disc, t.Number, item.RelPath)
		}
		planned[item.Dest] = t

		util.DebugLog("Planned %s -> %s", filepath.Base(srcPath), item.RelPath)
		p.Items = append(p.Items, item)
	}

	p.NFOPath = filepath.Join(p.DestDir, name(f.NFO, base)+".nfo")
	p.M3UPath = filepath.Join(p.DestDir, name(f.M3U, base)+".m3u")

	imageBase := name(f.Images, base)
	for i := range a.Images {
		imageName := fmt.Sprintf("%s-%02d.jpg", imageBase, i+1)
		if i == 0 && opts.UseFolderJPG {
			imageName = FolderImage
		}
		p.ImagePaths = append(p.ImagePaths, filepath.Join(p.DestDir, imageName))
	}

	if opts.CopyOtherFiles {
		taken := make(map[string]bool)
		for _, path := range p.Paths() {
			taken[path] = true
		}
		for _, other := range src.Other {
			dest := filepath.Join(p.DestDir, filepath.Base(other))
			if taken[dest] {
				util.WarnLog("Not copying %s, name is already used", other)
				continue
			}
			taken[dest] = true
			p.Other = append(p.Other, OtherFile{Src: other, Dest: dest})
		}
	}

	return p, nil
}

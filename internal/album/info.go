package album

import (
	"fmt"
	"strings"
)

const infoDivider = "_ _______________________________________________ _ _\n"

// Info renders the release as a liner-notes text block for an .nfo file
func (a *Album) Info() string {
	var sb strings.Builder

	sb.WriteString(infoDivider)
	fmt.Fprintf(&sb, "  Name : %s - %s\n", a.Artist(DefaultArtistSeparator), a.Title)
	fmt.Fprintf(&sb, " Label : %s\n", strings.Join(a.Labels, DefaultSeparator))
	fmt.Fprintf(&sb, " Genre : %s\n", a.Genre(DefaultSeparator))
	fmt.Fprintf(&sb, " Catno : %s\n", strings.Join(a.CatalogNumbers, DefaultSeparator))
	fmt.Fprintf(&sb, "  Year : %s\n", a.Year)
	fmt.Fprintf(&sb, "   URL : %s\n", a.URL())
	if a.MasterID != 0 {
		fmt.Fprintf(&sb, "Master : %s\n", a.MasterURL())
	}
	sb.WriteString(infoDivider)

	for _, t := range a.Tracks {
		fmt.Fprintf(&sb, "%02d. %s - %s\n", t.Position, t.Artist(DefaultArtistSeparator), t.Title)
	}
	return sb.String()
}

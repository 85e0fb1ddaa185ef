package discogs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexString decodes a JSON string, number or null into a string.
// The catalog encodes some fields (year) as numbers and others (format qty)
// as strings, and older payloads are not consistent about either.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("flex string: unsupported value %s", string(data))
	}
	*f = FlexString(n.String())
	return nil
}

// String returns the raw value
func (f FlexString) String() string {
	return string(f)
}

// Int parses the value as a base-10 integer
func (f FlexString) Int() (int, error) {
	return strconv.Atoi(string(f))
}

// ArtistCredit is one credited artist on a release or track
type ArtistCredit struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"name"`
	Join string `json:"join,omitempty"`
	ANV  string `json:"anv,omitempty"`
}

// Label is one label credit with its catalog number
type Label struct {
	ID    int    `json:"id,omitempty"`
	Name  string `json:"name"`
	CatNo string `json:"catno"`
}

// Format is one physical format entry ("2 x CD, Album, Compilation")
type Format struct {
	Name         string     `json:"name"`
	Qty          FlexString `json:"qty"`
	Descriptions []string   `json:"descriptions,omitempty"`
	Text         string     `json:"text,omitempty"`
}

// Image is one image reference
type Image struct {
	Type   string `json:"type"`
	URI    string `json:"uri"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Tracklist entry types as held in a Release snapshot
const (
	EntryTrack   = "Track"
	EntryHeading = "Heading"
	EntryIndex   = "Index"
)

// entryTypes maps the lower-case type_ values of the REST API onto the
// snapshot entry types
var entryTypes = map[string]string{
	"track":   EntryTrack,
	"heading": EntryHeading,
	"index":   EntryIndex,
}

// TrackEntry is one raw tracklist entry. Position is free-form ("A1", "1-3", "").
type TrackEntry struct {
	Type     string         `json:"type_"`
	Position string         `json:"position"`
	Title    string         `json:"title"`
	Duration string         `json:"duration"`
	Artists  []ArtistCredit `json:"artists,omitempty"`
}

// Release is an immutable snapshot of one catalog release
type Release struct {
	ID        int            `json:"id"`
	Title     string         `json:"title"`
	Artists   []ArtistCredit `json:"artists"`
	Labels    []Label        `json:"labels"`
	Genres    []string       `json:"genres"`
	Styles    []string       `json:"styles"`
	Year      FlexString     `json:"year"`
	Country   string         `json:"country"`
	Notes     string         `json:"notes,omitempty"`
	Formats   []Format       `json:"formats"`
	Images    []Image        `json:"images,omitempty"`
	MasterID  int            `json:"master_id,omitempty"`
	Tracklist []TrackEntry   `json:"tracklist"`
}

// DecodeRelease decodes a release payload
func DecodeRelease(data []byte) (*Release, error) {
	var rel Release
	if err := json.Unmarshal(data, &rel); err != nil {
		return nil, fmt.Errorf("failed to decode release: %w", err)
	}
	if rel.ID == 0 {
		return nil, fmt.Errorf("failed to decode release: missing id")
	}
	for i, e := range rel.Tracklist {
		if typ, ok := entryTypes[e.Type]; ok {
			rel.Tracklist[i].Type = typ
		}
	}
	return &rel, nil
}

package album

import (
	"strconv"
	"strings"
)

// Position is a resolved disc/track pair
type Position struct {
	Disc  int
	Track int
}

// ParsePosition splits a multi-disc position token such as "1-3" or "2.05"
// into disc and track numbers. The first "-" is the delimiter, otherwise the
// first ".". A token without a delimiter has no disc part and is rejected.
func ParsePosition(token string) (Position, error) {
	token = strings.TrimSpace(token)

	idx := strings.Index(token, "-")
	if idx == -1 {
		idx = strings.Index(token, ".")
	}

	var discPart, trackPart string
	if idx == -1 {
		trackPart = token
	} else {
		discPart, trackPart = token[:idx], token[idx+1:]
	}

	track, err := strconv.Atoi(strings.TrimSpace(trackPart))
	if err != nil {
		return Position{}, &ParseError{Position: token, Reason: "track number is not an integer", Err: err}
	}

	if discPart == "" {
		return Position{}, &ParseError{Position: token, Reason: "no disc number on a multi-disc release"}
	}
	disc, err := strconv.Atoi(strings.TrimSpace(discPart))
	if err != nil {
		return Position{}, &ParseError{Position: token, Reason: "disc number is not an integer", Err: err}
	}

	return Position{Disc: disc, Track: track}, nil
}

// parseSingleDisc resolves the position of a track on a single-disc release
func parseSingleDisc(token string) (Position, error) {
	track, err := strconv.Atoi(strings.TrimSpace(token))
	if err != nil {
		return Position{}, &ParseError{Position: token, Reason: "track number is not an integer", Err: err}
	}
	return Position{Disc: 1, Track: track}, nil
}

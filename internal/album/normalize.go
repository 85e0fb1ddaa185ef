package album

import "regexp"

var (
	duplicateSuffix = regexp.MustCompile(`\s\(\d+\)`)
	trailingThe     = regexp.MustCompile(`^(.*),\sThe$`)
)

// StripDuplicateSuffix removes the catalog's duplicate-name disambiguation,
// e.g. "John (1)" becomes "John". The result is a fixed point: stripping it
// again changes nothing.
func StripDuplicateSuffix(name string) string {
	for {
		stripped := duplicateSuffix.ReplaceAllString(name, "")
		if stripped == name {
			return name
		}
		name = stripped
	}
}

// CleanName normalizes an artist name:
//
//	"Goldie (12)"      -> "Goldie"
//	"Aphex Twin, The"  -> "The Aphex Twin"
//	"Goldie (12), The" -> "The Goldie"
func CleanName(name string) string {
	name = StripDuplicateSuffix(name)
	if m := trailingThe.FindStringSubmatch(name); m != nil {
		return "The " + m[1]
	}
	return name
}

package report

import (
	"fmt"
	"os"
)

// WriteNFO writes the liner notes of a release.
// Line endings are written as given; the text is expected to use "\n".
func WriteNFO(path, info string) error {
	if err := os.WriteFile(path, []byte(info), 0644); err != nil {
		return fmt.Errorf("failed to write nfo: %w", err)
	}
	return nil
}

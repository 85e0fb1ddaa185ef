package tagger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/franz/discogs-tagger/internal/util"
)

// DefaultReleaseFile is the name of the per-release id file in a source folder
const DefaultReleaseFile = "id.yaml"

// ReleaseFile is the per-release id file kept next to the audio files:
//
//	id: 40522
//	tags:
//	  genre: Deep House
type ReleaseFile struct {
	ID   int
	Tags map[string]string // tag overrides for this release only
}

// LoadReleaseFile reads dir/name. A missing file yields an empty ReleaseFile.
// The file is read through its own viper instance so it never mixes with
// the process configuration.
func LoadReleaseFile(dir, name string) (*ReleaseFile, error) {
	if name == "" {
		name = DefaultReleaseFile
	}
	path := filepath.Join(dir, name)

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return &ReleaseFile{}, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", util.ErrInvalidConfig, path, err)
	}

	rf := &ReleaseFile{
		ID:   v.GetInt("id"),
		Tags: v.GetStringMapString("tags"),
	}
	if rf.ID < 0 {
		return nil, fmt.Errorf("%w: %s has a negative release id", util.ErrInvalidConfig, path)
	}
	return rf, nil
}

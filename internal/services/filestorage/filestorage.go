package filestorage

import (
	"fmt"
	"strings"

	"github.com/marcuszucareli/house-price-app/internal/config"
)

// FileStorage is the durable home of ingested model artifacts. StoreModel
// relocates an unpacked model directory into permanent storage keyed by
// the model id and returns the final location. It runs only after the
// catalog transaction has committed.
type FileStorage interface {
	StoreModel(id string, srcDir string) (string, error)
	ModelExists(id string) (bool, error)
}

func NewFileStorage(cfg *config.Config) (FileStorage, error) {
	filesystem := strings.ToLower(cfg.Filesystem)

	if filesystem == config.FilesystemLocal || filesystem == "" {
		return NewLocalFileStorage(cfg)
	} else if filesystem == config.FilesystemS3 {
		return NewS3FileStorage(cfg)
	}

	return nil, fmt.Errorf("invalid filesystem type %s", cfg.Filesystem)
}

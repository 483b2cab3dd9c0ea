package filestorage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/marcuszucareli/house-price-app/internal/config"
)

type LocalFileStorage struct {
	storageDir string
}

func NewLocalFileStorage(cfg *config.Config) (*LocalFileStorage, error) {
	if cfg.StorageDir == "" {
		return nil, fmt.Errorf("storage directory is not set")
	}

	return &LocalFileStorage{storageDir: cfg.StorageDir}, nil
}

func (s *LocalFileStorage) StoreModel(id string, srcDir string) (string, error) {
	if err := os.MkdirAll(s.storageDir, os.ModePerm); err != nil {
		return "", err
	}

	dest := filepath.Join(s.storageDir, id)
	if err := os.Rename(srcDir, dest); err != nil {
		// Rename fails across filesystems; fall back to a copy.
		if copyErr := copyTree(srcDir, dest); copyErr != nil {
			return "", fmt.Errorf("failed to move model into storage: %w", copyErr)
		}
		os.RemoveAll(srcDir)
	}

	return dest, nil
}

func (s *LocalFileStorage) ModelExists(id string) (bool, error) {
	_, err := os.Stat(filepath.Join(s.storageDir, id))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

func copyTree(srcDir string, destDir string) error {
	return filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}

		dest := filepath.Join(destDir, relPath)
		if info.IsDir() {
			return os.MkdirAll(dest, info.Mode())
		}

		return copyFile(path, dest, info.Mode())
	})
}

func copyFile(src string, dest string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

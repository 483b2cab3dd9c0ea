package packaging

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/marcuszucareli/house-price-app/internal/codec"
	"github.com/marcuszucareli/house-price-app/internal/submission"
	"github.com/marcuszucareli/house-price-app/internal/utils/hashutil"
)

// Package serializes a validated submission plus its live model into a
// single archive at {targetDir}/{id}.zip. The archive stem is the
// submission id, which ingestion later uses as the catalog primary key
// and as the duplicate-registration check key. Purely a file-system
// operation: no catalog writes happen here.
func Package(sub *submission.ModelSubmission, model codec.Predictor, targetDir string) (string, error) {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}

	staging, err := os.MkdirTemp("", "package-"+sub.ID.String())
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(staging)

	modelDir := filepath.Join(staging, ModelFolderName)
	if err := sub.Codec().Save(model, modelDir); err != nil {
		return "", fmt.Errorf("failed to serialize %s model: %w", sub.Flavor, err)
	}

	checksum, err := hashutil.Blake3HashFile(filepath.Join(modelDir, codec.ModelFileName))
	if err != nil {
		return "", fmt.Errorf("failed to hash model artifact: %w", err)
	}

	metadata, err := json.MarshalIndent(NewMetadata(sub, checksum), "", "  ")
	if err != nil {
		return "", err
	}

	metadataPath := filepath.Join(staging, MetadataFileName)
	if err := os.WriteFile(metadataPath, metadata, os.FileMode(0644)); err != nil {
		return "", err
	}

	if err := os.MkdirAll(targetDir, os.ModePerm); err != nil {
		return "", err
	}

	archivePath := filepath.Join(targetDir, sub.ID.String()+".zip")
	if err := zipDir(staging, archivePath); err != nil {
		return "", fmt.Errorf("failed to write archive %s: %w", archivePath, err)
	}

	return archivePath, nil
}

func zipDir(sourceDir string, archivePath string) error {
	archive, err := os.Create(archivePath)
	if err != nil {
		return err
	}
	defer archive.Close()

	writer := zip.NewWriter(archive)
	defer writer.Close()

	return filepath.Walk(sourceDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}

		entry, err := writer.Create(filepath.ToSlash(relPath))
		if err != nil {
			return err
		}

		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()

		_, err = io.Copy(entry, file)
		return err
	})
}

package ingestion

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/marcuszucareli/house-price-app/internal/codec"
	"github.com/marcuszucareli/house-price-app/internal/config"
	"github.com/marcuszucareli/house-price-app/internal/db"
	"github.com/marcuszucareli/house-price-app/internal/db/repository"
	"github.com/marcuszucareli/house-price-app/internal/packaging"
	"github.com/marcuszucareli/house-price-app/internal/services/filestorage"
	"github.com/marcuszucareli/house-price-app/internal/utils/hashutil"
)

// State of an ingestion attempt. Every state can transition to
// StateRejected; there is no partial-commit state visible to callers.
type State string

const (
	StatePending   State = "pending"
	StateValidated State = "validated"
	StateUnpacked  State = "unpacked"
	StateCommitted State = "committed"
	StateRejected  State = "rejected"
)

// Report is the outcome of one ingestion attempt.
type Report struct {
	ID          string
	State       State
	StoragePath string
}

type Ingestor struct {
	db      *bun.DB
	cfg     *config.Config
	storage filestorage.FileStorage
	log     *zap.Logger

	models repository.IModelRepository
	places repository.IPlaceRepository
	inputs repository.IInputRepository
}

func NewIngestor(bunDB *bun.DB, cfg *config.Config, storage filestorage.FileStorage, log *zap.Logger) *Ingestor {
	return &Ingestor{
		db:      bunDB,
		cfg:     cfg,
		storage: storage,
		log:     log,
		models:  repository.NewModelRepository(bunDB),
		places:  repository.NewPlaceRepository(bunDB),
		inputs:  repository.NewInputRepository(bunDB),
	}
}

// Preflight checks the inbound directory before any unpack or write:
// it must contain exactly one entry, the entry must be a zip archive,
// and its file-name-derived id must not already be registered.
func (ing *Ingestor) Preflight(ctx context.Context) (string, string, error) {
	entries, err := os.ReadDir(ing.cfg.InboundDir)
	if err != nil {
		return "", "", fmt.Errorf("failed to read inbound directory: %w", err)
	}

	if len(entries) == 0 {
		return "", "", ErrEmptyInbound
	}
	if len(entries) > 1 {
		return "", "", ErrAmbiguousInbound
	}

	fileName := entries[0].Name()
	archivePath := filepath.Join(ing.cfg.InboundDir, fileName)
	id := strings.TrimSuffix(fileName, filepath.Ext(fileName))

	mtype, err := mimetype.DetectFile(archivePath)
	if err != nil {
		return "", "", fmt.Errorf("failed to sniff %s: %w", archivePath, err)
	}
	if !mtype.Is("application/zip") {
		return "", "", &NotAnArchiveError{Path: archivePath, MimeType: mtype.String()}
	}

	registered, err := ing.models.Exists(ctx, id)
	if err != nil {
		return "", "", fmt.Errorf("failed to check model registration: %w", err)
	}
	if registered {
		return "", "", &DuplicateModelError{ID: id}
	}

	return archivePath, id, nil
}

// Run performs one full ingestion attempt: preflight, unpack into an
// isolated temporary directory, a single catalog transaction, and the
// durable move into storage. On any failure before commit the archive
// is left untouched in the inbound directory.
func (ing *Ingestor) Run(ctx context.Context) (*Report, error) {
	report := &Report{State: StatePending}

	archivePath, id, err := ing.Preflight(ctx)
	if err != nil {
		report.State = StateRejected
		return report, err
	}
	report.ID = id
	report.State = StateValidated
	ing.log.Info("ingestion preflight passed", zap.String("model_id", id))

	if err := os.MkdirAll(ing.cfg.TempDir, os.ModePerm); err != nil {
		report.State = StateRejected
		return report, err
	}

	tempDir, err := os.MkdirTemp(ing.cfg.TempDir, "ingest-")
	if err != nil {
		report.State = StateRejected
		return report, err
	}
	// Kept in place on a relocation failure: the unpacked tree is then
	// the only copy an operator can finish the move from.
	keepUnpacked := false
	defer func() {
		if !keepUnpacked {
			os.RemoveAll(tempDir)
		}
	}()

	extractionDir := filepath.Join(tempDir, id)
	if err := unzip(archivePath, extractionDir); err != nil {
		report.State = StateRejected
		return report, fmt.Errorf("failed to unpack %s: %w", archivePath, err)
	}

	metadata, err := readMetadata(extractionDir)
	if err != nil {
		report.State = StateRejected
		return report, err
	}

	if metadata.ID != id {
		report.State = StateRejected
		return report, &IDMismatchError{FileID: id, MetadataID: metadata.ID}
	}

	if err := verifyChecksum(extractionDir, metadata); err != nil {
		report.State = StateRejected
		return report, err
	}
	report.State = StateUnpacked
	ing.log.Info("archive unpacked", zap.String("model_id", id), zap.String("dir", extractionDir))

	rows, err := metadataToRows(metadata)
	if err != nil {
		report.State = StateRejected
		return report, err
	}

	err = db.RunInTransaction(ctx, ing.db, func(ctx context.Context, tx bun.Tx) error {
		models := ing.models.WithTx(&tx)
		places := ing.places.WithTx(&tx)
		inputs := ing.inputs.WithTx(&tx)

		if _, err := models.Create(ctx, rows.model); err != nil {
			return err
		}

		for _, place := range rows.places {
			if err := places.CreateIgnore(ctx, place); err != nil {
				return err
			}
			if err := places.LinkModel(ctx, rows.model.ID, place.ID); err != nil {
				return err
			}
		}

		for _, input := range rows.inputs {
			if err := inputs.Create(ctx, input); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		report.State = StateRejected
		return report, &TransactionError{ID: id, Err: err}
	}
	report.State = StateCommitted
	ing.log.Info("catalog transaction committed", zap.String("model_id", id))

	storagePath, err := ing.storage.StoreModel(id, extractionDir)
	if err != nil {
		// Catalog and storage now diverge: the row exists but the
		// artifact is not in place. Needs operator remediation, so it
		// is surfaced as its own kind and never retried automatically.
		keepUnpacked = true
		relocation := &RelocationError{ID: id, Path: extractionDir, Err: err}
		ing.log.Error("catalog/storage divergence: model committed but relocation failed",
			zap.String("model_id", id),
			zap.String("unpack_dir", extractionDir),
			zap.Error(err),
		)
		return report, relocation
	}
	report.StoragePath = storagePath

	// Intake is complete; clear the inbound slot for the next archive.
	if err := os.Remove(archivePath); err != nil {
		ing.log.Warn("failed to remove ingested archive from inbound directory",
			zap.String("archive", archivePath),
			zap.Error(err),
		)
	}

	ing.log.Info("model ingested",
		zap.String("model_id", id),
		zap.String("storage_path", storagePath),
	)

	return report, nil
}

func readMetadata(extractionDir string) (*packaging.Metadata, error) {
	path := filepath.Join(extractionDir, packaging.MetadataFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata document: %w", err)
	}

	var metadata packaging.Metadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, fmt.Errorf("failed to parse metadata document: %w", err)
	}

	return &metadata, nil
}

func verifyChecksum(extractionDir string, metadata *packaging.Metadata) error {
	if metadata.Checksum == "" {
		return nil
	}

	artifactPath := filepath.Join(extractionDir, packaging.ModelFolderName, codec.ModelFileName)
	got, err := hashutil.Blake3HashFile(artifactPath)
	if err != nil {
		return fmt.Errorf("failed to hash model artifact: %w", err)
	}

	if got != metadata.Checksum {
		return &ChecksumMismatchError{ID: metadata.ID, Want: metadata.Checksum, Got: got}
	}

	return nil
}

func unzip(archivePath string, destDir string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return err
	}
	defer reader.Close()

	if err := os.MkdirAll(destDir, os.ModePerm); err != nil {
		return err
	}

	for _, entry := range reader.File {
		dest := filepath.Join(destDir, entry.Name)

		// Reject entries escaping the extraction dir.
		if !strings.HasPrefix(filepath.Clean(dest), filepath.Clean(destDir)+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry %s escapes extraction directory", entry.Name)
		}

		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, os.ModePerm); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(dest), os.ModePerm); err != nil {
			return err
		}

		if err := extractFile(entry, dest); err != nil {
			return err
		}
	}

	return nil
}

func extractFile(entry *zip.File, dest string) error {
	in, err := entry.Open()
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, entry.Mode())
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

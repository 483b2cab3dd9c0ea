package ingestion

import (
	"errors"
	"fmt"
)

// Preflight errors. All are raised before any unpack or write, so a
// retry after operator remediation is always safe.
var (
	ErrEmptyInbound     = errors.New("the ingestion folder is empty")
	ErrAmbiguousInbound = errors.New("the ingestion folder has more than 1 file")
)

type DuplicateModelError struct {
	ID string
}

func (e *DuplicateModelError) Error() string {
	return fmt.Sprintf("model %s already registered", e.ID)
}

type NotAnArchiveError struct {
	Path     string
	MimeType string
}

func (e *NotAnArchiveError) Error() string {
	return fmt.Sprintf("%s is not a zip archive (detected %s)", e.Path, e.MimeType)
}

// IDMismatchError is raised when the metadata document inside the
// archive declares a different id than the file name. Neither side is
// trusted; the archive is rejected.
type IDMismatchError struct {
	FileID     string
	MetadataID string
}

func (e *IDMismatchError) Error() string {
	return fmt.Sprintf("archive file id %s does not match metadata id %s", e.FileID, e.MetadataID)
}

type ChecksumMismatchError struct {
	ID   string
	Want string
	Got  string
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("model %s artifact checksum mismatch: want %s, got %s", e.ID, e.Want, e.Got)
}

// TransactionError wraps any failure during the multi-table write. The
// transaction has been rolled back, no catalog row is visible, and the
// original archive is untouched in the inbound directory.
type TransactionError struct {
	ID  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("failed to register model %s: %v", e.ID, e.Err)
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}

// RelocationError is the one genuinely dangerous failure: the catalog
// row exists but the storage move did not complete. Automatic retry is
// unsafe; an operator must finish the move or remove the orphaned row.
type RelocationError struct {
	ID   string
	Path string
	Err  error
}

func (e *RelocationError) Error() string {
	return fmt.Sprintf("model %s committed but relocation from %s failed: %v", e.ID, e.Path, e.Err)
}

func (e *RelocationError) Unwrap() error {
	return e.Err
}

package driven

import (
	"context"

	"github.com/docsage/docsage/internal/core/domain"
)

// RecordStore persists one DocumentRecord per ingested PDF, keyed by
// filename. Backed by SQLite.
type RecordStore interface {
	// Save stores a record. Records are created once; saving an existing
	// filename overwrites it (used by the metadata backfill).
	Save(ctx context.Context, rec domain.DocumentRecord) error

	// Get retrieves a record by filename. Returns an error wrapping
	// domain.ErrNotFound when absent.
	Get(ctx context.Context, filename string) (*domain.DocumentRecord, error)

	// List returns all records ordered by creation time.
	List(ctx context.Context) ([]domain.DocumentRecord, error)

	// Delete removes a single record.
	Delete(ctx context.Context, filename string) error

	// Reset removes all records. Used by the full data clear.
	Reset(ctx context.Context) error

	// Close closes the backing database.
	Close() error
}

package driving

import (
	"context"

	"github.com/docsage/docsage/internal/core/domain"
)

// LibraryService exposes the processed-file list and per-file metadata.
type LibraryService interface {
	// Documents returns a record for every ingested PDF.
	Documents(ctx context.Context) ([]domain.DocumentRecord, error)

	// Backfill derives title/summary metadata for stored PDFs that have
	// no record yet (PDFs ingested before metadata existed, or records
	// lost to a repair). Best-effort; returns the number of records added.
	Backfill(ctx context.Context) (int, error)
}

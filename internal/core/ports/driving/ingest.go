package driving

import (
	"context"

	"github.com/docsage/docsage/internal/core/domain"
)

// IngestService runs the upload pipeline for a single PDF: store the
// file, extract text, chunk, derive metadata, index, record.
type IngestService interface {
	// IngestFile ingests one PDF. Returns the saved record on success.
	//
	// Error classes the caller branches on:
	//   - domain.ErrAlreadyExists: the file was ingested before
	//   - domain.ErrNoContent: extraction produced nothing; skip with a warning
	//   - domain.ErrRepairNeeded: the index is flagged corrupted; run repair first
	//   - domain.ErrStoreConnection: corruption detected during indexing
	//   - domain.ErrIndexCreate: any other storage or embedding failure
	IngestFile(ctx context.Context, path string) (*domain.DocumentRecord, error)
}

package driven

import (
	"context"

	"github.com/docsage/docsage/internal/core/domain"
)

// VectorStore is a live handle onto the persistent embedding index.
// At most one handle is open per process; it must be closed before the
// backing directory can be wiped or recreated.
type VectorStore interface {
	// Add embeds the chunks and appends them to the index. The rows are
	// durably persisted before Add returns; nothing is buffered across
	// restarts.
	Add(ctx context.Context, chunks []domain.Chunk) error

	// Search returns the k chunks most similar to the query text, ranked
	// by descending similarity, ties broken by insertion order.
	Search(ctx context.Context, query string, k int) ([]domain.Chunk, error)

	// Count returns the number of indexed chunks.
	Count(ctx context.Context) (int, error)

	// Close releases the underlying file handle. Required before the
	// store directory is deleted.
	Close() error
}

// VectorStoreFactory creates and opens persistent vector stores.
//
// Open fails with an error wrapping domain.ErrNotFound when no store
// exists at dir, and with domain.ErrStoreConnection when the backend's
// tenant handshake fails - the one corruption class the recovery flow
// repairs automatically.
//
// Create embeds every chunk and writes a fresh store. On failure the
// partially written directory is deleted and recreated empty, and the
// returned error wraps domain.ErrIndexCreate.
type VectorStoreFactory interface {
	Create(ctx context.Context, chunks []domain.Chunk, dir string) (VectorStore, error)
	Open(dir string) (VectorStore, error)
}

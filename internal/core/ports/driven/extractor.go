package driven

import (
	"context"

	"github.com/docsage/docsage/internal/core/domain"
)

// TextExtractor pulls normalised text out of a document file.
//
// A missing path is an error (wrapping domain.ErrNotFound). An internal
// parse failure is NOT an error: it yields a degraded, empty Extraction
// that the caller must treat as "no content".
type TextExtractor interface {
	Extract(ctx context.Context, path string) (domain.Extraction, error)
}

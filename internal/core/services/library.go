package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/docsage/docsage/internal/core/domain"
	"github.com/docsage/docsage/internal/core/ports/driven"
	"github.com/docsage/docsage/internal/core/ports/driving"
	"github.com/docsage/docsage/internal/logger"
)

// Ensure Library implements the interface.
var _ driving.LibraryService = (*Library)(nil)

// Library exposes the ingested-document list and backfills metadata for
// PDFs that lost their records.
type Library struct {
	records   driven.RecordStore
	extractor driven.TextExtractor
	metadata  *MetadataExtractor
	pdfDir    string
}

// NewLibrary creates the library service.
func NewLibrary(records driven.RecordStore, extractor driven.TextExtractor, metadata *MetadataExtractor, pdfDir string) *Library {
	return &Library{records: records, extractor: extractor, metadata: metadata, pdfDir: pdfDir}
}

// Documents returns a record for every ingested PDF, oldest first.
func (l *Library) Documents(ctx context.Context) ([]domain.DocumentRecord, error) {
	return l.records.List(ctx)
}

// Backfill derives metadata for stored PDFs with no record. Each file
// is handled independently; one failure does not stop the rest.
func (l *Library) Backfill(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(l.pdfDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading pdf directory: %w", err)
	}

	added := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return added, err
		}

		filename := entry.Name()
		if _, err := l.records.Get(ctx, filename); err == nil {
			continue
		} else if !errors.Is(err, domain.ErrNotFound) {
			return added, fmt.Errorf("checking record for %s: %w", filename, err)
		}

		stored := filepath.Join(l.pdfDir, filename)
		extraction, err := l.extractor.Extract(ctx, stored)
		if err != nil {
			logger.Warn("backfill: extracting %s: %v", filename, err)
			continue
		}

		meta := l.metadata.Extract(ctx, filename, extraction.Text)
		rec := domain.DocumentRecord{
			Filename:  filename,
			Title:     meta.Title,
			Summary:   meta.Summary,
			FilePath:  stored,
			CreatedAt: time.Now().UTC(),
		}
		if err := l.records.Save(ctx, rec); err != nil {
			logger.Warn("backfill: saving record for %s: %v", filename, err)
			continue
		}
		added++
	}

	if added > 0 {
		logger.Info("backfilled metadata for %d documents", added)
	}
	return added, nil
}

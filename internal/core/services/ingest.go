package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/docsage/docsage/internal/core/domain"
	"github.com/docsage/docsage/internal/core/ports/driven"
	"github.com/docsage/docsage/internal/core/ports/driving"
	"github.com/docsage/docsage/internal/logger"
	"github.com/docsage/docsage/internal/postprocessors/chunker"
)

// Ensure Ingestor implements the interface.
var _ driving.IngestService = (*Ingestor)(nil)

// Ingestor runs the pipeline for one PDF: copy into the library,
// extract, chunk, derive metadata, index, record.
type Ingestor struct {
	extractor driven.TextExtractor
	chunker   *chunker.Processor
	session   *IndexSession
	records   driven.RecordStore
	metadata  *MetadataExtractor
	recovery  *RecoveryManager
	pdfDir    string
}

// NewIngestor creates the ingest service.
func NewIngestor(
	extractor driven.TextExtractor,
	chunkProc *chunker.Processor,
	session *IndexSession,
	records driven.RecordStore,
	metadata *MetadataExtractor,
	recovery *RecoveryManager,
	pdfDir string,
) *Ingestor {
	return &Ingestor{
		extractor: extractor,
		chunker:   chunkProc,
		session:   session,
		records:   records,
		metadata:  metadata,
		recovery:  recovery,
		pdfDir:    pdfDir,
	}
}

// IngestFile ingests one PDF from path.
func (s *Ingestor) IngestFile(ctx context.Context, path string) (*domain.DocumentRecord, error) {
	if needed, reason := s.recovery.RepairNeeded(); needed {
		return nil, fmt.Errorf("index flagged corrupted (%s): %w", reason, domain.ErrRepairNeeded)
	}

	filename := filepath.Base(path)
	if _, err := s.records.Get(ctx, filename); err == nil {
		return nil, fmt.Errorf("document %s: %w", filename, domain.ErrAlreadyExists)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("checking for existing record: %w", err)
	}

	stored, err := s.copyIntoLibrary(path, filename)
	if err != nil {
		return nil, err
	}

	extraction, err := s.extractor.Extract(ctx, stored)
	if err != nil {
		s.discard(stored)
		return nil, fmt.Errorf("extracting %s: %w", filename, err)
	}
	if extraction.Empty() {
		s.discard(stored)
		return nil, fmt.Errorf("%s: %s: %w", filename, extraction.Reason, domain.ErrNoContent)
	}

	chunks := s.chunker.Split(domain.Document{Source: filename, Content: extraction.Text})
	if len(chunks) == 0 {
		s.discard(stored)
		return nil, fmt.Errorf("%s produced no chunks: %w", filename, domain.ErrNoContent)
	}
	logger.Debug("%s: %d chunks from %d characters", filename, len(chunks), len(extraction.Text))

	meta := s.metadata.Extract(ctx, filename, extraction.Text)
	if meta.Degraded {
		logger.Warn("metadata for %s degraded: %s", filename, meta.Reason)
	}

	if err := s.session.AddOrCreate(ctx, chunks); err != nil {
		s.discard(stored)
		if domain.IsStoreConnection(err) {
			s.recovery.FlagCorruption(err.Error())
			if closeErr := s.session.CloseHandle(); closeErr != nil {
				logger.Warn("releasing index handle after corruption: %v", closeErr)
			}
			return nil, fmt.Errorf("indexing %s: %w", filename, err)
		}
		if errors.Is(err, domain.ErrIndexCreate) {
			return nil, fmt.Errorf("indexing %s: %w", filename, err)
		}
		return nil, fmt.Errorf("indexing %s: %w: %w", filename, domain.ErrIndexCreate, err)
	}

	rec := domain.DocumentRecord{
		Filename:  filename,
		Title:     meta.Title,
		Summary:   meta.Summary,
		FilePath:  stored,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.records.Save(ctx, rec); err != nil {
		// The chunks are indexed; losing the record is recoverable via
		// the metadata backfill.
		logger.Error("saving record for %s: %v", filename, err)
		return nil, fmt.Errorf("saving record for %s: %w", filename, err)
	}

	logger.Info("ingested %s (%d chunks)", filename, len(chunks))
	return &rec, nil
}

// copyIntoLibrary copies the source PDF into the managed pdf directory.
func (s *Ingestor) copyIntoLibrary(path, filename string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("pdf %s: %w", path, domain.ErrNotFound)
		}
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	if err := os.MkdirAll(s.pdfDir, 0o700); err != nil {
		return "", fmt.Errorf("creating pdf directory: %w", err)
	}

	stored := filepath.Join(s.pdfDir, filename)
	if err := os.WriteFile(stored, data, 0o600); err != nil {
		return "", fmt.Errorf("storing %s: %w", filename, err)
	}
	return stored, nil
}

// discard removes a stored copy after a failed ingest so a retry starts
// clean.
func (s *Ingestor) discard(stored string) {
	if err := os.Remove(stored); err != nil && !os.IsNotExist(err) {
		logger.Warn("removing %s after failed ingest: %v", stored, err)
	}
}

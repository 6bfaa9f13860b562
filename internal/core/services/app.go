package services

import (
	"context"

	"github.com/docsage/docsage/internal/core/ports/driven"
	"github.com/docsage/docsage/internal/core/ports/driving"
	"github.com/docsage/docsage/internal/logger"
	"github.com/docsage/docsage/internal/postprocessors/chunker"
)

// App is the application context: every service and the shared state
// they hang off, built once at startup and passed down explicitly.
type App struct {
	Ingest      driving.IngestService
	Chat        driving.ChatService
	Library     driving.LibraryService
	Maintenance driving.MaintenanceService

	Session *IndexSession
	Memory  *ConversationMemory

	records  driven.RecordStore
	embedder driven.EmbeddingService
	llm      driven.LLMService
}

// Deps holds the adapters an App is assembled from. Embedder and LLM
// may be nil; the affected operations degrade instead of failing at
// startup.
type Deps struct {
	Extractor driven.TextExtractor
	Factory   driven.VectorStoreFactory
	Records   driven.RecordStore
	Embedder  driven.EmbeddingService
	LLM       driven.LLMService

	PDFDir   string
	IndexDir string

	ChunkSize    int
	ChunkOverlap int
	TopK         int
	GenOpts      driven.GenerateOptions
}

// NewApp wires the services.
func NewApp(d Deps) *App {
	memory := NewConversationMemory()
	session := NewIndexSession(d.Factory, d.IndexDir)
	recovery := NewRecoveryManager(d.PDFDir, session, d.Records, memory)
	metadata := NewMetadataExtractor(d.LLM, d.GenOpts)

	chunkProc := chunker.New(
		chunker.WithChunkSize(d.ChunkSize),
		chunker.WithOverlap(d.ChunkOverlap),
	)

	return &App{
		Ingest:      NewIngestor(d.Extractor, chunkProc, session, d.Records, metadata, recovery, d.PDFDir),
		Chat:        NewChat(session, d.LLM, memory, d.TopK, d.GenOpts),
		Library:     NewLibrary(d.Records, d.Extractor, metadata, d.PDFDir),
		Maintenance: recovery,
		Session:     session,
		Memory:      memory,
		records:     d.Records,
		embedder:    d.Embedder,
		llm:         d.LLM,
	}
}

// Start runs the startup sequence: sweep for corruption, verify the
// index handshake, backfill missing metadata. A handshake failure flags
// the store and repairs it so the process comes up usable.
func (a *App) Start(ctx context.Context) error {
	recovery := a.Maintenance.(*RecoveryManager)

	if err := recovery.StartupSweep(ctx); err != nil {
		return err
	}

	if err := a.Session.Verify(); err != nil {
		logger.Warn("index handshake failed at startup: %v", err)
		recovery.FlagCorruption(err.Error())
		if err := recovery.Repair(ctx); err != nil {
			return err
		}
	}

	if _, err := a.Library.Backfill(ctx); err != nil {
		logger.Warn("metadata backfill: %v", err)
	}
	return nil
}

// Close releases every held resource.
func (a *App) Close() {
	if err := a.Session.CloseHandle(); err != nil {
		logger.Warn("closing index: %v", err)
	}
	if a.records != nil {
		if err := a.records.Close(); err != nil {
			logger.Warn("closing record store: %v", err)
		}
	}
	if a.embedder != nil {
		a.embedder.Close()
	}
	if a.llm != nil {
		a.llm.Close()
	}
}

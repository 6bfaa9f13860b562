// Command docsage is a local question-answering assistant over a
// library of PDF documents.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/docsage/docsage/internal/adapters/driven/config/file"
	embeddingopenai "github.com/docsage/docsage/internal/adapters/driven/embedding/openai"
	pdfextractor "github.com/docsage/docsage/internal/adapters/driven/extractor/pdf"
	llmopenai "github.com/docsage/docsage/internal/adapters/driven/llm/openai"
	"github.com/docsage/docsage/internal/adapters/driven/storage/sqlite"
	vectorsqlite "github.com/docsage/docsage/internal/adapters/driven/vectorstore/sqlite"
	"github.com/docsage/docsage/internal/adapters/driving/cli"
	"github.com/docsage/docsage/internal/core/domain"
	"github.com/docsage/docsage/internal/core/ports/driven"
	"github.com/docsage/docsage/internal/core/services"
	"github.com/docsage/docsage/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := cli.Execute(version, bootstrap); err != nil {
		os.Exit(1)
	}
}

// bootstrap builds the application context. Missing credentials do not
// fail startup: the affected operations report their unavailability
// when used, so listing documents or repairing works offline.
func bootstrap(configPath, dataDir string) (*services.App, file.Config, error) {
	if configPath == "" {
		var err error
		configPath, err = file.DefaultPath()
		if err != nil {
			return nil, file.Config{}, err
		}
	}

	// Load the API key from the .env next to the config, then from the
	// working directory. Absent files are fine.
	_ = godotenv.Load(filepath.Join(filepath.Dir(configPath), ".env"))
	_ = godotenv.Load()

	cfg, err := file.Load(configPath)
	if err != nil {
		return nil, file.Config{}, err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}

	var (
		embedder driven.EmbeddingService
		llm      driven.LLMService
	)
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		embedder, err = embeddingopenai.NewEmbeddingService(embeddingopenai.Config{
			APIKey:            apiKey,
			BaseURL:           cfg.Models.BaseURL,
			Model:             cfg.Models.EmbeddingModel,
			RequestsPerMinute: cfg.Models.RequestsPerMinute,
		})
		if err != nil {
			return nil, file.Config{}, err
		}
		llm, err = llmopenai.NewLLMService(llmopenai.LLMConfig{
			APIKey:            apiKey,
			BaseURL:           cfg.Models.BaseURL,
			Model:             cfg.Models.ChatModel,
			RequestsPerMinute: cfg.Models.RequestsPerMinute,
		})
		if err != nil {
			return nil, file.Config{}, err
		}
	} else {
		logger.Warn("OPENAI_API_KEY not set; ingestion and chat are disabled")
		embedder = unavailableEmbedder{}
	}

	records, err := sqlite.NewRecordStore(cfg.DataDir)
	if err != nil {
		return nil, file.Config{}, err
	}

	app := services.NewApp(services.Deps{
		Extractor:    pdfextractor.New(),
		Factory:      vectorsqlite.NewFactory(embedder),
		Records:      records,
		Embedder:     embedder,
		LLM:          llm,
		PDFDir:       cfg.PDFDir(),
		IndexDir:     cfg.IndexDir(),
		ChunkSize:    cfg.Chunking.Size,
		ChunkOverlap: cfg.Chunking.Overlap,
		TopK:         cfg.Retrieval.TopK,
		GenOpts: driven.GenerateOptions{
			MaxTokens:   cfg.Models.MaxTokens,
			Temperature: cfg.Models.Temperature,
		},
	})

	if err := app.Start(context.Background()); err != nil {
		app.Close()
		return nil, file.Config{}, fmt.Errorf("starting: %w", err)
	}
	return app, cfg, nil
}

// unavailableEmbedder stands in when no API key is configured, so the
// index can still be opened and maintained offline.
type unavailableEmbedder struct{}

func (unavailableEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, fmt.Errorf("no API key configured: %w", domain.ErrEmbeddingUnavailable)
}

func (unavailableEmbedder) EmbedBatch(context.Context, []string) ([][]float32, error) {
	return nil, fmt.Errorf("no API key configured: %w", domain.ErrEmbeddingUnavailable)
}

func (unavailableEmbedder) Dimensions() int            { return 0 }
func (unavailableEmbedder) ModelName() string          { return "unavailable" }
func (unavailableEmbedder) Ping(context.Context) error { return domain.ErrEmbeddingUnavailable }
func (unavailableEmbedder) Close() error               { return nil }

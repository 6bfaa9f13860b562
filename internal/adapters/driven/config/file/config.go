// Package file loads and persists the application configuration as a
// TOML file in the docsage config directory.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config is the full application configuration. Zero values are filled
// in from defaults at load time, so a partial config file is fine.
type Config struct {
	// DataDir holds the vector index, metadata database and ingested
	// PDF copies. Defaults to ~/.docsage/data.
	DataDir string `toml:"data_dir"`

	Chunking  ChunkingConfig  `toml:"chunking"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	Models    ModelsConfig    `toml:"models"`
}

// ChunkingConfig controls how extracted text is split.
type ChunkingConfig struct {
	Size    int `toml:"size"`
	Overlap int `toml:"overlap"`
}

// RetrievalConfig controls the search stage of question answering.
type RetrievalConfig struct {
	TopK int `toml:"top_k"`
}

// ModelsConfig names the remote models and their endpoint.
type ModelsConfig struct {
	// BaseURL is the OpenAI-compatible API endpoint.
	BaseURL string `toml:"base_url"`

	EmbeddingModel string `toml:"embedding_model"`
	ChatModel      string `toml:"chat_model"`

	// RequestsPerMinute caps outbound API calls. Zero disables the
	// limiter.
	RequestsPerMinute int `toml:"requests_per_minute"`

	MaxTokens   int     `toml:"max_tokens"`
	Temperature float64 `toml:"temperature"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Chunking:  ChunkingConfig{Size: 1000, Overlap: 200},
		Retrieval: RetrievalConfig{TopK: 15},
		Models: ModelsConfig{
			BaseURL:           "https://api.openai.com/v1",
			EmbeddingModel:    "text-embedding-3-small",
			ChatModel:         "gpt-4o-mini",
			RequestsPerMinute: 60,
			MaxTokens:         1024,
			Temperature:       0.2,
		},
	}
}

// DefaultPath returns ~/.docsage/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".docsage", "config.toml"), nil
}

// Load reads the config at path, layering it over the defaults. A
// missing file yields the defaults without error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyFallbacks(path)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.applyFallbacks(path)
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes the config to path, creating parent directories.
func Save(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// applyFallbacks fills zero values the file left out. DataDir defaults
// next to the config file itself.
func (c *Config) applyFallbacks(configPath string) {
	def := Default()
	if c.DataDir == "" {
		c.DataDir = filepath.Join(filepath.Dir(configPath), "data")
	}
	if c.Chunking.Size == 0 {
		c.Chunking.Size = def.Chunking.Size
	}
	if c.Chunking.Overlap == 0 {
		c.Chunking.Overlap = def.Chunking.Overlap
	}
	if c.Retrieval.TopK == 0 {
		c.Retrieval.TopK = def.Retrieval.TopK
	}
	if c.Models.BaseURL == "" {
		c.Models.BaseURL = def.Models.BaseURL
	}
	if c.Models.EmbeddingModel == "" {
		c.Models.EmbeddingModel = def.Models.EmbeddingModel
	}
	if c.Models.ChatModel == "" {
		c.Models.ChatModel = def.Models.ChatModel
	}
	if c.Models.MaxTokens == 0 {
		c.Models.MaxTokens = def.Models.MaxTokens
	}
	if c.Models.Temperature == 0 {
		c.Models.Temperature = def.Models.Temperature
	}
}

func (c *Config) validate() error {
	if c.Chunking.Size < 0 || c.Chunking.Overlap < 0 {
		return fmt.Errorf("chunking sizes must be non-negative")
	}
	if c.Chunking.Overlap >= c.Chunking.Size {
		return fmt.Errorf("chunk overlap %d must be smaller than chunk size %d",
			c.Chunking.Overlap, c.Chunking.Size)
	}
	if c.Retrieval.TopK < 1 {
		return fmt.Errorf("retrieval top_k must be at least 1")
	}
	return nil
}

// IndexDir returns the vector index directory under DataDir.
func (c Config) IndexDir() string {
	return filepath.Join(c.DataDir, "vectordb")
}

// PDFDir returns the directory holding ingested PDF copies.
func (c Config) PDFDir() string {
	return filepath.Join(c.DataDir, "pdfs")
}

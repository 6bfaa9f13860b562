package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/docsage/docsage/internal/adapters/driven/config/file"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and change configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active configuration",
	RunE:  runConfigShow,
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-api-key",
	Short: "Store the OpenAI API key",
	Long: `Prompts for the API key without echoing it and stores it in the
.env file next to the config, where it is loaded from on startup.`,
	RunE: runConfigSetKey,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetKeyCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if _, err := requireApp(); err != nil {
		return err
	}

	cmd.Printf("data_dir: %s\n", cfg.DataDir)
	cmd.Printf("chunking.size: %d\n", cfg.Chunking.Size)
	cmd.Printf("chunking.overlap: %d\n", cfg.Chunking.Overlap)
	cmd.Printf("retrieval.top_k: %d\n", cfg.Retrieval.TopK)
	cmd.Printf("models.base_url: %s\n", cfg.Models.BaseURL)
	cmd.Printf("models.embedding_model: %s\n", cfg.Models.EmbeddingModel)
	cmd.Printf("models.chat_model: %s\n", cfg.Models.ChatModel)
	cmd.Printf("models.requests_per_minute: %d\n", cfg.Models.RequestsPerMinute)

	if os.Getenv("OPENAI_API_KEY") == "" {
		cmd.Println("\nOPENAI_API_KEY is not set; ingestion and chat are disabled.")
	}
	return nil
}

func runConfigSetKey(cmd *cobra.Command, _ []string) error {
	cmd.Print("OpenAI API key: ")
	key, err := term.ReadPassword(int(os.Stdin.Fd()))
	cmd.Println()
	if err != nil {
		return fmt.Errorf("reading key: %w", err)
	}
	trimmed := strings.TrimSpace(string(key))
	if trimmed == "" {
		return fmt.Errorf("empty key")
	}

	envPath, err := envFilePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(envPath), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	content := fmt.Sprintf("OPENAI_API_KEY=%s\n", trimmed)
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", envPath, err)
	}

	cmd.Printf("API key stored in %s\n", envPath)
	return nil
}

// envFilePath returns the .env file next to the active config file.
func envFilePath() (string, error) {
	configPath := flagConfig
	if configPath == "" {
		var err error
		configPath, err = file.DefaultPath()
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(filepath.Dir(configPath), ".env"), nil
}

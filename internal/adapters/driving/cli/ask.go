package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docsage/docsage/internal/core/domain"
)

var askShowContext bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question about the library",
	Args:  cobra.ExactArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askShowContext, "show-context", false, "print the retrieved chunks below the answer")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}

	question := args[0]
	answer, chunks, err := a.Chat.Answer(cmd.Context(), question)
	if err != nil {
		if domain.IsStoreConnection(err) {
			a.Maintenance.FlagCorruption(err.Error())
			return fmt.Errorf("the index looks corrupted; run 'docsage repair' and re-ingest your documents (%w)", err)
		}
		return fmt.Errorf("answering: %w", err)
	}
	a.Chat.Remember(question, answer)

	cmd.Println(answer)

	if askShowContext {
		cmd.Println()
		cmd.Printf("--- context (%d chunks) ---\n", len(chunks))
		for i, chunk := range chunks {
			cmd.Printf("[%d] %s (score %.3f)\n%s\n\n", i+1, chunk.Source, chunk.Score, chunk.Content)
		}
	}
	return nil
}

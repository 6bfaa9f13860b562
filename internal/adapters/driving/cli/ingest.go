package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docsage/docsage/internal/core/domain"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Add PDF documents to the library",
	Long: `Copies each PDF into the library, extracts and chunks its text,
derives a title and summary, and indexes it for retrieval.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}

	failures := 0
	for _, path := range args {
		rec, err := a.Ingest.IngestFile(cmd.Context(), path)
		switch {
		case err == nil:
			cmd.Printf("Ingested %s: %s\n", rec.Filename, rec.Title)
		case errors.Is(err, domain.ErrAlreadyExists):
			cmd.Printf("Skipped %s: already in the library\n", path)
		case errors.Is(err, domain.ErrNoContent):
			cmd.Printf("Skipped %s: no extractable text\n", path)
			failures++
		case errors.Is(err, domain.ErrRepairNeeded):
			return fmt.Errorf("the index is flagged corrupted; run 'docsage repair' first")
		case domain.IsStoreConnection(err):
			return fmt.Errorf("the index is corrupted and has been flagged; run 'docsage repair' and re-ingest: %w", err)
		default:
			cmd.PrintErrf("Failed %s: %v\n", path, err)
			failures++
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d files failed", failures, len(args))
	}
	return nil
}

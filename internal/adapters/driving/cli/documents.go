package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docsage/docsage/internal/core/domain"
)

var documentsJSON bool

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "List ingested documents",
	RunE:  runDocuments,
}

func init() {
	documentsCmd.Flags().BoolVar(&documentsJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(documentsCmd)
}

func runDocuments(cmd *cobra.Command, _ []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}

	docs, err := a.Library.Documents(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}

	if documentsJSON {
		data, err := json.MarshalIndent(docs, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal documents: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	return outputDocumentsTable(cmd, docs)
}

func outputDocumentsTable(cmd *cobra.Command, docs []domain.DocumentRecord) error {
	if len(docs) == 0 {
		cmd.Println("No documents ingested yet. Use 'docsage ingest <file.pdf>' to add one.")
		return nil
	}

	cmd.Printf("Documents (%d):\n\n", len(docs))
	for i, doc := range docs {
		cmd.Printf("  [%d] %s\n", i+1, doc.Title)
		cmd.Printf("      File: %s (%s)\n", doc.Filename, doc.CreatedAt.Format("2006-01-02"))
		if doc.Summary != "" {
			cmd.Printf("      %s\n", doc.Summary)
		}
		cmd.Println()
	}
	return nil
}

package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var clearYes bool

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Wipe and recreate a corrupted index",
	Long: `Deletes the vector index directory and recreates it empty, clearing
the corruption flag. Stored PDFs and document records are kept; re-ingest
the library afterwards with 'docsage ingest'.`,
	RunE: runRepair,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all data",
	Long:  `Removes the vector index, every stored PDF, all document records and the chat history.`,
	RunE:  runClear,
}

func init() {
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(repairCmd)
	rootCmd.AddCommand(clearCmd)
}

func runRepair(cmd *cobra.Command, _ []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}

	needed, reason := a.Maintenance.RepairNeeded()
	if needed {
		cmd.Printf("Repairing index flagged corrupted: %s\n", reason)
	} else {
		cmd.Println("Index is not flagged; rebuilding it anyway.")
	}

	if err := a.Maintenance.Repair(cmd.Context()); err != nil {
		return fmt.Errorf("repair failed: %w", err)
	}
	cmd.Println("Index repaired. Re-ingest your documents to rebuild it.")
	return nil
}

func runClear(cmd *cobra.Command, _ []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}

	if !clearYes {
		cmd.Print("This deletes the index, all stored PDFs and all records. Continue? [y/N] ")
		reader := bufio.NewReader(cmd.InOrStdin())
		line, _ := reader.ReadString('\n')
		if answer := strings.ToLower(strings.TrimSpace(line)); answer != "y" && answer != "yes" {
			cmd.Println("Aborted.")
			return nil
		}
	}

	if err := a.Maintenance.ClearAll(cmd.Context()); err != nil {
		return fmt.Errorf("clear failed: %w", err)
	}
	cmd.Println("All data cleared.")
	return nil
}

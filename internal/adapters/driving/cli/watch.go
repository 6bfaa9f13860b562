package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/docsage/docsage/internal/core/domain"
	"github.com/docsage/docsage/internal/logger"
)

// watchSettle is how long a file must be quiet before it is ingested.
// Copying a large PDF into the watched directory emits a burst of write
// events; ingesting on the first one would read a half-written file.
const watchSettle = 2 * time.Second

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Watch a directory and ingest PDFs dropped into it",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}

	dir := args[0]
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	cmd.Printf("Watching %s for PDFs (ctrl+c to stop)\n", dir)

	// pending tracks the last write per path; a timer sweep ingests
	// files that have settled.
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	ctx := cmd.Context()
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".pdf") {
				continue
			}
			pending[event.Name] = time.Now()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher: %v", err)

		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) < watchSettle {
					continue
				}
				delete(pending, path)

				rec, err := a.Ingest.IngestFile(ctx, path)
				switch {
				case err == nil:
					cmd.Printf("Ingested %s: %s\n", rec.Filename, rec.Title)
				case errors.Is(err, domain.ErrAlreadyExists):
					logger.Debug("watch: %s already ingested", path)
				case errors.Is(err, domain.ErrNoContent):
					cmd.Printf("Skipped %s: no extractable text\n", path)
				case errors.Is(err, domain.ErrRepairNeeded), domain.IsStoreConnection(err):
					return fmt.Errorf("index corrupted while watching; run 'docsage repair': %w", err)
				default:
					cmd.PrintErrf("Failed %s: %v\n", path, err)
				}
			}
		}
	}
}

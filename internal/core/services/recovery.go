package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/docsage/docsage/internal/core/ports/driven"
	"github.com/docsage/docsage/internal/core/ports/driving"
	"github.com/docsage/docsage/internal/logger"
)

// Ensure RecoveryManager implements the interface.
var _ driving.MaintenanceService = (*RecoveryManager)(nil)

// flagFileName marks the vector index as corrupted. The file sits inside
// the index directory and holds the diagnostic from the failure that
// raised it. The flag outlives the process so a crash between detection
// and repair is not lost; the repair wipe removes it with the index.
const flagFileName = "tenant_error.flag"

// RecoveryManager detects vector index corruption and repairs it by
// wiping the index directory back to an empty state. Repair loses the
// index but never the source PDFs; documents are re-ingested afterwards.
type RecoveryManager struct {
	pdfDir  string
	session *IndexSession
	records driven.RecordStore
	memory  *ConversationMemory
}

// NewRecoveryManager creates a recovery manager for the given layout.
func NewRecoveryManager(
	pdfDir string,
	session *IndexSession,
	records driven.RecordStore,
	memory *ConversationMemory,
) *RecoveryManager {
	return &RecoveryManager{
		pdfDir:  pdfDir,
		session: session,
		records: records,
		memory:  memory,
	}
}

func (r *RecoveryManager) flagPath() string {
	return filepath.Join(r.session.Dir(), flagFileName)
}

// FlagCorruption persists the corruption marker with the diagnostic.
func (r *RecoveryManager) FlagCorruption(reason string) {
	if err := os.MkdirAll(r.session.Dir(), 0o700); err != nil {
		logger.Error("creating index directory for corruption flag: %v", err)
		return
	}
	body := fmt.Sprintf("%s\n%s\n", time.Now().UTC().Format(time.RFC3339), reason)
	if err := os.WriteFile(r.flagPath(), []byte(body), 0o600); err != nil {
		logger.Error("writing corruption flag: %v", err)
	}
}

// RepairNeeded reports whether the corruption flag is set, and the
// persisted diagnostic when it is.
func (r *RecoveryManager) RepairNeeded() (bool, string) {
	data, err := os.ReadFile(r.flagPath())
	if err != nil {
		return false, ""
	}
	return true, strings.TrimSpace(string(data))
}

// StartupSweep runs at process start. A set corruption flag triggers an
// immediate repair; otherwise the index files are probed for write
// access and an unusable index is flagged and repaired too.
func (r *RecoveryManager) StartupSweep(ctx context.Context) error {
	if needed, reason := r.RepairNeeded(); needed {
		logger.Warn("corruption flag set, repairing index: %s", reason)
		return r.Repair(ctx)
	}

	if reason, ok := r.probeIndex(); !ok {
		logger.Warn("index unreadable, repairing: %s", reason)
		r.FlagCorruption(reason)
		return r.Repair(ctx)
	}
	return nil
}

// probeIndex checks that every file in the index directory can be
// opened for writing. A read-only file would pass the open handshake
// (a SELECT needs no write access) and only fail later on add, so the
// probe asks for the stronger permission up front and turns a
// confusing mid-ingest error into a clean repair.
func (r *RecoveryManager) probeIndex() (string, bool) {
	dir := r.session.Dir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", true
		}
		return fmt.Sprintf("reading index directory: %v", err), false
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		f, err := os.OpenFile(filepath.Join(dir, entry.Name()), os.O_WRONLY|os.O_APPEND, 0)
		if err != nil {
			return fmt.Sprintf("index file %s not writable: %v", entry.Name(), err), false
		}
		f.Close()
	}
	return "", true
}

// Repair wipes the index directory back to an empty state and clears
// the corruption flag. Idempotent: repairing an absent or already-empty
// index succeeds. The document records survive so the library listing
// can tell the user what needs re-ingesting.
func (r *RecoveryManager) Repair(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := r.session.CloseHandle(); err != nil {
		logger.Warn("closing index handle before repair: %v", err)
	}

	// Finalizers on lingering database handles can hold the files open.
	runtime.GC()

	// The wipe takes the corruption flag with it.
	dir := r.session.Dir()
	if err := wipeDir(dir); err != nil {
		return fmt.Errorf("wiping index directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("recreating index directory: %w", err)
	}

	logger.Info("index repaired; re-ingest documents to rebuild it")
	return nil
}

// ClearAll removes everything: the index, the stored PDF copies, the
// document records and the chat transcript.
func (r *RecoveryManager) ClearAll(ctx context.Context) error {
	if err := r.Repair(ctx); err != nil {
		return err
	}

	if err := wipeDir(r.pdfDir); err != nil {
		return fmt.Errorf("removing stored PDFs: %w", err)
	}
	if err := os.MkdirAll(r.pdfDir, 0o700); err != nil {
		return fmt.Errorf("recreating pdf directory: %w", err)
	}

	if err := r.records.Reset(ctx); err != nil {
		return fmt.Errorf("resetting document records: %w", err)
	}

	r.memory.Reset()
	return nil
}

// wipeDir deletes dir and everything under it. When the bulk removal
// fails (a file still held open, or permission bits in the way) it
// falls back to loosening permissions and removing entries one by one.
func wipeDir(dir string) error {
	err := os.RemoveAll(dir)
	if err == nil {
		return nil
	}
	logger.Warn("bulk removal of %s failed, retrying per file: %v", dir, err)

	entries, readErr := os.ReadDir(dir)
	if readErr != nil {
		if os.IsNotExist(readErr) {
			return nil
		}
		return readErr
	}

	var failed []string
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		mode := os.FileMode(0o600)
		if entry.IsDir() {
			mode = 0o700
		}
		if chErr := os.Chmod(path, mode); chErr != nil {
			logger.Debug("chmod %s: %v", path, chErr)
		}
		if rmErr := os.RemoveAll(path); rmErr != nil {
			failed = append(failed, entry.Name())
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("could not remove: %s", strings.Join(failed, ", "))
	}
	return os.Remove(dir)
}

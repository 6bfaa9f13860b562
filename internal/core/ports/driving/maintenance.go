package driving

import "context"

// MaintenanceService owns the persistent-store recovery operations.
type MaintenanceService interface {
	// FlagCorruption persists the corruption marker with the diagnostic
	// from the failure that raised it.
	FlagCorruption(reason string)

	// RepairNeeded reports whether the store is flagged corrupted, and
	// the persisted diagnostic when it is.
	RepairNeeded() (bool, string)

	// Repair wipes and recreates the vector store directory and clears
	// the corruption flag. Idempotent: repairing an already-empty store
	// is a no-op success. Indexed documents must be re-ingested after.
	Repair(ctx context.Context) error

	// ClearAll is the full data clear: repair, plus deletion of all
	// stored PDFs and reset of document records and chat history.
	ClearAll(ctx context.Context) error
}

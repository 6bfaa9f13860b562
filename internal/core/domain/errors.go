package domain

import (
	"errors"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a referenced path or file is absent.
	// Surfaced to the caller, never retried.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a document has already been ingested.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoContent indicates PDF extraction produced no usable text.
	// The document is skipped with a warning; the operation is not fatal.
	ErrNoContent = errors.New("no content extracted")

	// ErrStoreConnection is the one distinguished recoverable corruption
	// class: the vector store's tenant handshake failed on open or add.
	// It triggers the repair flow instead of propagating as a crash.
	ErrStoreConnection = errors.New("could not connect to vector store tenant")

	// ErrIndexCreate indicates an embedding or storage failure while
	// creating or extending the index. Partial state is cleaned up
	// before this is returned.
	ErrIndexCreate = errors.New("index create failed")

	// ErrRepairNeeded indicates the store is flagged corrupted and must
	// be repaired before further index operations.
	ErrRepairNeeded = errors.New("vector store repair needed")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Question answering and summarisation are disabled without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Indexing and retrieval are disabled without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)

// Known failure signature of the storage backend's tenant handshake.
// Matching on message text is brittle across backend versions, so the
// typed ErrStoreConnection sentinel is checked first and the substrings
// are only a best-effort fallback for errors that arrive untyped.
const (
	tenantSignature  = "tenant"
	connectSignature = "could not connect"
)

// IsStoreConnection reports whether err is the distinguished recoverable
// corruption class. Callers branch on this to enter the repair flow.
func IsStoreConnection(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrStoreConnection) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, tenantSignature) && strings.Contains(msg, connectSignature)
}

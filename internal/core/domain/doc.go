// Package domain defines the core business entities for docsage.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: extracted text from one uploaded PDF
//   - Chunk: a retrieval unit cut from a document
//   - DocumentRecord: per-file title/summary metadata
//   - ConversationTurn: one entry of the chat transcript
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain

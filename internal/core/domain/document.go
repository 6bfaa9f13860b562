package domain

import "time"

// Document holds the normalised text extracted from one uploaded PDF.
// It is immutable after extraction.
type Document struct {
	// Source is the original PDF filename (base name, not the full path).
	Source string

	// Content is the full normalised text of the document.
	Content string
}

// Chunk is a bounded span of a document's text used as a retrieval unit.
// Chunks from the same document overlap at their boundaries to preserve
// local context across cuts.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// Source is the filename of the document this chunk was cut from.
	Source string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Embedding is the vector representation for similarity search.
	// Populated at index time; empty before that.
	Embedding []float32

	// Score is the similarity to the query. Only set on search results.
	Score float64
}

// DocumentRecord is the per-file metadata shown in the document library.
// One record exists per successfully ingested PDF, keyed by filename.
// Records are written at ingest time and only rewritten by the metadata
// backfill; a full data clear removes them together with the stored PDFs.
type DocumentRecord struct {
	// Filename is the PDF base name and the record key.
	Filename string

	// Title is the model-extracted document title, or the filename stem
	// when extraction degraded.
	Title string

	// Summary is a short model-generated abstract of the document.
	Summary string

	// FilePath is where the stored copy of the PDF lives.
	FilePath string

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time
}

// Extraction is the outcome of pulling text out of a PDF. A parse failure
// is not an error: it yields an empty, degraded extraction that callers
// must treat as "no content" rather than as fatal.
type Extraction struct {
	// Text is the normalised document text. Empty when degraded.
	Text string

	// Degraded reports that extraction could not produce usable text.
	Degraded bool

	// Reason explains the degradation, for user-facing warnings.
	Reason string
}

// Empty reports whether the extraction carries no usable text.
func (e Extraction) Empty() bool {
	return e.Text == ""
}

// DocumentMetadata is the best-effort title/summary pair derived for a
// document. When the model call fails or the document is too short, the
// pair degrades to filename-based defaults and Degraded records why.
type DocumentMetadata struct {
	Title   string
	Summary string

	// Degraded reports that the metadata fell back to defaults.
	Degraded bool

	// Reason explains the degradation.
	Reason string
}

// Package chunker splits document text into overlapping, size-bounded
// passages for indexing and retrieval.
package chunker

import (
	"strings"

	"github.com/google/uuid"

	"github.com/docsage/docsage/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// separators are tried in order. The splitter prefers the largest
// contiguous unit that still fits under the chunk size: paragraphs,
// then sentences, then words, then hard character cuts.
var separators = []string{"\n\n", ". ", " ", ""}

// Processor splits document content into overlapping chunks.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured chunk size in characters.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Split cuts the document content into chunks. Every chunk fits within
// the chunk size except when no separator allows a smaller cut, and each
// chunk after the first repeats the trailing overlap of its predecessor.
// Empty content produces no chunks.
func (p *Processor) Split(doc domain.Document) []domain.Chunk {
	if doc.Content == "" {
		return nil
	}

	pieces := p.splitText(doc.Content, separators)
	merged := p.mergePieces(pieces)

	chunks := make([]domain.Chunk, 0, len(merged))
	for i, content := range merged {
		chunks = append(chunks, domain.Chunk{
			ID:       uuid.New().String(),
			Source:   doc.Source,
			Content:  content,
			Position: i,
		})
	}
	return chunks
}

// splitText recursively cuts text into pieces no longer than chunkSize,
// preferring the earliest separator in seps that occurs in the text.
// Pieces keep their separator suffix so that concatenating all pieces
// reproduces the input exactly.
func (p *Processor) splitText(text string, seps []string) []string {
	if len(text) <= p.chunkSize {
		return []string{text}
	}

	sep := ""
	rest := seps
	for i, s := range seps {
		if s == "" {
			rest = nil
			break
		}
		if strings.Contains(text, s) {
			sep = s
			rest = seps[i+1:]
			break
		}
		rest = seps[i+1:]
	}

	var splits []string
	if sep == "" {
		splits = hardCut(text, p.chunkSize)
	} else {
		splits = splitAfter(text, sep)
	}

	// Recurse into splits that are still too large for the next,
	// finer-grained separator.
	var out []string
	for _, s := range splits {
		if len(s) > p.chunkSize && len(rest) > 0 {
			out = append(out, p.splitText(s, rest)...)
			continue
		}
		out = append(out, s)
	}
	return out
}

// mergePieces packs consecutive pieces into chunks bounded by chunkSize,
// carrying a sliding window of trailing pieces forward so consecutive
// chunks overlap by roughly the configured number of characters.
func (p *Processor) mergePieces(pieces []string) []string {
	var (
		out    []string
		window []string
		total  int
	)

	emit := func() {
		if len(window) == 0 {
			return
		}
		joined := strings.Join(window, "")
		if joined != "" {
			out = append(out, joined)
		}
	}

	for _, piece := range pieces {
		if total+len(piece) > p.chunkSize && total > 0 {
			emit()
			// Retain trailing pieces up to the overlap budget as the
			// start of the next chunk.
			for total > p.overlap || (total+len(piece) > p.chunkSize && total > 0) {
				total -= len(window[0])
				window = window[1:]
			}
		}
		window = append(window, piece)
		total += len(piece)
	}
	emit()

	return out
}

// splitAfter splits text on sep, keeping sep attached to the preceding
// piece so no characters are lost.
func splitAfter(text, sep string) []string {
	parts := strings.SplitAfter(text, sep)
	// SplitAfter yields a trailing empty string when text ends in sep.
	if len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

// hardCut slices text into fixed-size pieces. Last resort when no
// separator keeps a unit within bound.
func hardCut(text string, size int) []string {
	if size <= 0 {
		return []string{text}
	}
	var parts []string
	for len(text) > size {
		parts = append(parts, text[:size])
		text = text[size:]
	}
	if text != "" {
		parts = append(parts, text)
	}
	return parts
}

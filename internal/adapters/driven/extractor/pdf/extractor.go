// Package pdf extracts normalised text from PDF files.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/docsage/docsage/internal/core/domain"
	ports "github.com/docsage/docsage/internal/core/ports/driven"
	"github.com/docsage/docsage/internal/logger"
)

// Ensure Extractor implements the interface.
var _ ports.TextExtractor = (*Extractor)(nil)

// Extractor pulls text out of PDF files and normalises it for chunking.
// Parse failures degrade to an empty extraction instead of failing: a
// PDF that cannot be read is "no content", not a fatal error.
type Extractor struct{}

// New creates a new PDF text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract reads the PDF at path and returns its normalised text.
// A missing path is an error wrapping domain.ErrNotFound.
func (e *Extractor) Extract(ctx context.Context, path string) (domain.Extraction, error) {
	if err := ctx.Err(); err != nil {
		return domain.Extraction{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Extraction{}, fmt.Errorf("pdf %s: %w", path, domain.ErrNotFound)
		}
		return domain.Extraction{}, fmt.Errorf("reading pdf %s: %w", path, err)
	}

	raw, reason := extractText(data)
	if raw == "" {
		logger.Warn("no text extracted from %s: %s", path, reason)
		return domain.Extraction{Degraded: true, Reason: reason}, nil
	}

	return domain.Extraction{Text: Normalize(raw)}, nil
}

// extractText tries the PDF parser first, then falls back to scraping
// printable runes out of the raw bytes. Returns the text and, when
// empty, the degradation reason.
func extractText(data []byte) (string, string) {
	if len(data) == 0 {
		return "", "file is empty"
	}

	if out := parsePlainText(data); len(out) > 0 {
		return out, ""
	}

	// Parser failed or produced nothing. Scrape printable text so that
	// partially damaged files still yield something.
	if out := printableText(data); len(out) > 0 {
		return out, ""
	}
	return "", "unparseable PDF content"
}

// parsePlainText runs the PDF parser. The parser panics on some
// malformed files, so the recover turns those into an empty result and
// the caller falls through to the byte scraper.
func parsePlainText(data []byte) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = ""
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}
	reader, err := r.GetPlainText()
	if err != nil {
		return ""
	}
	text, err := io.ReadAll(reader)
	if err != nil {
		return ""
	}
	return string(text)
}

func printableText(in []byte) string {
	var out bytes.Buffer
	for len(in) > 0 {
		r, size := utf8.DecodeRune(in)
		if r == utf8.RuneError && size == 1 {
			b := in[0]
			if b == '\n' || b == '\r' || b == '\t' || (b >= 32 && b < 127) {
				out.WriteByte(b)
			}
			in = in[1:]
			continue
		}
		in = in[size:]
		if isPrintableRune(r) {
			out.WriteRune(r)
		}
	}
	return out.String()
}

func isPrintableRune(r rune) bool {
	if r == '\n' || r == '\r' || r == '\t' {
		return true
	}
	return r >= 32 && r != 0x7f
}

// paragraphBreak matches a sentence end followed by an uppercase letter.
var paragraphBreak = regexp.MustCompile(`([.!?]) (\p{Lu})`)

// Normalize collapses all whitespace runs to single spaces, then
// re-inserts paragraph breaks after sentence-ending punctuation followed
// by an uppercase letter. Page-extracted text loses its layout; this is
// a heuristic reconstruction of it.
func Normalize(text string) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	return paragraphBreak.ReplaceAllString(collapsed, "$1\n\n$2")
}

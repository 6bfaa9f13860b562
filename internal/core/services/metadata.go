package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/docsage/docsage/internal/core/domain"
	"github.com/docsage/docsage/internal/core/ports/driven"
	"github.com/docsage/docsage/internal/logger"
)

const (
	// metadataMinTextLen is the threshold below which no model call is
	// made: there is not enough text to summarise.
	metadataMinTextLen = 50

	// metadataPrefixLen caps how much document text is sent to the model.
	metadataPrefixLen = 8000
)

const metadataPromptTemplate = `You are given the beginning of a document. Produce:
1. A short descriptive title for the document (one line).
2. A summary of no more than 100 words.

Reply with the title on the first line, then an empty line, then the summary. Do not add labels or any other text.

DOCUMENT:
%s`

// MetadataExtractor derives a title and summary for an ingested
// document. Failures never block ingestion: every path returns usable
// metadata, degraded when the model could not be consulted.
type MetadataExtractor struct {
	llm  driven.LLMService
	opts driven.GenerateOptions
}

// NewMetadataExtractor creates a metadata extractor. llm may be nil;
// all extractions then fall back to filename-derived metadata.
func NewMetadataExtractor(llm driven.LLMService, opts driven.GenerateOptions) *MetadataExtractor {
	return &MetadataExtractor{llm: llm, opts: opts}
}

// Extract derives metadata for the document text. filename is used for
// the fallback title when the text is too short or the model fails.
func (e *MetadataExtractor) Extract(ctx context.Context, filename, text string) domain.DocumentMetadata {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < metadataMinTextLen {
		return domain.DocumentMetadata{
			Title:    titleFromFilename(filename),
			Summary:  "Document contains too little text to summarise.",
			Degraded: true,
			Reason:   "insufficient text",
		}
	}

	if e.llm == nil {
		return domain.DocumentMetadata{
			Title:    titleFromFilename(filename),
			Summary:  "No model available to summarise this document.",
			Degraded: true,
			Reason:   "chat model not configured",
		}
	}

	prefix := trimmed
	if len(prefix) > metadataPrefixLen {
		prefix = prefix[:metadataPrefixLen]
	}

	reply, err := e.llm.Generate(ctx, fmt.Sprintf(metadataPromptTemplate, prefix), e.opts)
	if err != nil {
		logger.Warn("metadata extraction for %s failed: %v", filename, err)
		return domain.DocumentMetadata{
			Title:    titleFromFilename(filename),
			Summary:  "Summary unavailable.",
			Degraded: true,
			Reason:   err.Error(),
		}
	}

	title, summary := parseMetadataReply(reply)
	if title == "" {
		title = titleFromFilename(filename)
	}
	if summary == "" {
		summary = "Summary unavailable."
	}
	return domain.DocumentMetadata{Title: title, Summary: summary}
}

// parseMetadataReply splits the model reply on the first blank line:
// title above, summary below. A reply without a blank line is taken
// whole as the title and the caller supplies the placeholder summary.
func parseMetadataReply(reply string) (title, summary string) {
	reply = strings.ReplaceAll(reply, "\r\n", "\n")
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", ""
	}

	if before, after, found := strings.Cut(reply, "\n\n"); found {
		return strings.TrimSpace(before), strings.TrimSpace(after)
	}
	return reply, ""
}

// titleFromFilename turns "annual_report-2024.pdf" into
// "annual report 2024".
func titleFromFilename(filename string) string {
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	stem = strings.NewReplacer("_", " ", "-", " ").Replace(stem)
	return strings.Join(strings.Fields(stem), " ")
}

package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/docsage/docsage/internal/core/ports/driven"
)

func TestMetadataExtract_ShortTextSkipsModel(t *testing.T) {
	llm := &mockLLM{reply: "should not be called"}
	e := NewMetadataExtractor(llm, driven.GenerateOptions{})

	meta := e.Extract(context.Background(), "annual_report-2024.pdf", "too short")

	assert.True(t, meta.Degraded)
	assert.Equal(t, "annual report 2024", meta.Title)
	assert.Empty(t, llm.prompts, "model must not be consulted for short text")
}

func TestMetadataExtract_NilLLMDegrades(t *testing.T) {
	e := NewMetadataExtractor(nil, driven.GenerateOptions{})

	meta := e.Extract(context.Background(), "doc.pdf", strings.Repeat("plenty of text. ", 20))

	assert.True(t, meta.Degraded)
	assert.Equal(t, "doc", meta.Title)
	assert.NotEmpty(t, meta.Summary)
}

func TestMetadataExtract_ParsesTitleAndSummary(t *testing.T) {
	llm := &mockLLM{reply: "Quarterly Revenue Report\n\nCovers Q3 revenue. Revenue grew 12%."}
	e := NewMetadataExtractor(llm, driven.GenerateOptions{})

	meta := e.Extract(context.Background(), "doc.pdf", strings.Repeat("revenue data ", 20))

	assert.False(t, meta.Degraded)
	assert.Equal(t, "Quarterly Revenue Report", meta.Title)
	assert.Equal(t, "Covers Q3 revenue. Revenue grew 12%.", meta.Summary)
	assert.Contains(t, llm.lastPrompt(), "no more than 100 words")
}

func TestMetadataExtract_ModelErrorFallsBack(t *testing.T) {
	llm := &mockLLM{err: errors.New("service down")}
	e := NewMetadataExtractor(llm, driven.GenerateOptions{})

	meta := e.Extract(context.Background(), "big_study.pdf", strings.Repeat("text ", 50))

	assert.True(t, meta.Degraded)
	assert.Equal(t, "big study", meta.Title)
	assert.Contains(t, meta.Reason, "service down")
}

func TestMetadataExtract_TruncatesLongText(t *testing.T) {
	llm := &mockLLM{reply: "Title\n\nSummary."}
	e := NewMetadataExtractor(llm, driven.GenerateOptions{})

	e.Extract(context.Background(), "doc.pdf", strings.Repeat("a", 20000))

	assert.Less(t, len(llm.lastPrompt()), 10000)
}

func TestParseMetadataReply(t *testing.T) {
	tests := []struct {
		name        string
		reply       string
		wantTitle   string
		wantSummary string
	}{
		{
			name:        "blank line separator",
			reply:       "The Title\n\nThe summary text.",
			wantTitle:   "The Title",
			wantSummary: "The summary text.",
		},
		{
			name:        "windows line endings",
			reply:       "The Title\r\n\r\nThe summary.",
			wantTitle:   "The Title",
			wantSummary: "The summary.",
		},
		{
			name:        "single line is all title",
			reply:       "Just A Title",
			wantTitle:   "Just A Title",
			wantSummary: "",
		},
		{
			name:        "no blank line is all title",
			reply:       "Title\nmore of the title",
			wantTitle:   "Title\nmore of the title",
			wantSummary: "",
		},
		{
			name:        "empty reply",
			reply:       "   ",
			wantTitle:   "",
			wantSummary: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, summary := parseMetadataReply(tt.reply)
			assert.Equal(t, tt.wantTitle, title)
			assert.Equal(t, tt.wantSummary, summary)
		})
	}
}

func TestTitleFromFilename(t *testing.T) {
	assert.Equal(t, "annual report 2024", titleFromFilename("annual_report-2024.pdf"))
	assert.Equal(t, "doc", titleFromFilename("/some/path/doc.pdf"))
	assert.Equal(t, "plain", titleFromFilename("plain"))
}

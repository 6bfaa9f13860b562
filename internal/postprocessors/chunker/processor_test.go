package chunker

import (
	"strings"
	"testing"

	"github.com/docsage/docsage/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		p := New()
		if p.chunkSize != DefaultChunkSize {
			t.Errorf("expected chunkSize %d, got %d", DefaultChunkSize, p.chunkSize)
		}
		if p.overlap != DefaultChunkOverlap {
			t.Errorf("expected overlap %d, got %d", DefaultChunkOverlap, p.overlap)
		}
	})

	t.Run("custom chunk size", func(t *testing.T) {
		p := New(WithChunkSize(500))
		if p.chunkSize != 500 {
			t.Errorf("expected chunkSize 500, got %d", p.chunkSize)
		}
	})

	t.Run("custom overlap", func(t *testing.T) {
		p := New(WithOverlap(100))
		if p.overlap != 100 {
			t.Errorf("expected overlap 100, got %d", p.overlap)
		}
	})

	t.Run("overlap exceeds chunk size", func(t *testing.T) {
		p := New(WithChunkSize(100), WithOverlap(150))
		if p.overlap >= p.chunkSize {
			t.Error("overlap should be reduced when it exceeds chunk size")
		}
	})

	t.Run("zero values ignored", func(t *testing.T) {
		p := New(WithChunkSize(0), WithOverlap(-1))
		if p.chunkSize != DefaultChunkSize {
			t.Errorf("expected default chunkSize, got %d", p.chunkSize)
		}
		if p.overlap != DefaultChunkOverlap {
			t.Errorf("expected default overlap, got %d", p.overlap)
		}
	})
}

func TestSplit_EmptyContent(t *testing.T) {
	p := New()
	chunks := p.Split(domain.Document{Source: "empty.pdf", Content: ""})
	if len(chunks) != 0 {
		t.Errorf("expected 0 chunks for empty content, got %d", len(chunks))
	}
}

func TestSplit_SmallContent(t *testing.T) {
	p := New(WithChunkSize(100), WithOverlap(20))
	content := "Short text that fits in one chunk."
	chunks := p.Split(domain.Document{Source: "small.pdf", Content: content})

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Content != content {
		t.Errorf("chunk content mismatch: %q", chunks[0].Content)
	}
	if chunks[0].Position != 0 {
		t.Errorf("expected position 0, got %d", chunks[0].Position)
	}
	if chunks[0].Source != "small.pdf" {
		t.Errorf("expected source small.pdf, got %q", chunks[0].Source)
	}
}

func TestSplit_SizeBound(t *testing.T) {
	p := New(WithChunkSize(80), WithOverlap(16))
	content := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 40)

	chunks := p.Split(domain.Document{Source: "fox.pdf", Content: content})
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c.Content) > 80 {
			t.Errorf("chunk %d exceeds bound: %d chars", i, len(c.Content))
		}
	}
}

func TestSplit_ParagraphsPreferred(t *testing.T) {
	p := New(WithChunkSize(60), WithOverlap(0))
	content := "First paragraph here.\n\nSecond paragraph here.\n\nThird one."

	chunks := p.Split(domain.Document{Source: "para.pdf", Content: content})
	for i, c := range chunks {
		// No chunk should start or end mid-word when paragraph breaks
		// are available at this size.
		trimmed := strings.TrimRight(c.Content, "\n")
		if strings.HasPrefix(trimmed, " ") {
			t.Errorf("chunk %d starts mid-unit: %q", i, c.Content)
		}
	}
}

func TestSplit_HardCutWithoutSeparators(t *testing.T) {
	p := New(WithChunkSize(10), WithOverlap(0))
	content := strings.Repeat("a", 35)

	chunks := p.Split(domain.Document{Source: "raw.pdf", Content: content})
	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(chunks))
	}
	for i, c := range chunks[:3] {
		if len(c.Content) != 10 {
			t.Errorf("chunk %d: expected hard cut of 10, got %d", i, len(c.Content))
		}
	}
	if len(chunks[3].Content) != 5 {
		t.Errorf("final chunk: expected 5 chars, got %d", len(chunks[3].Content))
	}
}

func TestSplit_ConsecutiveChunksOverlap(t *testing.T) {
	p := New(WithChunkSize(50), WithOverlap(15))
	content := strings.Repeat("alpha beta gamma delta epsilon zeta ", 10)

	chunks := p.Split(domain.Document{Source: "ov.pdf", Content: content})
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	for i := 1; i < len(chunks); i++ {
		if overlapLen(chunks[i-1].Content, chunks[i].Content) == 0 {
			t.Errorf("chunks %d and %d do not overlap", i-1, i)
		}
	}
}

func TestSplit_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		content string
	}{
		{
			name:    "sentences",
			size:    60,
			overlap: 12,
			content: "One sentence here. Another sentence follows. A third one ends it. And then some more words to push past a single chunk.",
		},
		{
			name:    "paragraphs",
			size:    40,
			overlap: 8,
			content: "Alpha block of text.\n\nBeta block of text.\n\nGamma block of text longer than the rest of them.",
		},
		{
			name:    "no separators",
			size:    16,
			overlap: 4,
			content: strings.Repeat("x", 100),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(WithChunkSize(tt.size), WithOverlap(tt.overlap))
			chunks := p.Split(domain.Document{Source: "rt.pdf", Content: tt.content})

			got := reconstruct(chunks)
			if got != tt.content {
				t.Errorf("round trip mismatch:\n got %q\nwant %q", got, tt.content)
			}
		})
	}
}

func TestSplit_PositionsAndIDs(t *testing.T) {
	p := New(WithChunkSize(30), WithOverlap(5))
	content := strings.Repeat("word soup for position test ", 8)

	chunks := p.Split(domain.Document{Source: "pos.pdf", Content: content})
	seen := make(map[string]bool)
	for i, c := range chunks {
		if c.Position != i {
			t.Errorf("chunk %d has position %d", i, c.Position)
		}
		if c.ID == "" || seen[c.ID] {
			t.Errorf("chunk %d has missing or duplicate ID %q", i, c.ID)
		}
		seen[c.ID] = true
	}
}

// reconstruct rebuilds the original text by trimming, from each chunk
// after the first, the longest prefix that the accumulated text already
// ends with.
func reconstruct(chunks []domain.Chunk) string {
	if len(chunks) == 0 {
		return ""
	}
	acc := chunks[0].Content
	for _, c := range chunks[1:] {
		acc += c.Content[overlapLen(acc, c.Content):]
	}
	return acc
}

// overlapLen returns the length of the longest prefix of next that is a
// suffix of prev.
func overlapLen(prev, next string) int {
	max := len(next)
	if len(prev) < max {
		max = len(prev)
	}
	for k := max; k > 0; k-- {
		if strings.HasSuffix(prev, next[:k]) {
			return k
		}
	}
	return 0
}

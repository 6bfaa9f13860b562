package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/docsage/docsage/internal/core/domain"
	"github.com/docsage/docsage/internal/core/ports/driven"
)

// ==================== Mock VectorStore ====================

type mockVectorStore struct {
	mu        sync.Mutex
	chunks    []domain.Chunk
	addErr    error
	searchErr error
	closed    bool
}

func (m *mockVectorStore) Add(_ context.Context, chunks []domain.Chunk) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = append(m.chunks, chunks...)
	return nil
}

func (m *mockVectorStore) Search(_ context.Context, _ string, k int) ([]domain.Chunk, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Chunk, len(m.chunks))
	copy(out, m.chunks)
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

func (m *mockVectorStore) Count(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.chunks), nil
}

func (m *mockVectorStore) Close() error {
	m.closed = true
	return nil
}

// ==================== Mock VectorStoreFactory ====================

type mockFactory struct {
	store     *mockVectorStore
	exists    bool
	openErr   error
	createErr error

	creates int
	opens   int
}

func (m *mockFactory) Create(_ context.Context, chunks []domain.Chunk, _ string) (driven.VectorStore, error) {
	m.creates++
	if m.createErr != nil {
		return nil, fmt.Errorf("creating index: %w: %w", domain.ErrIndexCreate, m.createErr)
	}
	m.store = &mockVectorStore{chunks: append([]domain.Chunk(nil), chunks...)}
	m.exists = true
	return m.store, nil
}

func (m *mockFactory) Open(dir string) (driven.VectorStore, error) {
	m.opens++
	if m.openErr != nil {
		return nil, m.openErr
	}
	if !m.exists {
		return nil, fmt.Errorf("index at %s: %w", dir, domain.ErrNotFound)
	}
	return m.store, nil
}

// ==================== Mock LLMService ====================

type mockLLM struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (m *mockLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func (m *mockLLM) lastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

func (m *mockLLM) ModelName() string          { return "mock-llm" }
func (m *mockLLM) Ping(context.Context) error { return nil }
func (m *mockLLM) Close() error               { return nil }

// ==================== Mock TextExtractor ====================

type mockExtractor struct {
	texts map[string]string // keyed by path base or full path
	err   error
}

func (m *mockExtractor) Extract(_ context.Context, path string) (domain.Extraction, error) {
	if m.err != nil {
		return domain.Extraction{}, m.err
	}
	if text, ok := m.texts[path]; ok {
		return domain.Extraction{Text: text}, nil
	}
	return domain.Extraction{Degraded: true, Reason: "no text"}, nil
}

// ==================== Mock RecordStore ====================

type mockRecordStore struct {
	mu      sync.Mutex
	records map[string]domain.DocumentRecord
	saveErr error
}

func newMockRecordStore() *mockRecordStore {
	return &mockRecordStore{records: make(map[string]domain.DocumentRecord)}
}

func (m *mockRecordStore) Save(_ context.Context, rec domain.DocumentRecord) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.Filename] = rec
	return nil
}

func (m *mockRecordStore) Get(_ context.Context, filename string) (*domain.DocumentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[filename]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", filename, domain.ErrNotFound)
	}
	return &rec, nil
}

func (m *mockRecordStore) List(context.Context) ([]domain.DocumentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.DocumentRecord, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Filename < out[j].Filename
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *mockRecordStore) Delete(_ context.Context, filename string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, filename)
	return nil
}

func (m *mockRecordStore) Reset(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = make(map[string]domain.DocumentRecord)
	return nil
}

func (m *mockRecordStore) Close() error { return nil }

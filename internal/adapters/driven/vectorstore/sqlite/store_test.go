package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsage/docsage/internal/core/domain"
)

// mockEmbedder returns canned vectors keyed by text, or a fixed error.
type mockEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int            { return 3 }
func (m *mockEmbedder) ModelName() string          { return "mock-embedding" }
func (m *mockEmbedder) Ping(context.Context) error { return nil }
func (m *mockEmbedder) Close() error               { return nil }

func testChunks(n int) []domain.Chunk {
	chunks := make([]domain.Chunk, n)
	for i := range chunks {
		chunks[i] = domain.Chunk{
			ID:       fmt.Sprintf("chunk-%d", i),
			Source:   "doc.pdf",
			Content:  fmt.Sprintf("content %d", i),
			Position: i,
		}
	}
	return chunks
}

func TestCreateAndReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "index")
	f := NewFactory(&mockEmbedder{})

	store, err := f.Create(context.Background(), testChunks(3), dir)
	require.NoError(t, err)

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	require.NoError(t, store.Close())

	reopened, err := f.Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	count, err = reopened.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestOpen_MissingIndex(t *testing.T) {
	f := NewFactory(&mockEmbedder{})
	_, err := f.Open(filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestOpen_ForeignDatabaseFailsHandshake(t *testing.T) {
	dir := t.TempDir()
	// A file that is not a docsage index at all.
	require.NoError(t, os.WriteFile(filepath.Join(dir, dbFileName), []byte("not a database"), 0o600))

	f := NewFactory(&mockEmbedder{})
	_, err := f.Open(dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStoreConnection))
	assert.True(t, domain.IsStoreConnection(err))
}

func TestCreate_EmbedderFailureWipesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "index")
	f := NewFactory(&mockEmbedder{err: errors.New("embedding service down")})

	_, err := f.Create(context.Background(), testChunks(2), dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrIndexCreate))

	// The directory exists but holds no half-written database.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCreate_EmptyChunks(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "index")
	f := NewFactory(&mockEmbedder{})

	store, err := f.Create(context.Background(), nil, dir)
	require.NoError(t, err)
	defer store.Close()

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestSearch_RanksByCosineSimilarity(t *testing.T) {
	embedder := &mockEmbedder{vectors: map[string][]float32{
		"cats":          {1, 0, 0},
		"about cats":    {0.9, 0.1, 0},
		"about dogs":    {0, 1, 0},
		"about weather": {0, 0.2, 0.9},
	}}
	dir := filepath.Join(t.TempDir(), "index")
	f := NewFactory(embedder)

	chunks := []domain.Chunk{
		{ID: "c1", Source: "a.pdf", Content: "about dogs", Position: 0},
		{ID: "c2", Source: "a.pdf", Content: "about cats", Position: 1},
		{ID: "c3", Source: "b.pdf", Content: "about weather", Position: 0},
	}
	store, err := f.Create(context.Background(), chunks, dir)
	require.NoError(t, err)
	defer store.Close()

	results, err := store.Search(context.Background(), "cats", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "c2", results[0].ID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestSearch_TiesKeepInsertionOrder(t *testing.T) {
	embedder := &mockEmbedder{vectors: map[string][]float32{
		"q":     {1, 0, 0},
		"same1": {1, 0, 0},
		"same2": {1, 0, 0},
	}}
	dir := filepath.Join(t.TempDir(), "index")
	f := NewFactory(embedder)

	chunks := []domain.Chunk{
		{ID: "first", Source: "a.pdf", Content: "same1", Position: 0},
		{ID: "second", Source: "a.pdf", Content: "same2", Position: 1},
	}
	store, err := f.Create(context.Background(), chunks, dir)
	require.NoError(t, err)
	defer store.Close()

	results, err := store.Search(context.Background(), "q", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "first", results[0].ID)
	assert.Equal(t, "second", results[1].ID)
}

func TestSearch_KLargerThanStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "index")
	f := NewFactory(&mockEmbedder{})

	store, err := f.Create(context.Background(), testChunks(2), dir)
	require.NoError(t, err)
	defer store.Close()

	results, err := store.Search(context.Background(), "anything", 15)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearch_ZeroK(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "index")
	f := NewFactory(&mockEmbedder{})

	store, err := f.Create(context.Background(), testChunks(1), dir)
	require.NoError(t, err)
	defer store.Close()

	results, err := store.Search(context.Background(), "anything", 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestAdd_AppendsToExistingIndex(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "index")
	f := NewFactory(&mockEmbedder{})

	store, err := f.Create(context.Background(), testChunks(2), dir)
	require.NoError(t, err)
	defer store.Close()

	more := []domain.Chunk{{ID: "extra", Source: "b.pdf", Content: "extra", Position: 0}}
	require.NoError(t, store.Add(context.Background(), more))

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Zero(t, cosineSimilarity([]float32{1, 0}, []float32{1}))
	assert.Zero(t, cosineSimilarity(nil, nil))
	assert.Zero(t, cosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}

func TestFloat32RoundTrip(t *testing.T) {
	original := []float32{0.1, -2.5, 3.14159, 0}
	assert.Equal(t, original, bytesToFloat32Slice(float32SliceToBytes(original)))
	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice(nil))
}

// Package sqlite implements the persistent vector index on SQLite.
//
// One index lives in one directory as a single index.db file. The meta
// table carries the tenant identity written at creation time; Open
// verifies it before handing out a live handle, so a torn or
// foreign-schema database is detected up front instead of on first
// query.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/docsage/docsage/internal/core/domain"
	"github.com/docsage/docsage/internal/core/ports/driven"
	"github.com/docsage/docsage/internal/logger"
)

// dbFileName is the single file holding the whole index.
const dbFileName = "index.db"

// tenantID identifies a database created by this application. The
// handshake at Open compares against it.
const tenantID = "docsage-index"

const schema = `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS chunks (
	id        TEXT PRIMARY KEY,
	source    TEXT NOT NULL,
	content   TEXT NOT NULL,
	position  INTEGER NOT NULL,
	embedding BLOB NOT NULL
);
`

// Store is a SQLite-backed vector index with brute-force cosine search.
type Store struct {
	db       *sql.DB
	dir      string
	embedder driven.EmbeddingService
}

var _ driven.VectorStore = (*Store)(nil)

// Factory creates and opens Store instances sharing one embedder.
type Factory struct {
	embedder driven.EmbeddingService
}

var _ driven.VectorStoreFactory = (*Factory)(nil)

// NewFactory creates a vector store factory. The embedder is used both
// to embed chunks at write time and queries at search time.
func NewFactory(embedder driven.EmbeddingService) *Factory {
	return &Factory{embedder: embedder}
}

// Create builds a fresh index at dir from the given chunks. Any
// existing content in dir is replaced. On failure the directory is
// wiped back to an empty state and the error wraps domain.ErrIndexCreate.
func (f *Factory) Create(ctx context.Context, chunks []domain.Chunk, dir string) (driven.VectorStore, error) {
	store, err := f.create(ctx, chunks, dir)
	if err != nil {
		// Leave nothing half-written behind: a partial index would
		// fail the handshake on every subsequent startup.
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			logger.Warn("cleaning up failed index at %s: %v", dir, rmErr)
		}
		if mkErr := os.MkdirAll(dir, 0o700); mkErr != nil {
			logger.Warn("recreating index directory %s: %v", dir, mkErr)
		}
		return nil, fmt.Errorf("creating index: %w: %w", domain.ErrIndexCreate, err)
	}
	return store, nil
}

func (f *Factory) create(ctx context.Context, chunks []domain.Chunk, dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFileName)
	if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("removing stale index file: %w", err)
	}

	db, err := openDB(dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	if _, err := db.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES ('tenant', ?), ('model', ?), ('created_at', ?)`,
		tenantID, f.embedder.ModelName(), time.Now().UTC().Format(time.RFC3339)); err != nil {
		db.Close()
		return nil, fmt.Errorf("writing index metadata: %w", err)
	}

	store := &Store{db: db, dir: dir, embedder: f.embedder}
	if len(chunks) > 0 {
		if err := store.Add(ctx, chunks); err != nil {
			db.Close()
			return nil, err
		}
	}
	return store, nil
}

// Open attaches to an existing index at dir. A missing index is
// domain.ErrNotFound; a database that fails the tenant handshake is
// domain.ErrStoreConnection, the signal the repair flow keys off.
func (f *Factory) Open(dir string) (driven.VectorStore, error) {
	dbPath := filepath.Join(dir, dbFileName)
	if _, err := os.Stat(dbPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("index at %s: %w", dir, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("checking index at %s: %w", dir, err)
	}

	db, err := openDB(dbPath)
	if err != nil {
		return nil, err
	}

	var tenant string
	err = db.QueryRow(`SELECT value FROM meta WHERE key = 'tenant'`).Scan(&tenant)
	if err != nil || tenant != tenantID {
		db.Close()
		return nil, fmt.Errorf("tenant handshake failed, could not connect to index at %s: %w",
			dir, domain.ErrStoreConnection)
	}

	return &Store{db: db, dir: dir, embedder: f.embedder}, nil
}

func openDB(path string) (*sql.DB, error) {
	// WAL mode keeps reads cheap while the ingest transaction runs.
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening index database: %w", err)
	}
	return db, nil
}

// Add embeds the chunks and writes them in a single transaction.
func (s *Store) Add(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding %d chunks: %w", len(chunks), err)
	}
	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: got %d for %d chunks", len(embeddings), len(chunks))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (id, source, content, position, embedding) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, c := range chunks {
		blob := float32SliceToBytes(embeddings[i])
		if _, err := stmt.ExecContext(ctx, c.ID, c.Source, c.Content, c.Position, blob); err != nil {
			return fmt.Errorf("inserting chunk %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing chunks: %w", err)
	}
	return nil
}

// Search embeds the query and ranks every stored chunk by cosine
// similarity. Brute force is fine at this scale: a personal document
// library is thousands of chunks, not millions.
func (s *Store) Search(ctx context.Context, query string, k int) ([]domain.Chunk, error) {
	if k <= 0 {
		return nil, nil
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, content, position, embedding FROM chunks ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var scored []domain.Chunk
	for rows.Next() {
		var c domain.Chunk
		var blob []byte
		if err := rows.Scan(&c.ID, &c.Source, &c.Content, &c.Position, &blob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		c.Embedding = bytesToFloat32Slice(blob)
		c.Score = cosineSimilarity(queryVec, c.Embedding)
		scored = append(scored, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	// Stable sort preserves insertion order among equal scores.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// Count returns the number of indexed chunks.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

// Close closes the database connection. The directory cannot be wiped
// while the handle is open on some platforms, so the repair flow calls
// this first.
func (s *Store) Close() error {
	return s.db.Close()
}

// cosineSimilarity computes the cosine of the angle between a and b.
// Mismatched or zero-length vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

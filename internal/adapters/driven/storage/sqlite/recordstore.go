// Package sqlite provides the SQLite-backed document record store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/docsage/docsage/internal/core/domain"
	"github.com/docsage/docsage/internal/core/ports/driven"
)

// RecordStore persists one row per ingested document in metadata.db.
type RecordStore struct {
	db   *sql.DB
	path string
}

var _ driven.RecordStore = (*RecordStore)(nil)

// NewRecordStore opens (or creates) the metadata database under dataDir.
func NewRecordStore(dataDir string) (*RecordStore, error) {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "metadata.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening metadata database: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS documents (
			filename   TEXT PRIMARY KEY,
			title      TEXT NOT NULL,
			summary    TEXT NOT NULL,
			file_path  TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating documents table: %w", err)
	}

	return &RecordStore{db: db, path: dbPath}, nil
}

// Save stores or overwrites the record for rec.Filename.
func (s *RecordStore) Save(ctx context.Context, rec domain.DocumentRecord) error {
	if rec.Filename == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (filename, title, summary, file_path, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(filename) DO UPDATE SET
			title = excluded.title,
			summary = excluded.summary,
			file_path = excluded.file_path
	`, rec.Filename, rec.Title, rec.Summary, rec.FilePath, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving document record: %w", err)
	}
	return nil
}

// Get retrieves a record by filename.
func (s *RecordStore) Get(ctx context.Context, filename string) (*domain.DocumentRecord, error) {
	var rec domain.DocumentRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT filename, title, summary, file_path, created_at
		FROM documents WHERE filename = ?
	`, filename).Scan(&rec.Filename, &rec.Title, &rec.Summary, &rec.FilePath, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("document %s: %w", filename, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("getting document record: %w", err)
	}
	return &rec, nil
}

// List returns all records, oldest first.
func (s *RecordStore) List(ctx context.Context) ([]domain.DocumentRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT filename, title, summary, file_path, created_at
		FROM documents ORDER BY created_at, filename
	`)
	if err != nil {
		return nil, fmt.Errorf("listing document records: %w", err)
	}
	defer rows.Close()

	var records []domain.DocumentRecord
	for rows.Next() {
		var rec domain.DocumentRecord
		if err := rows.Scan(&rec.Filename, &rec.Title, &rec.Summary, &rec.FilePath, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning document record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating document records: %w", err)
	}
	return records, nil
}

// Delete removes a single record. Deleting an absent filename is not an
// error.
func (s *RecordStore) Delete(ctx context.Context, filename string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE filename = ?`, filename); err != nil {
		return fmt.Errorf("deleting document record: %w", err)
	}
	return nil
}

// Reset removes all records.
func (s *RecordStore) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents`); err != nil {
		return fmt.Errorf("resetting document records: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *RecordStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *RecordStore) Path() string {
	return s.path
}

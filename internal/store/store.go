// Package store tracks generated documents in a SQLite registry: one row per
// generated document with version and status, plus a revision history. The
// document text itself is persisted elsewhere; the registry only records
// lifecycle state.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Document statuses.
const (
	StatusDraft     = "draft"
	StatusGenerated = "generated"
	StatusApproved  = "approved"
	StatusArchived  = "archived"
)

// Document is one registry row.
type Document struct {
	ID        string
	Module    string
	Submodule string
	Title     string
	Version   string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Revision is one history entry for a document.
type Revision struct {
	DocumentID string
	Version    string
	Note       string
	CreatedAt  time.Time
}

// Store manages the document registry database.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Open creates or opens the registry at dbPath, creating parent directories
// as needed.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create registry directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry: %w", err)
	}

	s := &Store{db: db, dbPath: dbPath}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize registry schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id         TEXT PRIMARY KEY,
		module     TEXT NOT NULL,
		submodule  TEXT NOT NULL,
		title      TEXT NOT NULL,
		version    TEXT NOT NULL,
		status     TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS revisions (
		document_id TEXT NOT NULL REFERENCES documents(id),
		version     TEXT NOT NULL,
		note        TEXT NOT NULL,
		created_at  DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_documents_module ON documents(module, submodule);
	CREATE INDEX IF NOT EXISTS idx_revisions_document ON revisions(document_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Create inserts a new registry row and seeds its revision history. The
// generated id is returned on the document.
func (s *Store) Create(doc Document) (Document, error) {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.Status == "" {
		doc.Status = StatusGenerated
	}
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = doc.CreatedAt

	_, err := s.db.Exec(
		`INSERT INTO documents (id, module, submodule, title, version, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Module, doc.Submodule, doc.Title, doc.Version, doc.Status, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return Document{}, fmt.Errorf("failed to insert document: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO revisions (document_id, version, note, created_at) VALUES (?, ?, ?, ?)`,
		doc.ID, doc.Version, "Initial generated version", doc.CreatedAt)
	if err != nil {
		return Document{}, fmt.Errorf("failed to insert revision: %w", err)
	}

	return doc, nil
}

// UpdateStatus transitions a document's status and records a revision note.
func (s *Store) UpdateStatus(id, status, note string) error {
	now := time.Now().UTC()
	res, err := s.db.Exec(
		`UPDATE documents SET status = ?, updated_at = ? WHERE id = ?`, status, now, id)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("document %s not found", id)
	}

	var version string
	if err := s.db.QueryRow(`SELECT version FROM documents WHERE id = ?`, id).Scan(&version); err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO revisions (document_id, version, note, created_at) VALUES (?, ?, ?, ?)`,
		id, version, note, now)
	return err
}

// ListByModule returns registry rows for a module (optionally one
// submodule), newest first.
func (s *Store) ListByModule(module, submodule string) ([]Document, error) {
	query := `SELECT id, module, submodule, title, version, status, created_at, updated_at
	          FROM documents WHERE module = ?`
	args := []any{module}
	if submodule != "" {
		query += ` AND submodule = ?`
		args = append(args, submodule)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Module, &d.Submodule, &d.Title, &d.Version, &d.Status, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// History returns a document's revision entries, oldest first.
func (s *Store) History(documentID string) ([]Revision, error) {
	rows, err := s.db.Query(
		`SELECT document_id, version, note, created_at FROM revisions
		 WHERE document_id = ? ORDER BY created_at ASC`, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var revs []Revision
	for rows.Next() {
		var r Revision
		if err := rows.Scan(&r.DocumentID, &r.Version, &r.Note, &r.CreatedAt); err != nil {
			return nil, err
		}
		revs = append(revs, r)
	}
	return revs, rows.Err()
}

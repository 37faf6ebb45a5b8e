package document

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/redlinehq/redline/internal/db"
)

// Store manages persistence of documents and their sections.
type Store struct {
	db *db.DB
}

// NewStore creates a new document store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Create persists a document together with its sections.
func (s *Store) Create(ctx context.Context, doc Document) (*Document, error) {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (id, title, source_path, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		doc.ID, doc.Title, doc.SourcePath, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting document: %w", err)
	}

	for i, sec := range doc.Sections {
		doc.Sections[i].Position = i
		_, err = tx.ExecContext(ctx,
			`INSERT INTO sections (document_id, section_id, position, title, content) VALUES (?, ?, ?, ?, ?)`,
			doc.ID, sec.ID, i, sec.Title, sec.Content,
		)
		if err != nil {
			return nil, fmt.Errorf("inserting section %s: %w", sec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing document: %w", err)
	}
	return &doc, nil
}

// GetByID retrieves a document with all its sections. Returns nil if the
// document does not exist.
func (s *Store) GetByID(ctx context.Context, id string) (*Document, error) {
	var doc Document
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, source_path, created_at, updated_at FROM documents WHERE id = ?`, id,
	).Scan(&doc.ID, &doc.Title, &doc.SourcePath, &doc.CreatedAt, &doc.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting document: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT section_id, position, title, content FROM sections WHERE document_id = ? ORDER BY position`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("listing sections: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sec Section
		if err := rows.Scan(&sec.ID, &sec.Position, &sec.Title, &sec.Content); err != nil {
			return nil, fmt.Errorf("scanning section: %w", err)
		}
		doc.Sections = append(doc.Sections, sec)
	}
	return &doc, rows.Err()
}

// List returns all documents without their section contents.
func (s *Store) List(ctx context.Context) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, source_path, created_at, updated_at FROM documents ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.SourcePath, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// SectionText returns the current plain text of one section. The second
// return value is false when the section does not exist.
func (s *Store) SectionText(ctx context.Context, docID, sectionID string) (string, bool) {
	var content string
	err := s.db.QueryRowContext(ctx,
		`SELECT content FROM sections WHERE document_id = ? AND section_id = ?`, docID, sectionID,
	).Scan(&content)
	if err != nil {
		return "", false
	}
	return content, true
}

// UpdateSection replaces a section's text. Annotations over the old text
// become stale and are re-validated by the review service on next render.
func (s *Store) UpdateSection(ctx context.Context, docID, sectionID, content string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE sections SET content = ? WHERE document_id = ? AND section_id = ?`,
		content, docID, sectionID,
	)
	if err != nil {
		return fmt.Errorf("updating section: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("section not found: %s/%s", docID, sectionID)
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE documents SET updated_at = ? WHERE id = ?`, time.Now().UTC(), docID,
	)
	return err
}

// Delete removes a document and, via cascade, its sections and annotation
// records. Returns whether the document existed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting document: %w", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

package review

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/redlinehq/redline/internal/annotation"
	"github.com/redlinehq/redline/internal/db"
)

// Store persists raw annotation records per document. The engine owns the
// live annotations; this store only mirrors their wire shape so a document
// session can be reloaded later.
type Store struct {
	db *db.DB
}

// NewStore creates a new annotation record store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Upsert writes one record, replacing any existing record with the same id.
func (s *Store) Upsert(ctx context.Context, docID string, rec annotation.Record) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO annotation_records (id, document_id, section_id, kind, start_offset, end_offset, anchor_text, color, comment_text, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   section_id = excluded.section_id,
		   start_offset = excluded.start_offset,
		   end_offset = excluded.end_offset,
		   anchor_text = excluded.anchor_text,
		   color = excluded.color,
		   comment_text = excluded.comment_text,
		   updated_at = excluded.updated_at`,
		rec.ID, docID, rec.SectionID, rec.Kind, rec.Start, rec.End, rec.AnchorText,
		nullable(rec.Color), nullable(rec.CommentText), now, now,
	)
	if err != nil {
		return fmt.Errorf("upserting annotation record: %w", err)
	}
	return nil
}

// Delete removes one record by id. Missing ids are not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM annotation_records WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting annotation record: %w", err)
	}
	return nil
}

// ListByDocument returns all records for a document in creation order.
func (s *Store) ListByDocument(ctx context.Context, docID string) ([]annotation.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, section_id, kind, start_offset, end_offset, anchor_text, color, comment_text
		 FROM annotation_records WHERE document_id = ? ORDER BY created_at, id`, docID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing annotation records: %w", err)
	}
	defer rows.Close()

	var records []annotation.Record
	for rows.Next() {
		var rec annotation.Record
		var start, end sql.NullInt64
		var color, commentText sql.NullString
		if err := rows.Scan(&rec.ID, &rec.SectionID, &rec.Kind, &start, &end, &rec.AnchorText, &color, &commentText); err != nil {
			return nil, fmt.Errorf("scanning annotation record: %w", err)
		}
		if start.Valid {
			v := int(start.Int64)
			rec.Start = &v
		}
		if end.Valid {
			v := int(end.Int64)
			rec.End = &v
		}
		rec.Color = color.String
		rec.CommentText = commentText.String
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ReplaceDocument swaps all of a document's records for the given set.
func (s *Store) ReplaceDocument(ctx context.Context, docID string, records []annotation.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM annotation_records WHERE document_id = ?`, docID); err != nil {
		return fmt.Errorf("clearing annotation records: %w", err)
	}
	now := time.Now().UTC()
	for _, rec := range records {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO annotation_records (id, document_id, section_id, kind, start_offset, end_offset, anchor_text, color, comment_text, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, docID, rec.SectionID, rec.Kind, rec.Start, rec.End, rec.AnchorText,
			nullable(rec.Color), nullable(rec.CommentText), now, now,
		)
		if err != nil {
			return fmt.Errorf("inserting annotation record %s: %w", rec.ID, err)
		}
	}
	return tx.Commit()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

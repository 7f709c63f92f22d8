package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmoraes/driver-finance/internal/domain"
)

// InsertDocument records the metadata for a freshly uploaded statement.
func (s *Store) InsertDocument(ctx context.Context, d *domain.Document) error {
	d.UploadedAt = time.Now()
	if d.ParsingStatus == "" {
		d.ParsingStatus = domain.ParsingPending
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (
			id, user_id, filename, stored_path, checksum_sha256,
			source, format, parsing_status, imported_count, skipped_count,
			error_message, uploaded_at, processed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.UserID, d.Filename, d.StoredPath, d.ChecksumSHA256,
		d.Source, d.Format, d.ParsingStatus, d.ImportedCount, d.SkippedCount,
		d.ErrorMessage, formatTime(d.UploadedAt), formatNullTime(d.ProcessedAt),
	)
	if err != nil {
		return fmt.Errorf("InsertDocument: %w", err)
	}
	return nil
}

// GetDocument returns one of a user's documents by id, or ErrNotFound.
func (s *Store) GetDocument(ctx context.Context, userID int64, id string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, filename, stored_path, checksum_sha256,
		       source, format, parsing_status, imported_count, skipped_count,
		       error_message, uploaded_at, processed_at
		FROM documents WHERE user_id = ? AND id = ?`,
		userID, id,
	)
	d, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetDocument: %w", err)
	}
	return d, nil
}

// GetDocumentAny returns a document by id regardless of owner. The ingestion
// worker uses it because jobs carry the user id separately.
func (s *Store) GetDocumentAny(ctx context.Context, id string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, filename, stored_path, checksum_sha256,
		       source, format, parsing_status, imported_count, skipped_count,
		       error_message, uploaded_at, processed_at
		FROM documents WHERE id = ?`,
		id,
	)
	d, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetDocumentAny: %w", err)
	}
	return d, nil
}

// ListDocuments returns a user's uploads, newest-first.
func (s *Store) ListDocuments(ctx context.Context, userID int64) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, filename, stored_path, checksum_sha256,
		       source, format, parsing_status, imported_count, skipped_count,
		       error_message, uploaded_at, processed_at
		FROM documents WHERE user_id = ? ORDER BY uploaded_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListDocuments: %w", err)
	}
	defer rows.Close()

	var out []domain.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("ListDocuments: %w", err)
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListDocuments: %w", err)
	}
	return out, nil
}

// MarkDocumentRunning moves a document to RUNNING when the worker picks its
// job up.
func (s *Store) MarkDocumentRunning(ctx context.Context, id string) error {
	return s.setDocumentStatus(ctx, "MarkDocumentRunning", id, `
		UPDATE documents SET parsing_status = ? WHERE id = ?`,
		domain.ParsingRunning, id)
}

// MarkDocumentParsed records a successful parse along with how many rows were
// imported and how many were rejected as duplicates.
func (s *Store) MarkDocumentParsed(ctx context.Context, id string, imported, skipped int) error {
	return s.setDocumentStatus(ctx, "MarkDocumentParsed", id, `
		UPDATE documents
		SET parsing_status = ?, imported_count = ?, skipped_count = ?,
		    error_message = '', processed_at = ?
		WHERE id = ?`,
		domain.ParsingParsed, imported, skipped, formatTime(time.Now()), id)
}

// MarkDocumentFailed records a fatal parse failure.
func (s *Store) MarkDocumentFailed(ctx context.Context, id string, errMsg string) error {
	return s.setDocumentStatus(ctx, "MarkDocumentFailed", id, `
		UPDATE documents
		SET parsing_status = ?, error_message = ?, processed_at = ?
		WHERE id = ?`,
		domain.ParsingFailed, errMsg, formatTime(time.Now()), id)
}

func (s *Store) setDocumentStatus(ctx context.Context, op, id, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: document %s: %w", op, id, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var (
		d           domain.Document
		uploadedAt  string
		processedAt sql.NullString
	)
	err := row.Scan(
		&d.ID, &d.UserID, &d.Filename, &d.StoredPath, &d.ChecksumSHA256,
		&d.Source, &d.Format, &d.ParsingStatus, &d.ImportedCount, &d.SkippedCount,
		&d.ErrorMessage, &uploadedAt, &processedAt,
	)
	if err != nil {
		return nil, err
	}
	if d.UploadedAt, err = parseTime(uploadedAt); err != nil {
		return nil, err
	}
	if d.ProcessedAt, err = parseNullTime(processedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

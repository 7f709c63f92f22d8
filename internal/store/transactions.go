package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmoraes/driver-finance/internal/domain"
)

// InsertTransaction stores a manually created transaction.
func (s *Store) InsertTransaction(ctx context.Context, tx *domain.Transaction) error {
	tx.CreatedAt = time.Now()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (
			user_id, category_id, amount, description, type,
			source, external_id, date, created_at
		) VALUES (?, ?, ?, ?, ?, ?, NULLIF(?, ''), ?, ?)`,
		tx.UserID, tx.CategoryID, tx.Amount.String(), tx.Description, tx.Type,
		tx.Source, tx.ExternalID, formatTime(tx.Date), formatTime(tx.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("InsertTransaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("InsertTransaction: last insert id: %w", err)
	}
	tx.ID = id
	return nil
}

// InsertIfFingerprintAbsent stores an imported transaction unless the user
// already has one with the same dedup fingerprint. It reports whether a row
// was actually inserted, which the ingestion worker turns into
// imported/skipped counts. The uniqueness is enforced by a partial unique
// index on (user_id, external_id), so concurrent imports cannot race past the
// check.
func (s *Store) InsertIfFingerprintAbsent(ctx context.Context, tx *domain.Transaction) (bool, error) {
	if tx.ExternalID == "" {
		return false, fmt.Errorf("InsertIfFingerprintAbsent: empty fingerprint")
	}
	tx.CreatedAt = time.Now()

	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO transactions (
			user_id, category_id, amount, description, type,
			source, external_id, date, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.UserID, tx.CategoryID, tx.Amount.String(), tx.Description, tx.Type,
		tx.Source, tx.ExternalID, formatTime(tx.Date), formatTime(tx.CreatedAt),
	)
	if err != nil {
		return false, fmt.Errorf("InsertIfFingerprintAbsent: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("InsertIfFingerprintAbsent: rows affected: %w", err)
	}
	if affected == 0 {
		return false, nil
	}
	id, err := res.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("InsertIfFingerprintAbsent: last insert id: %w", err)
	}
	tx.ID = id
	return true, nil
}

// ListTransactions returns a user's transactions newest-first with optional
// pagination; limit <= 0 means no limit.
func (s *Store) ListTransactions(ctx context.Context, userID int64, limit, offset int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.user_id, t.category_id, t.amount, t.description, t.type,
		       t.source, COALESCE(t.external_id, ''), t.date, t.created_at,
		       COALESCE(c.name, '')
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = ?
		ORDER BY t.date DESC
		LIMIT ? OFFSET ?`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("ListTransactions: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// ListTransactionsByDateRange returns a user's transactions between start and
// end inclusive, newest-first.
func (s *Store) ListTransactionsByDateRange(ctx context.Context, userID int64, start, end time.Time) ([]domain.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.user_id, t.category_id, t.amount, t.description, t.type,
		       t.source, COALESCE(t.external_id, ''), t.date, t.created_at,
		       COALESCE(c.name, '')
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = ? AND t.date >= ? AND t.date <= ?
		ORDER BY t.date DESC`,
		userID, formatTime(start), formatTime(end),
	)
	if err != nil {
		return nil, fmt.Errorf("ListTransactionsByDateRange: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// ListAllTransactions returns everything a user has, oldest-first, for the
// profile rollups.
func (s *Store) ListAllTransactions(ctx context.Context, userID int64) ([]domain.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.user_id, t.category_id, t.amount, t.description, t.type,
		       t.source, COALESCE(t.external_id, ''), t.date, t.created_at,
		       COALESCE(c.name, '')
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = ?
		ORDER BY t.date ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListAllTransactions: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func scanTransactions(rows *sql.Rows) ([]domain.Transaction, error) {
	var out []domain.Transaction
	for rows.Next() {
		var (
			t          domain.Transaction
			categoryID sql.NullInt64
			amount     string
			date       string
			createdAt  string
		)
		if err := rows.Scan(
			&t.ID, &t.UserID, &categoryID, &amount, &t.Description, &t.Type,
			&t.Source, &t.ExternalID, &date, &createdAt, &t.CategoryName,
		); err != nil {
			return nil, fmt.Errorf("scanTransactions: %w", err)
		}
		if categoryID.Valid {
			t.CategoryID = &categoryID.Int64
		}
		var err error
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("scanTransactions: amount %q: %w", amount, err)
		}
		if t.Date, err = parseTime(date); err != nil {
			return nil, fmt.Errorf("scanTransactions: %w", err)
		}
		if t.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("scanTransactions: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scanTransactions: %w", err)
	}
	return out, nil
}

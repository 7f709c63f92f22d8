package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmoraes/driver-finance/internal/domain"
)

// CreateCategory inserts a category for a user and fills in its ID.
func (s *Store) CreateCategory(ctx context.Context, c *domain.Category) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (user_id, name, type, icon, color, is_default)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.UserID, c.Name, c.Type, c.Icon, c.Color, c.IsDefault,
	)
	if err != nil {
		return fmt.Errorf("CreateCategory: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("CreateCategory: last insert id: %w", err)
	}
	c.ID = id
	return nil
}

// ListCategories returns all of a user's categories.
func (s *Store) ListCategories(ctx context.Context, userID int64) ([]domain.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, type, icon, color, is_default
		FROM categories WHERE user_id = ? ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListCategories: %w", err)
	}
	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Type, &c.Icon, &c.Color, &c.IsDefault); err != nil {
			return nil, fmt.Errorf("ListCategories: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListCategories: %w", err)
	}
	return out, nil
}

// GetCategory returns one of a user's categories by id, or ErrNotFound.
func (s *Store) GetCategory(ctx context.Context, userID, id int64) (*domain.Category, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, type, icon, color, is_default
		FROM categories WHERE user_id = ? AND id = ?`,
		userID, id,
	)
	var c domain.Category
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Type, &c.Icon, &c.Color, &c.IsDefault)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetCategory: %w", err)
	}
	return &c, nil
}

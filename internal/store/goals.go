package store

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmoraes/driver-finance/internal/domain"
)

// CreateGoal inserts a goal and fills in its ID.
func (s *Store) CreateGoal(ctx context.Context, g *domain.Goal) error {
	g.CreatedAt = time.Now()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO goals (
			user_id, title, description, type, category, target, current,
			deadline, priority, is_active, is_completed, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.UserID, g.Title, g.Description, g.Type, g.Category,
		g.Target.String(), g.Current.String(),
		g.Deadline, g.Priority, g.IsActive, g.IsCompleted, formatTime(g.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("CreateGoal: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("CreateGoal: last insert id: %w", err)
	}
	g.ID = id
	return nil
}

// ListGoals returns all of a user's goals.
func (s *Store) ListGoals(ctx context.Context, userID int64) ([]domain.Goal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, description, type, category, target, current,
		       deadline, priority, is_active, is_completed, created_at
		FROM goals WHERE user_id = ? ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListGoals: %w", err)
	}
	defer rows.Close()

	var out []domain.Goal
	for rows.Next() {
		var (
			g         domain.Goal
			target    string
			current   string
			createdAt string
		)
		if err := rows.Scan(
			&g.ID, &g.UserID, &g.Title, &g.Description, &g.Type, &g.Category,
			&target, &current, &g.Deadline, &g.Priority, &g.IsActive, &g.IsCompleted, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("ListGoals: %w", err)
		}
		var err error
		if g.Target, err = decimal.NewFromString(target); err != nil {
			return nil, fmt.Errorf("ListGoals: target %q: %w", target, err)
		}
		if g.Current, err = decimal.NewFromString(current); err != nil {
			return nil, fmt.Errorf("ListGoals: current %q: %w", current, err)
		}
		if g.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("ListGoals: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListGoals: %w", err)
	}
	return out, nil
}

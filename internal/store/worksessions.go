package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmoraes/driver-finance/internal/domain"
)

// CreateWorkSession inserts a work session and fills in its ID.
func (s *Store) CreateWorkSession(ctx context.Context, ws *domain.WorkSession) error {
	ws.CreatedAt = time.Now()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO work_sessions (user_id, start_time, end_time, total_minutes, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		ws.UserID, formatTime(ws.StartTime), formatNullTime(ws.EndTime),
		ws.TotalMinutes, ws.Date, formatTime(ws.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("CreateWorkSession: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("CreateWorkSession: last insert id: %w", err)
	}
	ws.ID = id
	return nil
}

// ListWorkSessions returns all of a user's work sessions, oldest-first.
func (s *Store) ListWorkSessions(ctx context.Context, userID int64) ([]domain.WorkSession, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, start_time, end_time, total_minutes, date, created_at
		FROM work_sessions WHERE user_id = ? ORDER BY start_time ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListWorkSessions: %w", err)
	}
	defer rows.Close()

	var out []domain.WorkSession
	for rows.Next() {
		var (
			ws        domain.WorkSession
			startTime string
			endTime   sql.NullString
			createdAt string
		)
		if err := rows.Scan(&ws.ID, &ws.UserID, &startTime, &endTime, &ws.TotalMinutes, &ws.Date, &createdAt); err != nil {
			return nil, fmt.Errorf("ListWorkSessions: %w", err)
		}
		var err error
		if ws.StartTime, err = parseTime(startTime); err != nil {
			return nil, fmt.Errorf("ListWorkSessions: %w", err)
		}
		if ws.EndTime, err = parseNullTime(endTime); err != nil {
			return nil, fmt.Errorf("ListWorkSessions: %w", err)
		}
		if ws.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("ListWorkSessions: %w", err)
		}
		out = append(out, ws)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListWorkSessions: %w", err)
	}
	return out, nil
}

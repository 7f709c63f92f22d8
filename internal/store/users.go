package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmoraes/driver-finance/internal/domain"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("store: not found")

// CreateUser inserts a new user and fills in its ID and timestamps.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (
			username, password_hash, email, full_name, phone,
			is_paid, payment_status, payment_method, subscription_type,
			trial_ends_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.Username, u.PasswordHash, u.Email, u.FullName, u.Phone,
		u.IsPaid, u.PaymentStatus, u.PaymentMethod, u.SubscriptionType,
		formatNullTime(u.TrialEndsAt), formatTime(u.CreatedAt), formatTime(u.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("CreateUser: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("CreateUser: last insert id: %w", err)
	}
	u.ID = id
	return nil
}

// GetUserByUsername returns the user with the given username, or ErrNotFound.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.getUser(ctx, "username = ?", username)
}

// GetUserByEmail returns the user with the given email, or ErrNotFound.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getUser(ctx, "email = ?", email)
}

// GetUserByID returns the user with the given id, or ErrNotFound.
func (s *Store) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.getUser(ctx, "id = ?", id)
}

func (s *Store) getUser(ctx context.Context, where string, arg any) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, email, full_name, phone,
		       is_paid, payment_status, payment_method, subscription_type,
		       trial_ends_at, created_at, updated_at
		FROM users WHERE `+where, arg)

	var (
		u           domain.User
		trialEndsAt sql.NullString
		createdAt   string
		updatedAt   string
	)
	err := row.Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.Email, &u.FullName, &u.Phone,
		&u.IsPaid, &u.PaymentStatus, &u.PaymentMethod, &u.SubscriptionType,
		&trialEndsAt, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getUser: %w", err)
	}

	if u.TrialEndsAt, err = parseNullTime(trialEndsAt); err != nil {
		return nil, fmt.Errorf("getUser: %w", err)
	}
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("getUser: %w", err)
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("getUser: %w", err)
	}
	return &u, nil
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Goal is a self-set target such as "earn R$ 500 this week".
type Goal struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Type        string          `json:"type"`     // daily, weekly, monthly
	Category    string          `json:"category"` // income, hours, trips
	Target      decimal.Decimal `json:"target"`
	Current     decimal.Decimal `json:"current"`
	Deadline    string          `json:"deadline"`
	Priority    string          `json:"priority"`
	IsActive    bool            `json:"is_active"`
	IsCompleted bool            `json:"is_completed"`
	CreatedAt   time.Time       `json:"created_at"`
}

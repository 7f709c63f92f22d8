package domain

import "time"

// WorkSession records one stretch of driving time. Date is the calendar day
// in YYYY-MM-DD form; the profile activity calendar is built from it.
type WorkSession struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	TotalMinutes int        `json:"total_minutes"`
	Date         string     `json:"date"`
	CreatedAt    time.Time  `json:"created_at"`
}

package domain

import "time"

// User is a registered driver account.
type User struct {
	ID               int64      `json:"id"`
	Username         string     `json:"username"`
	PasswordHash     string     `json:"-"`
	Email            string     `json:"email"`
	FullName         string     `json:"full_name,omitempty"`
	Phone            string     `json:"phone,omitempty"`
	IsPaid           bool       `json:"is_paid"`
	PaymentStatus    string     `json:"payment_status,omitempty"`
	PaymentMethod    string     `json:"payment_method,omitempty"`
	SubscriptionType string     `json:"subscription_type,omitempty"`
	TrialEndsAt      *time.Time `json:"trial_ends_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// PlanStatus computes the subscription state shown to the app: active while
// the user has paid or their trial has not expired yet.
func (u *User) PlanStatus(now time.Time) string {
	if u.IsPaid {
		return "active"
	}
	if u.TrialEndsAt != nil && !now.After(*u.TrialEndsAt) {
		return "active"
	}
	return "inactive"
}

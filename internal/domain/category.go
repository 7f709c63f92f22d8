package domain

// Category groups transactions. Ride platforms double as income categories,
// so the profile breakdown reports earnings per category name.
type Category struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Name      string          `json:"name"`
	Type      TransactionType `json:"type"`
	Icon      string          `json:"icon,omitempty"`
	Color     string          `json:"color,omitempty"`
	IsDefault bool            `json:"is_default"`
}

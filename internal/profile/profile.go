// Package profile computes the aggregated view of a driver's history: all
// time stats, monthly performance, earnings per platform and achievement
// progress. It is pure; the HTTP handler feeds it rows from the store.
package profile

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmoraes/driver-finance/internal/domain"
)

// Stats is the all-time summary block.
type Stats struct {
	TotalTrips             int             `json:"total_trips"`
	TotalEarnings          decimal.Decimal `json:"total_earnings"`
	TotalExpenses          decimal.Decimal `json:"total_expenses"`
	NetProfit              decimal.Decimal `json:"net_profit"`
	TotalHours             int             `json:"total_hours"`
	AveragePerTrip         decimal.Decimal `json:"average_per_trip"`
	AveragePerHour         decimal.Decimal `json:"average_per_hour"`
	BestMonthEarnings      decimal.Decimal `json:"best_month_earnings"`
	MonthlyAverageEarnings decimal.Decimal `json:"monthly_average_earnings"`
}

// MonthlyPerformance is one month of the trailing-year series.
type MonthlyPerformance struct {
	Month    string          `json:"month"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Profit   decimal.Decimal `json:"profit"`
	Trips    int             `json:"trips"`
}

// PlatformBreakdown groups income by the transaction's category name.
type PlatformBreakdown struct {
	Name       string          `json:"name"`
	Earnings   decimal.Decimal `json:"earnings"`
	Trips      int             `json:"trips"`
	Percentage decimal.Decimal `json:"percentage"`
}

// Achievement is one fixed milestone with progress toward it.
type Achievement struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Achieved    bool    `json:"achieved"`
	Progress    float64 `json:"progress"`
	Goal        int     `json:"goal"`
}

// PersonalInfo is the user block of the profile response.
type PersonalInfo struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	FullName   string `json:"full_name,omitempty"`
	Phone      string `json:"phone,omitempty"`
	PlanStatus string `json:"plan_status"`
}

// Profile is the full aggregated response.
type Profile struct {
	PersonalInfo       PersonalInfo         `json:"personal_info"`
	Stats              Stats                `json:"stats"`
	MonthlyPerformance []MonthlyPerformance `json:"monthly_performance"`
	PlatformBreakdown  []PlatformBreakdown  `json:"platform_breakdown"`
	Achievements       []Achievement        `json:"achievements"`
	ActivityCalendar   []string             `json:"activity_calendar"`
}

// Build computes the profile from a user's full transaction and work-session
// history. Every trip is an income transaction; hours come from session
// minutes.
func Build(user *domain.User, txs []domain.Transaction, sessions []domain.WorkSession, now time.Time) *Profile {
	var (
		totalEarnings = decimal.Zero
		totalExpenses = decimal.Zero
		totalTrips    int
		totalMinutes  int
	)
	for _, tx := range txs {
		switch tx.Type {
		case domain.TypeIncome:
			totalEarnings = totalEarnings.Add(tx.Amount)
			totalTrips++
		case domain.TypeExpense:
			totalExpenses = totalExpenses.Add(tx.Amount)
		}
	}
	for _, ws := range sessions {
		totalMinutes += ws.TotalMinutes
	}
	totalHours := int(float64(totalMinutes)/60 + 0.5)

	monthly := monthlyPerformance(txs, now)

	best := decimal.Zero
	sum := decimal.Zero
	for _, m := range monthly {
		if m.Income.GreaterThan(best) {
			best = m.Income
		}
		sum = sum.Add(m.Income)
	}
	monthlyAverage := decimal.Zero
	if len(monthly) > 0 {
		monthlyAverage = sum.Div(decimal.NewFromInt(int64(len(monthly))))
	}

	stats := Stats{
		TotalTrips:             totalTrips,
		TotalEarnings:          totalEarnings,
		TotalExpenses:          totalExpenses,
		NetProfit:              totalEarnings.Sub(totalExpenses),
		TotalHours:             totalHours,
		AveragePerTrip:         decimal.Zero,
		AveragePerHour:         decimal.Zero,
		BestMonthEarnings:      best,
		MonthlyAverageEarnings: monthlyAverage,
	}
	if totalTrips > 0 {
		stats.AveragePerTrip = totalEarnings.Div(decimal.NewFromInt(int64(totalTrips)))
	}
	if totalMinutes > 0 {
		hours := decimal.NewFromInt(int64(totalMinutes)).Div(decimal.NewFromInt(60))
		stats.AveragePerHour = totalEarnings.Div(hours)
	}

	return &Profile{
		PersonalInfo: PersonalInfo{
			ID:         user.ID,
			Username:   user.Username,
			Email:      user.Email,
			FullName:   user.FullName,
			Phone:      user.Phone,
			PlanStatus: user.PlanStatus(now),
		},
		Stats:              stats,
		MonthlyPerformance: monthly,
		PlatformBreakdown:  platformBreakdown(txs, totalEarnings),
		Achievements:       achievements(totalTrips, totalEarnings, totalHours),
		ActivityCalendar:   activityCalendar(sessions),
	}
}

// monthlyPerformance returns the last 12 calendar months oldest-first,
// including the current one.
func monthlyPerformance(txs []domain.Transaction, now time.Time) []MonthlyPerformance {
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	out := make([]MonthlyPerformance, 0, 12)
	for i := 11; i >= 0; i-- {
		start := firstOfMonth.AddDate(0, -i, 0)
		end := start.AddDate(0, 1, 0)

		m := MonthlyPerformance{
			Month:    start.Format("Jan/2006"),
			Income:   decimal.Zero,
			Expenses: decimal.Zero,
		}
		for _, tx := range txs {
			if tx.Date.Before(start) || !tx.Date.Before(end) {
				continue
			}
			switch tx.Type {
			case domain.TypeIncome:
				m.Income = m.Income.Add(tx.Amount)
				m.Trips++
			case domain.TypeExpense:
				m.Expenses = m.Expenses.Add(tx.Amount)
			}
		}
		m.Profit = m.Income.Sub(m.Expenses)
		out = append(out, m)
	}
	return out
}

func platformBreakdown(txs []domain.Transaction, totalEarnings decimal.Decimal) []PlatformBreakdown {
	type agg struct {
		earnings decimal.Decimal
		trips    int
	}
	groups := make(map[string]*agg)
	var order []string
	for _, tx := range txs {
		if tx.Type != domain.TypeIncome {
			continue
		}
		name := tx.CategoryName
		if name == "" {
			name = "Outros"
		}
		g, ok := groups[name]
		if !ok {
			g = &agg{earnings: decimal.Zero}
			groups[name] = g
			order = append(order, name)
		}
		g.earnings = g.earnings.Add(tx.Amount)
		g.trips++
	}

	hundred := decimal.NewFromInt(100)
	out := make([]PlatformBreakdown, 0, len(order))
	for _, name := range order {
		g := groups[name]
		pct := decimal.Zero
		if totalEarnings.IsPositive() {
			pct = g.earnings.Div(totalEarnings).Mul(hundred).Round(2)
		}
		out = append(out, PlatformBreakdown{
			Name:       name,
			Earnings:   g.earnings,
			Trips:      g.trips,
			Percentage: pct,
		})
	}
	return out
}

func achievements(totalTrips int, totalEarnings decimal.Decimal, totalHours int) []Achievement {
	earnings, _ := totalEarnings.Float64()
	milestones := []struct {
		id          int
		title       string
		description string
		goal        int
		value       float64
	}{
		{1, "Primeira Centena", "Complete 100 corridas", 100, float64(totalTrips)},
		{2, "Estrela de Ouro", "Alcance R$ 1.000 em ganhos", 1000, earnings},
		{3, "Maratonista", "Trabalhe 100+ horas", 100, float64(totalHours)},
		{4, "Especialista", "Complete 500 corridas", 500, float64(totalTrips)},
	}

	out := make([]Achievement, 0, len(milestones))
	for _, m := range milestones {
		progress := m.value / float64(m.goal) * 100
		if progress > 100 {
			progress = 100
		}
		out = append(out, Achievement{
			ID:          m.id,
			Title:       m.title,
			Description: m.description,
			Achieved:    m.value >= float64(m.goal),
			Progress:    progress,
			Goal:        m.goal,
		})
	}
	return out
}

// activityCalendar returns the distinct dates the driver worked, sorted.
func activityCalendar(sessions []domain.WorkSession) []string {
	seen := make(map[string]bool)
	var out []string
	for _, ws := range sessions {
		if ws.Date == "" || seen[ws.Date] {
			continue
		}
		seen[ws.Date] = true
		out = append(out, ws.Date)
	}
	sort.Strings(out)
	return out
}

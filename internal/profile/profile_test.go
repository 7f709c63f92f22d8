package profile

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmoraes/driver-finance/internal/domain"
)

var now = time.Date(2025, 7, 21, 12, 0, 0, 0, time.UTC)

func income(amount string, date time.Time, category string) domain.Transaction {
	return domain.Transaction{
		Type:         domain.TypeIncome,
		Amount:       decimal.RequireFromString(amount),
		Date:         date,
		CategoryName: category,
	}
}

func expense(amount string, date time.Time) domain.Transaction {
	return domain.Transaction{
		Type:   domain.TypeExpense,
		Amount: decimal.RequireFromString(amount),
		Date:   date,
	}
}

func TestBuildStats(t *testing.T) {
	user := &domain.User{ID: 1, Username: "maria", Email: "m@example.com", IsPaid: true}
	txs := []domain.Transaction{
		income("100", now.AddDate(0, 0, -1), "Uber"),
		income("50", now.AddDate(0, 0, -2), "99"),
		expense("30", now.AddDate(0, 0, -1)),
	}
	sessions := []domain.WorkSession{
		{TotalMinutes: 90, Date: "2025-07-20"},
		{TotalMinutes: 30, Date: "2025-07-19"},
	}

	p := Build(user, txs, sessions, now)

	if p.Stats.TotalTrips != 2 {
		t.Errorf("TotalTrips = %d, want 2", p.Stats.TotalTrips)
	}
	if !p.Stats.TotalEarnings.Equal(decimal.RequireFromString("150")) {
		t.Errorf("TotalEarnings = %s, want 150", p.Stats.TotalEarnings)
	}
	if !p.Stats.NetProfit.Equal(decimal.RequireFromString("120")) {
		t.Errorf("NetProfit = %s, want 120", p.Stats.NetProfit)
	}
	if p.Stats.TotalHours != 2 {
		t.Errorf("TotalHours = %d, want 2", p.Stats.TotalHours)
	}
	if !p.Stats.AveragePerTrip.Equal(decimal.RequireFromString("75")) {
		t.Errorf("AveragePerTrip = %s, want 75", p.Stats.AveragePerTrip)
	}
	// 150 earned over 2 hours of work.
	if !p.Stats.AveragePerHour.Equal(decimal.RequireFromString("75")) {
		t.Errorf("AveragePerHour = %s, want 75", p.Stats.AveragePerHour)
	}
	if p.PersonalInfo.PlanStatus != "active" {
		t.Errorf("PlanStatus = %q, want active", p.PersonalInfo.PlanStatus)
	}
}

func TestBuildEmptyHistory(t *testing.T) {
	user := &domain.User{ID: 1, Username: "novo"}

	p := Build(user, nil, nil, now)

	if p.Stats.TotalTrips != 0 {
		t.Errorf("TotalTrips = %d, want 0", p.Stats.TotalTrips)
	}
	if !p.Stats.AveragePerTrip.IsZero() || !p.Stats.AveragePerHour.IsZero() {
		t.Error("averages should be zero with no history")
	}
	if len(p.MonthlyPerformance) != 12 {
		t.Errorf("months = %d, want 12", len(p.MonthlyPerformance))
	}
	if len(p.Achievements) != 4 {
		t.Errorf("achievements = %d, want 4", len(p.Achievements))
	}
	if p.PersonalInfo.PlanStatus != "inactive" {
		t.Errorf("PlanStatus = %q, want inactive", p.PersonalInfo.PlanStatus)
	}
}

func TestMonthlyPerformanceWindow(t *testing.T) {
	txs := []domain.Transaction{
		income("10", now, "Uber"),                   // current month
		income("20", now.AddDate(0, -11, 0), "Uber"), // oldest month in window
		income("99", now.AddDate(-1, -1, 0), "Uber"), // outside window
	}

	p := Build(&domain.User{}, txs, nil, now)

	months := p.MonthlyPerformance
	if len(months) != 12 {
		t.Fatalf("months = %d, want 12", len(months))
	}
	if months[0].Month != "Aug/2024" {
		t.Errorf("first month = %q, want Aug/2024", months[0].Month)
	}
	if months[11].Month != "Jul/2025" {
		t.Errorf("last month = %q, want Jul/2025", months[11].Month)
	}
	if !months[0].Income.Equal(decimal.RequireFromString("20")) {
		t.Errorf("oldest income = %s, want 20", months[0].Income)
	}
	if !months[11].Income.Equal(decimal.RequireFromString("10")) {
		t.Errorf("current income = %s, want 10", months[11].Income)
	}
	var total decimal.Decimal
	for _, m := range months {
		total = total.Add(m.Income)
	}
	if !total.Equal(decimal.RequireFromString("30")) {
		t.Errorf("window total = %s, want 30 (year-old row leaked in)", total)
	}
}

func TestPlatformBreakdown(t *testing.T) {
	txs := []domain.Transaction{
		income("75", now, "Uber"),
		income("25", now, ""),
		expense("10", now),
	}

	p := Build(&domain.User{}, txs, nil, now)

	if len(p.PlatformBreakdown) != 2 {
		t.Fatalf("platforms = %d, want 2", len(p.PlatformBreakdown))
	}
	byName := map[string]PlatformBreakdown{}
	for _, pb := range p.PlatformBreakdown {
		byName[pb.Name] = pb
	}
	uber, ok := byName["Uber"]
	if !ok {
		t.Fatal("missing Uber breakdown")
	}
	if !uber.Percentage.Equal(decimal.RequireFromString("75")) {
		t.Errorf("Uber percentage = %s, want 75", uber.Percentage)
	}
	outros, ok := byName["Outros"]
	if !ok {
		t.Fatal("uncategorized income not grouped under Outros")
	}
	if outros.Trips != 1 {
		t.Errorf("Outros trips = %d, want 1", outros.Trips)
	}
}

func TestAchievements(t *testing.T) {
	// 120 income rows of R$ 10 each: trips goal met, earnings partway.
	var txs []domain.Transaction
	for i := 0; i < 120; i++ {
		txs = append(txs, income("10", now, "Uber"))
	}

	p := Build(&domain.User{}, txs, nil, now)

	a := p.Achievements
	if !a[0].Achieved {
		t.Error("100-trip milestone should be achieved at 120 trips")
	}
	if a[0].Progress != 100 {
		t.Errorf("progress capped at 100, got %f", a[0].Progress)
	}
	if !a[1].Achieved {
		t.Error("R$1000 milestone should be achieved at R$1200")
	}
	if a[2].Achieved {
		t.Error("hours milestone achieved with no sessions")
	}
	if a[3].Achieved {
		t.Error("500-trip milestone achieved at 120 trips")
	}
	if want := 120.0 / 500 * 100; a[3].Progress != want {
		t.Errorf("500-trip progress = %f, want %f", a[3].Progress, want)
	}
}

func TestActivityCalendar(t *testing.T) {
	sessions := []domain.WorkSession{
		{Date: "2025-07-20"},
		{Date: "2025-07-18"},
		{Date: "2025-07-20"}, // duplicate day
	}

	p := Build(&domain.User{}, nil, sessions, now)

	want := []string{"2025-07-18", "2025-07-20"}
	if len(p.ActivityCalendar) != len(want) {
		t.Fatalf("calendar = %v, want %v", p.ActivityCalendar, want)
	}
	for i := range want {
		if p.ActivityCalendar[i] != want[i] {
			t.Errorf("calendar[%d] = %q, want %q", i, p.ActivityCalendar[i], want[i])
		}
	}
}

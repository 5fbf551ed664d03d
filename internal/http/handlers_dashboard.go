package http

import (
	"fmt"
	"net/http"
	"time"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

// DayView is the aggregation served for a single calendar day.
type DayView struct {
	Date     string         `json:"date"`
	Total    float64        `json:"total"`
	Display  string         `json:"display"`
	Expenses []core.Expense `json:"expenses"`
}

// MonthView is the aggregation served for a calendar month.
type MonthView struct {
	Year         int                       `json:"year"`
	Month        int                       `json:"month"`
	Total        float64                   `json:"total"`
	Display      string                    `json:"display"`
	ByCategory   map[core.Category]float64 `json:"byCategory"`
	DailyAverage float64                   `json:"dailyAverage"`
	Expenses     []core.Expense            `json:"expenses"`
}

// Metrics is the dashboard summary for "today's" perspective: the day total,
// the running month, and the month's heaviest categories.
type Metrics struct {
	Date          string                `json:"date"`
	DayTotal      float64               `json:"dayTotal"`
	MonthTotal    float64               `json:"monthTotal"`
	DailyAverage  float64               `json:"dailyAverage"`
	TopCategories []core.CategoryAmount `json:"topCategories"`
}

// handleDayView serves GET /api/expenses/day?date=YYYY-MM-DD.
func (s *Server) handleDayView(w http.ResponseWriter, r *http.Request) {
	if errResp := RequireMethod(r, http.MethodGet); errResp != nil {
		errResp.Write(w)
		return
	}

	day := ParseDayParam(r.URL.Query())
	expenses := s.store.GetAll(r.Context())
	daily := core.ByDate(expenses, day)
	total := core.Sum(daily)

	view := DayView{
		Date:     day.Format("2006-01-02"),
		Total:    total,
		Display:  formatCurrency(total),
		Expenses: daily,
	}

	NewResponse().Payload(view).Write(w)
}

// handleMonthView serves GET /api/expenses/month?year=&month=. Results are
// cached per year-month until the next mutation.
func (s *Server) handleMonthView(w http.ResponseWriter, r *http.Request) {
	if errResp := RequireMethod(r, http.MethodGet); errResp != nil {
		errResp.Write(w)
		return
	}

	ctx := r.Context()
	params := ParseMonthParams(r.URL.Query())
	cacheKey := fmt.Sprintf("%04d-%02d", params.Year, int(params.Month))

	if view, ok := s.monthCache.Get(cacheKey); ok {
		applog.FromContext(ctx).DebugContext(ctx, "Month view cache hit",
			applog.FieldYear, params.Year,
			applog.FieldMonth, int(params.Month))
		NewResponse().Payload(view).Write(w)
		return
	}

	expenses := s.store.GetAll(ctx)
	monthly := core.ByMonth(expenses, params.Year, params.Month)
	total := core.Sum(monthly)

	view := MonthView{
		Year:         params.Year,
		Month:        int(params.Month),
		Total:        total,
		Display:      formatCurrency(total),
		ByCategory:   core.TotalByCategory(monthly),
		DailyAverage: core.DailyAverage(monthly, daysElapsed(params.Year, params.Month)),
		Expenses:     monthly,
	}

	s.monthCache.Set(cacheKey, view)

	NewResponse().Payload(view).Write(w)
}

// handleMetrics serves GET /api/metrics?date=YYYY-MM-DD, defaulting to today.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if errResp := RequireMethod(r, http.MethodGet); errResp != nil {
		errResp.Write(w)
		return
	}

	ctx := r.Context()
	day := ParseDayParam(r.URL.Query())
	cacheKey := day.Format("2006-01-02")

	if m, ok := s.metricsCache.Get(cacheKey); ok {
		NewResponse().Payload(m).Write(w)
		return
	}

	expenses := s.store.GetAll(ctx)
	daily := core.ByDate(expenses, day)
	monthly := core.ByMonth(expenses, day.Year(), day.Month())

	m := Metrics{
		Date:          cacheKey,
		DayTotal:      core.Sum(daily),
		MonthTotal:    core.Sum(monthly),
		DailyAverage:  core.DailyAverage(monthly, day.Day()),
		TopCategories: core.TopCategories(monthly, core.TopCategoryLimit),
	}

	s.metricsCache.Set(cacheKey, m)

	NewResponse().Payload(m).Write(w)
}

// handleCategories serves the fixed category list.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if errResp := RequireMethod(r, http.MethodGet); errResp != nil {
		errResp.Write(w)
		return
	}

	NewResponse().Payload(core.Categories()).Write(w)
}

// daysElapsed returns the divisor for a month's daily average: the current
// day-of-month for the running month, the full month length for past months,
// and 1 for future months so the average degenerates to the total.
func daysElapsed(year int, month time.Month) int {
	now := time.Now()
	switch {
	case year == now.Year() && month == now.Month():
		return now.Day()
	case year > now.Year() || (year == now.Year() && month > now.Month()):
		return 1
	default:
		first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
		return first.AddDate(0, 1, -1).Day()
	}
}

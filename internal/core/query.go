package core

import (
	"sort"
	"time"
)

// CategoryAmount is an amount aggregated under one category.
type CategoryAmount struct {
	Category Category `json:"category"`
	Amount   float64  `json:"amount"`
}

// TopCategoryLimit caps the category breakdown shown on the dashboard.
const TopCategoryLimit = 5

// ByDate returns the records incurred on the same calendar day as day.
// Comparison is on the date-only prefix of the stored ISO string, so the
// time-of-day component of both sides is irrelevant.
func ByDate(expenses []Expense, day time.Time) []Expense {
	key := day.Format("2006-01-02")
	var out []Expense
	for _, e := range expenses {
		if DayKey(e.Date) == key {
			out = append(out, e)
		}
	}
	return out
}

// ByMonth returns the records whose date falls in the given calendar year
// and month. Records with unparseable dates are skipped.
func ByMonth(expenses []Expense, year int, month time.Month) []Expense {
	var out []Expense
	for _, e := range expenses {
		t, err := ParseTimestamp(e.Date)
		if err != nil {
			continue
		}
		if t.Year() == year && t.Month() == month {
			out = append(out, e)
		}
	}
	return out
}

// Sum accumulates the amounts of a collection. Plain float64 accumulation,
// no rounding.
func Sum(expenses []Expense) float64 {
	var total float64
	for _, e := range expenses {
		total += e.Amount
	}
	return total
}

// TotalByCategory groups a collection by category, summing amounts.
// Categories with no records are absent from the result.
func TotalByCategory(expenses []Expense) map[Category]float64 {
	totals := make(map[Category]float64)
	for _, e := range expenses {
		totals[e.Category] += e.Amount
	}
	return totals
}

// DailyAverage is the running daily average for a month: the monthly total
// divided by the current day-of-month. It is 0 when the month has no records.
func DailyAverage(monthly []Expense, dayOfMonth int) float64 {
	if len(monthly) == 0 || dayOfMonth < 1 {
		return 0
	}
	return Sum(monthly) / float64(dayOfMonth)
}

// TopCategories returns categories sorted descending by summed amount,
// truncated to limit. Ties keep the order of first appearance in the
// collection.
func TopCategories(expenses []Expense, limit int) []CategoryAmount {
	totals := make(map[Category]float64)
	var order []Category
	for _, e := range expenses {
		if _, seen := totals[e.Category]; !seen {
			order = append(order, e.Category)
		}
		totals[e.Category] += e.Amount
	}

	out := make([]CategoryAmount, 0, len(order))
	for _, c := range order {
		out = append(out, CategoryAmount{Category: c, Amount: totals[c]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount > out[j].Amount
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

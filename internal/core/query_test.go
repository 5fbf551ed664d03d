package core

import (
	"math"
	"testing"
	"time"
)

func exp(id string, amount float64, cat Category, date string) Expense {
	return Expense{ID: id, Amount: amount, Category: cat, Date: date, CreatedAt: date}
}

func TestByDateIgnoresTimeOfDay(t *testing.T) {
	coll := []Expense{
		exp("a", 10, CategoryFood, "2024-03-15T08:00:00.000Z"),
		exp("b", 20, CategoryBills, "2024-03-15T23:45:00.000Z"),
		exp("c", 30, CategoryFood, "2024-03-16T00:00:00.000Z"),
	}

	day := time.Date(2024, 3, 15, 13, 30, 0, 0, time.UTC)
	got := ByDate(coll, day)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("unexpected result: %+v", got)
	}

	if got := ByDate(coll, time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC)); got != nil {
		t.Fatalf("expected empty for day with no records, got %+v", got)
	}
}

func TestByMonth(t *testing.T) {
	coll := []Expense{
		exp("a", 10, CategoryFood, "2024-03-01T00:00:00Z"),
		exp("b", 20, CategoryFood, "2024-03-31T23:59:00Z"),
		exp("c", 30, CategoryFood, "2024-04-01T00:00:00Z"),
		exp("d", 40, CategoryFood, "2023-03-15T00:00:00Z"),
		exp("e", 50, CategoryFood, "garbage"),
	}
	got := ByMonth(coll, 2024, time.March)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestTotalByCategory(t *testing.T) {
	coll := []Expense{
		exp("a", 100, CategoryFood, "2024-03-15"),
		exp("b", 50, CategoryFood, "2024-03-15"),
		exp("c", 30, CategoryTransport, "2024-03-15"),
	}
	totals := TotalByCategory(coll)
	if len(totals) != 2 {
		t.Fatalf("expected 2 categories, got %v", totals)
	}
	if totals[CategoryFood] != 150 || totals[CategoryTransport] != 30 {
		t.Fatalf("unexpected totals: %v", totals)
	}
	if _, ok := totals[CategoryHealth]; ok {
		t.Fatalf("categories with no records must be absent")
	}

	// Grand total is conserved across the grouping.
	var grand float64
	for _, v := range totals {
		grand += v
	}
	if math.Abs(grand-Sum(coll)) > 1e-9 {
		t.Fatalf("grand total %v != collection sum %v", grand, Sum(coll))
	}
}

func TestDailyAverage(t *testing.T) {
	if got := DailyAverage(nil, 15); got != 0 {
		t.Fatalf("expected 0 for empty month, got %v", got)
	}
	coll := []Expense{
		exp("a", 100, CategoryFood, "2024-03-01"),
		exp("b", 50, CategoryBills, "2024-03-02"),
	}
	if got := DailyAverage(coll, 10); got != 15 {
		t.Fatalf("expected 15, got %v", got)
	}
}

func TestTopCategories(t *testing.T) {
	coll := []Expense{
		exp("a", 10, CategoryHealth, "2024-03-01"),
		exp("b", 40, CategoryFood, "2024-03-01"),
		exp("c", 40, CategoryBills, "2024-03-01"),
		exp("d", 5, CategoryTransport, "2024-03-01"),
		exp("e", 5, CategoryShopping, "2024-03-01"),
		exp("f", 1, CategoryEntertainment, "2024-03-01"),
	}
	got := TopCategories(coll, TopCategoryLimit)
	if len(got) != 5 {
		t.Fatalf("expected truncation to 5, got %d", len(got))
	}
	// 40/40 tie broken by first appearance: Food before Bills.
	if got[0].Category != CategoryFood || got[1].Category != CategoryBills {
		t.Fatalf("tie order wrong: %+v", got)
	}
	if got[2].Category != CategoryHealth {
		t.Fatalf("expected Health third, got %+v", got)
	}
	// Transport/Shopping tie, Transport appeared first.
	if got[3].Category != CategoryTransport || got[4].Category != CategoryShopping {
		t.Fatalf("unexpected tail: %+v", got)
	}
}

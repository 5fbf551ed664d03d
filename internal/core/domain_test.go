package core

import "testing"

func TestCategoryValid(t *testing.T) {
	for _, c := range Categories() {
		if !c.Valid() {
			t.Fatalf("expected %q valid", c)
		}
	}
	if Category("Groceries").Valid() {
		t.Fatalf("expected unknown category invalid")
	}
	if Category("").Valid() {
		t.Fatalf("expected empty category invalid")
	}
}

func TestDraftValidate(t *testing.T) {
	good := Draft{
		Amount:      50,
		Category:    CategoryFood,
		Description: "Lunch",
		Date:        "2024-03-15T00:00:00.000Z",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Draft{
		{Amount: 0, Category: CategoryFood, Date: "2024-03-15T00:00:00Z"},
		{Amount: -5, Category: CategoryFood, Date: "2024-03-15T00:00:00Z"},
		{Amount: 10, Category: "Nope", Date: "2024-03-15T00:00:00Z"},
		{Amount: 10, Category: CategoryFood, Date: ""},
		{Amount: 10, Category: CategoryFood, Date: "15/03/2024"},
	}
	for i, d := range bads {
		if err := d.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDraftValidateSubItems(t *testing.T) {
	base := Draft{
		Amount:   100,
		Category: CategoryShopping,
		Date:     "2024-03-15T00:00:00Z",
	}

	// Sum 99 vs 100 is outside the 0.01 tolerance.
	d := base
	d.SubItems = []SubItem{{ID: "a", Name: "A", Amount: 60}, {ID: "b", Name: "B", Amount: 39}}
	if err := d.Validate(); err != ErrSubItemSum {
		t.Fatalf("expected ErrSubItemSum, got %v", err)
	}

	d.SubItems = []SubItem{{ID: "a", Name: "A", Amount: 60}, {ID: "b", Name: "B", Amount: 40}}
	if err := d.Validate(); err != nil {
		t.Fatalf("expected ok for exact sum, got %v", err)
	}

	// A difference of exactly 0.01 is still within tolerance.
	d.SubItems = []SubItem{{ID: "a", Name: "A", Amount: 60}, {ID: "b", Name: "B", Amount: 39.99}}
	if err := d.Validate(); err != nil {
		t.Fatalf("expected ok at tolerance boundary, got %v", err)
	}

	d.SubItems = []SubItem{{ID: "a", Name: "", Amount: 100}}
	if err := d.Validate(); err != ErrEmptySubItemName {
		t.Fatalf("expected ErrEmptySubItemName, got %v", err)
	}

	d.SubItems = []SubItem{{ID: "a", Name: "A", Amount: 0}}
	if err := d.Validate(); err != ErrSubItemAmount {
		t.Fatalf("expected ErrSubItemAmount, got %v", err)
	}
}

func TestPatchApplyPreservesIdentity(t *testing.T) {
	e := Expense{
		ID:          "id-1",
		Amount:      10,
		Category:    CategoryFood,
		Description: "Lunch",
		Date:        "2024-03-15T00:00:00Z",
		CreatedAt:   "2024-03-15T12:00:00Z",
	}

	amount := 25.5
	desc := "Dinner"
	got := Patch{Amount: &amount, Description: &desc}.Apply(e)

	if got.ID != e.ID || got.CreatedAt != e.CreatedAt {
		t.Fatalf("patch must not touch id/createdAt: %+v", got)
	}
	if got.Amount != 25.5 || got.Description != "Dinner" {
		t.Fatalf("patch not applied: %+v", got)
	}
	if got.Category != e.Category || got.Date != e.Date {
		t.Fatalf("untouched fields changed: %+v", got)
	}
}

func TestPatchValidate(t *testing.T) {
	bad := -1.0
	if err := (Patch{Amount: &bad}).Validate(); err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	cat := Category("Nope")
	if err := (Patch{Category: &cat}).Validate(); err != ErrInvalidCategory {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
	date := "not-a-date"
	if err := (Patch{Date: &date}).Validate(); err != ErrInvalidDate {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
	amount := 100.0
	items := []SubItem{{ID: "a", Name: "A", Amount: 60}, {ID: "b", Name: "B", Amount: 39}}
	if err := (Patch{Amount: &amount, SubItems: &items}).Validate(); err != ErrSubItemSum {
		t.Fatalf("expected ErrSubItemSum, got %v", err)
	}
}

func TestPatchValidateMerge(t *testing.T) {
	stored := Expense{
		ID:        "e1",
		Amount:    100,
		Category:  CategoryShopping,
		Date:      "2024-03-15",
		CreatedAt: "2024-03-15T00:00:00Z",
		SubItems:  []SubItem{{ID: "a", Name: "A", Amount: 60}, {ID: "b", Name: "B", Amount: 40}},
	}

	// Replacing the sub-items without the amount must still satisfy the sum
	items := []SubItem{{Name: "C", Amount: 10}}
	if err := (Patch{SubItems: &items}).ValidateMerge(stored); err != ErrSubItemSum {
		t.Fatalf("expected ErrSubItemSum for sub-items-only patch, got %v", err)
	}

	// Changing the amount under existing sub-items must too
	amount := 50.0
	if err := (Patch{Amount: &amount}).ValidateMerge(stored); err != ErrSubItemSum {
		t.Fatalf("expected ErrSubItemSum for amount-only patch, got %v", err)
	}

	// A consistent replacement passes
	ok := []SubItem{{Name: "C", Amount: 30}, {Name: "D", Amount: 70}}
	if err := (Patch{SubItems: &ok}).ValidateMerge(stored); err != nil {
		t.Fatalf("consistent patch rejected: %v", err)
	}

	// Clearing the sub-items lifts the invariant entirely
	none := []SubItem{}
	if err := (Patch{Amount: &amount, SubItems: &none}).ValidateMerge(stored); err != nil {
		t.Fatalf("patch clearing sub-items rejected: %v", err)
	}

	// Per-field problems surface before the sum check
	bad := -1.0
	if err := (Patch{Amount: &bad}).ValidateMerge(stored); err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestDayKey(t *testing.T) {
	cases := []struct {
		in, out string
	}{
		{"2024-03-15T10:30:00.000Z", "2024-03-15"},
		{"2024-03-15", "2024-03-15"},
		{"short", "short"},
	}
	for _, tc := range cases {
		if got := DayKey(tc.in); got != tc.out {
			t.Fatalf("DayKey(%q)=%q, want %q", tc.in, got, tc.out)
		}
	}
}

package core

import (
	"errors"
	"math"
	"strings"
	"time"
)

const (
	CategoryFood          Category = "Food"
	CategoryTransport     Category = "Transport"
	CategoryShopping      Category = "Shopping"
	CategoryEntertainment Category = "Entertainment"
	CategoryBills         Category = "Bills"
	CategoryHealth        Category = "Health"
	CategoryOther         Category = "Other"
)

// SubItemTolerance is the maximum allowed difference between an expense
// amount and the sum of its sub-item amounts.
const SubItemTolerance = 0.01

type (
	Category string

	// SubItem is a named partial amount belonging to one expense, used to
	// itemize a purchase (e.g. shopping receipt lines). It has no lifecycle
	// of its own.
	SubItem struct {
		ID     string  `json:"id"`
		Name   string  `json:"name"`
		Amount float64 `json:"amount"`
	}

	// Expense is a single recorded spend. Date is the user-selected
	// "incurred on" timestamp, CreatedAt the record creation time; both are
	// ISO-8601 strings, matching the persisted JSON layout verbatim.
	Expense struct {
		ID          string    `json:"id"`
		Amount      float64   `json:"amount"`
		Category    Category  `json:"category"`
		Description string    `json:"description"`
		Date        string    `json:"date"`
		CreatedAt   string    `json:"createdAt"`
		SubItems    []SubItem `json:"subItems,omitempty"`
	}

	// Draft carries the caller-supplied fields of a new expense. ID and
	// CreatedAt are generated by the store at creation time.
	Draft struct {
		Amount      float64
		Category    Category
		Description string
		Date        string
		SubItems    []SubItem
	}

	// Patch is a partial update. Nil fields keep the stored value; ID and
	// CreatedAt are never touched by a patch.
	Patch struct {
		Amount      *float64
		Category    *Category
		Description *string
		Date        *string
		SubItems    *[]SubItem
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptySubItemName = errors.New("empty sub-item name")
	ErrSubItemAmount    = errors.New("invalid sub-item amount")
	ErrSubItemSum       = errors.New("sub-item amounts do not sum to the expense amount")
)

// Categories returns the fixed category set in display order.
func Categories() []Category {
	return []Category{
		CategoryFood,
		CategoryTransport,
		CategoryShopping,
		CategoryEntertainment,
		CategoryBills,
		CategoryHealth,
		CategoryOther,
	}
}

func (c Category) Valid() bool {
	switch c {
	case CategoryFood, CategoryTransport, CategoryShopping,
		CategoryEntertainment, CategoryBills, CategoryHealth, CategoryOther:
		return true
	default:
		return false
	}
}

func (c Category) String() string {
	return string(c)
}

// ParseTimestamp parses a stored date value. Full RFC 3339 timestamps and
// bare YYYY-MM-DD dates are both accepted.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// DayKey returns the calendar-day prefix (YYYY-MM-DD) of an ISO timestamp
// string. Time-of-day and timezone offset are deliberately ignored: day
// comparisons are purely on the stored substring.
func DayKey(s string) string {
	if len(s) < 10 {
		return s
	}
	return s[:10]
}

func validAmount(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

func validateSubItems(amount float64, items []SubItem) error {
	if len(items) == 0 {
		return nil
	}
	var sum float64
	for _, it := range items {
		if strings.TrimSpace(it.Name) == "" {
			return ErrEmptySubItemName
		}
		if !validAmount(it.Amount) {
			return ErrSubItemAmount
		}
		sum += it.Amount
	}
	// Small slack beyond the tolerance absorbs float accumulation error so
	// that a difference of exactly 0.01 still passes.
	if math.Abs(sum-amount) > SubItemTolerance+1e-9 {
		return ErrSubItemSum
	}
	return nil
}

// Validate checks a draft before it reaches the store. The store itself is
// permissive and persists whatever it is given; this is the input-validation
// boundary of the system.
func (d Draft) Validate() error {
	if !validAmount(d.Amount) {
		return ErrInvalidAmount
	}
	if !d.Category.Valid() {
		return ErrInvalidCategory
	}
	if _, err := ParseTimestamp(d.Date); err != nil {
		return err
	}
	return validateSubItems(d.Amount, d.SubItems)
}

// Validate checks the fields present in the patch in isolation. The sub-item
// sum invariant is only cross-checked here when the patch carries both sides;
// ValidateMerge covers patches touching one side of an itemized record.
func (p Patch) Validate() error {
	if p.Amount != nil && !validAmount(*p.Amount) {
		return ErrInvalidAmount
	}
	if p.Category != nil && !p.Category.Valid() {
		return ErrInvalidCategory
	}
	if p.Date != nil {
		if _, err := ParseTimestamp(*p.Date); err != nil {
			return err
		}
	}
	if p.Amount != nil && p.SubItems != nil {
		return validateSubItems(*p.Amount, *p.SubItems)
	}
	if p.SubItems != nil {
		for _, it := range *p.SubItems {
			if strings.TrimSpace(it.Name) == "" {
				return ErrEmptySubItemName
			}
			if !validAmount(it.Amount) {
				return ErrSubItemAmount
			}
		}
	}
	return nil
}

// ValidateMerge checks the record the patch would produce when applied to e.
// This closes the gap Validate leaves open: a patch touching only one side of
// the sub-item sum invariant is checked against the stored other side.
func (p Patch) ValidateMerge(e Expense) error {
	if err := p.Validate(); err != nil {
		return err
	}
	merged := p.Apply(e)
	return validateSubItems(merged.Amount, merged.SubItems)
}

// Apply merges the patch over an existing record. Fields absent from the
// patch are retained; ID and CreatedAt always survive unchanged.
func (p Patch) Apply(e Expense) Expense {
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.SubItems != nil {
		e.SubItems = *p.SubItems
	}
	return e
}

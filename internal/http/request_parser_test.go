package http

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"fintrack/internal/core"
)

func parserFor(t *testing.T, body string) *RequestBodyParser {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/expenses", strings.NewReader(body))
	p := NewRequestBodyParser(req)
	if err := p.Parse(); err != nil {
		t.Fatalf("parse: %v", err)
	}
	return p
}

func TestRequestBodyParserJSON(t *testing.T) {
	p := parserFor(t, `{"amount":12.5,"category":"Food","description":"Lunch","date":"2024-03-15"}`)

	if !p.IsJSON() {
		t.Fatal("expected JSON detection")
	}
	if got := p.Get("amount"); got != "12.5" {
		t.Fatalf("amount = %q", got)
	}
	if got := p.Get("category"); got != "Food" {
		t.Fatalf("category = %q", got)
	}
	if !p.Has("description") || p.Has("subItems") {
		t.Fatal("field presence detection wrong")
	}
}

func TestRequestBodyParserForm(t *testing.T) {
	p := parserFor(t, "amount=30&category=Transport&description=Taxi&date=2024-03-16")

	if p.IsJSON() {
		t.Fatal("form body detected as JSON")
	}
	if got := p.Get("amount"); got != "30" {
		t.Fatalf("amount = %q", got)
	}

	draft, err := p.ToDraft()
	if err != nil {
		t.Fatalf("ToDraft: %v", err)
	}
	if draft.Amount != 30 || draft.Category != core.CategoryTransport {
		t.Fatalf("unexpected draft: %+v", draft)
	}
}

func TestRequestBodyParserStringAmount(t *testing.T) {
	p := parserFor(t, `{"amount":"12,50","category":"Food","description":"Lunch","date":"2024-03-15"}`)

	draft, err := p.ToDraft()
	if err != nil {
		t.Fatalf("ToDraft: %v", err)
	}
	if draft.Amount != 12.5 {
		t.Fatalf("expected 12.5, got %v", draft.Amount)
	}
}

func TestRequestBodyParserSubItems(t *testing.T) {
	p := parserFor(t, `{"amount":60,"category":"Shopping","description":"Groceries","date":"2024-03-15","subItems":[{"name":"Rice","amount":20},{"name":"Meat","amount":"40"}]}`)

	draft, err := p.ToDraft()
	if err != nil {
		t.Fatalf("ToDraft: %v", err)
	}
	if len(draft.SubItems) != 2 {
		t.Fatalf("expected 2 sub-items, got %d", len(draft.SubItems))
	}
	if draft.SubItems[1].Amount != 40 {
		t.Fatalf("string sub-item amount not parsed: %+v", draft.SubItems[1])
	}
}

func TestToPatchOnlyPresentFields(t *testing.T) {
	p := parserFor(t, `{"id":"abc","description":"Dinner"}`)

	id, patch, err := p.ToPatch()
	if err != nil {
		t.Fatalf("ToPatch: %v", err)
	}
	if id != "abc" {
		t.Fatalf("id = %q", id)
	}
	if patch.Description == nil || *patch.Description != "Dinner" {
		t.Fatalf("description not captured: %+v", patch)
	}
	if patch.Amount != nil || patch.Category != nil || patch.Date != nil || patch.SubItems != nil {
		t.Fatalf("absent fields must stay nil: %+v", patch)
	}
}

func TestToPatchRequiresID(t *testing.T) {
	p := parserFor(t, `{"description":"Dinner"}`)

	if _, _, err := p.ToPatch(); err == nil {
		t.Fatal("expected error for missing id")
	}
}

func TestToPatchValidatesFields(t *testing.T) {
	p := parserFor(t, `{"id":"abc","amount":-10}`)

	if _, _, err := p.ToPatch(); err != core.ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestParseMonthParams(t *testing.T) {
	q := url.Values{"year": {"2024"}, "month": {"3"}}
	params := ParseMonthParams(q)
	if params.Year != 2024 || params.Month != 3 {
		t.Fatalf("unexpected params: %+v", params)
	}

	// Out-of-range month falls back to the current month
	q = url.Values{"year": {"2024"}, "month": {"13"}}
	params = ParseMonthParams(q)
	if params.Month == 13 {
		t.Fatal("month 13 accepted")
	}
}

func TestParseDayParam(t *testing.T) {
	day := ParseDayParam(url.Values{"date": {"2024-03-15"}})
	if day.Format("2006-01-02") != "2024-03-15" {
		t.Fatalf("unexpected day %v", day)
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  hello\x00world  "); got != "helloworld" {
		t.Fatalf("sanitizeInput = %q", got)
	}
	if got := sanitizeInput("line1\nline2"); got != "line1\nline2" {
		t.Fatalf("newlines must survive, got %q", got)
	}
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "₱0.00"},
		{12.5, "₱12.50"},
		{1234.56, "₱1,234.56"},
		{1000000, "₱1,000,000.00"},
		{-42.1, "-₱42.10"},
	}
	for _, tt := range tests {
		if got := formatCurrency(tt.amount); got != tt.want {
			t.Errorf("formatCurrency(%v) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

// Package http provides the JSON API server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.
// Expense payloads arrive as JSON from API clients and as form-encoded data
// from simple scripts, so the parser accepts both.

package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
)

// MonthParams holds parsed year/month values from request parameters.
type MonthParams struct {
	Year  int
	Month time.Month
}

// ParseMonthParams extracts year and month from query parameters, using the
// current date as defaults.
func ParseMonthParams(query url.Values) MonthParams {
	now := time.Now()
	params := MonthParams{
		Year:  now.Year(),
		Month: now.Month(),
	}

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			params.Year = y
		}
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil && m >= 1 && m <= 12 {
			params.Month = time.Month(m)
		}
	}

	return params
}

// ParseDayParam extracts a day from the "date" query parameter in YYYY-MM-DD
// form, defaulting to today when absent or malformed.
func ParseDayParam(query url.Values) time.Time {
	if v := strings.TrimSpace(query.Get("date")); v != "" {
		if day, err := time.Parse("2006-01-02", v); err == nil {
			return day
		}
	}
	return time.Now()
}

type subItemPayload struct {
	Name   string          `json:"name"`
	Amount json.RawMessage `json:"amount"`
}

type expensePayload struct {
	ID          string           `json:"id"`
	Amount      json.RawMessage  `json:"amount"`
	Category    string           `json:"category"`
	Description string           `json:"description"`
	Date        string           `json:"date"`
	SubItems    []subItemPayload `json:"subItems"`
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data.
type RequestBodyParser struct {
	body     []byte
	jsonData *expensePayload
	jsonKeys map[string]bool
	formData url.Values
	parsed   bool
	err      error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	p.body, p.err = io.ReadAll(r.Body)
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.body[0] == '{' {
		var payload expensePayload
		if err := json.Unmarshal(p.body, &payload); err != nil {
			p.err = err
			return err
		}
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(p.body, &raw); err != nil {
			p.err = err
			return err
		}
		p.jsonKeys = make(map[string]bool, len(raw))
		for k := range raw {
			p.jsonKeys[k] = true
		}
		p.jsonData = &payload
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// Has reports whether the field was present in the request body.
func (p *RequestBodyParser) Has(key string) bool {
	if p.jsonKeys != nil {
		return p.jsonKeys[key]
	}
	if p.formData != nil {
		return p.formData.Has(key)
	}
	return false
}

// Get returns a sanitized string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		return strings.TrimSpace(sanitizeInput(p.jsonField(key)))
	}
	if p.formData != nil {
		return strings.TrimSpace(sanitizeInput(p.formData.Get(key)))
	}
	return ""
}

func (p *RequestBodyParser) jsonField(key string) string {
	switch key {
	case "id":
		return p.jsonData.ID
	case "amount":
		return rawToString(p.jsonData.Amount)
	case "category":
		return p.jsonData.Category
	case "description":
		return p.jsonData.Description
	case "date":
		return p.jsonData.Date
	default:
		return ""
	}
}

// rawToString renders a JSON scalar as its string form, so amounts may be
// sent either as numbers or as strings.
func rawToString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}

// SubItems converts the payload's sub-items to domain values.
// Form-encoded bodies cannot carry sub-items; only JSON payloads do.
func (p *RequestBodyParser) SubItems() ([]core.SubItem, error) {
	if p.jsonData == nil || len(p.jsonData.SubItems) == 0 {
		return nil, nil
	}

	items := make([]core.SubItem, 0, len(p.jsonData.SubItems))
	for _, si := range p.jsonData.SubItems {
		amount, err := core.ParseAmount(rawToString(si.Amount))
		if err != nil {
			return nil, core.ErrSubItemAmount
		}
		items = append(items, core.SubItem{
			Name:   sanitizeInput(si.Name),
			Amount: amount,
		})
	}
	return items, nil
}

// ToDraft builds a new-expense draft from the request body.
func (p *RequestBodyParser) ToDraft() (core.Draft, error) {
	amount, err := core.ParseAmount(p.Get("amount"))
	if err != nil {
		return core.Draft{}, err
	}

	subItems, err := p.SubItems()
	if err != nil {
		return core.Draft{}, err
	}

	draft := core.Draft{
		Amount:      amount,
		Category:    core.Category(p.Get("category")),
		Description: p.Get("description"),
		Date:        p.Get("date"),
		SubItems:    subItems,
	}

	if err := draft.Validate(); err != nil {
		return core.Draft{}, err
	}
	return draft, nil
}

// ToPatch builds a partial update from the request body. Only fields present
// in the payload are applied; the expense id travels in the body as well.
func (p *RequestBodyParser) ToPatch() (string, core.Patch, error) {
	id := p.Get("id")
	if id == "" {
		return "", core.Patch{}, errors.New("missing expense id")
	}

	var patch core.Patch

	if p.Has("amount") {
		amount, err := core.ParseAmount(p.Get("amount"))
		if err != nil {
			return "", core.Patch{}, err
		}
		patch.Amount = &amount
	}
	if p.Has("category") {
		category := core.Category(p.Get("category"))
		patch.Category = &category
	}
	if p.Has("description") {
		description := p.Get("description")
		patch.Description = &description
	}
	if p.Has("date") {
		date := p.Get("date")
		patch.Date = &date
	}
	if p.Has("subItems") {
		subItems, err := p.SubItems()
		if err != nil {
			return "", core.Patch{}, err
		}
		patch.SubItems = &subItems
	}

	if err := patch.Validate(); err != nil {
		return "", core.Patch{}, err
	}
	return id, patch, nil
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *ResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

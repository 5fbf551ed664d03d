// Package core holds the expense domain model and the pure query and
// aggregation functions over expense collections.
//
// This file contains parsing of user-entered monetary amounts. Amounts are
// decimal currency values carried as float64; nothing in this package rounds
// them, two-decimal rendering happens only at the presentation boundary.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseAmount converts a user-entered amount string to a positive decimal
// value. Both dot (12.34) and comma (12,34) decimal separators are accepted.
// Empty, signed, non-numeric and non-positive input is rejected.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("-1")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only positive values allowed
		return 0, ErrInvalidAmount
	}
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '.' {
			return 0, ErrInvalidAmount
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if !validAmount(v) {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

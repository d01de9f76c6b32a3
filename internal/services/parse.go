package services

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Balance sanity bounds in won. Page text outside this range is a misparse
// (a row count, a date fragment, a grand total across years), not a deposit.
const (
	minPlausibleBalance = 100
	maxPlausibleBalance = 100_000_000
)

// ParseWon extracts an amount from page text like "10,750원".
//
// Everything except digits is dropped; strings with fewer than three digits
// are rejected to avoid mistaking stray counters for money.
func ParseWon(text string) (int, error) {
	var digits strings.Builder
	for _, r := range text {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}

	s := digits.String()
	if len(s) < 3 {
		return 0, fmt.Errorf("no amount in %q", text)
	}

	amount, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount in %q: %w", text, err)
	}

	return amount, nil
}

// PlausibleBalance reports whether an amount looks like a real deposit.
func PlausibleBalance(amount int) bool {
	return amount >= minPlausibleBalance && amount <= maxPlausibleBalance
}

// Package core holds the contribution ledger domain: record and batch types,
// the date/settlement-period utilities, and the aggregation engine.
package core

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var amountPrinter = message.NewPrinter(language.English)

// ParseAmount converts a digits-only string to a positive amount in the
// smallest currency unit. Fractional values are not handled anywhere in the
// ledger, so anything but plain digits is rejected.
//
// Examples:
//
//	ParseAmount("100000") -> 100000, nil
//	ParseAmount("12.50")  -> 0, ErrInvalidAmount
//	ParseAmount("0")      -> 0, ErrInvalidAmount
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, ErrInvalidAmount
		}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// Overflow; digits are already guaranteed.
		return 0, ErrInvalidAmount
	}
	if v <= 0 {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// FormatAmount renders an amount with thousands separators for display,
// e.g. 1234567 -> "1,234,567".
func FormatAmount(v int64) string {
	return amountPrinter.Sprintf("%d", v)
}

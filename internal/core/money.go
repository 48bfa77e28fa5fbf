// Package core provides money parsing and handling utilities.
//
// This file contains the parsers for the two currency conventions found in the
// household spreadsheet: the manual tab uses Brazilian formatting with a
// currency prefix and thousands dots ("R$ 1.234,56"), the form responses tab
// only uses a decimal comma ("1234,56").
package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencyPrefix is stripped from manual amounts before parsing.
const CurrencyPrefix = "R$"

// ParseManualAmount converts a manual-tab amount to a decimal.
//
// The currency symbol (wherever it sits) and spaces are removed, every period
// is treated as a thousands separator and dropped, and the decimal comma
// becomes a period. A leading minus is kept.
//
// Examples:
//   ParseManualAmount("R$ 1.234,56") -> 1234.56, nil
//   ParseManualAmount("R$ 100,00")   -> 100, nil
//   ParseManualAmount("-R$ 10,00")   -> -10, nil
//   ParseManualAmount("12")          -> 12, nil
func ParseManualAmount(s string) (decimal.Decimal, error) {
	v := strings.TrimSpace(s)
	v = strings.Replace(v, CurrencyPrefix, "", 1)
	v = strings.ReplaceAll(v, " ", "")
	v = strings.ReplaceAll(v, "\u00a0", "")
	v = strings.ReplaceAll(v, ".", "")
	v = strings.ReplaceAll(v, ",", ".")
	return parseDecimal(s, v)
}

// ParseBotAmount converts a form-responses amount ("1234,56") to a decimal.
// Only the decimal comma is normalized; a thousands separator is not expected.
func ParseBotAmount(s string) (decimal.Decimal, error) {
	v := strings.TrimSpace(s)
	v = strings.ReplaceAll(v, ",", ".")
	return parseDecimal(s, v)
}

func parseDecimal(raw, normalized string) (decimal.Decimal, error) {
	if normalized == "" {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrMalformedAmount, raw)
	}
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrMalformedAmount, raw)
	}
	return d, nil
}

// RoundCents rounds to two decimal places, half away from zero.
// Every total, share, payment and balance in a report goes through it.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FormatAmount renders an amount with exactly two decimals ("54.63").
func FormatAmount(d decimal.Decimal) string {
	return RoundCents(d).StringFixed(2)
}

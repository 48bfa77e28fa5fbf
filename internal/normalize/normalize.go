// Package normalize turns the rows of the two spreadsheet tabs into
// core.ExpenseRecord values.
//
// The manual tab is maintained by hand with Brazilian currency formatting; the
// bot tab holds form responses whose timestamp carries a time of day. Both end
// up as {date, amount, payer}. The first malformed row aborts the whole
// normalization: a settlement computed over a partial history would be wrong
// without anyone noticing.
package normalize

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"casinha/internal/core"
)

// DateLayout is day/month/year; zero padding is optional.
const DateLayout = "2/1/2006"

var timeOfDaySuffix = regexp.MustCompile(`\s+\d{1,2}:\d{2}:\d{2}$`)

// Normalize converts both raw sequences and returns the manual records
// followed by the bot records.
func Normalize(manual []core.RawManualRow, bot []core.RawBotRow) ([]core.ExpenseRecord, error) {
	out := make([]core.ExpenseRecord, 0, len(manual)+len(bot))
	for i, row := range manual {
		if isBlank(row.Date, row.Amount, row.Payer) {
			continue
		}
		rec, err := ManualRecord(row)
		if err != nil {
			return nil, fmt.Errorf("manual row %d: %w", i+1, err)
		}
		out = append(out, rec)
	}
	for i, row := range bot {
		if isBlank(row.Timestamp, row.Amount, row.Responsible) {
			continue
		}
		rec, err := BotRecord(row)
		if err != nil {
			return nil, fmt.Errorf("bot row %d: %w", i+1, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// ManualRecord normalizes a single row of the manual tab.
func ManualRecord(row core.RawManualRow) (core.ExpenseRecord, error) {
	date, err := ParseDate(row.Date)
	if err != nil {
		return core.ExpenseRecord{}, err
	}
	amount, err := core.ParseManualAmount(row.Amount)
	if err != nil {
		return core.ExpenseRecord{}, err
	}
	return core.ExpenseRecord{
		Date:   date,
		Amount: amount,
		Payer:  ManualPayer(row.Payer),
	}, nil
}

// BotRecord normalizes a single form response. Type and description are dropped.
func BotRecord(row core.RawBotRow) (core.ExpenseRecord, error) {
	date, err := ParseDate(StripTimeOfDay(row.Timestamp))
	if err != nil {
		return core.ExpenseRecord{}, err
	}
	amount, err := core.ParseBotAmount(row.Amount)
	if err != nil {
		return core.ExpenseRecord{}, err
	}
	return core.ExpenseRecord{
		Date:   date,
		Amount: amount,
		Payer:  BotPayer(row.Responsible),
	}, nil
}

// ParseDate parses a day/month/year date at UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", core.ErrMalformedDate, s)
	}
	return t, nil
}

// StripTimeOfDay drops a trailing " HH:MM:SS" from a form timestamp.
func StripTimeOfDay(s string) string {
	return timeOfDaySuffix.ReplaceAllString(strings.TrimSpace(s), "")
}

// ManualPayer canonicalizes a payer typed by hand: trimmed, lowercased, and
// the unaccented "joao" rewritten to "joão".
func ManualPayer(s string) core.Participant {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "joao" {
		name = string(core.Joao)
	}
	return core.Participant(name)
}

// BotPayer canonicalizes a payer stored by the form. The form already stores
// the accented spelling, so only case and surrounding spaces are normalized.
func BotPayer(s string) core.Participant {
	return core.Participant(strings.ToLower(strings.TrimSpace(s)))
}

func isBlank(fields ...string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

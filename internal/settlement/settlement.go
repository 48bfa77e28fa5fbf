// Package settlement computes the monthly cost-sharing report.
package settlement

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"casinha/internal/core"
)

// Settle filters records to the period and reconciles what every participant
// owes against what they paid. It is a pure function of its inputs.
//
// Rounding is two decimals, half away from zero, applied independently to
// the total, each payment, each share and each balance. Shares are not
// adjusted to add up to the rounded total.
func Settle(h core.Household, records []core.ExpenseRecord, p core.Period) core.MonthlyReport {
	participants := h.Participants()

	total := decimal.Zero
	unassigned := decimal.Zero
	paidRaw := make(map[core.Participant]decimal.Decimal, len(participants))
	for _, rec := range records {
		if !p.Contains(rec.Date) {
			continue
		}
		total = total.Add(rec.Amount)
		if !h.Has(rec.Payer) {
			unassigned = unassigned.Add(rec.Amount)
			continue
		}
		paidRaw[rec.Payer] = paidRaw[rec.Payer].Add(rec.Amount)
	}
	total = core.RoundCents(total)

	report := core.MonthlyReport{
		Period:       p,
		Participants: participants,
		Total:        total,
		Share:        make(map[core.Participant]decimal.Decimal, len(participants)),
		Paid:         make(map[core.Participant]decimal.Decimal, len(participants)),
		Balance:      make(map[core.Participant]decimal.Decimal, len(participants)),
		Unassigned:   core.RoundCents(unassigned),
	}
	for _, s := range h.Shares() {
		// Participants without payments in the period paid exactly zero.
		paid := decimal.Zero
		if v, ok := paidRaw[s.Participant]; ok {
			paid = core.RoundCents(v)
		}
		share := core.RoundCents(total.Mul(s.Fraction))
		report.Paid[s.Participant] = paid
		report.Share[s.Participant] = share
		report.Balance[s.Participant] = core.RoundCents(share.Sub(paid))
	}
	return report
}

// ParsePeriod reads the positional arguments of the report command:
// a required month and an optional year defaulting to now's year.
func ParsePeriod(args []string, now time.Time) (core.Period, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return core.Period{}, fmt.Errorf("%w: month is required", core.ErrInvalidPeriod)
	}
	month, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return core.Period{}, fmt.Errorf("%w: month %q is not a number", core.ErrInvalidPeriod, args[0])
	}
	year := now.Year()
	if len(args) > 1 && strings.TrimSpace(args[1]) != "" {
		year, err = strconv.Atoi(strings.TrimSpace(args[1]))
		if err != nil {
			return core.Period{}, fmt.Errorf("%w: year %q is not a number", core.ErrInvalidPeriod, args[1])
		}
	}
	return core.NewPeriod(month, year)
}

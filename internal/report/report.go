// Package report renders a settlement as chat text.
package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"casinha/internal/core"
)

// Section labels, in rendering order.
const (
	LabelShare      = "Divisão de gastos"
	LabelPaid       = "Pagamentos realizados"
	LabelBalance    = "Saldo final"
	LabelUnassigned = "Sem responsável"
)

// Format renders the total and the share, paid and balance breakdowns.
// Every participant gets a line, zero values included.
func Format(r core.MonthlyReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Gastos totais do mês %s: %s\n", r.Period, core.FormatAmount(r.Total))
	if !r.Unassigned.IsZero() {
		fmt.Fprintf(&b, "%s: %s\n", LabelUnassigned, core.FormatAmount(r.Unassigned))
	}
	writeSection(&b, LabelShare, r.Participants, r.Share)
	writeSection(&b, LabelPaid, r.Participants, r.Paid)
	writeSection(&b, LabelBalance, r.Participants, r.Balance)
	return strings.TrimRight(b.String(), "\n")
}

func writeSection(b *strings.Builder, label string, participants []core.Participant, values map[core.Participant]decimal.Decimal) {
	fmt.Fprintf(b, "\n%s:\n", label)
	for _, p := range participants {
		// Missing keys render as zero; Settle never produces them.
		fmt.Fprintf(b, "%s: %s\n", p, core.FormatAmount(values[p]))
	}
}

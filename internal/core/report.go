package core

import "github.com/shopspring/decimal"

// MonthlyReport is the settlement of one period. Share, Paid and Balance
// always carry every household participant.
type MonthlyReport struct {
	Period       Period
	Participants []Participant // display order
	Total        decimal.Decimal
	Share        map[Participant]decimal.Decimal
	Paid         map[Participant]decimal.Decimal
	Balance      map[Participant]decimal.Decimal
	// Unassigned is spend whose payer is not a participant. It is part of
	// Total but nobody's Paid.
	Unassigned decimal.Decimal
}

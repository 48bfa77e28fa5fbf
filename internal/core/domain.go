package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Canonical spelling of the household members.
const (
	Bruno  Participant = "bruno"
	Joao   Participant = "joão"
	Raissa Participant = "raissa"
)

type (
	// Participant identifies a household member by canonical lowercase name.
	Participant string

	// Period is a calendar month of a given year.
	Period struct {
		Month int // 1-12
		Year  int
	}

	// ExpenseRecord is the unified shape both spreadsheet tabs normalize to.
	ExpenseRecord struct {
		Date   time.Time
		Amount decimal.Decimal
		Payer  Participant
	}

	// RawManualRow is a row of the manually maintained tab (data, valor, pagador).
	RawManualRow struct {
		Date   string
		Amount string
		Payer  string
	}

	// RawBotRow is a row of the form responses tab filled by the bot.
	RawBotRow struct {
		Timestamp   string // "Carimbo de data/hora"
		Type        string // "Tipo"
		Amount      string // "Valor"
		Description string // "Descrição"
		Responsible string // "Responsável"
	}

	// Entry is an expense collected through the chat dialog, ready to submit.
	Entry struct {
		Type        string
		Amount      string
		Description string
		Buyer       string
	}
)

var (
	ErrMalformedAmount             = errors.New("malformed amount")
	ErrMalformedDate               = errors.New("malformed date")
	ErrInvalidPeriod               = errors.New("invalid period")
	ErrSubmissionFailed            = errors.New("submission failed")
	ErrUnexpectedConfirmationInput = errors.New("unexpected confirmation input")
	ErrEmptyField                  = errors.New("empty entry field")
)

// NewPeriod builds a Period and validates it.
func NewPeriod(month, year int) (Period, error) {
	p := Period{Month: month, Year: year}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return fmt.Errorf("%w: month %d out of range", ErrInvalidPeriod, p.Month)
	}
	if p.Year < 1 {
		return fmt.Errorf("%w: year %d out of range", ErrInvalidPeriod, p.Year)
	}
	return nil
}

// Contains reports whether t falls in the period (exact month and year match).
func (p Period) Contains(t time.Time) bool {
	return int(t.Month()) == p.Month && t.Year() == p.Year
}

// String renders the period as M/YYYY.
func (p Period) String() string {
	return fmt.Sprintf("%d/%d", p.Month, p.Year)
}

func (p Participant) String() string {
	return string(p)
}

func (e Entry) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"type", e.Type},
		{"amount", e.Amount},
		{"description", e.Description},
		{"buyer", e.Buyer},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s", ErrEmptyField, f.name)
		}
	}
	return nil
}

// Lower returns a copy with every free-text field lowercased.
func (e Entry) Lower() Entry {
	return Entry{
		Type:        strings.ToLower(e.Type),
		Amount:      strings.ToLower(e.Amount),
		Description: strings.ToLower(e.Description),
		Buyer:       strings.ToLower(e.Buyer),
	}
}

package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestPeriodValidate(t *testing.T) {
	cases := []struct {
		p  Period
		ok bool
	}{
		{Period{Month: 1, Year: 2024}, true},
		{Period{Month: 12, Year: 2024}, true},
		{Period{Month: 0, Year: 2024}, false},
		{Period{Month: 13, Year: 2024}, false},
		{Period{Month: 3, Year: 0}, false},
	}
	for i, tc := range cases {
		err := tc.p.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidPeriod) {
			t.Fatalf("case %d expected ErrInvalidPeriod, got %v", i, err)
		}
	}
}

func TestPeriodContains(t *testing.T) {
	p := Period{Month: 3, Year: 2024}
	if !p.Contains(time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected march 2024 to be contained")
	}
	if p.Contains(time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("same month of another year must not match")
	}
	if p.Contains(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("next month must not match")
	}
	if got := p.String(); got != "3/2024" {
		t.Fatalf("String() = %q", got)
	}
}

func TestEntryValidate(t *testing.T) {
	good := Entry{Type: "despesa", Amount: "50,00", Description: "mercado", Buyer: "Bruno"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Entry{
		{Type: "", Amount: "1", Description: "a", Buyer: "b"},
		{Type: "t", Amount: " ", Description: "a", Buyer: "b"},
		{Type: "t", Amount: "1", Description: "", Buyer: "b"},
		{Type: "t", Amount: "1", Description: "a", Buyer: ""},
	}
	for i, e := range bads {
		if err := e.Validate(); !errors.Is(err, ErrEmptyField) {
			t.Fatalf("case %d expected ErrEmptyField, got %v", i, err)
		}
	}
}

func TestEntryValidate_LongDescription(t *testing.T) {
	e := Entry{Type: "despesa", Amount: "50,00", Description: strings.Repeat("feira da semana ", 20), Buyer: "Bruno"}
	if err := e.Validate(); err != nil {
		t.Fatalf("long description should be accepted, got %v", err)
	}
}

func TestEntryLower(t *testing.T) {
	e := Entry{Type: "Despesa", Amount: "50,00", Description: "Mercado", Buyer: "João"}.Lower()
	want := Entry{Type: "despesa", Amount: "50,00", Description: "mercado", Buyer: "joão"}
	if e != want {
		t.Fatalf("Lower() = %+v, want %+v", e, want)
	}
}

package normalize

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"casinha/internal/core"
)

func TestNormalize_ManualAndBot(t *testing.T) {
	manual := []core.RawManualRow{
		{Date: "01/03/2024", Amount: "R$ 1.234,56", Payer: "joao"},
		{Date: "5/3/2024", Amount: "R$ 10,00", Payer: "Bruno"},
	}
	bot := []core.RawBotRow{
		{Timestamp: "01/03/2024 10:00:00", Type: "despesa", Amount: "1234,56", Description: "mercado", Responsible: "raissa"},
	}

	got, err := Normalize(manual, bot)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}

	want := []core.ExpenseRecord{
		{Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.RequireFromString("1234.56"), Payer: core.Joao},
		{Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), Amount: decimal.RequireFromString("10"), Payer: core.Bruno},
		{Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.RequireFromString("1234.56"), Payer: core.Raissa},
	}
	for i := range want {
		if !got[i].Date.Equal(want[i].Date) || !got[i].Amount.Equal(want[i].Amount) || got[i].Payer != want[i].Payer {
			t.Fatalf("record %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestNormalize_SkipsBlankRows(t *testing.T) {
	manual := []core.RawManualRow{{}, {Date: " ", Amount: "", Payer: ""}}
	bot := []core.RawBotRow{{Type: "despesa", Description: "sobrou"}}
	got, err := Normalize(manual, bot)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no records, got %v", got)
	}
}

func TestNormalize_AbortsOnFirstMalformedRow(t *testing.T) {
	tests := []struct {
		name    string
		manual  []core.RawManualRow
		bot     []core.RawBotRow
		wantErr error
		wantMsg string
	}{
		{
			name:    "manual amount",
			manual:  []core.RawManualRow{{Date: "01/03/2024", Amount: "R$ 10,00", Payer: "bruno"}, {Date: "02/03/2024", Amount: "dez", Payer: "bruno"}},
			wantErr: core.ErrMalformedAmount,
			wantMsg: "manual row 2",
		},
		{
			name:    "manual date",
			manual:  []core.RawManualRow{{Date: "2024-03-01", Amount: "R$ 10,00", Payer: "bruno"}},
			wantErr: core.ErrMalformedDate,
			wantMsg: "manual row 1",
		},
		{
			name:    "bot amount",
			bot:     []core.RawBotRow{{Timestamp: "01/03/2024 10:00:00", Amount: "R$ 5", Responsible: "raissa"}},
			wantErr: core.ErrMalformedAmount,
			wantMsg: "bot row 1",
		},
		{
			name:    "bot date",
			bot:     []core.RawBotRow{{Timestamp: "ontem", Amount: "5", Responsible: "raissa"}},
			wantErr: core.ErrMalformedDate,
			wantMsg: "bot row 1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.manual, tt.bot)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Fatalf("error %q should mention %q", err, tt.wantMsg)
			}
			if got != nil {
				t.Fatalf("no partial result expected, got %v", got)
			}
		})
	}
}

func TestNormalize_NegativeManualAmounts(t *testing.T) {
	manual := []core.RawManualRow{
		{Date: "05/03/2024", Amount: "-R$ 10,00", Payer: "bruno"},
		{Date: "06/03/2024", Amount: "R$ -2,50", Payer: "raissa"},
	}
	got, err := Normalize(manual, nil)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	for i, want := range []string{"-10", "-2.5"} {
		if !got[i].Amount.Equal(decimal.RequireFromString(want)) {
			t.Fatalf("record %d amount = %s, want %s", i, got[i].Amount, want)
		}
	}
}

func TestStripTimeOfDay(t *testing.T) {
	cases := map[string]string{
		"01/03/2024 10:00:00": "01/03/2024",
		"1/3/2024 9:05:07":    "1/3/2024",
		"01/03/2024":          "01/03/2024",
	}
	for in, want := range cases {
		if got := StripTimeOfDay(in); got != want {
			t.Fatalf("StripTimeOfDay(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPayerCanonicalization(t *testing.T) {
	manual := map[string]core.Participant{
		"joao":   core.Joao,
		"Joao ":  core.Joao,
		"joão":   core.Joao,
		"Bruno":  core.Bruno,
		"raissa": core.Raissa,
		"maria":  "maria",
	}
	for in, want := range manual {
		if got := ManualPayer(in); got != want {
			t.Fatalf("ManualPayer(%q) = %q, want %q", in, got, want)
		}
	}
	if got := BotPayer(" João"); got != core.Joao {
		t.Fatalf("BotPayer = %q", got)
	}
	if got := BotPayer("joao"); got != "joao" {
		t.Fatalf("bot names are not respelled, got %q", got)
	}
}

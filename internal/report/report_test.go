package report

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"casinha/internal/core"
)

func TestFormat_EndToEndReport(t *testing.T) {
	d := decimal.RequireFromString
	r := core.MonthlyReport{
		Period:       core.Period{Month: 3, Year: 2024},
		Participants: []core.Participant{core.Bruno, core.Joao, core.Raissa},
		Total:        d("150"),
		Share:        map[core.Participant]decimal.Decimal{core.Bruno: d("54.63"), core.Joao: d("54.63"), core.Raissa: d("40.74")},
		Paid:         map[core.Participant]decimal.Decimal{core.Bruno: d("100"), core.Joao: decimal.Zero, core.Raissa: d("50")},
		Balance:      map[core.Participant]decimal.Decimal{core.Bruno: d("-45.37"), core.Joao: d("54.63"), core.Raissa: d("-9.26")},
	}

	want := strings.Join([]string{
		"Gastos totais do mês 3/2024: 150.00",
		"",
		"Divisão de gastos:",
		"bruno: 54.63",
		"joão: 54.63",
		"raissa: 40.74",
		"",
		"Pagamentos realizados:",
		"bruno: 100.00",
		"joão: 0.00",
		"raissa: 50.00",
		"",
		"Saldo final:",
		"bruno: -45.37",
		"joão: 54.63",
		"raissa: -9.26",
	}, "\n")

	if got := Format(r); got != want {
		t.Fatalf("Format mismatch\n got:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormat_ZeroReportListsEveryParticipant(t *testing.T) {
	r := core.MonthlyReport{
		Period:       core.Period{Month: 1, Year: 2025},
		Participants: []core.Participant{core.Bruno, core.Joao, core.Raissa},
	}
	got := Format(r)
	for _, p := range r.Participants {
		if c := strings.Count(got, string(p)+": 0.00"); c != 3 {
			t.Fatalf("expected %s three times with 0.00, got %d in:\n%s", p, c, got)
		}
	}
	if strings.Contains(got, LabelUnassigned) {
		t.Fatalf("unassigned line must be omitted when zero")
	}
}

func TestFormat_UnassignedLine(t *testing.T) {
	r := core.MonthlyReport{
		Period:       core.Period{Month: 1, Year: 2025},
		Participants: []core.Participant{core.Bruno},
		Total:        decimal.RequireFromString("20"),
		Unassigned:   decimal.RequireFromString("20"),
	}
	if got := Format(r); !strings.Contains(got, "Sem responsável: 20.00") {
		t.Fatalf("expected unassigned line in:\n%s", got)
	}
}

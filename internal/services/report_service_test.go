package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"

	"casinha/internal/core"
	"casinha/internal/log"
	"casinha/internal/sheets/memory"
)

func discardLogger() *log.Logger {
	return log.New(log.Config{Output: io.Discard, Component: log.ComponentReport})
}

type failingSource struct {
	manualErr error
	botErr    error
}

func (f failingSource) FetchManualRecords(context.Context) ([]core.RawManualRow, error) {
	return nil, f.manualErr
}

func (f failingSource) FetchBotRecords(context.Context) ([]core.RawBotRow, error) {
	return nil, f.botErr
}

func sampleStore() *memory.Store {
	return memory.New(
		[]core.RawManualRow{
			{Date: "10/03/2024", Amount: "R$ 100,00", Payer: "Bruno"},
			{Date: "02/02/2024", Amount: "R$ 999,00", Payer: "Bruno"},
		},
		[]core.RawBotRow{
			{Timestamp: "15/03/2024 10:00:00", Type: "despesa", Amount: "50.00", Description: "mercado", Responsible: "raissa"},
		},
	)
}

func TestReportService_Generate(t *testing.T) {
	svc := NewReportService(sampleStore(), core.DefaultHousehold(), discardLogger())
	p, _ := core.NewPeriod(3, 2024)

	text, err := svc.Generate(context.Background(), p)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, want := range []string{
		"Gastos totais do mês 3/2024: 150.00",
		"bruno: 54.63",
		"raissa: 40.74",
		"bruno: 100.00",
		"bruno: -45.37",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("missing %q in:\n%s", want, text)
		}
	}
}

func TestReportService_FetchFailureAbortsReport(t *testing.T) {
	boom := errors.New("sheet unreachable")
	for name, src := range map[string]failingSource{
		"manual": {manualErr: boom},
		"bot":    {botErr: boom},
	} {
		t.Run(name, func(t *testing.T) {
			svc := NewReportService(src, core.DefaultHousehold(), discardLogger())
			p, _ := core.NewPeriod(3, 2024)
			if _, err := svc.Generate(context.Background(), p); !errors.Is(err, boom) {
				t.Fatalf("expected fetch error, got %v", err)
			}
		})
	}
}

func TestReportService_MalformedRowAbortsReport(t *testing.T) {
	store := memory.New([]core.RawManualRow{{Date: "10/03/2024", Amount: "cem reais", Payer: "bruno"}}, nil)
	svc := NewReportService(store, core.DefaultHousehold(), discardLogger())
	p, _ := core.NewPeriod(3, 2024)
	if _, err := svc.Report(context.Background(), p); !errors.Is(err, core.ErrMalformedAmount) {
		t.Fatalf("expected ErrMalformedAmount, got %v", err)
	}
}

func TestReportService_InvalidPeriod(t *testing.T) {
	svc := NewReportService(sampleStore(), core.DefaultHousehold(), discardLogger())
	if _, err := svc.Report(context.Background(), core.Period{Month: 13, Year: 2024}); !errors.Is(err, core.ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

type invalidatingSource struct {
	*memory.Store
	calls atomic.Int32
}

func (s *invalidatingSource) Invalidate() { s.calls.Add(1) }

func TestReportService_Invalidate(t *testing.T) {
	src := &invalidatingSource{Store: sampleStore()}
	svc := NewReportService(src, core.DefaultHousehold(), discardLogger())
	svc.Invalidate()
	if src.calls.Load() != 1 {
		t.Fatalf("Invalidate not forwarded")
	}
	// Sources without snapshots are left alone.
	NewReportService(sampleStore(), core.DefaultHousehold(), nil).Invalidate()
}

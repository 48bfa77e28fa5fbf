package services

import (
	"context"
	"fmt"
	"time"

	"casinha/internal/core"
	"casinha/internal/log"
	"casinha/internal/normalize"
	"casinha/internal/report"
	"casinha/internal/settlement"
	"casinha/internal/sheets"

	"golang.org/x/sync/errgroup"
)

// Invalidator is implemented by sources that keep snapshots.
type Invalidator interface {
	Invalidate()
}

// ReportService builds the monthly settlement from both spreadsheet tabs.
type ReportService struct {
	source    sheets.RecordSource
	household core.Household
	logger    *log.StructuredLogger
}

func NewReportService(source sheets.RecordSource, household core.Household, logger *log.Logger) *ReportService {
	return &ReportService{
		source:    source,
		household: household,
		logger:    log.NewStructuredLogger(logger),
	}
}

// Report fetches both tabs concurrently, normalizes them and settles p.
// Any fetch or row error aborts the whole report.
func (s *ReportService) Report(ctx context.Context, p core.Period) (core.MonthlyReport, error) {
	if err := p.Validate(); err != nil {
		return core.MonthlyReport{}, err
	}
	start := time.Now()

	var (
		manual []core.RawManualRow
		bot    []core.RawBotRow
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.source.FetchManualRecords(gctx)
		if err != nil {
			return fmt.Errorf("fetch manual records: %w", err)
		}
		manual = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.source.FetchBotRecords(gctx)
		if err != nil {
			return fmt.Errorf("fetch bot records: %w", err)
		}
		bot = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.LogError(ctx, "Report fetch failed", err, log.OpFetch, log.NewFields().WithPeriod(p.Month, p.Year))
		return core.MonthlyReport{}, err
	}

	records, err := normalize.Normalize(manual, bot)
	if err != nil {
		s.logger.LogError(ctx, "Report normalization failed", err, log.OpParse, log.NewFields().WithPeriod(p.Month, p.Year))
		return core.MonthlyReport{}, fmt.Errorf("normalize records: %w", err)
	}

	r := settlement.Settle(s.household, records, p)
	s.logger.LogReportGenerated(ctx, p.Month, p.Year, len(records), core.FormatAmount(r.Total), time.Since(start).Milliseconds())
	return r, nil
}

// Generate returns the formatted report text for p.
func (s *ReportService) Generate(ctx context.Context, p core.Period) (string, error) {
	r, err := s.Report(ctx, p)
	if err != nil {
		return "", err
	}
	return report.Format(r), nil
}

// Invalidate drops cached snapshots, if the source keeps any.
func (s *ReportService) Invalidate() {
	if inv, ok := s.source.(Invalidator); ok {
		inv.Invalidate()
	}
}

package cached

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"casinha/internal/cache"
	"casinha/internal/core"
)

type countingSource struct {
	manualCalls atomic.Int32
	botCalls    atomic.Int32
	err         error
	delay       time.Duration
}

func (c *countingSource) FetchManualRecords(ctx context.Context) ([]core.RawManualRow, error) {
	c.manualCalls.Add(1)
	time.Sleep(c.delay)
	if c.err != nil {
		return nil, c.err
	}
	return []core.RawManualRow{{Date: "01/03/2024", Amount: "10", Payer: "bruno"}}, nil
}

func (c *countingSource) FetchBotRecords(ctx context.Context) ([]core.RawBotRow, error) {
	c.botCalls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return []core.RawBotRow{{Timestamp: "01/03/2024 10:00:00", Amount: "5", Responsible: "raissa"}}, nil
}

func TestSourceCachesSnapshots(t *testing.T) {
	up := &countingSource{}
	s := New(up, time.Hour)

	for i := 0; i < 3; i++ {
		if _, err := s.FetchManualRecords(context.Background()); err != nil {
			t.Fatalf("FetchManualRecords: %v", err)
		}
		if _, err := s.FetchBotRecords(context.Background()); err != nil {
			t.Fatalf("FetchBotRecords: %v", err)
		}
	}
	if up.manualCalls.Load() != 1 || up.botCalls.Load() != 1 {
		t.Fatalf("calls manual=%d bot=%d, want 1 each", up.manualCalls.Load(), up.botCalls.Load())
	}

	s.Invalidate()
	s.FetchManualRecords(context.Background())
	if up.manualCalls.Load() != 2 {
		t.Fatalf("expected refetch after Invalidate, calls=%d", up.manualCalls.Load())
	}
}

func TestSourceReturnsCopies(t *testing.T) {
	s := New(&countingSource{}, time.Hour)
	rows, _ := s.FetchManualRecords(context.Background())
	rows[0].Payer = "changed"
	again, _ := s.FetchManualRecords(context.Background())
	if again[0].Payer != "bruno" {
		t.Fatalf("cached snapshot was mutated: %+v", again[0])
	}
}

func TestSourceDoesNotCacheErrors(t *testing.T) {
	up := &countingSource{err: errors.New("unreachable")}
	s := New(up, time.Hour)
	if _, err := s.FetchBotRecords(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	s.FetchBotRecords(context.Background())
	if up.botCalls.Load() != 2 {
		t.Fatalf("errors should not be cached, calls=%d", up.botCalls.Load())
	}
}

func TestSourceSharesConcurrentMisses(t *testing.T) {
	up := &countingSource{delay: 20 * time.Millisecond}
	s := New(up, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.FetchManualRecords(context.Background())
		}()
	}
	wg.Wait()
	if n := up.manualCalls.Load(); n != 1 {
		t.Fatalf("upstream calls = %d, want 1", n)
	}
}

func TestSourceCleanersRegister(t *testing.T) {
	s := New(&countingSource{}, time.Hour)
	m := cache.NewManager(nil)
	m.Register(s.Cleaners()...)
	if n := m.CleanAll(); n != 0 {
		t.Fatalf("cleaned = %d", n)
	}
}

// ctxSource records the context each upstream fetch sees.
type ctxSource struct {
	countingSource
	mu          sync.Mutex
	errs        []error
	hasDeadline bool
}

func (c *ctxSource) FetchBotRecords(ctx context.Context) ([]core.RawBotRow, error) {
	c.mu.Lock()
	c.errs = append(c.errs, ctx.Err())
	_, c.hasDeadline = ctx.Deadline()
	c.mu.Unlock()
	return c.countingSource.FetchBotRecords(ctx)
}

func TestSourceLoadIgnoresCallerCancellation(t *testing.T) {
	up := &ctxSource{}
	s := New(up, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rows, err := s.FetchBotRecords(ctx)
	if err != nil {
		t.Fatalf("FetchBotRecords: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if len(up.errs) != 1 || up.errs[0] != nil {
		t.Fatalf("upstream saw ctx errors %v, want [nil]", up.errs)
	}
	if !up.hasDeadline {
		t.Fatal("shared load should carry a deadline")
	}
}

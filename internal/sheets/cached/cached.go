// Package cached keeps short-lived snapshots of both spreadsheet tabs so that
// repeated reports do not refetch them.
package cached

import (
	"context"
	"time"

	"casinha/internal/cache"
	"casinha/internal/core"
	"casinha/internal/sheets"

	"golang.org/x/sync/singleflight"
)

const (
	keyManual = "manual"
	keyBot    = "bot"

	// DefaultLoadTimeout bounds a shared upstream fetch.
	DefaultLoadTimeout = 30 * time.Second
)

// Source wraps a RecordSource with TTL snapshots. Concurrent misses for the
// same tab share one upstream fetch.
type Source struct {
	next   sheets.RecordSource
	manual *cache.LRUCache[[]core.RawManualRow]
	bot    *cache.LRUCache[[]core.RawBotRow]
	group  singleflight.Group

	loadTimeout time.Duration
}

var _ sheets.RecordSource = (*Source)(nil)

func New(next sheets.RecordSource, ttl time.Duration) *Source {
	return &Source{
		next:   next,
		manual: cache.NewLRUCache[[]core.RawManualRow](1, ttl),
		bot:    cache.NewLRUCache[[]core.RawBotRow](1, ttl),

		loadTimeout: DefaultLoadTimeout,
	}
}

func (s *Source) FetchManualRecords(ctx context.Context) ([]core.RawManualRow, error) {
	return fetch(ctx, s, s.manual, keyManual, s.next.FetchManualRecords)
}

func (s *Source) FetchBotRecords(ctx context.Context) ([]core.RawBotRow, error) {
	return fetch(ctx, s, s.bot, keyBot, s.next.FetchBotRecords)
}

func fetch[T any](ctx context.Context, s *Source, c *cache.LRUCache[[]T], key string, load func(context.Context) ([]T, error)) ([]T, error) {
	if rows, ok := c.Get(key); ok {
		return append([]T(nil), rows...), nil
	}
	v, err, _ := s.group.Do(key, func() (any, error) {
		if rows, ok := c.Get(key); ok {
			return rows, nil
		}
		// The load is shared by every waiter, so one caller going away must
		// not fail the others.
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.loadTimeout)
		defer cancel()
		rows, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		// An Invalidate that lands while the load is in flight is lost: the
		// snapshot stored here may predate it until the TTL expires.
		c.Set(key, rows)
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]T(nil), v.([]T)...), nil
}

// Invalidate drops both snapshots, e.g. after an entry was submitted.
func (s *Source) Invalidate() {
	s.manual.Clear()
	s.bot.Clear()
}

// Cleaners exposes the snapshot caches for a cache.Manager.
func (s *Source) Cleaners() []cache.Cleaner {
	return []cache.Cleaner{s.manual, s.bot}
}

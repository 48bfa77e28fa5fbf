// Package trace tags every chat message with an id and logs how it was
// handled.
package trace

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"casinha/internal/bot"
	"casinha/internal/log"
)

// ContextKey type for context keys
type ContextKey string

const (
	// MessageIDKey is the context key for the message id
	MessageIDKey ContextKey = "message_id"
)

// Middleware handles message tracing and logging
type Middleware struct {
	logger  *log.Logger
	metrics *Metrics
}

// Metrics tracks message metrics
type Metrics struct {
	TotalMessages       int64
	FailedMessages      int64
	AverageResponseTime int64 // in microseconds
}

func NewMiddleware(logger *log.Logger) *Middleware {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Middleware{logger: logger, metrics: &Metrics{}}
}

// Wrap returns next with tracing. The handler sees a context carrying the
// message id and a logger stamped with it.
func (m *Middleware) Wrap(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, msg bot.Message) error {
		start := time.Now()
		id := GenerateMessageID()

		logger := m.logger.With(string(MessageIDKey), id)
		ctx = context.WithValue(ctx, MessageIDKey, id)
		ctx = log.WithLogger(ctx, logger)

		logger.DebugContext(ctx, "Message received",
			log.FieldChatID, msg.ChatID,
			log.FieldUserID, msg.UserID)

		total := atomic.AddInt64(&m.metrics.TotalMessages, 1)
		err := next(ctx, msg)

		duration := time.Since(start)
		m.recordDuration(total, duration)

		level := slog.LevelDebug
		if err != nil {
			atomic.AddInt64(&m.metrics.FailedMessages, 1)
			level = slog.LevelError
		}
		args := []any{
			log.FieldChatID, msg.ChatID,
			log.FieldUserID, msg.UserID,
			log.FieldDuration, duration.Milliseconds(),
			log.FieldSuccess, err == nil,
		}
		if err != nil {
			args = append(args, log.FieldError, err)
		}
		logger.Log(ctx, level, "Message handled", args...)
		return err
	}
}

// recordDuration folds d into the running average.
func (m *Middleware) recordDuration(n int64, d time.Duration) {
	us := d.Microseconds()
	for {
		old := atomic.LoadInt64(&m.metrics.AverageResponseTime)
		avg := old + (us-old)/n
		if atomic.CompareAndSwapInt64(&m.metrics.AverageResponseTime, old, avg) {
			return
		}
	}
}

// GenerateMessageID creates a unique message id for tracing
func GenerateMessageID() string {
	return "msg_" + uuid.NewString()
}

// GetMessageID extracts the message id from context
func GetMessageID(ctx context.Context) string {
	if id, ok := ctx.Value(MessageIDKey).(string); ok {
		return id
	}
	return ""
}

// GetMetrics returns current metrics
func (m *Middleware) GetMetrics() Metrics {
	return Metrics{
		TotalMessages:       atomic.LoadInt64(&m.metrics.TotalMessages),
		FailedMessages:      atomic.LoadInt64(&m.metrics.FailedMessages),
		AverageResponseTime: atomic.LoadInt64(&m.metrics.AverageResponseTime),
	}
}

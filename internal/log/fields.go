package log

import (
	"context"
	"log/slog"
)

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldChatID      = "chat_id"
	FieldUserID      = "user_id"
	FieldCommand     = "command"
	FieldDialogState = "dialog_state"
	FieldSuccess     = "success"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldYear        = "year"
	FieldMonth       = "month"
	FieldEntryType   = "entry_type"
	FieldEntryAmount = "entry_amount"
	FieldEntryBuyer  = "entry_buyer"
	FieldEntryUID    = "entry_uid"
	FieldRecords     = "records"
	FieldTotal       = "total"
	FieldRef         = "ref"
	FieldDuration    = "duration_ms"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentBot     = "bot"
	ComponentDialog  = "dialog"
	ComponentEntry   = "entry"
	ComponentReport  = "report"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
	ComponentCache   = "cache"
	ComponentBackend = "backend"
)

// Operations defines standard operation names
const (
	OpSubmit   = "submit"
	OpEnqueue  = "enqueue"
	OpFetch    = "fetch"
	OpSettle   = "settle"
	OpSync     = "sync"
	OpParse    = "parse"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithChat adds the conversation coordinates.
func (f LogFields) WithChat(chatID, userID string) LogFields {
	f[FieldChatID] = chatID
	f[FieldUserID] = userID
	return f
}

// WithEntry adds dialog entry fields. Descriptions are left out on purpose.
func (f LogFields) WithEntry(typ, amount, buyer string) LogFields {
	f[FieldEntryType] = typ
	f[FieldEntryAmount] = amount
	f[FieldEntryBuyer] = buyer
	return f
}

func (f LogFields) WithPeriod(month, year int) LogFields {
	f[FieldMonth] = month
	f[FieldYear] = year
	return f
}

// ToSlice converts LogFields to a slice for slog. The component field is
// dropped because the Logger already carries one.
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		if k == FieldComponent {
			continue
		}
		slice = append(slice, k, v)
	}
	return slice
}

// StructuredLogger provides event helpers on top of Logger.
type StructuredLogger struct {
	logger *Logger
}

// NewStructuredLogger wraps logger. A nil logger uses slog.Default.
func NewStructuredLogger(logger *Logger) *StructuredLogger {
	if logger == nil {
		logger = &Logger{Logger: slog.Default(), component: ComponentApp, root: slog.Default().Handler()}
	}
	return &StructuredLogger{logger: logger}
}

// LogEntrySubmitted logs a stored or enqueued entry.
func (sl *StructuredLogger) LogEntrySubmitted(ctx context.Context, op, typ, amount, buyer, ref string) {
	fields := NewFields().
		WithEntry(typ, amount, buyer).
		WithOperation(op).
		ToSlice()
	fields = append(fields, FieldRef, ref)
	sl.logger.InfoContext(ctx, "Entry submitted", fields...)
}

// LogReportGenerated logs a finished monthly report.
func (sl *StructuredLogger) LogReportGenerated(ctx context.Context, month, year, records int, total string, durationMs int64) {
	fields := NewFields().
		WithPeriod(month, year).
		WithOperation(OpSettle).
		ToSlice()
	fields = append(fields, FieldRecords, records, FieldTotal, total, FieldDuration, durationMs)
	sl.logger.InfoContext(ctx, "Monthly report generated", fields...)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	all := fields.WithError(err).WithOperation(operation)
	sl.logger.Logger.Log(ctx, slog.LevelError, msg, all.ToSlice()...)
}

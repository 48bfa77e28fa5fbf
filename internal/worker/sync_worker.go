package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"casinha/internal/amqp"
	"casinha/internal/sheets"
	"casinha/internal/storage"
)

// Journal is the part of the entry journal the worker needs.
type Journal interface {
	GetEntry(ctx context.Context, uid string) (storage.JournalEntry, error)
	PendingEntries(ctx context.Context, limit, maxAttempts int) ([]storage.JournalEntry, error)
	MarkSynced(ctx context.Context, uid, ref string) error
	MarkSyncError(ctx context.Context, uid string, cause error) error
}

// Config tunes the pending sweep.
type Config struct {
	BatchSize   int
	MaxAttempts int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{BatchSize: 10, MaxAttempts: 5}
}

// SyncWorker delivers journaled entries to the configured submitter.
type SyncWorker struct {
	journal   Journal
	submitter sheets.EntrySubmitter
	config    Config
}

func NewSyncWorker(journal Journal, submitter sheets.EntrySubmitter, config Config) *SyncWorker {
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultConfig().BatchSize
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultConfig().MaxAttempts
	}
	return &SyncWorker{journal: journal, submitter: submitter, config: config}
}

// HandleSyncMessage delivers the entry named by msg. Already synced entries
// are acknowledged without resubmitting.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.EntrySyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "uid", msg.UID)

	je, err := w.journal.GetEntry(ctx, msg.UID)
	if err != nil {
		return fmt.Errorf("get entry from journal: %w", err)
	}
	if je.SyncStatus == storage.StatusSynced {
		slog.InfoContext(ctx, "Entry already synced, skipping", "uid", je.UID, "ref", je.Ref)
		return nil
	}
	return w.deliver(ctx, je)
}

// ProcessPending delivers a batch of entries that were never acknowledged,
// covering lost messages. It returns how many were delivered.
func (w *SyncWorker) ProcessPending(ctx context.Context) (int, error) {
	return w.processBatch(ctx, w.config.BatchSize)
}

// StartupSyncCheck sweeps a larger batch once when the worker starts.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	synced, err := w.processBatch(ctx, w.config.BatchSize*5)
	if err != nil {
		return fmt.Errorf("startup sync check: %w", err)
	}
	slog.InfoContext(ctx, "Startup sync completed", "synced", synced)
	return nil
}

func (w *SyncWorker) processBatch(ctx context.Context, limit int) (int, error) {
	pending, err := w.journal.PendingEntries(ctx, limit, w.config.MaxAttempts)
	if err != nil {
		return 0, fmt.Errorf("get pending entries: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	slog.InfoContext(ctx, "Processing pending entries", "count", len(pending))
	synced := 0
	for _, je := range pending {
		if ctx.Err() != nil {
			return synced, ctx.Err()
		}
		if err := w.deliver(ctx, je); err != nil {
			slog.ErrorContext(ctx, "Failed to sync entry", "uid", je.UID, "error", err)
			continue
		}
		synced++
	}
	return synced, nil
}

// Run sweeps pending entries every interval until ctx is cancelled.
func (w *SyncWorker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.ProcessPending(ctx); err != nil && ctx.Err() == nil {
				slog.ErrorContext(ctx, "Periodic sync failed", "error", err)
			}
		}
	}
}

func (w *SyncWorker) deliver(ctx context.Context, je storage.JournalEntry) error {
	ref, err := w.submitter.Submit(ctx, je.Entry)
	if err != nil {
		if markErr := w.journal.MarkSyncError(ctx, je.UID, err); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "uid", je.UID, "error", markErr)
		}
		return fmt.Errorf("submit entry: %w", err)
	}

	// The entry is stored even if marking fails; a later sweep may resubmit it.
	if err := w.journal.MarkSynced(ctx, je.UID, ref); err != nil {
		slog.ErrorContext(ctx, "Failed to mark as synced", "uid", je.UID, "error", err)
	}

	slog.InfoContext(ctx, "Successfully synced entry",
		"uid", je.UID,
		"ref", ref,
		"type", je.Entry.Type,
		"amount", je.Entry.Amount,
		"buyer", je.Entry.Buyer)
	return nil
}

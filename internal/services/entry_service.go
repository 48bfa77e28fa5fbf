package services

import (
	"context"
	"errors"
	"fmt"

	"casinha/internal/core"
	"casinha/internal/log"
	"casinha/internal/sheets"
	"casinha/internal/storage"
)

// EntryJournal stores confirmed entries before delivery.
type EntryJournal interface {
	SaveEntry(ctx context.Context, e core.Entry, origin storage.Origin) (storage.JournalEntry, error)
	Close() error
}

// SyncPublisher announces a journaled entry to the worker.
type SyncPublisher interface {
	PublishEntrySync(ctx context.Context, uid string) error
	Close() error
}

// EntryService stores confirmed dialog entries, either straight through the
// submitter or through the journal and queue.
type EntryService struct {
	submitter sheets.EntrySubmitter
	journal   EntryJournal
	publisher SyncPublisher
	onStored  func()
	logger    *log.StructuredLogger
}

// NewDirectEntryService submits every entry synchronously.
func NewDirectEntryService(submitter sheets.EntrySubmitter, logger *log.Logger) *EntryService {
	return &EntryService{submitter: submitter, logger: log.NewStructuredLogger(logger)}
}

// NewQueuedEntryService journals entries and publishes a sync message.
// A nil publisher leaves delivery to the worker's pending sweep.
func NewQueuedEntryService(journal EntryJournal, publisher SyncPublisher, logger *log.Logger) *EntryService {
	return &EntryService{journal: journal, publisher: publisher, logger: log.NewStructuredLogger(logger)}
}

// OnStored registers fn to run after every stored entry.
func (s *EntryService) OnStored(fn func()) {
	s.onStored = fn
}

// Submit stores e. Every failure wraps core.ErrSubmissionFailed.
func (s *EntryService) Submit(ctx context.Context, e core.Entry, origin storage.Origin) (string, error) {
	ref, op, err := s.store(ctx, e, origin)
	if err != nil {
		s.logger.LogError(ctx, "Entry submission failed", err, op,
			log.NewFields().WithChat(origin.ChatID, origin.UserID).WithEntry(e.Type, e.Amount, e.Buyer))
		if !errors.Is(err, core.ErrSubmissionFailed) {
			err = fmt.Errorf("%w: %w", core.ErrSubmissionFailed, err)
		}
		return "", err
	}
	s.logger.LogEntrySubmitted(ctx, op, e.Type, e.Amount, e.Buyer, ref)
	if s.onStored != nil {
		s.onStored()
	}
	return ref, nil
}

func (s *EntryService) store(ctx context.Context, e core.Entry, origin storage.Origin) (string, string, error) {
	if s.journal == nil {
		if s.submitter == nil {
			return "", log.OpSubmit, errors.New("no submitter configured")
		}
		ref, err := s.submitter.Submit(ctx, e)
		return ref, log.OpSubmit, err
	}

	je, err := s.journal.SaveEntry(ctx, e, origin)
	if err != nil {
		return "", log.OpEnqueue, fmt.Errorf("save entry: %w", err)
	}
	if s.publisher != nil {
		// The entry is journaled; the worker sweep delivers it if this fails.
		if err := s.publisher.PublishEntrySync(ctx, je.UID); err != nil {
			s.logger.LogError(ctx, "Failed to publish sync message", err, log.OpEnqueue,
				log.NewFields().WithChat(origin.ChatID, origin.UserID))
		}
	}
	return "queued:" + je.UID, log.OpEnqueue, nil
}

// Close closes the journal and the publisher.
func (s *EntryService) Close() error {
	var errs []error
	if s.journal != nil {
		if err := s.journal.Close(); err != nil {
			errs = append(errs, fmt.Errorf("journal: %w", err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	return errors.Join(errs...)
}

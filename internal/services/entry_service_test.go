package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"casinha/internal/core"
	"casinha/internal/sheets/memory"
	"casinha/internal/storage"
)

var confirmed = core.Entry{Type: "despesa", Amount: "50,00", Description: "mercado", Buyer: "bruno"}

type rejectingSubmitter struct{ err error }

func (r rejectingSubmitter) Submit(context.Context, core.Entry) (string, error) { return "", r.err }

type fakeJournal struct {
	saved  []core.Entry
	err    error
	closed bool
}

func (j *fakeJournal) SaveEntry(_ context.Context, e core.Entry, _ storage.Origin) (storage.JournalEntry, error) {
	if j.err != nil {
		return storage.JournalEntry{}, j.err
	}
	j.saved = append(j.saved, e)
	return storage.JournalEntry{UID: "uid-1", Entry: e}, nil
}

func (j *fakeJournal) Close() error { j.closed = true; return nil }

type fakePublisher struct {
	published []string
	err       error
	closed    bool
}

func (p *fakePublisher) PublishEntrySync(_ context.Context, uid string) error {
	p.published = append(p.published, uid)
	return p.err
}

func (p *fakePublisher) Close() error { p.closed = true; return nil }

func TestEntryService_Direct(t *testing.T) {
	store := memory.New(nil, nil)
	svc := NewDirectEntryService(store, discardLogger())
	stored := 0
	svc.OnStored(func() { stored++ })

	ref, err := svc.Submit(context.Background(), confirmed, storage.Origin{ChatID: "c", UserID: "u"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if ref != "mem:1" || stored != 1 {
		t.Fatalf("ref = %q stored = %d", ref, stored)
	}
	rows, _ := store.FetchBotRecords(context.Background())
	if len(rows) != 1 || rows[0].Description != "mercado" {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestEntryService_DirectFailureWrapsSubmissionError(t *testing.T) {
	svc := NewDirectEntryService(rejectingSubmitter{err: errors.New("http 500")}, discardLogger())
	stored := false
	svc.OnStored(func() { stored = true })

	_, err := svc.Submit(context.Background(), confirmed, storage.Origin{})
	if !errors.Is(err, core.ErrSubmissionFailed) {
		t.Fatalf("expected ErrSubmissionFailed, got %v", err)
	}
	if stored {
		t.Fatal("OnStored must not run on failure")
	}
}

func TestEntryService_Queued(t *testing.T) {
	j := &fakeJournal{}
	pub := &fakePublisher{}
	svc := NewQueuedEntryService(j, pub, discardLogger())

	ref, err := svc.Submit(context.Background(), confirmed, storage.Origin{})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if ref != "queued:uid-1" || len(j.saved) != 1 || len(pub.published) != 1 || pub.published[0] != "uid-1" {
		t.Fatalf("ref=%q saved=%v published=%v", ref, j.saved, pub.published)
	}

	if err := svc.Close(); err != nil || !j.closed || !pub.closed {
		t.Fatalf("Close: err=%v journal=%v publisher=%v", err, j.closed, pub.closed)
	}
}

func TestEntryService_QueuedPublishFailureStillStores(t *testing.T) {
	svc := NewQueuedEntryService(&fakeJournal{}, &fakePublisher{err: errors.New("broker down")}, discardLogger())
	if _, err := svc.Submit(context.Background(), confirmed, storage.Origin{}); err != nil {
		t.Fatalf("journaled entry should succeed without the broker, got %v", err)
	}
	svc = NewQueuedEntryService(&fakeJournal{}, nil, discardLogger())
	if ref, err := svc.Submit(context.Background(), confirmed, storage.Origin{}); err != nil || !strings.HasPrefix(ref, "queued:") {
		t.Fatalf("ref=%q err=%v", ref, err)
	}
}

func TestEntryService_QueuedJournalFailure(t *testing.T) {
	svc := NewQueuedEntryService(&fakeJournal{err: errors.New("disk full")}, &fakePublisher{}, discardLogger())
	if _, err := svc.Submit(context.Background(), confirmed, storage.Origin{}); !errors.Is(err, core.ErrSubmissionFailed) {
		t.Fatalf("expected ErrSubmissionFailed, got %v", err)
	}
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"casinha/internal/core"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Sync states of a journaled entry.
const (
	StatusPending = "pending"
	StatusSynced  = "synced"
	StatusError   = "error"
)

var ErrNotFound = errors.New("entry not found")

// JournalEntry is a confirmed dialog entry waiting for, or done with, delivery.
type JournalEntry struct {
	ID         int64
	UID        string
	Entry      core.Entry
	ChatID     string
	UserID     string
	SyncStatus string
	Attempts   int
	LastError  string
	Ref        string
	CreatedAt  time.Time
	SyncedAt   *time.Time
}

// Origin identifies the conversation an entry came from.
type Origin struct {
	ChatID string
	UserID string
}

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, now: time.Now}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveEntry journals e as pending and returns it with a fresh UID.
func (r *SQLiteRepository) SaveEntry(ctx context.Context, e core.Entry, origin Origin) (JournalEntry, error) {
	if err := e.Validate(); err != nil {
		return JournalEntry{}, fmt.Errorf("validation failed: %w", err)
	}
	je := JournalEntry{
		UID:        uuid.NewString(),
		Entry:      e,
		ChatID:     origin.ChatID,
		UserID:     origin.UserID,
		SyncStatus: StatusPending,
		CreatedAt:  r.now().UTC(),
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO entries (uid, type, amount, description, buyer, chat_id, user_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		je.UID, e.Type, e.Amount, e.Description, e.Buyer, je.ChatID, je.UserID, formatTime(je.CreatedAt))
	if err != nil {
		return JournalEntry{}, fmt.Errorf("insert entry: %w", err)
	}
	if je.ID, err = res.LastInsertId(); err != nil {
		return JournalEntry{}, fmt.Errorf("entry id: %w", err)
	}

	slog.InfoContext(ctx, "Entry saved to SQLite",
		"id", je.ID,
		"uid", je.UID,
		"type", e.Type,
		"amount", e.Amount,
		"buyer", e.Buyer)
	return je, nil
}

const selectEntry = `SELECT id, uid, type, amount, description, buyer, chat_id, user_id,
	sync_status, attempts, last_error, ref, created_at, synced_at FROM entries`

// GetEntry returns the entry with the given UID or ErrNotFound.
func (r *SQLiteRepository) GetEntry(ctx context.Context, uid string) (JournalEntry, error) {
	row := r.db.QueryRowContext(ctx, selectEntry+` WHERE uid = ?`, uid)
	je, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return JournalEntry{}, fmt.Errorf("%w: %s", ErrNotFound, uid)
	}
	if err != nil {
		return JournalEntry{}, fmt.Errorf("get entry: %w", err)
	}
	return je, nil
}

// PendingEntries returns up to limit entries not yet synced, oldest first.
// Entries that failed maxAttempts times or more are left out.
func (r *SQLiteRepository) PendingEntries(ctx context.Context, limit, maxAttempts int) ([]JournalEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		selectEntry+` WHERE sync_status IN (?, ?) AND attempts < ? ORDER BY id LIMIT ?`,
		StatusPending, StatusError, maxAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending entries: %w", err)
	}
	defer rows.Close()

	var out []JournalEntry
	for rows.Next() {
		je, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		out = append(out, je)
	}
	return out, rows.Err()
}

// MarkSynced records a successful delivery.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, uid, ref string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE entries SET sync_status = ?, ref = ?, last_error = '', synced_at = ? WHERE uid = ?`,
		StatusSynced, ref, formatTime(r.now().UTC()), uid)
	if err != nil {
		return fmt.Errorf("mark entry synced: %w", err)
	}
	if err := expectOne(res, uid); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Entry marked as synced", "uid", uid, "ref", ref)
	return nil
}

// MarkSyncError records a failed delivery attempt.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, uid string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE entries SET sync_status = ?, attempts = attempts + 1, last_error = ? WHERE uid = ? AND sync_status != ?`,
		StatusError, msg, uid, StatusSynced)
	if err != nil {
		return fmt.Errorf("mark entry sync error: %w", err)
	}
	if err := expectOne(res, uid); err != nil {
		return err
	}
	slog.WarnContext(ctx, "Entry marked with sync error", "uid", uid, "error", msg)
	return nil
}

// CountByStatus returns how many entries are in each sync state.
func (r *SQLiteRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT sync_status, COUNT(*) FROM entries GROUP BY sync_status`)
	if err != nil {
		return nil, fmt.Errorf("count entries: %w", err)
	}
	defer rows.Close()

	out := map[string]int{StatusPending: 0, StatusSynced: 0, StatusError: 0}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		out[status] = n
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (JournalEntry, error) {
	var (
		je        JournalEntry
		createdAt string
		syncedAt  sql.NullString
	)
	err := s.Scan(&je.ID, &je.UID, &je.Entry.Type, &je.Entry.Amount, &je.Entry.Description, &je.Entry.Buyer,
		&je.ChatID, &je.UserID, &je.SyncStatus, &je.Attempts, &je.LastError, &je.Ref, &createdAt, &syncedAt)
	if err != nil {
		return JournalEntry{}, err
	}
	if je.CreatedAt, err = parseTime(createdAt); err != nil {
		return JournalEntry{}, err
	}
	if syncedAt.Valid {
		t, err := parseTime(syncedAt.String)
		if err != nil {
			return JournalEntry{}, err
		}
		je.SyncedAt = &t
	}
	return je, nil
}

func expectOne(res sql.Result, uid string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, uid)
	}
	return nil
}

func formatTime(t time.Time) string { return t.Format(time.RFC3339Nano) }

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

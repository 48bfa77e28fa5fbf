package memory

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"casinha/internal/core"
	"casinha/internal/sheets"
)

// Seed file names read by NewFromFiles.
const (
	ManualFile = "manual.csv"
	BotFile    = "bot.csv"
)

// Store keeps both tabs in memory. Submitted entries land in the bot rows.
type Store struct {
	mu     sync.Mutex
	manual []core.RawManualRow
	bot    []core.RawBotRow
	now    func() time.Time
}

var (
	_ sheets.RecordSource   = (*Store)(nil)
	_ sheets.EntrySubmitter = (*Store)(nil)
)

func New(manual []core.RawManualRow, bot []core.RawBotRow) *Store {
	return &Store{
		manual: append([]core.RawManualRow(nil), manual...),
		bot:    append([]core.RawBotRow(nil), bot...),
		now:    time.Now,
	}
}

// NewFromFiles seeds the store from base/manual.csv and base/bot.csv.
// Missing files leave the matching tab empty.
func NewFromFiles(base string) (*Store, error) {
	manualTable, err := readCSV(filepath.Join(base, ManualFile))
	if err != nil {
		return nil, err
	}
	manual, err := sheets.ManualRows(manualTable)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ManualFile, err)
	}
	botTable, err := readCSV(filepath.Join(base, BotFile))
	if err != nil {
		return nil, err
	}
	bot, err := sheets.BotRows(botTable)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", BotFile, err)
	}
	return New(manual, bot), nil
}

// Submit stores the entry as a bot row and returns a synthetic row reference.
func (s *Store) Submit(_ context.Context, e core.Entry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bot = append(s.bot, core.RawBotRow{
		Timestamp:   s.now().Format(sheets.TimestampLayout),
		Type:        e.Type,
		Amount:      e.Amount,
		Description: e.Description,
		Responsible: e.Buyer,
	})
	return fmt.Sprintf("mem:%d", len(s.bot)), nil
}

func (s *Store) FetchManualRecords(_ context.Context) ([]core.RawManualRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.RawManualRow(nil), s.manual...), nil
}

func (s *Store) FetchBotRecords(_ context.Context) ([]core.RawBotRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.RawBotRow(nil), s.bot...), nil
}

// AddManual appends a row to the manual tab.
func (s *Store) AddManual(r core.RawManualRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manual = append(s.manual, r)
}

func readCSV(path string) (sheets.Table, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return sheets.Table{}, nil
	}
	if err != nil {
		return sheets.Table{}, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	values, err := r.ReadAll()
	if err != nil {
		return sheets.Table{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return sheets.NewTable(values), nil
}

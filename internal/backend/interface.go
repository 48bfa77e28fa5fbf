package backend

import (
	"context"
	"time"

	"casinha/internal/cache"
	"casinha/internal/sheets"
)

// BackendResult holds the spreadsheet adapters built for one configuration.
type BackendResult struct {
	// Source reads both tabs, through the snapshot cache when enabled.
	Source sheets.RecordSource
	// Submitter is where confirmed entries end up: the forms endpoint or
	// the backend itself.
	Submitter sheets.EntrySubmitter
	// Cleaners are the caches the cache manager should sweep.
	Cleaners []cache.Cleaner
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type   BackendType
	Target SubmitTarget

	// Memory specific
	DataDirectory string

	// CSV export specific
	DataSheetURL string

	// Shared by csv and sheets
	ManualSheet string
	BotSheet    string

	// Google Sheets specific
	GoogleSpreadsheetID      string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
	GoogleOAuthClientFile    string
	GoogleOAuthTokenFile     string
	GoogleOAuthClientJSON    string
	GoogleOAuthTokenJSON     string

	// Forms specific; empty field ids fall back to the form's defaults.
	FormsURL              string
	FormsFieldType        string
	FormsFieldAmount      string
	FormsFieldDescription string
	FormsFieldBuyer       string

	// Zero disables snapshot caching.
	CacheTTL time.Duration
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	CSVBackend    BackendType = "csv"
	SheetsBackend BackendType = "sheets"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, CSVBackend, SheetsBackend:
		return true
	default:
		return false
	}
}

// SubmitTarget selects where entries are written.
type SubmitTarget string

const (
	FormsTarget   SubmitTarget = "forms"
	BackendTarget SubmitTarget = "backend"
)

func (st SubmitTarget) IsValid() bool {
	return st == FormsTarget || st == BackendTarget
}

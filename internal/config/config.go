package config

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"casinha/internal/core"
)

// Data backends
const (
	BackendMemory = "memory"
	BackendCSV    = "csv"
	BackendSheets = "sheets"
)

// Submit modes
const (
	SubmitDirect = "direct"
	SubmitQueued = "queued"
)

// Submit targets
const (
	TargetForms   = "forms"
	TargetBackend = "backend"
)

type Config struct {
	// Chat
	DiscordToken       string
	CommandPrefix      string
	RateLimitPerMinute int
	RateLimitBurst     int

	// Backend selection
	DataBackend  string
	SubmitMode   string
	SubmitTarget string

	// Memory backend
	DataDirectory string

	// Published CSV export
	DataSheetURL    string
	SheetNameManual string
	SheetNameBot    string

	// Google Forms
	FormsURL              string
	FormsFieldType        string
	FormsFieldAmount      string
	FormsFieldDescription string
	FormsFieldBuyer       string

	// Google Sheets API
	GoogleSpreadsheetID      string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
	GoogleOAuthClientJSON    string
	GoogleOAuthClientFile    string
	GoogleOAuthTokenJSON     string
	GoogleOAuthTokenFile     string

	// Journal and queue
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Worker
	SyncBatchSize   int
	SyncInterval    time.Duration
	SyncMaxAttempts int

	// Reports
	SnapshotCacheTTL time.Duration
	HouseholdShares  string

	LogLevel string
}

func Load() *Config {
	return &Config{
		DiscordToken:  getEnv("DISCORD_TOKEN", ""),
		CommandPrefix: getEnv("COMMAND_PREFIX", "/"),
		// Zero disables the per-user limit.
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 10),

		DataBackend:  getEnv("DATA_BACKEND", BackendMemory),
		SubmitMode:   getEnv("SUBMIT_MODE", SubmitDirect),
		SubmitTarget: getEnv("SUBMIT_TARGET", TargetBackend),

		DataDirectory: getEnv("DATA_DIR", "data"),

		DataSheetURL:    getEnv("DATA_SHEET_URL", ""),
		SheetNameManual: getEnv("SHEET_NAME_MANUAL", "Gastos"),
		SheetNameBot:    getEnv("SHEET_NAME_BOT", "Respostas ao formulário 1"),

		FormsURL:              getEnv("FORMS_URL", ""),
		FormsFieldType:        getEnv("FORMS_FIELD_TYPE", ""),
		FormsFieldAmount:      getEnv("FORMS_FIELD_AMOUNT", ""),
		FormsFieldDescription: getEnv("FORMS_FIELD_DESCRIPTION", ""),
		FormsFieldBuyer:       getEnv("FORMS_FIELD_BUYER", ""),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		GoogleOAuthClientJSON:    getEnv("GOOGLE_OAUTH_CLIENT_JSON", ""),
		GoogleOAuthClientFile:    getEnv("GOOGLE_OAUTH_CLIENT_FILE", ""),
		GoogleOAuthTokenJSON:     getEnv("GOOGLE_OAUTH_TOKEN_JSON", ""),
		GoogleOAuthTokenFile:     getEnv("GOOGLE_OAUTH_TOKEN_FILE", ""),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/casinha.db"),
		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "casinha"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "sync_entries"),

		SyncBatchSize:   getEnvInt("SYNC_BATCH_SIZE", 10),
		SyncInterval:    getEnvDuration("SYNC_INTERVAL", 30*time.Second),
		SyncMaxAttempts: getEnvInt("SYNC_MAX_ATTEMPTS", 5),

		SnapshotCacheTTL: getEnvDuration("SNAPSHOT_CACHE_TTL", time.Minute),
		HouseholdShares:  getEnv("HOUSEHOLD_SHARES", ""),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Household returns the configured shares, or the default household when
// HOUSEHOLD_SHARES is unset.
func (c *Config) Household() (core.Household, error) {
	if strings.TrimSpace(c.HouseholdShares) == "" {
		return core.DefaultHousehold(), nil
	}
	return core.ParseHousehold(c.HouseholdShares)
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	validBackends := []string{BackendMemory, BackendCSV, BackendSheets}
	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}
	validModes := []string{SubmitDirect, SubmitQueued}
	if !slices.Contains(validModes, c.SubmitMode) {
		errors = append(errors, fmt.Sprintf("invalid submit mode '%s': must be one of %v", c.SubmitMode, validModes))
	}
	validTargets := []string{TargetForms, TargetBackend}
	if !slices.Contains(validTargets, c.SubmitTarget) {
		errors = append(errors, fmt.Sprintf("invalid submit target '%s': must be one of %v", c.SubmitTarget, validTargets))
	}

	if strings.TrimSpace(c.CommandPrefix) == "" {
		errors = append(errors, "command prefix cannot be empty")
	}

	switch c.DataBackend {
	case BackendCSV:
		if c.DataSheetURL == "" {
			errors = append(errors, "DATA_SHEET_URL is required when using csv backend")
		} else if u, err := url.Parse(c.DataSheetURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errors = append(errors, fmt.Sprintf("invalid DATA_SHEET_URL '%s': must be an http(s) URL", c.DataSheetURL))
		}
		if c.SubmitTarget == TargetBackend {
			errors = append(errors, "csv backend is read-only: set SUBMIT_TARGET=forms")
		}
	case BackendSheets:
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
		errors = append(errors, c.validateGoogleCredentials()...)
	}

	if c.DataBackend != BackendMemory || c.SubmitTarget == TargetForms {
		if c.SheetNameManual == "" || c.SheetNameBot == "" {
			errors = append(errors, "sheet names cannot be empty")
		}
	}

	if c.SubmitTarget == TargetForms {
		if c.FormsURL == "" {
			errors = append(errors, "FORMS_URL is required when SUBMIT_TARGET is forms")
		} else if u, err := url.Parse(c.FormsURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errors = append(errors, fmt.Sprintf("invalid FORMS_URL '%s': must be an http(s) URL", c.FormsURL))
		}
	}

	if c.SubmitMode == SubmitQueued && c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty when using queued submit mode")
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.RateLimitPerMinute < 0 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must not be negative", c.RateLimitPerMinute))
	}
	if c.RateLimitPerMinute > 0 && c.RateLimitBurst < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit burst %d: must be at least 1", c.RateLimitBurst))
	}

	if c.SyncBatchSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid sync batch size %d: must be at least 1", c.SyncBatchSize))
	} else if c.SyncBatchSize > 1000 {
		errors = append(errors, fmt.Sprintf("invalid sync batch size %d: must be at most 1000", c.SyncBatchSize))
	}
	if c.SyncInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must be at least 1 second", c.SyncInterval))
	} else if c.SyncInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must be at most 24 hours", c.SyncInterval))
	}
	if c.SyncMaxAttempts < 1 {
		errors = append(errors, fmt.Sprintf("invalid sync max attempts %d: must be at least 1", c.SyncMaxAttempts))
	}
	if c.SnapshotCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid snapshot cache ttl %v: must not be negative", c.SnapshotCacheTTL))
	}

	if _, err := c.Household(); err != nil {
		errors = append(errors, fmt.Sprintf("invalid HOUSEHOLD_SHARES: %v", err))
	}

	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s'", c.LogLevel))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// ValidateBot checks what the chat bot needs on top of Validate.
func (c *Config) ValidateBot() error {
	if c.DiscordToken == "" {
		return fmt.Errorf("configuration validation failed:\n- DISCORD_TOKEN is required")
	}
	return nil
}

func (c *Config) validateGoogleCredentials() []string {
	var errors []string
	hasServiceAccount := c.GoogleServiceAccountJSON != "" || c.GoogleServiceAccountFile != "" ||
		os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") != ""
	hasOAuthClient := c.GoogleOAuthClientJSON != "" || c.GoogleOAuthClientFile != ""
	hasOAuthToken := c.GoogleOAuthTokenJSON != "" || c.GoogleOAuthTokenFile != ""

	if !hasServiceAccount && !(hasOAuthClient && hasOAuthToken) {
		errors = append(errors, "sheets backend needs service account credentials or an OAuth client and token")
	}
	for _, f := range []struct{ label, path string }{
		{"service account file", c.GoogleServiceAccountFile},
		{"OAuth client file", c.GoogleOAuthClientFile},
		{"OAuth token file", c.GoogleOAuthTokenFile},
	} {
		if f.path == "" {
			continue
		}
		if _, err := os.Stat(f.path); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google %s does not exist: %s", f.label, f.path))
		}
	}
	return errors
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

package backend

import (
	"context"
	"errors"
	"fmt"

	"casinha/internal/amqp"
	"casinha/internal/log"
	"casinha/internal/services"
	"casinha/internal/sheets"
	"casinha/internal/sheets/cached"
	"casinha/internal/sheets/csvexport"
	"casinha/internal/sheets/forms"
	gsheet "casinha/internal/sheets/google"
	"casinha/internal/sheets/memory"
	"casinha/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) *DefaultFactory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

var _ Factory = (*DefaultFactory)(nil)

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		source sheets.RecordSource
		own    sheets.EntrySubmitter
		err    error
	)
	switch config.Type {
	case MemoryBackend:
		source, own, err = f.createMemoryBackend(config)
	case CSVBackend:
		source, err = f.createCSVBackend(config)
	case SheetsBackend:
		source, own, err = f.createSheetsBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	result := &BackendResult{Source: source, Submitter: own}

	if config.Target == FormsTarget {
		client, err := forms.New(config.FormsURL, formFields(config), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize forms client: %w", err)
		}
		result.Submitter = client
		f.logger.Info("Entries go through Google Forms")
	}
	if result.Submitter == nil {
		return nil, fmt.Errorf("%s backend cannot store entries", config.Type)
	}

	if config.CacheTTL > 0 {
		c := cached.New(source, config.CacheTTL)
		result.Source = c
		result.Cleaners = c.Cleaners()
		f.logger.Info("Snapshot cache enabled", "ttl", config.CacheTTL)
	}
	return result, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (sheets.RecordSource, sheets.EntrySubmitter, error) {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data" // Default directory
	}

	store, err := memory.NewFromFiles(dataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load memory backend: %w", err)
	}

	f.logger.Info("Initialized memory backend", "data_directory", dataDir)
	return store, store, nil
}

func (f *DefaultFactory) createCSVBackend(config Config) (sheets.RecordSource, error) {
	client, err := csvexport.New(config.DataSheetURL, config.ManualSheet, config.BotSheet, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize csv export client: %w", err)
	}

	f.logger.Info("Initialized csv export backend",
		"manual_sheet", config.ManualSheet,
		"bot_sheet", config.BotSheet)
	return client, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (sheets.RecordSource, sheets.EntrySubmitter, error) {
	client, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID: config.GoogleSpreadsheetID,
		ManualSheet:   config.ManualSheet,
		BotSheet:      config.BotSheet,
		Credentials: gsheet.Credentials{
			ServiceAccountJSON: config.GoogleServiceAccountJSON,
			ServiceAccountFile: config.GoogleServiceAccountFile,
			OAuthClientJSON:    config.GoogleOAuthClientJSON,
			OAuthClientFile:    config.GoogleOAuthClientFile,
			OAuthTokenJSON:     config.GoogleOAuthTokenJSON,
			OAuthTokenFile:     config.GoogleOAuthTokenFile,
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend", "spreadsheet_id", config.GoogleSpreadsheetID)
	return client, client, nil
}

func formFields(config Config) forms.Fields {
	fields := forms.DefaultFields()
	for _, o := range []struct {
		dst *string
		val string
	}{
		{&fields.Type, config.FormsFieldType},
		{&fields.Amount, config.FormsFieldAmount},
		{&fields.Description, config.FormsFieldDescription},
		{&fields.Buyer, config.FormsFieldBuyer},
	} {
		if o.val != "" {
			*o.dst = o.val
		}
	}
	return fields
}

// QueueConfig configures the journal and queue used in queued submit mode.
type QueueConfig struct {
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// NewEntryService builds the entry service for the submit mode. Direct mode
// submits through submitter; queued mode journals into SQLite and announces
// each entry over AMQP when a broker is configured.
func (f *DefaultFactory) NewEntryService(queued bool, submitter sheets.EntrySubmitter, qc QueueConfig) (*services.EntryService, error) {
	if !queued {
		if submitter == nil {
			return nil, errors.New("direct submit mode needs a submitter")
		}
		return services.NewDirectEntryService(submitter, f.logger), nil
	}

	repo, err := storage.NewSQLiteRepository(qc.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	// AMQP is optional; the worker's sweep picks up unannounced entries.
	var publisher services.SyncPublisher
	if qc.AMQPURL != "" {
		client, err := amqp.NewClient(qc.AMQPURL, qc.AMQPExchange, qc.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without sync messages", "error", err)
		} else {
			publisher = client
			f.logger.Info("Initialized AMQP client",
				"exchange", qc.AMQPExchange,
				"queue", qc.AMQPQueue)
		}
	}

	f.logger.Info("Initialized entry journal",
		"db_path", qc.SQLiteDBPath,
		"amqp_enabled", publisher != nil)
	return services.NewQueuedEntryService(repo, publisher, f.logger), nil
}

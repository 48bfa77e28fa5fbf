package sheets

import (
	"context"

	"casinha/internal/core"
)

// Ports for outbound adapters.
type (
	// ManualRecordSource returns every row of the manually maintained tab.
	ManualRecordSource interface {
		FetchManualRecords(ctx context.Context) ([]core.RawManualRow, error)
	}

	// BotRecordSource returns every form response stored by the bot.
	BotRecordSource interface {
		FetchBotRecords(ctx context.Context) ([]core.RawBotRow, error)
	}

	// RecordSource is a spreadsheet exposing both tabs.
	RecordSource interface {
		ManualRecordSource
		BotRecordSource
	}

	// EntrySubmitter stores a confirmed dialog entry. Implementations wrap
	// core.ErrSubmissionFailed when the store rejects the entry.
	EntrySubmitter interface {
		Submit(ctx context.Context, e core.Entry) (ref string, err error)
	}
)

package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"casinha/internal/core"
	ports "casinha/internal/sheets"

	"golang.org/x/oauth2"
	xgoogle "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Credentials selects how the client authenticates. Service account
// credentials take precedence over an OAuth client plus stored token.
type Credentials struct {
	ServiceAccountJSON string
	ServiceAccountFile string
	OAuthClientJSON    string
	OAuthClientFile    string
	OAuthTokenJSON     string
	OAuthTokenFile     string
}

// Options configures a Sheets API client.
type Options struct {
	SpreadsheetID string
	ManualSheet   string
	BotSheet      string
	Credentials   Credentials
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	manualSheet   string
	botSheet      string
	now           func() time.Time
}

// Ensure interface conformance
var (
	_ ports.RecordSource   = (*Client)(nil)
	_ ports.EntrySubmitter = (*Client)(nil)
)

// New creates a Sheets client authenticated with opts.Credentials.
func New(ctx context.Context, opts Options) (*Client, error) {
	svc, err := newSheetsService(ctx, opts.Credentials)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, opts)
}

// NewWithService wraps an already configured service.
func NewWithService(svc *gsheet.Service, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(opts.ManualSheet) == "" || strings.TrimSpace(opts.BotSheet) == "" {
		return nil, errors.New("missing sheet names")
	}
	return &Client{
		svc:           svc,
		spreadsheetID: opts.SpreadsheetID,
		manualSheet:   opts.ManualSheet,
		botSheet:      opts.BotSheet,
		now:           time.Now,
	}, nil
}

// newSheetsService initializes a Sheets Service from service account
// credentials or, failing that, an OAuth client with a stored token.
func newSheetsService(ctx context.Context, creds Credentials) (*gsheet.Service, error) {
	saJSON, err := readInlineOrFile(creds.ServiceAccountJSON, creds.ServiceAccountFile)
	if err != nil {
		return nil, fmt.Errorf("read service account: %w", err)
	}
	if saJSON == nil {
		if path := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")); path != "" {
			slog.InfoContext(ctx, "Reading credentials from GOOGLE_APPLICATION_CREDENTIALS", "path", path)
			if saJSON, err = os.ReadFile(path); err != nil {
				return nil, fmt.Errorf("read service account file: %w", err)
			}
		}
	}
	if saJSON != nil {
		slog.InfoContext(ctx, "Creating Google Sheets service with service account",
			"credentials_size", len(saJSON))
		return gsheet.NewService(ctx,
			goption.WithCredentialsJSON(saJSON),
			goption.WithScopes(gsheet.SpreadsheetsScope))
	}

	ts, err := oauthTokenSource(ctx, creds)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Creating Google Sheets service with OAuth token")
	return gsheet.NewService(ctx, goption.WithTokenSource(ts))
}

func oauthTokenSource(ctx context.Context, creds Credentials) (oauth2.TokenSource, error) {
	clientJSON, err := readInlineOrFile(creds.OAuthClientJSON, creds.OAuthClientFile)
	if err != nil {
		return nil, fmt.Errorf("read oauth client: %w", err)
	}
	if clientJSON == nil {
		return nil, errors.New("missing credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, GOOGLE_APPLICATION_CREDENTIALS or an OAuth client and token)")
	}
	tokenJSON, err := readInlineOrFile(creds.OAuthTokenJSON, creds.OAuthTokenFile)
	if err != nil {
		return nil, fmt.Errorf("read oauth token: %w", err)
	}
	if tokenJSON == nil {
		return nil, errors.New("missing oauth token (run casinha-oauth first)")
	}
	cfg, err := xgoogle.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(tokenJSON, &tok); err != nil {
		return nil, fmt.Errorf("oauth token: %w", err)
	}
	return cfg.TokenSource(ctx, &tok), nil
}

func readInlineOrFile(inline, path string) ([]byte, error) {
	if v := strings.TrimSpace(inline); v != "" {
		return []byte(v), nil
	}
	if p := strings.TrimSpace(path); p != "" {
		return os.ReadFile(p)
	}
	return nil, nil
}

func (c *Client) FetchManualRecords(ctx context.Context) ([]core.RawManualRow, error) {
	t, err := c.readTable(ctx, c.manualSheet)
	if err != nil {
		return nil, err
	}
	rows, err := ports.ManualRows(t)
	if err != nil {
		return nil, fmt.Errorf("sheet %s: %w", c.manualSheet, err)
	}
	return rows, nil
}

func (c *Client) FetchBotRecords(ctx context.Context) ([]core.RawBotRow, error) {
	t, err := c.readTable(ctx, c.botSheet)
	if err != nil {
		return nil, err
	}
	rows, err := ports.BotRows(t)
	if err != nil {
		return nil, fmt.Errorf("sheet %s: %w", c.botSheet, err)
	}
	return rows, nil
}

func (c *Client) readTable(ctx context.Context, sheet string) (ports.Table, error) {
	if c.svc == nil {
		return ports.Table{}, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:Z", sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return ports.Table{}, fmt.Errorf("read %s: %w", rng, err)
	}
	values := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		values[i] = toStrings(row)
	}
	return ports.NewTable(values), nil
}

// Submit appends the entry to the bot tab, laid out after its header row.
func (c *Client) Submit(ctx context.Context, e core.Entry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	headerRange := fmt.Sprintf("%s!1:1", c.botSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, headerRange).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("%w: read header of %s: %w", core.ErrSubmissionFailed, c.botSheet, err)
	}
	var header []string
	if len(resp.Values) > 0 {
		header = toStrings(resp.Values[0])
	}
	row, err := layoutRow(header, ports.BotRow(c.now().Format(ports.TimestampLayout), e))
	if err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrSubmissionFailed, err)
	}

	vr := &gsheet.ValueRange{Values: [][]any{row}}
	out, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, fmt.Sprintf("%s!A:Z", c.botSheet), vr).
		ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("%w: append to %s: %w", core.ErrSubmissionFailed, c.botSheet, err)
	}
	if out.Updates != nil && out.Updates.UpdatedRange != "" {
		return out.Updates.UpdatedRange, nil
	}
	return c.botSheet, nil
}

// layoutRow places values (in BotColumns order) under the matching header
// columns. An empty header falls back to BotColumns order.
func layoutRow(header []string, values []string) ([]any, error) {
	if len(header) == 0 {
		row := make([]any, len(values))
		for i, v := range values {
			row[i] = v
		}
		return row, nil
	}
	row := make([]any, len(header))
	for i := range row {
		row[i] = ""
	}
	for i, col := range ports.BotColumns {
		idx := ports.Table{Header: header}.Column(col)
		if idx == -1 {
			if col == ports.ColBotType || col == ports.ColBotDescription {
				continue
			}
			return nil, fmt.Errorf("unexpected header: missing %s; got headers=%v", col, header)
		}
		row[idx] = values[i]
	}
	return row, nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

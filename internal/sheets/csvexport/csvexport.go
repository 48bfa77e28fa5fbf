// Package csvexport reads the spreadsheet tabs through their public CSV export.
//
// The base URL is the spreadsheet export endpoint ending with the sheet
// parameter, e.g.
// https://docs.google.com/spreadsheets/d/<id>/gviz/tq?tqx=out:csv&sheet=
// and the tab name is appended to it.
package csvexport

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"casinha/internal/core"
	"casinha/internal/sheets"
)

type Client struct {
	httpClient  *http.Client
	baseURL     string
	manualSheet string
	botSheet    string
}

var _ sheets.RecordSource = (*Client)(nil)

// New creates a CSV export client. A nil httpClient uses sheets.NewHTTPClient.
func New(baseURL, manualSheet, botSheet string, httpClient *http.Client) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("missing data sheet URL")
	}
	if manualSheet == "" || botSheet == "" {
		return nil, errors.New("manual and bot sheet names are required")
	}
	if httpClient == nil {
		httpClient = sheets.NewHTTPClient()
	}
	return &Client{
		httpClient:  httpClient,
		baseURL:     baseURL,
		manualSheet: manualSheet,
		botSheet:    botSheet,
	}, nil
}

func (c *Client) FetchManualRecords(ctx context.Context) ([]core.RawManualRow, error) {
	t, err := c.fetchTable(ctx, c.manualSheet)
	if err != nil {
		return nil, err
	}
	rows, err := sheets.ManualRows(t)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.manualSheet, err)
	}
	return rows, nil
}

func (c *Client) FetchBotRecords(ctx context.Context) ([]core.RawBotRow, error) {
	t, err := c.fetchTable(ctx, c.botSheet)
	if err != nil {
		return nil, err
	}
	rows, err := sheets.BotRows(t)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.botSheet, err)
	}
	return rows, nil
}

func (c *Client) sheetURL(sheet string) string {
	return c.baseURL + url.QueryEscape(sheet)
}

func (c *Client) fetchTable(ctx context.Context, sheet string) (sheets.Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.sheetURL(sheet), nil)
	if err != nil {
		return sheets.Table{}, fmt.Errorf("build request for %s: %w", sheet, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return sheets.Table{}, fmt.Errorf("fetch %s: %w", sheet, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return sheets.Table{}, fmt.Errorf("fetch %s: unexpected status %d", sheet, resp.StatusCode)
	}

	r := csv.NewReader(resp.Body)
	r.FieldsPerRecord = -1
	values, err := r.ReadAll()
	if err != nil {
		return sheets.Table{}, fmt.Errorf("parse %s csv: %w", sheet, err)
	}
	return sheets.NewTable(values), nil
}

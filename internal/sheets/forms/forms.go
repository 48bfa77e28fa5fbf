// Package forms submits confirmed entries to the Google Form that feeds the
// form responses tab.
package forms

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"casinha/internal/core"
	"casinha/internal/sheets"
)

// Fields maps entry attributes to the form's input names.
type Fields struct {
	Type        string
	Amount      string
	Description string
	Buyer       string
}

// DefaultFields are the input names of the household form.
func DefaultFields() Fields {
	return Fields{
		Type:        "entry.1798295971",
		Amount:      "entry.2027852565",
		Description: "entry.1107780057",
		Buyer:       "entry.2110430875",
	}
}

type Client struct {
	httpClient *http.Client
	formURL    string
	fields     Fields
}

var _ sheets.EntrySubmitter = (*Client)(nil)

// New creates a form client. A nil httpClient uses sheets.NewHTTPClient.
func New(formURL string, fields Fields, httpClient *http.Client) (*Client, error) {
	if strings.TrimSpace(formURL) == "" {
		return nil, errors.New("missing form URL")
	}
	if fields.Type == "" || fields.Amount == "" || fields.Description == "" || fields.Buyer == "" {
		return nil, errors.New("every form field name must be set")
	}
	if httpClient == nil {
		httpClient = sheets.NewHTTPClient()
	}
	return &Client{httpClient: httpClient, formURL: formURL, fields: fields}, nil
}

// Submit posts the entry as a form response. Any transport error or status
// of 400 and above is reported as core.ErrSubmissionFailed.
func (c *Client) Submit(ctx context.Context, e core.Entry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	form := url.Values{}
	form.Set(c.fields.Type, e.Type)
	form.Set(c.fields.Amount, e.Amount)
	form.Set(c.fields.Description, e.Description)
	form.Set(c.fields.Buyer, e.Buyer)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.formURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build form request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: post form: %w", core.ErrSubmissionFailed, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("%w: form responded with status %d", core.ErrSubmissionFailed, resp.StatusCode)
	}
	return fmt.Sprintf("form:%d", resp.StatusCode), nil
}

package sheetstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"
)

// SheetsClient implements Store against the Google Sheets v4 values API.
// The tracking table lives in a single named range; the header row is
// always row 1. Save is clear-then-update: a failure between the two calls
// can leave the range empty, which is an accepted property of this backend.
type SheetsClient struct {
	baseURL       string
	spreadsheetID string
	readRange     string
	token         string
	client        *http.Client
}

// NewSheetsClient creates a Sheets values-API client. token is the opaque
// bearer credential supplied by the deployment; credential acquisition is
// not this package's concern.
func NewSheetsClient(baseURL, spreadsheetID, readRange, token string, timeout time.Duration) *SheetsClient {
	return &SheetsClient{
		baseURL:       baseURL,
		spreadsheetID: spreadsheetID,
		readRange:     readRange,
		token:         token,
		client:        &http.Client{Timeout: timeout},
	}
}

func (c *SheetsClient) Load(ctx context.Context) (RawTable, error) {
	u := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s",
		c.baseURL, url.PathEscape(c.spreadsheetID), url.PathEscape(c.readRange))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return RawTable{}, fmt.Errorf("building request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return RawTable{}, classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return RawTable{}, fmt.Errorf("%w: status %d", ErrStoreRejected, resp.StatusCode)
	}

	var valuesResp sheetsValuesResponse
	if err := json.NewDecoder(resp.Body).Decode(&valuesResp); err != nil {
		return RawTable{}, fmt.Errorf("decoding values response: %w", err)
	}

	if len(valuesResp.Values) == 0 {
		return RawTable{}, nil
	}

	header := valuesResp.Values[0]
	rows, warnings := squareRows(header, valuesResp.Values[1:])
	return RawTable{Header: header, Rows: rows, Warnings: warnings}, nil
}

func (c *SheetsClient) Save(ctx context.Context, table RawTable) error {
	if err := c.clear(ctx); err != nil {
		return err
	}

	values := make([][]string, 0, len(table.Rows)+1)
	values = append(values, table.Header)
	values = append(values, table.Rows...)

	body, err := json.Marshal(sheetsValuesBody{Values: values})
	if err != nil {
		return fmt.Errorf("encoding values body: %w", err)
	}

	u := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s?valueInputOption=USER_ENTERED",
		c.baseURL, url.PathEscape(c.spreadsheetID), url.PathEscape(c.readRange))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.setHeaders(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: update status %d", ErrStoreRejected, resp.StatusCode)
	}
	return nil
}

func (c *SheetsClient) Ping(ctx context.Context) error {
	u := fmt.Sprintf("%s/v4/spreadsheets/%s?fields=spreadsheetId",
		c.baseURL, url.PathEscape(c.spreadsheetID))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: spreadsheet not readable (status %d)", ErrStoreUnreachable, resp.StatusCode)
	}
	return nil
}

func (c *SheetsClient) clear(ctx context.Context) error {
	u := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s:clear",
		c.baseURL, url.PathEscape(c.spreadsheetID), url.PathEscape(c.readRange))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader([]byte("{}")))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.setHeaders(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: clear status %d", ErrStoreRejected, resp.StatusCode)
	}
	return nil
}

func (c *SheetsClient) setHeaders(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrStoreTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return fmt.Errorf("%w: %v", ErrStoreTimeout, err)
		}
		return fmt.Errorf("%w: %v", ErrStoreUnreachable, err)
	}

	return fmt.Errorf("%w: %v", ErrStoreUnreachable, err)
}

// --- Sheets response types ---

type sheetsValuesResponse struct {
	Range          string     `json:"range"`
	MajorDimension string     `json:"majorDimension"`
	Values         [][]string `json:"values"`
}

type sheetsValuesBody struct {
	Values [][]string `json:"values"`
}

// Compile-time check that SheetsClient implements Store.
var _ Store = (*SheetsClient)(nil)

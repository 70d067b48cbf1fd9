// Package sheetsource fetches sheet rows from the Google Sheets API.
package sheetsource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
)

// Source fetches the rows of one sheet starting at a 1-based row.
type Source interface {
	FetchRows(ctx context.Context, sourceID, sheetName string, startRow int) ([][]string, error)
}

// ErrServiceUnavailable marks transient upstream failures: network
// errors, 5xx responses, and rate limiting.
var ErrServiceUnavailable = errors.New("sheet service unavailable")

const (
	defaultBaseURL = "https://sheets.googleapis.com"
	readScope      = "https://www.googleapis.com/auth/spreadsheets.readonly"
)

// Client talks to the Sheets values API.
type Client struct {
	httpClient *http.Client
	apiKey     string
	log        *zap.Logger

	// BaseURL is overridable in tests.
	BaseURL string
}

// NewClient returns a client authenticating with an API key.
func NewClient(apiKey string, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiKey:     apiKey,
		log:        logger,
		BaseURL:    defaultBaseURL,
	}
}

// NewServiceAccountClient returns a client authenticating with
// service-account credentials JSON.
func NewServiceAccountClient(ctx context.Context, credentialsJSON []byte, logger *zap.Logger) (*Client, error) {
	cfg, err := google.JWTConfigFromJSON(credentialsJSON, readScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}
	hc := cfg.Client(ctx)
	hc.Timeout = 30 * time.Second
	return &Client{
		httpClient: hc,
		log:        logger,
		BaseURL:    defaultBaseURL,
	}, nil
}

// FetchRows reads a sheet's values and returns rows from startRow
// (1-based) onward, with every cell rendered as a trimmed string.
func (c *Client) FetchRows(ctx context.Context, sourceID, sheetName string, startRow int) ([][]string, error) {
	u := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s",
		c.BaseURL, url.PathEscape(sourceID), url.PathEscape(sheetName))
	if c.apiKey != "" {
		u += "?key=" + url.QueryEscape(c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build sheet request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("sheet fetch failed",
			zap.String("source", sourceID),
			zap.String("sheet", sheetName),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return nil, fmt.Errorf("%w: status %d", ErrServiceUnavailable, resp.StatusCode)
		}
		return nil, fmt.Errorf("sheet fetch %s/%s: status %d", sourceID, sheetName, resp.StatusCode)
	}

	var body struct {
		Values [][]any `json:"values"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode sheet response: %w", err)
	}

	values := body.Values
	if startRow > 1 {
		if startRow-1 >= len(values) {
			return [][]string{}, nil
		}
		values = values[startRow-1:]
	}

	rows := make([][]string, len(values))
	for i, rowVals := range values {
		row := make([]string, len(rowVals))
		for j, v := range rowVals {
			row[j] = cellString(v)
		}
		rows[i] = row
	}
	return rows, nil
}

// cellString renders one sheet cell as trimmed text. Numbers decode as
// float64 and need fixed-point formatting so a numeric ID is not
// rendered in scientific notation.
func cellString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

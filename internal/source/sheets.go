package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultSheetsBaseURL = "https://sheets.googleapis.com"
	DefaultSheetRange    = "Customer Survey Questionnaire!A:ZZ"

	defaultRequestTimeout = 15 * time.Second
	maxErrorBody          = 4 << 10
)

// SheetsClient reads a value range from the Google Sheets v4 REST API.
type SheetsClient struct {
	baseURL       string
	spreadsheetID string
	sheetRange    string
	apiKey        string
	client        *http.Client
	retryAttempts int
	retryDelay    time.Duration
	logger        *zap.Logger
}

type SheetsOption func(*SheetsClient)

func WithBaseURL(u string) SheetsOption {
	return func(c *SheetsClient) {
		if u != "" {
			c.baseURL = u
		}
	}
}

func WithHTTPClient(client *http.Client) SheetsOption {
	return func(c *SheetsClient) {
		if client != nil {
			c.client = client
		}
	}
}

func WithRange(r string) SheetsOption {
	return func(c *SheetsClient) {
		if r != "" {
			c.sheetRange = r
		}
	}
}

func WithRetry(attempts int, delay time.Duration) SheetsOption {
	return func(c *SheetsClient) {
		if attempts > 0 {
			c.retryAttempts = attempts
		}
		c.retryDelay = delay
	}
}

func NewSheetsClient(spreadsheetID, apiKey string, logger *zap.Logger, opts ...SheetsOption) *SheetsClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &SheetsClient{
		baseURL:       DefaultSheetsBaseURL,
		spreadsheetID: spreadsheetID,
		sheetRange:    DefaultSheetRange,
		apiKey:        apiKey,
		client:        &http.Client{Timeout: defaultRequestTimeout},
		retryAttempts: 3,
		retryDelay:    500 * time.Millisecond,
		logger:        logger.Named("sheets"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type valuesResponse struct {
	Range          string     `json:"range"`
	MajorDimension string     `json:"majorDimension"`
	Values         [][]any    `json:"values"`
	Error          *sheetsErr `json:"error,omitempty"`
}

type sheetsErr struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// statusError is a non-2xx response from the API.
type statusError struct {
	code    int
	message string
}

func (e *statusError) Error() string {
	if e.message == "" {
		return fmt.Sprintf("sheets API returned status %d", e.code)
	}
	return fmt.Sprintf("sheets API returned status %d: %s", e.code, e.message)
}

func (e *statusError) retryable() bool {
	return e.code == http.StatusTooManyRequests || e.code >= http.StatusInternalServerError
}

// Key identifies the spreadsheet range for cache keys.
func (c *SheetsClient) Key() string {
	return c.spreadsheetID + ":" + c.sheetRange
}

// Values fetches the range with unformatted values and formatted dates.
// Network errors, 429 and 5xx responses are retried with a linear backoff.
func (c *SheetsClient) Values(ctx context.Context) ([][]any, error) {
	if c.spreadsheetID == "" {
		return nil, fmt.Errorf("%w: spreadsheet id is not configured", ErrSourceUnavailable)
	}

	var lastErr error
	for attempt := 0; attempt < c.retryAttempts; attempt++ {
		if attempt > 0 {
			wait := time.Duration(attempt) * c.retryDelay
			c.logger.Debug("retrying sheets request",
				zap.Int("attempt", attempt+1),
				zap.Duration("wait", wait),
				zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		values, err := c.fetch(ctx)
		if err == nil {
			return values, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, ErrNoData) {
			break
		}
		var se *statusError
		if errors.As(err, &se) && !se.retryable() {
			break
		}
	}

	return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, lastErr)
}

func (c *SheetsClient) valuesURL() string {
	q := url.Values{}
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}
	q.Set("valueRenderOption", "UNFORMATTED_VALUE")
	q.Set("dateTimeRenderOption", "FORMATTED_STRING")

	return fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s?%s",
		c.baseURL,
		url.PathEscape(c.spreadsheetID),
		url.PathEscape(c.sheetRange),
		q.Encode())
}

func (c *SheetsClient) fetch(ctx context.Context) ([][]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.valuesURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("build sheets request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sheets request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		se := &statusError{code: resp.StatusCode}
		var parsed valuesResponse
		if json.Unmarshal(body, &parsed) == nil && parsed.Error != nil {
			se.message = parsed.Error.Message
		}
		return nil, se
	}

	var parsed valuesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode sheets response: %w", err)
	}
	if len(parsed.Values) == 0 {
		return nil, fmt.Errorf("%w: range %q is empty", ErrNoData, c.sheetRange)
	}

	c.logger.Debug("sheets values fetched",
		zap.String("range", parsed.Range),
		zap.Int("rows", len(parsed.Values)))
	return parsed.Values, nil
}

// Package telephony wraps the voice provider: capability tokens, call
// control markup and the REST API used to originate calls.
package telephony

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/AVVKavvk/oakmont-voip-crm/metrics"
	"github.com/AVVKavvk/oakmont-voip-crm/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type (
	// CallParams describes a call to originate. Exactly one of URL or Twiml
	// should be set.
	CallParams struct {
		To    string
		From  string
		URL   string
		Twiml string
	}

	CallCreator interface {
		CreateCall(ctx context.Context, p CallParams) (*models.CallRecord, error)
	}

	// ProviderError is a non-2xx answer from the provider REST API.
	ProviderError struct {
		StatusCode int    `json:"-"`
		Code       int    `json:"code"`
		Message    string `json:"message"`
	}

	Client struct {
		baseURL    string
		accountSID string
		username   string
		password   string
		httpClient *http.Client
		metrics    *metrics.Metrics
		logger     zerolog.Logger
	}
)

func (e *ProviderError) Error() string {
	return fmt.Sprintf("voice provider returned %d (code %d): %s", e.StatusCode, e.Code, e.Message)
}

func NewClient(baseURL, accountSID, username, password string, m *metrics.Metrics) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		accountSID: accountSID,
		username:   username,
		password:   password,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		metrics:    m,
		logger:     log.With().Str("component", "telephony").Logger(),
	}
}

// CreateCall asks the provider to originate a call and returns its record.
func (c *Client) CreateCall(ctx context.Context, p CallParams) (*models.CallRecord, error) {
	if c.accountSID == "" || c.username == "" || c.password == "" {
		return nil, ErrNotConfigured
	}

	form := url.Values{}
	form.Set("To", p.To)
	form.Set("From", p.From)
	if p.Twiml != "" {
		form.Set("Twiml", p.Twiml)
	} else {
		form.Set("Url", p.URL)
	}

	endpoint := fmt.Sprintf("%s/Accounts/%s/Calls.json", c.baseURL, url.PathEscape(c.accountSID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build call request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.RecordProvider("twilio", "create_call", time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("call request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		perr := &ProviderError{StatusCode: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(perr); err != nil {
			c.logger.Warn().Err(err).Int("status", resp.StatusCode).Msg("Failed to decode provider error body")
		}
		return nil, perr
	}

	var call models.CallRecord
	if err := json.NewDecoder(resp.Body).Decode(&call); err != nil {
		return nil, fmt.Errorf("decode call response: %w", err)
	}

	c.logger.Info().
		Str("sid", call.Sid).
		Str("status", call.Status).
		Str("to", p.To).
		Msg("Call created")
	return &call, nil
}

// Package hosted talks to the hosted backend (Supabase): row inserts through
// its REST interface and user lookup through its auth interface.
package hosted

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/AVVKavvk/oakmont-voip-crm/metrics"
	"github.com/AVVKavvk/oakmont-voip-crm/models"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrInsertFailed = errors.New("failed to insert row")
)

type (
	// User is the subset of the hosted auth user we need.
	User struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}

	// APIError is the error body returned by the hosted REST interface.
	APIError struct {
		StatusCode int    `json:"-"`
		Message    string `json:"message"`
		Code       string `json:"code"`
	}

	Client struct {
		baseURL    string
		anonKey    string
		table      string
		httpClient *http.Client
		metrics    *metrics.Metrics
	}
)

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("hosted backend returned %d", e.StatusCode)
	}
	return e.Message
}

func NewClient(baseURL, anonKey, table string, m *metrics.Metrics) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		anonKey:    anonKey,
		table:      table,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		metrics:    m,
	}
}

// InsertAttendee writes one attendee row.
func (c *Client) InsertAttendee(ctx context.Context, a models.Attendee) error {
	body, err := json.Marshal([]models.Attendee{a})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rest/v1/"+c.table, bytes.NewReader(body))
	if err != nil {
		return err
	}
	c.authorize(req, c.anonKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	resp, err := c.do(req, "insert")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInsertFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %w", ErrInsertFailed, decodeError(resp))
	}
	return nil
}

// GetUser resolves the user behind an access token. The token may carry a
// "Bearer " prefix.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	accessToken = strings.TrimSpace(strings.TrimPrefix(accessToken, "Bearer "))
	if accessToken == "" {
		return nil, ErrUnauthorized
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}
	c.authorize(req, accessToken)

	resp, err := c.do(req, "get_user")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	if user.ID == "" {
		return nil, ErrUnauthorized
	}
	return &user, nil
}

func (c *Client) authorize(req *http.Request, bearer string) {
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
}

func (c *Client) do(req *http.Request, operation string) (*http.Response, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.RecordProvider("supabase", operation, time.Since(start).Seconds())
	return resp, err
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, apiErr); err != nil && len(raw) > 0 {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return apiErr
}

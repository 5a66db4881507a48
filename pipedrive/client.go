// Package pipedrive lists CRM deals from Pipedrive.
package pipedrive

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
)

type (
	dealsResponse struct {
		Success bool         `json:"success"`
		Data    models.Deals `json:"data"`
		Error   string       `json:"error"`
	}

	Client struct {
		baseURL    string
		apiKey     string
		httpClient *http.Client
		metrics    *metrics.Metrics
	}
)

func NewClient(baseURL, apiKey string, m *metrics.Metrics) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		metrics:    m,
	}
}

// GetDeals returns every deal visible to the API key.
func (c *Client) GetDeals(ctx context.Context) (models.Deals, error) {
	endpoint := c.baseURL + "/deals?api_token=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.RecordProvider("pipedrive", "get_deals", time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("deals request failed: %w", err)
	}
	defer resp.Body.Close()

	var body dealsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode deals response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || !body.Success {
		return nil, fmt.Errorf("pipedrive returned %d: %s", resp.StatusCode, body.Error)
	}
	if body.Data == nil {
		body.Data = models.Deals{}
	}
	return body.Data, nil
}

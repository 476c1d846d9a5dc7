// Package datausa fetches per-region indicator records from a DataUSA-style
// measures API.
package datausa

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/regionpulse/prosperity-index/internal/domain"
)

// Client fetches raw indicator batches from the configured endpoint.
// It implements pipeline.Fetcher.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates an indicator source client with the given request timeout.
func NewClient(endpoint string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// response is the expected payload shape: a record list under a "data" key.
type response struct {
	Data []domain.RawIndicatorRecord `json:"data"`
}

// Fetch performs a single GET against the endpoint and decodes the record
// list. Transport failures, non-2xx statuses, and undecodable payloads all
// wrap domain.ErrFetch: the pipeline receives either usable rows or an
// explicit fetch failure, never an uncaught fault.
func (c *Client) Fetch(ctx context.Context) ([]domain.RawIndicatorRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", domain.ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrFetch, resp.StatusCode, body)
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", domain.ErrFetch, err)
	}

	c.logger.Debug("fetched indicator batch", "endpoint", c.endpoint, "records", len(payload.Data))
	return payload.Data, nil
}

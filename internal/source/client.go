// MGNREGA Pulse - District Employment Statistics API
// Copyright 2026 Amrita Malviya
// SPDX-License-Identifier: MIT
// https://github.com/AmritaMalviya12/mgnrega-pulse

package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/AmritaMalviya12/mgnrega-pulse/internal/config"
	"github.com/AmritaMalviya12/mgnrega-pulse/internal/metrics"
	"github.com/AmritaMalviya12/mgnrega-pulse/internal/models"
)

// maxErrorBodySize limits the response body read for error reporting.
const maxErrorBodySize = 64 * 1024 // 64KB

// ErrNoAPIKey indicates the client has no data.gov.in API key configured.
// Callers fall back to the synthetic dataset rather than retrying.
var ErrNoAPIKey = errors.New("data.gov.in API key not configured")

// Source delivers raw statistics records. Implemented by the live
// data.gov.in client, the circuit breaker wrapper, and the fallback
// generator.
type Source interface {
	// FetchRecords returns the full raw dataset for normalization.
	FetchRecords(ctx context.Context) ([]models.RawRecord, error)

	// Name identifies the source in sync results and logs.
	Name() string
}

// DataGovClient fetches MGNREGA district statistics from the data.gov.in
// open data API. Outbound calls are rate limited; the short request timeout
// keeps sync from stalling on a slow upstream, since the fallback dataset
// is always available.
type DataGovClient struct {
	baseURL   string
	apiKey    string
	pageLimit int
	client    *http.Client
	limiter   *rate.Limiter
}

// envelope is the data.gov.in resource response wrapper.
type envelope struct {
	Status  string             `json:"status"`
	Total   int                `json:"total"`
	Count   int                `json:"count"`
	Records []models.RawRecord `json:"records"`
}

// NewDataGovClient creates a client from upstream configuration.
func NewDataGovClient(cfg *config.DataGovConfig) *DataGovClient {
	return &DataGovClient{
		baseURL:   cfg.BaseURL,
		apiKey:    cfg.APIKey,
		pageLimit: cfg.PageLimit,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
	}
}

// Name identifies the live source.
func (c *DataGovClient) Name() string {
	return "live"
}

// FetchRecords retrieves the raw dataset from data.gov.in.
func (c *DataGovClient) FetchRecords(ctx context.Context) ([]models.RawRecord, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	reqURL, err := c.buildURL()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	records, err := c.fetch(ctx, reqURL)
	if err != nil {
		metrics.RecordUpstreamRequest("error", time.Since(start))
		return nil, err
	}
	metrics.RecordUpstreamRequest("success", time.Since(start))
	return records, nil
}

func (c *DataGovClient) buildURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", c.baseURL, err)
	}

	q := u.Query()
	q.Set("api-key", c.apiKey)
	q.Set("format", "json")
	q.Set("limit", fmt.Sprintf("%d", c.pageLimit))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func (c *DataGovClient) fetch(ctx context.Context, reqURL string) ([]models.RawRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body := readBodyForError(resp.Body)
		return nil, fmt.Errorf("upstream returned HTTP %d: %s", resp.StatusCode, body)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode upstream response: %w", err)
	}

	return env.Records, nil
}

// readBodyForError reads a response body for error reporting (max 64KB).
func readBodyForError(r io.Reader) []byte {
	limitedReader := io.LimitReader(r, maxErrorBodySize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("... (truncated)")...)
	}
	return body
}

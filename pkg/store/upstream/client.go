// Package upstream implements the HTTP client for the SoochnaMitra data
// service, the external collaborator that owns storage and caching.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/soochnamitra/dash-core/pkg/metrics"
	"github.com/soochnamitra/dash-core/pkg/models/api"
	"github.com/soochnamitra/dash-core/pkg/models/domain"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *metrics.Metrics
}

func NewClient(baseURL string, timeout time.Duration, m *metrics.Metrics) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: m,
	}
}

// States fetches the list of valid states.
func (c *Client) States(ctx context.Context) ([]string, error) {
	var resp api.StatesResponse
	if err := c.get(ctx, "states", "/api/v1/states", nil, &resp); err != nil {
		return nil, err
	}
	return resp.States, nil
}

// Districts fetches the district list for an already-resolved state name.
func (c *Client) Districts(ctx context.Context, state string) ([]string, error) {
	if state == "" {
		return nil, &domain.ValidationError{Field: "state", Reason: "must not be empty"}
	}
	params := url.Values{"state": {state}}
	var resp api.DistrictsResponse
	if err := c.get(ctx, "districts", "/api/v1/districts", params, &resp); err != nil {
		return nil, err
	}
	return resp.Districts, nil
}

// Dashboard fetches the raw metrics snapshot for a state/district pair.
func (c *Client) Dashboard(ctx context.Context, state, district string, months int) (*api.DashboardResponse, error) {
	params := url.Values{
		"state":    {state},
		"district": {district},
		"months":   {strconv.Itoa(months)},
	}
	var resp api.DashboardResponse
	if err := c.get(ctx, "dashboard", "/api/v1/dashboard", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Refresh triggers an out-of-band recomputation on the backend. The call
// is fire-and-forget: success means the backend accepted the request.
func (c *Client) Refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.baseURL+"/api/v1/refresh", bytes.NewReader(nil))
	if err != nil {
		return &domain.TransportError{Op: "refresh", Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.count("refresh", "error")
		return &domain.TransportError{Op: "refresh", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.count("refresh", "error")
		return &domain.TransportError{Op: "refresh", Status: resp.StatusCode}
	}
	c.count("refresh", "success")
	return nil
}

// Health reports upstream liveness.
func (c *Client) Health(ctx context.Context) (*api.HealthResponse, error) {
	var resp api.HealthResponse
	if err := c.get(ctx, "health", "/api/v1/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) get(ctx context.Context, op, path string, params url.Values, out any) error {
	logger := zerolog.Ctx(ctx)

	fullURL := c.baseURL + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return &domain.TransportError{Op: op, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.count(op, "error")
		logger.Error().Err(err).Str("op", op).Msg("upstream request failed")
		return &domain.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.count(op, "error")
		logger.Error().Int("status", resp.StatusCode).Str("op", op).Msg("upstream returned non-OK status")
		return &domain.TransportError{Op: op, Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.count(op, "error")
		return &domain.TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	c.count(op, "success")
	return nil
}

func (c *Client) count(op, outcome string) {
	if c.metrics != nil {
		c.metrics.UpstreamRequests.WithLabelValues(op, outcome).Inc()
	}
}

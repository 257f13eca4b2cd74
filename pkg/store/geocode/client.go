// Package geocode implements the reverse-geocoding client. The provider
// is a Nominatim-style HTTP service and is treated as best-effort: the
// address object it returns is unreliable and field names vary.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/soochnamitra/dash-core/pkg/metrics"
	"github.com/soochnamitra/dash-core/pkg/models/domain"
)

// Reverser converts device coordinates into a best-effort placement.
type Reverser interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (domain.Placement, error)
}

type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	metrics    *metrics.Metrics
}

// NewClient creates a reverse-geocoding client. The userAgent should
// identify the deployment with a contact address, as public Nominatim
// instances require.
func NewClient(baseURL, userAgent string, timeout time.Duration, m *metrics.Metrics) *Client {
	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: m,
	}
}

func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (domain.Placement, error) {
	logger := zerolog.Ctx(ctx)

	params := url.Values{
		"format": {"jsonv2"},
		"lat":    {fmt.Sprintf("%.6f", lat)},
		"lon":    {fmt.Sprintf("%.6f", lon)},
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.baseURL+"/reverse?"+params.Encode(), nil)
	if err != nil {
		return domain.Placement{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.count("error")
		return domain.Placement{}, fmt.Errorf("reverse geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.count("error")
		body, _ := io.ReadAll(resp.Body)
		return domain.Placement{}, fmt.Errorf("geocoder error: status %d: %s", resp.StatusCode, body)
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.count("error")
		return domain.Placement{}, fmt.Errorf("decode response: %w", err)
	}

	placement := domain.Placement{
		District: firstNonEmpty(
			payload.Address.District,
			payload.Address.StateDistrict,
			payload.Address.County,
			payload.Address.CityDistrict,
		),
		State: firstNonEmpty(
			payload.Address.State,
			payload.Address.Region,
			payload.Address.StateName,
		),
	}

	if placement.District == "" && placement.State == "" {
		c.count("empty")
		logger.Warn().
			Float64("lat", lat).
			Float64("lon", lon).
			Msg("reverse geocode yielded no usable address fields")
		return placement, nil
	}
	c.count("success")
	return placement, nil
}

func (c *Client) count(outcome string) {
	if c.metrics != nil {
		c.metrics.GeocodeLookups.WithLabelValues(outcome).Inc()
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Nominatim-style response types.

type response struct {
	Address address `json:"address"`
}

type address struct {
	District      string `json:"district"`
	StateDistrict string `json:"state_district"`
	County        string `json:"county"`
	CityDistrict  string `json:"city_district"`
	State         string `json:"state"`
	Region        string `json:"region"`
	StateName     string `json:"state_name"`
}

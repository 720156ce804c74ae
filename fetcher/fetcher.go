// Package fetcher implements the external data source clients behind the
// assistant's use cases. Every fetcher matches the assistant.Fetcher
// signature: arguments arrive positionally in the use case's required-field
// order, each one the value list of a single field (nil when the field
// resolved to no value).
//
// Degraded results (an unknown city, a canteen that cannot be matched) are
// encoded in-band as {"error": ...} payloads so synthesis can degrade
// gracefully; only transport-level failures return an error and abort the
// dispatch.
package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Config holds the API credentials and endpoint overrides for the external
// services. Base URLs default to the public endpoints and are overridable
// for tests.
type Config struct {
	TwelveDataAPIKey    string
	NewsAPIKey          string
	WeatherAPIKey       string
	OpenRouteAPIKey     string
	AmadeusClientID     string
	AmadeusClientSecret string
	RaplaURL            string

	TwelveDataBaseURL string
	NewsBaseURL       string
	WeatherBaseURL    string
	OpenMensaBaseURL  string
	NominatimBaseURL  string
	OpenRouteBaseURL  string
	HotellookBaseURL  string
	AmadeusBaseURL    string
}

func (c *Config) applyDefaults() {
	if c.TwelveDataBaseURL == "" {
		c.TwelveDataBaseURL = "https://api.twelvedata.com"
	}
	if c.NewsBaseURL == "" {
		c.NewsBaseURL = "https://newsapi.org"
	}
	if c.WeatherBaseURL == "" {
		c.WeatherBaseURL = "http://api.weatherapi.com"
	}
	if c.OpenMensaBaseURL == "" {
		c.OpenMensaBaseURL = "https://openmensa.org"
	}
	if c.NominatimBaseURL == "" {
		c.NominatimBaseURL = "https://nominatim.openstreetmap.org"
	}
	if c.OpenRouteBaseURL == "" {
		c.OpenRouteBaseURL = "https://api.openrouteservice.org"
	}
	if c.HotellookBaseURL == "" {
		c.HotellookBaseURL = "https://engine.hotellook.com"
	}
	if c.AmadeusBaseURL == "" {
		c.AmadeusBaseURL = "https://test.api.amadeus.com"
	}
}

// Services bundles all fetchers over one shared HTTP client.
type Services struct {
	cfg    Config
	client *http.Client

	// Nominatim's usage policy caps anonymous geocoding at one request
	// per second.
	geocodeLimiter *rate.Limiter
}

// New creates the fetcher bundle.
func New(cfg Config) *Services {
	cfg.applyDefaults()
	return &Services{
		cfg:            cfg,
		client:         newHTTPClient(),
		geocodeLimiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
}

// errorPayload is the in-band degraded-result shape.
func errorPayload(format string, args ...any) map[string]any {
	return map[string]any{"error": fmt.Sprintf(format, args...)}
}

// getJSON issues a GET and decodes the JSON response body into out.
func (s *Services) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

func unmarshalJSON(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func firstArg(args [][]string, i int) (string, bool) {
	if i >= len(args) || len(args[i]) == 0 || args[i][0] == "" {
		return "", false
	}
	return args[i][0], true
}

// Package upstream wraps the third-party APIs the service proxies: the
// Open-Meteo geocoding and forecast endpoints and a generative-text
// endpoint. Responses are cached so repeated lookups do not hit the
// upstream within the TTL.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/SaadGoaya/Farmer-aid/internal/domain"
)

// Fixed forecast query parameters. The aggregation window and the
// evaluator depend on exactly these series being present.
const (
	dailyParams  = "temperature_2m_max,temperature_2m_min,precipitation_sum,rain_sum,et0_fao_evapotranspiration"
	hourlyParams = "soil_temperature_0cm,relative_humidity_2m"
)

// Client calls the upstream APIs.
type Client struct {
	cfg   domain.UpstreamConfig
	http  *http.Client
	cache domain.Cache

	forecastTTL time.Duration
	geocodeTTL  time.Duration
}

// NewClient creates an upstream client. cache may be nil; every request
// then goes straight to the upstream.
func NewClient(cfg domain.UpstreamConfig, cacheCfg domain.CacheConfig, cache domain.Cache) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		cfg:         cfg,
		http:        &http.Client{Timeout: timeout},
		cache:       cache,
		forecastTTL: cacheCfg.ForecastTTL,
		geocodeTTL:  cacheCfg.GeocodeTTL,
	}
}

// Error is returned when an upstream responds with a non-2xx status.
type Error struct {
	API        string
	StatusCode int
	Detail     string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s upstream returned %d: %s", e.API, e.StatusCode, e.Detail)
}

// GeocodeQuery carries the search parameters forwarded to the upstream
// geocoder. Name is required; Count defaults to 10 and Language to "en".
// CountryCodes is a comma-separated ISO 3166 filter, omitted when empty.
type GeocodeQuery struct {
	Name         string
	Count        int
	Language     string
	CountryCodes string
}

// Geocode proxies a place-name search and returns the upstream JSON
// verbatim.
func (c *Client) Geocode(ctx context.Context, query GeocodeQuery) ([]byte, error) {
	name := strings.TrimSpace(query.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	count := query.Count
	if count <= 0 {
		count = 10
	}
	language := query.Language
	if language == "" {
		language = "en"
	}
	codes := strings.ToLower(strings.TrimSpace(query.CountryCodes))

	cacheKey := fmt.Sprintf("geocode:%s:%d:%s:%s", strings.ToLower(name), count, language, codes)
	if cached := c.cacheGet(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	q := url.Values{}
	q.Set("name", name)
	q.Set("count", fmt.Sprintf("%d", count))
	q.Set("language", language)
	if codes != "" {
		q.Set("countrycodes", codes)
	}
	q.Set("format", "json")

	body, err := c.get(ctx, "geocoding", c.cfg.GeocodeURL+"?"+q.Encode())
	if err != nil {
		return nil, err
	}

	c.cacheSet(ctx, cacheKey, body, c.geocodeTTL)
	return body, nil
}

// ForecastJSON proxies a forecast request and returns the upstream JSON
// verbatim, for the passthrough endpoint.
func (c *Client) ForecastJSON(ctx context.Context, lat, lon float64) ([]byte, error) {
	cacheKey := forecastKey(lat, lon)
	if cached := c.cacheGet(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	body, err := c.fetchForecast(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	c.cacheSet(ctx, cacheKey, body, c.forecastTTL)
	return body, nil
}

// Forecast fetches and decodes the forecast payload for the evaluation
// pipeline. Decoded payloads are cached separately from the raw JSON.
func (c *Client) Forecast(ctx context.Context, lat, lon float64) (*domain.ForecastPayload, error) {
	cacheKey := forecastKey(lat, lon)

	if c.cache != nil {
		if payload, err := c.cache.GetForecast(ctx, cacheKey); err == nil && payload != nil {
			return payload, nil
		}
	}

	body, err := c.fetchForecast(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	var payload domain.ForecastPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode forecast response: %w", err)
	}

	if c.cache != nil {
		if err := c.cache.SetForecast(ctx, cacheKey, &payload, c.forecastTTL); err != nil {
			slog.Warn("forecast cache write failed", "key", cacheKey, "error", err)
		}
	}

	return &payload, nil
}

func (c *Client) fetchForecast(ctx context.Context, lat, lon float64) ([]byte, error) {
	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%.4f", lat))
	q.Set("longitude", fmt.Sprintf("%.4f", lon))
	q.Set("daily", dailyParams)
	q.Set("hourly", hourlyParams)
	q.Set("current_weather", "true")
	q.Set("timezone", "auto")
	days := c.cfg.ForecastDays
	if days <= 0 {
		days = 7
	}
	q.Set("forecast_days", fmt.Sprintf("%d", days))

	return c.get(ctx, "weather", c.cfg.WeatherURL+"?"+q.Encode())
}

// forecastKey rounds coordinates so nearby requests share a cache entry.
func forecastKey(lat, lon float64) string {
	return fmt.Sprintf("forecast:%.4f:%.4f", lat, lon)
}

// GenerateRequest is the shorthand body accepted by the generative proxy.
// When Prompt is set the request is wrapped into the upstream contents
// shape; otherwise the raw body is forwarded untouched.
type GenerateRequest struct {
	Prompt string `json:"prompt"`
}

// Generate proxies a generative-text request. Returns the upstream JSON
// and status code; a misconfigured key is a server error, not an
// upstream one.
func (c *Client) Generate(ctx context.Context, body []byte) ([]byte, int, error) {
	if c.cfg.GeminiKey == "" {
		return nil, 0, fmt.Errorf("generative API key is not configured")
	}

	forward := body
	var shorthand GenerateRequest
	if err := json.Unmarshal(body, &shorthand); err == nil && shorthand.Prompt != "" {
		wrapped := map[string]any{
			"contents": []map[string]any{
				{"parts": []map[string]string{{"text": shorthand.Prompt}}},
			},
		}
		forward, _ = json.Marshal(wrapped)
	}

	endpoint := c.cfg.GeminiURL + "?key=" + url.QueryEscape(c.cfg.GeminiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(forward))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("generative upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read generative response: %w", err)
	}

	// A 404 usually means the configured model name is stale. Attach the
	// currently available models to the error detail.
	if resp.StatusCode == http.StatusNotFound {
		detail := extractDetail(respBody)
		if models := c.listModels(ctx); models != "" {
			detail = fmt.Sprintf("%s (available models: %s)", detail, models)
		}
		return respBody, resp.StatusCode, &Error{API: "generative", StatusCode: resp.StatusCode, Detail: detail}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return normalizeGenerate(respBody), resp.StatusCode, nil
	}
	return respBody, resp.StatusCode, nil
}

// normalizeGenerate reshapes a successful generative response into the
// candidates envelope when the upstream answered in some other shape.
// Conforming bodies pass through untouched.
func normalizeGenerate(body []byte) []byte {
	var probe struct {
		Candidates []json.RawMessage `json:"candidates"`
	}
	if err := json.Unmarshal(body, &probe); err == nil && len(probe.Candidates) > 0 {
		return body
	}

	wrapped, err := json.Marshal(map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{
				"parts": []map[string]string{{"text": strings.TrimSpace(string(body))}},
			}},
		},
	})
	if err != nil {
		return body
	}
	return wrapped
}

// listModels queries the model listing endpoint for diagnostics. Failures
// degrade to an empty string.
func (c *Client) listModels(ctx context.Context) string {
	base := c.cfg.GeminiURL
	idx := strings.Index(base, "/models/")
	if idx < 0 {
		return ""
	}
	endpoint := base[:idx] + "/models?key=" + url.QueryEscape(c.cfg.GeminiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return ""
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	var listing struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return ""
	}

	names := make([]string, 0, len(listing.Models))
	for _, m := range listing.Models {
		names = append(names, m.Name)
	}
	return strings.Join(names, ", ")
}

// get performs a GET and returns the body, converting non-2xx statuses
// into *Error.
func (c *Client) get(ctx context.Context, api, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s upstream request failed: %w", api, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", api, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{API: api, StatusCode: resp.StatusCode, Detail: extractDetail(body)}
	}

	return body, nil
}

// extractDetail pulls a human-readable message out of an upstream error
// body, falling back to the raw body.
func extractDetail(body []byte) string {
	var withReason struct {
		Reason string `json:"reason"`
		Error  any    `json:"error"`
	}
	if err := json.Unmarshal(body, &withReason); err == nil {
		if withReason.Reason != "" {
			return withReason.Reason
		}
		switch e := withReason.Error.(type) {
		case string:
			if e != "" {
				return e
			}
		case map[string]any:
			if msg, ok := e["message"].(string); ok && msg != "" {
				return msg
			}
		}
	}

	detail := strings.TrimSpace(string(body))
	if len(detail) > 300 {
		detail = detail[:300]
	}
	if detail == "" {
		detail = "no response body"
	}
	return detail
}

func (c *Client) cacheGet(ctx context.Context, key string) []byte {
	if c.cache == nil {
		return nil
	}
	val, err := c.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("cache read failed", "key", key, "error", err)
		return nil
	}
	return val
}

func (c *Client) cacheSet(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Set(ctx, key, value, ttl); err != nil {
		slog.Warn("cache write failed", "key", key, "error", err)
	}
}

package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"resty.dev/v3"

	"github.com/AliShahbazi81/OpenWeatherMapAPI/internal/weather"
)

// DefaultBaseURL is the OpenWeatherMap 2.5 API root.
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

// ClientConfig configures an OpenWeatherClient. The transport is built once
// from it; there is no way to change it per call.
type ClientConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration

	// ConfigureTransport, when set, may adjust the pooled transport (proxy,
	// TLS settings) before the client is created.
	ConfigureTransport func(*http.Transport)

	Breaker   BreakerConfig
	UserAgent string
}

// OpenWeatherClient implements weather.Client against the OpenWeatherMap API.
// It is safe for concurrent use.
type OpenWeatherClient struct {
	name      string
	apiKey    string
	http      *resty.Client
	transport *http.Transport
	circuit   *gobreaker.CircuitBreaker

	closed    atomic.Bool
	closeOnce sync.Once
}

var _ weather.Client = (*OpenWeatherClient)(nil)

// NewOpenWeatherClient validates cfg and creates the client with its own
// connection pool. Call Close to release it.
func NewOpenWeatherClient(cfg ClientConfig) (*OpenWeatherClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openweather api key is not configured")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("parse base url: unsupported scheme %q", u.Scheme)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "openweathermap-go-client"
	}

	tr := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.ConfigureTransport != nil {
		cfg.ConfigureTransport(tr)
	}
	hc := &http.Client{
		Transport: tr,
		Timeout:   cfg.Timeout,
	}

	rc := resty.NewWithClient(hc).
		SetBaseURL(cfg.BaseURL).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", cfg.UserAgent)

	return &OpenWeatherClient{
		name:      "openweathermap",
		apiKey:    cfg.APIKey,
		http:      rc,
		transport: tr,
		circuit:   newBreaker("openweather", cfg.Breaker),
	}, nil
}

func (c *OpenWeatherClient) Name() string {
	return c.name
}

// Current returns the current observation for q.
func (c *OpenWeatherClient) Current(ctx context.Context, q weather.Query) (weather.CurrentWeather, error) {
	return fetch[weather.CurrentWeather](ctx, c, weather.Current, q)
}

// ThreeHourly returns the 5 day / 3 hour forecast. q.Count limits the steps.
func (c *OpenWeatherClient) ThreeHourly(ctx context.Context, q weather.Query) (weather.Forecast, error) {
	return fetch[weather.Forecast](ctx, c, weather.ThreeHourly, q)
}

// Hourly returns the 4 day hourly forecast.
func (c *OpenWeatherClient) Hourly(ctx context.Context, q weather.Query) (weather.Forecast, error) {
	return fetch[weather.Forecast](ctx, c, weather.Hourly, q)
}

// Daily returns the daily forecast (up to 16 days via q.Count).
func (c *OpenWeatherClient) Daily(ctx context.Context, q weather.Query) (weather.DailyForecast, error) {
	return fetch[weather.DailyForecast](ctx, c, weather.Daily, q)
}

// Climate returns the 30 day climate forecast. A plan without access to it
// yields weather.ErrForbidden.
func (c *OpenWeatherClient) Climate(ctx context.Context, q weather.Query) (weather.DailyForecast, error) {
	return fetch[weather.DailyForecast](ctx, c, weather.Climate, q)
}

// Close releases the transport. Calls made afterwards return weather.ErrClosed.
func (c *OpenWeatherClient) Close() error {
	err := weather.ErrClosed
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		err = c.http.Close()
		c.transport.CloseIdleConnections()
	})
	return err
}

func fetch[T any](ctx context.Context, c *OpenWeatherClient, h weather.Horizon, q weather.Query) (T, error) {
	var out T
	if c.closed.Load() {
		return out, weather.ErrClosed
	}

	target, err := q.URL(h, c.apiKey)
	if err != nil {
		return out, err
	}

	body, err := c.get(ctx, h, q, target)
	if err != nil {
		return out, err
	}

	if err := decode(body, &out); err != nil {
		log.Printf("openweather: decode %s for %s failed: %v", h, q.Identifier(), err)
		var zero T
		return zero, err
	}

	if v, ok := any(out).(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			log.Printf("WARN: openweather: %s forecast for %s is inconsistent: %v", h, q.Identifier(), err)
		}
	}
	return out, nil
}

// get performs one GET and classifies the outcome. target already carries the
// API key, so it is never logged.
func (c *OpenWeatherClient) get(ctx context.Context, h weather.Horizon, q weather.Query, target string) ([]byte, error) {
	requestID := uuid.NewString()
	log.Printf("DEBUG: openweather: GET %s %s request_id=%s", h.Path(), q, requestID)

	resp, err := execute(c.circuit, func() (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetHeader("X-Request-ID", requestID).
			Get("/" + target)
	})
	if err != nil {
		log.Printf("openweather: request_id=%s failed: %v", requestID, redact(err))
		return nil, &weather.TransportError{Err: redact(err)}
	}

	if err := interpretStatus(resp.StatusCode(), h, q); err != nil {
		log.Printf("openweather: request_id=%s status=%d: %v", requestID, resp.StatusCode(), err)
		return nil, err
	}
	return resp.Bytes(), nil
}

// interpretStatus maps an HTTP status to the error taxonomy. 403 is only
// meaningful on the climate endpoint.
func interpretStatus(code int, h weather.Horizon, q weather.Query) error {
	var kind error
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		kind = weather.ErrNotFound
	case code == http.StatusUnauthorized:
		kind = weather.ErrUnauthorized
	case code == http.StatusBadRequest:
		kind = weather.ErrInvalidRequest
	case code == http.StatusForbidden && h == weather.Climate:
		kind = weather.ErrForbidden
	default:
		kind = weather.ErrUnexpectedStatus
	}
	return &weather.StatusError{
		StatusCode: code,
		Identifier: q.Identifier(),
		Kind:       kind,
	}
}

// decode is all-or-nothing: out is only meaningful when err is nil.
func decode(body []byte, out any) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return &weather.DecodeError{Err: fmt.Errorf("expected a JSON object, got %d bytes", len(trimmed))}
	}

	if err := json.Unmarshal(trimmed, out); err != nil {
		var fieldErr *weather.FieldError
		if errors.As(err, &fieldErr) {
			return fieldErr
		}
		return &weather.DecodeError{Err: err}
	}
	return nil
}

// redact strips the query string (and with it the API key) from URL errors.
func redact(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		clean := *uerr
		if u, perr := url.Parse(uerr.URL); perr == nil {
			u.RawQuery = ""
			clean.URL = u.String()
		}
		return &clean
	}
	return err
}

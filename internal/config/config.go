package config

import (
	"crypto/tls"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/AliShahbazi81/OpenWeatherMapAPI/internal/weather"
	"github.com/AliShahbazi81/OpenWeatherMapAPI/internal/weather/providers"
)

type AppConfig struct {
	OpenWeatherAPIKey string
	BaseURL           string
	HTTPTimeout       time.Duration

	// Transport options applied once when the client is built.
	ProxyURL           *url.URL
	InsecureSkipVerify bool
	BreakerEnabled     bool

	// FetchInterval controls how often we refresh each tracked location.
	FetchInterval time.Duration

	// Locations to track.
	Locations []weather.Location
	Units     weather.Units
	Lang      string

	// In-memory store retention.
	StoreMaxHistory int           // max number of snapshots per location (0 = unlimited)
	StoreMaxAge     time.Duration // max age of snapshots (0 = unlimited)

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.BaseURL = getenvDefault("OPENWEATHER_BASE_URL", providers.DefaultBaseURL)

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}

	if raw := os.Getenv("HTTP_PROXY_URL"); raw != "" {
		proxy, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid HTTP_PROXY_URL: %w", err)
		}
		cfg.ProxyURL = proxy
	}
	cfg.InsecureSkipVerify = getenvBool("HTTP_INSECURE_SKIP_VERIFY", false)
	cfg.BreakerEnabled = getenvBool("BREAKER_ENABLED", false)

	// Scheduler interval: default 15 minutes.
	if cfg.FetchInterval, err = getenvDuration("FETCH_INTERVAL", "15m"); err != nil {
		return nil, err
	}

	cfg.Units = weather.Units(getenvDefault("WEATHER_UNITS", string(weather.UnitsMetric)))
	switch cfg.Units {
	case weather.UnitsStandard, weather.UnitsMetric, weather.UnitsImperial:
	default:
		return nil, fmt.Errorf("invalid WEATHER_UNITS: %q", cfg.Units)
	}
	cfg.Lang = os.Getenv("WEATHER_LANG")

	// Store retention.
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 96) // roughly 24h at 15-minute intervals
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", "24h"); err != nil {
		return nil, err
	}
	cfg.Port = getenvDefault("PORT", "8080")

	locs, err := loadLocations()
	if err != nil {
		return nil, err
	}
	cfg.Locations = locs

	return cfg, nil
}

// ClientConfig derives the API client configuration.
func (c *AppConfig) ClientConfig() providers.ClientConfig {
	breaker := providers.DefaultBreakerConfig()
	breaker.Enabled = c.BreakerEnabled

	proxy := c.ProxyURL
	insecure := c.InsecureSkipVerify

	return providers.ClientConfig{
		BaseURL: c.BaseURL,
		APIKey:  c.OpenWeatherAPIKey,
		Timeout: c.HTTPTimeout,
		ConfigureTransport: func(tr *http.Transport) {
			if proxy != nil {
				tr.Proxy = http.ProxyURL(proxy)
			}
			if insecure {
				if tr.TLSClientConfig == nil {
					tr.TLSClientConfig = &tls.Config{}
				}
				tr.TLSClientConfig.InsecureSkipVerify = true
			}
		},
		Breaker: breaker,
	}
}

func loadLocations() ([]weather.Location, error) {
	city := os.Getenv("WEATHER_LOCATION_CITY")
	if strings.TrimSpace(city) == "" {
		return nil, nil
	}
	country := os.Getenv("WEATHER_LOCATION_COUNTRY")
	cities := strings.Split(city, ",")
	countries := strings.Split(country, ",")
	if len(cities) != len(countries) {
		return nil, fmt.Errorf("number of cities and countries must be the same")
	}
	var locs []weather.Location
	for i := range cities {
		locs = append(locs, weather.Location{
			City:    strings.TrimSpace(cities[i]),
			Country: strings.TrimSpace(countries[i]),
		})
	}

	return locs, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

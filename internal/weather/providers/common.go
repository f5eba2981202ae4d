package providers

import (
	"errors"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"resty.dev/v3"
)

// BreakerConfig controls the optional circuit breaker in front of the API.
// The breaker never retries; it only fails fast while the upstream is down.
type BreakerConfig struct {
	Enabled bool
	// MaxRequests allowed through while half-open.
	MaxRequests uint32
	// Interval is the cyclic period of the closed state for clearing counts.
	Interval time.Duration
	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration
	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32
}

// DefaultBreakerConfig mirrors the settings used for the other upstreams.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:         5,
		Interval:            1 * time.Minute,
		Timeout:             2 * time.Minute,
		ConsecutiveFailures: 5,
	}
}

// errUpstreamDown marks a 5xx answer as a breaker failure. It never leaves
// this package: the response itself is still classified by status.
var errUpstreamDown = errors.New("upstream server error")

func newBreaker(name string, cfg BreakerConfig) *gobreaker.CircuitBreaker {
	if !cfg.Enabled {
		return nil
	}
	threshold := cfg.ConsecutiveFailures
	if threshold == 0 {
		threshold = DefaultBreakerConfig().ConsecutiveFailures
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// 4xx answers say nothing about upstream health.
		IsSuccessful: func(err error) bool {
			return err == nil
		},
	})
}

// execute runs send once, through the breaker when one is configured.
// Transport errors and 5xx answers count as breaker failures; an open
// breaker returns gobreaker.ErrOpenState or gobreaker.ErrTooManyRequests.
func execute(cb *gobreaker.CircuitBreaker, send func() (*resty.Response, error)) (*resty.Response, error) {
	if cb == nil {
		return send()
	}

	result, err := cb.Execute(func() (interface{}, error) {
		resp, sendErr := send()
		if sendErr != nil {
			return nil, sendErr
		}
		if resp.StatusCode() >= http.StatusInternalServerError {
			return resp, errUpstreamDown
		}
		return resp, nil
	})

	resp, _ := result.(*resty.Response)
	if errors.Is(err, errUpstreamDown) {
		return resp, nil
	}
	return resp, err
}

package httpx

import (
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig defines the rate limiting parameters for outgoing calls.
type RateLimitConfig struct {
	// RequestsPerWindow is the number of requests allowed in the time window
	RequestsPerWindow int
	// Window is the time window for rate limiting
	Window time.Duration
	// Burst allows for temporary bursts above the rate limit
	Burst int
}

// DirectoryLimit is the default budget for Directory Store calls. The
// candidate scan issues one call per user, so this is what keeps a large
// directory from being hammered.
var DirectoryLimit = RateLimitConfig{
	RequestsPerWindow: 20,
	Window:            time.Second,
	Burst:             20,
}

// Limit converts the config to a token rate. Non-positive values disable
// limiting.
func (c RateLimitConfig) Limit() rate.Limit {
	if c.RequestsPerWindow <= 0 || c.Window <= 0 {
		return rate.Inf
	}
	return rate.Limit(float64(c.RequestsPerWindow) / c.Window.Seconds())
}

// NewLimiter builds a limiter for the config. Burst is raised to 1 so a
// finite rate can always make progress.
func NewLimiter(c RateLimitConfig) *rate.Limiter {
	return rate.NewLimiter(c.Limit(), max(c.Burst, 1))
}

// RateLimitedTransport waits for a token before each request. Waiting honours
// the request context, so a cancelled call never sits in the queue.
type RateLimitedTransport struct {
	Base    http.RoundTripper
	Limiter *rate.Limiter
}

func (t *RateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	if t.Limiter != nil {
		if err := t.Limiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	return base.RoundTrip(req)
}

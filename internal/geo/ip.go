package geo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/w24010/delightful/internal/domain"
	"github.com/w24010/delightful/pkg/httpclient"
)

const (
	upstreamName = "ip geolocation"

	// maxCachedFixes bounds the cache between sweeps.
	maxCachedFixes = 10000
)

// IPLocatorConfig configures the IP lookup.
type IPLocatorConfig struct {
	// Endpoint is an ip-api compatible base URL; the IP is appended as a path segment.
	Endpoint string
	Timeout  time.Duration

	// Retention is how long a fix is kept. Fixes older than Retention are
	// evicted even if a request would accept them. Defaults to the default
	// maximum age.
	Retention time.Duration
}

// ipAPIResponse is the subset of the ip-api JSON body the locator reads.
type ipAPIResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

type cachedFix struct {
	coords domain.Coordinates
	at     time.Time
}

// IPLocator approximates the caller's position from their IP address.
// Fixes are cached per IP and reused while younger than the request's maximum age.
type IPLocator struct {
	client    httpclient.Doer
	endpoint  string
	logger    *slog.Logger
	now       func() time.Time
	retention time.Duration

	mu        sync.Mutex
	cache     map[string]cachedFix
	lastSweep time.Time
}

// NewIPLocator builds a locator that calls the endpoint once per lookup,
// without retries, behind a circuit breaker.
func NewIPLocator(cfg IPLocatorConfig, logger *slog.Logger) *IPLocator {
	hc := httpclient.DefaultConfig()
	hc.MaxRetries = 0
	if cfg.Timeout > 0 {
		hc.Timeout = cfg.Timeout
	}
	breaker := httpclient.NewCircuitBreakerClient(httpclient.New(hc), httpclient.DefaultCircuitBreakerConfig("geo-ip"), logger)
	l := NewIPLocatorWithClient(breaker, cfg.Endpoint, logger)
	if cfg.Retention > 0 {
		l.retention = cfg.Retention
	}
	return l
}

// NewIPLocatorWithClient wires an existing client, mainly for tests.
func NewIPLocatorWithClient(client httpclient.Doer, endpoint string, logger *slog.Logger) *IPLocator {
	return &IPLocator{
		client:    client,
		endpoint:  strings.TrimRight(endpoint, "/"),
		logger:    logger,
		now:       time.Now,
		retention: DefaultOptions().MaximumAge,
		cache:     make(map[string]cachedFix),
	}
}

// Locate looks up req.ClientIP.
func (l *IPLocator) Locate(ctx context.Context, req Request) (domain.Coordinates, error) {
	if req.ClientIP == "" {
		return domain.Coordinates{}, &Error{Code: CodePositionUnavailable, Err: errors.New("client ip unknown")}
	}

	if c, ok := l.cached(req.ClientIP, req.Options.MaximumAge); ok {
		return c, nil
	}

	if req.Options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Options.Timeout)
		defer cancel()
	}

	var body ipAPIResponse
	lookupURL := l.endpoint + "/" + url.PathEscape(req.ClientIP)
	if err := httpclient.GetJSON(ctx, l.client, lookupURL, upstreamName, &body); err != nil {
		if ctx.Err() != nil {
			return domain.Coordinates{}, &Error{Code: CodeTimeout, Err: err}
		}
		l.logger.WarnContext(ctx, "ip geolocation lookup failed",
			slog.String("error", err.Error()),
		)
		return domain.Coordinates{}, &Error{Code: CodePositionUnavailable, Err: err}
	}

	if body.Status != "success" {
		return domain.Coordinates{}, &Error{
			Code: CodePositionUnavailable,
			Err:  fmt.Errorf("lookup status %q: %s", body.Status, body.Message),
		}
	}

	coords := domain.Coordinates{Lat: body.Lat, Lng: body.Lon}
	if !validCoordinates(coords) {
		return domain.Coordinates{}, &Error{Code: CodePositionUnavailable, Err: errors.New("coordinates out of range")}
	}

	l.store(req.ClientIP, coords)
	return coords, nil
}

// store caches a fix, sweeping expired entries at most once per retention period.
func (l *IPLocator) store(ip string, coords domain.Coordinates) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.retention {
		l.sweep(now)
	}
	if _, ok := l.cache[ip]; !ok && len(l.cache) >= maxCachedFixes {
		return
	}
	l.cache[ip] = cachedFix{coords: coords, at: now}
}

// sweep evicts fixes older than the retention period. Callers hold l.mu.
func (l *IPLocator) sweep(now time.Time) {
	for ip, fix := range l.cache {
		if now.Sub(fix.at) > l.retention {
			delete(l.cache, ip)
		}
	}
	l.lastSweep = now
}

func (l *IPLocator) cacheLen() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.cache)
}

func (l *IPLocator) cached(ip string, maxAge time.Duration) (domain.Coordinates, bool) {
	if maxAge <= 0 {
		return domain.Coordinates{}, false
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	fix, ok := l.cache[ip]
	if !ok {
		return domain.Coordinates{}, false
	}
	if age := l.now().Sub(fix.at); age > maxAge || age > l.retention {
		delete(l.cache, ip)
		return domain.Coordinates{}, false
	}
	return fix.coords, true
}

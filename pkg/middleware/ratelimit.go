package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	apperrors "github.com/w24010/delightful/pkg/errors"
	"github.com/w24010/delightful/pkg/httputil"
)

// visitor tracks a token bucket per client key.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// visitorStore keeps per-client limiters and evicts idle ones.
type visitorStore struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	ttl      time.Duration
	nowFunc  func() time.Time
}

func newVisitorStore(rps float64, burst int, ttl time.Duration) *visitorStore {
	return &visitorStore{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(rps),
		burst:    burst,
		ttl:      ttl,
		nowFunc:  time.Now,
	}
}

// get returns the limiter for key, creating it on first use.
func (s *visitorStore) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc()
	v, ok := s.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter
}

// cleanup evicts visitors idle for longer than ttl.
func (s *visitorStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc()
	for key, v := range s.visitors {
		if now.Sub(v.lastSeen) > s.ttl {
			delete(s.visitors, key)
		}
	}
}

func (s *visitorStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.visitors)
}

// run evicts idle visitors every ttl until ctx is done.
func (s *visitorStore) run(ctx context.Context) {
	ticker := time.NewTicker(s.ttl)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

// RateLimiter enforces a per-client token bucket. Clients are keyed by
// session ID when present and by IP otherwise.
type RateLimiter struct {
	store  *visitorStore
	logger *slog.Logger
	cancel context.CancelFunc
}

// NewRateLimiter starts a limiter allowing rps requests per second with the given burst.
// Call Stop to end the background eviction loop.
func NewRateLimiter(rps float64, burst int, logger *slog.Logger) *RateLimiter {
	const idleTTL = 3 * time.Minute
	ctx, cancel := context.WithCancel(context.Background())
	store := newVisitorStore(rps, burst, idleTTL)
	go store.run(ctx)
	return &RateLimiter{store: store, logger: logger, cancel: cancel}
}

// Stop ends the eviction loop.
func (rl *RateLimiter) Stop() {
	rl.cancel()
}

// Handler returns the middleware. Rejected requests get 429 RATE_LIMITED.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := SessionIDFromContext(r.Context())
		if key == "" {
			key = clientIP(r)
		}

		if !rl.store.get(key).Allow() {
			rl.logger.Warn("rate limit exceeded",
				slog.String("client", key),
				slog.String("path", r.URL.Path),
			)
			rateLimitedTotal.WithLabelValues(r.URL.Path).Inc()
			httputil.WriteError(w, r, apperrors.RateLimited("too many requests"), rl.logger)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the client IP, preferring X-Forwarded-For then X-Real-IP.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, part := range strings.Split(xff, ",") {
			if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
				return ip.String()
			}
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if ip := net.ParseIP(strings.TrimSpace(xri)); ip != nil {
			return ip.String()
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ClientIP is exported for handlers that key work by caller address, such as IP geolocation.
func ClientIP(r *http.Request) string {
	return clientIP(r)
}

package middleware

import (
	"context"
	"net/http"
	"strings"

	apperrors "github.com/w24010/delightful/pkg/errors"
	"github.com/w24010/delightful/pkg/httputil"
	"github.com/w24010/delightful/pkg/logger"
)

// SessionIDHeader identifies the browser session that owns a cart and a saved address.
const SessionIDHeader = "X-Session-ID"

const maxSessionIDLen = 128

type sessionKey struct{}

// Session copies the X-Session-ID header into the request context.
// Requests without the header pass through untouched.
func Session() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(SessionIDHeader))
			if id != "" && len(id) <= maxSessionIDLen {
				ctx := context.WithValue(r.Context(), sessionKey{}, id)
				ctx = logger.WithSessionID(ctx, id)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession rejects requests that carry no session with 401.
func RequireSession() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if SessionIDFromContext(r.Context()) == "" {
				httputil.WriteError(w, r, apperrors.Unauthorized("missing "+SessionIDHeader+" header"), nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SessionIDFromContext returns the session stored by Session, or "".
func SessionIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(sessionKey{}).(string); ok {
		return id
	}
	return ""
}

// WithSessionID stores a session ID in ctx. Intended for tests and background work.
func WithSessionID(ctx context.Context, id string) context.Context {
	return logger.WithSessionID(context.WithValue(ctx, sessionKey{}, id), id)
}

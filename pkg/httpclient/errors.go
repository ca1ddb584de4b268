package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/w24010/delightful/pkg/errors"
)

// upstreamErrorBody covers the common JSON error shapes returned by lookup
// providers: {"error": {"code", "message"}}, {"error": "..."} and {"message": "..."}.
type upstreamErrorBody struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
	Reason  string          `json:"reason"`
}

func (b upstreamErrorBody) text() string {
	if len(b.Error) > 0 {
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(b.Error, &nested) == nil && nested.Message != "" {
			return nested.Message
		}
		var flat string
		if json.Unmarshal(b.Error, &flat) == nil && flat != "" {
			return flat
		}
	}
	if b.Message != "" {
		return b.Message
	}
	return b.Reason
}

// ParseResponseError consumes a non-2xx response and maps it to an AppError.
// The body is closed.
func ParseResponseError(resp *http.Response, upstream string) error {
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", upstream, resp.StatusCode, err)
	}

	message := strings.TrimSpace(string(raw))
	var body upstreamErrorBody
	if json.Unmarshal(raw, &body) == nil && body.text() != "" {
		message = body.text()
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	return mapUpstreamError(resp.StatusCode, upstream, message)
}

func mapUpstreamError(status int, upstream, message string) error {
	qualified := fmt.Sprintf("%s: %s", upstream, message)

	switch {
	case status == http.StatusNotFound:
		return apperrors.NotFoundMessage(qualified)
	case status == http.StatusTooManyRequests:
		return apperrors.RateLimited(qualified)
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		// Our credentials with the provider are wrong; the caller cannot fix that.
		return apperrors.ServiceUnavailable(qualified)
	case IsClientError(status):
		return apperrors.InvalidInput(qualified)
	default:
		return apperrors.ServiceUnavailable(fmt.Sprintf("%s (status %d)", qualified, status))
	}
}

// IsClientError returns true if the HTTP status code is a 4xx client error.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}

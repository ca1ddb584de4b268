// Package geo resolves the caller's position for the address book.
package geo

import (
	"context"
	"errors"
	"time"

	"github.com/w24010/delightful/internal/domain"
)

// ErrorCode classifies a failed position lookup.
type ErrorCode string

const (
	CodePermissionDenied    ErrorCode = "permission-denied"
	CodePositionUnavailable ErrorCode = "position-unavailable"
	CodeTimeout             ErrorCode = "timeout"
	CodeUnsupported         ErrorCode = "unsupported"
	CodeUnknown             ErrorCode = "unknown"
)

var messages = map[ErrorCode]string{
	CodePermissionDenied:    "Location access denied by user",
	CodePositionUnavailable: "Location information is unavailable",
	CodeTimeout:             "Location request timed out",
	CodeUnsupported:         "Geolocation is not supported by this browser",
	CodeUnknown:             "Failed to get current location",
}

// Message returns the user-facing text for code. Unrecognized codes get the
// generic failure text.
func Message(code ErrorCode) string {
	if m, ok := messages[code]; ok {
		return m
	}
	return messages[CodeUnknown]
}

// ParseCode maps a reported code onto the known set.
func ParseCode(s string) ErrorCode {
	code := ErrorCode(s)
	if _, ok := messages[code]; ok {
		return code
	}
	return CodeUnknown
}

// Error is a classified lookup failure.
type Error struct {
	Code ErrorCode
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Code) + ": " + e.Err.Error()
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// Message returns the user-facing text of the failure.
func (e *Error) Message() string { return Message(e.Code) }

// Classify returns err as an *Error. Deadline errors become timeouts and
// anything unclassified becomes unknown.
func Classify(err error) *Error {
	var geoErr *Error
	if errors.As(err, &geoErr) {
		return geoErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Code: CodeTimeout, Err: err}
	}
	return &Error{Code: CodeUnknown, Err: err}
}

// Options mirror the browser geolocation request options.
type Options struct {
	HighAccuracy bool          `json:"enable_high_accuracy"`
	Timeout      time.Duration `json:"-"`
	MaximumAge   time.Duration `json:"-"`
}

// DefaultOptions requests a high-accuracy fix within 10s, accepting one up to 5m old.
func DefaultOptions() Options {
	return Options{
		HighAccuracy: true,
		Timeout:      10 * time.Second,
		MaximumAge:   5 * time.Minute,
	}
}

// Request is one attempt to find the caller.
type Request struct {
	// ClientIP is used by locators that look the caller up by address.
	ClientIP string

	// Position is a fix the browser already obtained.
	Position *domain.Coordinates

	// ErrorCode is the failure the browser reported instead of a fix.
	ErrorCode string

	// Overrides are the caller's changes to the configured options.
	Overrides Overrides

	Options Options
}

// Overrides replace individual Options fields. Zero fields keep the base value.
type Overrides struct {
	HighAccuracy *bool
	Timeout      time.Duration
	MaximumAge   time.Duration
}

// Apply returns base with every set override applied.
func (o Overrides) Apply(base Options) Options {
	if o.HighAccuracy != nil {
		base.HighAccuracy = *o.HighAccuracy
	}
	if o.Timeout > 0 {
		base.Timeout = o.Timeout
	}
	if o.MaximumAge > 0 {
		base.MaximumAge = o.MaximumAge
	}
	return base
}

// Locator finds the caller's coordinates. Implementations make a single
// attempt bounded by Options.Timeout.
type Locator interface {
	Locate(ctx context.Context, req Request) (domain.Coordinates, error)
}

// Geocoder turns coordinates into a postal address.
type Geocoder interface {
	Reverse(ctx context.Context, c domain.Coordinates) (domain.Address, error)
}

// PlaceholderGeocoder answers every position with a fixed New York address.
type PlaceholderGeocoder struct{}

func (PlaceholderGeocoder) Reverse(_ context.Context, c domain.Coordinates) (domain.Address, error) {
	return domain.PlaceholderAddress(c), nil
}

// Unsupported is the locator used when geolocation is switched off.
type Unsupported struct{}

func (Unsupported) Locate(context.Context, Request) (domain.Coordinates, error) {
	return domain.Coordinates{}, &Error{Code: CodeUnsupported}
}

func validCoordinates(c domain.Coordinates) bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

package geo

import (
	"context"
	"errors"

	"github.com/w24010/delightful/internal/domain"
)

var errNoPosition = errors.New("no position reported")

// ClientLocator trusts the fix or failure the browser sent with the request.
type ClientLocator struct{}

// Locate returns the reported position, or the reported failure.
func (ClientLocator) Locate(_ context.Context, req Request) (domain.Coordinates, error) {
	if req.ErrorCode != "" {
		return domain.Coordinates{}, &Error{Code: ParseCode(req.ErrorCode)}
	}
	if req.Position == nil {
		return domain.Coordinates{}, &Error{Code: CodePositionUnavailable, Err: errNoPosition}
	}
	if !validCoordinates(*req.Position) {
		return domain.Coordinates{}, &Error{Code: CodePositionUnavailable, Err: errors.New("coordinates out of range")}
	}
	return *req.Position, nil
}

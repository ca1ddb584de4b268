package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/w24010/delightful/internal/domain"
	"github.com/w24010/delightful/internal/event"
	"github.com/w24010/delightful/internal/geo"
	"github.com/w24010/delightful/internal/repository"
	apperrors "github.com/w24010/delightful/pkg/errors"
)

// AddressInput is the location form body.
type AddressInput struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
}

// Address converts the form into a domain address.
func (in AddressInput) Address() domain.Address {
	return domain.Address{
		Street:  in.Street,
		City:    in.City,
		State:   in.State,
		ZipCode: in.ZipCode,
		Country: in.Country,
	}
}

// DeliveryCheck is the result of a delivery-area check.
type DeliveryCheck struct {
	Deliverable bool   `json:"deliverable"`
	Message     string `json:"message,omitempty"`
}

// AddressService owns the single delivery address of each session.
type AddressService struct {
	repo     repository.AddressRepository
	locator  geo.Locator
	geocoder geo.Geocoder
	options  geo.Options
	producer *event.Producer
	logger   *slog.Logger
}

// NewAddressService creates a new address service.
func NewAddressService(repo repository.AddressRepository, locator geo.Locator, geocoder geo.Geocoder, options geo.Options, producer *event.Producer, logger *slog.Logger) *AddressService {
	return &AddressService{
		repo:     repo,
		locator:  locator,
		geocoder: geocoder,
		options:  options,
		producer: producer,
		logger:   logger,
	}
}

func book(addr *domain.Address) domain.AddressBook {
	return domain.AddressBook{
		Current:         addr,
		LocationEnabled: addr != nil && addr.Coordinates != nil,
	}
}

// load returns the stored address. Read failures and undecodable data are
// logged and treated as no address.
func (s *AddressService) load(ctx context.Context, sessionID string) *domain.Address {
	addr, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to load saved address",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return addr
}

// Get returns the session's address book.
func (s *AddressService) Get(ctx context.Context, sessionID string) domain.AddressBook {
	return book(s.load(ctx, sessionID))
}

// Current returns the saved address or nil.
func (s *AddressService) Current(ctx context.Context, sessionID string) *domain.Address {
	return s.load(ctx, sessionID)
}

// Set replaces the saved address as given.
func (s *AddressService) Set(ctx context.Context, sessionID string, addr domain.Address) (domain.AddressBook, error) {
	if sessionID == "" {
		return domain.AddressBook{}, apperrors.InvalidInput("session id is required")
	}

	if err := s.repo.Save(ctx, sessionID, &addr); err != nil {
		return domain.AddressBook{}, fmt.Errorf("save address: %w", err)
	}

	if err := s.producer.PublishAddressUpdated(ctx, sessionID, addr); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish address.updated event",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "delivery address set",
		slog.String("session_id", sessionID),
		slog.String("city", addr.City),
		slog.Bool("geolocated", addr.Coordinates != nil),
	)

	return book(&addr), nil
}

// Submit saves a form-entered address after the completeness and
// delivery-area checks. Blank country defaults to USA.
func (s *AddressService) Submit(ctx context.Context, sessionID string, input AddressInput) (domain.AddressBook, error) {
	addr := input.Address()
	if msg := domain.CheckSubmission(addr); msg != "" {
		return domain.AddressBook{}, apperrors.InvalidInput(msg)
	}
	return s.Set(ctx, sessionID, addr.WithDefaults())
}

// Check reports whether addr is inside a delivery area.
func (s *AddressService) Check(addr domain.Address) DeliveryCheck {
	if domain.InDeliveryArea(addr) {
		return DeliveryCheck{Deliverable: true}
	}
	return DeliveryCheck{Message: domain.MsgOutsideDeliveryArea}
}

// LocateCurrent asks the locator for the caller's position and saves the
// geocoded address. Request overrides are applied on top of the configured
// options. A failed lookup is not an error: the saved address is kept,
// location is reported disabled and the book carries the failure message.
func (s *AddressService) LocateCurrent(ctx context.Context, sessionID string, req geo.Request) (domain.AddressBook, error) {
	if sessionID == "" {
		return domain.AddressBook{}, apperrors.InvalidInput("session id is required")
	}
	req.Options = req.Overrides.Apply(s.options)

	coords, err := s.locator.Locate(ctx, req)
	if err == nil {
		var addr domain.Address
		addr, err = s.geocoder.Reverse(ctx, coords)
		if err == nil {
			geolocationTotal.WithLabelValues("success").Inc()
			if addr.Coordinates == nil {
				addr.Coordinates = &coords
			}
			return s.Set(ctx, sessionID, addr)
		}
	}

	geoErr := geo.Classify(err)
	geolocationTotal.WithLabelValues(string(geoErr.Code)).Inc()
	s.logger.WarnContext(ctx, "current location lookup failed",
		slog.String("session_id", sessionID),
		slog.String("code", string(geoErr.Code)),
		slog.String("error", geoErr.Error()),
	)

	result := s.Get(ctx, sessionID)
	result.LocationEnabled = false
	result.Error = geoErr.Message()
	return result, nil
}

// Clear deletes the saved address.
func (s *AddressService) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return apperrors.InvalidInput("session id is required")
	}

	if err := s.repo.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete address: %w", err)
	}

	if err := s.producer.PublishAddressCleared(ctx, sessionID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish address.cleared event",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "delivery address cleared", slog.String("session_id", sessionID))
	return nil
}

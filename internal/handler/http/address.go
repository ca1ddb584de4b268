package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/w24010/delightful/internal/domain"
	"github.com/w24010/delightful/internal/geo"
	"github.com/w24010/delightful/internal/service"
	"github.com/w24010/delightful/pkg/httputil"
	"github.com/w24010/delightful/pkg/middleware"
	"github.com/w24010/delightful/pkg/validator"
)

// AddressHandler handles HTTP requests for the saved delivery address.
type AddressHandler struct {
	service *service.AddressService
	logger  *slog.Logger
}

// NewAddressHandler creates a new address HTTP handler.
func NewAddressHandler(svc *service.AddressService, logger *slog.Logger) *AddressHandler {
	return &AddressHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

// AddressRequest is the JSON body of the address form. Completeness is
// checked by the service so the form gets its own message.
type AddressRequest struct {
	Street  string `json:"street" validate:"max=200"`
	City    string `json:"city" validate:"max=100"`
	State   string `json:"state" validate:"max=100"`
	ZipCode string `json:"zip_code" validate:"max=20"`
	Country string `json:"country" validate:"max=100"`
}

func (req AddressRequest) input() service.AddressInput {
	return service.AddressInput{
		Street:  req.Street,
		City:    req.City,
		State:   req.State,
		ZipCode: req.ZipCode,
		Country: req.Country,
	}
}

// LocateRequest carries what the browser reported for a current-location
// request. An empty body asks the server-side locator.
type LocateRequest struct {
	Position           *domain.Coordinates `json:"position"`
	ErrorCode          string              `json:"error_code" validate:"max=64"`
	EnableHighAccuracy *bool               `json:"enable_high_accuracy"`
	TimeoutMS          int                 `json:"timeout_ms" validate:"gte=0,lte=60000"`
	MaximumAgeMS       int                 `json:"maximum_age_ms" validate:"gte=0"`
}

func (req LocateRequest) overrides() geo.Overrides {
	return geo.Overrides{
		HighAccuracy: req.EnableHighAccuracy,
		Timeout:      time.Duration(req.TimeoutMS) * time.Millisecond,
		MaximumAge:   time.Duration(req.MaximumAgeMS) * time.Millisecond,
	}
}

// --- Handlers ---

// GetAddress handles GET /api/v1/address
func (h *AddressHandler) GetAddress(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.service.Get(r.Context(), middleware.SessionIDFromContext(r.Context())))
}

// SubmitAddress handles PUT /api/v1/address
func (h *AddressHandler) SubmitAddress(w http.ResponseWriter, r *http.Request) {
	var req AddressRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	book, err := h.service.Submit(r.Context(), middleware.SessionIDFromContext(r.Context()), req.input())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, book)
}

// CheckAddress handles POST /api/v1/address/check
func (h *AddressHandler) CheckAddress(w http.ResponseWriter, r *http.Request) {
	var req AddressRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	httputil.WriteData(w, http.StatusOK, h.service.Check(req.input().Address()))
}

// LocateCurrent handles POST /api/v1/address/locate
func (h *AddressHandler) LocateCurrent(w http.ResponseWriter, r *http.Request) {
	var req LocateRequest
	if r.ContentLength != 0 {
		if err := validator.DecodeAndValidate(r, &req); err != nil {
			httputil.WriteValidationError(w, err)
			return
		}
	}

	book, err := h.service.LocateCurrent(r.Context(), middleware.SessionIDFromContext(r.Context()), geo.Request{
		ClientIP:  middleware.ClientIP(r),
		Position:  req.Position,
		ErrorCode: req.ErrorCode,
		Overrides: req.overrides(),
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, book)
}

// ClearAddress handles DELETE /api/v1/address
func (h *AddressHandler) ClearAddress(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Clear(r.Context(), middleware.SessionIDFromContext(r.Context())); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, map[string]string{"status": "cleared"})
}

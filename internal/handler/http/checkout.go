package http

import (
	"log/slog"
	"net/http"

	"github.com/w24010/delightful/internal/domain"
	"github.com/w24010/delightful/internal/service"
	"github.com/w24010/delightful/pkg/httputil"
	"github.com/w24010/delightful/pkg/middleware"
	"github.com/w24010/delightful/pkg/validator"
)

// CheckoutHandler handles the checkout page and order placement.
type CheckoutHandler struct {
	service *service.CheckoutService
	logger  *slog.Logger
}

// NewCheckoutHandler creates a new checkout HTTP handler.
func NewCheckoutHandler(svc *service.CheckoutService, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

// CardRequest holds the raw card form fields.
type CardRequest struct {
	Number string `json:"number" validate:"max=64"`
	Expiry string `json:"expiry" validate:"max=16"`
	CVV    string `json:"cvv" validate:"max=16"`
	Name   string `json:"name" validate:"max=200"`
}

func (c CardRequest) details() domain.CardDetails {
	return domain.CardDetails{Number: c.Number, Expiry: c.Expiry, CVV: c.CVV, Name: c.Name}
}

// PlaceOrderRequest is the JSON request body for placing an order.
type PlaceOrderRequest struct {
	PaymentMethod string       `json:"payment_method" validate:"required,oneof=card apple google"`
	Card          *CardRequest `json:"card"`
}

// --- Handlers ---

// GetCheckout handles GET /api/v1/checkout
func (h *CheckoutHandler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context(), middleware.SessionIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, summary)
}

// FormatCard handles POST /api/v1/checkout/format
func (h *CheckoutHandler) FormatCard(w http.ResponseWriter, r *http.Request) {
	var req CardRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	httputil.WriteData(w, http.StatusOK, h.service.FormatCard(req.details()))
}

// ValidateCard handles POST /api/v1/checkout/validate
func (h *CheckoutHandler) ValidateCard(w http.ResponseWriter, r *http.Request) {
	var req CardRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	errs := domain.ValidateCard(req.details())
	httputil.WriteData(w, http.StatusOK, map[string]any{
		"valid":  len(errs) == 0,
		"errors": errs,
	})
}

// PlaceOrder handles POST /api/v1/checkout/orders
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	payment := domain.Payment{Method: req.PaymentMethod}
	if req.Card != nil {
		card := req.Card.details()
		payment.Card = &card
	}

	order, err := h.service.PlaceOrder(r.Context(), middleware.SessionIDFromContext(r.Context()), payment)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, order)
}

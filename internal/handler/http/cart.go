package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/w24010/delightful/internal/domain"
	"github.com/w24010/delightful/internal/service"
	"github.com/w24010/delightful/pkg/httputil"
	"github.com/w24010/delightful/pkg/middleware"
	"github.com/w24010/delightful/pkg/validator"
)

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// AddItemRequest is the JSON request body for adding a menu item to the cart.
type AddItemRequest struct {
	RestaurantID string `json:"restaurant_id" validate:"required,max=64"`
	ItemID       string `json:"item_id" validate:"required,max=64"`
}

// UpdateQuantityRequest is the JSON request body for updating a line's quantity.
// Zero or a negative quantity removes the line.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// --- Handlers ---

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context(), middleware.SessionIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, summary)
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	cart, err := h.service.AddItem(r.Context(), middleware.SessionIDFromContext(r.Context()), service.AddItemInput{
		RestaurantID: req.RestaurantID,
		ItemID:       req.ItemID,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.writeCart(w, cart)
}

// UpdateItemQuantity handles PUT /api/v1/cart/items/{itemId}
func (h *CartHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	cart, err := h.service.UpdateQuantity(r.Context(), middleware.SessionIDFromContext(r.Context()), chi.URLParam(r, "itemId"), *req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.writeCart(w, cart)
}

// RemoveItem handles DELETE /api/v1/cart/items/{itemId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.RemoveItem(r.Context(), middleware.SessionIDFromContext(r.Context()), chi.URLParam(r, "itemId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.writeCart(w, cart)
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearCart(r.Context(), middleware.SessionIDFromContext(r.Context())); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (h *CartHandler) writeCart(w http.ResponseWriter, cart *domain.Cart) {
	httputil.WriteData(w, http.StatusOK, service.NewCartSummary(cart))
}

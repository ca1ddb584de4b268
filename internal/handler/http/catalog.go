package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/w24010/delightful/internal/domain"
	"github.com/w24010/delightful/internal/service"
	"github.com/w24010/delightful/pkg/httputil"
	"github.com/w24010/delightful/pkg/pagination"
)

// CatalogHandler serves the read-only restaurant catalog.
type CatalogHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(svc *service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{service: svc, logger: logger}
}

// ListRestaurants handles GET /api/v1/catalog/restaurants
func (h *CatalogHandler) ListRestaurants(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.RestaurantFilter{
		Cuisine:  strings.TrimSpace(q.Get("cuisine")),
		Query:    strings.TrimSpace(q.Get("q")),
		Category: strings.TrimSpace(q.Get("category")),
	}

	result, err := h.service.List(r.Context(), filter, pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// GetRestaurant handles GET /api/v1/catalog/restaurants/{id}
func (h *CatalogHandler) GetRestaurant(w http.ResponseWriter, r *http.Request) {
	restaurant, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, restaurant)
}

// GetMenu handles GET /api/v1/catalog/restaurants/{id}/menu
func (h *CatalogHandler) GetMenu(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Menu(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("category"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, view)
}

// ListFeaturedCategories handles GET /api/v1/catalog/categories
func (h *CatalogHandler) ListFeaturedCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.Featured(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, categories)
}

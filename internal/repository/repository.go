package repository

import (
	"context"

	"github.com/w24010/delightful/internal/domain"
)

// CatalogRepository reads the static restaurant catalog.
type CatalogRepository interface {
	// ListRestaurants returns the restaurants matching filter in catalog order.
	ListRestaurants(ctx context.Context, filter domain.RestaurantFilter) ([]domain.Restaurant, error)

	// GetRestaurant returns one restaurant with its full menu.
	GetRestaurant(ctx context.Context, id string) (*domain.Restaurant, error)

	// ListFeaturedCategories returns the home page category shortcuts.
	ListFeaturedCategories(ctx context.Context) ([]domain.FeaturedCategory, error)
}

// CartRepository defines the interface for cart persistence operations.
type CartRepository interface {
	// Get retrieves a cart by its session ID.
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)

	// Save persists a cart to the store, overwriting any existing cart for the session.
	Save(ctx context.Context, cart *domain.Cart) error

	// Delete removes a cart from the store by the session ID.
	Delete(ctx context.Context, sessionID string) error
}

// AddressRepository stores the single delivery address of a session.
type AddressRepository interface {
	// Get returns the stored address, or nil when none is stored.
	Get(ctx context.Context, sessionID string) (*domain.Address, error)

	Save(ctx context.Context, sessionID string, address *domain.Address) error

	Delete(ctx context.Context, sessionID string) error
}

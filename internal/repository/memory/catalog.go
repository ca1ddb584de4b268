package memory

import (
	"context"
	"slices"

	"github.com/w24010/delightful/internal/catalogdata"
	"github.com/w24010/delightful/internal/domain"
	apperrors "github.com/w24010/delightful/pkg/errors"
)

// CatalogRepository serves the embedded catalog from memory.
type CatalogRepository struct {
	restaurants []domain.Restaurant
	byID        map[string]int
	featured    []domain.FeaturedCategory
}

// NewCatalogRepository indexes a loaded catalog.
func NewCatalogRepository(c *catalogdata.Catalog) *CatalogRepository {
	byID := make(map[string]int, len(c.Restaurants))
	for i, r := range c.Restaurants {
		byID[r.ID] = i
	}
	return &CatalogRepository{
		restaurants: c.Restaurants,
		byID:        byID,
		featured:    c.FeaturedCategories,
	}
}

// ListRestaurants returns copies of the restaurants matching filter.
func (r *CatalogRepository) ListRestaurants(_ context.Context, filter domain.RestaurantFilter) ([]domain.Restaurant, error) {
	out := make([]domain.Restaurant, 0, len(r.restaurants))
	for i := range r.restaurants {
		if filter.Matches(&r.restaurants[i]) {
			out = append(out, clone(r.restaurants[i]))
		}
	}
	return out, nil
}

// GetRestaurant returns a copy of restaurant id.
func (r *CatalogRepository) GetRestaurant(_ context.Context, id string) (*domain.Restaurant, error) {
	i, ok := r.byID[id]
	if !ok {
		return nil, apperrors.NotFound("restaurant", id)
	}
	rest := clone(r.restaurants[i])
	return &rest, nil
}

// ListFeaturedCategories returns the featured categories.
func (r *CatalogRepository) ListFeaturedCategories(_ context.Context) ([]domain.FeaturedCategory, error) {
	return slices.Clone(r.featured), nil
}

func clone(r domain.Restaurant) domain.Restaurant {
	r.Menu = slices.Clone(r.Menu)
	return r
}

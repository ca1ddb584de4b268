package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/w24010/delightful/internal/domain"
	"github.com/w24010/delightful/internal/repository"
	apperrors "github.com/w24010/delightful/pkg/errors"
	"github.com/w24010/delightful/pkg/pagination"
	"github.com/w24010/delightful/pkg/slug"
)

// RestaurantSummary is a listing entry: the restaurant without its menu, plus
// the menu's category names.
type RestaurantSummary struct {
	domain.Restaurant
	Categories []string `json:"categories"`
}

// MenuView is one restaurant's menu opened at a single category.
type MenuView struct {
	Restaurant RestaurantSummary `json:"restaurant"`
	Category   string            `json:"category"`
	Slug       string            `json:"category_slug"`
	Items      []domain.MenuItem `json:"items"`
}

// CatalogService serves the read-only catalog.
type CatalogService struct {
	repo   repository.CatalogRepository
	logger *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(repo repository.CatalogRepository, logger *slog.Logger) *CatalogService {
	return &CatalogService{repo: repo, logger: logger}
}

func summarize(r domain.Restaurant) RestaurantSummary {
	categories := r.Categories()
	if categories == nil {
		categories = []string{}
	}
	r.Menu = nil
	return RestaurantSummary{Restaurant: r, Categories: categories}
}

// List returns one page of the restaurants matching filter.
func (s *CatalogService) List(ctx context.Context, filter domain.RestaurantFilter, params pagination.Params) (pagination.Result[RestaurantSummary], error) {
	restaurants, err := s.repo.ListRestaurants(ctx, filter)
	if err != nil {
		return pagination.Result[RestaurantSummary]{}, fmt.Errorf("list restaurants: %w", err)
	}

	summaries := make([]RestaurantSummary, len(restaurants))
	for i, r := range restaurants {
		summaries[i] = summarize(r)
	}
	return pagination.Slice(summaries, params), nil
}

// Get returns a restaurant with its full menu.
func (s *CatalogService) Get(ctx context.Context, id string) (*domain.Restaurant, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("restaurant id is required")
	}
	return s.repo.GetRestaurant(ctx, id)
}

// Menu opens a restaurant's menu at category, matched case-insensitively or
// by its slug ("rice-and-biryani"). An empty category selects the first one.
func (s *CatalogService) Menu(ctx context.Context, id, category string) (*MenuView, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	categories := r.Categories()
	selected := ""
	switch {
	case category == "" && len(categories) > 0:
		selected = categories[0]
	case category != "":
		for _, c := range categories {
			if strings.EqualFold(c, category) || slug.Generate(c) == category {
				selected = c
				break
			}
		}
		if selected == "" {
			return nil, apperrors.NotFoundMessage(fmt.Sprintf("menu category %q not found", category))
		}
	}

	items := r.ItemsInCategory(selected)
	if items == nil {
		items = []domain.MenuItem{}
	}
	return &MenuView{
		Restaurant: summarize(*r),
		Category:   selected,
		Slug:       slug.Generate(selected),
		Items:      items,
	}, nil
}

// Featured returns the home page category shortcuts.
func (s *CatalogService) Featured(ctx context.Context) ([]domain.FeaturedCategory, error) {
	fc, err := s.repo.ListFeaturedCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list featured categories: %w", err)
	}
	return fc, nil
}

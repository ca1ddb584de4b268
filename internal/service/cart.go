package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/w24010/delightful/internal/domain"
	"github.com/w24010/delightful/internal/event"
	"github.com/w24010/delightful/internal/repository"
	apperrors "github.com/w24010/delightful/pkg/errors"
)

// AddItemInput identifies the menu item to add.
type AddItemInput struct {
	RestaurantID string `json:"restaurant_id" validate:"required"`
	ItemID       string `json:"item_id" validate:"required"`
}

// UpdateQuantityInput holds the new quantity of a line. Zero or less removes it.
type UpdateQuantityInput struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// CartSummary is the cart with its item count and price breakdown.
type CartSummary struct {
	Cart      *domain.Cart          `json:"cart"`
	ItemCount int                   `json:"item_count"`
	Quote     domain.Quote          `json:"quote"`
	Display   domain.FormattedQuote `json:"display"`
}

// CartService implements the business logic for cart operations.
type CartService struct {
	repo     repository.CartRepository
	catalog  repository.CatalogRepository
	producer *event.Producer
	logger   *slog.Logger
	cartTTL  time.Duration
	now      func() time.Time
}

// NewCartService creates a new cart service.
func NewCartService(repo repository.CartRepository, catalog repository.CatalogRepository, producer *event.Producer, logger *slog.Logger, cartTTL time.Duration) *CartService {
	return &CartService{
		repo:     repo,
		catalog:  catalog,
		producer: producer,
		logger:   logger,
		cartTTL:  cartTTL,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// GetCart retrieves the cart for a session. If no cart exists, returns an empty cart.
func (s *CartService) GetCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	cart, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return s.newEmptyCart(sessionID), nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	return cart, nil
}

// Summary returns the cart priced for display.
func (s *CartService) Summary(ctx context.Context, sessionID string) (*CartSummary, error) {
	cart, err := s.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return NewCartSummary(cart), nil
}

// NewCartSummary prices cart for display.
func NewCartSummary(cart *domain.Cart) *CartSummary {
	quote := domain.NewQuote(cart.Total())
	return &CartSummary{
		Cart:      cart,
		ItemCount: cart.ItemCount(),
		Quote:     quote,
		Display:   quote.Formatted(),
	}
}

// AddItem resolves the menu item from the catalog and adds one of it to the cart.
// Adding an item already in the cart increments its quantity.
func (s *CartService) AddItem(ctx context.Context, sessionID string, input AddItemInput) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	restaurant, err := s.catalog.GetRestaurant(ctx, input.RestaurantID)
	if err != nil {
		return nil, err
	}
	item, ok := restaurant.FindItem(input.ItemID)
	if !ok {
		return nil, apperrors.NotFound("menu item", input.ItemID)
	}

	cart, err := s.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	cart.AddItem(domain.LineFromMenuItem(restaurant, item))
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("session_id", sessionID),
		slog.String("restaurant_id", input.RestaurantID),
		slog.String("item_id", input.ItemID),
		slog.Int("quantity", cart.ItemQuantity(input.ItemID)),
	)

	return cart, nil
}

// UpdateQuantity sets the quantity of a line; zero or less removes it and an
// unknown item leaves the cart unchanged.
func (s *CartService) UpdateQuantity(ctx context.Context, sessionID, itemID string, quantity int) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	cart, err := s.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	cart.UpdateQuantity(itemID, quantity)
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "cart item quantity updated",
		slog.String("session_id", sessionID),
		slog.String("item_id", itemID),
		slog.Int("quantity", quantity),
	)

	return cart, nil
}

// RemoveItem removes a line from the cart. Removing an absent item is a no-op.
func (s *CartService) RemoveItem(ctx context.Context, sessionID, itemID string) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	cart, err := s.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	cart.RemoveItem(itemID)
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "item removed from cart",
		slog.String("session_id", sessionID),
		slog.String("item_id", itemID),
	)

	return cart, nil
}

// ClearCart removes all items from the session's cart.
func (s *CartService) ClearCart(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return apperrors.InvalidInput("session id is required")
	}

	if err := s.repo.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}

	if err := s.producer.PublishCartCleared(ctx, sessionID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "cart cleared",
		slog.String("session_id", sessionID),
	)

	return nil
}

func (s *CartService) save(ctx context.Context, cart *domain.Cart) error {
	now := s.now()
	cart.UpdatedAt = now
	cart.ExpiresAt = now.Add(s.cartTTL)

	if err := s.repo.Save(ctx, cart); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}

	if err := s.producer.PublishCartUpdated(ctx, cart); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("session_id", cart.SessionID),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

// newEmptyCart creates a new empty cart for the given session.
func (s *CartService) newEmptyCart(sessionID string) *domain.Cart {
	now := s.now()
	cart := domain.NewCart(sessionID, now)
	cart.ID = uuid.New().String()
	cart.ExpiresAt = now.Add(s.cartTTL)
	return cart
}

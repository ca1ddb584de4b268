package service

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/mock"

	"github.com/w24010/delightful/internal/domain"
	"github.com/w24010/delightful/internal/event"
	"github.com/w24010/delightful/internal/geo"
	pkgkafka "github.com/w24010/delightful/pkg/kafka"
)

// --- Mock Repositories ---

type mockCartRepository struct {
	mock.Mock
}

func (m *mockCartRepository) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *mockCartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

func (m *mockCartRepository) Delete(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

type mockCatalogRepository struct {
	mock.Mock
}

func (m *mockCatalogRepository) ListRestaurants(ctx context.Context, filter domain.RestaurantFilter) ([]domain.Restaurant, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Restaurant), args.Error(1)
}

func (m *mockCatalogRepository) GetRestaurant(ctx context.Context, id string) (*domain.Restaurant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Restaurant), args.Error(1)
}

func (m *mockCatalogRepository) ListFeaturedCategories(ctx context.Context) ([]domain.FeaturedCategory, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FeaturedCategory), args.Error(1)
}

type mockAddressRepository struct {
	mock.Mock
}

func (m *mockAddressRepository) Get(ctx context.Context, sessionID string) (*domain.Address, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Address), args.Error(1)
}

func (m *mockAddressRepository) Save(ctx context.Context, sessionID string, address *domain.Address) error {
	args := m.Called(ctx, sessionID, address)
	return args.Error(0)
}

func (m *mockAddressRepository) Delete(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

type stubLocator struct {
	coords domain.Coordinates
	err    error
	got    geo.Request
}

func (s *stubLocator) Locate(_ context.Context, req geo.Request) (domain.Coordinates, error) {
	s.got = req
	return s.coords, s.err
}

// --- Test Helpers ---

type recordingWriter struct {
	mu     sync.Mutex
	topics []string
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, m := range msgs {
		w.topics = append(w.topics, m.Topic)
	}
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func (w *recordingWriter) published() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.topics...)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestProducer() (*event.Producer, *recordingWriter) {
	w := &recordingWriter{}
	l := newTestLogger()
	return event.NewProducer(pkgkafka.NewProducerWithWriter(w, nil, l), l), w
}

func spiceGarden() *domain.Restaurant {
	return &domain.Restaurant{
		ID:      "spice-garden",
		Name:    "Spice Garden",
		Cuisine: "Indian",
		Menu: []domain.MenuItem{
			{ID: "curry-1", Name: "Butter Chicken", Price: 16.99, Category: "Curries"},
			{ID: "curry-2", Name: "Lamb Vindaloo", Price: 19.99, Category: "Curries", Spicy: true},
			{ID: "bread-1", Name: "Garlic Naan", Price: 4.99, Category: "Breads"},
		},
	}
}

func chicagoAddress() *domain.Address {
	return &domain.Address{Street: "1 Wacker Dr", City: "Chicago", State: "IL", ZipCode: "60601", Country: "USA"}
}

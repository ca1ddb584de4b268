package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/w24010/delightful/internal/domain"
	pkgkafka "github.com/w24010/delightful/pkg/kafka"
	"github.com/w24010/delightful/pkg/logger"
)

// Kafka topic constants for storefront domain events.
const (
	TopicCartUpdated    = "storefront.cart.updated"
	TopicCartCleared    = "storefront.cart.cleared"
	TopicAddressUpdated = "storefront.address.updated"
	TopicAddressCleared = "storefront.address.cleared"
	TopicOrderPlaced    = "storefront.order.placed"
)

// Aggregate types.
const (
	AggregateTypeCart    = "cart"
	AggregateTypeAddress = "address"
	AggregateTypeOrder   = "order"
)

// SourceStorefront identifies events emitted by this service.
const SourceStorefront = "storefront"

// Metadata keys attached to every event.
const (
	MetaSessionID     = "session_id"
	MetaOrderID       = "order_id"
	MetaPaymentMethod = "payment_method"
)

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	SessionID string            `json:"session_id"`
	Lines     []domain.CartLine `json:"lines"`
	ItemCount int               `json:"item_count"`
	Subtotal  float64           `json:"subtotal"`
}

// CartClearedData is the payload for a cart.cleared event.
type CartClearedData struct {
	SessionID string `json:"session_id"`
}

// AddressUpdatedData is the payload for an address.updated event.
type AddressUpdatedData struct {
	SessionID  string         `json:"session_id"`
	Address    domain.Address `json:"address"`
	Geolocated bool           `json:"geolocated"`
}

// AddressClearedData is the payload for an address.cleared event.
type AddressClearedData struct {
	SessionID string `json:"session_id"`
}

// OrderPlacedData is the payload for an order.placed event.
type OrderPlacedData struct {
	SessionID     string            `json:"session_id"`
	OrderID       string            `json:"order_id"`
	Lines         []domain.CartLine `json:"lines"`
	Quote         domain.Quote      `json:"quote"`
	PaymentMethod string            `json:"payment_method"`
	Address       domain.Address    `json:"address"`
}

// Producer publishes storefront domain events to Kafka. A nil Kafka producer
// turns every publish into a no-op.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// publish wraps data in an event keyed by sessionID. meta holds extra
// metadata as key, value pairs.
func (p *Producer) publish(ctx context.Context, topic, sessionID, aggregateType string, data any, meta ...string) error {
	if p == nil || p.kafka == nil {
		return nil
	}

	event, err := pkgkafka.NewEvent(topic, sessionID, aggregateType, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}
	event.WithMetadata(MetaSessionID, sessionID)
	for i := 0; i+1 < len(meta); i += 2 {
		event.WithMetadata(meta[i], meta[i+1])
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("session_id", sessionID),
	)
	return nil
}

// PublishCartUpdated publishes a cart.updated event.
func (p *Producer) PublishCartUpdated(ctx context.Context, cart *domain.Cart) error {
	return p.publish(ctx, TopicCartUpdated, cart.SessionID, AggregateTypeCart, CartUpdatedData{
		SessionID: cart.SessionID,
		Lines:     cart.Lines,
		ItemCount: cart.ItemCount(),
		Subtotal:  cart.Total(),
	})
}

// PublishCartCleared publishes a cart.cleared event.
func (p *Producer) PublishCartCleared(ctx context.Context, sessionID string) error {
	return p.publish(ctx, TopicCartCleared, sessionID, AggregateTypeCart, CartClearedData{SessionID: sessionID})
}

// PublishAddressUpdated publishes an address.updated event.
func (p *Producer) PublishAddressUpdated(ctx context.Context, sessionID string, addr domain.Address) error {
	return p.publish(ctx, TopicAddressUpdated, sessionID, AggregateTypeAddress, AddressUpdatedData{
		SessionID:  sessionID,
		Address:    addr,
		Geolocated: addr.Coordinates != nil,
	})
}

// PublishAddressCleared publishes an address.cleared event.
func (p *Producer) PublishAddressCleared(ctx context.Context, sessionID string) error {
	return p.publish(ctx, TopicAddressCleared, sessionID, AggregateTypeAddress, AddressClearedData{SessionID: sessionID})
}

// PublishOrderPlaced publishes an order.placed event keyed by session so it
// follows the cart events of the same session.
func (p *Producer) PublishOrderPlaced(ctx context.Context, data OrderPlacedData) error {
	return p.publish(ctx, TopicOrderPlaced, data.SessionID, AggregateTypeOrder, data,
		MetaOrderID, data.OrderID,
		MetaPaymentMethod, data.PaymentMethod,
	)
}

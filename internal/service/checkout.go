package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/w24010/delightful/internal/domain"
	"github.com/w24010/delightful/internal/event"
	apperrors "github.com/w24010/delightful/pkg/errors"
)

// DefaultProcessingDelay is the artificial pause before an order is confirmed.
const DefaultProcessingDelay = 2 * time.Second

// MsgCartEmpty is returned when an order is placed with an empty cart.
const MsgCartEmpty = "your cart is empty"

// CheckoutSummary is everything the checkout view renders.
type CheckoutSummary struct {
	CartSummary
	Address        domain.AddressBook     `json:"address"`
	PaymentMethods []domain.PaymentMethod `json:"payment_methods"`
	Ready          bool                   `json:"ready"`
}

// CheckoutService validates payment and places simulated orders.
type CheckoutService struct {
	carts     *CartService
	addresses *AddressService
	producer  *event.Producer
	logger    *slog.Logger
	delay     time.Duration
	now       func() time.Time
	sleep     func(time.Duration)
}

// NewCheckoutService creates a checkout service that waits delay before
// confirming each order.
func NewCheckoutService(carts *CartService, addresses *AddressService, producer *event.Producer, logger *slog.Logger, delay time.Duration) *CheckoutService {
	return &CheckoutService{
		carts:     carts,
		addresses: addresses,
		producer:  producer,
		logger:    logger,
		delay:     delay,
		now:       time.Now,
		sleep:     time.Sleep,
	}
}

// Summary returns the priced cart, the address book and the payment options.
// Ready is true once the cart has items and an address is saved.
func (s *CheckoutService) Summary(ctx context.Context, sessionID string) (*CheckoutSummary, error) {
	cs, err := s.carts.Summary(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	addr := s.addresses.Get(ctx, sessionID)

	return &CheckoutSummary{
		CartSummary:    *cs,
		Address:        addr,
		PaymentMethods: domain.PaymentMethods,
		Ready:          !cs.Cart.IsEmpty() && addr.Current != nil,
	}, nil
}

// FormatCard applies the as-you-type card formatting to each field.
func (s *CheckoutService) FormatCard(in domain.CardDetails) domain.CardDetails {
	return domain.CardDetails{
		Number: domain.FormatCardNumber(in.Number),
		Expiry: domain.FormatExpiry(in.Expiry),
		CVV:    domain.FormatCVV(in.CVV),
		Name:   in.Name,
	}
}

func (s *CheckoutService) reject(ctx context.Context, sessionID, reason string, err error) error {
	orderRejectionsTotal.WithLabelValues(reason).Inc()
	s.logger.InfoContext(ctx, "order rejected",
		slog.String("session_id", sessionID),
		slog.String("reason", reason),
	)
	return err
}

// PlaceOrder validates the cart, address and payment, waits the processing
// delay, clears the cart and returns the confirmed order. Once validation
// passes placement cannot fail and ignores cancellation of ctx.
func (s *CheckoutService) PlaceOrder(ctx context.Context, sessionID string, payment domain.Payment) (*domain.Order, error) {
	if _, ok := domain.FindPaymentMethod(payment.Method); !ok {
		return nil, s.reject(ctx, sessionID, "payment_method", apperrors.InvalidInput("unknown payment method"))
	}

	cart, err := s.carts.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, s.reject(ctx, sessionID, "empty_cart", apperrors.InvalidInput(MsgCartEmpty))
	}

	addr := s.addresses.Current(ctx, sessionID)
	if addr == nil {
		return nil, s.reject(ctx, sessionID, "no_address", apperrors.InvalidInput(domain.MsgAddressRequired))
	}

	if errs := payment.Validate(); len(errs) > 0 {
		return nil, s.reject(ctx, sessionID, "payment_invalid", apperrors.Validation("payment details are invalid", errs))
	}

	ctx = context.WithoutCancel(ctx)
	s.sleep(s.delay)

	quote := domain.NewQuote(cart.Total())
	order := domain.NewOrder(quote.Total, s.now())

	if err := s.carts.ClearCart(ctx, sessionID); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear cart after order",
			slog.String("session_id", sessionID),
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishOrderPlaced(ctx, event.OrderPlacedData{
		SessionID:     sessionID,
		OrderID:       order.ID,
		Lines:         cart.Lines,
		Quote:         quote,
		PaymentMethod: payment.Method,
		Address:       *addr,
	}); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.placed event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	ordersPlacedTotal.WithLabelValues(payment.Method).Inc()
	s.logger.InfoContext(ctx, "order placed",
		slog.String("session_id", sessionID),
		slog.String("order_id", order.ID),
		slog.String("total", order.FormattedTotal),
		slog.String("payment_method", payment.Method),
	)

	return &order, nil
}

// Confirmation echoes the order number and total back with the initial
// tracking state. Orders are not stored, so any non-empty ID is accepted.
func (s *CheckoutService) Confirmation(orderID, total string) (*domain.Confirmation, error) {
	if orderID == "" {
		return nil, apperrors.NotFoundMessage("order not found")
	}
	p := domain.NewProgress()
	return &domain.Confirmation{
		OrderID: orderID,
		Total:   total,
		Stages:  p.Stages(),
		Percent: p.Percent,
	}, nil
}

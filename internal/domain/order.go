package domain

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// OrderIDPrefix starts every synthetic order number.
const OrderIDPrefix = "DL"

// MsgAddressRequired is returned when an order is placed without an address.
const MsgAddressRequired = "Please add a delivery address"

// Order is the ephemeral result of placing an order. It is never stored.
type Order struct {
	ID              string    `json:"id"`
	Total           float64   `json:"total"`
	FormattedTotal  string    `json:"formatted_total"`
	ConfirmationURL string    `json:"confirmation_url"`
	PlacedAt        time.Time `json:"placed_at"`
}

// NewOrderID returns "DL" followed by the last six digits of the Unix millisecond clock.
func NewOrderID(now time.Time) string {
	ms := strconv.FormatInt(now.UnixMilli(), 10)
	if len(ms) > 6 {
		ms = ms[len(ms)-6:]
	}
	return OrderIDPrefix + ms
}

// NewOrder builds the placed order for total at now.
func NewOrder(total float64, now time.Time) Order {
	id := NewOrderID(now)
	formatted := FormatAmount(total)
	return Order{
		ID:              id,
		Total:           total,
		FormattedTotal:  formatted,
		ConfirmationURL: ConfirmationURL(id, formatted),
		PlacedAt:        now,
	}
}

// ConfirmationURL is the view path the client navigates to after placement.
func ConfirmationURL(orderID, formattedTotal string) string {
	q := url.Values{}
	q.Set("orderId", orderID)
	q.Set("total", formattedTotal)
	return fmt.Sprintf("/order-confirmation?%s", q.Encode())
}

// Confirmation echoes the order number and total shown on the confirmation view.
type Confirmation struct {
	OrderID string        `json:"order_id"`
	Total   string        `json:"total"`
	Stages  []StageStatus `json:"stages"`
	Percent int           `json:"progress"`
}

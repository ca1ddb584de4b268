package domain

import "strconv"

// Fixed checkout fees and the sales tax rate, in dollars.
const (
	DeliveryFee = 2.99
	ServiceFee  = 1.99
	TaxRate     = 0.08875
)

// Quote is the price breakdown shown at checkout. Values are unrounded;
// use FormatAmount for display.
type Quote struct {
	Subtotal    float64 `json:"subtotal"`
	DeliveryFee float64 `json:"delivery_fee"`
	ServiceFee  float64 `json:"service_fee"`
	Tax         float64 `json:"tax"`
	Total       float64 `json:"total"`
}

// NewQuote prices a subtotal. The fees apply even to an empty cart.
func NewQuote(subtotal float64) Quote {
	tax := subtotal * TaxRate
	return Quote{
		Subtotal:    subtotal,
		DeliveryFee: DeliveryFee,
		ServiceFee:  ServiceFee,
		Tax:         tax,
		Total:       subtotal + DeliveryFee + ServiceFee + tax,
	}
}

// FormatAmount renders a dollar amount with exactly two decimals.
func FormatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}

// FormattedQuote is Quote rendered for display.
type FormattedQuote struct {
	Subtotal    string `json:"subtotal"`
	DeliveryFee string `json:"delivery_fee"`
	ServiceFee  string `json:"service_fee"`
	Tax         string `json:"tax"`
	Total       string `json:"total"`
}

// Formatted renders every amount of q with two decimals.
func (q Quote) Formatted() FormattedQuote {
	return FormattedQuote{
		Subtotal:    FormatAmount(q.Subtotal),
		DeliveryFee: FormatAmount(q.DeliveryFee),
		ServiceFee:  FormatAmount(q.ServiceFee),
		Tax:         FormatAmount(q.Tax),
		Total:       FormatAmount(q.Total),
	}
}

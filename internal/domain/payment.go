package domain

import (
	"regexp"
	"strings"
)

// PaymentMethodKind separates card entry from wallet payments.
type PaymentMethodKind string

const (
	KindCard    PaymentMethodKind = "card"
	KindDigital PaymentMethodKind = "digital"
)

// PaymentMethod is an option offered at checkout.
type PaymentMethod struct {
	ID   string            `json:"id"`
	Name string            `json:"name"`
	Kind PaymentMethodKind `json:"kind"`
}

// Payment method identifiers.
const (
	MethodCard   = "card"
	MethodApple  = "apple"
	MethodGoogle = "google"
)

// PaymentMethods lists the checkout options in display order.
var PaymentMethods = []PaymentMethod{
	{ID: MethodCard, Name: "Credit/Debit Card", Kind: KindCard},
	{ID: MethodApple, Name: "Apple Pay", Kind: KindDigital},
	{ID: MethodGoogle, Name: "Google Pay", Kind: KindDigital},
}

// FindPaymentMethod returns the method with id.
func FindPaymentMethod(id string) (PaymentMethod, bool) {
	for _, m := range PaymentMethods {
		if m.ID == id {
			return m, true
		}
	}
	return PaymentMethod{}, false
}

// CardDetails are the raw card form fields.
type CardDetails struct {
	Number string `json:"number"`
	Expiry string `json:"expiry"`
	CVV    string `json:"cvv"`
	Name   string `json:"name"`
}

// Payment is the tagged payment choice. Card is only meaningful for the card method.
type Payment struct {
	Method string       `json:"method"`
	Card   *CardDetails `json:"card,omitempty"`
}

// Card form messages.
const (
	MsgInvalidCardNumber = "Please enter a valid card number"
	MsgInvalidExpiry     = "Please enter expiry date (MM/YY)"
	MsgInvalidCVV        = "Please enter a valid CVV"
	MsgMissingCardholder = "Please enter cardholder name"
)

var (
	nonDigits     = regexp.MustCompile(`\D`)
	whitespace    = regexp.MustCompile(`\s`)
	expiryPattern = regexp.MustCompile(`^\d{2}/\d{2}$`)
)

func digitsOnly(s string) string {
	return nonDigits.ReplaceAllString(s, "")
}

// FormatCardNumber keeps digits only and groups the first 16 in fours.
// Fewer than four digits are returned as typed.
func FormatCardNumber(input string) string {
	v := digitsOnly(input)
	if len(v) < 4 {
		return v
	}
	if len(v) > 16 {
		v = v[:16]
	}

	var b strings.Builder
	for i := 0; i < len(v); i += 4 {
		if i > 0 {
			b.WriteByte(' ')
		}
		end := min(i+4, len(v))
		b.WriteString(v[i:end])
	}
	return b.String()
}

// FormatExpiry renders digits as MM/YY once at least two digits are present.
func FormatExpiry(input string) string {
	v := digitsOnly(input)
	if len(v) < 2 {
		return v
	}
	yy := v[2:]
	if len(yy) > 2 {
		yy = yy[:2]
	}
	return v[:2] + "/" + yy
}

// FormatCVV keeps at most four digits.
func FormatCVV(input string) string {
	v := digitsOnly(input)
	if len(v) > 4 {
		v = v[:4]
	}
	return v
}

// CardErrors maps card form fields to their messages. Empty means valid.
type CardErrors map[string]string

// ValidateCard checks card fields. The number length ignores whitespace, so
// grouping spaces do not matter. Expiry month and year are not range checked.
func ValidateCard(c CardDetails) CardErrors {
	errs := CardErrors{}
	if len(whitespace.ReplaceAllString(c.Number, "")) < 16 {
		errs["number"] = MsgInvalidCardNumber
	}
	if !expiryPattern.MatchString(c.Expiry) {
		errs["expiry"] = MsgInvalidExpiry
	}
	if len(c.CVV) < 3 {
		errs["cvv"] = MsgInvalidCVV
	}
	if strings.TrimSpace(c.Name) == "" {
		errs["name"] = MsgMissingCardholder
	}
	return errs
}

// Validate checks p against its method. Only the card method carries
// details to validate; wallet methods always pass.
func (p Payment) Validate() CardErrors {
	if p.Method != MethodCard {
		return CardErrors{}
	}
	if p.Card == nil {
		return ValidateCard(CardDetails{})
	}
	return ValidateCard(*p.Card)
}

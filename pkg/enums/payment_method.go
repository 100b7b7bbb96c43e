package enums

import "fmt"

// PaymentMethod describes how a buyer intends to settle an order.
type PaymentMethod string

const (
	PaymentMethodCard           PaymentMethod = "credit-card"
	PaymentMethodBankTransfer   PaymentMethod = "bank-transfer"
	PaymentMethodLetterOfCredit PaymentMethod = "letter-of-credit"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCard,
	PaymentMethodBankTransfer,
	PaymentMethodLetterOfCredit,
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// RequiresCapture reports whether the method is settled through the hosted card element.
func (p PaymentMethod) RequiresCapture() bool {
	return p == PaymentMethodCard
}

// Gateway returns the commerce backend payment_method id and title.
func (p PaymentMethod) Gateway() (string, string) {
	switch p {
	case PaymentMethodCard:
		return "airwallex_card", "Credit Card (Airwallex)"
	case PaymentMethodLetterOfCredit:
		return "letter_of_credit", "Letter of Credit"
	}
	return "bacs", "Bank Transfer"
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}

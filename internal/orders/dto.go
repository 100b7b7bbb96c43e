package orders

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/wholesale-storefront/pkg/woocommerce"
)

// Customer identifies the buyer the order is placed for.
type Customer struct {
	Email     string               `json:"email"`
	FirstName string               `json:"first_name,omitempty"`
	LastName  string               `json:"last_name,omitempty"`
	Billing   *woocommerce.Address `json:"billing,omitempty"`
	Shipping  *woocommerce.Address `json:"shipping,omitempty"`
}

// Item is one ordered product. Subtotal and Total override the store's own
// pricing when set, which is how negotiated bulk prices reach the order.
type Item struct {
	ProductID   int              `json:"product_id"`
	VariationID int              `json:"variation_id,omitempty"`
	Quantity    int              `json:"quantity"`
	Subtotal    *decimal.Decimal `json:"subtotal,omitempty"`
	Total       *decimal.Decimal `json:"total,omitempty"`
}

// Payment carries the gateway id/title and whether funds were captured.
type Payment struct {
	Method        string `json:"method,omitempty"`
	Title         string `json:"title,omitempty"`
	SetPaid       bool   `json:"set_paid,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
}

// SubmitInput is everything needed to place an order.
type SubmitInput struct {
	Customer Customer          `json:"customer"`
	Items    []Item            `json:"items"`
	Payment  Payment           `json:"payment"`
	Note     string            `json:"note,omitempty"`
	Meta     map[string]string `json:"meta,omitempty"`
}

// Confirmation is the trimmed order returned to the buyer.
type Confirmation struct {
	ID       int    `json:"id"`
	Number   string `json:"number"`
	Status   string `json:"status"`
	Total    string `json:"total"`
	Currency string `json:"currency,omitempty"`
}

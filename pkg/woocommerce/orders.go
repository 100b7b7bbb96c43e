package woocommerce

import (
	"context"
	"net/http"

	pkgerrors "github.com/angelmondragon/wholesale-storefront/pkg/errors"
)

const (
	DefaultPaymentMethod      = "bacs"
	DefaultPaymentMethodTitle = "Bank Transfer"
)

// CreateOrder posts a new order. An empty payment method defaults to bank
// transfer, and SetPaid stays false unless the caller captured payment.
func (c *Client) CreateOrder(ctx context.Context, input OrderInput) (*Order, error) {
	if len(input.LineItems) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one line item")
	}
	if input.PaymentMethod == "" {
		input.PaymentMethod = DefaultPaymentMethod
	}
	if input.PaymentMethodTitle == "" {
		input.PaymentMethodTitle = DefaultPaymentMethodTitle
	}

	var order Order
	if _, err := c.do(ctx, call{
		operation: "create_order",
		method:    http.MethodPost,
		path:      "/orders",
		body:      input,
	}, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

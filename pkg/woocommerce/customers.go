package woocommerce

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	pkgerrors "github.com/angelmondragon/wholesale-storefront/pkg/errors"
)

// FindOrCreateCustomer looks a customer up by email and creates one when the
// store has no match.
func (c *Client) FindOrCreateCustomer(ctx context.Context, input CustomerInput) (*Customer, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer email is required")
	}
	input.Email = email

	query := url.Values{}
	query.Set("email", email)
	query.Set("_fields", "id,email,first_name,last_name")

	var existing []Customer
	if _, err := c.do(ctx, call{
		operation: "find_customer",
		method:    http.MethodGet,
		path:      "/customers",
		query:     query,
	}, &existing); err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return &existing[0], nil
	}

	var created Customer
	if _, err := c.do(ctx, call{
		operation: "create_customer",
		method:    http.MethodPost,
		path:      "/customers",
		body:      input,
	}, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

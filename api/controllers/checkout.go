package controllers

import (
	"net/http"

	"github.com/angelmondragon/wholesale-storefront/api/responses"
	"github.com/angelmondragon/wholesale-storefront/api/validators"
	"github.com/angelmondragon/wholesale-storefront/internal/orders"
	pkgerrors "github.com/angelmondragon/wholesale-storefront/pkg/errors"
	"github.com/angelmondragon/wholesale-storefront/pkg/logger"
	"github.com/angelmondragon/wholesale-storefront/pkg/woocommerce"
)

type checkoutRequest struct {
	Customer checkoutCustomer `json:"customer"`
	Items    []checkoutItem   `json:"items"`
	Payment  checkoutPayment  `json:"payment"`
}

type checkoutCustomer struct {
	Email     string               `json:"email"`
	FirstName string               `json:"first_name"`
	LastName  string               `json:"last_name"`
	Billing   *woocommerce.Address `json:"billing"`
	Shipping  *woocommerce.Address `json:"shipping"`
}

type checkoutItem struct {
	ProductID   int `json:"product_id"`
	VariationID int `json:"variation_id"`
	Quantity    int `json:"quantity"`
}

type checkoutPayment struct {
	Method  string `json:"method"`
	Title   string `json:"title"`
	SetPaid bool   `json:"set_paid"`
}

// Line prices are left to the store on this route; only the session
// checkout forwards negotiated totals.
func (req checkoutRequest) toSubmitInput() orders.SubmitInput {
	items := make([]orders.Item, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, orders.Item{
			ProductID:   item.ProductID,
			VariationID: item.VariationID,
			Quantity:    item.Quantity,
		})
	}
	return orders.SubmitInput{
		Customer: orders.Customer{
			Email:     req.Customer.Email,
			FirstName: req.Customer.FirstName,
			LastName:  req.Customer.LastName,
			Billing:   req.Customer.Billing,
			Shipping:  req.Customer.Shipping,
		},
		Items: items,
		Payment: orders.Payment{
			Method:  req.Payment.Method,
			Title:   req.Payment.Title,
			SetPaid: req.Payment.SetPaid,
		},
	}
}

type checkoutResponse struct {
	Success bool                 `json:"success"`
	Order   *orders.Confirmation `json:"order"`
}

// Checkout places an order directly from a client-built payload.
func Checkout(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		confirmation, err := svc.Submit(r.Context(), payload.toSubmitInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, checkoutResponse{Success: true, Order: confirmation})
	}
}

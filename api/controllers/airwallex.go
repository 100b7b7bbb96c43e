package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/wholesale-storefront/api/responses"
	"github.com/angelmondragon/wholesale-storefront/api/validators"
	"github.com/angelmondragon/wholesale-storefront/pkg/airwallex"
	pkgerrors "github.com/angelmondragon/wholesale-storefront/pkg/errors"
	"github.com/angelmondragon/wholesale-storefront/pkg/logger"
)

// PaymentGateway is the slice of the Airwallex client the proxy routes need.
type PaymentGateway interface {
	Authenticate(ctx context.Context) (*airwallex.Token, error)
	CreatePaymentIntent(ctx context.Context, req airwallex.IntentRequest) (*airwallex.PaymentIntent, error)
}

type airwallexTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AirwallexAuth exchanges the server-held credentials for a bearer token.
func AirwallexAuth(gateway PaymentGateway, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if gateway == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeConfiguration, "payment gateway unavailable"))
			return
		}

		token, err := gateway.Authenticate(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, airwallexTokenResponse{Token: token.Token, ExpiresAt: token.ExpiresAt})
	}
}

type createIntentRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	OrderID       string          `json:"orderId"`
	CustomerEmail string          `json:"customerEmail"`
}

type createIntentResponse struct {
	IntentID     string          `json:"intentId"`
	ClientSecret string          `json:"clientSecret"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
}

// AirwallexCreatePaymentIntent creates an intent for a client-supplied amount.
func AirwallexCreatePaymentIntent(gateway PaymentGateway, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if gateway == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeConfiguration, "payment gateway unavailable"))
			return
		}

		var payload createIntentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		intent, err := gateway.CreatePaymentIntent(r.Context(), airwallex.IntentRequest{
			Amount:          payload.Amount,
			Currency:        payload.Currency,
			MerchantOrderID: validators.SanitizeString(payload.OrderID, 64),
			CustomerEmail:   validators.SanitizeString(payload.CustomerEmail, 254),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, createIntentResponse{
			IntentID:     intent.ID,
			ClientSecret: intent.ClientSecret,
			Amount:       intent.Amount,
			Currency:     intent.Currency,
		})
	}
}

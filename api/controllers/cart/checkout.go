package cart

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/wholesale-storefront/api/middleware"
	"github.com/angelmondragon/wholesale-storefront/api/responses"
	"github.com/angelmondragon/wholesale-storefront/api/validators"
	"github.com/angelmondragon/wholesale-storefront/internal/checkout"
	pkgerrors "github.com/angelmondragon/wholesale-storefront/pkg/errors"
	"github.com/angelmondragon/wholesale-storefront/pkg/logger"
)

// CheckoutTotals returns the cart with its shipping, tax and grand total.
func CheckoutTotals(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		sessionID, err := sessionFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Quote(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

// CheckoutIntent creates a payment intent for the cart's grand total so the
// browser can mount the card element.
func CheckoutIntent(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		sessionID, err := sessionFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkout.IntentInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		intent, err := svc.CreateIntent(r.Context(), sessionID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, intent)
	}
}

// CheckoutSubmit runs the checkout for the session's cart.
func CheckoutSubmit(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		sessionID, err := sessionFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkout.Input
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payload.IdempotencyKey = strings.TrimSpace(r.Header.Get(middleware.IdempotencyHeader))

		confirmation, err := svc.Submit(r.Context(), sessionID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := http.StatusCreated
		if confirmation.Replayed {
			status = http.StatusOK
		}
		responses.WriteSuccessStatus(w, status, confirmation)
	}
}

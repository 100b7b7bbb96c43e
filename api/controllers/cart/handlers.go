package cart

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	cartdto "github.com/angelmondragon/wholesale-storefront/api/controllers/cart/dto"
	"github.com/angelmondragon/wholesale-storefront/api/middleware"
	"github.com/angelmondragon/wholesale-storefront/api/responses"
	"github.com/angelmondragon/wholesale-storefront/api/validators"
	cartsvc "github.com/angelmondragon/wholesale-storefront/internal/cart"
	"github.com/angelmondragon/wholesale-storefront/internal/catalog"
	"github.com/angelmondragon/wholesale-storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/wholesale-storefront/pkg/errors"
	"github.com/angelmondragon/wholesale-storefront/pkg/logger"
)

// ProductLookup fetches the snapshot stored with a new cart line.
type ProductLookup interface {
	GetProduct(ctx context.Context, id int) (*catalog.Product, error)
}

func sessionFromRequest(r *http.Request) (string, error) {
	sessionID := middleware.CartSessionFromContext(r.Context())
	if sessionID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "cart session required")
	}
	return sessionID, nil
}

func summarize(c *cartsvc.Cart) cartsvc.Summary {
	if c == nil {
		return cartsvc.Summarize(nil)
	}
	return cartsvc.Summarize(c.Lines)
}

// CartFetch returns the priced cart for the session.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		sessionID, err := sessionFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Summary(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// CartAddItem snapshots the product from the catalog and adds it to the cart.
func CartAddItem(svc cartsvc.Service, products ProductLookup, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || products == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		sessionID, err := sessionFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartdto.AddItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		mode := payload.PriceMode
		if mode == "" {
			mode = enums.PriceModeSingle
		}

		product, err := products.GetProduct(r.Context(), payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.AddItem(r.Context(), sessionID, *product, payload.Quantity, mode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, summarize(updated))
	}
}

// CartUpdateItem applies a quantity and/or price mode change to one line.
func CartUpdateItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		sessionID, err := sessionFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := catalog.ParseProductID(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartdto.UpdateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.Quantity == nil && payload.PriceMode == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "quantity or price_mode is required"))
			return
		}

		var updated *cartsvc.Cart
		if payload.PriceMode != nil {
			if updated, err = svc.UpdatePriceMode(r.Context(), sessionID, productID, *payload.PriceMode); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		if payload.Quantity != nil {
			if updated, err = svc.UpdateQuantity(r.Context(), sessionID, productID, *payload.Quantity); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		responses.WriteSuccess(w, summarize(updated))
	}
}

// CartRemoveItem drops one line; removing an absent line is not an error.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		sessionID, err := sessionFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := catalog.ParseProductID(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.RemoveItem(r.Context(), sessionID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summarize(updated))
	}
}

// CartClear empties the session's cart.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		sessionID, err := sessionFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Clear(r.Context(), sessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

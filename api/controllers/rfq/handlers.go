package rfq

import (
	"net/http"

	"github.com/angelmondragon/wholesale-storefront/api/middleware"
	"github.com/angelmondragon/wholesale-storefront/api/responses"
	"github.com/angelmondragon/wholesale-storefront/api/validators"
	rfqsvc "github.com/angelmondragon/wholesale-storefront/internal/rfq"
	pkgerrors "github.com/angelmondragon/wholesale-storefront/pkg/errors"
	"github.com/angelmondragon/wholesale-storefront/pkg/logger"
)

type openRequest struct {
	ProductID *int `json:"product_id,omitempty" validate:"omitempty,gt=0"`
}

func workflowFor(registry *rfqsvc.Registry, r *http.Request) (*rfqsvc.Workflow, error) {
	if registry == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "rfq workflow unavailable")
	}
	sessionID := middleware.CartSessionFromContext(r.Context())
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart session required")
	}
	return registry.For(sessionID), nil
}

// PanelFetch returns the session's quote panel, including any kept draft.
func PanelFetch(registry *rfqsvc.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wf, err := workflowFor(registry, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, wf.Panel())
	}
}

// PanelOpen opens the panel, scoped to a product when product_id is sent.
// An empty body opens it unscoped.
func PanelOpen(registry *rfqsvc.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wf, err := workflowFor(registry, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload openRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		wf.Open(payload.ProductID)
		responses.WriteSuccess(w, wf.Panel())
	}
}

func PanelClose(registry *rfqsvc.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wf, err := workflowFor(registry, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		wf.Close()
		responses.WriteSuccess(w, wf.Panel())
	}
}

// PanelSubmit submits through the open panel. A rejected form stays in the
// panel as its draft.
func PanelSubmit(registry *rfqsvc.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wf, err := workflowFor(registry, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var form rfqsvc.Form
		if err := validators.DecodeJSONBody(r, &form); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		submission, err := wf.Submit(r.Context(), form)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, submission)
	}
}

// Submit stores a quote request from the standalone RFQ page, without a panel.
func Submit(svc rfqsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rfq service unavailable"))
			return
		}

		var form rfqsvc.Form
		if err := validators.DecodeJSONBody(r, &form); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		submission, err := svc.Submit(r.Context(), middleware.CartSessionFromContext(r.Context()), form)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, submission)
	}
}

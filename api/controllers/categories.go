package controllers

import (
	"net/http"

	"github.com/angelmondragon/wholesale-storefront/api/responses"
	"github.com/angelmondragon/wholesale-storefront/api/validators"
	"github.com/angelmondragon/wholesale-storefront/internal/catalog"
	pkgerrors "github.com/angelmondragon/wholesale-storefront/pkg/errors"
	"github.com/angelmondragon/wholesale-storefront/pkg/logger"
)

// Categories lists store categories. enrich=1 recomputes live counts and
// drops sparse categories.
func Categories(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		page, err := validators.ParseQueryInt(r, "page", 1, 1, maxPage)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		perPage, err := validators.ParseQueryInt(r, "per_page", 50, 1, maxPerPage)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		parent, err := validators.ParseOptionalQueryInt(r, "parent", 0, 1<<30)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		hideEmpty, err := validators.ParseQueryBool(r, "hide_empty", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		enrich, err := validators.ParseQueryBool(r, "enrich", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		categories, err := svc.ListCategories(r.Context(), catalog.CategoryParams{
			Page:      page,
			PerPage:   perPage,
			Parent:    parent,
			HideEmpty: hideEmpty,
			Enrich:    enrich,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}

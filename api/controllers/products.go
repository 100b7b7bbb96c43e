package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/wholesale-storefront/api/responses"
	"github.com/angelmondragon/wholesale-storefront/api/validators"
	"github.com/angelmondragon/wholesale-storefront/internal/catalog"
	pkgerrors "github.com/angelmondragon/wholesale-storefront/pkg/errors"
	"github.com/angelmondragon/wholesale-storefront/pkg/logger"
)

const (
	maxPerPage     = 100
	maxPage        = 10000
	maxSearchChars = 120
)

// browseParams switch a listing into filtered mode.
var browseParams = []string{"sort", "categories", "min_price", "max_price", "min_moq", "max_moq"}

// Products serves single lookups by id or slug, a plain upstream page, or a
// filtered and sorted page when any browse parameter is present.
func Products(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		query := r.URL.Query()
		if raw := strings.TrimSpace(query.Get("id")); raw != "" {
			id, err := catalog.ParseProductID(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			product, err := svc.GetProduct(r.Context(), id)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, product)
			return
		}

		if slug := strings.TrimSpace(query.Get("slug")); slug != "" {
			product, err := svc.GetProductBySlug(r.Context(), slug)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, product)
			return
		}

		params, err := listParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if !wantsBrowse(r) {
			page, err := svc.ListProducts(r.Context(), params)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, page)
			return
		}

		input, err := browseInput(r, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Browse(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func listParams(r *http.Request) (catalog.ListParams, error) {
	page, err := validators.ParseQueryInt(r, "page", 1, 1, maxPage)
	if err != nil {
		return catalog.ListParams{}, err
	}
	perPage, err := validators.ParseQueryInt(r, "per_page", 0, 1, maxPerPage)
	if err != nil {
		return catalog.ListParams{}, err
	}
	query := r.URL.Query()
	return catalog.ListParams{
		Page:     page,
		PerPage:  perPage,
		Category: validators.SanitizeString(query.Get("category"), 64),
		Search:   validators.SanitizeString(query.Get("search"), maxSearchChars),
	}, nil
}

func wantsBrowse(r *http.Request) bool {
	query := r.URL.Query()
	for _, key := range browseParams {
		if strings.TrimSpace(query.Get(key)) != "" {
			return true
		}
	}
	return false
}

func browseInput(r *http.Request, params catalog.ListParams) (catalog.BrowseInput, error) {
	query := r.URL.Query()
	sortKey, err := catalog.ParseSortKey(query.Get("sort"))
	if err != nil {
		return catalog.BrowseInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sort").WithDetails(map[string]any{"field": "sort"})
	}

	filter := catalog.FilterState{}
	for _, name := range strings.Split(query.Get("categories"), ",") {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			filter.Categories = append(filter.Categories, trimmed)
		}
	}
	if filter.Price.Min, err = queryDecimal(r, "min_price"); err != nil {
		return catalog.BrowseInput{}, err
	}
	if filter.Price.Max, err = queryDecimal(r, "max_price"); err != nil {
		return catalog.BrowseInput{}, err
	}
	if filter.MOQ.Min, err = validators.ParseOptionalQueryInt(r, "min_moq", 0, 1<<30); err != nil {
		return catalog.BrowseInput{}, err
	}
	if filter.MOQ.Max, err = validators.ParseOptionalQueryInt(r, "max_moq", 0, 1<<30); err != nil {
		return catalog.BrowseInput{}, err
	}

	return catalog.BrowseInput{ListParams: params, Filter: filter, Sort: sortKey}, nil
}

func queryDecimal(r *http.Request, key string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil || value.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a non-negative amount").WithDetails(map[string]any{"field": key})
	}
	return &value, nil
}

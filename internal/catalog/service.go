package catalog

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	pkgerrors "github.com/angelmondragon/wholesale-storefront/pkg/errors"
	"github.com/angelmondragon/wholesale-storefront/pkg/logger"
	"github.com/angelmondragon/wholesale-storefront/pkg/woocommerce"
)

const (
	uncategorizedSlug        = "uncategorized"
	defaultEnrichConcurrency = 6
	defaultLowCountThreshold = 3
	defaultCategoriesPerPage = 50
)

// Store is the commerce backend surface the catalog reads.
type Store interface {
	ListProducts(ctx context.Context, params woocommerce.ListProductsParams) (*woocommerce.ProductPage, error)
	GetProduct(ctx context.Context, id int) (*woocommerce.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*woocommerce.Product, error)
	ListCategories(ctx context.Context, params woocommerce.ListCategoriesParams) (*woocommerce.CategoryPage, error)
	CountProducts(ctx context.Context, categoryID int) (int, error)
}

// Service exposes normalized catalog reads.
type Service interface {
	GetProduct(ctx context.Context, id int) (*Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*Product, error)
	ListProducts(ctx context.Context, params ListParams) (*ProductPage, error)
	Browse(ctx context.Context, input BrowseInput) (*BrowseResult, error)
	ListCategories(ctx context.Context, params CategoryParams) ([]Category, error)
}

type ServiceParams struct {
	Store             Store
	Logger            *logger.Logger
	DefaultPerPage    int
	EnrichConcurrency int
	LowCountThreshold int
}

type service struct {
	store             Store
	logg              *logger.Logger
	defaultPerPage    int
	enrichConcurrency int
	lowCountThreshold int
}

// ListParams selects one upstream page.
type ListParams struct {
	Page     int    `json:"page"`
	PerPage  int    `json:"per_page"`
	Category string `json:"category"`
	Search   string `json:"search"`
}

// BrowseInput is an upstream page request plus client-side filter and sort.
type BrowseInput struct {
	ListParams
	Filter FilterState
	Sort   SortKey
}

// BrowseResult carries the filtered page and untouched upstream totals.
type BrowseResult struct {
	Products   []Product  `json:"products"`
	Total      int        `json:"total"`
	TotalPages int        `json:"totalPages"`
	Page       int        `json:"page"`
	PerPage    int        `json:"perPage"`
	Pages      []PageItem `json:"pages"`
}

type CategoryParams struct {
	Page      int
	PerPage   int
	Parent    *int
	HideEmpty bool
	Enrich    bool
}

func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("catalog store required")
	}
	svc := &service{
		store:             params.Store,
		logg:              params.Logger,
		defaultPerPage:    params.DefaultPerPage,
		enrichConcurrency: params.EnrichConcurrency,
		lowCountThreshold: params.LowCountThreshold,
	}
	if svc.enrichConcurrency < 1 {
		svc.enrichConcurrency = defaultEnrichConcurrency
	}
	if svc.lowCountThreshold <= 0 {
		svc.lowCountThreshold = defaultLowCountThreshold
	}
	return svc, nil
}

func (s *service) GetProduct(ctx context.Context, id int) (*Product, error) {
	raw, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	product := TransformProduct(*raw)
	return &product, nil
}

func (s *service) GetProductBySlug(ctx context.Context, slug string) (*Product, error) {
	raw, err := s.store.GetProductBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	product := TransformProduct(*raw)
	return &product, nil
}

func (s *service) ListProducts(ctx context.Context, params ListParams) (*ProductPage, error) {
	page, perPage := s.normalizePage(params.Page, params.PerPage)
	raw, err := s.store.ListProducts(ctx, woocommerce.ListProductsParams{
		Page:     page,
		PerPage:  perPage,
		Category: params.Category,
		Search:   params.Search,
	})
	if err != nil {
		return nil, err
	}
	return &ProductPage{
		Products:   TransformProducts(raw.Products),
		Total:      raw.Total,
		TotalPages: raw.TotalPages,
		Page:       page,
		PerPage:    perPage,
	}, nil
}

// Browse filters and sorts within the fetched page only; totals are the
// store's and are never recomputed here.
func (s *service) Browse(ctx context.Context, input BrowseInput) (*BrowseResult, error) {
	page, err := s.ListProducts(ctx, input.ListParams)
	if err != nil {
		return nil, err
	}
	return &BrowseResult{
		Products:   Apply(page.Products, input.Filter, input.Sort),
		Total:      page.Total,
		TotalPages: page.TotalPages,
		Page:       page.Page,
		PerPage:    page.PerPage,
		Pages:      PageWindow(page.Page, page.TotalPages),
	}, nil
}

func (s *service) ListCategories(ctx context.Context, params CategoryParams) ([]Category, error) {
	perPage := params.PerPage
	if perPage < 1 {
		perPage = defaultCategoriesPerPage
	}
	raw, err := s.store.ListCategories(ctx, woocommerce.ListCategoriesParams{
		Page:      params.Page,
		PerPage:   perPage,
		Parent:    params.Parent,
		HideEmpty: params.HideEmpty,
	})
	if err != nil {
		return nil, err
	}

	categories := make([]Category, 0, len(raw.Categories))
	for _, c := range raw.Categories {
		categories = append(categories, TransformCategory(c))
	}
	if !params.Enrich {
		return categories, nil
	}
	return s.enrich(ctx, categories)
}

// enrich replaces each count with a live product count, then drops empty,
// uncategorized, and low-count categories without an image. A failed count
// keeps the store's value.
func (s *service) enrich(ctx context.Context, categories []Category) ([]Category, error) {
	counts := make([]int, len(categories))
	failures := make([]error, len(categories))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.enrichConcurrency)
	for i, c := range categories {
		g.Go(func() error {
			count, err := s.store.CountProducts(gctx, c.ID)
			if err != nil {
				failures[i] = fmt.Errorf("category %d: %w", c.ID, err)
				counts[i] = c.Count
				return nil
			}
			counts[i] = count
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "category enrichment interrupted")
	}

	if combined := multierr.Combine(failures...); combined != nil && s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"operation":    "catalog.enrich_categories",
			"failed_count": len(multierr.Errors(combined)),
			"errors":       combined.Error(),
		})
		s.logg.Warn(logCtx, "catalog.enrich_partial")
	}

	enriched := make([]Category, 0, len(categories))
	for i, c := range categories {
		c.Count = counts[i]
		if s.keepEnriched(c) {
			enriched = append(enriched, c)
		}
	}
	sort.SliceStable(enriched, func(i, j int) bool {
		return enriched[i].Count > enriched[j].Count
	})
	return enriched, nil
}

func (s *service) keepEnriched(c Category) bool {
	if c.Count <= 0 {
		return false
	}
	if strings.EqualFold(c.Slug, uncategorizedSlug) {
		return false
	}
	if c.Count < s.lowCountThreshold && c.Image == "" {
		return false
	}
	return true
}

func (s *service) normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = s.defaultPerPage
	}
	if perPage < 1 {
		perPage = 20
	}
	return page, perPage
}

// ParseProductID parses a numeric product id from a path or query value.
func ParseProductID(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "product id must be a positive integer")
	}
	return id, nil
}

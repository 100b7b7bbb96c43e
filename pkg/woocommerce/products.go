package woocommerce

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/wholesale-storefront/pkg/errors"
)

const (
	productListFields    = "id,name,slug,permalink,price,regular_price,sale_price,images,short_description,categories,stock_status,stock_quantity,average_rating,meta_data"
	defaultProductsPage  = 1
	defaultProductsLimit = 20
	publishedStatus      = "publish"
)

// ListProductsParams filters the published product listing. Zero values use
// the store defaults.
type ListProductsParams struct {
	Page     int
	PerPage  int
	Category string
	Search   string
}

// ListProducts returns one page of published products with the store's
// X-WP-Total and X-WP-TotalPages values.
func (c *Client) ListProducts(ctx context.Context, params ListProductsParams) (*ProductPage, error) {
	page := params.Page
	if page < 1 {
		page = defaultProductsPage
	}
	perPage := params.PerPage
	if perPage < 1 {
		perPage = defaultProductsLimit
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(perPage))
	query.Set("status", publishedStatus)
	query.Set("_fields", productListFields)
	if category := strings.TrimSpace(params.Category); category != "" {
		query.Set("category", category)
	}
	if search := strings.TrimSpace(params.Search); search != "" {
		query.Set("search", search)
	}

	var products []Product
	headers, err := c.do(ctx, call{
		operation: "list_products",
		method:    http.MethodGet,
		path:      "/products",
		query:     query,
	}, &products)
	if err != nil {
		return nil, err
	}

	return &ProductPage{
		Products:   products,
		Total:      headerInt(headers, headerTotal),
		TotalPages: headerInt(headers, headerTotalPages),
	}, nil
}

// GetProduct fetches one product by id.
func (c *Client) GetProduct(ctx context.Context, id int) (*Product, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id must be positive")
	}
	var product Product
	if _, err := c.do(ctx, call{
		operation: "get_product",
		method:    http.MethodGet,
		path:      "/products/" + strconv.Itoa(id),
	}, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProductBySlug returns the first product matching slug, or nil when the
// store has none.
func (c *Client) GetProductBySlug(ctx context.Context, slug string) (*Product, error) {
	trimmed := strings.TrimSpace(slug)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product slug is required")
	}
	query := url.Values{}
	query.Set("slug", trimmed)

	var products []Product
	if _, err := c.do(ctx, call{
		operation: "get_product_by_slug",
		method:    http.MethodGet,
		path:      "/products",
		query:     query,
	}, &products); err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, nil
	}
	return &products[0], nil
}

// CountProducts returns the live number of published products in a category.
func (c *Client) CountProducts(ctx context.Context, categoryID int) (int, error) {
	query := url.Values{}
	query.Set("category", strconv.Itoa(categoryID))
	query.Set("per_page", "1")
	query.Set("status", publishedStatus)
	query.Set("_fields", "id")

	var discard []struct {
		ID int `json:"id"`
	}
	headers, err := c.do(ctx, call{
		operation: "count_products",
		method:    http.MethodGet,
		path:      "/products",
		query:     query,
	}, &discard)
	if err != nil {
		return 0, err
	}
	return headerInt(headers, headerTotal), nil
}

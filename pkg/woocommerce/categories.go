package woocommerce

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

const (
	categoryListFields     = "id,name,slug,parent,description,image,count"
	defaultCategoriesLimit = 50
)

type ListCategoriesParams struct {
	Page      int
	PerPage   int
	Parent    *int
	HideEmpty bool
}

// ListCategories returns one page of product categories.
func (c *Client) ListCategories(ctx context.Context, params ListCategoriesParams) (*CategoryPage, error) {
	page := params.Page
	if page < 1 {
		page = 1
	}
	perPage := params.PerPage
	if perPage < 1 {
		perPage = defaultCategoriesLimit
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(perPage))
	query.Set("_fields", categoryListFields)
	if params.HideEmpty {
		query.Set("hide_empty", "1")
	} else {
		query.Set("hide_empty", "0")
	}
	if params.Parent != nil {
		query.Set("parent", strconv.Itoa(*params.Parent))
	}

	var categories []Category
	headers, err := c.do(ctx, call{
		operation: "list_categories",
		method:    http.MethodGet,
		path:      "/products/categories",
		query:     query,
	}, &categories)
	if err != nil {
		return nil, err
	}
	return &CategoryPage{
		Categories: categories,
		Total:      headerInt(headers, headerTotal),
		TotalPages: headerInt(headers, headerTotalPages),
	}, nil
}

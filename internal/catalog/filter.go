package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// SortKey orders a filtered page.
type SortKey string

const (
	SortRelevance SortKey = "relevance"
	SortPriceAsc  SortKey = "price-low"
	SortPriceDesc SortKey = "price-high"
	SortMOQAsc    SortKey = "moq-low"
	SortMOQDesc   SortKey = "moq-high"
	SortRating    SortKey = "rating"
)

// sortAliases keeps the asc/desc spellings working.
var sortAliases = map[string]SortKey{
	"price-asc":  SortPriceAsc,
	"price-desc": SortPriceDesc,
	"moq-asc":    SortMOQAsc,
	"moq-desc":   SortMOQDesc,
}

var validSortKeys = []SortKey{
	SortRelevance,
	SortPriceAsc,
	SortPriceDesc,
	SortMOQAsc,
	SortMOQDesc,
	SortRating,
}

// ParseSortKey maps raw input to a SortKey. Empty input means relevance.
func ParseSortKey(value string) (SortKey, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return SortRelevance, nil
	}
	for _, key := range validSortKeys {
		if string(key) == trimmed {
			return key, nil
		}
	}
	if key, ok := sortAliases[trimmed]; ok {
		return key, nil
	}
	return "", fmt.Errorf("invalid sort key %q", value)
}

// Matches reports whether p passes every active filter.
func (f FilterState) Matches(p Product) bool {
	if len(f.Categories) > 0 && !containsString(f.Categories, p.Category) {
		return false
	}
	return f.Price.Contains(p.SinglePrice) && f.MOQ.Contains(p.MOQ)
}

// Apply filters then sorts one page. The input slice is left untouched and
// equal keys keep their upstream order.
func Apply(products []Product, filter FilterState, key SortKey) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if filter.Matches(p) {
			out = append(out, p)
		}
	}

	less := lessFor(key)
	if less != nil {
		sort.SliceStable(out, func(i, j int) bool {
			return less(out[i], out[j])
		})
	}
	return out
}

func lessFor(key SortKey) func(a, b Product) bool {
	switch key {
	case SortPriceAsc:
		return func(a, b Product) bool { return a.SinglePrice.LessThan(b.SinglePrice) }
	case SortPriceDesc:
		return func(a, b Product) bool { return a.SinglePrice.GreaterThan(b.SinglePrice) }
	case SortMOQAsc:
		return func(a, b Product) bool { return a.MOQ < b.MOQ }
	case SortMOQDesc:
		return func(a, b Product) bool { return a.MOQ > b.MOQ }
	case SortRating:
		return func(a, b Product) bool { return ratingOf(a) > ratingOf(b) }
	default:
		return nil
	}
}

func ratingOf(p Product) float64 {
	if p.Rating == nil {
		return 0
	}
	return *p.Rating
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

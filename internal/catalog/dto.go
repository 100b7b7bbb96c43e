package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/wholesale-storefront/internal/pricing"
)

// PlaceholderImage is used when the store returns no product images.
const PlaceholderImage = "/placeholder.svg"

const (
	DefaultMOQ          = 1
	DefaultLeadTimeDays = 14
	DefaultShipsFrom    = "China"
	UncategorizedLabel  = "Uncategorized"
)

// Product is the storefront's normalized product snapshot. BulkTiers is
// always sorted ascending by MinQty.
type Product struct {
	ID            int             `json:"id"`
	Slug          string          `json:"slug"`
	Title         string          `json:"title"`
	Subtitle      string          `json:"subtitle"`
	Description   string          `json:"description"`
	Images        []string        `json:"images"`
	SinglePrice   decimal.Decimal `json:"singlePrice"`
	BulkTiers     []pricing.Tier  `json:"bulkTiers"`
	MOQ           int             `json:"moq"`
	Category      string          `json:"category"`
	CategoryID    string          `json:"categoryId"`
	Tags          []string        `json:"tags"`
	Rating        *float64        `json:"rating,omitempty"`
	ShipsFrom     string          `json:"shipsFrom"`
	LeadTimeDays  int             `json:"leadTimeDays"`
	StockStatus   string          `json:"stockStatus,omitempty"`
	StockQuantity *int            `json:"stockQuantity,omitempty"`
	Permalink     string          `json:"permalink,omitempty"`
}

// PriceSchedule exposes the fields the pricing calculator needs.
func (p Product) PriceSchedule() pricing.Schedule {
	return pricing.Schedule{
		SinglePrice: p.SinglePrice,
		MOQ:         p.MOQ,
		Tiers:       p.BulkTiers,
	}
}

// Category is a product category, optionally with a recomputed live count.
type Category struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Parent      int    `json:"parent"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	Count       int    `json:"count"`
}

// ProductPage is a page of products with the upstream totals passed through.
type ProductPage struct {
	Products   []Product `json:"products"`
	Total      int       `json:"total"`
	TotalPages int       `json:"totalPages"`
	Page       int       `json:"page"`
	PerPage    int       `json:"perPage"`
}

// PriceRange is a closed price interval. A nil bound leaves that side open.
type PriceRange struct {
	Min *decimal.Decimal `json:"min,omitempty"`
	Max *decimal.Decimal `json:"max,omitempty"`
}

// Contains reports whether price lies within the range, bounds included.
func (r PriceRange) Contains(price decimal.Decimal) bool {
	if r.Min != nil && price.LessThan(*r.Min) {
		return false
	}
	if r.Max != nil && price.GreaterThan(*r.Max) {
		return false
	}
	return true
}

// QuantityRange is a closed MOQ interval. A nil bound leaves that side open.
type QuantityRange struct {
	Min *int `json:"min,omitempty"`
	Max *int `json:"max,omitempty"`
}

func (r QuantityRange) Contains(qty int) bool {
	if r.Min != nil && qty < *r.Min {
		return false
	}
	if r.Max != nil && qty > *r.Max {
		return false
	}
	return true
}

// FilterState is the client-side filter applied to a result page.
type FilterState struct {
	Categories []string      `json:"categories"`
	Price      PriceRange    `json:"price"`
	MOQ        QuantityRange `json:"moq"`
}

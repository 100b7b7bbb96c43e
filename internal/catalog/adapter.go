package catalog

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/wholesale-storefront/internal/pricing"
	"github.com/angelmondragon/wholesale-storefront/pkg/woocommerce"
)

// metaIndex maps meta_data keys to values. Later duplicates overwrite earlier ones.
type metaIndex map[string]any

func indexMeta(entries []woocommerce.MetaData) metaIndex {
	idx := make(metaIndex, len(entries))
	for _, entry := range entries {
		idx[entry.Key] = entry.Value
	}
	return idx
}

// metaRule resolves one product field from meta_data. The first alias whose
// value apply accepts wins; otherwise fallback sets the default.
type metaRule struct {
	field    string
	aliases  []string
	apply    func(p *Product, value any) bool
	fallback func(p *Product, raw woocommerce.Product)
}

func (r metaRule) resolve(p *Product, idx metaIndex, raw woocommerce.Product) {
	for _, alias := range r.aliases {
		value, ok := idx[alias]
		if ok && r.apply(p, value) {
			return
		}
	}
	r.fallback(p, raw)
}

// metaRules is applied in order. Malformed values never fail a transform.
var metaRules = []metaRule{
	{
		field:   "moq",
		aliases: []string{"moq", "_moq", "minimum_order_quantity"},
		apply: func(p *Product, value any) bool {
			n, ok := parseInt(value)
			if !ok || n < 1 {
				return false
			}
			p.MOQ = n
			return true
		},
		fallback: func(p *Product, _ woocommerce.Product) { p.MOQ = DefaultMOQ },
	},
	{
		field:   "leadTimeDays",
		aliases: []string{"lead_time_days", "_lead_time_days", "leadTimeDays"},
		apply: func(p *Product, value any) bool {
			n, ok := parseInt(value)
			if !ok || n < 1 {
				return false
			}
			p.LeadTimeDays = n
			return true
		},
		fallback: func(p *Product, _ woocommerce.Product) { p.LeadTimeDays = DefaultLeadTimeDays },
	},
	{
		field:   "shipsFrom",
		aliases: []string{"ships_from", "_ships_from"},
		apply: func(p *Product, value any) bool {
			s, ok := parseString(value)
			if ok {
				p.ShipsFrom = s
			}
			return ok
		},
		fallback: func(p *Product, _ woocommerce.Product) { p.ShipsFrom = DefaultShipsFrom },
	},
	{
		field:   "subtitle",
		aliases: []string{"subtitle", "_subtitle"},
		apply: func(p *Product, value any) bool {
			s, ok := parseString(value)
			if ok {
				p.Subtitle = s
			}
			return ok
		},
		fallback: func(p *Product, raw woocommerce.Product) { p.Subtitle = raw.ShortDescription },
	},
	{
		field:   "bulkTiers",
		aliases: []string{"bulk_tiers", "_bulk_tiers", "bulkTiers"},
		apply: func(p *Product, value any) bool {
			tiers, ok := parseTiers(value)
			if ok {
				p.BulkTiers = tiers
			}
			return ok
		},
		fallback: func(p *Product, _ woocommerce.Product) { p.BulkTiers = []pricing.Tier{} },
	},
}

var (
	tierMinQtyKeys    = []string{"minQty", "min_qty", "quantity"}
	tierUnitPriceKeys = []string{"unitPrice", "unit_price", "price"}
)

// TransformProduct maps a store product into the storefront shape.
func TransformProduct(raw woocommerce.Product) Product {
	p := Product{
		ID:            raw.ID,
		Slug:          raw.Slug,
		Title:         raw.Name,
		Description:   raw.Description,
		SinglePrice:   singlePrice(raw),
		Images:        imageSources(raw.Images),
		Category:      UncategorizedLabel,
		Tags:          []string{},
		Rating:        rating(raw.AverageRating),
		StockStatus:   raw.StockStatus,
		StockQuantity: raw.StockQuantity,
		Permalink:     raw.Permalink,
	}
	if p.Description == "" {
		p.Description = raw.ShortDescription
	}

	if len(raw.Categories) > 0 {
		first := raw.Categories[0]
		if first.Name != "" {
			p.Category = first.Name
		}
		p.CategoryID = strconv.Itoa(first.ID)
		for _, extra := range raw.Categories[1:] {
			p.Tags = append(p.Tags, extra.Name)
		}
	}

	idx := indexMeta(raw.MetaData)
	for _, rule := range metaRules {
		rule.resolve(&p, idx, raw)
	}
	return p
}

// TransformProducts maps every store product in order.
func TransformProducts(raw []woocommerce.Product) []Product {
	products := make([]Product, 0, len(raw))
	for _, item := range raw {
		products = append(products, TransformProduct(item))
	}
	return products
}

// TransformCategory maps a store category, keeping only the image URL.
func TransformCategory(raw woocommerce.Category) Category {
	c := Category{
		ID:          raw.ID,
		Name:        raw.Name,
		Slug:        raw.Slug,
		Parent:      raw.Parent,
		Description: raw.Description,
		Count:       raw.Count,
	}
	if raw.Image != nil {
		c.Image = raw.Image.Src
	}
	return c
}

func singlePrice(raw woocommerce.Product) decimal.Decimal {
	for _, candidate := range []woocommerce.FlexString{raw.Price, raw.RegularPrice} {
		if value, ok := parseDecimal(candidate.String()); ok && !value.IsNegative() {
			return value
		}
	}
	return decimal.Zero
}

func imageSources(images []woocommerce.Image) []string {
	sources := make([]string, 0, len(images))
	for _, img := range images {
		if src := strings.TrimSpace(img.Src); src != "" {
			sources = append(sources, src)
		}
	}
	if len(sources) == 0 {
		return []string{PlaceholderImage}
	}
	return sources
}

// rating is nil for unrated products, which the store reports as 0.
func rating(value woocommerce.FlexString) *float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value.String()), 64)
	if err != nil || parsed <= 0 || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return nil
	}
	return &parsed
}

// parseTiers accepts a JSON-encoded string or an already decoded list.
// Entries without a positive quantity and price are dropped.
func parseTiers(value any) ([]pricing.Tier, bool) {
	var entries []any
	switch v := value.(type) {
	case string:
		if err := json.Unmarshal([]byte(strings.TrimSpace(v)), &entries); err != nil {
			return nil, false
		}
	case []any:
		entries = v
	default:
		return nil, false
	}

	tiers := make([]pricing.Tier, 0, len(entries))
	for _, entry := range entries {
		fields, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		minQty, ok := firstPositiveInt(fields, tierMinQtyKeys)
		if !ok {
			continue
		}
		unitPrice, ok := firstPositiveDecimal(fields, tierUnitPriceKeys)
		if !ok {
			continue
		}
		tiers = append(tiers, pricing.Tier{MinQty: minQty, UnitPrice: unitPrice})
	}
	sort.SliceStable(tiers, func(i, j int) bool {
		return tiers[i].MinQty < tiers[j].MinQty
	})
	return tiers, true
}

func firstPositiveInt(fields map[string]any, keys []string) (int, bool) {
	for _, key := range keys {
		value, present := fields[key]
		if !present {
			continue
		}
		if n, ok := parseInt(value); ok && n > 0 {
			return n, true
		}
	}
	return 0, false
}

func firstPositiveDecimal(fields map[string]any, keys []string) (decimal.Decimal, bool) {
	for _, key := range keys {
		value, present := fields[key]
		if !present {
			continue
		}
		var d decimal.Decimal
		var ok bool
		switch v := value.(type) {
		case string:
			d, ok = parseDecimal(v)
		case float64:
			d, ok = decimal.NewFromFloat(v), !math.IsNaN(v) && !math.IsInf(v, 0)
		}
		if ok && d.IsPositive() {
			return d, true
		}
	}
	return decimal.Zero, false
}

// parseInt reads whole numbers from strings or JSON numbers, truncating
// fractional values.
func parseInt(value any) (int, bool) {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return int(v), true
	case string:
		trimmed := strings.TrimSpace(v)
		if n, err := strconv.Atoi(trimmed); err == nil {
			return n, true
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return int(f), true
	default:
		return 0, false
	}
}

func parseString(value any) (string, bool) {
	s, ok := value.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func parseDecimal(value string) (decimal.Decimal, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

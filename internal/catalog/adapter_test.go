package catalog

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/wholesale-storefront/pkg/woocommerce"
)

func meta(key string, value any) woocommerce.MetaData {
	return woocommerce.MetaData{Key: key, Value: value}
}

func TestTransformProductDefaults(t *testing.T) {
	p := TransformProduct(woocommerce.Product{ID: 9, Name: "Bare", Slug: "bare"})

	if p.MOQ != DefaultMOQ || p.LeadTimeDays != DefaultLeadTimeDays || p.ShipsFrom != DefaultShipsFrom {
		t.Fatalf("unexpected defaults %+v", p)
	}
	if !p.SinglePrice.IsZero() {
		t.Fatalf("expected zero price, got %s", p.SinglePrice)
	}
	if len(p.Images) != 1 || p.Images[0] != PlaceholderImage {
		t.Fatalf("expected placeholder image, got %v", p.Images)
	}
	if p.Category != UncategorizedLabel || p.CategoryID != "" {
		t.Fatalf("unexpected category %q/%q", p.Category, p.CategoryID)
	}
	if p.BulkTiers == nil || len(p.BulkTiers) != 0 || p.Tags == nil {
		t.Fatalf("expected empty non-nil tiers and tags")
	}
	if p.Rating != nil {
		t.Fatalf("expected nil rating")
	}
}

func TestTransformProductReadsMetadataAliases(t *testing.T) {
	raw := woocommerce.Product{
		ID:               7,
		Name:             "LED Panel",
		Slug:             "led-panel",
		Price:            "",
		RegularPrice:     "8.99",
		ShortDescription: "<p>Bright</p>",
		AverageRating:    "4.50",
		Images:           []woocommerce.Image{{Src: "https://img/1.jpg"}, {Src: " "}},
		Categories: []woocommerce.CategoryRef{
			{ID: 15, Name: "Lighting"},
			{ID: 16, Name: "Indoor"},
			{ID: 17, Name: "Commercial"},
		},
		MetaData: []woocommerce.MetaData{
			meta("_moq", "20"),
			meta("moq", "oops"),
			meta("minimum_order_quantity", float64(30)),
			meta("_lead_time_days", "21"),
			meta("_ships_from", "Vietnam"),
			meta("_subtitle", "Commercial grade"),
			meta("bulkTiers", []any{
				map[string]any{"min_qty": "200", "unit_price": "5.20"},
				map[string]any{"quantity": float64(50), "price": 6.5},
			}),
		},
	}

	p := TransformProduct(raw)

	if p.MOQ != 20 {
		t.Fatalf("expected moq from _moq after invalid moq, got %d", p.MOQ)
	}
	if p.LeadTimeDays != 21 || p.ShipsFrom != "Vietnam" || p.Subtitle != "Commercial grade" {
		t.Fatalf("unexpected meta fields %+v", p)
	}
	if !p.SinglePrice.Equal(decimal.RequireFromString("8.99")) {
		t.Fatalf("expected regular price fallback, got %s", p.SinglePrice)
	}
	if len(p.Images) != 1 || p.Images[0] != "https://img/1.jpg" {
		t.Fatalf("unexpected images %v", p.Images)
	}
	if p.Category != "Lighting" || p.CategoryID != "15" {
		t.Fatalf("unexpected category %q/%q", p.Category, p.CategoryID)
	}
	if len(p.Tags) != 2 || p.Tags[0] != "Indoor" || p.Tags[1] != "Commercial" {
		t.Fatalf("unexpected tags %v", p.Tags)
	}
	if p.Rating == nil || *p.Rating != 4.5 {
		t.Fatalf("unexpected rating %v", p.Rating)
	}
	if p.Description != "<p>Bright</p>" {
		t.Fatalf("expected short description fallback, got %q", p.Description)
	}
	if len(p.BulkTiers) != 2 || p.BulkTiers[0].MinQty != 50 || p.BulkTiers[1].MinQty != 200 {
		t.Fatalf("expected sorted tiers, got %+v", p.BulkTiers)
	}
	if !p.BulkTiers[0].UnitPrice.Equal(decimal.RequireFromString("6.5")) {
		t.Fatalf("unexpected tier price %s", p.BulkTiers[0].UnitPrice)
	}
}

func TestTransformProductLastDuplicateMetaWins(t *testing.T) {
	p := TransformProduct(woocommerce.Product{MetaData: []woocommerce.MetaData{
		meta("moq", "10"),
		meta("moq", "40"),
	}})
	if p.MOQ != 40 {
		t.Fatalf("expected last duplicate to win, got %d", p.MOQ)
	}
}

func TestParseTiersDropsInvalidEntries(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  []int
	}{
		{"invalid unit price string", `[{"minQty":10,"unitPrice":"abc"}]`, []int{}},
		{"json string sorted", `[{"minQty":500,"unitPrice":"4.80"},{"minQty":50,"unitPrice":"6.50"},{"minQty":200,"unitPrice":5.2}]`, []int{50, 200, 500}},
		{"zero and negative dropped", []any{
			map[string]any{"minQty": float64(0), "unitPrice": "1"},
			map[string]any{"minQty": float64(5), "unitPrice": "-1"},
			map[string]any{"minQty": float64(5), "unitPrice": "2"},
		}, []int{5}},
		{"non object entries skipped", []any{"x", float64(3), nil}, []int{}},
	}
	for _, tt := range tests {
		tiers, ok := parseTiers(tt.value)
		if !ok {
			t.Fatalf("%s: expected parse to succeed", tt.name)
		}
		if len(tiers) != len(tt.want) {
			t.Fatalf("%s: expected %d tiers, got %+v", tt.name, len(tt.want), tiers)
		}
		for i, minQty := range tt.want {
			if tiers[i].MinQty != minQty {
				t.Fatalf("%s: tier %d expected %d got %d", tt.name, i, minQty, tiers[i].MinQty)
			}
		}
	}
}

func TestTransformProductMalformedTiersNeverFail(t *testing.T) {
	for _, value := range []any{"not json", float64(4), map[string]any{"minQty": 1}, `{"minQty":1}`} {
		p := TransformProduct(woocommerce.Product{MetaData: []woocommerce.MetaData{meta("bulk_tiers", value)}})
		if p.BulkTiers == nil || len(p.BulkTiers) != 0 {
			t.Fatalf("value %v: expected empty tiers, got %+v", value, p.BulkTiers)
		}
	}
}

func TestTransformProductRejectsNonPositiveMOQ(t *testing.T) {
	p := TransformProduct(woocommerce.Product{MetaData: []woocommerce.MetaData{meta("moq", "0")}})
	if p.MOQ != DefaultMOQ {
		t.Fatalf("expected default moq, got %d", p.MOQ)
	}
}

func TestMetaRulesCoverEveryField(t *testing.T) {
	seen := map[string]bool{}
	for _, rule := range metaRules {
		if len(rule.aliases) == 0 || rule.apply == nil || rule.fallback == nil {
			t.Fatalf("rule %q is incomplete", rule.field)
		}
		seen[rule.field] = true
	}
	for _, field := range []string{"moq", "leadTimeDays", "shipsFrom", "subtitle", "bulkTiers"} {
		if !seen[field] {
			t.Fatalf("missing rule for %s", field)
		}
	}
}

func TestTransformCategory(t *testing.T) {
	c := TransformCategory(woocommerce.Category{ID: 3, Name: "Tools", Slug: "tools", Count: 8, Image: &woocommerce.Image{Src: "https://img/t.png"}})
	if c.Image != "https://img/t.png" || c.Count != 8 {
		t.Fatalf("unexpected category %+v", c)
	}
}

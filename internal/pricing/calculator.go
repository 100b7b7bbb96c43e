// Package pricing computes unit and line prices from a product's tiered
// price schedule. Every function is pure and uses exact decimal arithmetic.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/wholesale-storefront/pkg/enums"
)

// Tier is a bulk price break: UnitPrice applies from MinQty units upward.
type Tier struct {
	MinQty    int             `json:"minQty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// Schedule is the slice of a product the calculator needs.
type Schedule struct {
	SinglePrice decimal.Decimal
	MOQ         int
	Tiers       []Tier
}

// Quote is the priced result for a quantity and mode.
// Savings is nil unless a bulk tier applied.
type Quote struct {
	UnitPrice  decimal.Decimal  `json:"unitPrice"`
	TotalPrice decimal.Decimal  `json:"totalPrice"`
	Savings    *decimal.Decimal `json:"savings,omitempty"`
	Tier       *Tier            `json:"tier,omitempty"`
}

// ApplicableTier returns the qualifying tier with the largest MinQty.
// Quantities below the MOQ never qualify. Tier order is not assumed.
func ApplicableTier(s Schedule, quantity int) (Tier, bool) {
	if quantity < s.MOQ {
		return Tier{}, false
	}
	var (
		best  Tier
		found bool
	)
	for _, tier := range s.Tiers {
		if tier.MinQty > quantity {
			continue
		}
		if !found || tier.MinQty > best.MinQty {
			best = tier
			found = true
		}
	}
	return best, found
}

// Calculate prices quantity units under mode. Bulk mode falls back to single
// pricing when no tier applies.
func Calculate(s Schedule, quantity int, mode enums.PriceMode) Quote {
	qty := decimal.NewFromInt(int64(quantity))
	single := Quote{
		UnitPrice:  s.SinglePrice,
		TotalPrice: s.SinglePrice.Mul(qty),
	}
	if mode != enums.PriceModeBulk {
		return single
	}

	tier, ok := ApplicableTier(s, quantity)
	if !ok {
		return single
	}

	total := tier.UnitPrice.Mul(qty)
	savings := single.TotalPrice.Sub(total)
	return Quote{
		UnitPrice:  tier.UnitPrice,
		TotalPrice: total,
		Savings:    &savings,
		Tier:       &tier,
	}
}

// OptimalMode suggests bulk only when the quantity meets the MOQ and the
// qualifying tier is strictly cheaper than the single price.
func OptimalMode(s Schedule, quantity int) enums.PriceMode {
	if quantity >= s.MOQ {
		if tier, ok := ApplicableTier(s, quantity); ok && tier.UnitPrice.LessThan(s.SinglePrice) {
			return enums.PriceModeBulk
		}
	}
	return enums.PriceModeSingle
}

// MOQShortfall returns how many more units are needed before bulk pricing
// can apply. It reports false for single mode or when the MOQ is met.
func MOQShortfall(s Schedule, quantity int, mode enums.PriceMode) (int, bool) {
	if mode != enums.PriceModeBulk || quantity >= s.MOQ {
		return 0, false
	}
	return s.MOQ - quantity, true
}

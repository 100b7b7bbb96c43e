package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/wholesale-storefront/internal/cart"
	"github.com/angelmondragon/wholesale-storefront/pkg/config"
)

// Rates are the placeholder shipping and tax figures applied at checkout.
type Rates struct {
	Shipping decimal.Decimal
	TaxRate  decimal.Decimal
}

// DefaultRates is a flat 150 shipping and 8% tax.
func DefaultRates() Rates {
	return Rates{
		Shipping: decimal.NewFromInt(150),
		TaxRate:  decimal.RequireFromString("0.08"),
	}
}

// RatesFromConfig parses the configured placeholders.
func RatesFromConfig(cfg config.CheckoutConfig) (Rates, error) {
	shipping, err := cfg.Shipping()
	if err != nil {
		return Rates{}, err
	}
	tax, err := cfg.Tax()
	if err != nil {
		return Rates{}, err
	}
	return Rates{Shipping: shipping, TaxRate: tax}, nil
}

// Totals is the full order breakdown shown before payment.
type Totals struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	Savings    decimal.Decimal `json:"savings"`
	Shipping   decimal.Decimal `json:"shipping"`
	Tax        decimal.Decimal `json:"tax"`
	Total      decimal.Decimal `json:"total"`
	TotalItems int             `json:"totalItems"`
}

// ComputeTotals adds shipping and tax on top of the priced cart. Tax is
// charged on the subtotal only and rounded to cents.
func ComputeTotals(summary cart.Summary, rates Rates) Totals {
	tax := summary.Subtotal.Mul(rates.TaxRate).Round(2)
	return Totals{
		Subtotal:   summary.Subtotal,
		Savings:    summary.Savings,
		Shipping:   rates.Shipping,
		Tax:        tax,
		Total:      summary.Subtotal.Add(rates.Shipping).Add(tax),
		TotalItems: summary.TotalItems,
	}
}

package cart

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/wholesale-storefront/internal/pricing"
	"github.com/angelmondragon/wholesale-storefront/pkg/enums"
)

// PricedLine is a line with its computed quote and buying hints.
type PricedLine struct {
	Line
	Quote       pricing.Quote   `json:"quote"`
	OptimalMode enums.PriceMode `json:"optimalMode"`
	MOQHint     *MOQHint        `json:"moqHint,omitempty"`
}

// MOQHint tells the buyer how far a bulk line is from its MOQ.
type MOQHint struct {
	MOQ       int `json:"moq"`
	Remaining int `json:"remaining"`
}

// Summary is the priced view of a cart.
type Summary struct {
	Lines      []PricedLine    `json:"lines"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Savings    decimal.Decimal `json:"savings"`
	TotalItems int             `json:"totalItems"`
}

// Price quotes a line under its own mode.
func (l Line) Price() pricing.Quote {
	return pricing.Calculate(l.Product.PriceSchedule(), l.Quantity, l.PriceMode)
}

// Summarize prices every line. Subtotal and savings are exact sums.
func Summarize(lines []Line) Summary {
	summary := Summary{
		Lines:    make([]PricedLine, 0, len(lines)),
		Subtotal: decimal.Zero,
		Savings:  decimal.Zero,
	}
	for _, line := range lines {
		schedule := line.Product.PriceSchedule()
		priced := PricedLine{
			Line:        line,
			Quote:       line.Price(),
			OptimalMode: pricing.OptimalMode(schedule, line.Quantity),
		}
		if remaining, ok := pricing.MOQShortfall(schedule, line.Quantity, line.PriceMode); ok {
			priced.MOQHint = &MOQHint{MOQ: schedule.MOQ, Remaining: remaining}
		}
		summary.Subtotal = summary.Subtotal.Add(priced.Quote.TotalPrice)
		if priced.Quote.Savings != nil {
			summary.Savings = summary.Savings.Add(*priced.Quote.Savings)
		}
		summary.TotalItems += line.Quantity
		summary.Lines = append(summary.Lines, priced)
	}
	return summary
}

package enums

import (
	"fmt"
	"strings"
)

// Currency represents the settlement currencies accepted at checkout.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyCNY Currency = "CNY"
	CurrencyHKD Currency = "HKD"
	CurrencyAUD Currency = "AUD"
)

var validCurrencies = []Currency{
	CurrencyUSD,
	CurrencyEUR,
	CurrencyGBP,
	CurrencyCNY,
	CurrencyHKD,
	CurrencyAUD,
}

var currencySymbols = map[Currency]string{
	CurrencyUSD: "$",
	CurrencyEUR: "€",
	CurrencyGBP: "£",
	CurrencyCNY: "CN¥",
	CurrencyHKD: "HK$",
	CurrencyAUD: "A$",
}

// String implements fmt.Stringer.
func (c Currency) String() string {
	return string(c)
}

// Symbol returns the en-US display symbol for the currency.
func (c Currency) Symbol() string {
	if symbol, ok := currencySymbols[c]; ok {
		return symbol
	}
	return string(c) + " "
}

// IsValid reports whether the currency is recognized.
func (c Currency) IsValid() bool {
	for _, candidate := range validCurrencies {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCurrency converts a raw string into a Currency. Matching ignores case.
func ParseCurrency(value string) (Currency, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range validCurrencies {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid currency %q", value)
}

package enums

import "fmt"

// PriceMode selects single-unit or bulk-tier pricing for a cart line.
type PriceMode string

const (
	PriceModeSingle PriceMode = "single"
	PriceModeBulk   PriceMode = "bulk"
)

var validPriceModes = []PriceMode{
	PriceModeSingle,
	PriceModeBulk,
}

// String implements fmt.Stringer.
func (p PriceMode) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PriceMode.
func (p PriceMode) IsValid() bool {
	for _, candidate := range validPriceModes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePriceMode converts raw input into a PriceMode.
func ParsePriceMode(value string) (PriceMode, error) {
	for _, candidate := range validPriceModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid price mode %q", value)
}

package enums

import (
	"fmt"
	"strings"
)

// Incoterm captures the trade term splitting freight and risk between buyer and seller.
type Incoterm string

const (
	IncotermEXW Incoterm = "EXW"
	IncotermFOB Incoterm = "FOB"
	IncotermCIF Incoterm = "CIF"
	IncotermDDP Incoterm = "DDP"
)

var validIncoterms = []Incoterm{
	IncotermEXW,
	IncotermFOB,
	IncotermCIF,
	IncotermDDP,
}

// String implements fmt.Stringer.
func (i Incoterm) String() string {
	return string(i)
}

// IsValid reports whether the value is a known Incoterm.
func (i Incoterm) IsValid() bool {
	for _, candidate := range validIncoterms {
		if candidate == i {
			return true
		}
	}
	return false
}

// Label returns the human readable description shown next to the code.
func (i Incoterm) Label() string {
	switch i {
	case IncotermEXW:
		return "EXW - Ex Works"
	case IncotermFOB:
		return "FOB - Free on Board"
	case IncotermCIF:
		return "CIF - Cost, Insurance & Freight"
	case IncotermDDP:
		return "DDP - Delivered Duty Paid"
	}
	return string(i)
}

// ParseIncoterm converts raw input into an Incoterm. Matching ignores case.
func ParseIncoterm(value string) (Incoterm, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range validIncoterms {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid incoterm %q", value)
}

package rfq

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/wholesale-storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/wholesale-storefront/pkg/errors"
)

const (
	maxCompanyLength = 200
	maxCountryLength = 100
	maxTextLength    = 4000
)

// Form is the buyer-supplied request-for-quote payload.
type Form struct {
	CompanyName            string           `json:"company_name"`
	Country                string           `json:"country"`
	TargetQuantity         int              `json:"target_quantity"`
	Incoterm               enums.Incoterm   `json:"incoterm"`
	TargetUnitPrice        *decimal.Decimal `json:"target_unit_price,omitempty"`
	RequiredCertifications string           `json:"required_certifications"`
	Notes                  string           `json:"notes"`
	ProductID              *int             `json:"product_id,omitempty"`
}

// Normalize trims free text and canonicalizes the incoterm casing.
func (f Form) Normalize() Form {
	f.CompanyName = strings.TrimSpace(f.CompanyName)
	f.Country = strings.TrimSpace(f.Country)
	f.RequiredCertifications = strings.TrimSpace(f.RequiredCertifications)
	f.Notes = strings.TrimSpace(f.Notes)
	if term, err := enums.ParseIncoterm(string(f.Incoterm)); err == nil {
		f.Incoterm = term
	}
	return f
}

// Validate reports every invalid field at once.
func (f Form) Validate() error {
	details := map[string]string{}

	switch {
	case f.CompanyName == "":
		details["company_name"] = "is required"
	case len(f.CompanyName) > maxCompanyLength:
		details["company_name"] = "is too long"
	}
	switch {
	case f.Country == "":
		details["country"] = "is required"
	case len(f.Country) > maxCountryLength:
		details["country"] = "is too long"
	}
	if f.TargetQuantity < 1 {
		details["target_quantity"] = "must be at least 1"
	}
	if !f.Incoterm.IsValid() {
		details["incoterm"] = "must be one of EXW, FOB, CIF, DDP"
	}
	if f.TargetUnitPrice != nil && f.TargetUnitPrice.IsNegative() {
		details["target_unit_price"] = "must not be negative"
	}
	if len(f.RequiredCertifications) > maxTextLength {
		details["required_certifications"] = "is too long"
	}
	if len(f.Notes) > maxTextLength {
		details["notes"] = "is too long"
	}
	if f.ProductID != nil && *f.ProductID <= 0 {
		details["product_id"] = "must be positive"
	}

	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid quote request").WithDetails(details)
	}
	return nil
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/wholesale-storefront/pkg/enums"
)

// QuoteRequest stores a submitted request-for-quote until sales follows up.
type QuoteRequest struct {
	ID              uuid.UUID                `gorm:"column:id;type:varchar(36);primaryKey"`
	SessionID       *string                  `gorm:"column:session_id"`
	CompanyName     string                   `gorm:"column:company_name;not null"`
	Country         string                   `gorm:"column:country;not null"`
	TargetQuantity  int                      `gorm:"column:target_quantity;not null"`
	Incoterm        enums.Incoterm           `gorm:"column:incoterm;not null"`
	TargetUnitPrice decimal.NullDecimal      `gorm:"column:target_unit_price;type:numeric(12,2)"`
	Certifications  string                   `gorm:"column:certifications;not null;default:''"`
	Notes           string                   `gorm:"column:notes;not null;default:''"`
	ProductID       *int                     `gorm:"column:product_id"`
	Status          enums.QuoteRequestStatus `gorm:"column:status;not null;default:'new'"`
	CreatedAt       time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

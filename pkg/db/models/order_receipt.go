package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/wholesale-storefront/pkg/enums"
)

// OrderReceipt records the confirmation returned for an idempotency key so a
// replayed checkout returns the original order instead of creating another.
// Keys are unique per cart session; an empty SessionID is stored as "".
type OrderReceipt struct {
	ID             uuid.UUID           `gorm:"column:id;type:varchar(36);primaryKey"`
	IdempotencyKey string              `gorm:"column:idempotency_key;not null;uniqueIndex:idx_order_receipts_session_key,priority:2;index:idx_order_receipts_idempotency_key"`
	SessionID      string              `gorm:"column:session_id;not null;default:'';uniqueIndex:idx_order_receipts_session_key,priority:1"`
	Reference      string              `gorm:"column:reference;not null"`
	OrderID        int                 `gorm:"column:order_id;not null"`
	OrderNumber    string              `gorm:"column:order_number;not null"`
	OrderStatus    string              `gorm:"column:order_status;not null"`
	Total          decimal.Decimal     `gorm:"column:total;type:numeric(12,2);not null"`
	Currency       enums.Currency      `gorm:"column:currency;not null"`
	PaymentMethod  enums.PaymentMethod `gorm:"column:payment_method;not null"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
}

package cartdto

import "github.com/angelmondragon/wholesale-storefront/pkg/enums"

// AddItemRequest adds quantity units of a product under a price mode.
type AddItemRequest struct {
	ProductID int             `json:"product_id" validate:"required,gt=0"`
	Quantity  int             `json:"quantity" validate:"gte=1"`
	PriceMode enums.PriceMode `json:"price_mode" validate:"omitempty,oneof=single bulk"`
}

// UpdateItemRequest changes quantity, price mode, or both. A quantity of
// zero removes the line.
type UpdateItemRequest struct {
	Quantity  *int             `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	PriceMode *enums.PriceMode `json:"price_mode,omitempty" validate:"omitempty,oneof=single bulk"`
}

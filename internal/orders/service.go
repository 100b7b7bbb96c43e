package orders

import (
	"context"
	"fmt"
	"sort"
	"strings"

	pkgerrors "github.com/angelmondragon/wholesale-storefront/pkg/errors"
	"github.com/angelmondragon/wholesale-storefront/pkg/logger"
	"github.com/angelmondragon/wholesale-storefront/pkg/woocommerce"
)

// Gateway is the slice of the commerce backend the order flow needs.
type Gateway interface {
	FindOrCreateCustomer(ctx context.Context, input woocommerce.CustomerInput) (*woocommerce.Customer, error)
	CreateOrder(ctx context.Context, input woocommerce.OrderInput) (*woocommerce.Order, error)
}

// Service places orders in the commerce backend.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*Confirmation, error)
}

type service struct {
	gateway Gateway
	logg    *logger.Logger
}

func NewService(gateway Gateway, logg *logger.Logger) (Service, error) {
	if gateway == nil {
		return nil, fmt.Errorf("order gateway required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{gateway: gateway, logg: logg}, nil
}

// Submit resolves the customer by email and then creates the order. Nothing
// is sent upstream when the input is invalid.
func (s *service) Submit(ctx context.Context, input SubmitInput) (*Confirmation, error) {
	if err := validate(input); err != nil {
		return nil, err
	}

	customer, err := s.gateway.FindOrCreateCustomer(ctx, woocommerce.CustomerInput{
		Email:     strings.TrimSpace(input.Customer.Email),
		FirstName: input.Customer.FirstName,
		LastName:  input.Customer.LastName,
		Billing:   input.Customer.Billing,
		Shipping:  input.Customer.Shipping,
	})
	if err != nil {
		return nil, err
	}

	order, err := s.gateway.CreateOrder(ctx, toOrderInput(customer.ID, input))
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"order_id":       order.ID,
		"order_number":   order.Number,
		"customer_id":    customer.ID,
		"payment_method": input.Payment.Method,
	})
	s.logg.Info(ctx, "orders.created")

	return &Confirmation{
		ID:       order.ID,
		Number:   order.Number,
		Status:   order.Status,
		Total:    order.Total.String(),
		Currency: order.Currency,
	}, nil
}

func validate(input SubmitInput) error {
	details := map[string]string{}
	if strings.TrimSpace(input.Customer.Email) == "" {
		details["customer.email"] = "is required"
	}
	if len(input.Items) == 0 {
		details["items"] = "is required"
	}
	for i, item := range input.Items {
		if item.ProductID <= 0 {
			details[fmt.Sprintf("items[%d].product_id", i)] = "must be positive"
		}
		if item.Quantity < 1 {
			details[fmt.Sprintf("items[%d].quantity", i)] = "must be at least 1"
		}
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "Missing required fields: customer.email and items are required").WithDetails(details)
	}
	return nil
}

func toOrderInput(customerID int, input SubmitInput) woocommerce.OrderInput {
	items := make([]woocommerce.LineItem, 0, len(input.Items))
	for _, item := range input.Items {
		line := woocommerce.LineItem{
			ProductID:   item.ProductID,
			VariationID: item.VariationID,
			Quantity:    item.Quantity,
		}
		if item.Subtotal != nil {
			line.Subtotal = item.Subtotal.StringFixed(2)
		}
		if item.Total != nil {
			line.Total = item.Total.StringFixed(2)
		}
		items = append(items, line)
	}

	return woocommerce.OrderInput{
		CustomerID:         customerID,
		PaymentMethod:      input.Payment.Method,
		PaymentMethodTitle: input.Payment.Title,
		SetPaid:            input.Payment.SetPaid,
		TransactionID:      input.Payment.TransactionID,
		Billing:            input.Customer.Billing,
		Shipping:           input.Customer.Shipping,
		LineItems:          items,
		CustomerNote:       strings.TrimSpace(input.Note),
		MetaData:           metaData(input.Meta),
	}
}

// metaData emits keys in sorted order so requests are reproducible.
func metaData(meta map[string]string) []woocommerce.MetaData {
	if len(meta) == 0 {
		return nil
	}
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]woocommerce.MetaData, 0, len(keys))
	for _, k := range keys {
		out = append(out, woocommerce.MetaData{Key: k, Value: meta[k]})
	}
	return out
}

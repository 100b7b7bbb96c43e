package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/wholesale-storefront/pkg/airwallex"
	pkgerrors "github.com/angelmondragon/wholesale-storefront/pkg/errors"
)

// IntentProvider is the payment provider surface checkout depends on.
type IntentProvider interface {
	CreatePaymentIntent(ctx context.Context, req airwallex.IntentRequest) (*airwallex.PaymentIntent, error)
	GetPaymentIntent(ctx context.Context, id string) (*airwallex.PaymentIntent, error)
}

// AirwallexElement adapts the hosted card element to PaymentElement. When the
// browser already created and confirmed an intent, the element adopts it and
// only verifies its amount and final status with the provider.
type AirwallexElement struct {
	provider     IntentProvider
	intentID     string
	clientSecret string
}

func NewAirwallexElement(provider IntentProvider, intentID, clientSecret string) *AirwallexElement {
	return &AirwallexElement{
		provider:     provider,
		intentID:     strings.TrimSpace(intentID),
		clientSecret: strings.TrimSpace(clientSecret),
	}
}

func (e *AirwallexElement) CreateIntent(ctx context.Context, params IntentParams) (*Intent, error) {
	if e.intentID == "" {
		created, err := e.provider.CreatePaymentIntent(ctx, airwallex.IntentRequest{
			Amount:          params.Amount,
			Currency:        params.Currency,
			MerchantOrderID: params.MerchantOrderID,
			CustomerEmail:   params.CustomerEmail,
			Metadata:        params.Metadata,
		})
		if err != nil {
			return nil, err
		}
		return toIntent(created, e.clientSecret), nil
	}

	existing, err := e.provider.GetPaymentIntent(ctx, e.intentID)
	if err != nil {
		return nil, err
	}
	if !existing.Amount.Equal(params.Amount.Round(2)) || !strings.EqualFold(existing.Currency, params.Currency) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment intent does not match the order total").
			WithDetails(map[string]any{
				"intent_amount":   existing.Amount.StringFixed(2),
				"intent_currency": existing.Currency,
				"order_amount":    params.Amount.StringFixed(2),
				"order_currency":  params.Currency,
			})
	}
	return toIntent(existing, e.clientSecret), nil
}

func (e *AirwallexElement) Mount(_ context.Context, intent *Intent) error {
	if intent == nil || intent.ID == "" {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "payment element has no intent")
	}
	if intent.ClientSecret == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment element requires a client secret")
	}
	return nil
}

func (e *AirwallexElement) Confirm(ctx context.Context, intent *Intent) (*PaymentResult, error) {
	current, err := e.provider.GetPaymentIntent(ctx, intent.ID)
	if err != nil {
		return nil, err
	}
	if !current.Succeeded() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("payment not completed (status %s)", current.Status)).
			WithDetails(map[string]string{"intent_id": current.ID, "status": current.Status})
	}
	return &PaymentResult{IntentID: current.ID, Status: current.Status}, nil
}

func toIntent(p *airwallex.PaymentIntent, fallbackSecret string) *Intent {
	secret := p.ClientSecret
	if secret == "" {
		secret = fallbackSecret
	}
	return &Intent{
		ID:           p.ID,
		ClientSecret: secret,
		Amount:       p.Amount,
		Currency:     p.Currency,
	}
}

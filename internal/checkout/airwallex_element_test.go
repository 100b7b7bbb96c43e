package checkout

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/wholesale-storefront/pkg/airwallex"
	pkgerrors "github.com/angelmondragon/wholesale-storefront/pkg/errors"
)

type fakeProvider struct {
	intents  map[string]*airwallex.PaymentIntent
	requests []airwallex.IntentRequest
	next     int
	err      error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{intents: map[string]*airwallex.PaymentIntent{}}
}

func (p *fakeProvider) CreatePaymentIntent(_ context.Context, req airwallex.IntentRequest) (*airwallex.PaymentIntent, error) {
	if p.err != nil {
		return nil, p.err
	}
	p.requests = append(p.requests, req)
	p.next++
	intent := &airwallex.PaymentIntent{
		ID:              "int_" + string(rune('a'+p.next-1)),
		ClientSecret:    "secret_" + string(rune('a'+p.next-1)),
		Amount:          req.Amount.Round(2),
		Currency:        req.Currency,
		Status:          airwallex.StatusRequiresPaymentMethod,
		MerchantOrderID: req.MerchantOrderID,
	}
	p.intents[intent.ID] = intent
	return intent, nil
}

func (p *fakeProvider) GetPaymentIntent(_ context.Context, id string) (*airwallex.PaymentIntent, error) {
	if p.err != nil {
		return nil, p.err
	}
	intent, ok := p.intents[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment intent not found")
	}
	copied := *intent
	copied.ClientSecret = ""
	return &copied, nil
}

func (p *fakeProvider) seed(id, amount, currency, status string) {
	p.intents[id] = &airwallex.PaymentIntent{
		ID:       id,
		Amount:   decimal.RequireFromString(amount),
		Currency: currency,
		Status:   status,
	}
}

func TestAirwallexElementAdoptsConfirmedIntent(t *testing.T) {
	provider := newFakeProvider()
	provider.seed("int_paid", "571.20", "USD", airwallex.StatusSucceeded)

	flow := NewPaymentFlow(NewAirwallexElement(provider, "int_paid", "secret_paid"))
	result, err := flow.Run(context.Background(), IntentParams{Amount: decimal.RequireFromString("571.2"), Currency: "usd"})
	require.NoError(t, err)
	assert.Equal(t, "int_paid", result.IntentID)
	assert.Empty(t, provider.requests)
}

func TestAirwallexElementRejectsAmountMismatch(t *testing.T) {
	provider := newFakeProvider()
	provider.seed("int_paid", "100.00", "USD", airwallex.StatusSucceeded)

	flow := NewPaymentFlow(NewAirwallexElement(provider, "int_paid", "secret"))
	_, err := flow.Run(context.Background(), IntentParams{Amount: decimal.RequireFromString("571.20"), Currency: "USD"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Equal(t, PaymentFailed, flow.State())
}

func TestAirwallexElementRequiresClientSecret(t *testing.T) {
	provider := newFakeProvider()
	provider.seed("int_paid", "10.00", "USD", airwallex.StatusSucceeded)

	flow := NewPaymentFlow(NewAirwallexElement(provider, "int_paid", ""))
	_, err := flow.Run(context.Background(), IntentParams{Amount: decimal.RequireFromString("10"), Currency: "USD"})
	require.Error(t, err)
	assert.Equal(t, []PaymentState{PaymentIntentCreated, PaymentFailed}, flow.History())
}

func TestAirwallexElementUnpaidIntentFailsConfirm(t *testing.T) {
	provider := newFakeProvider()
	flow := NewPaymentFlow(NewAirwallexElement(provider, "", ""))

	_, err := flow.Run(context.Background(), IntentParams{Amount: decimal.RequireFromString("25"), Currency: "USD", MerchantOrderID: "WS-1"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
	require.Len(t, provider.requests, 1)
	assert.Equal(t, "WS-1", provider.requests[0].MerchantOrderID)
	assert.Equal(t, PaymentFailed, flow.State())
}

func TestAirwallexElementRequiresCaptureCountsAsPaid(t *testing.T) {
	provider := newFakeProvider()
	provider.seed("int_auth", "25.00", "EUR", airwallex.StatusRequiresCapture)

	flow := NewPaymentFlow(NewAirwallexElement(provider, "int_auth", "s"))
	result, err := flow.Run(context.Background(), IntentParams{Amount: decimal.RequireFromString("25"), Currency: "EUR"})
	require.NoError(t, err)
	assert.Equal(t, airwallex.StatusRequiresCapture, result.Status)
}

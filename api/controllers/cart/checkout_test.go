package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/wholesale-storefront/internal/checkout"
	"github.com/angelmondragon/wholesale-storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/wholesale-storefront/pkg/errors"
)

type stubCheckout struct {
	lastSession string
	lastInput   checkout.Input
	lastIntent  checkout.IntentInput
	confirm     *checkout.Confirmation
	err         error
}

func (s *stubCheckout) Quote(_ context.Context, sessionID string) (*checkout.Quote, error) {
	s.lastSession = sessionID
	if s.err != nil {
		return nil, s.err
	}
	return &checkout.Quote{Totals: checkout.Totals{Total: decimal.RequireFromString("571.20")}}, nil
}

func (s *stubCheckout) CreateIntent(_ context.Context, sessionID string, input checkout.IntentInput) (*checkout.IntentResult, error) {
	s.lastSession = sessionID
	s.lastIntent = input
	if s.err != nil {
		return nil, s.err
	}
	return &checkout.IntentResult{IntentID: "int_1", ClientSecret: "secret_1", Amount: decimal.RequireFromString("571.20"), Currency: "USD"}, nil
}

func (s *stubCheckout) Submit(_ context.Context, sessionID string, input checkout.Input) (*checkout.Confirmation, error) {
	s.lastSession = sessionID
	s.lastInput = input
	if s.err != nil {
		return nil, s.err
	}
	return s.confirm, nil
}

const submitBody = `{
	"shipping": {"first_name":"Ada","last_name":"Lovelace","company":"Acme","email":"ada@acme.test","phone":"1","address_1":"1 Main","city":"Austin","postcode":"78701","country":"US"},
	"same_as_shipping": true,
	"payment": {"method":"bank-transfer"},
	"incoterm": "CIF",
	"notes": "dock 4"
}`

func TestCheckoutSubmitPassesSessionAndIdempotencyKey(t *testing.T) {
	svc := &stubCheckout{confirm: &checkout.Confirmation{OrderID: 901, Number: "901", Reference: "WS-20261014-ABCDEFGH"}}

	req := sessionRequest(http.MethodPost, "/api/v1/cart/checkout", submitBody)
	req.Header.Set("Idempotency-Key", " key-1 ")
	rec := httptest.NewRecorder()
	CheckoutSubmit(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, testSession, svc.lastSession)
	assert.Equal(t, "key-1", svc.lastInput.IdempotencyKey)
	assert.Equal(t, enums.PaymentMethodBankTransfer, svc.lastInput.Payment.Method)
	assert.Equal(t, enums.Incoterm("CIF"), svc.lastInput.Incoterm)
	assert.True(t, svc.lastInput.SameAsShipping)

	var env struct {
		Data checkout.Confirmation `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, 901, env.Data.OrderID)
}

func TestCheckoutSubmitReplayAnswers200(t *testing.T) {
	svc := &stubCheckout{confirm: &checkout.Confirmation{OrderID: 901, Replayed: true}}
	rec := httptest.NewRecorder()
	CheckoutSubmit(svc, nil).ServeHTTP(rec, sessionRequest(http.MethodPost, "/api/v1/cart/checkout", submitBody))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCheckoutSubmitMapsPaymentFailure(t *testing.T) {
	svc := &stubCheckout{err: pkgerrors.New(pkgerrors.CodeStateConflict, "payment not completed (status FAILED)")}
	rec := httptest.NewRecorder()
	CheckoutSubmit(svc, nil).ServeHTTP(rec, sessionRequest(http.MethodPost, "/api/v1/cart/checkout", submitBody))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCheckoutIntent(t *testing.T) {
	svc := &stubCheckout{}
	rec := httptest.NewRecorder()
	CheckoutIntent(svc, nil).ServeHTTP(rec, sessionRequest(http.MethodPost, "/api/v1/cart/checkout/intent", `{"email":"ada@acme.test","currency":"eur"}`))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "ada@acme.test", svc.lastIntent.Email)
	assert.Equal(t, "eur", svc.lastIntent.Currency)

	var env struct {
		Data struct {
			IntentID     string `json:"intent_id"`
			ClientSecret string `json:"client_secret"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "int_1", env.Data.IntentID)
	assert.Equal(t, "secret_1", env.Data.ClientSecret)
}

func TestCheckoutTotals(t *testing.T) {
	svc := &stubCheckout{}
	rec := httptest.NewRecorder()
	CheckoutTotals(svc, nil).ServeHTTP(rec, sessionRequest(http.MethodGet, "/api/v1/cart/checkout/totals", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testSession, svc.lastSession)
	assert.Contains(t, rec.Body.String(), `"571.2"`)
}

package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/wholesale-storefront/internal/cart"
	"github.com/angelmondragon/wholesale-storefront/internal/orders"
	"github.com/angelmondragon/wholesale-storefront/pkg/airwallex"
	"github.com/angelmondragon/wholesale-storefront/pkg/db/models"
	"github.com/angelmondragon/wholesale-storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/wholesale-storefront/pkg/errors"
	"github.com/angelmondragon/wholesale-storefront/pkg/logger"
	"github.com/angelmondragon/wholesale-storefront/pkg/woocommerce"
)

const referencePrefix = "WS-"

// CartStore is the cart surface checkout reads and clears.
type CartStore interface {
	Summary(ctx context.Context, sessionID string) (*cart.Summary, error)
	Clear(ctx context.Context, sessionID string) error
}

// OrderSubmitter places the order in the commerce backend.
type OrderSubmitter interface {
	Submit(ctx context.Context, input orders.SubmitInput) (*orders.Confirmation, error)
}

// ElementFactory builds the payment element for one checkout attempt.
type ElementFactory func(payment PaymentInput) PaymentElement

// PaymentInput selects how the buyer pays. IntentID and ClientSecret are set
// when the card element already ran in the browser.
type PaymentInput struct {
	Method       enums.PaymentMethod `json:"method"`
	IntentID     string              `json:"intent_id,omitempty"`
	ClientSecret string              `json:"client_secret,omitempty"`
}

// Input is a checkout submission for the session's cart.
type Input struct {
	Shipping       woocommerce.Address  `json:"shipping"`
	Billing        *woocommerce.Address `json:"billing,omitempty"`
	SameAsShipping bool                 `json:"same_as_shipping"`
	Payment        PaymentInput         `json:"payment"`
	Incoterm       enums.Incoterm       `json:"incoterm,omitempty"`
	Notes          string               `json:"notes,omitempty"`
	Currency       string               `json:"currency,omitempty"`
	IdempotencyKey string               `json:"-"`
}

// IntentInput requests a payment intent for the session's cart total.
type IntentInput struct {
	Email    string `json:"email"`
	Currency string `json:"currency,omitempty"`
}

// IntentResult is what the browser needs to mount the card element.
type IntentResult struct {
	IntentID     string          `json:"intent_id"`
	ClientSecret string          `json:"client_secret"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Reference    string          `json:"reference"`
	Totals       Totals          `json:"totals"`
}

// Confirmation is returned once an order exists.
type Confirmation struct {
	OrderID       int                 `json:"order_id"`
	Number        string              `json:"number"`
	Status        string              `json:"status"`
	Total         string              `json:"total"`
	Currency      string              `json:"currency"`
	Reference     string              `json:"reference"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	Replayed      bool                `json:"replayed"`
}

// Quote is the priced cart plus checkout totals.
type Quote struct {
	Cart   cart.Summary `json:"cart"`
	Totals Totals       `json:"totals"`
}

// Service orchestrates payment and order creation for a session cart.
type Service interface {
	Quote(ctx context.Context, sessionID string) (*Quote, error)
	CreateIntent(ctx context.Context, sessionID string, input IntentInput) (*IntentResult, error)
	Submit(ctx context.Context, sessionID string, input Input) (*Confirmation, error)
}

type ServiceParams struct {
	Cart            CartStore
	Orders          OrderSubmitter
	Payments        IntentProvider
	Receipts        ReceiptRepository
	Elements        ElementFactory
	Rates           *Rates
	DefaultCurrency enums.Currency
	DefaultIncoterm enums.Incoterm
	Logger          *logger.Logger
	Now             func() time.Time
}

type service struct {
	cart            CartStore
	orders          OrderSubmitter
	payments        IntentProvider
	receipts        ReceiptRepository
	elements        ElementFactory
	rates           Rates
	defaultCurrency enums.Currency
	defaultIncoterm enums.Incoterm
	logg            *logger.Logger
	now             func() time.Time
}

// NewService builds the checkout orchestrator. Receipts are optional; without
// them replayed submissions are not detected. Nil Rates means DefaultRates.
func NewService(params ServiceParams) (Service, error) {
	if params.Cart == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order submitter required")
	}
	if params.Payments == nil {
		return nil, fmt.Errorf("payment provider required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	svc := &service{
		cart:            params.Cart,
		orders:          params.Orders,
		payments:        params.Payments,
		receipts:        params.Receipts,
		elements:        params.Elements,
		rates:           DefaultRates(),
		defaultCurrency: params.DefaultCurrency,
		defaultIncoterm: params.DefaultIncoterm,
		logg:            params.Logger,
		now:             params.Now,
	}
	if svc.elements == nil {
		svc.elements = func(payment PaymentInput) PaymentElement {
			return NewAirwallexElement(params.Payments, payment.IntentID, payment.ClientSecret)
		}
	}
	if params.Rates != nil {
		svc.rates = *params.Rates
	}
	if !svc.defaultCurrency.IsValid() {
		svc.defaultCurrency = enums.CurrencyUSD
	}
	if !svc.defaultIncoterm.IsValid() {
		svc.defaultIncoterm = enums.IncotermFOB
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc, nil
}

func (s *service) Quote(ctx context.Context, sessionID string) (*Quote, error) {
	summary, err := s.cart.Summary(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &Quote{Cart: *summary, Totals: ComputeTotals(*summary, s.rates)}, nil
}

func (s *service) CreateIntent(ctx context.Context, sessionID string, input IntentInput) (*IntentResult, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	currency, err := s.currency(input.Currency)
	if err != nil {
		return nil, err
	}
	quote, err := s.nonEmptyQuote(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	reference := s.newReference()
	intent, err := s.payments.CreatePaymentIntent(ctx, airwallex.IntentRequest{
		Amount:          quote.Totals.Total,
		Currency:        currency.String(),
		MerchantOrderID: reference,
		CustomerEmail:   email,
		Metadata:        map[string]string{"cart_session": sessionID},
	})
	if err != nil {
		return nil, err
	}

	return &IntentResult{
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		Amount:       intent.Amount,
		Currency:     intent.Currency,
		Reference:    reference,
		Totals:       quote.Totals,
	}, nil
}

// Submit pays (card only) and then places the order. The cart is cleared only
// after the order exists; any earlier failure leaves it untouched.
func (s *service) Submit(ctx context.Context, sessionID string, input Input) (*Confirmation, error) {
	input, err := s.normalize(input)
	if err != nil {
		return nil, err
	}
	currency, err := s.currency(input.Currency)
	if err != nil {
		return nil, err
	}

	key := idempotencyKey(input)
	intentKey := key != "" && key == strings.TrimSpace(input.Payment.IntentID)
	if replay, err := s.replay(ctx, sessionID, key, intentKey); err != nil || replay != nil {
		return replay, err
	}

	quote, err := s.nonEmptyQuote(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"payment_method": input.Payment.Method.String(),
		"items":          quote.Totals.TotalItems,
	})

	reference := s.newReference()
	var payment *PaymentResult
	if input.Payment.Method.RequiresCapture() {
		flow := NewPaymentFlow(s.elements(input.Payment))
		payment, err = flow.Run(ctx, IntentParams{
			Amount:          quote.Totals.Total,
			Currency:        currency.String(),
			MerchantOrderID: reference,
			CustomerEmail:   input.Shipping.Email,
		})
		if err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "payment_state", string(flow.State())), "checkout.payment_failed")
			return nil, err
		}
		if key == "" {
			key = payment.IntentID
		}
	}

	confirmation, err := s.orders.Submit(ctx, s.orderInput(input, quote, reference, payment))
	if err != nil {
		return nil, err
	}

	result := &Confirmation{
		OrderID:       confirmation.ID,
		Number:        confirmation.Number,
		Status:        confirmation.Status,
		Total:         confirmation.Total,
		Currency:      currency.String(),
		Reference:     reference,
		PaymentMethod: input.Payment.Method,
	}
	if confirmation.Currency != "" {
		result.Currency = strings.ToUpper(confirmation.Currency)
	}

	s.storeReceipt(ctx, sessionID, key, result, quote.Totals.Total)

	if err := s.cart.Clear(ctx, sessionID); err != nil {
		s.logg.Error(ctx, "checkout.cart_clear_failed", err)
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id":  result.OrderID,
		"reference": reference,
	}), "checkout.completed")
	return result, nil
}

func (s *service) normalize(input Input) (Input, error) {
	details := map[string]string{}

	if !input.Payment.Method.IsValid() {
		details["payment.method"] = "must be one of credit-card, bank-transfer, letter-of-credit"
	}
	requireAddress(details, "shipping", input.Shipping, true)

	if input.SameAsShipping || input.Billing == nil {
		billing := input.Shipping
		input.Billing = &billing
	} else {
		requireAddress(details, "billing", *input.Billing, false)
	}

	if input.Incoterm == "" {
		input.Incoterm = s.defaultIncoterm
	} else if term, err := enums.ParseIncoterm(string(input.Incoterm)); err == nil {
		input.Incoterm = term
	} else {
		details["incoterm"] = "must be one of EXW, FOB, CIF, DDP"
	}
	input.Notes = strings.TrimSpace(input.Notes)

	if len(details) > 0 {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "invalid checkout request").WithDetails(details)
	}
	return input, nil
}

// requireAddress checks the starred checkout fields. Billing only needs a name.
func requireAddress(details map[string]string, prefix string, addr woocommerce.Address, full bool) {
	fields := map[string]string{
		"first_name": addr.FirstName,
		"last_name":  addr.LastName,
	}
	if full {
		fields["company"] = addr.Company
		fields["email"] = addr.Email
		fields["phone"] = addr.Phone
		fields["address_1"] = addr.Address1
		fields["city"] = addr.City
		fields["postcode"] = addr.Postcode
		fields["country"] = addr.Country
	}
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			details[prefix+"."+name] = "is required"
		}
	}
	if full && addr.Email != "" && !strings.Contains(addr.Email, "@") {
		details[prefix+".email"] = "must be a valid email"
	}
}

func (s *service) currency(raw string) (enums.Currency, error) {
	if strings.TrimSpace(raw) == "" {
		return s.defaultCurrency, nil
	}
	currency, err := enums.ParseCurrency(raw)
	if err != nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "unsupported currency").
			WithDetails(map[string]string{"currency": raw})
	}
	return currency, nil
}

func (s *service) nonEmptyQuote(ctx context.Context, sessionID string) (*Quote, error) {
	quote, err := s.Quote(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(quote.Cart.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	return quote, nil
}

func idempotencyKey(input Input) string {
	if input.Payment.Method.RequiresCapture() && input.Payment.IntentID != "" {
		return strings.TrimSpace(input.Payment.IntentID)
	}
	return strings.TrimSpace(input.IdempotencyKey)
}

// replay returns the confirmation this session already received for key.
// A payment intent is single use, so one consumed by another session is
// refused rather than paying for a second order.
func (s *service) replay(ctx context.Context, sessionID, key string, intentKey bool) (*Confirmation, error) {
	if key == "" || s.receipts == nil {
		return nil, nil
	}
	receipt, err := s.receipts.Find(ctx, sessionID, key)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order receipt")
	}
	if receipt == nil {
		if !intentKey {
			return nil, nil
		}
		used, err := s.receipts.FindByIdempotencyKey(ctx, key)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order receipt")
		}
		if used != nil {
			s.logg.Warn(s.logg.WithField(ctx, "intent_id", key), "checkout.intent_reused")
			return nil, pkgerrors.New(pkgerrors.CodeIdempotency, "payment intent already used for another order")
		}
		return nil, nil
	}
	s.logg.Info(s.logg.WithField(ctx, "reference", receipt.Reference), "checkout.replayed")
	return fromReceipt(receipt), nil
}

func (s *service) storeReceipt(ctx context.Context, sessionID, key string, c *Confirmation, fallbackTotal decimal.Decimal) {
	if key == "" || s.receipts == nil {
		return
	}
	total, err := decimal.NewFromString(c.Total)
	if err != nil {
		total = fallbackTotal
	}
	receipt := &models.OrderReceipt{
		IdempotencyKey: key,
		SessionID:      sessionID,
		Reference:      c.Reference,
		OrderID:        c.OrderID,
		OrderNumber:    c.Number,
		OrderStatus:    c.Status,
		Total:          total,
		Currency:       enums.Currency(c.Currency),
		PaymentMethod:  c.PaymentMethod,
	}
	if _, _, err := s.receipts.Create(ctx, receipt); err != nil {
		s.logg.Error(ctx, "checkout.receipt_store_failed", err)
	}
}

func fromReceipt(r *models.OrderReceipt) *Confirmation {
	return &Confirmation{
		OrderID:       r.OrderID,
		Number:        r.OrderNumber,
		Status:        r.OrderStatus,
		Total:         r.Total.StringFixed(2),
		Currency:      r.Currency.String(),
		Reference:     r.Reference,
		PaymentMethod: r.PaymentMethod,
		Replayed:      true,
	}
}

func (s *service) orderInput(input Input, quote *Quote, reference string, payment *PaymentResult) orders.SubmitInput {
	items := make([]orders.Item, 0, len(quote.Cart.Lines))
	for _, line := range quote.Cart.Lines {
		total := line.Quote.TotalPrice
		items = append(items, orders.Item{
			ProductID: line.Product.ID,
			Quantity:  line.Quantity,
			Subtotal:  &total,
			Total:     &total,
		})
	}

	gatewayID, gatewayTitle := input.Payment.Method.Gateway()
	meta := map[string]string{
		"checkout_reference": reference,
		"incoterm":           input.Incoterm.String(),
		"payment_method":     input.Payment.Method.String(),
	}
	if input.Notes != "" {
		meta["special_instructions"] = input.Notes
	}

	orderPayment := orders.Payment{Method: gatewayID, Title: gatewayTitle}
	if payment != nil {
		orderPayment.SetPaid = true
		orderPayment.TransactionID = payment.IntentID
		meta["payment_intent_id"] = payment.IntentID
	}

	shipping := input.Shipping
	return orders.SubmitInput{
		Customer: orders.Customer{
			Email:     strings.TrimSpace(shipping.Email),
			FirstName: shipping.FirstName,
			LastName:  shipping.LastName,
			Billing:   input.Billing,
			Shipping:  &shipping,
		},
		Items:   items,
		Payment: orderPayment,
		Note:    input.Notes,
		Meta:    meta,
	}
}

func (s *service) newReference() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return referencePrefix + s.now().UTC().Format("20060102") + "-" + id[:8]
}

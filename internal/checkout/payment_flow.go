package checkout

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/wholesale-storefront/pkg/errors"
)

// PaymentState is a step of the hosted payment element lifecycle.
type PaymentState string

const (
	PaymentUninitialized  PaymentState = "uninitialized"
	PaymentIntentCreated  PaymentState = "intent_created"
	PaymentElementMounted PaymentState = "element_mounted"
	PaymentReady          PaymentState = "ready"
	PaymentConfirming     PaymentState = "confirming"
	PaymentSucceeded      PaymentState = "succeeded"
	PaymentFailed         PaymentState = "failed"
)

// IntentParams describes the charge an intent is created for.
type IntentParams struct {
	Amount          decimal.Decimal
	Currency        string
	MerchantOrderID string
	CustomerEmail   string
	Metadata        map[string]string
}

// Intent is a created payment intent.
type Intent struct {
	ID           string
	ClientSecret string
	Amount       decimal.Decimal
	Currency     string
}

// PaymentResult is the outcome of a confirmed payment.
type PaymentResult struct {
	IntentID string
	Status   string
}

// PaymentElement is the provider's hosted element seen from the server.
type PaymentElement interface {
	CreateIntent(ctx context.Context, params IntentParams) (*Intent, error)
	Mount(ctx context.Context, intent *Intent) error
	Confirm(ctx context.Context, intent *Intent) (*PaymentResult, error)
}

// PaymentFlow drives a PaymentElement through its lifecycle. Any error moves
// the flow to failed; a failed flow can be run again from the start.
type PaymentFlow struct {
	mu      sync.Mutex
	element PaymentElement
	state   PaymentState
	intent  *Intent
	history []PaymentState
}

func NewPaymentFlow(element PaymentElement) *PaymentFlow {
	return &PaymentFlow{element: element, state: PaymentUninitialized}
}

// State returns the current lifecycle state.
func (f *PaymentFlow) State() PaymentState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// History lists every state entered, in order.
func (f *PaymentFlow) History() []PaymentState {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]PaymentState, len(f.history))
	copy(out, f.history)
	return out
}

// CreateIntent is valid from uninitialized or failed.
func (f *PaymentFlow) CreateIntent(ctx context.Context, params IntentParams) (*Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.expect(PaymentUninitialized, PaymentFailed); err != nil {
		return nil, err
	}
	f.intent = nil
	intent, err := f.element.CreateIntent(ctx, params)
	if err != nil {
		f.enter(PaymentFailed)
		return nil, err
	}
	f.intent = intent
	f.enter(PaymentIntentCreated)
	return intent, nil
}

// Mount attaches the element to the created intent.
func (f *PaymentFlow) Mount(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.expect(PaymentIntentCreated); err != nil {
		return err
	}
	if err := f.element.Mount(ctx, f.intent); err != nil {
		f.enter(PaymentFailed)
		return err
	}
	f.enter(PaymentElementMounted)
	return nil
}

// MarkReady records the element's ready event.
func (f *PaymentFlow) MarkReady() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.expect(PaymentElementMounted); err != nil {
		return err
	}
	f.enter(PaymentReady)
	return nil
}

// Confirm is valid only once the element is ready.
func (f *PaymentFlow) Confirm(ctx context.Context) (*PaymentResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.expect(PaymentReady); err != nil {
		return nil, err
	}
	f.enter(PaymentConfirming)
	result, err := f.element.Confirm(ctx, f.intent)
	if err != nil {
		f.enter(PaymentFailed)
		return nil, err
	}
	f.enter(PaymentSucceeded)
	return result, nil
}

// Run performs every step in order and stops at the first failure.
func (f *PaymentFlow) Run(ctx context.Context, params IntentParams) (*PaymentResult, error) {
	if _, err := f.CreateIntent(ctx, params); err != nil {
		return nil, err
	}
	if err := f.Mount(ctx); err != nil {
		return nil, err
	}
	if err := f.MarkReady(); err != nil {
		return nil, err
	}
	return f.Confirm(ctx)
}

func (f *PaymentFlow) expect(allowed ...PaymentState) error {
	for _, state := range allowed {
		if f.state == state {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("payment step not allowed in state %s", f.state))
}

func (f *PaymentFlow) enter(state PaymentState) {
	f.state = state
	f.history = append(f.history, state)
}

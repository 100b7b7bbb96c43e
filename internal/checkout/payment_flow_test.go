package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/wholesale-storefront/pkg/errors"
)

type scriptedElement struct {
	createErr  error
	mountErr   error
	confirmErr error
	created    int
}

func (e *scriptedElement) CreateIntent(_ context.Context, params IntentParams) (*Intent, error) {
	e.created++
	if e.createErr != nil {
		return nil, e.createErr
	}
	return &Intent{ID: "int_1", ClientSecret: "secret", Amount: params.Amount, Currency: params.Currency}, nil
}

func (e *scriptedElement) Mount(context.Context, *Intent) error { return e.mountErr }

func (e *scriptedElement) Confirm(_ context.Context, intent *Intent) (*PaymentResult, error) {
	if e.confirmErr != nil {
		return nil, e.confirmErr
	}
	return &PaymentResult{IntentID: intent.ID, Status: "SUCCEEDED"}, nil
}

var testParams = IntentParams{Amount: decimal.RequireFromString("571.20"), Currency: "USD"}

func TestPaymentFlowRunWalksEveryState(t *testing.T) {
	flow := NewPaymentFlow(&scriptedElement{})
	assert.Equal(t, PaymentUninitialized, flow.State())

	result, err := flow.Run(context.Background(), testParams)
	require.NoError(t, err)
	assert.Equal(t, "int_1", result.IntentID)
	assert.Equal(t, []PaymentState{
		PaymentIntentCreated,
		PaymentElementMounted,
		PaymentReady,
		PaymentConfirming,
		PaymentSucceeded,
	}, flow.History())
}

func TestPaymentFlowFailureAtEachStep(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name    string
		element *scriptedElement
		last    PaymentState
	}{
		{"create", &scriptedElement{createErr: boom}, PaymentUninitialized},
		{"mount", &scriptedElement{mountErr: boom}, PaymentIntentCreated},
		{"confirm", &scriptedElement{confirmErr: boom}, PaymentConfirming},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flow := NewPaymentFlow(tt.element)
			_, err := flow.Run(context.Background(), testParams)
			require.ErrorIs(t, err, boom)
			assert.Equal(t, PaymentFailed, flow.State())

			history := flow.History()
			if tt.last != PaymentUninitialized {
				require.GreaterOrEqual(t, len(history), 2)
				assert.Equal(t, tt.last, history[len(history)-2])
			}
		})
	}
}

func TestPaymentFlowRejectsOutOfOrderSteps(t *testing.T) {
	flow := NewPaymentFlow(&scriptedElement{})

	_, err := flow.Confirm(context.Background())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
	assert.True(t, pkgerrors.IsCode(flow.Mount(context.Background()), pkgerrors.CodeStateConflict))
	assert.True(t, pkgerrors.IsCode(flow.MarkReady(), pkgerrors.CodeStateConflict))
	assert.Equal(t, PaymentUninitialized, flow.State())

	_, err = flow.CreateIntent(context.Background(), testParams)
	require.NoError(t, err)
	_, err = flow.CreateIntent(context.Background(), testParams)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
}

func TestPaymentFlowCanRetryAfterFailure(t *testing.T) {
	element := &scriptedElement{confirmErr: errors.New("declined")}
	flow := NewPaymentFlow(element)

	_, err := flow.Run(context.Background(), testParams)
	require.Error(t, err)

	element.confirmErr = nil
	_, err = flow.Run(context.Background(), testParams)
	require.NoError(t, err)
	assert.Equal(t, PaymentSucceeded, flow.State())
	assert.Equal(t, 2, element.created)
}

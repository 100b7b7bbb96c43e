package rfq

import (
	"context"
	"sync"

	pkgerrors "github.com/angelmondragon/wholesale-storefront/pkg/errors"
)

// State is the panel state of a quote request workflow.
type State string

const (
	StateClosed State = "closed"
	StateOpen   State = "open"
)

// Submitter persists a validated form. The Service satisfies it.
type Submitter interface {
	Submit(ctx context.Context, sessionID string, form Form) (*Submission, error)
}

// Panel is a read-only snapshot of a workflow.
type Panel struct {
	State     State `json:"state"`
	ProductID *int  `json:"product_id,omitempty"`
	Draft     *Form `json:"draft,omitempty"`
}

// Workflow drives one buyer's quote panel between closed and open. A failed
// submission leaves it open with the form kept as the draft. The draft belongs
// to the scope it failed under and survives Close only until the panel is
// opened for a different scope.
type Workflow struct {
	mu         sync.Mutex
	sessionID  string
	submitter  Submitter
	state      State
	productID  *int
	draft      *Form
	draftScope *int
}

// NewWorkflow returns a closed workflow bound to sessionID.
func NewWorkflow(sessionID string, submitter Submitter) *Workflow {
	return &Workflow{sessionID: sessionID, submitter: submitter, state: StateClosed}
}

// Open shows the panel, optionally scoped to a product. Opening an already
// open panel replaces the scope.
func (w *Workflow) Open(productID *int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if productID != nil {
		id := *productID
		productID = &id
	}
	if w.draft != nil && !sameProduct(w.draftScope, productID) {
		w.draft = nil
		w.draftScope = nil
	}
	w.state = StateOpen
	w.productID = productID
}

// Close hides the panel and clears the product scope.
func (w *Workflow) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = StateClosed
	w.productID = nil
}

// Panel returns the current state.
func (w *Workflow) Panel() Panel {
	w.mu.Lock()
	defer w.mu.Unlock()
	p := Panel{State: w.state}
	if w.productID != nil {
		id := *w.productID
		p.ProductID = &id
	}
	if w.draft != nil {
		draft := *w.draft
		p.Draft = &draft
	}
	return p
}

// Submit is only valid while open. The panel's product scope fills the form's
// product when the form has none.
func (w *Workflow) Submit(ctx context.Context, form Form) (*Submission, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateOpen {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "quote panel is not open")
	}
	if form.ProductID == nil && w.productID != nil {
		id := *w.productID
		form.ProductID = &id
	}

	submission, err := w.submitter.Submit(ctx, w.sessionID, form)
	if err != nil {
		w.draft = &form
		w.draftScope = w.productID
		return nil, err
	}

	w.state = StateClosed
	w.productID = nil
	w.draft = nil
	w.draftScope = nil
	return submission, nil
}

func sameProduct(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

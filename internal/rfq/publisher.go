package rfq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/wholesale-storefront/pkg/db/models"
)

const (
	EventSubmitted        = "rfq.submitted"
	eventVersion          = 1
	defaultPublishTimeout = 10 * time.Second
)

// Notifier announces stored quote requests to downstream consumers.
type Notifier interface {
	Notify(ctx context.Context, request models.QuoteRequest) error
}

type publisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(context.Context) (string, error)
}

// Envelope wraps every published event payload.
type Envelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	EventType  string          `json:"eventType"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data"`
}

// SubmittedEvent is the rfq.submitted payload.
type SubmittedEvent struct {
	QuoteRequestID  string           `json:"quoteRequestId"`
	CompanyName     string           `json:"companyName"`
	Country         string           `json:"country"`
	TargetQuantity  int              `json:"targetQuantity"`
	Incoterm        string           `json:"incoterm"`
	TargetUnitPrice *decimal.Decimal `json:"targetUnitPrice,omitempty"`
	Certifications  string           `json:"requiredCertifications,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	ProductID       *int             `json:"productId,omitempty"`
	SubmittedAt     time.Time        `json:"submittedAt"`
}

// PubSubNotifier publishes rfq.submitted messages to a single topic.
type PubSubNotifier struct {
	pub     publisher
	timeout time.Duration
	now     func() time.Time
}

// NewPubSubNotifier wraps a Pub/Sub publisher. A nil publisher yields a nil
// notifier so callers can skip notifications when Pub/Sub is not configured.
func NewPubSubNotifier(p *gcppubsub.Publisher) *PubSubNotifier {
	if p == nil {
		return nil
	}
	return newNotifier(&gcpPublisher{Publisher: p})
}

func newNotifier(pub publisher) *PubSubNotifier {
	return &PubSubNotifier{pub: pub, timeout: defaultPublishTimeout, now: time.Now}
}

func (n *PubSubNotifier) Notify(ctx context.Context, request models.QuoteRequest) error {
	if n == nil || n.pub == nil {
		return errors.New("rfq publisher not configured")
	}

	msg, err := n.message(request)
	if err != nil {
		return err
	}

	publishCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()
	result := n.pub.Publish(publishCtx, msg)
	if result == nil {
		return fmt.Errorf("publisher returned nil for %s", EventSubmitted)
	}
	if _, err := result.Get(publishCtx); err != nil {
		return fmt.Errorf("publishing %s: %w", EventSubmitted, err)
	}
	return nil
}

func (n *PubSubNotifier) message(request models.QuoteRequest) (*gcppubsub.Message, error) {
	event := SubmittedEvent{
		QuoteRequestID: request.ID.String(),
		CompanyName:    request.CompanyName,
		Country:        request.Country,
		TargetQuantity: request.TargetQuantity,
		Incoterm:       request.Incoterm.String(),
		Certifications: request.Certifications,
		Notes:          request.Notes,
		ProductID:      request.ProductID,
		SubmittedAt:    request.CreatedAt.UTC(),
	}
	if request.TargetUnitPrice.Valid {
		price := request.TargetUnitPrice.Decimal
		event.TargetUnitPrice = &price
	}

	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", EventSubmitted, err)
	}

	occurredAt := n.now().UTC()
	envelope := Envelope{
		Version:    eventVersion,
		EventID:    uuid.NewString(),
		EventType:  EventSubmitted,
		OccurredAt: occurredAt,
		Data:       data,
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", EventSubmitted, err)
	}

	return &gcppubsub.Message{
		Data: body,
		Attributes: map[string]string{
			"event_id":       envelope.EventID,
			"event_type":     EventSubmitted,
			"aggregate_type": "quote_request",
			"aggregate_id":   request.ID.String(),
			"created_at":     occurredAt.Format(time.RFC3339Nano),
		},
	}, nil
}

type gcpPublisher struct {
	*gcppubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	if p == nil || p.Publisher == nil {
		return nil
	}
	return &gcpPublishResult{PublishResult: p.Publisher.Publish(ctx, msg)}
}

type gcpPublishResult struct {
	*gcppubsub.PublishResult
}

func (r *gcpPublishResult) Get(ctx context.Context) (string, error) {
	if r == nil || r.PublishResult == nil {
		return "", errors.New("publish result is nil")
	}
	return r.PublishResult.Get(ctx)
}

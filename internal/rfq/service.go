package rfq

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/wholesale-storefront/pkg/db/models"
	"github.com/angelmondragon/wholesale-storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/wholesale-storefront/pkg/errors"
	"github.com/angelmondragon/wholesale-storefront/pkg/logger"
)

// Submission is returned to the buyer after a quote request is stored.
type Submission struct {
	ID          uuid.UUID                `json:"id"`
	Status      enums.QuoteRequestStatus `json:"status"`
	SubmittedAt time.Time                `json:"submitted_at"`
}

// Service validates, stores and announces quote requests.
type Service interface {
	Submit(ctx context.Context, sessionID string, form Form) (*Submission, error)
}

type ServiceParams struct {
	Repository Repository
	Notifier   Notifier
	Logger     *logger.Logger
}

type service struct {
	repo     Repository
	notifier Notifier
	logg     *logger.Logger
}

// NewService wires the quote request service. Notifier is optional.
func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("rfq repository required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     params.Repository,
		notifier: params.Notifier,
		logg:     params.Logger,
	}, nil
}

func (s *service) Submit(ctx context.Context, sessionID string, form Form) (*Submission, error) {
	form = form.Normalize()
	if err := form.Validate(); err != nil {
		return nil, err
	}

	record := toModel(sessionID, form)
	if err := s.repo.Create(ctx, &record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store quote request")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"quote_request_id": record.ID.String(),
		"incoterm":         record.Incoterm.String(),
	})
	s.logg.Info(ctx, "rfq.submitted")

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, record); err != nil {
			s.logg.Error(ctx, "rfq.notify_failed", err)
		}
	}

	return &Submission{
		ID:          record.ID,
		Status:      record.Status,
		SubmittedAt: record.CreatedAt,
	}, nil
}

func toModel(sessionID string, form Form) models.QuoteRequest {
	record := models.QuoteRequest{
		ID:             uuid.New(),
		CompanyName:    form.CompanyName,
		Country:        form.Country,
		TargetQuantity: form.TargetQuantity,
		Incoterm:       form.Incoterm,
		Certifications: form.RequiredCertifications,
		Notes:          form.Notes,
		ProductID:      form.ProductID,
		Status:         enums.QuoteRequestStatusNew,
	}
	if sid := strings.TrimSpace(sessionID); sid != "" {
		record.SessionID = &sid
	}
	if form.TargetUnitPrice != nil {
		record.TargetUnitPrice = decimal.NewNullDecimal(form.TargetUnitPrice.Round(2))
	}
	return record
}

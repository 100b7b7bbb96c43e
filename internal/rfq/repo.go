package rfq

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/wholesale-storefront/pkg/db/models"
	"github.com/angelmondragon/wholesale-storefront/pkg/enums"
)

// Repository manages persistence for quote requests.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, request *models.QuoteRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.QuoteRequest, error)
	ListByStatus(ctx context.Context, status enums.QuoteRequestStatus, limit int) ([]models.QuoteRequest, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a quote request repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, request *models.QuoteRequest) error {
	if request.ID == uuid.Nil {
		request.ID = uuid.New()
	}
	if request.Status == "" {
		request.Status = enums.QuoteRequestStatusNew
	}
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.QuoteRequest, error) {
	var request models.QuoteRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) ListByStatus(ctx context.Context, status enums.QuoteRequestStatus, limit int) ([]models.QuoteRequest, error) {
	var requests []models.QuoteRequest
	query := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

package checkout

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/wholesale-storefront/pkg/db"
	"github.com/angelmondragon/wholesale-storefront/pkg/db/models"
)

// ReceiptRepository remembers the confirmation issued for an idempotency key
// within one cart session.
type ReceiptRepository interface {
	WithTx(tx *gorm.DB) ReceiptRepository
	Find(ctx context.Context, sessionID, key string) (*models.OrderReceipt, error)
	// FindByIdempotencyKey ignores the session. It answers whether a payment
	// intent was already turned into an order anywhere.
	FindByIdempotencyKey(ctx context.Context, key string) (*models.OrderReceipt, error)
	// Create stores receipt. When the session already holds the key the stored
	// receipt is returned instead and created is false.
	Create(ctx context.Context, receipt *models.OrderReceipt) (stored *models.OrderReceipt, created bool, err error)
}

type receiptRepository struct {
	db *gorm.DB
}

func NewReceiptRepository(conn *gorm.DB) ReceiptRepository {
	return &receiptRepository{db: conn}
}

func (r *receiptRepository) WithTx(tx *gorm.DB) ReceiptRepository {
	if tx == nil {
		return r
	}
	return &receiptRepository{db: tx}
}

func (r *receiptRepository) Find(ctx context.Context, sessionID, key string) (*models.OrderReceipt, error) {
	return r.first(r.db.WithContext(ctx).Where("session_id = ? AND idempotency_key = ?", sessionID, key))
}

func (r *receiptRepository) FindByIdempotencyKey(ctx context.Context, key string) (*models.OrderReceipt, error) {
	return r.first(r.db.WithContext(ctx).Where("idempotency_key = ?", key).Order("created_at"))
}

func (r *receiptRepository) first(query *gorm.DB) (*models.OrderReceipt, error) {
	var receipt models.OrderReceipt
	err := query.First(&receipt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (r *receiptRepository) Create(ctx context.Context, receipt *models.OrderReceipt) (*models.OrderReceipt, bool, error) {
	if receipt.ID == uuid.Nil {
		receipt.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(receipt).Error; err != nil {
		if !db.IsUniqueViolation(err, "") {
			return nil, false, err
		}
		existing, findErr := r.Find(ctx, receipt.SessionID, receipt.IdempotencyKey)
		if findErr != nil {
			return nil, false, findErr
		}
		if existing == nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	return receipt, true, nil
}

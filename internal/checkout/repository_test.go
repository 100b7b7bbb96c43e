package checkout

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/wholesale-storefront/pkg/db/models"
	"github.com/angelmondragon/wholesale-storefront/pkg/enums"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.OrderReceipt{}))
	return conn
}

func sampleReceipt(key, reference string) *models.OrderReceipt {
	return &models.OrderReceipt{
		IdempotencyKey: key,
		SessionID:      "sess-a",
		Reference:      reference,
		OrderID:        501,
		OrderNumber:    "501",
		OrderStatus:    "processing",
		Total:          decimal.RequireFromString("571.20"),
		Currency:       enums.CurrencyUSD,
		PaymentMethod:  enums.PaymentMethodCard,
	}
}

func TestReceiptRepositoryFindMissingReturnsNil(t *testing.T) {
	repo := NewReceiptRepository(openTestDB(t))
	receipt, err := repo.FindByIdempotencyKey(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, receipt)
}

func TestReceiptRepositoryDuplicateKeyReturnsFirst(t *testing.T) {
	repo := NewReceiptRepository(openTestDB(t))
	ctx := context.Background()

	stored, created, err := repo.Create(ctx, sampleReceipt("int_1", "WS-FIRST"))
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, uuid.Nil, stored.ID)

	again, created, err := repo.Create(ctx, sampleReceipt("int_1", "WS-SECOND"))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "WS-FIRST", again.Reference)

	found, err := repo.FindByIdempotencyKey(ctx, "int_1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, found.Total.Equal(decimal.RequireFromString("571.2")))
}

func TestReceiptRepositoryKeysAreScopedBySession(t *testing.T) {
	repo := NewReceiptRepository(openTestDB(t))
	ctx := context.Background()

	_, created, err := repo.Create(ctx, sampleReceipt("retry-1", "WS-A"))
	require.NoError(t, err)
	require.True(t, created)

	other := sampleReceipt("retry-1", "WS-B")
	other.SessionID = "sess-b"
	other.OrderID = 502
	stored, created, err := repo.Create(ctx, other)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "WS-B", stored.Reference)

	found, err := repo.Find(ctx, "sess-b", "retry-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, 502, found.OrderID)

	missing, err := repo.Find(ctx, "sess-c", "retry-1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	anySession, err := repo.FindByIdempotencyKey(ctx, "retry-1")
	require.NoError(t, err)
	assert.NotNil(t, anySession)
}

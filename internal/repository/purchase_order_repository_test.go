package repository_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/model"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/repository"
)

func testOrder(requestID string) *model.PurchaseOrderModel {
	now := time.Now()
	return &model.PurchaseOrderModel{
		ID:           uuid.NewString(),
		OrderNumber:  "PC-TEST-" + uuid.NewString()[:8],
		RequestID:    requestID,
		SupplierID:   "sup-001",
		SupplierName: "Fornecedor Um",
		TotalValue:   decimal.RequireFromString("900.00"),
		Status:       "active",
		CreatedBy:    "user-buyer",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestPurchaseOrderRepository_FindActive(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewPurchaseOrderRepository(db)

	// no order yet is not an error
	order, err := repo.FindActiveByRequestID("req-001")
	require.NoError(t, err)
	assert.Nil(t, order)

	created := testOrder("req-001")
	require.NoError(t, repo.Create(created))

	order, err = repo.FindActiveByRequestID("req-001")
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, created.ID, order.ID)
}

func TestPurchaseOrderRepository_DeleteWithItems(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewPurchaseOrderRepository(db)

	order := testOrder("req-001")
	require.NoError(t, repo.Create(order))
	for i := 0; i < 2; i++ {
		require.NoError(t, repo.CreateItem(&model.PurchaseOrderItemModel{
			ID:            uuid.NewString(),
			OrderID:       order.ID,
			RequestItemID: uuid.NewString(),
			Description:   "item",
			Unit:          "un",
			Quantity:      decimal.NewFromInt(1),
			UnitPrice:     decimal.RequireFromString("10.00"),
			TotalPrice:    decimal.RequireFromString("10.00"),
			CreatedAt:     time.Now(),
		}))
	}

	items, err := repo.FindItems(order.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	require.NoError(t, repo.DeleteWithItems(order.ID))

	gone, err := repo.FindActiveByRequestID("req-001")
	require.NoError(t, err)
	assert.Nil(t, gone)

	items, err = repo.FindItems(order.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/service"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/workflow"
)

func TestQuotationOpen_WrongPhase(t *testing.T) {
	db := setupTestDB(t)
	quotations := service.NewQuotationService(db)

	created := newRequest(t, db, "1000.00")
	_, err := quotations.Open(context.Background(), created.Request.ID, nil, buyer)
	assert.True(t, workflow.IsCode(err, workflow.CodeInvalidTransition))
}

func TestQuotationOpen_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	quotations := service.NewQuotationService(db)
	ctx := context.Background()

	snapshot, view := openQuotedRequest(t, db, "1000.00")

	again, err := quotations.Open(ctx, snapshot.Request.ID, deadlineIn(time.Hour), buyer)
	require.NoError(t, err)
	assert.Equal(t, view.Quotation.ID, again.ID)
}

func TestQuotationOpen_MirrorsItemsWithLinkage(t *testing.T) {
	db := setupTestDB(t)

	snapshot, view := openQuotedRequest(t, db, "1000.00",
		service.CreateItemInput{Description: "switch 24p", Unit: "un", RequestedQty: decimal.NewFromInt(2)},
		service.CreateItemInput{Description: "patch panel", Unit: "un", RequestedQty: decimal.NewFromInt(2)},
	)

	require.Len(t, view.Items, 2)
	byItem := make(map[string]bool, len(snapshot.Items))
	for _, item := range snapshot.Items {
		byItem[item.ID] = true
	}
	for _, qi := range view.Items {
		require.NotNil(t, qi.RequestItemID, "quotation line must carry the request item linkage")
		assert.True(t, byItem[*qi.RequestItemID])
	}
}

func TestRegisterSupplierQuotation_ValidatesLines(t *testing.T) {
	db := setupTestDB(t)
	quotations := service.NewQuotationService(db)
	ctx := context.Background()

	_, view := openQuotedRequest(t, db, "1000.00")

	_, err := quotations.RegisterSupplierQuotation(ctx, view.Quotation.ID, &service.SupplierQuotationInput{
		SupplierID:   "sup-001",
		SupplierName: "Fornecedor Um",
		Items: []service.SupplierQuotationItemInput{
			{QuotationItemID: "not-a-line", UnitPrice: decimal.RequireFromString("10.00"), AvailableQty: decimal.NewFromInt(1)},
		},
	}, buyer)
	assert.Error(t, err)
}

func TestRegisterSupplierQuotation_ComputesLineTotals(t *testing.T) {
	db := setupTestDB(t)
	quotations := service.NewQuotationService(db)
	ctx := context.Background()

	_, view := openQuotedRequest(t, db, "1000.00",
		service.CreateItemInput{Description: "hd externo", Unit: "un", RequestedQty: decimal.NewFromInt(3)},
	)

	sq, err := quotations.RegisterSupplierQuotation(ctx, view.Quotation.ID, &service.SupplierQuotationInput{
		SupplierID:   "sup-001",
		SupplierName: "Fornecedor Um",
		Items: []service.SupplierQuotationItemInput{
			{QuotationItemID: view.Items[0].ID, UnitPrice: decimal.RequireFromString("333.333"), AvailableQty: decimal.NewFromInt(3)},
		},
	}, buyer)
	require.NoError(t, err)

	var lines []struct {
		TotalPrice   decimal.Decimal
		AvailableQty decimal.Decimal
	}
	require.NoError(t, db.Table("supplier_quotation_items").
		Where("supplier_quotation_id = ?", sq.ID).
		Select("total_price", "available_qty").
		Scan(&lines).Error)
	require.Len(t, lines, 1)
	assert.True(t, lines[0].TotalPrice.Equal(decimal.RequireFromString("1000.00")),
		"line total rounds to cents, got %s", lines[0].TotalPrice)
}

func TestRegisterSupplierQuotation_UnavailableZeroesQuantity(t *testing.T) {
	db := setupTestDB(t)
	quotations := service.NewQuotationService(db)
	ctx := context.Background()

	_, view := openQuotedRequest(t, db, "1000.00")

	no := false
	sq, err := quotations.RegisterSupplierQuotation(ctx, view.Quotation.ID, &service.SupplierQuotationInput{
		SupplierID:   "sup-001",
		SupplierName: "Fornecedor Um",
		Items: []service.SupplierQuotationItemInput{
			{QuotationItemID: view.Items[0].ID, UnitPrice: decimal.RequireFromString("50.00"), IsAvailable: &no, AvailableQty: decimal.NewFromInt(9)},
		},
	}, buyer)
	require.NoError(t, err)

	var qty decimal.Decimal
	require.NoError(t, db.Table("supplier_quotation_items").
		Where("supplier_quotation_id = ?", sq.ID).
		Select("available_qty").
		Scan(&qty).Error)
	assert.True(t, qty.IsZero())
}

package service_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/phase"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/service"
)

func TestStatisticsService_Collect(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	newRequest(t, db, "100.00")
	newRequest(t, db, "250.00")
	progressToPedidoCompra(t, db)

	stats, err := service.NewStatisticsService(db).Collect(ctx)
	require.NoError(t, err)

	// every phase is reported, even the empty ones
	for _, p := range phase.All() {
		_, ok := stats.RequestsByPhase[string(p)]
		assert.True(t, ok, "missing phase %s", p)
	}
	assert.Equal(t, int64(2), stats.RequestsByPhase["solicitacao"])
	assert.Equal(t, int64(1), stats.RequestsByPhase["pedido_compra"])
	assert.Equal(t, int64(0), stats.RequestsByPhase["arquivado"])

	assert.Equal(t, int64(1), stats.ActiveOrders)

	total, ok := stats.TotalByCostCenter["cc-100"]
	require.True(t, ok)
	// 100 + 250 + the reconciled 900 order total
	assert.True(t, total.Equal(decimal.RequireFromString("1250.00")), "got %s", total)

	// the driven workflow left undelivered outbox rows behind
	assert.Greater(t, stats.PendingEvents, int64(0))
	// two approving decisions were recorded on the driven request
	assert.GreaterOrEqual(t, stats.AvgApprovalLatencySeconds, float64(0))
	assert.False(t, stats.GeneratedAt.IsZero())
}

func TestStatisticsService_EmptyDatabase(t *testing.T) {
	db := setupTestDB(t)

	stats, err := service.NewStatisticsService(db).Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(0), stats.ActiveOrders)
	assert.Equal(t, int64(0), stats.PendingEvents)
	assert.Zero(t, stats.AvgApprovalLatencySeconds)
	assert.Empty(t, stats.TotalByCostCenter)
	for _, count := range stats.RequestsByPhase {
		assert.Equal(t, int64(0), count)
	}
}

package repository_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/database"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/model"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/phase"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = database.Migrate(db, "2500.00")
	require.NoError(t, err)

	return db
}

// testRequest builds a minimal valid request model.
func testRequest(total string) *model.PurchaseRequestModel {
	now := time.Now()
	return &model.PurchaseRequestModel{
		ID:            uuid.NewString(),
		RequestNumber: "SOL-TEST-" + uuid.NewString()[:8],
		RequesterID:   "user-001",
		CostCenter:    "cc-100",
		Urgency:       "normal",
		TotalValue:    decimal.RequireFromString(total),
		CurrentPhase:  string(phase.Solicitacao),
		Version:       1,
		GateA1State:   "pending",
		GateA2State:   "pending",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

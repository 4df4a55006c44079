package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/repository"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/service"
)

func TestAuditLogService_RecordAction(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewAuditLogRepository(db)
	svc := service.NewAuditLogService(repo)

	ctx := context.WithValue(context.Background(), "request_id", "trace-001")
	ctx = context.WithValue(ctx, "ip", "10.0.0.5")
	ctx = context.WithValue(ctx, "user_agent", "curl/8.0")

	err := svc.RecordAction(ctx, "user-001", "request.create", "purchase_request", "req-001",
		map[string]string{"cost_center": "cc-100"})
	require.NoError(t, err)

	logs, err := repo.FindByResource("purchase_request", "req-001")
	require.NoError(t, err)
	require.Len(t, logs, 1)

	entry := logs[0]
	assert.Equal(t, "user-001", entry.UserID)
	assert.Equal(t, "request.create", entry.Action)
	assert.Equal(t, "trace-001", entry.RequestID)
	assert.Equal(t, "10.0.0.5", entry.IP)
	assert.Equal(t, "curl/8.0", entry.UserAgent)
	assert.Contains(t, string(entry.Details), "cc-100")
}

func TestAuditLogService_BareContext(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewAuditLogRepository(db)
	svc := service.NewAuditLogService(repo)

	// metadata missing from the context is tolerated
	err := svc.RecordAction(context.Background(), "user-001", "approval.submit", "purchase_request", "req-001", nil)
	require.NoError(t, err)

	logs, err := repo.FindByUserID("user-001")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Empty(t, logs[0].RequestID)
	assert.Empty(t, logs[0].IP)
}

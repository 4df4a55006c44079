package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/approval"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/auth"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/database"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/notify"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/phase"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/service"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory database with the full schema and
// the seeded 2500.00 approval threshold.
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = database.Migrate(db, "2500.00")
	require.NoError(t, err)

	return db
}

var (
	requester = &auth.Actor{ID: "user-requester", Name: "Requester"}
	approverA = &auth.Actor{ID: "user-approver-a", Name: "Approver A", IsApproverA1: true, IsApproverA2: true}
	approverB = &auth.Actor{ID: "user-approver-b", Name: "Approver B", IsApproverA1: true, IsApproverA2: true}
	buyer     = &auth.Actor{ID: "user-buyer", Name: "Buyer", IsBuyer: true}
)

// newRequest creates a request in solicitacao through the intake
// service.
func newRequest(t *testing.T, db *gorm.DB, total string, items ...service.CreateItemInput) *service.RequestSnapshot {
	if len(items) == 0 {
		items = []service.CreateItemInput{
			{Description: "cabo de rede cat6", Unit: "un", RequestedQty: decimal.NewFromInt(10)},
		}
	}

	svc := service.NewRequestService(db)
	snapshot, err := svc.Create(context.Background(), &service.CreateRequestInput{
		CostCenter:    "cc-100",
		Department:    "TI",
		Justification: "reposicao de estoque",
		TotalValue:    decimal.RequireFromString(total),
		Items:         items,
	}, requester)
	require.NoError(t, err)
	require.NotNil(t, snapshot.Request)
	return snapshot
}

// deadlineIn returns a pointer deadline for quotation fixtures.
func deadlineIn(d time.Duration) *time.Time {
	t := time.Now().Add(d)
	return &t
}

var nop notify.Gateway = notify.NopGateway{}

// recordingGateway captures emitted events; accept controls whether
// the gateway reports them as delivered.
type recordingGateway struct {
	accept bool
	types  []string
}

func (g *recordingGateway) Emit(eventType, requestID, newPhase string, payload interface{}) bool {
	g.types = append(g.types, eventType)
	return g.accept
}

// progressToPedidoCompra drives a fresh request through intake, the A1
// gate, a fully available supplier selection and the A2 gate, leaving
// it in pedido_compra with an active purchase order.
func progressToPedidoCompra(t *testing.T, db *gorm.DB) *service.RequestSnapshot {
	t.Helper()
	ctx := context.Background()

	transitions := service.NewTransitionService(db, nop)
	approvals := service.NewApprovalService(db, nop)
	quotations := service.NewQuotationService(db)
	reconciliations := service.NewReconciliationService(db, nop)

	created := newRequest(t, db, "1000.00")
	requestID := created.Request.ID

	_, err := transitions.Transition(ctx, requestID, phase.AprovacaoA1, requester)
	require.NoError(t, err)
	_, err = approvals.SubmitApproval(ctx, requestID, approverA.ID, approval.GateA1, true, "")
	require.NoError(t, err)

	quotation, err := quotations.Open(ctx, requestID, deadlineIn(48*time.Hour), buyer)
	require.NoError(t, err)
	view, err := quotations.Get(ctx, quotation.ID)
	require.NoError(t, err)

	items := make([]service.SupplierQuotationItemInput, 0, len(view.Items))
	for _, qi := range view.Items {
		items = append(items, service.SupplierQuotationItemInput{
			QuotationItemID: qi.ID,
			UnitPrice:       decimal.RequireFromString("90.00"),
			AvailableQty:    decimal.NewFromInt(10),
		})
	}
	supplierQuotation, err := quotations.RegisterSupplierQuotation(ctx, quotation.ID, &service.SupplierQuotationInput{
		SupplierID:   "sup-001",
		SupplierName: "Fornecedor Um",
		Items:        items,
	}, buyer)
	require.NoError(t, err)

	result, err := reconciliations.SelectSupplierQuotation(ctx, quotation.ID, supplierQuotation.ID, nil, buyer)
	require.NoError(t, err)
	require.NotNil(t, result.PurchaseOrder)
	require.Equal(t, string(phase.AprovacaoA2), result.Snapshot.Request.CurrentPhase)

	snapshot, err := approvals.SubmitApproval(ctx, requestID, approverA.ID, approval.GateA2, true, "")
	require.NoError(t, err)
	require.Equal(t, string(phase.PedidoCompra), snapshot.Request.CurrentPhase)
	return snapshot
}

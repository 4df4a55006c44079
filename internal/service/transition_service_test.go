package service_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/approval"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/model"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/phase"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/repository"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/service"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/workflow"
)

func TestTransition_Forward(t *testing.T) {
	db := setupTestDB(t)
	svc := service.NewTransitionService(db, nop)
	created := newRequest(t, db, "1000.00")

	snapshot, err := svc.Transition(context.Background(), created.Request.ID, phase.AprovacaoA1, requester)
	require.NoError(t, err)
	assert.Equal(t, string(phase.AprovacaoA1), snapshot.Request.CurrentPhase)
	assert.Equal(t, 2, snapshot.Request.Version)
	// creation plus the move
	assert.Len(t, snapshot.PhaseHistory, 2)
}

func TestTransition_InvalidTarget(t *testing.T) {
	db := setupTestDB(t)
	svc := service.NewTransitionService(db, nop)
	created := newRequest(t, db, "1000.00")

	_, err := svc.Transition(context.Background(), created.Request.ID, phase.Phase("faturamento"), requester)
	assert.True(t, workflow.IsCode(err, workflow.CodeInvalidTransition))
}

func TestTransition_SkippingPhaseRejected(t *testing.T) {
	db := setupTestDB(t)
	svc := service.NewTransitionService(db, nop)
	created := newRequest(t, db, "1000.00")

	_, err := svc.Transition(context.Background(), created.Request.ID, phase.Cotacao, requester)
	assert.True(t, workflow.IsCode(err, workflow.CodeInvalidTransition))
}

func TestTransition_GateBlocksUnapprovedAdvance(t *testing.T) {
	db := setupTestDB(t)
	svc := service.NewTransitionService(db, nop)
	created := newRequest(t, db, "1000.00")

	_, err := svc.Transition(context.Background(), created.Request.ID, phase.AprovacaoA1, requester)
	require.NoError(t, err)

	// gate A1 still pending, cotacao must stay closed
	_, err = svc.Transition(context.Background(), created.Request.ID, phase.Cotacao, requester)
	assert.True(t, workflow.IsCode(err, workflow.CodeGateNotSatisfied))
}

func TestTransition_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	svc := service.NewTransitionService(db, nop)
	created := newRequest(t, db, "1000.00")

	snapshot, err := svc.Transition(context.Background(), created.Request.ID, phase.Solicitacao, requester)
	require.NoError(t, err)
	assert.Equal(t, string(phase.Solicitacao), snapshot.Request.CurrentPhase)
	assert.Equal(t, created.Request.Version, snapshot.Request.Version)
	// no second history row, no new event
	assert.Len(t, snapshot.PhaseHistory, 1)

	var events int64
	require.NoError(t, db.Model(&model.EventModel{}).Where("request_id = ?", created.Request.ID).Count(&events).Error)
	assert.EqualValues(t, 0, events)
}

func TestTransition_DeliveredEventLeavesOutbox(t *testing.T) {
	db := setupTestDB(t)
	gw := &recordingGateway{accept: true}
	svc := service.NewTransitionService(db, gw)
	created := newRequest(t, db, "1000.00")

	_, err := svc.Transition(context.Background(), created.Request.ID, phase.AprovacaoA1, requester)
	require.NoError(t, err)
	require.Equal(t, []string{model.EventPhaseChanged}, gw.types)

	// the accepted event is settled; the dispatcher must not send it again
	var ev model.EventModel
	require.NoError(t, db.Where("request_id = ?", created.Request.ID).First(&ev).Error)
	assert.Equal(t, "delivered", ev.Status)

	pending, err := repository.NewEventRepository(db).FindPending(0)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestTransition_DeclinedEventStaysPending(t *testing.T) {
	db := setupTestDB(t)
	gw := &recordingGateway{accept: false}
	svc := service.NewTransitionService(db, gw)
	created := newRequest(t, db, "1000.00")

	_, err := svc.Transition(context.Background(), created.Request.ID, phase.AprovacaoA1, requester)
	require.NoError(t, err)

	// nothing reached a client, the row waits for the dispatcher
	pending, err := repository.NewEventRepository(db).FindPending(0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, created.Request.ID, pending[0].RequestID)
}

// transitionsRecorded reads the committed-transition counter for one
// target phase from the default prometheus registry.
func transitionsRecorded(t *testing.T, target string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "phase_transitions_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "target" && label.GetValue() == target {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestTransition_MetricsCountCommittedMovesOnly(t *testing.T) {
	db := setupTestDB(t)
	svc := service.NewTransitionService(db, nop)
	created := newRequest(t, db, "1000.00")

	before := transitionsRecorded(t, string(phase.AprovacaoA1))
	_, err := svc.Transition(context.Background(), created.Request.ID, phase.AprovacaoA1, requester)
	require.NoError(t, err)
	assert.Equal(t, before+1, transitionsRecorded(t, string(phase.AprovacaoA1)))

	// the same-phase no-op must not inflate the counter
	noop := transitionsRecorded(t, string(phase.AprovacaoA1))
	_, err = svc.Transition(context.Background(), created.Request.ID, phase.AprovacaoA1, requester)
	require.NoError(t, err)
	assert.Equal(t, noop, transitionsRecorded(t, string(phase.AprovacaoA1)))
}

func TestTransition_TerminalPhase(t *testing.T) {
	db := setupTestDB(t)
	svc := service.NewTransitionService(db, nop)
	created := newRequest(t, db, "1000.00")

	require.NoError(t, db.Model(&model.PurchaseRequestModel{}).
		Where("id = ?", created.Request.ID).
		Update("current_phase", string(phase.Arquivado)).Error)

	for _, target := range phase.All() {
		if target == phase.Arquivado {
			continue
		}
		_, err := svc.Transition(context.Background(), created.Request.ID, target, requester)
		assert.True(t, workflow.IsCode(err, workflow.CodeInvalidTransition),
			"arquivado must not move to %s", target)
	}
}

func TestTransition_BackwardReopensGate(t *testing.T) {
	db := setupTestDB(t)
	transitions := service.NewTransitionService(db, nop)
	approvals := service.NewApprovalService(db, nop)
	created := newRequest(t, db, "1000.00")

	_, err := transitions.Transition(context.Background(), created.Request.ID, phase.AprovacaoA1, requester)
	require.NoError(t, err)
	snapshot, err := approvals.SubmitApproval(context.Background(), created.Request.ID, approverA.ID, approval.GateA1, true, "")
	require.NoError(t, err)
	require.Equal(t, string(phase.Cotacao), snapshot.Request.CurrentPhase)
	require.Equal(t, string(approval.GateApprovedSingle), snapshot.Request.GateA1State)

	// send back for correction: the A1 cycle must reopen
	snapshot, err = transitions.Transition(context.Background(), created.Request.ID, phase.Solicitacao, requester)
	require.NoError(t, err)
	assert.Equal(t, string(phase.Solicitacao), snapshot.Request.CurrentPhase)
	assert.Equal(t, string(approval.GatePending), snapshot.Request.GateA1State)
	assert.Nil(t, snapshot.Request.GateA1FirstApproverID)

	// the approval ledger keeps the first cycle's record
	assert.Len(t, snapshot.ApprovalHistory, 1)
}

func TestTransition_RegressionVoidsPurchaseOrder(t *testing.T) {
	db := setupTestDB(t)
	transitions := service.NewTransitionService(db, nop)

	snapshot := progressToPedidoCompra(t, db)
	requestID := snapshot.Request.ID
	require.NotNil(t, snapshot.PurchaseOrder)
	orderID := snapshot.PurchaseOrder.ID

	// pedido_compra back to aprovacao_a2 deletes the order and its items
	snapshot, err := transitions.Transition(context.Background(), requestID, phase.AprovacaoA2, buyer)
	require.NoError(t, err)
	assert.Equal(t, string(phase.AprovacaoA2), snapshot.Request.CurrentPhase)
	assert.Nil(t, snapshot.PurchaseOrder)
	assert.Equal(t, string(approval.GatePending), snapshot.Request.GateA2State)

	var orders int64
	require.NoError(t, db.Model(&model.PurchaseOrderModel{}).Where("id = ?", orderID).Count(&orders).Error)
	assert.EqualValues(t, 0, orders)
	var orderItems int64
	require.NoError(t, db.Model(&model.PurchaseOrderItemModel{}).Where("order_id = ?", orderID).Count(&orderItems).Error)
	assert.EqualValues(t, 0, orderItems)

	// the void is visible in the outbox
	var voided int64
	require.NoError(t, db.Model(&model.EventModel{}).
		Where("request_id = ? AND type = ?", requestID, model.EventOrderVoided).
		Count(&voided).Error)
	assert.EqualValues(t, 1, voided)
}

func TestTransition_ForwardAfterRegressionNeedsFreshApproval(t *testing.T) {
	db := setupTestDB(t)
	transitions := service.NewTransitionService(db, nop)

	snapshot := progressToPedidoCompra(t, db)
	requestID := snapshot.Request.ID

	_, err := transitions.Transition(context.Background(), requestID, phase.AprovacaoA2, buyer)
	require.NoError(t, err)

	// the old A2 approval no longer counts
	_, err = transitions.Transition(context.Background(), requestID, phase.PedidoCompra, buyer)
	assert.True(t, workflow.IsCode(err, workflow.CodeGateNotSatisfied))
}

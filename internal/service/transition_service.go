package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/approval"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/auth"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/metrics"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/model"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/notify"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/phase"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/repository"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/workflow"
	"gorm.io/gorm"
)

// TransitionService is the phase transition controller. Every phase
// change of a purchase request goes through here: preconditions are
// checked against the phase registry and the approval gates, the phase
// write, its audit entry and its outbox event commit atomically, and
// the notification gateway is nudged only after commit.
type TransitionService interface {
	Transition(ctx context.Context, requestID string, target phase.Phase, actor *auth.Actor) (*RequestSnapshot, error)
}

// transitionService is the default implementation.
type transitionService struct {
	db      *gorm.DB
	gateway notify.Gateway
}

// NewTransitionService creates a transition service.
func NewTransitionService(db *gorm.DB, gateway notify.Gateway) TransitionService {
	return &transitionService{db: db, gateway: gateway}
}

// pendingEvent is an outbox row written during a transaction, to be
// pushed through the gateway once the transaction commits.
type pendingEvent struct {
	id        string
	eventType string
	requestID string
	phase     string
	payload   interface{}
}

// flushEvents pushes committed outbox rows through the gateway. Rows
// the gateway accepted are marked delivered so the dispatcher does not
// broadcast them a second time; everything the gateway declined stays
// pending for the dispatcher to retry.
func flushEvents(db *gorm.DB, gateway notify.Gateway, emitted []pendingEvent) {
	events := repository.NewEventRepository(db)
	for _, ev := range emitted {
		if !gateway.Emit(ev.eventType, ev.requestID, ev.phase, ev.payload) {
			continue
		}
		if err := events.MarkDelivered(ev.id); err != nil {
			// the dispatcher re-sends this row once; delivery stays
			// at-least-once either way
			logrus.WithError(err).WithField("event_id", ev.id).Warn("failed to mark event delivered")
		}
	}
}

// Transition moves a request to the target phase.
func (s *transitionService) Transition(ctx context.Context, requestID string, target phase.Phase, actor *auth.Actor) (*RequestSnapshot, error) {
	if !phase.Valid(target) {
		return nil, workflow.NewError(workflow.CodeInvalidTransition, requestID, "unknown target phase %q", target)
	}

	var emitted []pendingEvent
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		requests := repository.NewRequestRepository(tx)
		request, err := requests.FindByID(requestID)
		if err != nil {
			return fmt.Errorf("failed to load request %s: %w", requestID, err)
		}

		current := phase.Phase(request.CurrentPhase)
		if current == target {
			// idempotent no-op: same snapshot, no side effects
			return nil
		}

		events, err := applyPhaseChange(tx, request, target, actor, "")
		if err != nil {
			return err
		}
		emitted = events
		return nil
	})
	if err != nil {
		return nil, err
	}

	flushEvents(s.db.WithContext(ctx), s.gateway, emitted)
	if len(emitted) > 0 {
		metrics.RecordTransition(string(target))
	}

	return LoadSnapshot(s.db.WithContext(ctx), requestID)
}

// applyPhaseChange validates and commits one phase move inside tx. It
// enforces the registry, the approval gates and the compensating
// purchase order deletion, appends the phase history row and the
// outbox events, and bumps the request version. The returned events
// must be handed to the gateway only after tx commits.
func applyPhaseChange(tx *gorm.DB, request *model.PurchaseRequestModel, target phase.Phase, actor *auth.Actor, reason string) ([]pendingEvent, error) {
	current := phase.Phase(request.CurrentPhase)

	// (a) the registry must allow the move
	if !phase.IsValidTransition(current, target) {
		return nil, workflow.NewError(workflow.CodeInvalidTransition, request.ID,
			"phase %s is not reachable from %s", target, current)
	}

	// (b) forward moves past an approval gate need the gate satisfied
	if !phase.IsBackward(current, target) {
		if gate, ok := phase.RequiresGate(target); ok {
			state := gateState(request, gate)
			if !state.Satisfied() {
				return nil, workflow.NewError(workflow.CodeGateNotSatisfied, request.ID,
					"gate %s is %s, approval required before entering %s", gate, state, target)
			}
		}
	}

	var events []pendingEvent

	// (c) regressing before pedido_compra voids any active order
	if phase.IsBackward(current, target) && phase.Index(target) < phase.Index(phase.PedidoCompra) {
		orders := repository.NewPurchaseOrderRepository(tx)
		order, err := orders.FindActiveByRequestID(request.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up active order: %w", err)
		}
		if order != nil {
			if err := orders.DeleteWithItems(order.ID); err != nil {
				return nil, fmt.Errorf("failed to void order %s: %w", order.ID, err)
			}
			ev, err := appendEvent(tx, request.ID, model.EventOrderVoided, string(target), map[string]interface{}{
				"order_id":     order.ID,
				"order_number": order.OrderNumber,
			})
			if err != nil {
				return nil, err
			}
			events = append(events, ev)
		}
	}

	// a regression past a gate opens a fresh approval cycle there
	if phase.IsBackward(current, target) {
		resetGatesFrom(request, target)
	}

	request.CurrentPhase = string(target)
	requests := repository.NewRequestRepository(tx)
	ok, err := requests.UpdateVersioned(request)
	if err != nil {
		return nil, fmt.Errorf("failed to write request %s: %w", request.ID, err)
	}
	if !ok {
		return nil, workflow.NewError(workflow.CodeConcurrentModification, request.ID,
			"request changed between read and commit")
	}

	histories := repository.NewPhaseHistoryRepository(tx)
	if err := histories.Append(&model.PhaseHistoryModel{
		ID:        uuid.NewString(),
		RequestID: request.ID,
		FromPhase: string(current),
		ToPhase:   string(target),
		Reason:    reason,
		ActorID:   actor.ID,
		CreatedAt: time.Now(),
	}); err != nil {
		return nil, fmt.Errorf("failed to append phase history: %w", err)
	}

	ev, err := appendEvent(tx, request.ID, model.EventPhaseChanged, string(target), map[string]interface{}{
		"from":  string(current),
		"to":    string(target),
		"actor": actor.ID,
	})
	if err != nil {
		return nil, err
	}
	events = append(events, ev)
	return events, nil
}

// appendEvent writes one outbox row inside tx.
func appendEvent(tx *gorm.DB, requestID, eventType, phaseName string, payload map[string]interface{}) (pendingEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return pendingEvent{}, fmt.Errorf("failed to encode event payload: %w", err)
	}
	now := time.Now()
	id := uuid.NewString()
	eventsRepo := repository.NewEventRepository(tx)
	if err := eventsRepo.Save(&model.EventModel{
		ID:        id,
		RequestID: requestID,
		Type:      eventType,
		Phase:     phaseName,
		Data:      data,
		Status:    "pending",
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return pendingEvent{}, fmt.Errorf("failed to append outbox event: %w", err)
	}
	return pendingEvent{id: id, eventType: eventType, requestID: requestID, phase: phaseName, payload: payload}, nil
}

// gateState reads the tagged state of one approval gate.
func gateState(request *model.PurchaseRequestModel, gate phase.Phase) approval.GateState {
	switch gate {
	case phase.AprovacaoA1:
		return approval.GateState(request.GateA1State)
	case phase.AprovacaoA2:
		return approval.GateState(request.GateA2State)
	}
	return approval.GatePending
}

// resetGatesFrom reopens the approval cycle of every gate at or after
// the regression target.
func resetGatesFrom(request *model.PurchaseRequestModel, target phase.Phase) {
	if phase.Index(target) <= phase.Index(phase.AprovacaoA1) {
		request.GateA1State = string(approval.GatePending)
		request.GateA1FirstApproverID = nil
		request.GateA1FirstApprovedAt = nil
		request.GateA1SecondApproverID = nil
		request.GateA1SecondApprovedAt = nil
	}
	if phase.Index(target) <= phase.Index(phase.AprovacaoA2) {
		request.GateA2State = string(approval.GatePending)
		request.GateA2FirstApproverID = nil
		request.GateA2FirstApprovedAt = nil
		request.GateA2SecondApproverID = nil
		request.GateA2SecondApprovedAt = nil
	}
}

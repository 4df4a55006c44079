package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
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

// ApprovalService records approval decisions against the gates of a
// request. Whether one or two signatures are needed comes from the
// policy engine, evaluated against the configuration active at
// decision time; the decision context is frozen into the history row.
type ApprovalService interface {
	SubmitApproval(ctx context.Context, requestID string, approverID string, gate approval.Gate, approved bool, reason string) (*RequestSnapshot, error)
}

// approvalService is the default implementation.
type approvalService struct {
	db      *gorm.DB
	gateway notify.Gateway
}

// NewApprovalService creates an approval service.
func NewApprovalService(db *gorm.DB, gateway notify.Gateway) ApprovalService {
	return &approvalService{db: db, gateway: gateway}
}

// gatePhase maps a gate to the workflow phase where it is decided.
func gatePhase(gate approval.Gate) phase.Phase {
	if gate == approval.GateA1 {
		return phase.AprovacaoA1
	}
	return phase.AprovacaoA2
}

// correctionPhase is where a rejection sends the request: the phase
// directly before the gate.
func correctionPhase(gate approval.Gate) phase.Phase {
	if gate == approval.GateA1 {
		return phase.Solicitacao
	}
	return phase.Cotacao
}

// SubmitApproval records one approval or rejection at a gate.
func (s *approvalService) SubmitApproval(ctx context.Context, requestID string, approverID string, gate approval.Gate, approved bool, reason string) (*RequestSnapshot, error) {
	if approverID == "" {
		return nil, fmt.Errorf("approver ID is required")
	}
	if !approved && reason == "" {
		return nil, fmt.Errorf("rejection requires a reason")
	}

	actor := &auth.Actor{ID: approverID}
	var emitted []pendingEvent

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		requests := repository.NewRequestRepository(tx)
		request, err := requests.FindByID(requestID)
		if err != nil {
			return fmt.Errorf("failed to load request %s: %w", requestID, err)
		}

		expected := gatePhase(gate)
		if phase.Phase(request.CurrentPhase) != expected {
			return workflow.NewError(workflow.CodeInvalidTransition, requestID,
				"gate %s decisions are only accepted in phase %s, request is in %s",
				gate, expected, request.CurrentPhase)
		}

		state := approval.GateState(gateStateField(request, gate))
		if state.Terminal() {
			return workflow.NewError(workflow.CodeInvalidTransition, requestID,
				"gate %s cycle already closed as %s", gate, state)
		}

		decision, err := evaluatePolicy(tx, request.TotalValue)
		if err != nil {
			return err
		}
		request.RequiresDualApproval = decision.RequiresDualApproval

		step := 1
		if state == approval.GateApprovedStep1 {
			step = 2
		}

		if !approved {
			return s.reject(tx, request, gate, approverID, step, reason, decision, &emitted)
		}

		switch {
		case state == approval.GatePending && !decision.RequiresDualApproval:
			setGateState(request, gate, approval.GateApprovedSingle, approverID, nil)
		case state == approval.GatePending && decision.RequiresDualApproval:
			setGateState(request, gate, approval.GateApprovedStep1, approverID, nil)
		case state == approval.GateApprovedStep1:
			first := gateFirstApprover(request, gate)
			if first != nil && *first == approverID {
				return workflow.NewError(workflow.CodeDuplicateApprover, requestID,
					"approver %s already signed step 1 of gate %s", approverID, gate)
			}
			setGateState(request, gate, approval.GateApprovedFinal, "", &approverID)
		}

		if err := appendApprovalRecord(tx, request, gate, approverID, step, true, reason, decision); err != nil {
			return err
		}

		newState := approval.GateState(gateStateField(request, gate))
		if newState.Satisfied() {
			next, _ := phase.NextPhase(gatePhase(gate))
			events, err := applyPhaseChange(tx, request, next, actor, "approval granted")
			if err != nil {
				return err
			}
			emitted = append(emitted, events...)
		} else {
			// step 1 of a dual approval: persist the gate state without
			// moving the phase
			ok, err := requests.UpdateVersioned(request)
			if err != nil {
				return fmt.Errorf("failed to write request %s: %w", requestID, err)
			}
			if !ok {
				return workflow.NewError(workflow.CodeConcurrentModification, requestID,
					"request changed between read and commit")
			}
		}

		ev, err := appendEvent(tx, request.ID, model.EventApprovalRecorded, request.CurrentPhase, map[string]interface{}{
			"gate":     string(gate),
			"step":     step,
			"approver": approverID,
			"approved": true,
		})
		if err != nil {
			return err
		}
		emitted = append(emitted, ev)
		return nil
	})
	if err != nil {
		return nil, err
	}

	flushEvents(s.db.WithContext(ctx), s.gateway, emitted)
	result := "approve"
	if !approved {
		result = "reject"
	}
	metrics.RecordApproval(string(gate), result)

	return LoadSnapshot(s.db.WithContext(ctx), requestID)
}

// reject closes the gate cycle and returns the request to the
// correction phase before the gate.
func (s *approvalService) reject(tx *gorm.DB, request *model.PurchaseRequestModel, gate approval.Gate, approverID string, step int, reason string, decision approval.Decision, emitted *[]pendingEvent) error {
	setGateState(request, gate, approval.GateRejected, "", nil)

	if err := appendApprovalRecord(tx, request, gate, approverID, step, false, reason, decision); err != nil {
		return err
	}

	events, err := applyPhaseChange(tx, request, correctionPhase(gate), &auth.Actor{ID: approverID}, reason)
	if err != nil {
		return err
	}
	*emitted = append(*emitted, events...)

	ev, err := appendEvent(tx, request.ID, model.EventRequestRejected, request.CurrentPhase, map[string]interface{}{
		"gate":     string(gate),
		"step":     step,
		"approver": approverID,
		"reason":   reason,
	})
	if err != nil {
		return err
	}
	*emitted = append(*emitted, ev)
	return nil
}

// evaluatePolicy runs the pure policy engine against the active
// configuration.
func evaluatePolicy(tx *gorm.DB, totalValue decimal.Decimal) (approval.Decision, error) {
	configs := repository.NewApprovalConfigurationRepository(tx)
	cfg, err := configs.Active()
	if err != nil {
		return approval.Decision{}, fmt.Errorf("no active approval configuration: %w", err)
	}
	return approval.Evaluate(totalValue, approval.Configuration{
		Threshold:     cfg.Threshold,
		EffectiveFrom: cfg.EffectiveFrom,
	}), nil
}

// appendApprovalRecord writes the immutable ledger row for a decision.
func appendApprovalRecord(tx *gorm.DB, request *model.PurchaseRequestModel, gate approval.Gate, approverID string, step int, approved bool, reason string, decision approval.Decision) error {
	histories := repository.NewApprovalHistoryRepository(tx)
	return histories.Append(&model.ApprovalHistoryModel{
		ID:             uuid.NewString(),
		RequestID:      request.ID,
		Gate:           string(gate),
		Step:           step,
		ApproverID:     approverID,
		Approved:       approved,
		Reason:         reason,
		RequiredDual:   decision.RequiresDualApproval,
		EvaluatedValue: request.TotalValue,
		CreatedAt:      time.Now(),
	})
}

// gateStateField reads the raw gate state column.
func gateStateField(request *model.PurchaseRequestModel, gate approval.Gate) string {
	if gate == approval.GateA1 {
		return request.GateA1State
	}
	return request.GateA2State
}

// gateFirstApprover reads the step 1 signer of a gate.
func gateFirstApprover(request *model.PurchaseRequestModel, gate approval.Gate) *string {
	if gate == approval.GateA1 {
		return request.GateA1FirstApproverID
	}
	return request.GateA2FirstApproverID
}

// setGateState writes a gate's tagged state and signer columns. Pass
// first for a step 1 signature, second for a step 2 signature.
func setGateState(request *model.PurchaseRequestModel, gate approval.Gate, state approval.GateState, first string, second *string) {
	now := time.Now()
	if gate == approval.GateA1 {
		request.GateA1State = string(state)
		if first != "" {
			request.GateA1FirstApproverID = &first
			request.GateA1FirstApprovedAt = &now
		}
		if second != nil {
			request.GateA1SecondApproverID = second
			request.GateA1SecondApprovedAt = &now
		}
		return
	}
	request.GateA2State = string(state)
	if first != "" {
		request.GateA2FirstApproverID = &first
		request.GateA2FirstApprovedAt = &now
	}
	if second != nil {
		request.GateA2SecondApproverID = second
		request.GateA2SecondApprovedAt = &now
	}
}

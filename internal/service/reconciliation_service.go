package service

import (
	"context"
	"fmt"
	"strings"
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

// ReconciliationService turns a buyer's supplier selection into a
// purchase order for the fulfilled items and, when the supplier could
// not cover everything, a derived request that re-enters the workflow
// with the leftovers. The whole run is one transaction: a failure at
// any step leaves no partial order and no half-created derived request.
type ReconciliationService interface {
	SelectSupplierQuotation(ctx context.Context, quotationID string, supplierQuotationID string, unavailableItemIDs []string, actor *auth.Actor) (*ReconciliationResult, error)
}

// ReconciliationResult is what a supplier selection produced.
type ReconciliationResult struct {
	PurchaseOrder  *model.PurchaseOrderModel       `json:"purchase_order,omitempty"`
	OrderItems     []*model.PurchaseOrderItemModel `json:"order_items,omitempty"`
	DerivedRequest *model.PurchaseRequestModel     `json:"derived_request,omitempty"`
	Snapshot       *RequestSnapshot                `json:"snapshot"`
}

// reconciliationService is the default implementation.
type reconciliationService struct {
	db      *gorm.DB
	gateway notify.Gateway
}

// NewReconciliationService creates a reconciliation service.
func NewReconciliationService(db *gorm.DB, gateway notify.Gateway) ReconciliationService {
	return &reconciliationService{db: db, gateway: gateway}
}

// SelectSupplierQuotation finalizes the buyer's choice for an RFQ.
func (s *reconciliationService) SelectSupplierQuotation(ctx context.Context, quotationID string, supplierQuotationID string, unavailableItemIDs []string, actor *auth.Actor) (*ReconciliationResult, error) {
	excluded := make(map[string]bool, len(unavailableItemIDs))
	for _, id := range unavailableItemIDs {
		excluded[id] = true
	}

	var (
		emitted   []pendingEvent
		requestID string
		result    ReconciliationResult
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quotations := repository.NewQuotationRepository(tx)
		quotation, err := quotations.FindByID(quotationID)
		if err != nil {
			return fmt.Errorf("failed to load quotation %s: %w", quotationID, err)
		}
		requestID = quotation.RequestID

		requests := repository.NewRequestRepository(tx)
		request, err := requests.FindByID(quotation.RequestID)
		if err != nil {
			return fmt.Errorf("failed to load request %s: %w", quotation.RequestID, err)
		}
		if phase.Phase(request.CurrentPhase) != phase.Cotacao {
			return workflow.NewError(workflow.CodeInvalidTransition, request.ID,
				"supplier selection is only accepted in phase %s, request is in %s",
				phase.Cotacao, request.CurrentPhase)
		}

		supplierQuotation, err := quotations.FindSupplierQuotation(supplierQuotationID)
		if err != nil {
			return fmt.Errorf("failed to load supplier quotation %s: %w", supplierQuotationID, err)
		}
		if supplierQuotation.QuotationID != quotationID {
			return fmt.Errorf("supplier quotation %s does not answer quotation %s", supplierQuotationID, quotationID)
		}

		// at most one chosen response per quotation
		if err := quotations.ClearChosen(quotationID); err != nil {
			return fmt.Errorf("failed to reset chosen supplier: %w", err)
		}
		supplierQuotation.IsChosen = true
		supplierQuotation.UpdatedAt = time.Now()
		if err := quotations.SaveSupplierQuotation(supplierQuotation); err != nil {
			return fmt.Errorf("failed to mark chosen supplier: %w", err)
		}

		quotationItems, err := quotations.FindItems(quotationID)
		if err != nil {
			return fmt.Errorf("failed to load quotation items: %w", err)
		}
		supplierItems, err := quotations.FindSupplierQuotationItems(supplierQuotationID)
		if err != nil {
			return fmt.Errorf("failed to load supplier quotation items: %w", err)
		}
		requestItems, err := requests.FindItems(request.ID)
		if err != nil {
			return fmt.Errorf("failed to load request items: %w", err)
		}

		supplierByQuotationItem := make(map[string]*model.SupplierQuotationItemModel, len(supplierItems))
		for _, si := range supplierItems {
			supplierByQuotationItem[si.QuotationItemID] = si
		}

		var fulfilled []matchedItem
		var unfulfilled []*model.RequestItemModel
		for _, item := range requestItems {
			if item.IsTransferred {
				continue
			}
			if excluded[item.ID] {
				unfulfilled = append(unfulfilled, item)
				continue
			}

			supplierItem := resolveSupplierItem(item, quotationItems, supplierByQuotationItem)
			if supplierItem == nil {
				return workflow.NewError(workflow.CodeReconciliationMatch, request.ID,
					"no priced supplier line matches item %s (%s)", item.ID, item.Description)
			}
			if !supplierItem.IsAvailable || !supplierItem.AvailableQty.IsPositive() {
				unfulfilled = append(unfulfilled, item)
				continue
			}
			fulfilled = append(fulfilled, matchedItem{request: item, supplier: supplierItem})
		}

		orders := repository.NewPurchaseOrderRepository(tx)

		if len(fulfilled) > 0 {
			order, orderItems, err := createOrder(orders, request, supplierQuotation, fulfilled, actor)
			if err != nil {
				return err
			}
			result.PurchaseOrder = order
			result.OrderItems = orderItems

			ev, err := appendEvent(tx, request.ID, model.EventOrderCreated, request.CurrentPhase, map[string]interface{}{
				"order_id":     order.ID,
				"order_number": order.OrderNumber,
				"supplier_id":  order.SupplierID,
				"total_value":  order.TotalValue.String(),
			})
			if err != nil {
				return err
			}
			emitted = append(emitted, ev)

			// approved quantities follow the supplier's availability
			for _, m := range fulfilled {
				qty := m.supplier.AvailableQty
				m.request.ApprovedQty = &qty
				m.request.UpdatedAt = time.Now()
				if err := requests.SaveItem(m.request); err != nil {
					return fmt.Errorf("failed to write item %s: %w", m.request.ID, err)
				}
			}
		}

		if len(unfulfilled) > 0 {
			derived, err := s.deriveRequest(tx, request, unfulfilled, result.PurchaseOrder, actor)
			if err != nil {
				return err
			}
			result.DerivedRequest = derived
			request.DerivedRequestID = &derived.ID

			ev, err := appendEvent(tx, request.ID, model.EventRequestDerived, request.CurrentPhase, map[string]interface{}{
				"derived_request_id": derived.ID,
				"item_count":         len(unfulfilled),
			})
			if err != nil {
				return err
			}
			emitted = append(emitted, ev)
		}

		ev, err := appendEvent(tx, request.ID, model.EventRequestReconciled, request.CurrentPhase, map[string]interface{}{
			"fulfilled":   len(fulfilled),
			"unfulfilled": len(unfulfilled),
		})
		if err != nil {
			return err
		}
		emitted = append(emitted, ev)

		if len(fulfilled) == 0 {
			// nothing to order: the request stays in cotacao and only
			// the derived request moves on
			ok, err := requests.UpdateVersioned(request)
			if err != nil {
				return fmt.Errorf("failed to write request %s: %w", request.ID, err)
			}
			if !ok {
				return workflow.NewError(workflow.CodeConcurrentModification, request.ID,
					"request changed between read and commit")
			}
			return nil
		}

		// the original now covers only what the supplier delivers
		request.TotalValue = result.PurchaseOrder.TotalValue

		quotation.Status = "closed"
		quotation.UpdatedAt = time.Now()
		if err := quotations.Save(quotation); err != nil {
			return fmt.Errorf("failed to close quotation: %w", err)
		}

		events, err := applyPhaseChange(tx, request, phase.AprovacaoA2, actor, "supplier selection finalized")
		if err != nil {
			return err
		}
		emitted = append(emitted, events...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	flushEvents(s.db.WithContext(ctx), s.gateway, emitted)
	metrics.RecordReconciliation(result.PurchaseOrder != nil, result.DerivedRequest != nil)

	snapshot, err := LoadSnapshot(s.db.WithContext(ctx), requestID)
	if err != nil {
		return nil, err
	}
	result.Snapshot = snapshot
	return &result, nil
}

// matchedItem pairs a request item with the supplier line that covers it.
type matchedItem struct {
	request  *model.RequestItemModel
	supplier *model.SupplierQuotationItemModel
}

// resolveSupplierItem finds the supplier line answering a request item.
// The request item id through the quotation item linkage is canonical;
// case-insensitive description equality is the documented degraded path
// for quotation lines without the linkage.
func resolveSupplierItem(item *model.RequestItemModel, quotationItems []*model.QuotationItemModel, supplierByQuotationItem map[string]*model.SupplierQuotationItemModel) *model.SupplierQuotationItemModel {
	for _, qi := range quotationItems {
		if qi.RequestItemID != nil && *qi.RequestItemID == item.ID {
			return supplierByQuotationItem[qi.ID]
		}
	}
	for _, qi := range quotationItems {
		if qi.RequestItemID == nil && strings.EqualFold(qi.Description, item.Description) {
			return supplierByQuotationItem[qi.ID]
		}
	}
	return nil
}

// createOrder builds the purchase order, copying price fields verbatim
// from the matched supplier lines. No recomputation happens here or
// later; the order total is the exact sum of the copied line totals.
func createOrder(orders repository.PurchaseOrderRepository, request *model.PurchaseRequestModel, supplierQuotation *model.SupplierQuotationModel, fulfilled []matchedItem, actor *auth.Actor) (*model.PurchaseOrderModel, []*model.PurchaseOrderItemModel, error) {
	existing, err := orders.FindActiveByRequestID(request.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check active order: %w", err)
	}
	if existing != nil {
		return nil, nil, fmt.Errorf("request %s already has active order %s", request.ID, existing.ID)
	}

	now := time.Now()
	total := decimal.Zero
	for _, m := range fulfilled {
		total = total.Add(m.supplier.TotalPrice)
	}

	order := &model.PurchaseOrderModel{
		ID:           uuid.NewString(),
		OrderNumber:  newDocumentNumber("PC"),
		RequestID:    request.ID,
		SupplierID:   supplierQuotation.SupplierID,
		SupplierName: supplierQuotation.SupplierName,
		TotalValue:   total,
		Status:       "active",
		CreatedBy:    actor.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := orders.Create(order); err != nil {
		return nil, nil, fmt.Errorf("failed to create order: %w", err)
	}

	items := make([]*model.PurchaseOrderItemModel, 0, len(fulfilled))
	for _, m := range fulfilled {
		item := &model.PurchaseOrderItemModel{
			ID:            uuid.NewString(),
			OrderID:       order.ID,
			RequestItemID: m.request.ID,
			Description:   m.request.Description,
			Unit:          m.request.Unit,
			Quantity:      m.supplier.AvailableQty,
			UnitPrice:     m.supplier.UnitPrice,
			TotalPrice:    m.supplier.TotalPrice,
			CreatedAt:     now,
		}
		if err := orders.CreateItem(item); err != nil {
			return nil, nil, fmt.Errorf("failed to create order item: %w", err)
		}
		items = append(items, item)
	}
	return order, items, nil
}

// deriveRequest spins the unfulfilled items off into a new request
// owned by the same requester and cost center, re-entering the
// workflow at solicitacao with its own policy evaluation.
func (s *reconciliationService) deriveRequest(tx *gorm.DB, parent *model.PurchaseRequestModel, unfulfilled []*model.RequestItemModel, order *model.PurchaseOrderModel, actor *auth.Actor) (*model.PurchaseRequestModel, error) {
	requests := repository.NewRequestRepository(tx)
	now := time.Now()

	// the leftover share of the parent's estimate travels with the
	// derived request; the fulfilled share stays behind as the order
	// total
	derivedTotal := parent.TotalValue
	if order != nil {
		derivedTotal = derivedTotal.Sub(order.TotalValue)
	}
	if derivedTotal.IsNegative() {
		derivedTotal = decimal.Zero
	}

	decision, err := evaluatePolicy(tx, derivedTotal)
	if err != nil {
		return nil, err
	}

	derived := &model.PurchaseRequestModel{
		ID:                   uuid.NewString(),
		RequestNumber:        newDocumentNumber("SOL"),
		RequesterID:          parent.RequesterID,
		CostCenter:           parent.CostCenter,
		Department:           parent.Department,
		Urgency:              parent.Urgency,
		Justification:        fmt.Sprintf("items not fulfilled by supplier selection of %s", parent.RequestNumber),
		TotalValue:           derivedTotal,
		CurrentPhase:         string(phase.Solicitacao),
		Version:              1,
		RequiresDualApproval: decision.RequiresDualApproval,
		GateA1State:          string(approval.GatePending),
		GateA2State:          string(approval.GatePending),
		ParentRequestID:      &parent.ID,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := requests.Create(derived); err != nil {
		return nil, fmt.Errorf("failed to create derived request: %w", err)
	}

	for _, item := range unfulfilled {
		copied := &model.RequestItemModel{
			ID:           uuid.NewString(),
			RequestID:    derived.ID,
			Description:  item.Description,
			Unit:         item.Unit,
			RequestedQty: item.RequestedQty,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := requests.CreateItem(copied); err != nil {
			return nil, fmt.Errorf("failed to copy item %s: %w", item.ID, err)
		}

		item.IsTransferred = true
		item.TransferredToRequestID = &derived.ID
		item.UpdatedAt = now
		if err := requests.SaveItem(item); err != nil {
			return nil, fmt.Errorf("failed to mark item %s transferred: %w", item.ID, err)
		}
	}

	histories := repository.NewPhaseHistoryRepository(tx)
	if err := histories.Append(&model.PhaseHistoryModel{
		ID:        uuid.NewString(),
		RequestID: derived.ID,
		FromPhase: "",
		ToPhase:   string(phase.Solicitacao),
		Reason:    "derived from " + parent.RequestNumber,
		ActorID:   actor.ID,
		CreatedAt: now,
	}); err != nil {
		return nil, fmt.Errorf("failed to append derived phase history: %w", err)
	}

	return derived, nil
}

// newDocumentNumber builds a human-facing document number with the
// given prefix.
func newDocumentNumber(prefix string) string {
	return fmt.Sprintf("%s-%s-%s",
		prefix,
		time.Now().Format("20060102"),
		strings.ToUpper(uuid.NewString()[:8]))
}

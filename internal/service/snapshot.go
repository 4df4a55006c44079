package service

import (
	"fmt"

	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/model"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/repository"
	"gorm.io/gorm"
)

// RequestSnapshot is a materialized, fully consistent view of a
// request and everything hanging off it. Operations return snapshots,
// never partial results.
type RequestSnapshot struct {
	Request         *model.PurchaseRequestModel   `json:"request"`
	Items           []*model.RequestItemModel     `json:"items"`
	Quotation       *model.QuotationModel         `json:"quotation,omitempty"`
	PurchaseOrder   *model.PurchaseOrderModel     `json:"purchase_order,omitempty"`
	OrderItems      []*model.PurchaseOrderItemModel `json:"order_items,omitempty"`
	ApprovalHistory []*model.ApprovalHistoryModel `json:"approval_history"`
	PhaseHistory    []*model.PhaseHistoryModel    `json:"phase_history"`
}

// LoadSnapshot assembles the snapshot of one request.
func LoadSnapshot(db *gorm.DB, requestID string) (*RequestSnapshot, error) {
	requests := repository.NewRequestRepository(db)
	request, err := requests.FindByID(requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load request %s: %w", requestID, err)
	}

	items, err := requests.FindItems(requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load items of %s: %w", requestID, err)
	}

	snapshot := &RequestSnapshot{Request: request, Items: items}

	quotations := repository.NewQuotationRepository(db)
	if quotation, err := quotations.FindByRequestID(requestID); err == nil {
		snapshot.Quotation = quotation
	}

	orders := repository.NewPurchaseOrderRepository(db)
	order, err := orders.FindActiveByRequestID(requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order of %s: %w", requestID, err)
	}
	if order != nil {
		snapshot.PurchaseOrder = order
		orderItems, err := orders.FindItems(order.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load order items of %s: %w", order.ID, err)
		}
		snapshot.OrderItems = orderItems
	}

	approvals := repository.NewApprovalHistoryRepository(db)
	snapshot.ApprovalHistory, err = approvals.FindByRequestID(requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load approval history of %s: %w", requestID, err)
	}

	phases := repository.NewPhaseHistoryRepository(db)
	snapshot.PhaseHistory, err = phases.FindByRequestID(requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load phase history of %s: %w", requestID, err)
	}

	return snapshot, nil
}

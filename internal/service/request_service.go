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
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/phase"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/repository"
	"gorm.io/gorm"
)

// RequestService is the intake surface for purchase requests.
type RequestService interface {
	Create(ctx context.Context, input *CreateRequestInput, actor *auth.Actor) (*RequestSnapshot, error)
	Get(ctx context.Context, id string) (*RequestSnapshot, error)
	List(ctx context.Context, filter *repository.RequestFilter) ([]*model.PurchaseRequestModel, error)
}

// CreateRequestInput carries a new request and its items.
type CreateRequestInput struct {
	CostCenter    string            `json:"cost_center" binding:"required"`
	Department    string            `json:"department"`
	Urgency       string            `json:"urgency"`
	Justification string            `json:"justification"`
	TotalValue    decimal.Decimal   `json:"total_value" binding:"required"`
	Items         []CreateItemInput `json:"items" binding:"required,min=1,dive"`
}

// CreateItemInput carries one requested line item.
type CreateItemInput struct {
	Description  string          `json:"description" binding:"required"`
	Unit         string          `json:"unit" binding:"required"`
	RequestedQty decimal.Decimal `json:"requested_qty" binding:"required"`
}

// requestService is the default implementation.
type requestService struct {
	db *gorm.DB
}

// NewRequestService creates a request service.
func NewRequestService(db *gorm.DB) RequestService {
	return &requestService{db: db}
}

// Create opens a new request in the solicitacao phase.
func (s *requestService) Create(ctx context.Context, input *CreateRequestInput, actor *auth.Actor) (*RequestSnapshot, error) {
	urgency := input.Urgency
	if urgency == "" {
		urgency = "normal"
	}

	now := time.Now()
	request := &model.PurchaseRequestModel{
		ID:            uuid.NewString(),
		RequestNumber: newDocumentNumber("SOL"),
		RequesterID:   actor.ID,
		CostCenter:    input.CostCenter,
		Department:    input.Department,
		Urgency:       urgency,
		Justification: input.Justification,
		TotalValue:    input.TotalValue,
		CurrentPhase:  string(phase.Solicitacao),
		Version:       1,
		GateA1State:   string(approval.GatePending),
		GateA2State:   string(approval.GatePending),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		requests := repository.NewRequestRepository(tx)
		if err := requests.Create(request); err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		for _, in := range input.Items {
			item := &model.RequestItemModel{
				ID:           uuid.NewString(),
				RequestID:    request.ID,
				Description:  in.Description,
				Unit:         in.Unit,
				RequestedQty: in.RequestedQty,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := requests.CreateItem(item); err != nil {
				return fmt.Errorf("failed to create item: %w", err)
			}
		}

		histories := repository.NewPhaseHistoryRepository(tx)
		return histories.Append(&model.PhaseHistoryModel{
			ID:        uuid.NewString(),
			RequestID: request.ID,
			FromPhase: "",
			ToPhase:   string(phase.Solicitacao),
			Reason:    "request created",
			ActorID:   actor.ID,
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordRequestCreated()
	return LoadSnapshot(s.db.WithContext(ctx), request.ID)
}

// Get returns the materialized snapshot of one request.
func (s *requestService) Get(ctx context.Context, id string) (*RequestSnapshot, error) {
	return LoadSnapshot(s.db.WithContext(ctx), id)
}

// List returns requests matching the filter.
func (s *requestService) List(ctx context.Context, filter *repository.RequestFilter) ([]*model.PurchaseRequestModel, error) {
	requests := repository.NewRequestRepository(s.db.WithContext(ctx))
	return requests.FindByFilter(filter)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/auth"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/model"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/phase"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/repository"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/workflow"
	"gorm.io/gorm"
)

// QuotationService manages the RFQ substrate of the cotacao phase:
// opening the RFQ envelope and registering candidate supplier
// responses. Selecting the winner lives in ReconciliationService.
type QuotationService interface {
	Open(ctx context.Context, requestID string, deadline *time.Time, actor *auth.Actor) (*model.QuotationModel, error)
	RegisterSupplierQuotation(ctx context.Context, quotationID string, input *SupplierQuotationInput, actor *auth.Actor) (*model.SupplierQuotationModel, error)
	Get(ctx context.Context, quotationID string) (*QuotationView, error)
}

// SupplierQuotationInput carries one supplier's response.
type SupplierQuotationInput struct {
	SupplierID   string                       `json:"supplier_id" binding:"required"`
	SupplierName string                       `json:"supplier_name" binding:"required"`
	Items        []SupplierQuotationItemInput `json:"items" binding:"required,min=1,dive"`
}

// SupplierQuotationItemInput carries one priced supplier line.
type SupplierQuotationItemInput struct {
	QuotationItemID string          `json:"quotation_item_id" binding:"required"`
	UnitPrice       decimal.Decimal `json:"unit_price" binding:"required"`
	IsAvailable     *bool           `json:"is_available"`
	AvailableQty    decimal.Decimal `json:"available_qty"`
}

// QuotationView is a quotation with its lines and responses.
type QuotationView struct {
	Quotation          *model.QuotationModel           `json:"quotation"`
	Items              []*model.QuotationItemModel     `json:"items"`
	SupplierQuotations []*model.SupplierQuotationModel `json:"supplier_quotations"`
}

// quotationService is the default implementation.
type quotationService struct {
	db *gorm.DB
}

// NewQuotationService creates a quotation service.
func NewQuotationService(db *gorm.DB) QuotationService {
	return &quotationService{db: db}
}

// Open creates the RFQ envelope for a request in cotacao, mirroring
// each untransferred item into a quotation line carrying the canonical
// request item linkage.
func (s *quotationService) Open(ctx context.Context, requestID string, deadline *time.Time, actor *auth.Actor) (*model.QuotationModel, error) {
	var quotation *model.QuotationModel

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		requests := repository.NewRequestRepository(tx)
		request, err := requests.FindByID(requestID)
		if err != nil {
			return fmt.Errorf("failed to load request %s: %w", requestID, err)
		}
		if phase.Phase(request.CurrentPhase) != phase.Cotacao {
			return workflow.NewError(workflow.CodeInvalidTransition, requestID,
				"quotations open only in phase %s, request is in %s", phase.Cotacao, request.CurrentPhase)
		}

		quotations := repository.NewQuotationRepository(tx)
		if existing, err := quotations.FindByRequestID(requestID); err == nil {
			quotation = existing
			return nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check existing quotation: %w", err)
		}

		now := time.Now()
		quotation = &model.QuotationModel{
			ID:        uuid.NewString(),
			RequestID: requestID,
			Status:    "open",
			Deadline:  deadline,
			CreatedBy: actor.ID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := quotations.Create(quotation); err != nil {
			return fmt.Errorf("failed to create quotation: %w", err)
		}

		items, err := requests.FindItems(requestID)
		if err != nil {
			return fmt.Errorf("failed to load request items: %w", err)
		}
		for _, item := range items {
			if item.IsTransferred {
				continue
			}
			itemID := item.ID
			if err := quotations.CreateItem(&model.QuotationItemModel{
				ID:            uuid.NewString(),
				QuotationID:   quotation.ID,
				RequestItemID: &itemID,
				Description:   item.Description,
				CreatedAt:     now,
			}); err != nil {
				return fmt.Errorf("failed to create quotation item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return quotation, nil
}

// RegisterSupplierQuotation stores one candidate supplier's priced
// response. Line totals default to unit price times available quantity
// when the supplier does not state one.
func (s *quotationService) RegisterSupplierQuotation(ctx context.Context, quotationID string, input *SupplierQuotationInput, actor *auth.Actor) (*model.SupplierQuotationModel, error) {
	var supplierQuotation *model.SupplierQuotationModel

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quotations := repository.NewQuotationRepository(tx)
		quotation, err := quotations.FindByID(quotationID)
		if err != nil {
			return fmt.Errorf("failed to load quotation %s: %w", quotationID, err)
		}
		if quotation.Status != "open" {
			return fmt.Errorf("quotation %s is %s, responses are closed", quotationID, quotation.Status)
		}

		quotationItems, err := quotations.FindItems(quotationID)
		if err != nil {
			return fmt.Errorf("failed to load quotation items: %w", err)
		}
		known := make(map[string]bool, len(quotationItems))
		for _, qi := range quotationItems {
			known[qi.ID] = true
		}

		now := time.Now()
		supplierQuotation = &model.SupplierQuotationModel{
			ID:           uuid.NewString(),
			QuotationID:  quotationID,
			SupplierID:   input.SupplierID,
			SupplierName: input.SupplierName,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := quotations.CreateSupplierQuotation(supplierQuotation); err != nil {
			return fmt.Errorf("failed to create supplier quotation: %w", err)
		}

		for _, in := range input.Items {
			if !known[in.QuotationItemID] {
				return fmt.Errorf("quotation item %s does not belong to quotation %s", in.QuotationItemID, quotationID)
			}
			available := true
			if in.IsAvailable != nil {
				available = *in.IsAvailable
			}
			qty := in.AvailableQty
			if !available {
				qty = decimal.Zero
			}
			if err := quotations.CreateSupplierQuotationItem(&model.SupplierQuotationItemModel{
				ID:                  uuid.NewString(),
				SupplierQuotationID: supplierQuotation.ID,
				QuotationItemID:     in.QuotationItemID,
				UnitPrice:           in.UnitPrice,
				IsAvailable:         available,
				AvailableQty:        qty,
				TotalPrice:          in.UnitPrice.Mul(qty).Round(2),
				CreatedAt:           now,
			}); err != nil {
				return fmt.Errorf("failed to create supplier quotation item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return supplierQuotation, nil
}

// Get returns one quotation with its lines and supplier responses.
func (s *quotationService) Get(ctx context.Context, quotationID string) (*QuotationView, error) {
	quotations := repository.NewQuotationRepository(s.db.WithContext(ctx))

	quotation, err := quotations.FindByID(quotationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load quotation %s: %w", quotationID, err)
	}
	items, err := quotations.FindItems(quotationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load quotation items: %w", err)
	}
	responses, err := quotations.FindSupplierQuotations(quotationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load supplier quotations: %w", err)
	}

	return &QuotationView{
		Quotation:          quotation,
		Items:              items,
		SupplierQuotations: responses,
	}, nil
}

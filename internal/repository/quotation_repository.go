package repository

import (
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/model"
	"gorm.io/gorm"
)

// QuotationRepository persists RFQs, their line items, and the
// candidate supplier responses.
type QuotationRepository interface {
	Create(quotation *model.QuotationModel) error
	Save(quotation *model.QuotationModel) error
	FindByID(id string) (*model.QuotationModel, error)
	FindByRequestID(requestID string) (*model.QuotationModel, error)
	CreateItem(item *model.QuotationItemModel) error
	FindItems(quotationID string) ([]*model.QuotationItemModel, error)

	CreateSupplierQuotation(sq *model.SupplierQuotationModel) error
	SaveSupplierQuotation(sq *model.SupplierQuotationModel) error
	FindSupplierQuotation(id string) (*model.SupplierQuotationModel, error)
	FindSupplierQuotations(quotationID string) ([]*model.SupplierQuotationModel, error)
	CreateSupplierQuotationItem(item *model.SupplierQuotationItemModel) error
	FindSupplierQuotationItems(supplierQuotationID string) ([]*model.SupplierQuotationItemModel, error)
	// ClearChosen resets the chosen marker on every response to the
	// quotation, keeping the at-most-one-chosen invariant.
	ClearChosen(quotationID string) error
}

// quotationRepository is the gorm implementation.
type quotationRepository struct {
	db *gorm.DB
}

// NewQuotationRepository creates a quotation repository.
func NewQuotationRepository(db *gorm.DB) QuotationRepository {
	return &quotationRepository{db: db}
}

// Create inserts a new quotation.
func (r *quotationRepository) Create(quotation *model.QuotationModel) error {
	if err := quotation.Validate(); err != nil {
		return err
	}
	return r.db.Create(quotation).Error
}

// Save writes an existing quotation.
func (r *quotationRepository) Save(quotation *model.QuotationModel) error {
	return r.db.Save(quotation).Error
}

// FindByID looks a quotation up by its ID.
func (r *quotationRepository) FindByID(id string) (*model.QuotationModel, error) {
	var q model.QuotationModel
	if err := r.db.Where("id = ?", id).First(&q).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

// FindByRequestID finds the quotation opened for a request.
func (r *quotationRepository) FindByRequestID(requestID string) (*model.QuotationModel, error) {
	var q model.QuotationModel
	if err := r.db.Where("request_id = ?", requestID).First(&q).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

// CreateItem inserts an RFQ line item.
func (r *quotationRepository) CreateItem(item *model.QuotationItemModel) error {
	if err := item.Validate(); err != nil {
		return err
	}
	return r.db.Create(item).Error
}

// FindItems lists a quotation's line items.
func (r *quotationRepository) FindItems(quotationID string) ([]*model.QuotationItemModel, error) {
	var items []*model.QuotationItemModel
	err := r.db.Where("quotation_id = ?", quotationID).Order("created_at ASC").Find(&items).Error
	return items, err
}

// CreateSupplierQuotation inserts a supplier response envelope.
func (r *quotationRepository) CreateSupplierQuotation(sq *model.SupplierQuotationModel) error {
	if err := sq.Validate(); err != nil {
		return err
	}
	return r.db.Create(sq).Error
}

// SaveSupplierQuotation writes an existing supplier response.
func (r *quotationRepository) SaveSupplierQuotation(sq *model.SupplierQuotationModel) error {
	return r.db.Save(sq).Error
}

// FindSupplierQuotation looks a supplier response up by its ID.
func (r *quotationRepository) FindSupplierQuotation(id string) (*model.SupplierQuotationModel, error) {
	var sq model.SupplierQuotationModel
	if err := r.db.Where("id = ?", id).First(&sq).Error; err != nil {
		return nil, err
	}
	return &sq, nil
}

// FindSupplierQuotations lists the responses to a quotation.
func (r *quotationRepository) FindSupplierQuotations(quotationID string) ([]*model.SupplierQuotationModel, error) {
	var sqs []*model.SupplierQuotationModel
	err := r.db.Where("quotation_id = ?", quotationID).Order("created_at ASC").Find(&sqs).Error
	return sqs, err
}

// CreateSupplierQuotationItem inserts a priced supplier line.
func (r *quotationRepository) CreateSupplierQuotationItem(item *model.SupplierQuotationItemModel) error {
	if err := item.Validate(); err != nil {
		return err
	}
	return r.db.Create(item).Error
}

// FindSupplierQuotationItems lists a supplier response's lines.
func (r *quotationRepository) FindSupplierQuotationItems(supplierQuotationID string) ([]*model.SupplierQuotationItemModel, error) {
	var items []*model.SupplierQuotationItemModel
	err := r.db.Where("supplier_quotation_id = ?", supplierQuotationID).Order("created_at ASC").Find(&items).Error
	return items, err
}

// ClearChosen resets the chosen marker across a quotation's responses.
func (r *quotationRepository) ClearChosen(quotationID string) error {
	return r.db.Model(&model.SupplierQuotationModel{}).
		Where("quotation_id = ?", quotationID).
		Update("is_chosen", false).Error
}

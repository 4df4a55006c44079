package repository

import (
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/model"
	"gorm.io/gorm"
)

// ApprovalHistoryRepository is the append-only ledger of approval
// decisions. There is deliberately no update or delete operation.
type ApprovalHistoryRepository interface {
	Append(record *model.ApprovalHistoryModel) error
	FindByRequestID(requestID string) ([]*model.ApprovalHistoryModel, error)
	FindByRequestAndGate(requestID string, gate string) ([]*model.ApprovalHistoryModel, error)
}

// approvalHistoryRepository is the gorm implementation.
type approvalHistoryRepository struct {
	db *gorm.DB
}

// NewApprovalHistoryRepository creates an approval history repository.
func NewApprovalHistoryRepository(db *gorm.DB) ApprovalHistoryRepository {
	return &approvalHistoryRepository{db: db}
}

// Append inserts a decision row.
func (r *approvalHistoryRepository) Append(record *model.ApprovalHistoryModel) error {
	if err := record.Validate(); err != nil {
		return err
	}
	return r.db.Create(record).Error
}

// FindByRequestID lists a request's decisions in decision order.
func (r *approvalHistoryRepository) FindByRequestID(requestID string) ([]*model.ApprovalHistoryModel, error) {
	var records []*model.ApprovalHistoryModel
	err := r.db.Where("request_id = ?", requestID).Order("created_at ASC").Find(&records).Error
	return records, err
}

// FindByRequestAndGate lists the decisions recorded at one gate.
func (r *approvalHistoryRepository) FindByRequestAndGate(requestID string, gate string) ([]*model.ApprovalHistoryModel, error) {
	var records []*model.ApprovalHistoryModel
	err := r.db.Where("request_id = ? AND gate = ?", requestID, gate).
		Order("created_at ASC").
		Find(&records).Error
	return records, err
}

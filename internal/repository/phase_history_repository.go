package repository

import (
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/model"
	"gorm.io/gorm"
)

// PhaseHistoryRepository stores the audit trail of phase changes.
type PhaseHistoryRepository interface {
	Append(entry *model.PhaseHistoryModel) error
	FindByRequestID(requestID string) ([]*model.PhaseHistoryModel, error)
}

// phaseHistoryRepository is the gorm implementation.
type phaseHistoryRepository struct {
	db *gorm.DB
}

// NewPhaseHistoryRepository creates a phase history repository.
func NewPhaseHistoryRepository(db *gorm.DB) PhaseHistoryRepository {
	return &phaseHistoryRepository{db: db}
}

// Append inserts a phase change entry.
func (r *phaseHistoryRepository) Append(entry *model.PhaseHistoryModel) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	return r.db.Create(entry).Error
}

// FindByRequestID lists a request's phase changes in commit order.
func (r *phaseHistoryRepository) FindByRequestID(requestID string) ([]*model.PhaseHistoryModel, error) {
	var entries []*model.PhaseHistoryModel
	err := r.db.Where("request_id = ?", requestID).Order("created_at ASC").Find(&entries).Error
	return entries, err
}

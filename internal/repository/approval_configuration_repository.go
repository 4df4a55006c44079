package repository

import (
	"time"

	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/model"
	"gorm.io/gorm"
)

// ApprovalConfigurationRepository reads and replaces the active dual
// approval threshold. History rows are kept so past decisions remain
// explainable.
type ApprovalConfigurationRepository interface {
	Active() (*model.ApprovalConfigurationModel, error)
	// Replace deactivates the current configuration and inserts the
	// new one as active.
	Replace(cfg *model.ApprovalConfigurationModel) error
	History() ([]*model.ApprovalConfigurationModel, error)
}

// approvalConfigurationRepository is the gorm implementation.
type approvalConfigurationRepository struct {
	db *gorm.DB
}

// NewApprovalConfigurationRepository creates a configuration repository.
func NewApprovalConfigurationRepository(db *gorm.DB) ApprovalConfigurationRepository {
	return &approvalConfigurationRepository{db: db}
}

// Active returns the configuration currently in force.
func (r *approvalConfigurationRepository) Active() (*model.ApprovalConfigurationModel, error) {
	var cfg model.ApprovalConfigurationModel
	err := r.db.Where("active = ? AND effective_from <= ?", true, time.Now()).
		Order("effective_from DESC").
		First(&cfg).Error
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Replace swaps the active configuration.
func (r *approvalConfigurationRepository) Replace(cfg *model.ApprovalConfigurationModel) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.ApprovalConfigurationModel{}).
			Where("active = ?", true).
			Update("active", false).Error; err != nil {
			return err
		}
		cfg.Active = true
		return tx.Create(cfg).Error
	})
}

// History lists all configurations, newest first.
func (r *approvalConfigurationRepository) History() ([]*model.ApprovalConfigurationModel, error) {
	var cfgs []*model.ApprovalConfigurationModel
	err := r.db.Order("effective_from DESC").Find(&cfgs).Error
	return cfgs, err
}

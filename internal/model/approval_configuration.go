package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ApprovalConfigurationModel holds the monetary threshold above which a
// request needs two approval signatures. Updates insert a new active
// row and deactivate the previous one; decisions already recorded in
// the approval history are never rewritten.
type ApprovalConfigurationModel struct {
	ID            string          `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Threshold     decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"threshold"`
	EffectiveFrom time.Time       `gorm:"not null;index" json:"effective_from"`
	Active        bool            `gorm:"not null;default:true;index" json:"active"`
	CreatedBy     string          `gorm:"type:varchar(64);not null" json:"created_by"`
	CreatedAt     time.Time       `gorm:"not null" json:"created_at"`
}

// TableName specifies the table name.
func (ApprovalConfigurationModel) TableName() string {
	return "approval_configurations"
}

// Validate checks the model before persistence.
func (acm *ApprovalConfigurationModel) Validate() error {
	if acm.ID == "" {
		return errors.New("configuration ID is required")
	}
	if acm.Threshold.IsNegative() {
		return errors.New("threshold cannot be negative")
	}
	if acm.CreatedBy == "" {
		return errors.New("creator ID is required")
	}
	return nil
}

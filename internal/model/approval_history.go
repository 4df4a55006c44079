package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ApprovalHistoryModel is the append-only ledger of approval decisions.
// Rows are never mutated after insertion; the threshold context active
// at decision time is recorded alongside the decision.
type ApprovalHistoryModel struct {
	ID             string          `gorm:"primaryKey;type:varchar(64)" json:"id"`
	RequestID      string          `gorm:"type:varchar(64);not null;index" json:"request_id"`
	Gate           string          `gorm:"type:varchar(8);not null;index" json:"gate"` // A1/A2
	Step           int             `gorm:"not null" json:"step"`                       // 1 or 2
	ApproverID     string          `gorm:"type:varchar(64);not null;index" json:"approver_id"`
	Approved       bool            `gorm:"not null" json:"approved"`
	Reason         string          `gorm:"type:text" json:"reason"`
	RequiredDual   bool            `gorm:"not null" json:"required_dual"`
	EvaluatedValue decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"evaluated_value"`
	CreatedAt      time.Time       `gorm:"not null;index" json:"created_at"`
}

// TableName specifies the table name.
func (ApprovalHistoryModel) TableName() string {
	return "approval_history"
}

// Validate checks the model before persistence.
func (ahm *ApprovalHistoryModel) Validate() error {
	if ahm.ID == "" {
		return errors.New("history ID is required")
	}
	if ahm.RequestID == "" {
		return errors.New("request ID is required")
	}
	if ahm.Gate != "A1" && ahm.Gate != "A2" {
		return errors.New("gate must be A1 or A2")
	}
	if ahm.Step != 1 && ahm.Step != 2 {
		return errors.New("step must be 1 or 2")
	}
	if ahm.ApproverID == "" {
		return errors.New("approver ID is required")
	}
	if !ahm.Approved && ahm.Reason == "" {
		return errors.New("rejection requires a reason")
	}
	return nil
}

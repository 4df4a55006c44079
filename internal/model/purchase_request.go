package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseRequestModel is the root entity of the procurement workflow.
// Its phase is mutated exclusively through the transition service; the
// version column serializes concurrent writers.
type PurchaseRequestModel struct {
	ID            string          `gorm:"primaryKey;type:varchar(64)" json:"id"`
	RequestNumber string          `gorm:"type:varchar(32);not null;uniqueIndex" json:"request_number"`
	RequesterID   string          `gorm:"type:varchar(64);not null;index" json:"requester_id"`
	CostCenter    string          `gorm:"type:varchar(64);not null;index" json:"cost_center"`
	Department    string          `gorm:"type:varchar(64)" json:"department"`
	Urgency       string          `gorm:"type:varchar(16);not null;default:'normal'" json:"urgency"` // normal/alta/urgente
	Justification string          `gorm:"type:text" json:"justification"`
	TotalValue    decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total_value"`
	CurrentPhase  string          `gorm:"type:varchar(32);not null;index" json:"current_phase"`
	Version       int             `gorm:"not null;default:1" json:"version"`

	// Approval outcome, evaluated against the configuration active at
	// decision time.
	RequiresDualApproval bool `gorm:"not null;default:false" json:"requires_dual_approval"`

	// Tagged gate states; see approval.GateState.
	GateA1State            string     `gorm:"type:varchar(32);not null;default:'pending'" json:"gate_a1_state"`
	GateA1FirstApproverID  *string    `gorm:"type:varchar(64)" json:"gate_a1_first_approver_id,omitempty"`
	GateA1FirstApprovedAt  *time.Time `json:"gate_a1_first_approved_at,omitempty"`
	GateA1SecondApproverID *string    `gorm:"type:varchar(64)" json:"gate_a1_second_approver_id,omitempty"`
	GateA1SecondApprovedAt *time.Time `json:"gate_a1_second_approved_at,omitempty"`
	GateA2State            string     `gorm:"type:varchar(32);not null;default:'pending'" json:"gate_a2_state"`
	GateA2FirstApproverID  *string    `gorm:"type:varchar(64)" json:"gate_a2_first_approver_id,omitempty"`
	GateA2FirstApprovedAt  *time.Time `json:"gate_a2_first_approved_at,omitempty"`
	GateA2SecondApproverID *string    `gorm:"type:varchar(64)" json:"gate_a2_second_approver_id,omitempty"`
	GateA2SecondApprovedAt *time.Time `json:"gate_a2_second_approved_at,omitempty"`

	// Split-off linkage. ParentRequestID is set when this request was
	// derived from another's unfulfilled items; DerivedRequestID points
	// the other way.
	ParentRequestID  *string `gorm:"type:varchar(64);index" json:"parent_request_id,omitempty"`
	DerivedRequestID *string `gorm:"type:varchar(64)" json:"derived_request_id,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// TableName specifies the table name.
func (PurchaseRequestModel) TableName() string {
	return "purchase_requests"
}

// Validate checks the model before persistence.
func (prm *PurchaseRequestModel) Validate() error {
	if prm.ID == "" {
		return errors.New("request ID is required")
	}
	if prm.RequestNumber == "" {
		return errors.New("request number is required")
	}
	if prm.RequesterID == "" {
		return errors.New("requester ID is required")
	}
	if prm.CostCenter == "" {
		return errors.New("cost center is required")
	}
	if prm.CurrentPhase == "" {
		return errors.New("current phase is required")
	}
	if prm.TotalValue.IsNegative() {
		return errors.New("total value cannot be negative")
	}
	return nil
}

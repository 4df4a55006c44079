package model

import (
	"errors"
	"time"
)

// QuotationModel is the RFQ envelope opened for a request during the
// cotacao phase.
type QuotationModel struct {
	ID        string     `gorm:"primaryKey;type:varchar(64)" json:"id"`
	RequestID string     `gorm:"type:varchar(64);not null;uniqueIndex" json:"request_id"`
	Status    string     `gorm:"type:varchar(32);not null;default:'open'" json:"status"` // open/closed
	Deadline  *time.Time `json:"deadline,omitempty"`
	CreatedBy string     `gorm:"type:varchar(64);not null" json:"created_by"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null" json:"updated_at"`
}

// TableName specifies the table name.
func (QuotationModel) TableName() string {
	return "quotations"
}

// Validate checks the model before persistence.
func (qm *QuotationModel) Validate() error {
	if qm.ID == "" {
		return errors.New("quotation ID is required")
	}
	if qm.RequestID == "" {
		return errors.New("request ID is required")
	}
	if qm.CreatedBy == "" {
		return errors.New("creator ID is required")
	}
	return nil
}

// QuotationItemModel mirrors one request item inside an RFQ. The
// request item linkage is the canonical identity; description matching
// is only a degraded fallback for legacy rows without it.
type QuotationItemModel struct {
	ID            string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	QuotationID   string    `gorm:"type:varchar(64);not null;index" json:"quotation_id"`
	RequestItemID *string   `gorm:"type:varchar(64);index" json:"request_item_id,omitempty"`
	Description   string    `gorm:"type:varchar(255);not null" json:"description"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
}

// TableName specifies the table name.
func (QuotationItemModel) TableName() string {
	return "quotation_items"
}

// Validate checks the model before persistence.
func (qim *QuotationItemModel) Validate() error {
	if qim.ID == "" {
		return errors.New("quotation item ID is required")
	}
	if qim.QuotationID == "" {
		return errors.New("quotation ID is required")
	}
	if qim.Description == "" {
		return errors.New("item description is required")
	}
	return nil
}

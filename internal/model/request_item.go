package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// RequestItemModel is a line item of a purchase request. Items are
// never deleted; when supplier selection leaves an item unfulfilled it
// is marked transferred and linked to the derived request that now
// carries it.
type RequestItemModel struct {
	ID          string          `gorm:"primaryKey;type:varchar(64)" json:"id"`
	RequestID   string          `gorm:"type:varchar(64);not null;index" json:"request_id"`
	Description string          `gorm:"type:varchar(255);not null" json:"description"`
	Unit        string          `gorm:"type:varchar(16);not null" json:"unit"`
	RequestedQty decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"requested_qty"`
	ApprovedQty  *decimal.Decimal `gorm:"type:decimal(12,3)" json:"approved_qty,omitempty"`

	// IsTransferred and TransferredToRequestID are set together or not
	// at all.
	IsTransferred          bool    `gorm:"not null;default:false" json:"is_transferred"`
	TransferredToRequestID *string `gorm:"type:varchar(64)" json:"transferred_to_request_id,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// TableName specifies the table name.
func (RequestItemModel) TableName() string {
	return "request_items"
}

// Validate checks the model before persistence.
func (rim *RequestItemModel) Validate() error {
	if rim.ID == "" {
		return errors.New("item ID is required")
	}
	if rim.RequestID == "" {
		return errors.New("request ID is required")
	}
	if rim.Description == "" {
		return errors.New("item description is required")
	}
	if !rim.RequestedQty.IsPositive() {
		return errors.New("requested quantity must be positive")
	}
	if rim.IsTransferred != (rim.TransferredToRequestID != nil) {
		return errors.New("transfer flag and target request must be set together")
	}
	return nil
}

package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// SupplierQuotationModel is one candidate supplier's response to an
// RFQ. At most one response per quotation may be chosen.
type SupplierQuotationModel struct {
	ID           string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	QuotationID  string    `gorm:"type:varchar(64);not null;index" json:"quotation_id"`
	SupplierID   string    `gorm:"type:varchar(64);not null;index" json:"supplier_id"`
	SupplierName string    `gorm:"type:varchar(255);not null" json:"supplier_name"`
	IsChosen     bool      `gorm:"not null;default:false" json:"is_chosen"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

// TableName specifies the table name.
func (SupplierQuotationModel) TableName() string {
	return "supplier_quotations"
}

// Validate checks the model before persistence.
func (sqm *SupplierQuotationModel) Validate() error {
	if sqm.ID == "" {
		return errors.New("supplier quotation ID is required")
	}
	if sqm.QuotationID == "" {
		return errors.New("quotation ID is required")
	}
	if sqm.SupplierID == "" {
		return errors.New("supplier ID is required")
	}
	return nil
}

// SupplierQuotationItemModel is one priced line of a supplier's
// response, referencing the RFQ line it answers.
type SupplierQuotationItemModel struct {
	ID                  string          `gorm:"primaryKey;type:varchar(64)" json:"id"`
	SupplierQuotationID string          `gorm:"type:varchar(64);not null;index" json:"supplier_quotation_id"`
	QuotationItemID     string          `gorm:"type:varchar(64);not null;index" json:"quotation_item_id"`
	UnitPrice           decimal.Decimal `gorm:"type:decimal(14,4);not null" json:"unit_price"`
	IsAvailable         bool            `gorm:"not null;default:true" json:"is_available"`
	AvailableQty        decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"available_qty"`
	TotalPrice          decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total_price"`
	CreatedAt           time.Time       `gorm:"not null" json:"created_at"`
}

// TableName specifies the table name.
func (SupplierQuotationItemModel) TableName() string {
	return "supplier_quotation_items"
}

// Validate checks the model before persistence.
func (sqim *SupplierQuotationItemModel) Validate() error {
	if sqim.ID == "" {
		return errors.New("supplier quotation item ID is required")
	}
	if sqim.SupplierQuotationID == "" {
		return errors.New("supplier quotation ID is required")
	}
	if sqim.QuotationItemID == "" {
		return errors.New("quotation item ID is required")
	}
	if sqim.UnitPrice.IsNegative() {
		return errors.New("unit price cannot be negative")
	}
	return nil
}

package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseOrderModel is generated from the chosen supplier quotation at
// selection time. A request has at most one active order; regressing
// the phase past the order creation point voids it.
type PurchaseOrderModel struct {
	ID           string          `gorm:"primaryKey;type:varchar(64)" json:"id"`
	OrderNumber  string          `gorm:"type:varchar(32);not null;uniqueIndex" json:"order_number"`
	RequestID    string          `gorm:"type:varchar(64);not null;index" json:"request_id"`
	SupplierID   string          `gorm:"type:varchar(64);not null;index" json:"supplier_id"`
	SupplierName string          `gorm:"type:varchar(255);not null" json:"supplier_name"`
	TotalValue   decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total_value"`
	Status       string          `gorm:"type:varchar(32);not null;default:'active'" json:"status"` // active/voided
	CreatedBy    string          `gorm:"type:varchar(64);not null" json:"created_by"`
	CreatedAt    time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"not null" json:"updated_at"`
}

// TableName specifies the table name.
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// Validate checks the model before persistence.
func (pom *PurchaseOrderModel) Validate() error {
	if pom.ID == "" {
		return errors.New("order ID is required")
	}
	if pom.OrderNumber == "" {
		return errors.New("order number is required")
	}
	if pom.RequestID == "" {
		return errors.New("request ID is required")
	}
	if pom.SupplierID == "" {
		return errors.New("supplier ID is required")
	}
	return nil
}

// PurchaseOrderItemModel is one line of a purchase order. Price fields
// are copied verbatim from the matched supplier quotation item at
// creation time and never recomputed.
type PurchaseOrderItemModel struct {
	ID            string          `gorm:"primaryKey;type:varchar(64)" json:"id"`
	OrderID       string          `gorm:"type:varchar(64);not null;index" json:"order_id"`
	RequestItemID string          `gorm:"type:varchar(64);not null" json:"request_item_id"`
	Description   string          `gorm:"type:varchar(255);not null" json:"description"`
	Unit          string          `gorm:"type:varchar(16);not null" json:"unit"`
	Quantity      decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"quantity"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(14,4);not null" json:"unit_price"`
	TotalPrice    decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total_price"`
	CreatedAt     time.Time       `gorm:"not null" json:"created_at"`
}

// TableName specifies the table name.
func (PurchaseOrderItemModel) TableName() string {
	return "purchase_order_items"
}

// Validate checks the model before persistence.
func (poim *PurchaseOrderItemModel) Validate() error {
	if poim.ID == "" {
		return errors.New("order item ID is required")
	}
	if poim.OrderID == "" {
		return errors.New("order ID is required")
	}
	if poim.RequestItemID == "" {
		return errors.New("request item ID is required")
	}
	return nil
}

package repository

import (
	"errors"

	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/model"
	"gorm.io/gorm"
)

// PurchaseOrderRepository persists purchase orders and their lines.
type PurchaseOrderRepository interface {
	Create(order *model.PurchaseOrderModel) error
	CreateItem(item *model.PurchaseOrderItemModel) error
	FindByID(id string) (*model.PurchaseOrderModel, error)
	// FindActiveByRequestID returns the request's active order, or nil
	// when none exists.
	FindActiveByRequestID(requestID string) (*model.PurchaseOrderModel, error)
	FindItems(orderID string) ([]*model.PurchaseOrderItemModel, error)
	// DeleteWithItems removes the order and all of its lines. Used as
	// the compensating action when a request regresses past the order
	// creation point; must run inside the same transaction as the
	// phase write.
	DeleteWithItems(orderID string) error
}

// purchaseOrderRepository is the gorm implementation.
type purchaseOrderRepository struct {
	db *gorm.DB
}

// NewPurchaseOrderRepository creates a purchase order repository.
func NewPurchaseOrderRepository(db *gorm.DB) PurchaseOrderRepository {
	return &purchaseOrderRepository{db: db}
}

// Create inserts a new order.
func (r *purchaseOrderRepository) Create(order *model.PurchaseOrderModel) error {
	if err := order.Validate(); err != nil {
		return err
	}
	return r.db.Create(order).Error
}

// CreateItem inserts a new order line.
func (r *purchaseOrderRepository) CreateItem(item *model.PurchaseOrderItemModel) error {
	if err := item.Validate(); err != nil {
		return err
	}
	return r.db.Create(item).Error
}

// FindByID looks an order up by its ID.
func (r *purchaseOrderRepository) FindByID(id string) (*model.PurchaseOrderModel, error) {
	var order model.PurchaseOrderModel
	if err := r.db.Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindActiveByRequestID returns the request's active order, if any.
func (r *purchaseOrderRepository) FindActiveByRequestID(requestID string) (*model.PurchaseOrderModel, error) {
	var order model.PurchaseOrderModel
	err := r.db.Where("request_id = ? AND status = ?", requestID, "active").First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindItems lists an order's lines.
func (r *purchaseOrderRepository) FindItems(orderID string) ([]*model.PurchaseOrderItemModel, error) {
	var items []*model.PurchaseOrderItemModel
	err := r.db.Where("order_id = ?", orderID).Order("created_at ASC").Find(&items).Error
	return items, err
}

// DeleteWithItems removes an order and its lines.
func (r *purchaseOrderRepository) DeleteWithItems(orderID string) error {
	if err := r.db.Where("order_id = ?", orderID).Delete(&model.PurchaseOrderItemModel{}).Error; err != nil {
		return err
	}
	return r.db.Where("id = ?", orderID).Delete(&model.PurchaseOrderModel{}).Error
}

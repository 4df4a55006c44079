package repository

import (
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/model"
	"gorm.io/gorm"
)

// RequestRepository persists purchase requests and their items.
type RequestRepository interface {
	Create(request *model.PurchaseRequestModel) error
	FindByID(id string) (*model.PurchaseRequestModel, error)
	FindByFilter(filter *RequestFilter) ([]*model.PurchaseRequestModel, error)
	// UpdateVersioned writes the request only if its stored version
	// still matches the version it was read at, bumping the version on
	// success. Returns gorm.ErrRecordNotFound semantics via the bool:
	// false means another writer got there first.
	UpdateVersioned(request *model.PurchaseRequestModel) (bool, error)
	CreateItem(item *model.RequestItemModel) error
	SaveItem(item *model.RequestItemModel) error
	FindItems(requestID string) ([]*model.RequestItemModel, error)
	CountByPhase() (map[string]int64, error)
}

// RequestFilter narrows request listings.
type RequestFilter struct {
	Phase       *string
	RequesterID *string
	CostCenter  *string
	Urgency     *string
	StartTime   *string
	EndTime     *string
}

// requestRepository is the gorm implementation.
type requestRepository struct {
	db *gorm.DB
}

// NewRequestRepository creates a request repository.
func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

// Create inserts a new request.
func (r *requestRepository) Create(request *model.PurchaseRequestModel) error {
	if err := request.Validate(); err != nil {
		return err
	}
	return r.db.Create(request).Error
}

// FindByID looks a request up by its ID.
func (r *requestRepository) FindByID(id string) (*model.PurchaseRequestModel, error) {
	var request model.PurchaseRequestModel
	if err := r.db.Where("id = ?", id).First(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

// FindByFilter lists requests matching the filter.
func (r *requestRepository) FindByFilter(filter *RequestFilter) ([]*model.PurchaseRequestModel, error) {
	var requests []*model.PurchaseRequestModel
	query := r.db.Model(&model.PurchaseRequestModel{})

	if filter != nil {
		if filter.Phase != nil {
			query = query.Where("current_phase = ?", *filter.Phase)
		}
		if filter.RequesterID != nil {
			query = query.Where("requester_id = ?", *filter.RequesterID)
		}
		if filter.CostCenter != nil {
			query = query.Where("cost_center = ?", *filter.CostCenter)
		}
		if filter.Urgency != nil {
			query = query.Where("urgency = ?", *filter.Urgency)
		}
		if filter.StartTime != nil {
			query = query.Where("created_at >= ?", *filter.StartTime)
		}
		if filter.EndTime != nil {
			query = query.Where("created_at <= ?", *filter.EndTime)
		}
	}

	err := query.Order("created_at DESC").Find(&requests).Error
	return requests, err
}

// UpdateVersioned writes the full request row guarded by its version.
func (r *requestRepository) UpdateVersioned(request *model.PurchaseRequestModel) (bool, error) {
	if err := request.Validate(); err != nil {
		return false, err
	}
	readVersion := request.Version
	request.Version = readVersion + 1

	res := r.db.Model(&model.PurchaseRequestModel{}).
		Where("id = ? AND version = ?", request.ID, readVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(request)
	if res.Error != nil {
		request.Version = readVersion
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		request.Version = readVersion
		return false, nil
	}
	return true, nil
}

// CreateItem inserts a new request item.
func (r *requestRepository) CreateItem(item *model.RequestItemModel) error {
	if err := item.Validate(); err != nil {
		return err
	}
	return r.db.Create(item).Error
}

// SaveItem writes an existing request item.
func (r *requestRepository) SaveItem(item *model.RequestItemModel) error {
	if err := item.Validate(); err != nil {
		return err
	}
	return r.db.Save(item).Error
}

// FindItems lists a request's items in insertion order.
func (r *requestRepository) FindItems(requestID string) ([]*model.RequestItemModel, error) {
	var items []*model.RequestItemModel
	err := r.db.Where("request_id = ?", requestID).Order("created_at ASC").Find(&items).Error
	return items, err
}

// CountByPhase groups live requests by workflow phase.
func (r *requestRepository) CountByPhase() (map[string]int64, error) {
	type row struct {
		CurrentPhase string
		Count        int64
	}
	var rows []row
	err := r.db.Model(&model.PurchaseRequestModel{}).
		Select("current_phase, count(*) as count").
		Group("current_phase").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, rw := range rows {
		out[rw.CurrentPhase] = rw.Count
	}
	return out, nil
}

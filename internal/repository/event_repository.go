package repository

import (
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/model"
	"gorm.io/gorm"
)

// EventRepository is the transactional outbox for workflow events.
type EventRepository interface {
	Save(event *model.EventModel) error
	FindByRequestID(requestID string) ([]*model.EventModel, error)
	FindPending(limit int) ([]*model.EventModel, error)
	MarkDelivered(id string) error
	// BumpRetry counts one failed delivery attempt while keeping the
	// event pending, so the next scan picks it up again.
	BumpRetry(id string) error
	// MarkFailed abandons the event for good once its retry budget is
	// spent.
	MarkFailed(id string) error
}

// eventRepository is the gorm implementation.
type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates an event repository.
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

// Save writes an event row.
func (r *eventRepository) Save(event *model.EventModel) error {
	if err := event.Validate(); err != nil {
		return err
	}
	return r.db.Save(event).Error
}

// FindByRequestID lists a request's events in emission order.
func (r *eventRepository) FindByRequestID(requestID string) ([]*model.EventModel, error) {
	var events []*model.EventModel
	err := r.db.Where("request_id = ?", requestID).Order("created_at ASC").Find(&events).Error
	return events, err
}

// FindPending lists undelivered events, oldest first.
func (r *eventRepository) FindPending(limit int) ([]*model.EventModel, error) {
	var events []*model.EventModel
	query := r.db.Where("status = ?", "pending").Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&events).Error
	return events, err
}

// MarkDelivered flags an event as delivered.
func (r *eventRepository) MarkDelivered(id string) error {
	return r.db.Model(&model.EventModel{}).
		Where("id = ?", id).
		Update("status", "delivered").Error
}

// BumpRetry counts a failed attempt and leaves the event pending.
func (r *eventRepository) BumpRetry(id string) error {
	return r.db.Model(&model.EventModel{}).
		Where("id = ?", id).
		Update("retry_count", gorm.Expr("retry_count + 1")).Error
}

// MarkFailed bumps the retry count and flags the event failed.
func (r *eventRepository) MarkFailed(id string) error {
	return r.db.Model(&model.EventModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      "failed",
			"retry_count": gorm.Expr("retry_count + 1"),
		}).Error
}

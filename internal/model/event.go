package model

import (
	"errors"
	"time"
)

// EventModel is the transactional outbox row written together with the
// state change that produced it. A background dispatcher delivers
// pending events to connected clients after commit; delivery failures
// bump RetryCount and never touch the committed workflow state.
type EventModel struct {
	ID         string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	RequestID  string    `gorm:"type:varchar(64);not null;index" json:"request_id"`
	Type       string    `gorm:"type:varchar(64);not null;index" json:"type"`
	Phase      string    `gorm:"type:varchar(32)" json:"phase"`
	Data       []byte    `gorm:"type:jsonb;not null" json:"data"`
	Status     string    `gorm:"type:varchar(32);not null;default:'pending'" json:"status"` // pending/delivered/failed
	RetryCount int       `gorm:"not null;default:0" json:"retry_count"`
	CreatedAt  time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

// Event types emitted by the workflow core.
const (
	EventPhaseChanged      = "phase_changed"
	EventApprovalRecorded  = "approval_recorded"
	EventRequestRejected   = "request_rejected"
	EventOrderCreated      = "order_created"
	EventOrderVoided       = "order_voided"
	EventRequestDerived    = "request_derived"
	EventRequestReconciled = "request_reconciled"
)

// TableName specifies the table name.
func (EventModel) TableName() string {
	return "events"
}

// Validate checks the model before persistence.
func (em *EventModel) Validate() error {
	if em.ID == "" {
		return errors.New("event ID is required")
	}
	if em.RequestID == "" {
		return errors.New("request ID is required")
	}
	if em.Type == "" {
		return errors.New("event type is required")
	}
	if len(em.Data) == 0 {
		return errors.New("event data is required")
	}
	if em.Status == "" {
		em.Status = "pending"
	}
	return nil
}

package model

import (
	"errors"
	"time"
)

// PhaseHistoryModel records every committed phase change of a request.
// Exactly one row is written per committed transition.
type PhaseHistoryModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	RequestID string    `gorm:"type:varchar(64);not null;index" json:"request_id"`
	FromPhase string    `gorm:"type:varchar(32)" json:"from_phase"`
	ToPhase   string    `gorm:"type:varchar(32);not null" json:"to_phase"`
	Reason    string    `gorm:"type:text" json:"reason"`
	ActorID   string    `gorm:"type:varchar(64);not null" json:"actor_id"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

// TableName specifies the table name.
func (PhaseHistoryModel) TableName() string {
	return "phase_history"
}

// Validate checks the model before persistence.
func (phm *PhaseHistoryModel) Validate() error {
	if phm.ID == "" {
		return errors.New("history ID is required")
	}
	if phm.RequestID == "" {
		return errors.New("request ID is required")
	}
	if phm.ToPhase == "" {
		return errors.New("target phase is required")
	}
	if phm.ActorID == "" {
		return errors.New("actor ID is required")
	}
	return nil
}

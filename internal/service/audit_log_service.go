package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/model"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/repository"
)

// AuditLogService records who did what through the API.
type AuditLogService interface {
	RecordAction(ctx context.Context, userID string, action string, resourceType string, resourceID string, details interface{}) error
}

// auditLogService is the default implementation.
type auditLogService struct {
	auditRepo repository.AuditLogRepository
}

// NewAuditLogService creates an audit log service.
func NewAuditLogService(auditRepo repository.AuditLogRepository) AuditLogService {
	return &auditLogService{auditRepo: auditRepo}
}

// RecordAction writes one audit entry. Request metadata travels in the
// context, set by the API middleware.
func (s *auditLogService) RecordAction(
	ctx context.Context,
	userID string,
	action string,
	resourceType string,
	resourceID string,
	details interface{},
) error {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return err
	}

	requestID := ""
	if v := ctx.Value("request_id"); v != nil {
		if s, ok := v.(string); ok {
			requestID = s
		}
	}

	ip := ""
	if v := ctx.Value("ip"); v != nil {
		if s, ok := v.(string); ok {
			ip = s
		}
	}

	userAgent := ""
	if v := ctx.Value("user_agent"); v != nil {
		if s, ok := v.(string); ok {
			userAgent = s
		}
	}

	return s.auditRepo.Save(&model.AuditLogModel{
		ID:           uuid.NewString(),
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		RequestID:    requestID,
		IP:           ip,
		UserAgent:    userAgent,
		Details:      detailsJSON,
		CreatedAt:    time.Now(),
	})
}

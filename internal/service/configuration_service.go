package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/auth"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/model"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/repository"
	"gorm.io/gorm"
)

// ConfigurationService reads and replaces the dual approval threshold.
// Replacing the configuration never rewrites decisions already in the
// approval history.
type ConfigurationService interface {
	Active(ctx context.Context) (*model.ApprovalConfigurationModel, error)
	Update(ctx context.Context, threshold decimal.Decimal, effectiveFrom time.Time, actor *auth.Actor) (*model.ApprovalConfigurationModel, error)
}

// configurationService is the default implementation.
type configurationService struct {
	db *gorm.DB
}

// NewConfigurationService creates a configuration service.
func NewConfigurationService(db *gorm.DB) ConfigurationService {
	return &configurationService{db: db}
}

// Active returns the configuration currently in force.
func (s *configurationService) Active(ctx context.Context) (*model.ApprovalConfigurationModel, error) {
	configs := repository.NewApprovalConfigurationRepository(s.db.WithContext(ctx))
	cfg, err := configs.Active()
	if err != nil {
		return nil, fmt.Errorf("no active approval configuration: %w", err)
	}
	return cfg, nil
}

// Update deactivates the current configuration and installs a new one.
func (s *configurationService) Update(ctx context.Context, threshold decimal.Decimal, effectiveFrom time.Time, actor *auth.Actor) (*model.ApprovalConfigurationModel, error) {
	if threshold.IsNegative() {
		return nil, fmt.Errorf("threshold cannot be negative")
	}
	if effectiveFrom.IsZero() {
		effectiveFrom = time.Now()
	}

	cfg := &model.ApprovalConfigurationModel{
		ID:            uuid.NewString(),
		Threshold:     threshold,
		EffectiveFrom: effectiveFrom,
		Active:        true,
		CreatedBy:     actor.ID,
		CreatedAt:     time.Now(),
	}

	configs := repository.NewApprovalConfigurationRepository(s.db.WithContext(ctx))
	if err := configs.Replace(cfg); err != nil {
		return nil, fmt.Errorf("failed to replace configuration: %w", err)
	}
	return cfg, nil
}

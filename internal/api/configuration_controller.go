package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/auth"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/service"
)

// ConfigurationController exposes the approval threshold configuration.
type ConfigurationController struct {
	configurationService service.ConfigurationService
	auditService         service.AuditLogService
}

// NewConfigurationController creates a configuration controller.
func NewConfigurationController(configurationService service.ConfigurationService, auditService service.AuditLogService) *ConfigurationController {
	return &ConfigurationController{
		configurationService: configurationService,
		auditService:         auditService,
	}
}

// Active returns the approval configuration currently in effect.
func (c *ConfigurationController) Active(ctx *gin.Context) {
	cfg, err := c.configurationService.Active(ctx.Request.Context())
	if err != nil {
		Error(ctx, http.StatusInternalServerError, "failed to load configuration", err.Error())
		return
	}

	Success(ctx, cfg)
}

// UpdateConfigurationInput replaces the dual-approval threshold.
type UpdateConfigurationInput struct {
	Threshold     decimal.Decimal `json:"threshold" binding:"required"`
	EffectiveFrom *time.Time      `json:"effective_from"`
}

// Update installs a new threshold configuration. Requests already past
// their gate evaluation keep the decision made at evaluation time.
func (c *ConfigurationController) Update(ctx *gin.Context) {
	actor, ok := auth.ActorFrom(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthenticated", "")
		return
	}
	if !actor.IsApproverA2 {
		Error(ctx, http.StatusForbidden, "final approver role required", "")
		return
	}

	var input UpdateConfigurationInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	if input.Threshold.IsNegative() {
		Error(ctx, http.StatusBadRequest, "invalid request", "threshold cannot be negative")
		return
	}

	effectiveFrom := time.Now()
	if input.EffectiveFrom != nil {
		effectiveFrom = *input.EffectiveFrom
	}

	cfg, err := c.configurationService.Update(ctx.Request.Context(), input.Threshold, effectiveFrom, actor)
	if err != nil {
		Error(ctx, http.StatusInternalServerError, "failed to update configuration", err.Error())
		return
	}

	if c.auditService != nil {
		if err := c.auditService.RecordAction(ctx.Request.Context(), actor.ID, "configuration.update", "approval_configuration", cfg.ID, input); err != nil {
			GetLogger().WithError(err).Warn("failed to write audit log")
		}
	}

	Success(ctx, cfg)
}

package container

import (
	"fmt"
	"time"

	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/api"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/auth"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/config"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/database"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/notify"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/repository"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/service"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/websocket"
	"gorm.io/gorm"
)

// Container wires the application dependencies together.
type Container struct {
	db         *gorm.DB
	hub        *websocket.Hub
	gateway    notify.Gateway
	dispatcher *notify.Dispatcher
	validator  *auth.TokenValidator
	services   *api.Services
}

// NewContainer builds all dependencies from the configuration.
func NewContainer(cfg *config.Config) (*Container, error) {
	db, err := database.ConnectWithRetry(cfg.Database, 3, time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := database.Migrate(db, cfg.Approval.DefaultThreshold); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logger := api.GetLogger()

	hub := websocket.NewHub()
	gateway := notify.NewGateway(hub, logger)
	dispatcher := notify.NewDispatcher(
		repository.NewEventRepository(db), hub, notify.DefaultDispatcherConfig(), logger)

	validator := auth.NewTokenValidator(cfg.Auth.TokenSecret)

	services := &api.Services{
		Request:        service.NewRequestService(db),
		Transition:     service.NewTransitionService(db, gateway),
		Approval:       service.NewApprovalService(db, gateway),
		Quotation:      service.NewQuotationService(db),
		Reconciliation: service.NewReconciliationService(db, gateway),
		Configuration:  service.NewConfigurationService(db),
		Statistics:     service.NewStatisticsService(db),
		AuditLog:       service.NewAuditLogService(repository.NewAuditLogRepository(db)),
	}

	return &Container{
		db:         db,
		hub:        hub,
		gateway:    gateway,
		dispatcher: dispatcher,
		validator:  validator,
		services:   services,
	}, nil
}

// DB returns the database handle.
func (c *Container) DB() *gorm.DB {
	return c.db
}

// Hub returns the websocket hub.
func (c *Container) Hub() *websocket.Hub {
	return c.hub
}

// Gateway returns the notification gateway.
func (c *Container) Gateway() notify.Gateway {
	return c.gateway
}

// Dispatcher returns the outbox dispatcher.
func (c *Container) Dispatcher() *notify.Dispatcher {
	return c.dispatcher
}

// Validator returns the token validator.
func (c *Container) Validator() *auth.TokenValidator {
	return c.validator
}

// Services returns the service bundle for the HTTP layer.
func (c *Container) Services() *api.Services {
	return c.services
}

// Close releases the container's resources.
func (c *Container) Close() error {
	if c.db != nil {
		sqlDB, err := c.db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}

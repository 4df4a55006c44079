package api

import (
	"github.com/gin-gonic/gin"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/auth"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/config"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/service"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/websocket"
	"gorm.io/gorm"
)

// Services groups everything the HTTP layer depends on.
type Services struct {
	Request        service.RequestService
	Transition     service.TransitionService
	Approval       service.ApprovalService
	Quotation      service.QuotationService
	Reconciliation service.ReconciliationService
	Configuration  service.ConfigurationService
	Statistics     service.StatisticsService
	AuditLog       service.AuditLogService
}

// SetupRoutes builds the gin engine with all middleware and endpoints.
func SetupRoutes(cfg *config.Config, db *gorm.DB, hub *websocket.Hub, validator *auth.TokenValidator, services *Services) *gin.Engine {
	if config.IsProduction(cfg) {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(RequestIDMiddleware())
	router.Use(RequestLogMiddleware())
	router.Use(SecurityHeadersMiddleware())
	router.Use(CORSMiddleware(cfg.CORS.AllowedOrigins))
	router.Use(RateLimitMiddleware(100, 200))

	healthController := NewHealthController(db)
	router.GET("/health", healthController.Check)

	router.GET("/metrics", MetricsHandler)

	if hub != nil && validator != nil {
		router.GET("/ws", websocket.Handler(hub, validator))
	}

	requestController := NewRequestController(services.Request, services.Transition, services.AuditLog)
	approvalController := NewApprovalController(services.Approval, services.AuditLog)
	quotationController := NewQuotationController(services.Quotation, services.Reconciliation, services.AuditLog)
	configurationController := NewConfigurationController(services.Configuration, services.AuditLog)
	statisticsController := NewStatisticsController(services.Statistics)

	v1 := router.Group("/api/v1")
	v1.Use(auth.Middleware(validator))
	{
		requests := v1.Group("/requests")
		{
			requests.POST("", requestController.Create)
			requests.GET("", requestController.List)
			requests.GET("/:id", requestController.Get)
			requests.POST("/:id/transition", requestController.Transition)
			requests.POST("/:id/approval", approvalController.Submit)
			requests.POST("/:id/quotation", quotationController.Open)
		}

		quotations := v1.Group("/quotations")
		{
			quotations.GET("/:id", quotationController.Get)
			quotations.POST("/:id/suppliers", quotationController.RegisterSupplier)
			quotations.POST("/:id/selection", quotationController.Select)
		}

		v1.GET("/config/approval", configurationController.Active)
		v1.PUT("/config/approval", configurationController.Update)

		v1.GET("/statistics", statisticsController.Collect)
	}

	return router
}

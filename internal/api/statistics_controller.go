package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/service"
)

// StatisticsController exposes workflow-level aggregates.
type StatisticsController struct {
	statisticsService service.StatisticsService
}

// NewStatisticsController creates a statistics controller.
func NewStatisticsController(statisticsService service.StatisticsService) *StatisticsController {
	return &StatisticsController{statisticsService: statisticsService}
}

// Collect returns request counts per phase and spending aggregates.
func (c *StatisticsController) Collect(ctx *gin.Context) {
	stats, err := c.statisticsService.Collect(ctx.Request.Context())
	if err != nil {
		Error(ctx, http.StatusInternalServerError, "failed to collect statistics", err.Error())
		return
	}

	Success(ctx, stats)
}

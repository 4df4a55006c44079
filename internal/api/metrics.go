package api

import (
	"github.com/gin-gonic/gin"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/metrics"
)

// MetricsHandler serves the Prometheus scrape endpoint.
func MetricsHandler(c *gin.Context) {
	metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	lens SearchService
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(lens SearchService) *HealthHandler {
	return &HealthHandler{lens: lens}
}

// HealthCheck handles GET /health
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ReadinessCheck handles GET /ready. The service is ready once the
// company directory has loaded.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	if h.lens == nil || len(h.lens.Companies()) == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"reason": "company directory not loaded",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"companies": len(h.lens.Companies()),
	})
}

// LivenessCheck handles GET /live
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

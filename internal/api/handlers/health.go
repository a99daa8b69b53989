package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inkfold/inkfold/internal/health"
	"github.com/inkfold/inkfold/pkg/utils"
)

// HealthHandler exposes liveness and readiness endpoints
type HealthHandler struct {
	checker *health.Checker
}

func NewHealthHandler(checker *health.Checker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// HandleHealth processes GET /health requests
func (h *HealthHandler) HandleHealth(c *gin.Context) {
	result := h.checker.CheckAll()

	status := http.StatusOK
	if result.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}

	utils.SuccessResponse(c, status, "Health check completed", result)
}

// HandleLiveness processes GET /health/live requests
func (h *HealthHandler) HandleLiveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

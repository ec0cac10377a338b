package handlers

import (
	"net/http"

	"github.com/Ayash-Bera/student-lookup/internal/health"
	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	checker *health.HealthChecker
}

func NewHealthHandler(checker *health.HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// HandleHealth reports 503 when any dependency is down.
func (h *HealthHandler) HandleHealth(c *gin.Context) {
	result := h.checker.CheckAll(c.Request.Context())

	code := http.StatusOK
	if result.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, result)
}

package handler

import (
	"net/http"

	"callpilot/internal/service"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	checker *service.HealthChecker
}

// NewHealthHandler creates a new HealthHandler instance
func NewHealthHandler(checker *service.HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// HandleHealth handles GET requests to the /health endpoint
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthStatus, err := h.checker.CheckHealth()
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to perform health check")
		return
	}

	status := http.StatusOK
	if healthStatus.Status != service.StatusHealthy {
		status = http.StatusServiceUnavailable
	}

	WriteJSON(w, status, healthStatus)
}

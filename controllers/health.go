package controllers

import (
	"net/http"
	"time"
)

// HealthController reports process liveness
type HealthController struct {
	environment string
}

// NewHealthController creates a new health controller
func NewHealthController(environment string) *HealthController {
	return &HealthController{environment: environment}
}

// Check handles GET /api/health
func (c *HealthController) Check(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "OK",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": c.environment,
	})
}

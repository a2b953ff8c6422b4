package controllers

import (
	"net/http"
	"time"

	"github.com/organize/auth-gateway/repositories"
)

// UsageController reports OAuth endpoint usage from the login event log
type UsageController struct {
	events repositories.LoginEventRepository
}

// NewUsageController creates a new usage controller
func NewUsageController(events repositories.LoginEventRepository) *UsageController {
	return &UsageController{events: events}
}

// Report handles GET /api/usage
func (c *UsageController) Report(w http.ResponseWriter, r *http.Request) {
	counts, err := c.events.Counts()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Failed to load usage information",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "OAuth usage information",
		"endpoints": map[string]string{
			"google_oauth":    "/api/auth/google",
			"google_callback": "/auth/google/callback",
			"github_oauth":    "/api/auth/github",
			"github_callback": "/auth/github/callback",
		},
		"logins":    counts,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

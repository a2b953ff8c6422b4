package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/organize/auth-gateway/repositories"
	"github.com/organize/auth-gateway/services"
)

// Controllers holds all controller instances
type Controllers struct {
	Auth   *AuthController
	Health *HealthController
	Usage  *UsageController
}

// NewControllers creates and initializes all controller instances
func NewControllers(services *services.Services, repos *repositories.Repositories, environment string) *Controllers {
	return &Controllers{
		Auth:   NewAuthController(services.Auth),
		Health: NewHealthController(environment),
		Usage:  NewUsageController(repos.LoginEvents),
	}
}

// writeJSON serializes v with the given status code
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

package services

import (
	"github.com/organize/auth-gateway/authenticator"
	"github.com/organize/auth-gateway/metrics"
	"github.com/organize/auth-gateway/repositories"
	"github.com/organize/auth-gateway/tokens"
)

// Services holds all service instances
type Services struct {
	Auth AuthService
}

// NewServices creates and initializes all services
func NewServices(
	registry *authenticator.Registry,
	issuer *tokens.Issuer,
	repos *repositories.Repositories,
	recorder metrics.Recorder,
) *Services {
	return &Services{
		Auth: NewAuthService(registry, issuer, repos.LoginEvents, recorder),
	}
}

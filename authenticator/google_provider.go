package authenticator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/organize/auth-gateway/models"
)

// GoogleProvider implements the Provider interface for Google OIDC.
type GoogleProvider struct {
	provider *oidc.Provider
	config   oauth2.Config
}

// GoogleProfile is the raw profile shape returned by Google's userinfo
// endpoint. The v2 endpoint returns "id" while the OIDC endpoint
// returns "sub"; both are accepted.
type GoogleProfile struct {
	Sub       string `json:"sub"`
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	GivenName string `json:"given_name"`
	Picture   string `json:"picture"`
}

// NewGoogleProvider creates a new Google provider with the given configuration.
// When an issuer URL is configured the endpoints are discovered via OIDC;
// otherwise the configured endpoints are used directly.
func NewGoogleProvider(ctx context.Context, cfg Config) (*GoogleProvider, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if cfg.ClientSecret == "" {
		return nil, errors.New("client secret is required")
	}
	if cfg.RedirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	var provider *oidc.Provider
	if cfg.IssuerURL != "" {
		discovered, err := oidc.NewProvider(ctx, cfg.IssuerURL)
		if err != nil {
			return nil, fmt.Errorf("google oidc discovery failed: %w", err)
		}
		provider = discovered
	} else {
		if cfg.AuthURL == "" || cfg.TokenURL == "" || cfg.ProfileURL == "" {
			return nil, errors.New("auth, token and profile URLs are required without an issuer")
		}
		provider = (&oidc.ProviderConfig{
			AuthURL:     cfg.AuthURL,
			TokenURL:    cfg.TokenURL,
			UserInfoURL: cfg.ProfileURL,
		}).NewProvider(ctx)
	}

	conf := oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       cfg.Scopes,
	}

	return &GoogleProvider{
		provider: provider,
		config:   conf,
	}, nil
}

// Name returns the provider identifier used by the registry.
func (p *GoogleProvider) Name() string {
	return string(models.ProviderGoogle)
}

// AuthCodeURL returns the Google authorization URL requesting offline
// access with a forced consent prompt.
func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(
		state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// Exchange trades an authorization code for tokens.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*Token, error) {
	return exchangeCode(ctx, &p.config, code)
}

// FetchProfile retrieves the userinfo document and normalizes it.
func (p *GoogleProvider) FetchProfile(ctx context.Context, token *Token) (models.Identity, error) {
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token.AccessToken})
	info, err := p.provider.UserInfo(ctx, source)
	if err != nil {
		if strings.Contains(err.Error(), "401") || strings.Contains(err.Error(), "Unauthorized") {
			return models.Identity{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
		return models.Identity{}, fmt.Errorf("userinfo fetch failed: %w", err)
	}

	var profile GoogleProfile
	if err := info.Claims(&profile); err != nil {
		return models.Identity{}, fmt.Errorf("failed to decode userinfo claims: %w", err)
	}

	return NormalizeGoogle(profile), nil
}

// NormalizeGoogle maps a raw Google profile to the canonical identity.
// It is deterministic and performs no I/O.
func NormalizeGoogle(profile GoogleProfile) models.Identity {
	externalID := profile.Sub
	if externalID == "" {
		externalID = profile.ID
	}

	displayName := profile.Name
	if displayName == "" {
		displayName = profile.GivenName
	}
	if displayName == "" {
		displayName = profile.Email
	}

	return models.Identity{
		ExternalID:  externalID,
		Email:       profile.Email,
		DisplayName: displayName,
		AvatarURL:   profile.Picture,
		Provider:    models.ProviderGoogle,
	}
}

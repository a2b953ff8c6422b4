package authenticator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/organize/auth-gateway/models"
)

// Config holds the OAuth settings for one provider instance.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AuthURL      string
	TokenURL     string
	ProfileURL   string
	EmailURL     string
	IssuerURL    string
	Scopes       []string
}

// Token represents the credentials returned by a provider's token endpoint.
type Token struct {
	AccessToken  string
	RefreshToken string
	IDToken      string
	Expiry       time.Time
}

var (
	// ErrUnknownProvider is returned when a provider name is not registered.
	ErrUnknownProvider = errors.New("unknown provider")
	// ErrNoToken is returned when a token response lacks an access token.
	ErrNoToken = errors.New("provider response missing access token")
	// ErrProviderRejected is returned on a non-success token endpoint status.
	ErrProviderRejected = errors.New("provider rejected the authorization code")
	// ErrUnauthorized is returned when the provider rejects the access token.
	ErrUnauthorized = errors.New("provider rejected the access token")
)

// Provider interface abstracts one external identity provider.
// Implementations make a single attempt per call and never retry;
// the caller decides how a failure is reported.
type Provider interface {
	// Name returns the provider identifier (e.g. "google", "github").
	Name() string

	// AuthCodeURL returns the provider authorization URL. It performs
	// no network call and is deterministic for a given configuration.
	AuthCodeURL(state string) string

	// Exchange trades an authorization code for provider credentials.
	Exchange(ctx context.Context, code string) (*Token, error)

	// FetchProfile retrieves the user's profile with the access token
	// and returns it normalized.
	FetchProfile(ctx context.Context, token *Token) (models.Identity, error)
}

// Registry holds all configured providers keyed by name.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry registers the given providers by name.
func NewRegistry(list ...Provider) *Registry {
	m := make(map[string]Provider)
	for _, p := range list {
		m[p.Name()] = p
	}
	return &Registry{providers: m}
}

// Get returns the provider by name or ErrUnknownProvider.
func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	return p, nil
}

// Names returns the registered provider names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}

// exchangeCode performs the authorization-code exchange shared by both
// providers and maps transport, rejection and missing-token failures to
// distinct errors.
func exchangeCode(ctx context.Context, conf *oauth2.Config, code string) (*Token, error) {
	oauth2Token, err := conf.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return nil, fmt.Errorf("%w: %s", ErrProviderRejected, http.StatusText(retrieveErr.Response.StatusCode))
		}
		if strings.Contains(err.Error(), "missing access_token") {
			return nil, ErrNoToken
		}
		return nil, fmt.Errorf("token endpoint unreachable: %w", err)
	}
	if oauth2Token.AccessToken == "" {
		return nil, ErrNoToken
	}

	token := &Token{
		AccessToken:  oauth2Token.AccessToken,
		RefreshToken: oauth2Token.RefreshToken,
		Expiry:       oauth2Token.Expiry,
	}

	// Extract ID token if present
	if idToken, ok := oauth2Token.Extra("id_token").(string); ok {
		token.IDToken = idToken
	}

	return token, nil
}

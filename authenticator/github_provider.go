package authenticator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"

	"github.com/organize/auth-gateway/models"
)

// GitHubProvider implements the Provider interface for GitHub OAuth 2.0.
// Unlike Google, GitHub issues no ID token, so the profile requires an
// API call, and user emails live behind a second endpoint because many
// accounts keep the profile email private.
type GitHubProvider struct {
	config     oauth2.Config
	profileURL string
	emailURL   string
}

// GitHubUser is the raw profile returned by the GitHub user endpoint.
type GitHubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

// GitHubEmail is one email record from the GitHub emails endpoint.
type GitHubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// NewGitHubProvider creates a new GitHub provider with the given configuration.
func NewGitHubProvider(cfg Config) (*GitHubProvider, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if cfg.ClientSecret == "" {
		return nil, errors.New("client secret is required")
	}
	if cfg.RedirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}
	if cfg.AuthURL == "" || cfg.TokenURL == "" || cfg.ProfileURL == "" || cfg.EmailURL == "" {
		return nil, errors.New("auth, token, profile and email URLs are required")
	}

	conf := oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint: oauth2.Endpoint{
			AuthURL:  cfg.AuthURL,
			TokenURL: cfg.TokenURL,
		},
		Scopes: cfg.Scopes,
	}

	return &GitHubProvider{
		config:     conf,
		profileURL: cfg.ProfileURL,
		emailURL:   cfg.EmailURL,
	}, nil
}

// Name returns the provider identifier used by the registry.
func (p *GitHubProvider) Name() string {
	return string(models.ProviderGitHub)
}

// AuthCodeURL returns the GitHub authorization URL.
func (p *GitHubProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(
		state,
		oauth2.SetAuthURLParam("allow_signup", "true"),
	)
}

// Exchange trades an authorization code for an access token.
func (p *GitHubProvider) Exchange(ctx context.Context, code string) (*Token, error) {
	return exchangeCode(ctx, &p.config, code)
}

// FetchProfile retrieves the user profile and the email list, then
// normalizes them. Two outbound calls, one attempt each.
func (p *GitHubProvider) FetchProfile(ctx context.Context, token *Token) (models.Identity, error) {
	client := p.config.Client(ctx, &oauth2.Token{AccessToken: token.AccessToken})

	var user GitHubUser
	if err := getJSON(ctx, client, p.profileURL, &user); err != nil {
		return models.Identity{}, err
	}

	var emails []GitHubEmail
	if err := getJSON(ctx, client, p.emailURL, &emails); err != nil {
		return models.Identity{}, err
	}

	return NormalizeGitHub(user, emails), nil
}

// NormalizeGitHub maps a raw GitHub profile and email list to the
// canonical identity. The primary email record wins; without one the
// profile email is used, and the email may end up empty. The display
// name falls back to the login handle.
func NormalizeGitHub(user GitHubUser, emails []GitHubEmail) models.Identity {
	email := user.Email
	for _, e := range emails {
		if e.Primary {
			email = e.Email
			break
		}
	}

	displayName := user.Name
	if displayName == "" {
		displayName = user.Login
	}

	var externalID string
	if user.ID != 0 {
		externalID = strconv.FormatInt(user.ID, 10)
	}

	return models.Identity{
		ExternalID:  externalID,
		Email:       email,
		DisplayName: displayName,
		AvatarURL:   user.AvatarURL,
		Provider:    models.ProviderGitHub,
	}
}

// getJSON performs one authenticated GET against the GitHub API.
func getJSON(ctx context.Context, client *http.Client, url string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("github api unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github api error: status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode github response: %w", err)
	}
	return nil
}

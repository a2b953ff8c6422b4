// Package config loads the process configuration once at startup.
// Required values are validated eagerly: a misconfigured provider or a
// missing signing secret prevents the gateway from starting at all
// instead of failing on the first login.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/organize/auth-gateway/authenticator"
)

// Google endpoint defaults matching the reference deployment.
const (
	googleAuthURL    = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL   = "https://oauth2.googleapis.com/token"
	googleProfileURL = "https://www.googleapis.com/oauth2/v2/userinfo"

	githubAuthURL    = "https://github.com/login/oauth/authorize"
	githubTokenURL   = "https://github.com/login/oauth/access_token"
	githubProfileURL = "https://api.github.com/user"
	githubEmailURL   = "https://api.github.com/user/emails"
)

// Config is the immutable process configuration, constructed once in
// main and passed by reference to every component that needs it.
type Config struct {
	Port          string
	AppURL        string
	Environment   string
	SessionSecret string
	SecureCookies bool
	DatabasePath  string

	Google authenticator.Config
	GitHub authenticator.Config
}

// rawEnv holds raw environment values before defaults and validation.
type rawEnv struct {
	Port          string `env:"PORT" envDefault:"3000"`
	AppURL        string `env:"APP_URL" envDefault:"http://localhost:3000"`
	Environment   string `env:"APP_ENV" envDefault:"development"`
	SessionSecret string `env:"SESSION_SECRET"`
	UseHTTPS      bool   `env:"USE_HTTPS" envDefault:"false"`
	DatabasePath  string `env:"DATABASE_PATH" envDefault:"auth_gateway.db"`

	GoogleClientID     string   `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string   `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURI  string   `env:"GOOGLE_REDIRECT_URI"`
	GoogleScopes       []string `env:"GOOGLE_SCOPES" envSeparator:","`

	GitHubClientID     string   `env:"GITHUB_CLIENT_ID"`
	GitHubClientSecret string   `env:"GITHUB_CLIENT_SECRET"`
	GitHubRedirectURI  string   `env:"GITHUB_REDIRECT_URI"`
	GitHubScopes       []string `env:"GITHUB_SCOPES" envSeparator:","`
}

// Load parses the environment into a validated Config.
func Load() (*Config, error) {
	var raw rawEnv
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	var missing []string
	if raw.GoogleClientID == "" {
		missing = append(missing, "GOOGLE_CLIENT_ID")
	}
	if raw.GoogleClientSecret == "" {
		missing = append(missing, "GOOGLE_CLIENT_SECRET")
	}
	if raw.GitHubClientID == "" {
		missing = append(missing, "GITHUB_CLIENT_ID")
	}
	if raw.GitHubClientSecret == "" {
		missing = append(missing, "GITHUB_CLIENT_SECRET")
	}
	// There is no fallback signing secret.
	if raw.SessionSecret == "" {
		missing = append(missing, "SESSION_SECRET")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	appURL := strings.TrimRight(raw.AppURL, "/")

	googleRedirect := raw.GoogleRedirectURI
	if googleRedirect == "" {
		googleRedirect = appURL + "/auth/google/callback"
	}
	googleScopes := raw.GoogleScopes
	if len(googleScopes) == 0 {
		googleScopes = []string{
			"https://www.googleapis.com/auth/userinfo.profile",
			"https://www.googleapis.com/auth/userinfo.email",
		}
	}

	githubRedirect := raw.GitHubRedirectURI
	if githubRedirect == "" {
		githubRedirect = appURL + "/auth/github/callback"
	}
	githubScopes := raw.GitHubScopes
	if len(githubScopes) == 0 {
		githubScopes = []string{"user:email"}
	}

	return &Config{
		Port:          raw.Port,
		AppURL:        appURL,
		Environment:   raw.Environment,
		SessionSecret: raw.SessionSecret,
		SecureCookies: raw.UseHTTPS,
		DatabasePath:  raw.DatabasePath,
		Google: authenticator.Config{
			ClientID:     raw.GoogleClientID,
			ClientSecret: raw.GoogleClientSecret,
			RedirectURL:  googleRedirect,
			AuthURL:      googleAuthURL,
			TokenURL:     googleTokenURL,
			ProfileURL:   googleProfileURL,
			Scopes:       googleScopes,
		},
		GitHub: authenticator.Config{
			ClientID:     raw.GitHubClientID,
			ClientSecret: raw.GitHubClientSecret,
			RedirectURL:  githubRedirect,
			AuthURL:      githubAuthURL,
			TokenURL:     githubTokenURL,
			ProfileURL:   githubProfileURL,
			EmailURL:     githubEmailURL,
			Scopes:       githubScopes,
		},
	}, nil
}

package services

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/organize/auth-gateway/authenticator"
	"github.com/organize/auth-gateway/logger"
	"github.com/organize/auth-gateway/metrics"
	"github.com/organize/auth-gateway/models"
	"github.com/organize/auth-gateway/repositories"
	"github.com/organize/auth-gateway/tokens"
)

// FailureCode categorizes why an authentication flow failed.
type FailureCode string

const (
	FailUnknownProvider FailureCode = "unknown_provider"
	FailMissingCode     FailureCode = "missing_code"
	FailExchange        FailureCode = "exchange_failed"
	FailProfile         FailureCode = "profile_failed"
	FailIssue           FailureCode = "issue_failed"
)

// FlowError is the terminal failure of one authentication pass. Message
// is safe to show to the user; Err carries the internal detail.
type FlowError struct {
	Code    FailureCode
	Message string
	Err     error
}

func (e *FlowError) Error() string {
	if e.Err != nil {
		return string(e.Code) + ": " + e.Err.Error()
	}
	return string(e.Code)
}

func (e *FlowError) Unwrap() error {
	return e.Err
}

// LoginResult is the successful outcome of one callback pass.
type LoginResult struct {
	RedirectURL string
	Credential  *tokens.IssuedCredential
}

// CallbackMeta carries request metadata recorded with the login event.
type CallbackMeta struct {
	IPAddress string
	UserAgent string
}

// AuthService drives the authentication flow: it validates inputs,
// invokes the right provider, and turns the result into either a
// signed credential or a categorized failure. Each callback invocation
// is one pass; failures are terminal and nothing is retried.
type AuthService interface {
	// LoginURL returns the authorization URL for the named provider.
	LoginURL(provider string) (string, error)

	// HandleCallback runs the full code-to-credential flow.
	HandleCallback(ctx context.Context, provider, code string, meta CallbackMeta) (*LoginResult, *FlowError)
}

type authService struct {
	registry *authenticator.Registry
	issuer   *tokens.Issuer
	events   repositories.LoginEventRepository
	recorder metrics.Recorder
	log      *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	registry *authenticator.Registry,
	issuer *tokens.Issuer,
	events repositories.LoginEventRepository,
	recorder metrics.Recorder,
) AuthService {
	return &authService{
		registry: registry,
		issuer:   issuer,
		events:   events,
		recorder: recorder,
		log:      logger.Named("auth"),
	}
}

// LoginURL builds the provider authorization URL. No network call is
// made and the only possible failure is an unknown provider.
func (s *authService) LoginURL(provider string) (string, error) {
	p, err := s.registry.Get(provider)
	if err != nil {
		return "", &FlowError{
			Code:    FailUnknownProvider,
			Message: "Unknown authentication provider",
			Err:     err,
		}
	}

	// No per-request state is issued, matching the reference flow; the
	// empty state leaves the parameter out of the URL entirely.
	return p.AuthCodeURL(""), nil
}

// HandleCallback turns an authorization code into a signed credential:
// exchange the code, fetch the profile, issue the credential. A missing
// code or unknown provider fails before any outbound call.
func (s *authService) HandleCallback(ctx context.Context, provider, code string, meta CallbackMeta) (*LoginResult, *FlowError) {
	start := time.Now()

	p, err := s.registry.Get(provider)
	if err != nil {
		return nil, s.fail(provider, meta, FailUnknownProvider, "Unknown authentication provider", err)
	}

	if code == "" {
		return nil, s.fail(provider, meta, FailMissingCode, "No authorization code received", nil)
	}

	token, err := p.Exchange(ctx, code)
	if err != nil {
		message := "Authentication failed"
		if errors.Is(err, authenticator.ErrNoToken) {
			message = "Failed to get access token"
		}
		return nil, s.fail(provider, meta, FailExchange, message, err)
	}

	identity, err := p.FetchProfile(ctx, token)
	if err != nil {
		return nil, s.fail(provider, meta, FailProfile, "Authentication failed", err)
	}

	credential, err := s.issuer.Issue(identity)
	if err != nil {
		return nil, s.fail(provider, meta, FailIssue, "Authentication failed", err)
	}

	s.recorder.RecordLogin(provider, "success")
	s.recorder.RecordCallbackDuration(provider, time.Since(start))
	s.record(provider, "success", "", identity.Email, meta)
	s.log.Info("login succeeded",
		zap.String("provider", provider),
		zap.String("external_id", identity.ExternalID),
	)

	return &LoginResult{
		RedirectURL: "/?login=success&token=" + url.QueryEscape(credential.Token),
		Credential:  credential,
	}, nil
}

// fail records the failure and returns its FlowError.
func (s *authService) fail(provider string, meta CallbackMeta, code FailureCode, message string, cause error) *FlowError {
	s.recorder.RecordLogin(provider, string(code))
	reason := ""
	if cause != nil {
		reason = cause.Error()
	}
	s.record(provider, string(code), reason, "", meta)
	s.log.Warn("login failed",
		zap.String("provider", provider),
		zap.String("code", string(code)),
		zap.Error(cause),
	)
	return &FlowError{Code: code, Message: message, Err: cause}
}

// record persists the login event asynchronously so a slow disk never
// blocks the callback response.
func (s *authService) record(provider, outcome, reason, email string, meta CallbackMeta) {
	event := &models.LoginEvent{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Provider:  provider,
		Outcome:   outcome,
		Reason:    reason,
		Email:     email,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	}

	go func() {
		if err := s.events.Create(event); err != nil {
			s.log.Warn("failed to record login event", zap.Error(err))
		}
	}()
}

package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"

	"gitea.com/go-chi/session"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/organize/auth-gateway/logger"
	authmiddleware "github.com/organize/auth-gateway/middleware"
	"github.com/organize/auth-gateway/models"
	"github.com/organize/auth-gateway/services"
	"github.com/organize/auth-gateway/tokens"
)

// fakeAuthService stubs the orchestrator behind the controller.
type fakeAuthService struct {
	loginURL string
	loginErr error
	result   *services.LoginResult
	flowErr  *services.FlowError
}

func (f *fakeAuthService) LoginURL(provider string) (string, error) {
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return f.loginURL, nil
}

func (f *fakeAuthService) HandleCallback(ctx context.Context, provider, code string, meta services.CallbackMeta) (*services.LoginResult, *services.FlowError) {
	return f.result, f.flowErr
}

// newAuthTestServer wires the controller into a router with the same
// session middleware the real router uses.
func newAuthTestServer(t *testing.T, svc services.AuthService, issuer *tokens.Issuer) (*httptest.Server, *http.Client) {
	t.Helper()

	r := chi.NewRouter()
	sessionHandler, err := session.Sessioner(session.Options{
		Provider:    "memory",
		CookieName:  "auth_gateway_session",
		Gclifetime:  3600,
		Maxlifetime: 3600,
	})
	require.NoError(t, err)
	r.Use(sessionHandler)
	if issuer != nil {
		r.Use(authmiddleware.BearerAuth(issuer, logger.Named("test")))
	}

	ctrl := NewAuthController(svc)
	r.Post("/api/auth/{provider}", ctrl.Initiate)
	r.Get("/auth/{provider}/callback", ctrl.Callback)
	r.Get("/auth/status", ctrl.Status)
	r.Get("/auth/logout", ctrl.Logout)
	r.Get("/api/me", ctrl.Me)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return server, client
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestInitiateReturnsAuthURL(t *testing.T) {
	svc := &fakeAuthService{loginURL: "https://accounts.example.com/auth?client_id=x"}
	server, client := newAuthTestServer(t, svc, nil)

	resp, err := client.Post(server.URL+"/api/auth/google", "application/json", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "https://accounts.example.com/auth?client_id=x", body["auth_url"])
}

func TestInitiateUnknownProvider(t *testing.T) {
	svc := &fakeAuthService{loginErr: &services.FlowError{Code: services.FailUnknownProvider, Message: "Unknown authentication provider"}}
	server, client := newAuthTestServer(t, svc, nil)

	resp, err := client.Post(server.URL+"/api/auth/facebook", "application/json", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "Failed to generate auth URL", body["error"])
}

func TestCallbackFailureRedirectsWithError(t *testing.T) {
	svc := &fakeAuthService{flowErr: &services.FlowError{
		Code:    services.FailMissingCode,
		Message: "No authorization code received",
	}}
	server, client := newAuthTestServer(t, svc, nil)

	resp, err := client.Get(server.URL + "/auth/google/callback")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/?error="+url.QueryEscape("No authorization code received"), resp.Header.Get("Location"))
}

// The callback establishes the session, so a following status read on
// the same cookie reports the user as authenticated; logout clears it.
func TestCallbackSessionLifecycle(t *testing.T) {
	identity := models.Identity{
		ExternalID:  "42",
		Email:       "a@x.com",
		DisplayName: "A",
		Provider:    models.ProviderGoogle,
	}
	issuer := tokens.NewIssuer("test-secret")
	credential, err := issuer.Issue(identity)
	require.NoError(t, err)

	svc := &fakeAuthService{result: &services.LoginResult{
		RedirectURL: "/?login=success&token=" + url.QueryEscape(credential.Token),
		Credential:  credential,
	}}
	server, client := newAuthTestServer(t, svc, issuer)

	// Callback: success redirect with the encoded credential
	resp, err := client.Get(server.URL + "/auth/google/callback?code=abc")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "/?login=success&token=")

	// Status: the session channel now knows the user
	resp, err = client.Get(server.URL + "/auth/status")
	require.NoError(t, err)
	body := decodeBody(t, resp)
	assert.Equal(t, true, body["authenticated"])
	user, ok := body["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "42", user["id"])
	assert.Equal(t, "a@x.com", user["email"])

	// Logout: always redirects home
	resp, err = client.Get(server.URL + "/auth/logout")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	// Status: session is gone
	resp, err = client.Get(server.URL + "/auth/status")
	require.NoError(t, err)
	body = decodeBody(t, resp)
	assert.Equal(t, false, body["authenticated"])

	// Me: the bearer channel is independent of the session and still
	// accepts the credential issued before logout
	req, err := http.NewRequest(http.MethodGet, server.URL+"/api/me", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+credential.Token)
	resp, err = client.Do(req)
	require.NoError(t, err)
	body = decodeBody(t, resp)
	assert.Equal(t, true, body["authenticated"])
}

func TestStatusAnonymous(t *testing.T) {
	server, client := newAuthTestServer(t, &fakeAuthService{}, nil)

	resp, err := client.Get(server.URL + "/auth/status")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, false, body["authenticated"])
}

func TestMeWithoutToken(t *testing.T) {
	issuer := tokens.NewIssuer("test-secret")
	server, client := newAuthTestServer(t, &fakeAuthService{}, issuer)

	resp, err := client.Get(server.URL + "/api/me")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, false, body["authenticated"])
	assert.Equal(t, "Not logged in", body["message"])
}

func TestMeWithInvalidToken(t *testing.T) {
	issuer := tokens.NewIssuer("test-secret")
	server, client := newAuthTestServer(t, &fakeAuthService{}, issuer)

	req, err := http.NewRequest(http.MethodGet, server.URL+"/api/me", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer not-a-credential")
	resp, err := client.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

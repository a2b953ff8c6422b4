package controllers

import (
	"net/http"
	"net/url"

	"gitea.com/go-chi/session"
	"github.com/go-chi/chi/v5"

	"github.com/organize/auth-gateway/middleware"
	"github.com/organize/auth-gateway/models"
	"github.com/organize/auth-gateway/services"
	"github.com/organize/auth-gateway/userctx"
)

// sessionUserKey is the session key holding the authenticated identity.
const sessionUserKey = "user"

// AuthController handles the authentication HTTP surface. Two identity
// channels coexist on purpose: the server-side session set at callback
// time (read by Status) and the bearer credential carried by clients
// (read by Me). They are checked independently and may disagree.
type AuthController struct {
	auth services.AuthService
}

// NewAuthController creates a new auth controller
func NewAuthController(auth services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

// Initiate handles POST /api/auth/{provider} and returns the provider
// authorization URL for the client to redirect to.
func (c *AuthController) Initiate(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	authURL, err := c.auth.LoginURL(provider)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Failed to generate auth URL",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"auth_url": authURL,
	})
}

// Callback handles GET /auth/{provider}/callback. Every failure is
// converted to a redirect carrying a readable error message; a success
// establishes the session and redirects with the encoded credential.
func (c *AuthController) Callback(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	code := r.URL.Query().Get("code")
	meta := services.CallbackMeta{
		IPAddress: middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
	}

	result, flowErr := c.auth.HandleCallback(r.Context(), provider, code, meta)
	if flowErr != nil {
		http.Redirect(w, r, "/?error="+url.QueryEscape(flowErr.Message), http.StatusFound)
		return
	}

	// Establish the cookie session alongside the bearer credential.
	sess := session.GetSession(r)
	sess.Set(sessionUserKey, result.Credential.Identity)

	http.Redirect(w, r, result.RedirectURL, http.StatusFound)
}

// Status handles GET /auth/status using only the session channel.
func (c *AuthController) Status(w http.ResponseWriter, r *http.Request) {
	sess := session.GetSession(r)

	identity, ok := sess.Get(sessionUserKey).(models.Identity)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"authenticated": false,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"authenticated": true,
		"user":          identity,
	})
}

// Me handles GET /api/me using only the bearer-token channel.
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := userctx.IdentityFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
			"authenticated": false,
			"message":       "Not logged in",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"authenticated": true,
		"user":          identity,
	})
}

// Logout handles GET /auth/logout. The session is flushed; any issued
// bearer credential stays valid until it expires. Always redirects home.
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	sess := session.GetSession(r)
	_ = sess.Flush()

	http.Redirect(w, r, "/", http.StatusFound)
}

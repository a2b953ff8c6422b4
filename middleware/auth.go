package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/organize/auth-gateway/models"
	"github.com/organize/auth-gateway/userctx"
)

// TokenVerifier validates an encoded credential and returns the
// identity it carries.
type TokenVerifier interface {
	Verify(token string) (models.Identity, error)
}

// BearerAuth extracts and verifies a bearer credential from the
// Authorization header, storing the identity in the request context.
// Requests without a token, or with an invalid one, continue
// anonymously: endpoints decide whether authentication is required.
func BearerAuth(verifier TokenVerifier, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := verifier.Verify(token)
			if err != nil {
				log.Debug("bearer credential rejected", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			ctx := userctx.WithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

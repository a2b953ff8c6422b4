package userctx

import (
	"context"

	"github.com/organize/auth-gateway/models"
)

// Context key type
type contextKey string

const identityKey contextKey = "identity"

// WithIdentity adds the authenticated identity to the request context.
func WithIdentity(ctx context.Context, identity models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFrom retrieves the authenticated identity from the request
// context. The second return is false for anonymous requests.
func IdentityFrom(ctx context.Context) (models.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(models.Identity)
	return identity, ok
}

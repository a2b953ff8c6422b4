// Package tokens issues and verifies the signed identity credentials
// handed to clients after a successful login.
package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/organize/auth-gateway/models"
)

// CredentialTTL is the fixed validity window of an issued credential.
// A credential is never refreshed in place; a new one must be issued.
const CredentialTTL = 24 * time.Hour

var (
	// ErrMalformed is returned when a token cannot be parsed at all.
	ErrMalformed = errors.New("credential is malformed")
	// ErrExpired is returned when a token's validity window has passed.
	ErrExpired = errors.New("credential has expired")
	// ErrBadSignature is returned when the signature does not verify.
	ErrBadSignature = errors.New("credential signature is invalid")
)

// Claims is the signed payload: the full canonical identity plus the
// registered time claims.
type Claims struct {
	jwt.RegisteredClaims
	ExternalID  string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"name"`
	AvatarURL   string `json:"picture"`
	Provider    string `json:"provider"`
}

// IssuedCredential is an immutable signed credential with its validity window.
type IssuedCredential struct {
	Token     string
	Identity  models.Identity
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Issuer signs canonical identities into time-bounded credentials and
// verifies inbound ones. Safe for concurrent use.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates an issuer signing with the given symmetric secret.
func NewIssuer(secret string) *Issuer {
	return &Issuer{
		secret: []byte(secret),
		ttl:    CredentialTTL,
		now:    time.Now,
	}
}

// WithClock returns a copy of the issuer using the given time source.
// Used by tests to exercise the expiry boundary.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	clone := *i
	clone.now = now
	return &clone
}

// Issue signs the identity into a credential valid for CredentialTTL.
func (i *Issuer) Issue(identity models.Identity) (*IssuedCredential, error) {
	issuedAt := i.now()
	expiresAt := issuedAt.Add(i.ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ExternalID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		ExternalID:  identity.ExternalID,
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
		AvatarURL:   identity.AvatarURL,
		Provider:    string(identity.Provider),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign credential: %w", err)
	}

	return &IssuedCredential{
		Token:     signed,
		Identity:  identity,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// Verify validates the signature and expiry of an encoded credential
// and returns the identity it carries. Garbage input yields a typed
// error, never a panic; an absent token is the caller's anonymous
// state and should not reach Verify.
func (i *Issuer) Verify(token string) (models.Identity, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(
		token,
		&claims,
		func(t *jwt.Token) (interface{}, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return models.Identity{}, mapJWTError(err)
	}

	return models.Identity{
		ExternalID:  claims.ExternalID,
		Email:       claims.Email,
		DisplayName: claims.DisplayName,
		AvatarURL:   claims.AvatarURL,
		Provider:    models.Provider(claims.Provider),
	}, nil
}

// mapJWTError converts jwt parse failures into the verifier's error taxonomy.
func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrBadSignature
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}

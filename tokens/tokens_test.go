package tokens

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/organize/auth-gateway/models"
)

var testIdentity = models.Identity{
	ExternalID:  "42",
	Email:       "a@x.com",
	DisplayName: "A",
	AvatarURL:   "https://example.com/a.png",
	Provider:    models.ProviderGoogle,
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	issuer := NewIssuer("test-secret")

	credential, err := issuer.Issue(testIdentity)
	require.NoError(t, err)
	require.NotEmpty(t, credential.Token)
	assert.Equal(t, testIdentity, credential.Identity)
	assert.Equal(t, CredentialTTL, credential.ExpiresAt.Sub(credential.IssuedAt))

	verified, err := issuer.Verify(credential.Token)
	require.NoError(t, err)
	assert.Equal(t, testIdentity, verified)
}

func TestVerifyExpiredCredential(t *testing.T) {
	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewIssuer("test-secret").WithClock(func() time.Time { return issuedAt })

	credential, err := issuer.Issue(testIdentity)
	require.NoError(t, err)

	// One second past the 24 hour window
	late := issuer.WithClock(func() time.Time {
		return issuedAt.Add(CredentialTTL + time.Second)
	})
	_, err = late.Verify(credential.Token)
	assert.ErrorIs(t, err, ErrExpired)

	// Still inside the window
	early := issuer.WithClock(func() time.Time {
		return issuedAt.Add(CredentialTTL - time.Minute)
	})
	verified, err := early.Verify(credential.Token)
	require.NoError(t, err)
	assert.Equal(t, testIdentity, verified)
}

func TestVerifyTamperedSignature(t *testing.T) {
	issuer := NewIssuer("test-secret")

	credential, err := issuer.Issue(testIdentity)
	require.NoError(t, err)

	parts := strings.Split(credential.Token, ".")
	require.Len(t, parts, 3)

	// Flip one byte of the signature segment
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = issuer.Verify(tampered)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyWrongSecret(t *testing.T) {
	credential, err := NewIssuer("secret-one").Issue(testIdentity)
	require.NoError(t, err)

	_, err = NewIssuer("secret-two").Verify(credential.Token)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyGarbageInput(t *testing.T) {
	issuer := NewIssuer("test-secret")

	for _, token := range []string{"", "garbage", "a.b", "a.b.c.d", "%%%.%%%.%%%"} {
		_, err := issuer.Verify(token)
		if !errors.Is(err, ErrMalformed) {
			t.Errorf("Expected ErrMalformed for %q, got %v", token, err)
		}
	}
}

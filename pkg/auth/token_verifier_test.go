package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identityClaims(sub string, exp time.Time) IdentityClaims {
	return IdentityClaims{
		Email:             "alice@example.com",
		PreferredUsername: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func signHS256(t *testing.T, secret string, claims IdentityClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestTokenVerifierHMAC(t *testing.T) {
	v, err := NewTokenVerifier("top-secret", "")
	require.NoError(t, err)
	assert.True(t, v.VerifiesSignature())

	token := signHS256(t, "top-secret", identityClaims("kc-1", time.Now().Add(time.Hour)))
	claims, err := v.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "kc-1", claims.ExternalID())
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "alice", claims.PreferredUsername)

	_, err = v.Parse(signHS256(t, "other-secret", identityClaims("kc-1", time.Now().Add(time.Hour))))
	assert.Error(t, err)

	_, err = v.Parse(signHS256(t, "top-secret", identityClaims("kc-1", time.Now().Add(-time.Hour))))
	assert.Error(t, err)
}

func TestTokenVerifierRSA(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})

	v, err := NewTokenVerifier("", string(pubPEM))
	require.NoError(t, err)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, identityClaims("kc-rsa", time.Now().Add(time.Hour))).SignedString(key)
	require.NoError(t, err)

	claims, err := v.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "kc-rsa", claims.ExternalID())

	// HMAC tokens must not be accepted when only an RSA key is configured.
	_, err = v.Parse(signHS256(t, "whatever", identityClaims("kc-rsa", time.Now().Add(time.Hour))))
	assert.Error(t, err)
}

func TestTokenVerifierUnverified(t *testing.T) {
	v, err := NewTokenVerifier("", "")
	require.NoError(t, err)
	assert.False(t, v.VerifiesSignature())

	claims, err := v.Parse(signHS256(t, "any", identityClaims("kc-2", time.Now().Add(time.Hour))))
	require.NoError(t, err)
	assert.Equal(t, "kc-2", claims.ExternalID())

	_, err = v.Parse(signHS256(t, "any", identityClaims("kc-2", time.Now().Add(-time.Minute))))
	assert.ErrorIs(t, err, ErrTokenExpired)

	_, err = v.Parse(signHS256(t, "any", identityClaims("", time.Now().Add(time.Hour))))
	assert.ErrorIs(t, err, ErrMissingSubject)

	_, err = v.Parse("not-a-jwt")
	assert.Error(t, err)
}

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	service := NewTokenService("test-secret", time.Hour)

	token, err := service.GenerateToken(RoleAdmin)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, claims.Role)
}

func TestTokenRequiresRole(t *testing.T) {
	service := NewTokenService("test-secret", time.Hour)
	_, err := service.GenerateToken("")
	assert.Error(t, err)
}

func TestTokenWrongSecretRejected(t *testing.T) {
	issuer := NewTokenService("secret-a", time.Hour)
	verifier := NewTokenService("secret-b", time.Hour)

	token, err := issuer.GenerateToken(RoleAdmin)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestTokenExpiry(t *testing.T) {
	service := NewTokenService("test-secret", -time.Minute)

	// NewTokenService clamps non-positive TTLs to an hour.
	token, err := service.GenerateToken(RoleAdmin)
	require.NoError(t, err)
	_, err = service.ValidateToken(token)
	assert.NoError(t, err)
}

func TestBcryptHasher(t *testing.T) {
	hasher := NewBcryptHasher(4)

	hash, err := hasher.Hash("hunter2")
	require.NoError(t, err)

	assert.NoError(t, hasher.Compare(hash, "hunter2"))
	assert.Error(t, hasher.Compare(hash, "wrong"))

	_, err = hasher.Hash("")
	assert.Error(t, err)
}

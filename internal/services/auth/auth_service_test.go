package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndValidateToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	store := NewMemorySessionStore()
	defer store.Close()
	service := NewAuthService(store)

	token, err := service.IssueToken("user-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	store := NewMemorySessionStore()
	defer store.Close()
	service := NewAuthService(store)

	_, err := service.ValidateToken("not-a-token")
	require.Error(t, err)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-a")
	storeA := NewMemorySessionStore()
	defer storeA.Close()
	issuer := NewAuthService(storeA)

	token, err := issuer.IssueToken("user-1")
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "secret-b")
	storeB := NewMemorySessionStore()
	defer storeB.Close()
	validator := NewAuthService(storeB)

	_, err = validator.ValidateToken(token)
	require.Error(t, err)
}

func TestRevokedTokenStopsValidating(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	store := NewMemorySessionStore()
	defer store.Close()
	service := NewAuthService(store)

	token, err := service.IssueToken("user-1")
	require.NoError(t, err)

	service.RevokeToken(token)

	_, err = service.ValidateToken(token)
	require.Error(t, err)
}

func TestExpiredSessionBehavesAsAbsent(t *testing.T) {
	store := NewMemorySessionStore()
	defer store.Close()

	store.Put("token", "user-1", -time.Second)
	_, ok := store.Get("token")
	assert.False(t, ok)
}

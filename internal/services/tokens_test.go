package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edulab-backend-go/internal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	tokens, err := NewTokenService("test-secret", "edulab")
	require.NoError(t, err)

	usr := models.User{ID: 42, Role: models.RoleTeacher}
	raw, err := tokens.Issue(usr)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	claims, err := tokens.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, models.RoleTeacher, claims.Role)
}

func TestTokenExpired(t *testing.T) {
	tokens, err := NewTokenService("test-secret", "edulab")
	require.NoError(t, err)
	tokens.Now = func() time.Time { return time.Now().Add(-25 * time.Hour) }

	raw, err := tokens.Issue(models.User{ID: 1, Role: models.RoleStudent})
	require.NoError(t, err)

	_, err = tokens.Verify(raw)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenMalformed(t *testing.T) {
	tokens, err := NewTokenService("test-secret", "edulab")
	require.NoError(t, err)

	_, err = tokens.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestTokenWrongKey(t *testing.T) {
	issuer, err := NewTokenService("secret-one", "edulab")
	require.NoError(t, err)
	verifier, err := NewTokenService("secret-two", "edulab")
	require.NoError(t, err)

	raw, err := issuer.Issue(models.User{ID: 1, Role: models.RoleStudent})
	require.NoError(t, err)

	_, err = verifier.Verify(raw)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestTokenServiceRequiresSecret(t *testing.T) {
	_, err := NewTokenService("  ", "edulab")
	assert.ErrorIs(t, err, ErrNoSecret)
}

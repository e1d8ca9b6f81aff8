package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SevinYeung429/SC2002/internal/directory"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", 15*time.Minute)

	token, err := m.Generate(&directory.Account{ID: "U100", Name: "Alice", Role: directory.RoleStudent})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "U100", claims.UserID)
	assert.Equal(t, "Alice", claims.Name)
	assert.Equal(t, directory.RoleStudent, claims.Role)
	assert.Equal(t, "U100", claims.Subject)
}

func TestParseRejectsBadTokens(t *testing.T) {
	m := NewTokenManager("test-secret", 15*time.Minute)

	_, err := m.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Signed with a different secret.
	other := NewTokenManager("other-secret", 15*time.Minute)
	token, err := other.Generate(&directory.Account{ID: "U100", Role: directory.RoleStudent})
	require.NoError(t, err)
	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	m := NewTokenManager("test-secret", -1*time.Minute)

	token, err := m.Generate(&directory.Account{ID: "U100", Role: directory.RoleStudent})
	require.NoError(t, err)

	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

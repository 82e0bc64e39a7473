package jwt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edilconnect/platform/internal/lib/jwt"
)

func TestMaker_AccessTokenRoundTrip(t *testing.T) {
	maker := jwt.NewMaker("access-secret", time.Hour, "refresh-secret", 24*time.Hour)

	token, err := maker.GenerateAccessToken("user-uid-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := maker.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-uid-1", claims.UserUID)
	assert.True(t, claims.ExpiresAt.After(time.Now()))
}

func TestMaker_RefreshTokenRoundTrip(t *testing.T) {
	maker := jwt.NewMaker("access-secret", time.Hour, "refresh-secret", 24*time.Hour)

	token, err := maker.GenerateRefreshToken("user-uid-2")
	require.NoError(t, err)

	claims, err := maker.ParseRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-uid-2", claims.UserUID)
}

func TestMaker_SecretsAreNotInterchangeable(t *testing.T) {
	maker := jwt.NewMaker("access-secret", time.Hour, "refresh-secret", 24*time.Hour)

	access, err := maker.GenerateAccessToken("user-uid-3")
	require.NoError(t, err)
	refresh, err := maker.GenerateRefreshToken("user-uid-3")
	require.NoError(t, err)

	_, err = maker.ParseRefreshToken(access)
	assert.Error(t, err, "access token must not verify against the refresh secret")

	_, err = maker.ParseAccessToken(refresh)
	assert.Error(t, err, "refresh token must not verify against the access secret")
}

func TestMaker_WrongSecretRejected(t *testing.T) {
	maker := jwt.NewMaker("access-secret", time.Hour, "refresh-secret", 24*time.Hour)
	other := jwt.NewMaker("different-secret", time.Hour, "refresh-secret", 24*time.Hour)

	token, err := maker.GenerateAccessToken("user-uid-4")
	require.NoError(t, err)

	_, err = other.ParseAccessToken(token)
	assert.Error(t, err)
}

func TestMaker_ExpiredTokenRejected(t *testing.T) {
	maker := jwt.NewMaker("access-secret", -time.Minute, "refresh-secret", 24*time.Hour)

	token, err := maker.GenerateAccessToken("user-uid-5")
	require.NoError(t, err)

	_, err = maker.ParseAccessToken(token)
	assert.Error(t, err)
}

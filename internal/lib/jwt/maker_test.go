package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakerImpl_GenerateAndParseToken(t *testing.T) {
	maker := NewJWTMaker("testkey", time.Hour)

	token, err := maker.GenerateToken("user@example.com", "collector", "user-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := maker.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "collector", claims.Name)
	assert.Equal(t, "user-1", claims.UserUID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestMakerImpl_ParseToken_Errors(t *testing.T) {
	maker := NewJWTMaker("testkey", time.Hour)

	t.Run("garbage token", func(t *testing.T) {
		_, err := maker.ParseToken("not.a.token")
		require.Error(t, err)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		otherMaker := NewJWTMaker("otherkey", time.Hour)
		token, err := otherMaker.GenerateToken("user@example.com", "collector", "user-1")
		require.NoError(t, err)

		_, err = maker.ParseToken(token)
		require.Error(t, err)
	})

	t.Run("expired token", func(t *testing.T) {
		expiredMaker := NewJWTMaker("testkey", -time.Hour)
		token, err := expiredMaker.GenerateToken("user@example.com", "collector", "user-1")
		require.NoError(t, err)

		_, err = maker.ParseToken(token)
		require.Error(t, err)
	})
}

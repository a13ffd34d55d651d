package token_test

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/trekker-client/token"
	"github.com/stretchr/testify/require"
)

func TestInspect(t *testing.T) {
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	iat := exp.Add(-time.Hour)

	raw, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
		"token_type": "access",
		"user_id":    42,
		"jti":        "abc",
		"sub":        "42",
		"exp":        exp.Unix(),
		"iat":        iat.Unix(),
	}).SignedString([]byte("some-secret"))
	require.NoError(t, err)

	t.Run("reads claims without the key", func(t *testing.T) {
		info, err := token.Inspect(raw)
		require.NoError(t, err)
		require.Equal(t, "42", info.UserID)
		require.Equal(t, "42", info.Subject)
		require.Equal(t, "access", info.TokenType)
		require.Equal(t, "abc", info.JTI)
		require.True(t, info.ExpiresAt.Equal(exp))
		require.True(t, info.IssuedAt.Equal(iat))
		require.False(t, info.Expired(iat))
		require.True(t, info.Expired(exp.Add(time.Second)))
	})

	t.Run("opaque token", func(t *testing.T) {
		_, err := token.Inspect("A1")
		require.Error(t, err)
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := token.Inspect("  ")
		require.Error(t, err)
	})

	t.Run("no expiry never expires", func(t *testing.T) {
		info := &token.Info{}
		require.False(t, info.Expired(time.Now()))
	})
}

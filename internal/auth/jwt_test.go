package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-at-least-32-characters"

func TestGenerateAndValidateToken(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	token, err := GenerateToken("ops", RoleAdmin, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)

	assert.Equal(t, "ops", claims.Operator)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, "operator_ops", claims.Subject)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestGenerateTokenSecretRequirements(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")

		_, err := GenerateToken("ops", RoleAdmin, time.Hour)
		assert.ErrorContains(t, err, "JWT_SECRET")
	})

	t.Run("short secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "too-short")

		_, err := GenerateToken("ops", RoleAdmin, time.Hour)
		assert.ErrorContains(t, err, "at least 32 characters")
	})
}

func TestValidateTokenRejectsBadTokens(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	t.Run("expired", func(t *testing.T) {
		token, err := GenerateToken("ops", RoleAdmin, -time.Minute)
		require.NoError(t, err)

		_, err = ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("tampered", func(t *testing.T) {
		token, err := GenerateToken("ops", RoleAdmin, time.Hour)
		require.NoError(t, err)

		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)
		parts[2] = "invalidsignature"

		_, err = ValidateToken(strings.Join(parts, "."))
		assert.Error(t, err)
	})

	t.Run("wrong signing method", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Operator: "ops", Role: RoleAdmin})
		token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ValidateToken("not.a.token")
		assert.Error(t, err)
	})
}

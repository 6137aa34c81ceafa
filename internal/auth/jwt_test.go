package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	token, err := m.Generate("user-1")
	require.NoError(t, err)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, issuer, claims.Issuer)
	require.NotNil(t, claims.ExpiresAt)
}

func TestJWTManager_NoExpiry(t *testing.T) {
	m := NewJWTManager("test-secret", 0)
	token, err := m.Generate("user-1")
	require.NoError(t, err)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)
}

func TestJWTManager_Expired(t *testing.T) {
	m := NewJWTManager("test-secret", time.Minute)
	token, err := m.Generate("user-1")
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = m.Validate(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTManager_WrongSecret(t *testing.T) {
	token, err := NewJWTManager("secret-a", 0).Generate("user-1")
	require.NoError(t, err)

	_, err = NewJWTManager("secret-b", 0).Validate(token)
	assert.Error(t, err)
}

func TestJWTManager_RejectsNoneAlgorithm(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "user-1"})
	raw, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewJWTManager("secret", 0).Validate(raw)
	assert.Error(t, err)
}

func TestJWTManager_TokenValidator(t *testing.T) {
	m := NewJWTManager("secret", 0)
	token, _ := m.Generate("user-9")

	claims, err := m.TokenValidator()(token)
	require.NoError(t, err)
	assert.Equal(t, "user-9", claims.UserID)

	_, err = m.TokenValidator()("garbage")
	assert.Error(t, err)
}

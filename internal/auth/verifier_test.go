package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storycare-server/internal/auth"
	"storycare-server/internal/models"
)

const testSecret = "test-secret-key-for-jwt"

func newVerifier(t *testing.T) *auth.JWTVerifier {
	t.Helper()
	v, err := auth.NewJWTVerifier(testSecret, nil)
	require.NoError(t, err)
	return v
}

func TestNewJWTVerifier_EmptySecret(t *testing.T) {
	_, err := auth.NewJWTVerifier("", nil)
	assert.Error(t, err)
}

func TestVerifyToken_ValidToken(t *testing.T) {
	v := newVerifier(t)

	token, err := auth.GenerateTestJWT("user-1", []string{models.RoleSpecialist}, testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := v.VerifyToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.True(t, models.HasRole(claims.Roles, models.RoleSpecialist))
	assert.False(t, models.HasRole(claims.Roles, models.RoleAdmin))
}

func TestVerifyToken_Expired(t *testing.T) {
	v := newVerifier(t)

	token, err := auth.GenerateTestJWT("user-1", []string{models.RoleSpecialist}, testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = v.VerifyToken(context.Background(), token)
	assert.ErrorIs(t, err, models.ErrTokenExpired)
}

func TestVerifyToken_Malformed(t *testing.T) {
	v := newVerifier(t)

	_, err := v.VerifyToken(context.Background(), "not-a-jwt-at-all")
	assert.ErrorIs(t, err, models.ErrTokenMalformed)
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	v := newVerifier(t)

	token, err := auth.GenerateTestJWT("user-1", []string{models.RoleSpecialist}, "another-secret", time.Hour)
	require.NoError(t, err)

	_, err = v.VerifyToken(context.Background(), token)
	assert.ErrorIs(t, err, models.ErrTokenInvalid)
}

func TestVerifyToken_MissingUserID(t *testing.T) {
	v := newVerifier(t)

	token, err := auth.GenerateTestJWT("", []string{models.RoleAdmin}, testSecret, time.Hour)
	require.NoError(t, err)

	_, err = v.VerifyToken(context.Background(), token)
	assert.ErrorIs(t, err, models.ErrTokenInvalid)
}

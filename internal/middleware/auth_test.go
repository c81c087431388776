package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storycare-server/internal/auth"
	"storycare-server/internal/middleware"
	"storycare-server/internal/models"
)

const testSecret = "test-secret-key-for-jwt"

func newTestRouter(t *testing.T, requiredRole string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	verifier, err := auth.NewJWTVerifier(testSecret, nil)
	require.NoError(t, err)

	router := gin.New()
	group := router.Group("/", middleware.JWTAuthMiddleware(verifier))
	if requiredRole != "" {
		group.Use(middleware.RequireRole(requiredRole))
	}
	group.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": middleware.GetUserID(c)})
	})
	return router
}

func doRequest(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware(t *testing.T) {
	router := newTestRouter(t, "")

	t.Run("valid token passes and exposes user id", func(t *testing.T) {
		token, err := auth.GenerateTestJWT("user-1", []string{models.RoleSpecialist}, testSecret, time.Hour)
		require.NoError(t, err)

		w := doRequest(router, "Bearer "+token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "user-1")
	})

	t.Run("missing header", func(t *testing.T) {
		w := doRequest(router, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		w := doRequest(router, "Basic abc123")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := auth.GenerateTestJWT("user-1", []string{models.RoleSpecialist}, testSecret, -time.Minute)
		require.NoError(t, err)

		w := doRequest(router, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "expired")
	})

	t.Run("garbage token", func(t *testing.T) {
		w := doRequest(router, "Bearer not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireRole(t *testing.T) {
	router := newTestRouter(t, models.RoleAdmin)

	t.Run("admin passes", func(t *testing.T) {
		token, err := auth.GenerateTestJWT("admin-1", []string{models.RoleSpecialist, models.RoleAdmin}, testSecret, time.Hour)
		require.NoError(t, err)

		w := doRequest(router, "Bearer "+token)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("specialist is forbidden", func(t *testing.T) {
		token, err := auth.GenerateTestJWT("user-1", []string{models.RoleSpecialist}, testSecret, time.Hour)
		require.NoError(t, err)

		w := doRequest(router, "Bearer "+token)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

// Package middleware содержит gin middleware аутентификации и логирования.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storycare-server/internal/auth"
	"storycare-server/internal/models"
)

// Ключи контекста gin, заполняемые после аутентификации.
const (
	ContextUserIDKey = "user_id"
	ContextRolesKey  = "user_roles"
)

// JWTAuthMiddleware проверяет Bearer токен и кладет userID и роли в контекст.
func JWTAuthMiddleware(verifier auth.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			models.RespondError(c, http.StatusUnauthorized, "Authorization header missing")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			models.RespondError(c, http.StatusUnauthorized, "Invalid Authorization header format")
			c.Abort()
			return
		}

		claims, err := verifier.VerifyToken(c.Request.Context(), parts[1])
		if err != nil {
			msg := "Token is invalid"
			switch err {
			case models.ErrTokenExpired:
				msg = "Token has expired"
			case models.ErrTokenMalformed:
				msg = "Token is malformed"
			}
			models.RespondError(c, http.StatusUnauthorized, msg)
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextRolesKey, claims.Roles)
		c.Next()
	}
}

// RequireRole пропускает только пользователей с указанной ролью.
// Должен стоять после JWTAuthMiddleware.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roles := GetUserRoles(c)
		if !models.HasRole(roles, role) {
			models.RespondError(c, http.StatusForbidden, "Insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserID возвращает ID аутентифицированного пользователя из контекста.
func GetUserID(c *gin.Context) string {
	if v, ok := c.Get(ContextUserIDKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// GetUserRoles возвращает роли аутентифицированного пользователя.
func GetUserRoles(c *gin.Context) []string {
	if v, ok := c.Get(ContextRolesKey); ok {
		if roles, ok := v.([]string); ok {
			return roles
		}
	}
	return nil
}

package middleware

import (
	"game-store/models"
	"game-store/utils"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Keys the auth middleware stores on the gin context.
const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
	ContextUserRole  = "user_role"
)

// UserID returns the authenticated user's uuid, or "" outside AuthMiddleware.
func UserID(c *gin.Context) string { return c.GetString(ContextUserID) }

func UserEmail(c *gin.Context) string { return c.GetString(ContextUserEmail) }

func abortWith(c *gin.Context, status int, message string, err error) {
	resp := models.ErrorResponse{Success: false, Message: message}
	if err != nil {
		resp.Error = err.Error()
	}
	c.AbortWithStatusJSON(status, resp)
}

// AuthMiddleware accepts "Authorization: Bearer <jwt>" and stores the
// token's user id, email and role on the context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWith(c, http.StatusUnauthorized, "Authorization header required", nil)
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			abortWith(c, http.StatusUnauthorized, "Invalid authorization header format", nil)
			return
		}

		claims, err := utils.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			abortWith(c, http.StatusUnauthorized, "Invalid or expired token", err)
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserEmail, claims.Email)
		c.Set(ContextUserRole, claims.Role)
		c.Next()
	}
}

// AdminMiddleware must run after AuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch role := c.GetString(ContextUserRole); role {
		case models.RoleAdmin:
			c.Next()
		case "":
			abortWith(c, http.StatusForbidden, "User role not found", nil)
		default:
			abortWith(c, http.StatusForbidden, "Access denied. Admin role required", nil)
		}
	}
}

package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/surveydesk/backend/internal/models"
	"github.com/surveydesk/backend/internal/utils"
	"github.com/surveydesk/backend/pkg/response"
)

const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
	ContextRole   = "role"
)

// AuthRequired is a middleware that checks for a valid JWT token
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "authorization header required")
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			response.Unauthorized(c, "invalid authorization header format")
			return
		}

		claims, err := utils.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextRole, claims.Role)

		c.Next()
	}
}

// RequireRole admits callers whose session role is one of roles.
// A request without a resolved session is rejected with 401, a session with
// the wrong role with 403.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(ContextUserID); !ok {
			response.Unauthorized(c, "authentication required")
			return
		}

		role := GetRole(c)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		response.Forbidden(c, "insufficient role")
	}
}

// AdminRequired is RequireRole for the admin role.
func AdminRequired() gin.HandlerFunc {
	return RequireRole(models.RoleAdmin)
}

// GetUserID gets the current user ID from context
func GetUserID(c *gin.Context) uint {
	if id, ok := c.Get(ContextUserID); ok {
		if v, ok := id.(uint); ok {
			return v
		}
	}
	return 0
}

// GetEmail gets the current reviewer identity from context
func GetEmail(c *gin.Context) string {
	return c.GetString(ContextEmail)
}

// GetRole gets the current user role from context
func GetRole(c *gin.Context) string {
	return c.GetString(ContextRole)
}

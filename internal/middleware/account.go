package middleware

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/surveydesk/backend/internal/models"
	"github.com/surveydesk/backend/internal/services"
	"github.com/surveydesk/backend/pkg/logger"
	"github.com/surveydesk/backend/pkg/response"
)

// AccountLoader loads the stored account behind a session.
type AccountLoader interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

// ActiveAccount reloads the session's account and replaces the email and role
// taken from the token with the stored ones. It must run after AuthRequired.
// A session whose account was deleted is rejected with 401.
func ActiveAccount(accounts AccountLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := accounts.GetByID(c.Request.Context(), GetUserID(c))
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				response.Unauthorized(c, "account no longer exists")
				return
			}
			logger.For(c).Error().Err(err).Uint("user_id", GetUserID(c)).Msg("load session account")
			response.ServerError(c, "internal server error")
			return
		}

		c.Set(ContextEmail, user.Email)
		c.Set(ContextRole, user.Role)
		c.Next()
	}
}

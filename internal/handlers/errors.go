package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/surveydesk/backend/internal/services"
	"github.com/surveydesk/backend/pkg/logger"
	"github.com/surveydesk/backend/pkg/response"
)

// respondError maps service errors onto the response envelope. Anything not
// recognized is logged and reported as a generic 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrSurveyNotFound),
		errors.Is(err, services.ErrUserNotFound):
		response.Error(c, response.NewNotFound(rootMessage(err)))
	case errors.Is(err, services.ErrInvalidReviewStatus),
		errors.Is(err, services.ErrInvalidPagination),
		errors.Is(err, services.ErrNoFieldsToUpdate),
		errors.Is(err, services.ErrMissingSurveyID),
		errors.Is(err, services.ErrMissingFields),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrCannotDeleteSelf):
		response.Error(c, response.NewBadRequest(err.Error()))
	case errors.Is(err, services.ErrEmailTaken):
		response.Error(c, response.NewConflict(err.Error()))
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidRefreshToken):
		response.Error(c, response.NewUnauthorized(err.Error()))
	default:
		logger.For(c).Error().Err(err).Msg("request failed")
		_ = c.Error(err)
		response.Error(c, err)
	}
}

func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

// bindMessage reports a failed ShouldBindJSON. Missing or empty required
// fields answer with missing; malformed bodies carry the decoder error.
func bindMessage(err error, missing string) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return missing
	}
	return "invalid request body: " + err.Error()
}

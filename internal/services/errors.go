package services

import "errors"

var (
	ErrSurveyNotFound      = errors.New("survey entry not found")
	ErrInvalidReviewStatus = errors.New("invalid review status")
	ErrInvalidPagination   = errors.New("page must be >= 1 and pageSize between 1 and 100")
	ErrNoFieldsToUpdate    = errors.New("no fields to update")
	ErrMissingSurveyID     = errors.New("survey id is required")

	ErrUserNotFound     = errors.New("user not found")
	ErrMissingFields    = errors.New("name, email, role and password are required")
	ErrInvalidRole      = errors.New("role must be user or admin")
	ErrEmailTaken       = errors.New("email already in use")
	ErrCannotDeleteSelf = errors.New("cannot delete your own account")

	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
)

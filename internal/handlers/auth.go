package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/surveydesk/backend/internal/middleware"
	"github.com/surveydesk/backend/internal/services"
	"github.com/surveydesk/backend/pkg/logger"
	"github.com/surveydesk/backend/pkg/response"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles user login
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindMessage(err, "email and password are required"))
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		logger.Warn().Str("email", req.Email).Str("ip", c.ClientIP()).Msg("login failed")
		respondError(c, err)
		return
	}

	logger.Info().Str("email", result.User.Email).Msg("user logged in")
	c.JSON(http.StatusOK, result)
}

// Refresh rotates a refresh token
// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req services.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindMessage(err, "refresh_token is required"))
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// Logout revokes the caller's refresh token
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req services.LogoutRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.authService.RevokeRefreshToken(c.Request.Context(), req.RefreshToken); err != nil {
		respondError(c, err)
		return
	}
	response.Message(c, "logged out successfully")
}

// GetCurrentUser returns the current logged-in user
// GET /api/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, err := h.authService.GetUserByID(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

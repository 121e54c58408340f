package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the error envelope and the wrapper for message-only replies.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// AppError represents a structured application error with HTTP status and error code.
type AppError struct {
	HTTPStatus int    // HTTP status code (e.g. 400, 404, 500)
	Code       int    // Application-level error code
	Message    string // Human-readable error message
}

func (e *AppError) Error() string {
	return e.Message
}

func NewBadRequest(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusBadRequest, Code: 400, Message: msg}
}

func NewUnauthorized(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusUnauthorized, Code: 401, Message: msg}
}

func NewForbidden(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusForbidden, Code: 403, Message: msg}
}

func NewNotFound(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusNotFound, Code: 404, Message: msg}
}

func NewConflict(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusConflict, Code: 409, Message: msg}
}

func NewTooManyRequests(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusTooManyRequests, Code: 429, Message: msg}
}

func NewServerError(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusInternalServerError, Code: 500, Message: msg}
}

// Message sends a 200 OK with a message-only body.
func Message(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: msg})
}

// NoContent sends 204 with an empty body.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response. An *AppError keeps its status and message;
// anything else becomes a 500 whose details stay out of the body.
func Error(c *gin.Context, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		c.AbortWithStatusJSON(appErr.HTTPStatus, Response{
			Code:    appErr.Code,
			Message: appErr.Message,
		})
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, Response{
		Code:    500,
		Message: "internal server error",
	})
}

func BadRequest(c *gin.Context, msg string) {
	Error(c, NewBadRequest(msg))
}

func Unauthorized(c *gin.Context, msg string) {
	Error(c, NewUnauthorized(msg))
}

func Forbidden(c *gin.Context, msg string) {
	Error(c, NewForbidden(msg))
}

func NotFound(c *gin.Context, msg string) {
	Error(c, NewNotFound(msg))
}

func ServerError(c *gin.Context, msg string) {
	Error(c, NewServerError(msg))
}

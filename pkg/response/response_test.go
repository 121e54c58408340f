package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performRequest(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest("GET", "/test", nil)
	handler(c)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	return resp
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name    string
		handler gin.HandlerFunc
		status  int
		message string
	}{
		{"bad request", func(c *gin.Context) { BadRequest(c, "invalid input") }, http.StatusBadRequest, "invalid input"},
		{"unauthorized", func(c *gin.Context) { Unauthorized(c, "login required") }, http.StatusUnauthorized, "login required"},
		{"forbidden", func(c *gin.Context) { Forbidden(c, "admin required") }, http.StatusForbidden, "admin required"},
		{"not found", func(c *gin.Context) { NotFound(c, "survey not found") }, http.StatusNotFound, "survey not found"},
		{"server error", func(c *gin.Context) { ServerError(c, "boom") }, http.StatusInternalServerError, "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(tt.handler)
			if w.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, w.Code)
			}
			resp := parseResponse(t, w)
			if resp.Code != tt.status {
				t.Errorf("expected code %d, got %d", tt.status, resp.Code)
			}
			if resp.Message != tt.message {
				t.Errorf("expected message %q, got %q", tt.message, resp.Message)
			}
		})
	}
}

func TestError_WithWrappedAppError(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		Error(c, fmt.Errorf("update user: %w", NewConflict("email already in use")))
	})

	if w.Code != http.StatusConflict {
		t.Errorf("expected status %d, got %d", http.StatusConflict, w.Code)
	}
	if resp := parseResponse(t, w); resp.Message != "email already in use" {
		t.Errorf("unexpected message %q", resp.Message)
	}
}

func TestError_WithGenericErrorHidesDetails(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		Error(c, errors.New("dial tcp 10.0.0.1:5432: connection refused"))
	})

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
	if resp := parseResponse(t, w); resp.Message != "internal server error" {
		t.Errorf("generic errors must not leak details, got %q", resp.Message)
	}
}

func TestMessage(t *testing.T) {
	w := performRequest(func(c *gin.Context) { Message(c, "logged out") })

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if resp := parseResponse(t, w); resp.Code != 0 || resp.Message != "logged out" {
		t.Errorf("unexpected body %+v", resp)
	}
}

func TestNoContent(t *testing.T) {
	w := httptest.NewRecorder()
	_, r := gin.CreateTestContext(w)
	r.DELETE("/x", NoContent)
	req, _ := http.NewRequest("DELETE", "/x", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("expected status %d, got %d", http.StatusNoContent, w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", w.Body.String())
	}
}

func TestAppError_ErrorInterface(t *testing.T) {
	var err error = NewNotFound("user not found")
	if err.Error() != "user not found" {
		t.Errorf("expected 'user not found', got %q", err.Error())
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newCORSRouter(origins ...string) *gin.Engine {
	router := gin.New()
	router.Use(CORS(origins...))
	router.PATCH("/api/surveys", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/api/surveys", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	return router
}

func TestCORS_AllowsOrigin(t *testing.T) {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/surveys", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	newCORSRouter().ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("Access-Control-Allow-Origin header should be set")
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Access-Control-Allow-Credentials should be 'true', got %q", got)
	}
}

func TestCORS_PreflightPatch(t *testing.T) {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("OPTIONS", "/api/surveys", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "PATCH")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type, Authorization")
	newCORSRouter().ServeHTTP(w, req)

	if w.Code != http.StatusNoContent && w.Code != http.StatusOK {
		t.Errorf("preflight request should return 200 or 204, got %d", w.Code)
	}
	if methods := w.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(methods, "PATCH") {
		t.Errorf("Access-Control-Allow-Methods should include PATCH, got %q", methods)
	}
}

func TestCORS_RestrictedOrigins(t *testing.T) {
	router := newCORSRouter("https://review.example.com")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/surveys", nil)
	req.Header.Set("Origin", "https://review.example.com")
	router.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://review.example.com" {
		t.Errorf("expected allowed origin echoed, got %q", got)
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/surveys", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	router.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("disallowed origin: expected status %d, got %d", http.StatusForbidden, w.Code)
	}
}

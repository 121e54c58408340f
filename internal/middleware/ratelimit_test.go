package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newLimitedRouter(rl *RateLimiter) *gin.Engine {
	router := gin.New()
	router.Use(rl.Middleware())
	router.POST("/api/auth/login", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	return router
}

func hitLogin(router *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/auth/login", nil)
	req.RemoteAddr = remoteAddr
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimit_AllowsNormalRequests(t *testing.T) {
	rl := NewRateLimiter(10, 10)
	defer rl.Stop()

	if w := hitLogin(newLimitedRouter(rl), "192.168.1.1:12345"); w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
}

func TestRateLimit_BlocksExcessiveRequests(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	defer rl.Stop()
	router := newLimitedRouter(rl)

	var last *httptest.ResponseRecorder
	for i := 0; i < 5; i++ {
		last = hitLogin(router, "10.0.0.1:12345")
	}

	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status %d after burst exceeded, got %d", http.StatusTooManyRequests, last.Code)
	}
	if !strings.Contains(last.Body.String(), `"code":429`) {
		t.Errorf("expected error envelope, got %s", last.Body.String())
	}
}

func TestRateLimit_IndependentPerIP(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	defer rl.Stop()
	router := newLimitedRouter(rl)

	if w := hitLogin(router, "10.0.0.1:12345"); w.Code != http.StatusOK {
		t.Errorf("IP1 first request: expected %d, got %d", http.StatusOK, w.Code)
	}
	if w := hitLogin(router, "10.0.0.1:12345"); w.Code != http.StatusTooManyRequests {
		t.Errorf("IP1 second request: expected %d, got %d", http.StatusTooManyRequests, w.Code)
	}
	if w := hitLogin(router, "10.0.0.2:12345"); w.Code != http.StatusOK {
		t.Errorf("IP2 first request: expected %d, got %d", http.StatusOK, w.Code)
	}
}

func TestRateLimit_SweepDropsIdleEntries(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	defer rl.Stop()

	rl.getLimiter("10.0.0.1")
	rl.getLimiter("10.0.0.2")
	if n := rl.size(); n != 2 {
		t.Fatalf("expected 2 tracked IPs, got %d", n)
	}

	rl.sweep(time.Now())
	if n := rl.size(); n != 2 {
		t.Errorf("fresh entries must survive a sweep, got %d", n)
	}

	rl.sweep(time.Now().Add(limiterIdleTTL + time.Second))
	if n := rl.size(); n != 0 {
		t.Errorf("idle entries should be dropped, got %d", n)
	}
}

func TestRateLimit_StopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	rl.Stop()
	rl.Stop()
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HealthHandler reports service and database health.
type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// CheckHealth pings the database.
// GET /health
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	status, dbStatus, code := "healthy", "ok", http.StatusOK

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		status, dbStatus, code = "unhealthy", "error: "+err.Error(), http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":   status,
		"service":  "surveydesk",
		"database": dbStatus,
	})
}

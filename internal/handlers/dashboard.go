package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/surveydesk/backend/internal/services"
)

type DashboardHandler struct {
	surveyService *services.SurveyService
}

func NewDashboardHandler(surveyService *services.SurveyService) *DashboardHandler {
	return &DashboardHandler{surveyService: surveyService}
}

// Status lists entries of one status for the dashboard tabs. It shares the
// paginated contract of GET /api/surveys.
// GET /api/dashboard/status?status=&page=&pageSize=
func (h *DashboardHandler) Status(c *gin.Context) {
	req, ok := bindListQuery(c)
	if !ok {
		return
	}

	resp, err := h.surveyService.List(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Stats returns per-status entry counts
// GET /api/dashboard/stats
func (h *DashboardHandler) Stats(c *gin.Context) {
	counts, err := h.surveyService.StatusCounts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

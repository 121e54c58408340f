package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/surveydesk/backend/internal/middleware"
	"github.com/surveydesk/backend/internal/services"
	"github.com/surveydesk/backend/pkg/response"
)

type SurveyHandler struct {
	surveyService *services.SurveyService
}

func NewSurveyHandler(surveyService *services.SurveyService) *SurveyHandler {
	return &SurveyHandler{surveyService: surveyService}
}

// bindListQuery reads status, page and pageSize from the query string.
// Missing numbers fall back to the service defaults.
func bindListQuery(c *gin.Context) (*services.SurveyListRequest, bool) {
	req := &services.SurveyListRequest{Status: c.Query("status")}
	params := []struct {
		key string
		dst *int
	}{
		{"page", &req.Page},
		{"pageSize", &req.PageSize},
	}
	for _, p := range params {
		key, dst := p.key, p.dst
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(c, key+" must be an integer")
			return nil, false
		}
		*dst = n
		if n == 0 {
			response.BadRequest(c, services.ErrInvalidPagination.Error())
			return nil, false
		}
	}
	return req, true
}

// List returns one page of survey entries
// GET /api/surveys?status=&page=&pageSize=
func (h *SurveyHandler) List(c *gin.Context) {
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

// Get returns a single survey entry
// GET /api/surveys/:id
func (h *SurveyHandler) Get(c *gin.Context) {
	view, err := h.surveyService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Review changes the review status of an entry
// PATCH /api/surveys
func (h *SurveyHandler) Review(c *gin.Context) {
	var req services.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	view, err := h.surveyService.Transition(c.Request.Context(), &req, middleware.GetEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Update corrects the content of an entry
// PATCH /api/update
func (h *SurveyHandler) Update(c *gin.Context) {
	var req services.SurveyUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	view, err := h.surveyService.Update(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

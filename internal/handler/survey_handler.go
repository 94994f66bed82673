package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gratitude-api/internal/dto"
	"github.com/noah-isme/gratitude-api/internal/middleware"
	"github.com/noah-isme/gratitude-api/internal/models"
	appErrors "github.com/noah-isme/gratitude-api/pkg/errors"
	"github.com/noah-isme/gratitude-api/pkg/response"
)

type surveyService interface {
	Create(ctx context.Context, req *dto.CreateSurveyRequest) (*models.SurveyView, error)
	List(ctx context.Context) ([]models.SurveyView, bool, error)
	Get(ctx context.Context, id string) (*models.SurveyView, error)
	Verify(ctx context.Context, id string, req dto.VerifySurveyRequest) (*dto.VerifySurveyResponse, error)
	Update(ctx context.Context, id string, req dto.UpdateSurveyRequest) (*models.SurveyView, error)
	Respond(ctx context.Context, id string, req dto.SubmitResponseRequest) (*dto.SubmitResponseResult, error)
	Stats(ctx context.Context, id string) (*dto.SurveyStats, error)
	ExportResponses(ctx context.Context, id string, req dto.ExportResponsesRequest) (*dto.SurveyExport, error)
}

// SurveyHandler exposes survey endpoints.
type SurveyHandler struct {
	service surveyService
}

// NewSurveyHandler builds a new handler.
func NewSurveyHandler(service surveyService) *SurveyHandler {
	return &SurveyHandler{service: service}
}

// Create godoc
// @Summary Create a password protected survey
// @Tags Surveys
// @Accept json
// @Produce json
// @Param payload body dto.CreateSurveyRequest true "Survey payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /surveys [post]
func (h *SurveyHandler) Create(c *gin.Context) {
	var req dto.CreateSurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid survey payload"))
		return
	}

	view, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// List godoc
// @Summary List active surveys
// @Tags Surveys
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /surveys [get]
func (h *SurveyHandler) List(c *gin.Context) {
	views, hit, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, views, middleware.ExtractMeta(c))
}

// Get godoc
// @Summary Get survey by id
// @Tags Surveys
// @Produce json
// @Param id path string true "Survey ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /surveys/{id} [get]
func (h *SurveyHandler) Get(c *gin.Context) {
	view, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// Verify godoc
// @Summary Verify a survey creation password
// @Description A wrong password returns 200 with success false.
// @Tags Surveys
// @Accept json
// @Produce json
// @Param id path string true "Survey ID"
// @Param payload body dto.VerifySurveyRequest true "Password"
// @Success 200 {object} response.Envelope
// @Router /surveys/{id}/verify [post]
func (h *SurveyHandler) Verify(c *gin.Context) {
	var req dto.VerifySurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid verification payload"))
		return
	}

	result, err := h.service.Verify(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Outcome(c, result.Success, result.Message)
}

// Update godoc
// @Summary Update a survey after re-proving its password
// @Tags Surveys
// @Accept json
// @Produce json
// @Param id path string true "Survey ID"
// @Param payload body dto.UpdateSurveyRequest true "Changes and password"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /surveys/{id} [put]
func (h *SurveyHandler) Update(c *gin.Context) {
	var req dto.UpdateSurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid survey update"))
		return
	}

	view, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// Respond godoc
// @Summary Submit answers to an active survey
// @Tags Surveys
// @Accept json
// @Produce json
// @Param id path string true "Survey ID"
// @Param payload body dto.SubmitResponseRequest true "Answers"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /surveys/{id}/responses [post]
func (h *SurveyHandler) Respond(c *gin.Context) {
	var req dto.SubmitResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid survey response"))
		return
	}

	result, err := h.service.Respond(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Stats godoc
// @Summary Count responses collected by a survey
// @Tags Surveys
// @Produce json
// @Param id path string true "Survey ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /surveys/{id}/stats [get]
func (h *SurveyHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats)
}

// Export godoc
// @Summary Download collected responses as CSV
// @Tags Surveys
// @Accept json
// @Produce text/csv
// @Param id path string true "Survey ID"
// @Param payload body dto.ExportResponsesRequest true "Password"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /surveys/{id}/export [post]
func (h *SurveyHandler) Export(c *gin.Context) {
	var req dto.ExportResponsesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export request"))
		return
	}

	out, err := h.service.ExportResponses(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Header("Content-Disposition", `attachment; filename="`+out.Filename+`"`)
	c.Data(http.StatusOK, out.ContentType, out.Content)
}

package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gratitude-api/internal/dto"
	"github.com/noah-isme/gratitude-api/internal/middleware"
	appErrors "github.com/noah-isme/gratitude-api/pkg/errors"
	"github.com/noah-isme/gratitude-api/pkg/response"
)

type letterService interface {
	Create(ctx context.Context, input map[string]interface{}) (*dto.LetterRecord, error)
	List(ctx context.Context, filter dto.LetterFilter) ([]dto.LetterRecord, bool, error)
}

// LetterHandler exposes letter endpoints.
type LetterHandler struct {
	service letterService
}

// NewLetterHandler builds a new handler.
func NewLetterHandler(service letterService) *LetterHandler {
	return &LetterHandler{service: service}
}

// Create godoc
// @Summary Submit a thank-you letter
// @Description Accepts name|sender, school|affiliation, letterContent|message and countryId|country.
// @Tags Letters
// @Accept json
// @Produce json
// @Param payload body map[string]interface{} true "Letter payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /letters [post]
func (h *LetterHandler) Create(c *gin.Context) {
	var payload map[string]interface{}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid letter payload"))
		return
	}

	record, err := h.service.Create(c.Request.Context(), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// List godoc
// @Summary List letters
// @Tags Letters
// @Produce json
// @Param countryId query string false "Country identifier"
// @Param limit query int false "Maximum number of letters"
// @Param offset query int false "Letters to skip"
// @Success 200 {object} response.Envelope
// @Router /letters [get]
func (h *LetterHandler) List(c *gin.Context) {
	filter, err := parseLetterFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	letters, hit, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, letters, middleware.ExtractMeta(c))
}

func parseLetterFilter(c *gin.Context) (dto.LetterFilter, error) {
	filter := dto.LetterFilter{CountryID: strings.TrimSpace(c.Query("countryId"))}
	if filter.CountryID == "" {
		filter.CountryID = strings.TrimSpace(c.Query("country"))
	}

	var invalid []string
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			invalid = append(invalid, "limit")
		}
		filter.Limit = n
	}
	if raw := c.Query("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			invalid = append(invalid, "offset")
		}
		filter.Offset = n
	}
	if len(invalid) > 0 {
		return filter, appErrors.Validation("invalid pagination parameters", invalid...)
	}
	return filter, nil
}

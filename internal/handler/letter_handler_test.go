package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gratitude-api/internal/dto"
	"github.com/noah-isme/gratitude-api/internal/middleware"
	appErrors "github.com/noah-isme/gratitude-api/pkg/errors"
)

type letterServiceMock struct {
	lastInput  map[string]interface{}
	lastFilter dto.LetterFilter
	listResp   []dto.LetterRecord
	cacheHit   bool
	err        error
}

func (m *letterServiceMock) Create(ctx context.Context, input map[string]interface{}) (*dto.LetterRecord, error) {
	m.lastInput = input
	if m.err != nil {
		return nil, m.err
	}
	letter, err := dto.NormalizeLetter(input)
	if err != nil {
		return nil, err
	}
	record := dto.NewLetterRecord(letter, "652f1c3e9b1e8a0012345678")
	return &record, nil
}

func (m *letterServiceMock) List(ctx context.Context, filter dto.LetterFilter) ([]dto.LetterRecord, bool, error) {
	m.lastFilter = filter
	if m.err != nil {
		return nil, false, m.err
	}
	return m.listResp, m.cacheHit, nil
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func jsonRequest(t *testing.T, method, target string, payload interface{}) *http.Request {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	req, _ := http.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestLetterHandlerCreateAcceptsAliases(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &letterServiceMock{}
	handler := NewLetterHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/letters", map[string]interface{}{
		"sender":      "Kim",
		"affiliation": "Seoul High",
		"message":     "Thank you",
		"country":     "usa",
	})

	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "652f1c3e9b1e8a0012345678", data["id"])
	assert.Equal(t, "Thank you", data["originalContent"])
	assert.Equal(t, "Kim", data["name"])
	assert.Equal(t, "Kim", data["sender"])
	assert.Equal(t, "usa", data["countryId"])
	assert.Equal(t, "Seoul High", data["school"])
}

func TestLetterHandlerCreateReportsRequiredFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewLetterHandler(&letterServiceMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/letters", map[string]interface{}{"message": "Thank you"})

	handler.Create(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, appErrors.ErrValidation.Code, body["code"])
	assert.Equal(t, []interface{}{"name", "countryId"}, body["requiredFields"])
}

func TestLetterHandlerCreateInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &letterServiceMock{}
	handler := NewLetterHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/letters", bytes.NewReader([]byte(`invalid`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, svc.lastInput)
}

func TestLetterHandlerListParsesFilter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &letterServiceMock{listResp: []dto.LetterRecord{{ID: "1", OriginalContent: "Hi"}}, cacheHit: true}
	handler := NewLetterHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/letters?country=usa&limit=10&offset=5", nil)
	middleware.WithResponseMeta()(c)

	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.LetterFilter{CountryID: "usa", Limit: 10, Offset: 5}, svc.lastFilter)
	body := decodeBody(t, w)
	assert.Len(t, body["data"], 1)
	meta := body["meta"].(map[string]interface{})
	assert.Equal(t, true, meta["cacheHit"])
}

func TestLetterHandlerListRejectsBadPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &letterServiceMock{}
	handler := NewLetterHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/letters?limit=ten&offset=x", nil)

	handler.List(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.ElementsMatch(t, []interface{}{"limit", "offset"}, decodeBody(t, w)["requiredFields"])
}

func TestLetterHandlerListHidesStoreFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &letterServiceMock{err: appErrors.Persistence(assert.AnError, "list letters")}
	handler := NewLetterHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/letters", nil)

	handler.List(c)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
	assert.Equal(t, false, decodeBody(t, w)["success"])
}

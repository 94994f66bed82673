package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gratitude-api/internal/dto"
	"github.com/noah-isme/gratitude-api/internal/models"
	appErrors "github.com/noah-isme/gratitude-api/pkg/errors"
)

type surveyServiceMock struct {
	views      []models.SurveyView
	lastCreate *dto.CreateSurveyRequest
	lastVerify dto.VerifySurveyRequest
	verifyOK   bool
	updateErr  error
	respondErr error
	err        error
}

func (m *surveyServiceMock) Create(ctx context.Context, req *dto.CreateSurveyRequest) (*models.SurveyView, error) {
	m.lastCreate = req
	if m.err != nil {
		return nil, m.err
	}
	return &models.SurveyView{ID: "s1", Title: req.Title, IsActive: true, Questions: []models.Question{}}, nil
}

func (m *surveyServiceMock) List(ctx context.Context) ([]models.SurveyView, bool, error) {
	return m.views, false, m.err
}

func (m *surveyServiceMock) Get(ctx context.Context, id string) (*models.SurveyView, error) {
	for i := range m.views {
		if m.views[i].ID == id {
			return &m.views[i], nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "survey not found")
}

func (m *surveyServiceMock) Verify(ctx context.Context, id string, req dto.VerifySurveyRequest) (*dto.VerifySurveyResponse, error) {
	m.lastVerify = req
	if m.err != nil {
		return nil, m.err
	}
	if m.verifyOK {
		return &dto.VerifySurveyResponse{Success: true, Message: "password verified"}, nil
	}
	return &dto.VerifySurveyResponse{Success: false, Message: "invalid password"}, nil
}

func (m *surveyServiceMock) Update(ctx context.Context, id string, req dto.UpdateSurveyRequest) (*models.SurveyView, error) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	return &models.SurveyView{ID: id, Title: *req.Title}, nil
}

func (m *surveyServiceMock) Respond(ctx context.Context, id string, req dto.SubmitResponseRequest) (*dto.SubmitResponseResult, error) {
	if m.respondErr != nil {
		return nil, m.respondErr
	}
	return &dto.SubmitResponseResult{ID: "r1"}, nil
}

func (m *surveyServiceMock) Stats(ctx context.Context, id string) (*dto.SurveyStats, error) {
	if _, err := m.Get(ctx, id); err != nil {
		return nil, err
	}
	return &dto.SurveyStats{SurveyID: id, Responses: 3}, nil
}

func (m *surveyServiceMock) ExportResponses(ctx context.Context, id string, req dto.ExportResponsesRequest) (*dto.SurveyExport, error) {
	if req.Password != "secret123" {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid password")
	}
	return &dto.SurveyExport{
		Filename:    "survey-" + id + "-responses.csv",
		ContentType: "text/csv; charset=utf-8",
		Content:     []byte("responseId,submittedAt\n"),
	}, nil
}

func TestSurveyHandlerCreateAcceptsPasswordAlias(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &surveyServiceMock{}
	handler := NewSurveyHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/surveys", map[string]interface{}{
		"title":            "Class feedback",
		"questions":        []map[string]interface{}{{"prompt": "Enjoyed?", "type": "text"}},
		"creationPassword": "secret123",
	})

	handler.Create(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.lastCreate)
	assert.Equal(t, "secret123", svc.lastCreate.Secret())
	assert.NotContains(t, w.Body.String(), "secret123")
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "Class feedback", data["title"])
}

func TestSurveyHandlerCreateValidationError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &surveyServiceMock{err: appErrors.Validation("invalid survey payload", "title", "questions")}
	handler := NewSurveyHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/surveys", map[string]interface{}{"creationSecret": "x"})

	handler.Create(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []interface{}{"title", "questions"}, decodeBody(t, w)["requiredFields"])
}

func TestSurveyHandlerListOmitsCredential(t *testing.T) {
	gin.SetMode(gin.TestMode)
	stored := models.Survey{Title: "Open", IsActive: true, CredentialHash: "$2a$10$abcdefghijklmnopqrstuv"}
	svc := &surveyServiceMock{views: []models.SurveyView{stored.View()}}
	handler := NewSurveyHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/surveys", nil)

	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "creationPassword")
	assert.NotContains(t, w.Body.String(), "$2a$")
	assert.Len(t, decodeBody(t, w)["data"], 1)
}

func TestSurveyHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSurveyHandler(&surveyServiceMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/surveys/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Get(c)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["success"])
}

func TestSurveyHandlerVerifyOutcome(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for _, tc := range []struct {
		name     string
		verifyOK bool
	}{
		{name: "rejected", verifyOK: false},
		{name: "verified", verifyOK: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			svc := &surveyServiceMock{verifyOK: tc.verifyOK}
			handler := NewSurveyHandler(svc)
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = jsonRequest(t, http.MethodPost, "/surveys/s1/verify", dto.VerifySurveyRequest{Password: "secret123"})
			c.Params = gin.Params{{Key: "id", Value: "s1"}}

			handler.Verify(c)

			require.Equal(t, http.StatusOK, w.Code)
			body := decodeBody(t, w)
			assert.Equal(t, tc.verifyOK, body["success"])
			assert.NotEmpty(t, body["message"])
			assert.Equal(t, "secret123", svc.lastVerify.Password)
		})
	}
}

func TestSurveyHandlerVerifyMalformedID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSurveyHandler(&surveyServiceMock{err: appErrors.Validation("invalid survey id", "id")})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/surveys/zz/verify", dto.VerifySurveyRequest{Password: "x"})
	c.Params = gin.Params{{Key: "id", Value: "zz"}}

	handler.Verify(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSurveyHandlerUpdateForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSurveyHandler(&surveyServiceMock{updateErr: appErrors.Clone(appErrors.ErrForbidden, "invalid password")})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPut, "/surveys/s1", map[string]interface{}{"password": "wrong", "title": "New"})
	c.Params = gin.Params{{Key: "id", Value: "s1"}}

	handler.Update(c)

	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, appErrors.CodeForbidden, decodeBody(t, w)["code"])
}

func TestSurveyHandlerRespond(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSurveyHandler(&surveyServiceMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/surveys/s1/responses", dto.SubmitResponseRequest{
		Answers: []dto.AnswerInput{{QuestionID: "q1", Value: "Yes"}},
	})
	c.Params = gin.Params{{Key: "id", Value: "s1"}}

	handler.Respond(c)

	require.Equal(t, http.StatusCreated, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "r1", data["id"])
}

func TestSurveyHandlerRespondInvalidAnswers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSurveyHandler(&surveyServiceMock{respondErr: appErrors.Validation("invalid answers", "q2")})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/surveys/s1/responses", dto.SubmitResponseRequest{
		Answers: []dto.AnswerInput{{QuestionID: "q2", Value: "Sun"}},
	})
	c.Params = gin.Params{{Key: "id", Value: "s1"}}

	handler.Respond(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []interface{}{"q2"}, decodeBody(t, w)["requiredFields"])
}

func TestSurveyHandlerStats(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSurveyHandler(&surveyServiceMock{views: []models.SurveyView{{ID: "s1"}}})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/surveys/s1/stats", nil)
	c.Params = gin.Params{{Key: "id", Value: "s1"}}

	handler.Stats(c)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(3), data["responses"])
}

func TestSurveyHandlerExport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSurveyHandler(&surveyServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/surveys/s1/export", dto.ExportResponsesRequest{Password: "secret123"})
	c.Params = gin.Params{{Key: "id", Value: "s1"}}
	handler.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "survey-s1-responses.csv")
	assert.Equal(t, "responseId,submittedAt\n", w.Body.String())

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/surveys/s1/export", dto.ExportResponsesRequest{Password: "wrong"})
	c.Params = gin.Params{{Key: "id", Value: "s1"}}
	handler.Export(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/noah-isme/gratitude-api/internal/dto"
	"github.com/noah-isme/gratitude-api/internal/models"
	"github.com/noah-isme/gratitude-api/internal/repository"
	appErrors "github.com/noah-isme/gratitude-api/pkg/errors"
	"github.com/noah-isme/gratitude-api/pkg/export"
)

type surveyRepository interface {
	Insert(ctx context.Context, survey *models.Survey, hashedSecret string) (string, error)
	ListActive(ctx context.Context) ([]models.SurveyView, error)
	Get(ctx context.Context, id string) (*models.SurveyView, error)
	FindCredential(ctx context.Context, id string) (string, error)
	Update(ctx context.Context, id string, patch dto.SurveyPatch) (*models.SurveyView, error)
}

type surveyResponseRepository interface {
	Insert(ctx context.Context, resp *models.SurveyResponse) (string, error)
	CountBySurvey(ctx context.Context, surveyID string) (int64, error)
	ListBySurvey(ctx context.Context, surveyID string) ([]models.SurveyResponse, error)
}

// Verification messages returned to callers.
const (
	MessagePasswordVerified = "password verified"
	MessagePasswordRejected = "invalid password"
)

// SurveyService manages password protected surveys and their responses.
type SurveyService struct {
	repo      surveyRepository
	responses surveyResponseRepository
	guard     *PasswordGuard
	exporter  *export.CSVExporter
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSurveyService constructs the service. guard must check credentials
// against the same store as repo.
func NewSurveyService(repo surveyRepository, responses surveyResponseRepository, guard *PasswordGuard, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *SurveyService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SurveyService{
		repo:      repo,
		responses: responses,
		guard:     guard,
		exporter:  export.NewCSVExporter(),
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// Create validates the request, stores the hashed secret and clears the
// plaintext from req.
func (s *SurveyService) Create(ctx context.Context, req *dto.CreateSurveyRequest) (*models.SurveyView, error) {
	defer req.ClearSecret()

	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid survey payload")
	}
	if strings.TrimSpace(req.Secret()) == "" {
		return nil, appErrors.Validation("creation secret is required", "creationSecret")
	}

	questions, err := dto.ToQuestions(req.Questions)
	if err != nil {
		return nil, appErrors.Validation(err.Error(), "questions")
	}

	hash, err := s.guard.Hash(req.Secret())
	if err != nil {
		return nil, err
	}

	survey := &models.Survey{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Questions:   questions,
		IsActive:    req.IsActive == nil || *req.IsActive,
	}

	start := time.Now()
	_, err = s.repo.Insert(ctx, survey, hash)
	s.metrics.ObserveStoreOperation("insert_survey", err, time.Since(start))
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, repository.SurveyListPattern)
	view := survey.View()
	return &view, nil
}

// List returns active surveys. The boolean reports a cache hit.
func (s *SurveyService) List(ctx context.Context) ([]models.SurveyView, bool, error) {
	return Cached(ctx, s.cache, repository.SurveyListKey, func(ctx context.Context) ([]models.SurveyView, error) {
		start := time.Now()
		views, err := s.repo.ListActive(ctx)
		s.metrics.ObserveStoreOperation("list_surveys", err, time.Since(start))
		return views, err
	})
}

// Get returns one survey by id, active or not.
func (s *SurveyService) Get(ctx context.Context, id string) (*models.SurveyView, error) {
	start := time.Now()
	view, err := s.repo.Get(ctx, id)
	s.metrics.ObserveStoreOperation("get_survey", err, time.Since(start))
	return view, err
}

// Verify checks a creation password. A wrong password is a successful call
// with Success false.
func (s *SurveyService) Verify(ctx context.Context, id string, req dto.VerifySurveyRequest) (*dto.VerifySurveyResponse, error) {
	ok, err := s.guard.Verify(ctx, id, req.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &dto.VerifySurveyResponse{Success: false, Message: MessagePasswordRejected}, nil
	}
	return &dto.VerifySurveyResponse{Success: true, Message: MessagePasswordVerified}, nil
}

// Update applies changes after re-proving the creation password.
func (s *SurveyService) Update(ctx context.Context, id string, req dto.UpdateSurveyRequest) (*models.SurveyView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid survey update")
	}

	ok, err := s.guard.Verify(ctx, id, req.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrForbidden, MessagePasswordRejected)
	}

	patch := dto.SurveyPatch{IsActive: req.IsActive}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, appErrors.Validation("title cannot be blank", "title")
		}
		patch.Title = &title
	}
	if req.Description != nil {
		desc := strings.TrimSpace(*req.Description)
		patch.Description = &desc
	}
	if req.Questions != nil {
		questions, err := dto.ToQuestions(req.Questions)
		if err != nil {
			return nil, appErrors.Validation(err.Error(), "questions")
		}
		patch.Questions = questions
	}
	if patch.Empty() {
		return nil, appErrors.Validation("no changes supplied")
	}

	start := time.Now()
	view, err := s.repo.Update(ctx, id, patch)
	s.metrics.ObserveStoreOperation("update_survey", err, time.Since(start))
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, repository.SurveyListPattern)
	s.logger.Info("survey updated", zap.String("survey_id", id))
	return view, nil
}

// Respond stores a visitor's answers to an active survey.
func (s *SurveyService) Respond(ctx context.Context, id string, req dto.SubmitResponseRequest) (*dto.SubmitResponseResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid survey response")
	}

	view, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !view.IsActive {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "survey is not accepting responses")
	}

	answers := dto.ToAnswers(req.Answers)
	if invalid := invalidAnswers(*view, answers); len(invalid) > 0 {
		return nil, appErrors.Validation("invalid answers", invalid...)
	}

	surveyID, err := primitive.ObjectIDFromHex(view.ID)
	if err != nil {
		return nil, appErrors.Validation("invalid survey id")
	}

	start := time.Now()
	responseID, err := s.responses.Insert(ctx, &models.SurveyResponse{SurveyID: surveyID, Answers: answers})
	s.metrics.ObserveStoreOperation("insert_survey_response", err, time.Since(start))
	if err != nil {
		return nil, err
	}
	return &dto.SubmitResponseResult{ID: responseID}, nil
}

// Stats reports how many responses a survey has collected.
func (s *SurveyService) Stats(ctx context.Context, id string) (*dto.SurveyStats, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	start := time.Now()
	count, err := s.responses.CountBySurvey(ctx, id)
	s.metrics.ObserveStoreOperation("count_survey_responses", err, time.Since(start))
	if err != nil {
		return nil, err
	}
	return &dto.SurveyStats{SurveyID: id, Responses: count}, nil
}

// ExportResponses renders every response as CSV, one column per question.
// It requires the creation password.
func (s *SurveyService) ExportResponses(ctx context.Context, id string, req dto.ExportResponsesRequest) (*dto.SurveyExport, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid export request")
	}

	ok, err := s.guard.Verify(ctx, id, req.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrForbidden, MessagePasswordRejected)
	}

	view, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	responses, err := s.responses.ListBySurvey(ctx, id)
	s.metrics.ObserveStoreOperation("list_survey_responses", err, time.Since(start))
	if err != nil {
		return nil, err
	}

	content, err := s.exporter.Render(responseTable(*view, responses))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render export")
	}
	s.logger.Info("survey responses exported", zap.String("survey_id", id), zap.Int("responses", len(responses)))
	return &dto.SurveyExport{
		Filename:    "survey-" + id + "-responses.csv",
		ContentType: "text/csv; charset=utf-8",
		Content:     content,
	}, nil
}

func responseTable(view models.SurveyView, responses []models.SurveyResponse) export.Table {
	headers := []string{"responseId", "submittedAt"}
	for _, q := range view.Questions {
		headers = append(headers, q.ID+": "+q.Prompt)
	}

	rows := make([][]string, 0, len(responses))
	for _, resp := range responses {
		byQuestion := make(map[string]models.Answer, len(resp.Answers))
		for _, a := range resp.Answers {
			byQuestion[a.QuestionID] = a
		}
		row := []string{resp.ID.Hex(), resp.CreatedAt.UTC().Format(time.RFC3339)}
		for _, q := range view.Questions {
			row = append(row, answerCell(q, byQuestion[q.ID]))
		}
		rows = append(rows, row)
	}
	return export.Table{Headers: headers, Rows: rows}
}

func answerCell(q models.Question, a models.Answer) string {
	switch q.Type {
	case models.QuestionTypeMultiChoice:
		return strings.Join(a.Values, "; ")
	case models.QuestionTypeRating:
		if a.Rating == 0 {
			return ""
		}
		return strconv.Itoa(a.Rating)
	default:
		return a.Value
	}
}

// invalidAnswers lists question ids whose answers are missing, unknown or
// out of range.
func invalidAnswers(view models.SurveyView, answers []models.Answer) []string {
	var invalid []string
	byQuestion := make(map[string]models.Answer, len(answers))
	for _, a := range answers {
		if _, known := view.Question(a.QuestionID); !known {
			invalid = append(invalid, a.QuestionID)
			continue
		}
		if _, dup := byQuestion[a.QuestionID]; dup {
			invalid = append(invalid, a.QuestionID)
			continue
		}
		byQuestion[a.QuestionID] = a
	}

	for _, q := range view.Questions {
		a, answered := byQuestion[q.ID]
		if !answered || isBlankAnswer(q, a) {
			if q.Required {
				invalid = append(invalid, q.ID)
			}
			continue
		}
		if !answerFits(q, a) {
			invalid = append(invalid, q.ID)
		}
	}
	return invalid
}

func isBlankAnswer(q models.Question, a models.Answer) bool {
	switch q.Type {
	case models.QuestionTypeMultiChoice:
		return len(a.Values) == 0
	case models.QuestionTypeRating:
		return a.Rating == 0
	default:
		return a.Value == ""
	}
}

func answerFits(q models.Question, a models.Answer) bool {
	switch q.Type {
	case models.QuestionTypeText:
		return len(a.Values) == 0 && a.Rating == 0
	case models.QuestionTypeSingleChoice:
		return q.HasOption(a.Value)
	case models.QuestionTypeMultiChoice:
		seen := make(map[string]struct{}, len(a.Values))
		for _, v := range a.Values {
			if _, dup := seen[v]; dup || !q.HasOption(v) {
				return false
			}
			seen[v] = struct{}{}
		}
		return true
	case models.QuestionTypeRating:
		return a.Rating >= 1 && a.Rating <= q.MaxRating
	default:
		return false
	}
}

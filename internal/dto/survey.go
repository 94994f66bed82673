package dto

import (
	"fmt"
	"strings"

	"github.com/noah-isme/gratitude-api/internal/models"
)

// QuestionInput is a question as submitted by a survey creator.
type QuestionInput struct {
	ID        string   `json:"id"`
	Prompt    string   `json:"prompt" validate:"required"`
	Type      string   `json:"type" validate:"required,oneof=text single_choice multi_choice rating"`
	Options   []string `json:"options"`
	Required  bool     `json:"required"`
	MaxRating int      `json:"maxRating" validate:"omitempty,min=1,max=10"`
}

// CreateSurveyRequest creates a protected survey. The secret may arrive as
// creationSecret or creationPassword.
type CreateSurveyRequest struct {
	Title            string          `json:"title" validate:"required,max=200"`
	Description      string          `json:"description" validate:"max=2000"`
	Questions        []QuestionInput `json:"questions" validate:"required,min=1,dive"`
	IsActive         *bool           `json:"isActive"`
	CreationSecret   string          `json:"creationSecret"`
	CreationPassword string          `json:"creationPassword"`
}

// Secret returns the supplied creation secret.
func (r *CreateSurveyRequest) Secret() string {
	if r.CreationSecret != "" {
		return r.CreationSecret
	}
	return r.CreationPassword
}

// ClearSecret drops the plaintext once it has been hashed.
func (r *CreateSurveyRequest) ClearSecret() {
	r.CreationSecret = ""
	r.CreationPassword = ""
}

// VerifySurveyRequest carries a password check.
type VerifySurveyRequest struct {
	Password string `json:"password"`
}

// VerifySurveyResponse reports a password check outcome.
type VerifySurveyResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// UpdateSurveyRequest changes a survey after re-proving the creation secret.
// Nil fields are left untouched.
type UpdateSurveyRequest struct {
	Password    string          `json:"password" validate:"required"`
	Title       *string         `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string         `json:"description" validate:"omitempty,max=2000"`
	Questions   []QuestionInput `json:"questions" validate:"omitempty,min=1,dive"`
	IsActive    *bool           `json:"isActive"`
}

// SurveyPatch is the persisted subset of an update.
type SurveyPatch struct {
	Title       *string
	Description *string
	Questions   []models.Question
	IsActive    *bool
}

// Empty reports whether the patch changes nothing.
func (p SurveyPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Questions == nil && p.IsActive == nil
}

// AnswerInput is one answer in a response submission.
type AnswerInput struct {
	QuestionID string   `json:"questionId" validate:"required"`
	Value      string   `json:"value"`
	Values     []string `json:"values"`
	Rating     int      `json:"rating"`
}

// SubmitResponseRequest records a visitor's answers.
type SubmitResponseRequest struct {
	Answers []AnswerInput `json:"answers" validate:"required,min=1,dive"`
}

// ToQuestions converts inputs to models, assigning q1..qN to questions
// without an id and rejecting duplicates.
func ToQuestions(inputs []QuestionInput) ([]models.Question, error) {
	questions := make([]models.Question, 0, len(inputs))
	seen := make(map[string]struct{}, len(inputs))
	for i, in := range inputs {
		id := strings.TrimSpace(in.ID)
		if id == "" {
			id = fmt.Sprintf("q%d", i+1)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("duplicate question id %q", id)
		}
		seen[id] = struct{}{}

		q := models.Question{
			ID:        id,
			Prompt:    strings.TrimSpace(in.Prompt),
			Type:      models.QuestionType(in.Type),
			Options:   in.Options,
			Required:  in.Required,
			MaxRating: in.MaxRating,
		}
		if err := q.Validate(); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// ToAnswers converts answer inputs to models.
func ToAnswers(inputs []AnswerInput) []models.Answer {
	answers := make([]models.Answer, 0, len(inputs))
	for _, in := range inputs {
		answers = append(answers, models.Answer{
			QuestionID: strings.TrimSpace(in.QuestionID),
			Value:      strings.TrimSpace(in.Value),
			Values:     in.Values,
			Rating:     in.Rating,
		})
	}
	return answers
}

// SubmitResponseResult is returned after a response is stored.
type SubmitResponseResult struct {
	ID string `json:"id"`
}

// SurveyStats summarizes collected responses.
type SurveyStats struct {
	SurveyID  string `json:"surveyId"`
	Responses int64  `json:"responses"`
}

// ExportResponsesRequest re-proves ownership before responses are exported.
type ExportResponsesRequest struct {
	Password string `json:"password" validate:"required"`
}

// SurveyExport is a rendered response export.
type SurveyExport struct {
	Filename    string
	ContentType string
	Content     []byte
}

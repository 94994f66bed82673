package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// QuestionType enumerates supported question kinds.
type QuestionType string

const (
	QuestionTypeText         QuestionType = "text"
	QuestionTypeSingleChoice QuestionType = "single_choice"
	QuestionTypeMultiChoice  QuestionType = "multi_choice"
	QuestionTypeRating       QuestionType = "rating"
)

// IsChoice reports whether answers must be picked from Options.
func (t QuestionType) IsChoice() bool {
	return t == QuestionTypeSingleChoice || t == QuestionTypeMultiChoice
}

// Question is embedded in a Survey and not addressable on its own.
type Question struct {
	ID        string       `bson:"id" json:"id"`
	Prompt    string       `bson:"prompt" json:"prompt"`
	Type      QuestionType `bson:"type" json:"type"`
	Options   []string     `bson:"options,omitempty" json:"options,omitempty"`
	Required  bool         `bson:"required" json:"required"`
	MaxRating int          `bson:"maxRating,omitempty" json:"maxRating,omitempty"`
}

// Validate checks the type specific shape of the question.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Prompt) == "" {
		return fmt.Errorf("question %q: prompt is required", q.ID)
	}
	switch q.Type {
	case QuestionTypeText:
		if len(q.Options) > 0 {
			return fmt.Errorf("question %q: text questions take no options", q.ID)
		}
	case QuestionTypeSingleChoice, QuestionTypeMultiChoice:
		if len(q.Options) == 0 {
			return fmt.Errorf("question %q: choice questions need options", q.ID)
		}
		seen := make(map[string]struct{}, len(q.Options))
		for _, opt := range q.Options {
			if strings.TrimSpace(opt) == "" {
				return fmt.Errorf("question %q: blank option", q.ID)
			}
			if _, dup := seen[opt]; dup {
				return fmt.Errorf("question %q: duplicate option %q", q.ID, opt)
			}
			seen[opt] = struct{}{}
		}
	case QuestionTypeRating:
		if q.MaxRating <= 0 {
			return fmt.Errorf("question %q: rating questions need maxRating > 0", q.ID)
		}
		if len(q.Options) > 0 {
			return fmt.Errorf("question %q: rating questions take no options", q.ID)
		}
	default:
		return fmt.Errorf("question %q: unknown type %q", q.ID, q.Type)
	}
	return nil
}

// HasOption reports whether value is one of the question's options.
func (q Question) HasOption(value string) bool {
	for _, opt := range q.Options {
		if opt == value {
			return true
		}
	}
	return false
}

// Survey is the stored document. CredentialHash never leaves the server;
// read paths go through View.
type Survey struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title          string             `bson:"title" json:"title"`
	Description    string             `bson:"description,omitempty" json:"description,omitempty"`
	Questions      []Question         `bson:"questions" json:"questions"`
	IsActive       bool               `bson:"isActive" json:"isActive"`
	CredentialHash string             `bson:"creationPassword,omitempty" json:"-"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// SurveyView is the externally visible projection of a Survey.
type SurveyView struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Questions   []Question `json:"questions"`
	IsActive    bool       `json:"isActive"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// View strips the credential hash.
func (s Survey) View() SurveyView {
	questions := s.Questions
	if questions == nil {
		questions = []Question{}
	}
	return SurveyView{
		ID:          s.ID.Hex(),
		Title:       s.Title,
		Description: s.Description,
		Questions:   questions,
		IsActive:    s.IsActive,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// Question looks a question up by id.
func (v SurveyView) Question(id string) (Question, bool) {
	for _, q := range v.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

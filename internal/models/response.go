package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Answer holds one question's answer. Which value field is used depends on
// the question type.
type Answer struct {
	QuestionID string   `bson:"questionId" json:"questionId"`
	Value      string   `bson:"value,omitempty" json:"value,omitempty"`
	Values     []string `bson:"values,omitempty" json:"values,omitempty"`
	Rating     int      `bson:"rating,omitempty" json:"rating,omitempty"`
}

// SurveyResponse is a visitor's submission against an active survey.
type SurveyResponse struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SurveyID  primitive.ObjectID `bson:"surveyId" json:"surveyId"`
	Answers   []Answer           `bson:"answers" json:"answers"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

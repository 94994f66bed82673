package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/noah-isme/gratitude-api/internal/dto"
	"github.com/noah-isme/gratitude-api/internal/models"
	"github.com/noah-isme/gratitude-api/pkg/database"
	appErrors "github.com/noah-isme/gratitude-api/pkg/errors"
)

const credentialField = "creationPassword"

// withoutCredential keeps the hash out of every read.
var withoutCredential = bson.M{credentialField: 0}

// SurveyRepository persists surveys and their credential hashes.
type SurveyRepository struct {
	conn       database.Connector
	collection string
}

// NewSurveyRepository constructs the repository.
func NewSurveyRepository(conn database.Connector, collection string) *SurveyRepository {
	if collection == "" {
		collection = "surveys"
	}
	return &SurveyRepository{conn: conn, collection: collection}
}

// Insert stores a survey together with its already hashed secret.
func (r *SurveyRepository) Insert(ctx context.Context, survey *models.Survey, hashedSecret string) (string, error) {
	if len(survey.Questions) == 0 {
		return "", appErrors.Validation("survey needs at least one question", "questions")
	}
	if hashedSecret == "" {
		return "", appErrors.Validation("survey credential is required", "creationSecret")
	}

	now := time.Now().UTC()
	if survey.ID.IsZero() {
		survey.ID = primitive.NewObjectID()
	}
	if survey.CreatedAt.IsZero() {
		survey.CreatedAt = now
	}
	survey.UpdatedAt = survey.CreatedAt
	survey.CredentialHash = hashedSecret

	err := database.WithHandle(ctx, r.conn, func(h *database.Handle) error {
		_, err := h.Collection(r.collection).InsertOne(ctx, survey)
		return err
	})
	if err != nil {
		return "", storeError(err, "insert survey")
	}
	return survey.ID.Hex(), nil
}

// ListActive returns active surveys newest first.
func (r *SurveyRepository) ListActive(ctx context.Context) ([]models.SurveyView, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetProjection(withoutCredential)

	var surveys []models.Survey
	err := database.WithHandle(ctx, r.conn, func(h *database.Handle) error {
		cursor, err := h.Collection(r.collection).Find(ctx, bson.M{"isActive": true}, opts)
		if err != nil {
			return err
		}
		return cursor.All(ctx, &surveys)
	})
	if err != nil {
		return nil, storeError(err, "list surveys")
	}

	views := make([]models.SurveyView, 0, len(surveys))
	for _, s := range surveys {
		if !s.IsActive {
			continue
		}
		views = append(views, s.View())
	}
	return views, nil
}

// Get returns one survey regardless of its active flag.
func (r *SurveyRepository) Get(ctx context.Context, id string) (*models.SurveyView, error) {
	oid, err := parseObjectID(id, "survey")
	if err != nil {
		return nil, err
	}

	var survey models.Survey
	err = database.WithHandle(ctx, r.conn, func(h *database.Handle) error {
		return h.Collection(r.collection).
			FindOne(ctx, bson.M{"_id": oid}, options.FindOne().SetProjection(withoutCredential)).
			Decode(&survey)
	})
	if err != nil {
		return nil, storeError(err, "survey")
	}
	view := survey.View()
	return &view, nil
}

// FindCredential returns the stored hash for a survey.
func (r *SurveyRepository) FindCredential(ctx context.Context, id string) (string, error) {
	oid, err := parseObjectID(id, "survey")
	if err != nil {
		return "", err
	}

	var doc struct {
		Hash string `bson:"creationPassword"`
	}
	err = database.WithHandle(ctx, r.conn, func(h *database.Handle) error {
		return h.Collection(r.collection).
			FindOne(ctx, bson.M{"_id": oid}, options.FindOne().SetProjection(bson.M{credentialField: 1})).
			Decode(&doc)
	})
	if err != nil {
		return "", storeError(err, "survey")
	}
	return doc.Hash, nil
}

// Update applies a patch and returns the updated view.
func (r *SurveyRepository) Update(ctx context.Context, id string, patch dto.SurveyPatch) (*models.SurveyView, error) {
	oid, err := parseObjectID(id, "survey")
	if err != nil {
		return nil, err
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Questions != nil {
		set["questions"] = patch.Questions
	}
	if patch.IsActive != nil {
		set["isActive"] = *patch.IsActive
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(withoutCredential)

	var survey models.Survey
	err = database.WithHandle(ctx, r.conn, func(h *database.Handle) error {
		res := h.Collection(r.collection).FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts)
		return res.Decode(&survey)
	})
	if err != nil {
		return nil, storeError(err, "survey")
	}
	view := survey.View()
	return &view, nil
}

// SurveyResponseRepository persists visitor answers.
type SurveyResponseRepository struct {
	conn       database.Connector
	collection string
}

// NewSurveyResponseRepository constructs the repository.
func NewSurveyResponseRepository(conn database.Connector, collection string) *SurveyResponseRepository {
	if collection == "" {
		collection = "survey_responses"
	}
	return &SurveyResponseRepository{conn: conn, collection: collection}
}

// Insert stores a response and returns its id.
func (r *SurveyResponseRepository) Insert(ctx context.Context, resp *models.SurveyResponse) (string, error) {
	if resp.ID.IsZero() {
		resp.ID = primitive.NewObjectID()
	}
	if resp.CreatedAt.IsZero() {
		resp.CreatedAt = time.Now().UTC()
	}
	err := database.WithHandle(ctx, r.conn, func(h *database.Handle) error {
		_, err := h.Collection(r.collection).InsertOne(ctx, resp)
		return err
	})
	if err != nil {
		return "", storeError(err, "insert survey response")
	}
	return resp.ID.Hex(), nil
}

// CountBySurvey counts stored responses for a survey.
func (r *SurveyResponseRepository) CountBySurvey(ctx context.Context, surveyID string) (int64, error) {
	oid, err := parseObjectID(surveyID, "survey")
	if err != nil {
		return 0, err
	}
	var count int64
	err = database.WithHandle(ctx, r.conn, func(h *database.Handle) error {
		var err error
		count, err = h.Collection(r.collection).CountDocuments(ctx, bson.M{"surveyId": oid})
		return err
	})
	if err != nil {
		return 0, storeError(err, "count survey responses")
	}
	return count, nil
}

// ListBySurvey returns a survey's responses, oldest first.
func (r *SurveyResponseRepository) ListBySurvey(ctx context.Context, surveyID string) ([]models.SurveyResponse, error) {
	oid, err := parseObjectID(surveyID, "survey")
	if err != nil {
		return nil, err
	}
	responses := []models.SurveyResponse{}
	err = database.WithHandle(ctx, r.conn, func(h *database.Handle) error {
		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
		cursor, err := h.Collection(r.collection).Find(ctx, bson.M{"surveyId": oid}, opts)
		if err != nil {
			return err
		}
		return cursor.All(ctx, &responses)
	})
	if err != nil {
		return nil, storeError(err, "list survey responses")
	}
	return responses, nil
}

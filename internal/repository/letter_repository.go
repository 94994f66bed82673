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
)

// LetterRepository persists letters. Letters are append-only.
type LetterRepository struct {
	conn       database.Connector
	collection string
}

// NewLetterRepository constructs the repository.
func NewLetterRepository(conn database.Connector, collection string) *LetterRepository {
	if collection == "" {
		collection = "letters"
	}
	return &LetterRepository{conn: conn, collection: collection}
}

// Insert stores a letter and returns its id.
func (r *LetterRepository) Insert(ctx context.Context, letter *models.Letter) (string, error) {
	if letter.ID.IsZero() {
		letter.ID = primitive.NewObjectID()
	}
	if letter.CreatedAt.IsZero() {
		letter.CreatedAt = time.Now().UTC()
	}

	err := database.WithHandle(ctx, r.conn, func(h *database.Handle) error {
		_, err := h.Collection(r.collection).InsertOne(ctx, letter)
		return err
	})
	if err != nil {
		return "", storeError(err, "insert letter")
	}
	return letter.ID.Hex(), nil
}

// List returns letters newest first, optionally for one country.
func (r *LetterRepository) List(ctx context.Context, filter dto.LetterFilter) ([]models.Letter, error) {
	query := bson.M{}
	if filter.CountryID != "" {
		query["countryId"] = filter.CountryID
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	if filter.Offset > 0 {
		opts.SetSkip(int64(filter.Offset))
	}

	letters := []models.Letter{}
	err := database.WithHandle(ctx, r.conn, func(h *database.Handle) error {
		cursor, err := h.Collection(r.collection).Find(ctx, query, opts)
		if err != nil {
			return err
		}
		return cursor.All(ctx, &letters)
	})
	if err != nil {
		return nil, storeError(err, "list letters")
	}
	return letters, nil
}

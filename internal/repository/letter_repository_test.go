package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/noah-isme/gratitude-api/internal/dto"
	"github.com/noah-isme/gratitude-api/internal/models"
	"github.com/noah-isme/gratitude-api/pkg/config"
	"github.com/noah-isme/gratitude-api/pkg/database"
	appErrors "github.com/noah-isme/gratitude-api/pkg/errors"
)

func TestLetterRepositoryInsertAssignsIdentity(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("insert", func(mt *mtest.T) {
		repo := NewLetterRepository(database.NewManagerFromClient(mt.Client, "gratitude_test"), "")
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		letter := &models.Letter{WriterName: "Kim", OriginalContent: "Thank you", TranslatedContent: "Thank you", CountryID: "usa"}
		id, err := repo.Insert(context.Background(), letter)
		require.NoError(mt, err)
		assert.Equal(mt, letter.ID.Hex(), id)
		assert.False(mt, letter.CreatedAt.IsZero())
	})

	mt.Run("write error", func(mt *mtest.T) {
		repo := NewLetterRepository(database.NewManagerFromClient(mt.Client, "gratitude_test"), "")
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 121, Message: "document failed validation"}))

		_, err := repo.Insert(context.Background(), &models.Letter{WriterName: "Kim"})
		require.Error(mt, err)
		assert.ErrorIs(mt, err, appErrors.ErrPersistence)
	})
}

func TestLetterRepositoryList(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decodes letters", func(mt *mtest.T) {
		repo := NewLetterRepository(database.NewManagerFromClient(mt.Client, "gratitude_test"), "letters")
		newer := models.Letter{ID: primitive.NewObjectID(), WriterName: "Kim", OriginalContent: "Thanks", CountryID: "usa", CreatedAt: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)}
		older := models.Letter{ID: primitive.NewObjectID(), WriterName: "Lee", OriginalContent: "Merci", CountryID: "usa", CreatedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}

		mt.AddMockResponses(mtest.CreateCursorResponse(0, "gratitude_test.letters", mtest.FirstBatch, toDoc(mt, newer), toDoc(mt, older)))
		letters, err := repo.List(context.Background(), dto.LetterFilter{CountryID: "usa", Limit: 10})
		require.NoError(mt, err)
		require.Len(mt, letters, 2)
		assert.Equal(mt, "Kim", letters[0].WriterName)
		assert.Equal(mt, newer.ID, letters[0].ID)
	})

	mt.Run("empty result is not nil", func(mt *mtest.T) {
		repo := NewLetterRepository(database.NewManagerFromClient(mt.Client, "gratitude_test"), "letters")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "gratitude_test.letters", mtest.FirstBatch))

		letters, err := repo.List(context.Background(), dto.LetterFilter{})
		require.NoError(mt, err)
		assert.NotNil(mt, letters)
		assert.Empty(mt, letters)
	})
}

func TestLetterRepositoryWithoutURIKeepsConfigurationError(t *testing.T) {
	repo := NewLetterRepository(database.NewManager(config.MongoConfig{Database: "gratitude"}), "")

	_, err := repo.List(context.Background(), dto.LetterFilter{})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrConfiguration)
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/noah-isme/gratitude-api/internal/dto"
	"github.com/noah-isme/gratitude-api/internal/models"
	"github.com/noah-isme/gratitude-api/internal/repository"
	appErrors "github.com/noah-isme/gratitude-api/pkg/errors"
)

type letterRepoStub struct {
	letters   []models.Letter
	listCalls int
	err       error
}

func (s *letterRepoStub) Insert(ctx context.Context, letter *models.Letter) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	letter.ID = primitive.NewObjectID()
	letter.CreatedAt = time.Now().UTC()
	s.letters = append(s.letters, *letter)
	return letter.ID.Hex(), nil
}

func (s *letterRepoStub) List(ctx context.Context, filter dto.LetterFilter) ([]models.Letter, error) {
	s.listCalls++
	if s.err != nil {
		return nil, s.err
	}
	result := []models.Letter{}
	for _, l := range s.letters {
		if filter.CountryID == "" || l.CountryID == filter.CountryID {
			result = append(result, l)
		}
	}
	return result, nil
}

type memoryCacheRepo struct {
	items       map[string][]byte
	invalidated []string
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{items: map[string][]byte{}}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.items[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.invalidated = append(m.invalidated, pattern)
	m.items = map[string][]byte{}
	return nil
}

func TestLetterServiceCreate(t *testing.T) {
	repo := &letterRepoStub{}
	svc := NewLetterService(repo, nil, NewMetricsService(), nil, nil)

	record, err := svc.Create(context.Background(), map[string]interface{}{
		"sender":  "Kim",
		"message": "Thank you",
		"country": "usa",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, "Thank you", record.OriginalContent)
	assert.Equal(t, "Thank you", record.LetterContent)
	assert.Equal(t, "Thank you", record.TranslatedContent)
	assert.Equal(t, "usa", record.CountryID)
	assert.Equal(t, "usa", record.Country)
	require.Len(t, repo.letters, 1)
	assert.Equal(t, "Kim", repo.letters[0].WriterName)
	assert.Equal(t, uint64(1), svc.metrics.Snapshot().LettersCreated)
}

func TestLetterServiceCreateValidation(t *testing.T) {
	repo := &letterRepoStub{}
	svc := NewLetterService(repo, nil, nil, nil, nil)

	_, err := svc.Create(context.Background(), map[string]interface{}{"name": "Kim"})
	require.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Equal(t, []string{"letterContent", "countryId"}, appErrors.FromError(err).Fields)
	assert.Empty(t, repo.letters)
}

func TestLetterServicePropagatesStoreFailure(t *testing.T) {
	repo := &letterRepoStub{err: appErrors.Persistence(errors.New("connection reset"), "insert letter")}
	svc := NewLetterService(repo, nil, nil, nil, nil)

	_, err := svc.Create(context.Background(), map[string]interface{}{"name": "Kim", "message": "Hi", "country": "usa"})
	assert.ErrorIs(t, err, appErrors.ErrPersistence)

	_, _, err = svc.List(context.Background(), dto.LetterFilter{})
	assert.ErrorIs(t, err, appErrors.ErrPersistence)
}

func TestLetterServiceListUsesCache(t *testing.T) {
	repo := &letterRepoStub{}
	cacheRepo := newMemoryCacheRepo()
	cache := NewCacheService(cacheRepo, nil, time.Minute, nil, true)
	svc := NewLetterService(repo, cache, nil, nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, map[string]interface{}{"name": "Kim", "letterContent": "Thanks", "countryId": "usa"})
	require.NoError(t, err)
	assert.Equal(t, []string{repository.LetterListPattern}, cacheRepo.invalidated)

	first, hit, err := svc.List(ctx, dto.LetterFilter{CountryID: "usa"})
	require.NoError(t, err)
	assert.False(t, hit)
	require.Len(t, first, 1)

	second, hit, err := svc.List(ctx, dto.LetterFilter{CountryID: "usa"})
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, 1, repo.listCalls)
}

func TestLetterServiceListRejectsBadFilter(t *testing.T) {
	svc := NewLetterService(&letterRepoStub{}, nil, nil, nil, nil)
	_, _, err := svc.List(context.Background(), dto.LetterFilter{Limit: 1000})
	require.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Contains(t, appErrors.FromError(err).Fields, "limit")
}

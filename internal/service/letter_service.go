package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/gratitude-api/internal/dto"
	"github.com/noah-isme/gratitude-api/internal/models"
	"github.com/noah-isme/gratitude-api/internal/repository"
)

type letterRepository interface {
	Insert(ctx context.Context, letter *models.Letter) (string, error)
	List(ctx context.Context, filter dto.LetterFilter) ([]models.Letter, error)
}

// LetterService accepts and lists thank-you letters.
type LetterService struct {
	repo      letterRepository
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLetterService constructs the service.
func NewLetterService(repo letterRepository, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *LetterService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LetterService{repo: repo, cache: cache, metrics: metrics, validator: validate, logger: logger}
}

// Create normalizes an alias tolerant payload and stores it.
func (s *LetterService) Create(ctx context.Context, input map[string]interface{}) (*dto.LetterRecord, error) {
	letter, err := dto.NormalizeLetter(input)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	id, err := s.repo.Insert(ctx, letter)
	s.metrics.ObserveStoreOperation("insert_letter", err, time.Since(start))
	if err != nil {
		s.logger.Error("failed to store letter", zap.String("country_id", letter.CountryID), zap.Error(err))
		return nil, err
	}

	s.metrics.RecordLetterCreated()
	s.cache.Invalidate(ctx, repository.LetterListPattern)

	record := dto.NewLetterRecord(letter, id)
	return &record, nil
}

// List returns letters newest first. The boolean reports a cache hit.
func (s *LetterService) List(ctx context.Context, filter dto.LetterFilter) ([]dto.LetterRecord, bool, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, false, validationError(err, "invalid letter filter")
	}

	key := repository.LetterListKey(filter.CountryID, filter.Limit, filter.Offset)
	return Cached(ctx, s.cache, key, func(ctx context.Context) ([]dto.LetterRecord, error) {
		start := time.Now()
		letters, err := s.repo.List(ctx, filter)
		s.metrics.ObserveStoreOperation("list_letters", err, time.Since(start))
		if err != nil {
			return nil, err
		}
		return dto.NewLetterRecords(letters), nil
	})
}

package history

import (
	"context"
	"fmt"
	"time"

	"github.com/kapu/emotion-map-go/internal/constants"
	"github.com/kapu/emotion-map-go/internal/domain"
	"github.com/kapu/emotion-map-go/internal/util"
	"go.uber.org/zap"
)

const recentKeyPrefix = "emomap:history:recent:"

// Store is the persistence surface the service layers over.
type Store interface {
	Insert(ctx context.Context, record *domain.AnalysisRecord) (int64, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.AnalysisRecord, error)
	FindByID(ctx context.Context, id int64) (*domain.AnalysisRecord, error)
}

// Cache matches the CacheService surface the history listing needs.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	DelByPrefix(ctx context.Context, prefix string) error
}

// Service fronts the repository with a short-lived Redis cache for the
// recent-history listing. Writes invalidate the listing.
type Service struct {
	store  Store
	cache  Cache
	logger *zap.Logger
}

func NewService(store Store, cache Cache, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

// Record stores a completed analysis and invalidates the recent listing.
// Failures here must not fail the analysis request; callers log and move on.
func (s *Service) Record(ctx context.Context, record *domain.AnalysisRecord) (int64, error) {
	id, err := s.store.Insert(ctx, record)
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		if err := s.cache.DelByPrefix(ctx, recentKeyPrefix); err != nil {
			s.logger.Warn("Failed to invalidate history cache", zap.Error(err))
		}
	}

	return id, nil
}

// Recent returns the newest analyses, serving from cache when warm.
func (s *Service) Recent(ctx context.Context, limit int) ([]*domain.AnalysisRecord, error) {
	if limit <= 0 {
		limit = constants.HistoryConfig.DefaultLimit
	}
	limit = util.Min(limit, constants.HistoryConfig.MaxLimit)

	key := fmt.Sprintf("%s%d", recentKeyPrefix, limit)

	if s.cache != nil {
		var cached []*domain.AnalysisRecord
		hit, err := s.cache.Get(ctx, key, &cached)
		if err == nil && hit {
			s.logger.Debug("History cache hit", zap.Int("limit", limit))
			return cached, nil
		}
	}

	records, err := s.store.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, records, constants.CacheTTL.RecentAnalyses); err != nil {
			s.logger.Warn("Failed to cache history listing", zap.Error(err))
		}
	}

	return records, nil
}

// Get returns one stored analysis, or nil when absent.
func (s *Service) Get(ctx context.Context, id int64) (*domain.AnalysisRecord, error) {
	return s.store.FindByID(ctx, id)
}

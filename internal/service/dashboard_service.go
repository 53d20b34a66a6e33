package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cursohub/cursohub-api/internal/models"
	appErrors "github.com/cursohub/cursohub-api/pkg/errors"
)

type statsRepository interface {
	PlatformStats(ctx context.Context) (*models.PlatformStats, error)
}

const statsCacheKey = "dash:admin:stats"

// DashboardService composes the admin dashboard payload. Counts come
// straight from the store and are cached with a short TTL.
type DashboardService struct {
	repo     statsRepository
	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewDashboardService constructs a DashboardService instance.
func NewDashboardService(repo statsRepository, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *DashboardService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{repo: repo, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// Stats returns platform counts and reports whether the cache served them.
func (s *DashboardService) Stats(ctx context.Context) (*models.PlatformStats, bool, error) {
	if s.cache != nil {
		var cached models.PlatformStats
		hit, err := s.cache.Get(ctx, statsCacheKey, &cached)
		if err != nil {
			s.logger.Warn("stats cache read failed", zap.Error(err))
		} else if hit {
			return &cached, true, nil
		}
	}

	stats, err := s.repo.PlatformStats(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load platform stats")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, statsCacheKey, stats, s.cacheTTL); err != nil {
			s.logger.Warn("stats cache write failed", zap.Error(err))
		}
	}

	return stats, false, nil
}

// InvalidateStats drops the cached counts, used after admin mutations
// that change them.
func (s *DashboardService) InvalidateStats(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, statsCacheKey); err != nil {
		s.logger.Warn("stats cache invalidation failed", zap.Error(err))
	}
}

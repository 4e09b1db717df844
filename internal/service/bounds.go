package service

import (
	"context"
	"errors"
	"fmt"

	"fight-timeline/internal/bounds"
	"fight-timeline/internal/constants"
	"fight-timeline/internal/domain"
	"fight-timeline/internal/repository"
	"fight-timeline/internal/timeline"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const boundsKey = "bounds"

// BoundsService computes the chart domain over the whole fighter universe
// and caches it. Concurrent misses share one computation.
type BoundsService struct {
	repo   *repository.FighterRepository
	cache  *cache.Cache
	group  singleflight.Group
	logger zerolog.Logger
}

func NewBoundsService(repo *repository.FighterRepository, logger zerolog.Logger) *BoundsService {
	return &BoundsService{
		repo:   repo,
		cache:  cache.New(constants.BoundsCacheTTL, constants.BoundsCacheCleanup),
		logger: logger,
	}
}

func (s *BoundsService) GetBounds(ctx context.Context) (domain.Domain, error) {
	if cached, ok := s.cache.Get(boundsKey); ok {
		return cached.(domain.Domain), nil
	}

	// the shared load must outlive any single caller giving up
	v, err, shared := s.group.Do(boundsKey, func() (any, error) {
		dom, err := s.compute(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		s.cache.Set(boundsKey, dom, cache.DefaultExpiration)
		return dom, nil
	})
	if err != nil {
		return domain.Domain{}, err
	}

	s.logger.Debug().Bool("shared", shared).Msg("bounds computed")
	return v.(domain.Domain), nil
}

// Invalidate drops the cached domain, e.g. after a dataset load.
func (s *BoundsService) Invalidate() {
	s.cache.Delete(boundsKey)
}

func (s *BoundsService) compute(ctx context.Context) (domain.Domain, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	all, err := s.repo.All(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load fighter universe")
		return domain.Domain{}, fmt.Errorf("failed to load fighter universe: %w", err)
	}

	transformed, dataErr := timeline.Transform(all)
	if dataErr != nil {
		var de *domain.DataError
		if errors.As(dataErr, &de) {
			s.logger.Warn().Err(dataErr).Str("fighter_id", de.FighterID).Msg("fighters left out of bounds")
		}
	}

	dom := bounds.Calculate(transformed)
	// fighters rejected for data quality still count towards the table total
	dom.FighterCount = len(all)

	s.logger.Info().
		Int("fighter_count", dom.FighterCount).
		Int("min_line", dom.MinLine).
		Int("max_line", dom.MaxLine).
		Str("min_date", dom.MinDate.String()).
		Str("max_date", dom.MaxDate.String()).
		Msg("bounds calculated")
	return dom, nil
}

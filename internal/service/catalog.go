package service

import (
	"context"
	"errors"

	"fight-timeline/internal/constants"
	"fight-timeline/internal/domain"
	"fight-timeline/internal/repository"

	"github.com/rs/zerolog"
)

// CatalogService lists events and promotions for the table's filters and
// the chart's event markers.
type CatalogService struct {
	events     *repository.EventRepository
	promotions *repository.PromotionRepository
	logger     zerolog.Logger
}

func NewCatalogService(events *repository.EventRepository, promotions *repository.PromotionRepository, logger zerolog.Logger) *CatalogService {
	return &CatalogService{events: events, promotions: promotions, logger: logger}
}

// GetEvents skips events with malformed dates and logs them.
func (s *CatalogService) GetEvents(ctx context.Context) ([]domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	events, err := s.events.List(ctx)
	var dataErr *domain.DataError
	if errors.As(err, &dataErr) {
		s.logger.Warn().Err(err).Msg("events left out of the catalog")
		return events, nil
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list events")
		return nil, err
	}
	return events, nil
}

func (s *CatalogService) GetPromotions(ctx context.Context) ([]domain.Promotion, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	promotions, err := s.promotions.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list promotions")
		return nil, err
	}
	return promotions, nil
}

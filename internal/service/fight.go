package service

import (
	"context"

	"fight-timeline/internal/constants"
	"fight-timeline/internal/domain"
	"fight-timeline/internal/repository"

	"github.com/rs/zerolog"
)

type FightService struct {
	repo   *repository.FightRepository
	logger zerolog.Logger
}

func NewFightService(repo *repository.FightRepository, logger zerolog.Logger) *FightService {
	return &FightService{repo: repo, logger: logger}
}

func (s *FightService) GetFight(ctx context.Context, id string) (*domain.Fight, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	s.logger.Debug().Str("fight_id", id).Msg("getting fight")

	fight, err := s.repo.Get(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("fight_id", id).Msg("failed to get fight")
		return nil, err
	}
	return fight, nil
}

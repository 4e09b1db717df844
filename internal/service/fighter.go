package service

import (
	"context"
	"errors"
	"fmt"

	"fight-timeline/internal/constants"
	"fight-timeline/internal/domain"
	"fight-timeline/internal/repository"

	"github.com/rs/zerolog"
)

type FighterService struct {
	repo   *repository.FighterRepository
	logger zerolog.Logger
}

func NewFighterService(repo *repository.FighterRepository, logger zerolog.Logger) *FighterService {
	return &FighterService{repo: repo, logger: logger}
}

func (s *FighterService) GetBriefFighters(ctx context.Context, filter domain.Filter) ([]domain.Fighter, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	filter = filter.Normalize()
	s.logger.Debug().
		Int("win_count", filter.WinCount).
		Int("loss_count", filter.LossCount).
		Int("total_count", filter.TotalCount).
		Str("search", filter.Search).
		Str("promotion", filter.Promotion).
		Str("weight_class", filter.WeightClass).
		Msg("getting brief fighters")

	fighters, err := s.repo.Brief(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get brief fighters")
		return nil, err
	}
	return fighters, nil
}

func (s *FighterService) GetFighters(ctx context.Context, ids []string) ([]domain.Fighter, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	s.logger.Debug().Strs("ids", ids).Msg("getting fighters")

	fighters, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Error().Err(err).Strs("ids", ids).Msg("failed to get fighters")
		return nil, err
	}
	return fighters, nil
}

func (s *FighterService) GetOpponent(ctx context.Context, fightID, fighterID string) (*domain.Fighter, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	opponent, err := s.repo.Opponent(ctx, fightID, fighterID)
	if errors.Is(err, domain.ErrNotFound) {
		s.logger.Warn().Str("fight_id", fightID).Str("fighter_id", fighterID).Msg("fight has no opponent on record")
		return nil, fmt.Errorf("opponent of %s in fight %s: %w", fighterID, fightID, err)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("fight_id", fightID).Msg("failed to get opponent")
		return nil, err
	}
	return opponent, nil
}

func (s *FighterService) GetInitialSelectedFighters(ctx context.Context) ([]domain.Fighter, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	fighters, err := s.repo.InitialSelected(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get initial selection")
		return nil, err
	}
	s.logger.Debug().Int("count", len(fighters)).Msg("initial selection loaded")
	return fighters, nil
}

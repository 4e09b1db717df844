package dataset

import (
	"context"
	"fmt"

	"fight-timeline/internal/domain"
	"fight-timeline/internal/repository"

	"github.com/rs/zerolog"
)

type Loader struct {
	promotions *repository.PromotionRepository
	events     *repository.EventRepository
	fighters   *repository.FighterRepository
	fights     *repository.FightRepository
	logger     zerolog.Logger
}

func NewLoader(
	promotions *repository.PromotionRepository,
	events *repository.EventRepository,
	fighters *repository.FighterRepository,
	fights *repository.FightRepository,
	logger zerolog.Logger,
) *Loader {
	return &Loader{
		promotions: promotions,
		events:     events,
		fighters:   fighters,
		fights:     fights,
		logger:     logger,
	}
}

type Stats struct {
	Promotions int `json:"promotions"`
	Events     int `json:"events"`
	Fighters   int `json:"fighters"`
	Fights     int `json:"fights"`
	Initial    int `json:"initial"`
}

// Load validates ds and upserts it. Nothing is written when validation
// fails. The default selection is replaced only when the dataset marks at
// least one fighter as initial.
func (l *Loader) Load(ctx context.Context, ds *Dataset) (Stats, error) {
	if err := ds.Validate(); err != nil {
		l.logger.Error().Err(err).Msg("dataset failed validation")
		return Stats{}, err
	}

	events, fighters, fights, initial := ds.toDomain()
	promotions := append([]domain.Promotion(nil), ds.Promotions...)

	if err := l.promotions.UpsertBatch(ctx, promotions); err != nil {
		return Stats{}, fmt.Errorf("failed to load promotions: %w", err)
	}
	if err := l.events.UpsertBatch(ctx, events); err != nil {
		return Stats{}, fmt.Errorf("failed to load events: %w", err)
	}
	if err := l.fighters.UpsertBatch(ctx, fighters); err != nil {
		return Stats{}, fmt.Errorf("failed to load fighters: %w", err)
	}
	if err := l.fights.UpsertBatch(ctx, fights); err != nil {
		return Stats{}, fmt.Errorf("failed to load fights: %w", err)
	}
	if len(initial) > 0 {
		if err := l.fighters.SetInitialSelected(ctx, initial); err != nil {
			return Stats{}, fmt.Errorf("failed to set initial selection: %w", err)
		}
	}

	stats := Stats{
		Promotions: len(promotions),
		Events:     len(events),
		Fighters:   len(fighters),
		Fights:     len(fights),
		Initial:    len(initial),
	}
	l.logger.Info().
		Int("promotions", stats.Promotions).
		Int("events", stats.Events).
		Int("fighters", stats.Fighters).
		Int("fights", stats.Fights).
		Int("initial", stats.Initial).
		Msg("dataset loaded")
	return stats, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fight-timeline/internal/domain"

	"github.com/rs/zerolog"
)

type FightRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewFightRepository(sqlDB *sql.DB, logger zerolog.Logger) *FightRepository {
	return &FightRepository{
		db:     sqlDB,
		logger: logger,
	}
}

// Get returns the full fight detail with its event and both participants.
func (r *FightRepository) Get(ctx context.Context, id string) (*domain.Fight, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT`+fightColumns+`
		FROM fights f
		JOIN events e ON e.id = f.event_id
		WHERE f.id = ?`, id)

	fight, rawDate, err := scanFight(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query fight %s: %w", id, err)
	}

	fight.Event.DateOf, err = domain.ParseDate(rawDate)
	if err != nil {
		return nil, &domain.DataError{FightID: id, Err: err}
	}

	byFight, err := participants(ctx, r.db, []string{id})
	if err != nil {
		return nil, err
	}
	fight.Participants = byFight[id]

	return &fight, nil
}

// UpsertBatch writes fights and their participant rows. Events and fighters
// must already exist. Missing fight ids are generated and written back.
func (r *FightRepository) UpsertBatch(ctx context.Context, fights []domain.Fight) error {
	if len(fights) == 0 {
		return nil
	}

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		for i := range fights {
			f := &fights[i]
			if f.ID == "" {
				id, err := newID()
				if err != nil {
					return err
				}
				f.ID = id
			}

			_, err := tx.ExecContext(ctx, `
				INSERT INTO fights (id, event_id, card_index, method, method_detail, round, round_time, referee)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(id) DO UPDATE SET
					event_id = excluded.event_id,
					card_index = excluded.card_index,
					method = excluded.method,
					method_detail = excluded.method_detail,
					round = excluded.round,
					round_time = excluded.round_time,
					referee = excluded.referee`,
				f.ID, f.Event.ID, f.CardIndex, f.Method, f.MethodDetail, f.Round, f.RoundTime, f.Referee)
			if err != nil {
				return fmt.Errorf("failed to upsert fight %s: %w", f.ID, err)
			}

			for _, p := range f.Participants {
				if _, err := domain.ParseResult(string(p.Result)); err != nil {
					return &domain.DataError{FighterID: p.FighterID, FightID: f.ID, Err: err}
				}
				_, err := tx.ExecContext(ctx, `
					INSERT INTO fight_fighters (fight_id, fighter_id, result)
					VALUES (?, ?, ?)
					ON CONFLICT(fight_id, fighter_id) DO UPDATE SET result = excluded.result`,
					f.ID, p.FighterID, string(p.Result))
				if err != nil {
					return fmt.Errorf("failed to upsert participant %s of fight %s: %w", p.FighterID, f.ID, err)
				}
			}
		}

		r.logger.Debug().Int("count", len(fights)).Msg("fights upserted")
		return nil
	})
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fight-timeline/internal/domain"

	"github.com/rs/zerolog"
)

type EventRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewEventRepository(sqlDB *sql.DB, logger zerolog.Logger) *EventRepository {
	return &EventRepository{
		db:     sqlDB,
		logger: logger,
	}
}

// List returns every event in date order. Events with malformed dates are
// left out and reported as joined *domain.DataError values.
func (r *EventRepository) List(ctx context.Context) ([]domain.Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, location, dateof, COALESCE(promotion_id, '')
		FROM events
		ORDER BY dateof, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := []domain.Event{}
	var errs []error
	for rows.Next() {
		var (
			e       domain.Event
			rawDate string
		)
		if err := rows.Scan(&e.ID, &e.Name, &e.Location, &rawDate, &e.PromotionID); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if e.DateOf, err = domain.ParseDate(rawDate); err != nil {
			errs = append(errs, &domain.DataError{Err: fmt.Errorf("event %s: %w", e.ID, err)})
			continue
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}

	return events, errors.Join(errs...)
}

// UpsertBatch writes events. Missing ids are generated and written back.
func (r *EventRepository) UpsertBatch(ctx context.Context, events []domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		for i := range events {
			e := &events[i]
			if e.DateOf.IsZero() {
				return &domain.DataError{Err: fmt.Errorf("event %q: %w", e.Name, domain.ErrMalformedDate)}
			}
			if e.ID == "" {
				id, err := newID()
				if err != nil {
					return err
				}
				e.ID = id
			}

			var promotion any
			if e.PromotionID != "" {
				promotion = e.PromotionID
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO events (id, name, location, dateof, promotion_id)
				VALUES (?, ?, ?, ?, ?)
				ON CONFLICT(id) DO UPDATE SET
					name = excluded.name,
					location = excluded.location,
					dateof = excluded.dateof,
					promotion_id = excluded.promotion_id`,
				e.ID, e.Name, e.Location, e.DateOf.String(), promotion)
			if err != nil {
				return fmt.Errorf("failed to upsert event %s: %w", e.ID, err)
			}
		}
		return nil
	})
}

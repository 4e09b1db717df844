package repository

import (
	"context"
	"database/sql"
	"fmt"

	"fight-timeline/internal/domain"

	"github.com/rs/zerolog"
)

type PromotionRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewPromotionRepository(sqlDB *sql.DB, logger zerolog.Logger) *PromotionRepository {
	return &PromotionRepository{
		db:     sqlDB,
		logger: logger,
	}
}

func (r *PromotionRepository) List(ctx context.Context) ([]domain.Promotion, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, nickname FROM promotions ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query promotions: %w", err)
	}
	defer rows.Close()

	promotions := []domain.Promotion{}
	for rows.Next() {
		var p domain.Promotion
		if err := rows.Scan(&p.ID, &p.Name, &p.Nickname); err != nil {
			return nil, fmt.Errorf("failed to scan promotion: %w", err)
		}
		promotions = append(promotions, p)
	}
	return promotions, rows.Err()
}

// UpsertBatch writes promotions. Missing ids are generated and written back.
func (r *PromotionRepository) UpsertBatch(ctx context.Context, promotions []domain.Promotion) error {
	if len(promotions) == 0 {
		return nil
	}

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		for i := range promotions {
			p := &promotions[i]
			if p.ID == "" {
				id, err := newID()
				if err != nil {
					return err
				}
				p.ID = id
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO promotions (id, name, nickname) VALUES (?, ?, ?)
				ON CONFLICT(id) DO UPDATE SET name = excluded.name, nickname = excluded.nickname`,
				p.ID, p.Name, p.Nickname)
			if err != nil {
				return fmt.Errorf("failed to upsert promotion %s: %w", p.ID, err)
			}
		}
		r.logger.Debug().Int("count", len(promotions)).Msg("promotions upserted")
		return nil
	})
}

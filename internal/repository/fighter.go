package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"fight-timeline/internal/domain"

	"github.com/rs/zerolog"
)

type FighterRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewFighterRepository(sqlDB *sql.DB, logger zerolog.Logger) *FighterRepository {
	return &FighterRepository{
		db:     sqlDB,
		logger: logger,
	}
}

const recordColumns = `id, name, nickname, weight_class, win_count, loss_count, fight_count`

func scanRecord(row scanner) (domain.Fighter, error) {
	var f domain.Fighter
	err := row.Scan(&f.ID, &f.Name, &f.Nickname, &f.WeightClass, &f.WinCount, &f.LossCount, &f.FightCount)
	return f, err
}

// Brief lists fighter summaries matching filter. Zero thresholds and empty
// strings leave the corresponding constraint off.
func (r *FighterRepository) Brief(ctx context.Context, filter domain.Filter) ([]domain.Fighter, error) {
	var (
		where []string
		args  []any
	)
	if filter.WinCount > 0 {
		where = append(where, "win_count >= ?")
		args = append(args, filter.WinCount)
	}
	if filter.LossCount > 0 {
		where = append(where, "loss_count >= ?")
		args = append(args, filter.LossCount)
	}
	if filter.TotalCount > 0 {
		where = append(where, "fight_count >= ?")
		args = append(args, filter.TotalCount)
	}
	if filter.Search != "" {
		pattern := "%" + escapeLike(filter.Search) + "%"
		where = append(where, `(name LIKE ? ESCAPE '\' OR nickname LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	if filter.WeightClass != "" {
		where = append(where, "weight_class = ?")
		args = append(args, filter.WeightClass)
	}
	if filter.Promotion != "" {
		where = append(where, `EXISTS (
			SELECT 1 FROM fight_fighters ff
			JOIN fights f ON f.id = ff.fight_id
			JOIN events e ON e.id = f.event_id
			WHERE ff.fighter_id = r.id AND e.promotion_id = ?)`)
		args = append(args, filter.Promotion)
	}

	query := "SELECT " + recordColumns + " FROM fighter_records r"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY name, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query fighters: %w", err)
	}
	defer rows.Close()

	result := []domain.Fighter{}
	for rows.Next() {
		f, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fighter: %w", err)
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read fighters: %w", err)
	}

	r.logger.Debug().Int("count", len(result)).Str("search", filter.Search).Msg("brief fighters loaded")
	return result, nil
}

// GetByIDs loads full fighters with their participations, each fight carrying
// its event and both participants. Unknown ids are skipped. A stored event
// date that does not parse is logged and left zero so the transform rejects
// the fighter with a data error.
func (r *FighterRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.Fighter, error) {
	if len(ids) == 0 {
		return []domain.Fighter{}, nil
	}

	fighters := make([]domain.Fighter, 0, len(ids))
	index := make(map[string]int, len(ids))

	for _, chunk := range chunks(ids) {
		rows, err := r.db.QueryContext(ctx,
			"SELECT "+recordColumns+" FROM fighter_records WHERE id IN ("+placeholders(len(chunk))+")",
			anyArgs(chunk)...)
		if err != nil {
			return nil, fmt.Errorf("failed to query fighters: %w", err)
		}
		for rows.Next() {
			f, err := scanRecord(rows)
			if err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan fighter: %w", err)
			}
			index[f.ID] = len(fighters)
			fighters = append(fighters, f)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read fighters: %w", err)
		}
	}

	if err := r.loadParticipations(ctx, fighters, index); err != nil {
		return nil, err
	}

	// keep the caller's order
	ordered := make([]domain.Fighter, 0, len(fighters))
	seen := make(map[string]struct{}, len(fighters))
	for _, id := range ids {
		i, ok := index[id]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ordered = append(ordered, fighters[i])
	}
	return ordered, nil
}

func (r *FighterRepository) loadParticipations(ctx context.Context, fighters []domain.Fighter, index map[string]int) error {
	ids := make([]string, 0, len(fighters))
	for _, f := range fighters {
		ids = append(ids, f.ID)
	}

	var fightIDs []string
	seenFight := make(map[string]struct{})

	for _, chunk := range chunks(ids) {
		rows, err := r.db.QueryContext(ctx, `
			SELECT`+fightColumns+`, ff.fighter_id, ff.result
			FROM fight_fighters ff
			JOIN fights f ON f.id = ff.fight_id
			JOIN events e ON e.id = f.event_id
			WHERE ff.fighter_id IN (`+placeholders(len(chunk))+`)
			ORDER BY e.dateof, f.card_index, f.id`, anyArgs(chunk)...)
		if err != nil {
			return fmt.Errorf("failed to query participations: %w", err)
		}

		for rows.Next() {
			var (
				fighterID string
				result    domain.Result
			)
			fight, rawDate, err := scanFight(rows, &fighterID, &result)
			if err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan participation: %w", err)
			}
			fight.Event.DateOf = r.parseDate(fighterID, fight.ID, rawDate)

			f := &fighters[index[fighterID]]
			f.Fights = append(f.Fights, domain.FightParticipation{Fight: fight, Result: result})

			if _, ok := seenFight[fight.ID]; !ok {
				seenFight[fight.ID] = struct{}{}
				fightIDs = append(fightIDs, fight.ID)
			}
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return fmt.Errorf("failed to read participations: %w", err)
		}
	}

	byFight, err := participants(ctx, r.db, fightIDs)
	if err != nil {
		return err
	}
	for i := range fighters {
		for j := range fighters[i].Fights {
			fight := &fighters[i].Fights[j].Fight
			fight.Participants = byFight[fight.ID]
		}
	}
	return nil
}

func (r *FighterRepository) parseDate(fighterID, fightID, raw string) domain.Date {
	d, err := domain.ParseDate(raw)
	if err != nil {
		r.logger.Warn().
			Err(&domain.DataError{FighterID: fighterID, FightID: fightID, Err: err}).
			Str("fighter_id", fighterID).
			Str("fight_id", fightID).
			Msg("malformed event date")
		return domain.Date{}
	}
	return d
}

func (r *FighterRepository) IDs(ctx context.Context) ([]string, error) {
	return r.queryIDs(ctx, "SELECT id FROM fighters ORDER BY id")
}

func (r *FighterRepository) InitialSelectedIDs(ctx context.Context) ([]string, error) {
	return r.queryIDs(ctx, "SELECT id FROM fighters WHERE initial_selected = 1 ORDER BY name, id")
}

func (r *FighterRepository) queryIDs(ctx context.Context, query string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query fighter ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan fighter id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// All loads the full fighter universe.
func (r *FighterRepository) All(ctx context.Context) ([]domain.Fighter, error) {
	ids, err := r.IDs(ctx)
	if err != nil {
		return nil, err
	}
	return r.GetByIDs(ctx, ids)
}

func (r *FighterRepository) InitialSelected(ctx context.Context) ([]domain.Fighter, error) {
	ids, err := r.InitialSelectedIDs(ctx)
	if err != nil {
		return nil, err
	}
	return r.GetByIDs(ctx, ids)
}

// Opponent returns the full record of the other participant of fightID.
func (r *FighterRepository) Opponent(ctx context.Context, fightID, fighterID string) (*domain.Fighter, error) {
	var opponentID string
	err := r.db.QueryRowContext(ctx, `
		SELECT fighter_id FROM fight_fighters
		WHERE fight_id = ? AND fighter_id <> ?
		ORDER BY rowid LIMIT 1`, fightID, fighterID).Scan(&opponentID)
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Debug().Str("fight_id", fightID).Str("fighter_id", fighterID).Msg("opponent not found")
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query opponent: %w", err)
	}

	fighters, err := r.GetByIDs(ctx, []string{opponentID})
	if err != nil {
		return nil, err
	}
	if len(fighters) == 0 {
		return nil, domain.ErrNotFound
	}
	return &fighters[0], nil
}

// UpsertBatch writes fighter profiles. Participations are written with
// fights. Missing ids are generated and written back into fighters.
func (r *FighterRepository) UpsertBatch(ctx context.Context, fighters []domain.Fighter) error {
	if len(fighters) == 0 {
		return nil
	}

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO fighters (id, name, nickname, weight_class)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				nickname = excluded.nickname,
				weight_class = excluded.weight_class`)
		if err != nil {
			return fmt.Errorf("failed to prepare fighter upsert: %w", err)
		}
		defer stmt.Close()

		for i := range fighters {
			f := &fighters[i]
			if f.ID == "" {
				if f.ID, err = newID(); err != nil {
					return err
				}
			}
			if _, err := stmt.ExecContext(ctx, f.ID, f.Name, f.Nickname, f.WeightClass); err != nil {
				return fmt.Errorf("failed to upsert fighter %s: %w", f.ID, err)
			}
		}
		return nil
	})
}

// SetInitialSelected replaces the default selection with ids.
func (r *FighterRepository) SetInitialSelected(ctx context.Context, ids []string) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "UPDATE fighters SET initial_selected = 0 WHERE initial_selected = 1"); err != nil {
			return fmt.Errorf("failed to clear initial selection: %w", err)
		}
		for _, chunk := range chunks(ids) {
			_, err := tx.ExecContext(ctx,
				"UPDATE fighters SET initial_selected = 1 WHERE id IN ("+placeholders(len(chunk))+")",
				anyArgs(chunk)...)
			if err != nil {
				return fmt.Errorf("failed to set initial selection: %w", err)
			}
		}
		return nil
	})
}

func (r *FighterRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM fighters").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count fighters: %w", err)
	}
	return n, nil
}

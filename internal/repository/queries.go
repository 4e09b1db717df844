package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"fight-timeline/internal/constants"
	"fight-timeline/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func newID() (string, error) {
	id, err := gonanoid.Generate(constants.IDAlphabet, constants.IDLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate nanoid: %w", err)
	}
	return id, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func anyArgs(ids []string) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// chunks splits ids into groups of at most DBBatchSize so IN lists stay
// under the sqlite variable limit.
func chunks(ids []string) [][]string {
	var out [][]string
	for i := 0; i < len(ids); i += constants.DBBatchSize {
		out = append(out, ids[i:min(i+constants.DBBatchSize, len(ids))])
	}
	return out
}

func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

const fightColumns = `
	f.id, f.card_index, f.method, f.method_detail, f.round, f.round_time, f.referee,
	e.id, e.name, e.location, e.dateof, COALESCE(e.promotion_id, '')`

type scanner interface {
	Scan(dest ...any) error
}

// scanFight reads fightColumns plus any extra destinations. The raw event
// date is returned alongside so callers decide how to report a bad value.
func scanFight(row scanner, extra ...any) (domain.Fight, string, error) {
	var (
		f       domain.Fight
		rawDate string
	)
	dest := append([]any{
		&f.ID, &f.CardIndex, &f.Method, &f.MethodDetail, &f.Round, &f.RoundTime, &f.Referee,
		&f.Event.ID, &f.Event.Name, &f.Event.Location, &rawDate, &f.Event.PromotionID,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return domain.Fight{}, "", err
	}
	return f, rawDate, nil
}

// participants loads both sides of every fight in fightIDs.
func participants(ctx context.Context, q dbtx, fightIDs []string) (map[string][]domain.Participant, error) {
	out := make(map[string][]domain.Participant, len(fightIDs))
	for _, chunk := range chunks(fightIDs) {
		rows, err := q.QueryContext(ctx, `
			SELECT ff.fight_id, ff.fighter_id, fr.name, ff.result
			FROM fight_fighters ff
			JOIN fighters fr ON fr.id = ff.fighter_id
			WHERE ff.fight_id IN (`+placeholders(len(chunk))+`)
			ORDER BY ff.fight_id, ff.rowid`, anyArgs(chunk)...)
		if err != nil {
			return nil, fmt.Errorf("failed to query participants: %w", err)
		}

		for rows.Next() {
			var (
				fightID string
				p       domain.Participant
			)
			if err := rows.Scan(&fightID, &p.FighterID, &p.Name, &p.Result); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan participant: %w", err)
			}
			out[fightID] = append(out[fightID], p)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read participants: %w", err)
		}
	}
	return out, nil
}

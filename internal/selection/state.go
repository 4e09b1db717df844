package selection

import (
	"context"
	"slices"

	"fight-timeline/internal/domain"
)

// DataSource is the data-access collaborator. Implementations may be remote;
// the machine only cares that calls are blocking and return typed records.
type DataSource interface {
	GetBounds(ctx context.Context) (domain.Domain, error)
	GetBriefFighters(ctx context.Context, filter domain.Filter) ([]domain.Fighter, error)
	GetFighters(ctx context.Context, ids []string) ([]domain.Fighter, error)
	GetFight(ctx context.Context, id string) (*domain.Fight, error)
	GetOpponent(ctx context.Context, fightID, fighterID string) (*domain.Fighter, error)
	GetInitialSelectedFighters(ctx context.Context) ([]domain.Fighter, error)
	GetEvents(ctx context.Context) ([]domain.Event, error)
	GetPromotions(ctx context.Context) ([]domain.Promotion, error)
}

// FightRef identifies a plotted point: a fight on a particular fighter's line.
type FightRef struct {
	FighterID string `json:"fighter_id"`
	FightID   string `json:"fight_id"`
}

// FightFocus is a selected or inspected fight with its resolved opponent.
type FightFocus struct {
	Fight     domain.Fight   `json:"fight"`
	FighterID string         `json:"fighter_id"`
	Opponent  domain.Fighter `json:"opponent"`
}

// State is an immutable snapshot. Slices are never modified after a commit.
type State struct {
	Mounted          bool               `json:"mounted"`
	Domain           domain.Domain      `json:"domain"`
	Filter           domain.Filter      `json:"filter"`
	SelectedFighters []domain.Fighter   `json:"selected_fighters"`
	Pool             []domain.Fighter   `json:"pool"`
	Table            []domain.Fighter   `json:"table"`
	HiddenCount      int                `json:"hidden_count"`
	SelectedFights   []FightFocus       `json:"selected_fights"`
	InspectedFights  []FightFocus       `json:"inspected_fights"`
	Detail           *domain.Fight      `json:"detail,omitempty"`
	Promotions       []domain.Promotion `json:"promotions,omitempty"`
	Events           []domain.Event     `json:"events,omitempty"`
}

// ActiveFights is the union of selected and inspected fights by fight id,
// selected first.
func (s State) ActiveFights() []FightFocus {
	return unionBy(s.SelectedFights, s.InspectedFights, func(f FightFocus) string { return f.Fight.ID })
}

func (s State) IsSelected(fighterID string) bool {
	return slices.ContainsFunc(s.SelectedFighters, func(f domain.Fighter) bool { return f.ID == fighterID })
}

// ChartFighters is the pool plus the opponents of active fights.
func (s State) ChartFighters() []domain.Fighter {
	opponents := make([]domain.Fighter, 0, 2)
	for _, f := range s.ActiveFights() {
		opponents = append(opponents, f.Opponent)
	}
	return unionBy(s.Pool, opponents, fighterID)
}

func fighterID(f domain.Fighter) string {
	return f.ID
}

// unionBy appends the items of b whose key is not already present, keeping a's order.
func unionBy[T any](a, b []T, key func(T) string) []T {
	out := make([]T, 0, len(a)+len(b))
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, list := range [][]T{a, b} {
		for _, item := range list {
			k := key(item)
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, item)
		}
	}
	return out
}

func withoutID(list []domain.Fighter, id string) []domain.Fighter {
	out := make([]domain.Fighter, 0, len(list))
	for _, f := range list {
		if f.ID != id {
			out = append(out, f)
		}
	}
	return out
}

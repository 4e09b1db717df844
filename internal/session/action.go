package session

import (
	"context"
	"errors"
	"fmt"

	"fight-timeline/internal/domain"
	"fight-timeline/internal/selection"
)

var ErrInvalidAction = errors.New("invalid action")

type ActionType string

const (
	SelectFighter       ActionType = "select_fighter"
	DeselectFighter     ActionType = "deselect_fighter"
	DeselectAllFighters ActionType = "deselect_all_fighters"
	SelectFight         ActionType = "select_fight"
	InspectFight        ActionType = "inspect_fight"
	UninspectFight      ActionType = "uninspect_fight"
	DeselectAllFights   ActionType = "deselect_all_fights"
	ChangeFilter        ActionType = "change_filter"
	Reset               ActionType = "reset"
)

// Action is one user interaction with the chart or the table. Only the field
// the type needs is read.
type Action struct {
	Type      ActionType          `json:"type"`
	FighterID string              `json:"fighter_id,omitempty"`
	Fight     *selection.FightRef `json:"fight,omitempty"`
	Filter    *domain.Filter      `json:"filter,omitempty"`
}

func (a Action) validate() error {
	switch a.Type {
	case SelectFighter, DeselectFighter:
		if a.FighterID == "" {
			return fmt.Errorf("%w: %s needs a fighter id", ErrInvalidAction, a.Type)
		}
	case SelectFight, InspectFight, UninspectFight:
		if a.Fight == nil || a.Fight.FighterID == "" || a.Fight.FightID == "" {
			return fmt.Errorf("%w: %s needs a fight reference", ErrInvalidAction, a.Type)
		}
	case ChangeFilter:
		if a.Filter == nil {
			return fmt.Errorf("%w: %s needs a filter", ErrInvalidAction, a.Type)
		}
	case DeselectAllFighters, DeselectAllFights, Reset:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidAction, a.Type)
	}
	return nil
}

func (a Action) apply(ctx context.Context, m *selection.Machine) error {
	switch a.Type {
	case SelectFighter:
		return m.SelectFighter(ctx, domain.Fighter{ID: a.FighterID})
	case DeselectFighter:
		m.DeselectFighter(domain.Fighter{ID: a.FighterID})
	case DeselectAllFighters:
		m.DeselectAllFighters()
	case SelectFight:
		return m.SelectFight(ctx, *a.Fight)
	case InspectFight:
		return m.InspectFight(ctx, *a.Fight)
	case UninspectFight:
		m.UninspectFight(*a.Fight)
	case DeselectAllFights:
		m.DeselectAllFights()
	case ChangeFilter:
		return m.ChangeFilter(ctx, *a.Filter)
	case Reset:
		return m.Reset(ctx)
	}
	return nil
}

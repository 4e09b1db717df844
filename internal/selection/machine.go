// Package selection owns the interactive chart state: which fighters are
// selected, which fight is selected or hovered, the table filter and the fight
// detail. Every transition fetches what it needs first and then commits all of
// its changes in one store batch, so subscribers only ever see consistent
// snapshots. Responses that were superseded while in flight are dropped.
package selection

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"fight-timeline/internal/domain"
	"fight-timeline/internal/metrics"
	"fight-timeline/internal/store"
	"fight-timeline/internal/timeline"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var (
	ErrOpponentNotFound = errors.New("opponent not found")
	ErrUnknownFight     = errors.New("fight is not on the chart")
	ErrFighterNotFound  = errors.New("fighter not found")
)

const (
	slotInspection = "inspection"
	slotSelection  = "selection"
	slotFilter     = "filter"
	slotPool       = "pool"
)

type Machine struct {
	ds      DataSource
	store   *store.Store[State]
	logger  zerolog.Logger
	metrics *metrics.Metrics

	// mu guards the tokens below and makes check-then-commit atomic.
	mu         sync.Mutex
	seq        uint64
	inspectTok uint64
	inspectRef FightRef
	selectTok  uint64
	filterTok  uint64
	poolTok    map[string]uint64

	// details of the committed selected and inspected fights
	selectedDetail  *domain.Fight
	inspectedDetail *domain.Fight
}

func New(ds DataSource, logger zerolog.Logger, m *metrics.Metrics) *Machine {
	return &Machine{
		ds:      ds,
		store:   store.New(State{Filter: domain.InitialFilter()}),
		logger:  logger.With().Str("component", "selection").Logger(),
		metrics: m,
		poolTok: make(map[string]uint64),
	}
}

func (m *Machine) State() State {
	return m.store.State()
}

// Subscribe registers a listener for committed snapshots. Listeners run
// synchronously inside the commit and must not call transitions.
func (m *Machine) Subscribe(l store.Listener[State]) func() {
	return m.store.Subscribe(l)
}

// claim issues a fresh token for slot. Must be called with mu held.
func (m *Machine) claim(slot *uint64) uint64 {
	m.seq++
	*slot = m.seq
	return m.seq
}

func (m *Machine) claimLocked(slot *uint64) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.claim(slot)
}

func (m *Machine) stale(transition, slot string) {
	m.logger.Debug().Str("transition", transition).Str("slot", slot).Msg("dropping superseded response")
	m.metrics.Stale(slot)
	m.metrics.Transition(transition, "stale")
}

func (m *Machine) failed(transition string, err error) error {
	m.logger.Warn().Err(err).Str("transition", transition).Msg("transition failed")
	m.metrics.Transition(transition, "error")
	return fmt.Errorf("%s: %w", transition, err)
}

func (m *Machine) done(transition string) {
	m.metrics.Transition(transition, "ok")
}

// Mount loads the domain, the default selection, the initial table and the
// catalogs. Fighters rejected for data quality reasons are left out and the
// data error is returned after the rest has been committed.
func (m *Machine) Mount(ctx context.Context) error {
	const transition = "mount"

	m.mu.Lock()
	tok := m.claim(&m.filterTok)
	m.mu.Unlock()

	var (
		dom        domain.Domain
		initial    []domain.Fighter
		table      []domain.Fighter
		promotions []domain.Promotion
		events     []domain.Event
		filter     = domain.InitialFilter()
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		dom, err = m.ds.GetBounds(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		initial, err = m.ds.GetInitialSelectedFighters(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		table, err = m.ds.GetBriefFighters(gCtx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		promotions, err = m.ds.GetPromotions(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		events, err = m.ds.GetEvents(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		return m.failed(transition, err)
	}

	pool, dataErr := timeline.Transform(initial)
	selected := make([]domain.Fighter, len(pool))
	for i, f := range pool {
		selected[i] = f.Brief()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// a filter change that raced ahead of the mount keeps its table
	setTable := m.filterTok == tok
	if !setTable {
		m.stale(transition, slotFilter)
	}

	m.store.Batch(func() {
		m.store.Update(func(s State) State {
			s.Mounted = true
			s.Domain = dom
			if setTable {
				s.Filter = filter
				s.Table = table
			}
			s.HiddenCount = hidden(dom, s.Table)
			s.SelectedFighters = unionBy(selected, s.SelectedFighters, fighterID)
			s.Pool = unionBy(pool, s.Pool, fighterID)
			s.Promotions = promotions
			s.Events = events
			return s
		})
	})

	m.logger.Info().
		Int("selected", len(selected)).
		Int("table", len(table)).
		Int("fighter_count", dom.FighterCount).
		Msg("selection mounted")

	if dataErr != nil {
		return m.failed(transition, dataErr)
	}
	m.done(transition)
	return nil
}

// SelectFighter adds fighter to the selection and merges its full history
// into the chart pool. Previously loaded fighters are kept.
func (m *Machine) SelectFighter(ctx context.Context, fighter domain.Fighter) error {
	const transition = "select_fighter"

	m.mu.Lock()
	tok := m.claimPool(fighter.ID)
	m.mu.Unlock()

	full, err := m.ds.GetFighters(ctx, []string{fighter.ID})
	if err != nil {
		return m.failed(transition, err)
	}

	transformed, dataErr := timeline.Transform(full)
	loaded := slicesFind(transformed, fighter.ID)
	if loaded == nil {
		if dataErr != nil {
			return m.failed(transition, dataErr)
		}
		return m.failed(transition, fmt.Errorf("%w: %s", ErrFighterNotFound, fighter.ID))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.poolTok[fighter.ID] != tok {
		m.stale(transition, slotPool)
		return nil
	}

	brief := loaded.Brief()
	m.store.Batch(func() {
		m.store.Update(func(s State) State {
			s.SelectedFighters = unionBy(s.SelectedFighters, []domain.Fighter{brief}, fighterID)
			s.Pool = unionBy(s.Pool, []domain.Fighter{*loaded}, fighterID)
			return s
		})
	})

	m.logger.Debug().Str("fighter_id", fighter.ID).Int("fights", len(loaded.Fights)).Msg("fighter selected")
	m.done(transition)
	return nil
}

// DeselectFighter removes fighter from the selection and the chart. Any fight
// selection or inspection is cleared along with it.
func (m *Machine) DeselectFighter(fighter domain.Fighter) {
	m.deselectFighters("deselect_fighter", []string{fighter.ID})
}

// DeselectAllFighters empties the selection.
func (m *Machine) DeselectAllFighters() {
	selected := m.store.State().SelectedFighters
	ids := make([]string, len(selected))
	for i, f := range selected {
		ids[i] = f.ID
	}
	m.deselectFighters("deselect_all_fighters", ids)
}

func (m *Machine) deselectFighters(transition string, ids []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range ids {
		m.claimPool(id)
	}
	m.clearFightsLocked()

	m.store.Batch(func() {
		m.store.Update(func(s State) State {
			for _, id := range ids {
				s.SelectedFighters = withoutID(s.SelectedFighters, id)
				s.Pool = withoutID(s.Pool, id)
			}
			s.SelectedFights = nil
			s.InspectedFights = nil
			s.Detail = nil
			return s
		})
	})

	m.done(transition)
}

// SelectFight makes ref the single selected fight and shows its detail.
func (m *Machine) SelectFight(ctx context.Context, ref FightRef) error {
	const transition = "select_fight"

	fight, err := m.lookup(ref)
	if err != nil {
		return m.failed(transition, err)
	}

	// the click supersedes any hover still in flight
	m.mu.Lock()
	tok := m.claim(&m.selectTok)
	prevInspect := m.inspectTok
	itok := m.claim(&m.inspectTok)
	m.mu.Unlock()

	focus, detail, err := m.resolve(ctx, ref, fight)
	if err != nil {
		m.mu.Lock()
		if m.inspectTok == itok {
			m.inspectTok = prevInspect
		}
		m.mu.Unlock()
		return m.failed(transition, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.selectTok != tok {
		m.stale(transition, slotSelection)
		return nil
	}

	m.selectedDetail = detail
	clearInspection := m.inspectTok == itok
	if clearInspection {
		m.inspectRef = FightRef{}
		m.inspectedDetail = nil
	}
	m.store.Batch(func() {
		m.store.Update(func(s State) State {
			s.SelectedFights = []FightFocus{focus}
			if clearInspection {
				s.InspectedFights = nil
			}
			s.Detail = m.detailFor(s)
			return s
		})
	})

	m.done(transition)
	return nil
}

// InspectFight is the hover-enter transition. Only the most recent hover is
// kept; a slower, older hover never overwrites a newer one.
func (m *Machine) InspectFight(ctx context.Context, ref FightRef) error {
	const transition = "inspect_fight"

	fight, err := m.lookup(ref)
	if err != nil {
		return m.failed(transition, err)
	}

	m.mu.Lock()
	tok := m.claim(&m.inspectTok)
	m.inspectRef = ref
	m.mu.Unlock()

	focus, detail, err := m.resolve(ctx, ref, fight)
	if err != nil {
		return m.failed(transition, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.inspectTok != tok {
		m.stale(transition, slotInspection)
		return nil
	}

	m.inspectedDetail = detail
	m.store.Batch(func() {
		m.store.Update(func(s State) State {
			s.InspectedFights = []FightFocus{focus}
			s.Detail = m.detailFor(s)
			return s
		})
	})

	m.done(transition)
	return nil
}

// UninspectFight is the hover-leave transition. The detail view falls back to
// the selected fight, or clears when nothing is selected.
func (m *Machine) UninspectFight(ref FightRef) {
	const transition = "uninspect_fight"

	m.mu.Lock()
	defer m.mu.Unlock()

	pending := m.inspectRef == ref
	inspected := false
	for _, f := range m.store.State().InspectedFights {
		if f.Fight.ID == ref.FightID {
			inspected = true
		}
	}
	if !pending && !inspected {
		return
	}

	if pending {
		m.claim(&m.inspectTok)
		m.inspectRef = FightRef{}
	}

	m.store.Batch(func() {
		m.store.Update(func(s State) State {
			kept := make([]FightFocus, 0, len(s.InspectedFights))
			for _, f := range s.InspectedFights {
				if f.Fight.ID != ref.FightID {
					kept = append(kept, f)
				}
			}
			s.InspectedFights = kept
			if len(kept) == 0 {
				m.inspectedDetail = nil
			}
			s.Detail = m.detailFor(s)
			return s
		})
	})

	m.done(transition)
}

// DeselectAllFights handles a click on empty chart background.
func (m *Machine) DeselectAllFights() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.clearFightsLocked()
	m.store.Batch(func() {
		m.store.Update(func(s State) State {
			s.SelectedFights = nil
			s.InspectedFights = nil
			s.Detail = nil
			return s
		})
	})

	m.done("deselect_all_fights")
}

// ChangeFilter refetches the table for filter. Selected fighters and the
// domain are never affected.
func (m *Machine) ChangeFilter(ctx context.Context, filter domain.Filter) error {
	const transition = "change_filter"

	filter = filter.Normalize()
	tok := m.claimLocked(&m.filterTok)

	table, err := m.ds.GetBriefFighters(ctx, filter)
	if err != nil {
		return m.failed(transition, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.filterTok != tok {
		m.stale(transition, slotFilter)
		return nil
	}

	m.store.Batch(func() {
		m.store.Update(func(s State) State {
			s.Filter = filter
			s.Table = table
			s.HiddenCount = hidden(s.Domain, table)
			return s
		})
	})

	m.logger.Debug().Int("table", len(table)).Str("search", filter.Search).Msg("filter changed")
	m.done(transition)
	return nil
}

// Reset restores the default filter.
func (m *Machine) Reset(ctx context.Context) error {
	return m.ChangeFilter(ctx, domain.DefaultFilter())
}

func (m *Machine) clearFightsLocked() {
	m.claim(&m.selectTok)
	m.claim(&m.inspectTok)
	m.inspectRef = FightRef{}
	m.selectedDetail = nil
	m.inspectedDetail = nil
}

// detailFor is the fight the detail view shows for s: the hovered fight, else
// the selected one. Must be called with mu held.
func (m *Machine) detailFor(s State) *domain.Fight {
	switch {
	case len(s.InspectedFights) > 0:
		return m.inspectedDetail
	case len(s.SelectedFights) > 0:
		return m.selectedDetail
	}
	return nil
}

// claimPool issues a token for merges of fighter id into the pool. Must be
// called with mu held.
func (m *Machine) claimPool(id string) uint64 {
	m.seq++
	m.poolTok[id] = m.seq
	return m.seq
}

// lookup finds the fight behind a plotted point among the chart fighters.
func (m *Machine) lookup(ref FightRef) (domain.Fight, error) {
	for _, f := range m.store.State().ChartFighters() {
		if f.ID != ref.FighterID {
			continue
		}
		for _, p := range f.Fights {
			if p.Fight.ID == ref.FightID {
				return p.Fight, nil
			}
		}
	}
	return domain.Fight{}, fmt.Errorf("%w: fighter %s, fight %s", ErrUnknownFight, ref.FighterID, ref.FightID)
}

// resolve fetches the opponent and the full fight detail concurrently.
func (m *Machine) resolve(ctx context.Context, ref FightRef, fight domain.Fight) (FightFocus, *domain.Fight, error) {
	var (
		opponent *domain.Fighter
		detail   *domain.Fight
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		opponent, err = m.ds.GetOpponent(gCtx, ref.FightID, ref.FighterID)
		if errors.Is(err, domain.ErrNotFound) || (err == nil && opponent == nil) {
			return fmt.Errorf("%w: fight %s", ErrOpponentNotFound, ref.FightID)
		}
		return err
	})
	g.Go(func() error {
		var err error
		detail, err = m.ds.GetFight(gCtx, ref.FightID)
		return err
	})
	if err := g.Wait(); err != nil {
		return FightFocus{}, nil, err
	}

	transformed, err := timeline.TransformFighter(*opponent)
	if err != nil {
		return FightFocus{}, nil, err
	}

	return FightFocus{Fight: fight, FighterID: ref.FighterID, Opponent: transformed}, detail, nil
}

func hidden(dom domain.Domain, table []domain.Fighter) int {
	return max(dom.FighterCount-len(table), 0)
}

func slicesFind(list []domain.Fighter, id string) *domain.Fighter {
	for i := range list {
		if list[i].ID == id {
			return &list[i]
		}
	}
	return nil
}

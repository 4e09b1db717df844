package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"

	"fight-timeline/internal/database"
	"fight-timeline/internal/domain"
	"fight-timeline/internal/repository"
	"fight-timeline/internal/selection"
	"fight-timeline/internal/testutil"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db       *sql.DB
	fighters *repository.FighterRepository
	access   *DataAccess
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	logger := zerolog.Nop()

	db, err := database.Open(filepath.Join(t.TempDir(), "fights.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	fighterRepo := repository.NewFighterRepository(db, logger)
	fightRepo := repository.NewFightRepository(db, logger)
	eventRepo := repository.NewEventRepository(db, logger)
	promotionRepo := repository.NewPromotionRepository(db, logger)

	require.NoError(t, promotionRepo.UpsertBatch(ctx, []domain.Promotion{{ID: "ufc", Name: "UFC"}}))
	events := []domain.Event{
		{ID: "e1", Name: "UFC 1", DateOf: testutil.Date("2020-01-01"), PromotionID: "ufc"},
		{ID: "e2", Name: "UFC 2", DateOf: testutil.Date("2020-06-01"), PromotionID: "ufc"},
		{ID: "e3", Name: "UFC 3", DateOf: testutil.Date("2021-01-01"), PromotionID: "ufc"},
	}
	require.NoError(t, eventRepo.UpsertBatch(ctx, events))
	require.NoError(t, fighterRepo.UpsertBatch(ctx, []domain.Fighter{
		{ID: "alice", Name: "Alice"},
		{ID: "bob", Name: "Bob"},
		{ID: "carol", Name: "Carol"},
	}))
	require.NoError(t, fightRepo.UpsertBatch(ctx, []domain.Fight{
		{ID: "f1", Event: events[0], Participants: []domain.Participant{
			{FighterID: "alice", Result: domain.ResultLoss}, {FighterID: "bob", Result: domain.ResultWin},
		}},
		{ID: "f2", Event: events[1], Participants: []domain.Participant{
			{FighterID: "alice", Result: domain.ResultLoss}, {FighterID: "carol", Result: domain.ResultWin},
		}},
		{ID: "f3", Event: events[2], Participants: []domain.Participant{
			{FighterID: "bob", Result: domain.ResultWin}, {FighterID: "carol", Result: domain.ResultDraw},
		}},
	}))
	require.NoError(t, fighterRepo.SetInitialSelected(ctx, []string{"alice"}))

	access := NewDataAccess(
		NewBoundsService(fighterRepo, logger),
		NewFighterService(fighterRepo, logger),
		NewFightService(fightRepo, logger),
		NewCatalogService(eventRepo, promotionRepo, logger),
	)
	return fixture{db: db, fighters: fighterRepo, access: access}
}

func TestBounds(t *testing.T) {
	fx := newFixture(t)

	dom, err := fx.access.GetBounds(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "2020-01-01", dom.MinDate.String())
	assert.Equal(t, "2021-01-01", dom.MaxDate.String())
	assert.Equal(t, -2, dom.MinLine, "alice loses twice")
	assert.Equal(t, 2, dom.MaxLine, "bob wins twice")
	assert.Equal(t, 2, dom.MaxWinCount)
	assert.Equal(t, 2, dom.MaxLossCount)
	assert.Equal(t, 2, dom.MaxFightCount)
	assert.Equal(t, 3, dom.FighterCount)
}

func TestBoundsAreCachedUntilInvalidated(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	first, err := fx.access.GetBounds(ctx)
	require.NoError(t, err)

	require.NoError(t, fx.fighters.UpsertBatch(ctx, []domain.Fighter{{ID: "dave", Name: "Dave"}}))

	cached, err := fx.access.GetBounds(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	fx.access.Invalidate()
	fresh, err := fx.access.GetBounds(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, fresh.FighterCount)
}

func TestBoundsConcurrentCallers(t *testing.T) {
	fx := newFixture(t)

	var wg sync.WaitGroup
	results := make([]domain.Domain, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dom, err := fx.access.GetBounds(context.Background())
			assert.NoError(t, err)
			results[i] = dom
		}()
	}
	wg.Wait()

	for _, dom := range results {
		assert.Equal(t, results[0], dom)
	}
}

func TestBoundsLoadSurvivesCanceledCaller(t *testing.T) {
	fx := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dom, err := fx.access.GetBounds(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, dom.FighterCount)

	cached, err := fx.access.GetBounds(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dom, cached)
}

func TestBoundsCountRejectedFighters(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.db.ExecContext(ctx, "UPDATE events SET dateof = 'later' WHERE id = 'e3'")
	require.NoError(t, err)

	dom, err := fx.access.GetBounds(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, dom.FighterCount)
	assert.Equal(t, "2020-06-01", dom.MaxDate.String(), "bob and carol are left out")
	assert.Equal(t, -2, dom.MinLine)
	assert.Equal(t, -1, dom.MaxLine, "only alice remains")
}

func TestGetOpponent(t *testing.T) {
	fx := newFixture(t)

	opp, err := fx.access.GetOpponent(context.Background(), "f2", "alice")
	require.NoError(t, err)
	assert.Equal(t, "carol", opp.ID)
	assert.Len(t, opp.Fights, 2)

	_, err = fx.access.GetOpponent(context.Background(), "missing", "alice")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetBriefFightersNormalizes(t *testing.T) {
	fx := newFixture(t)

	got, err := fx.access.GetBriefFighters(context.Background(), domain.Filter{WinCount: 2, TotalCount: 0})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "bob", got[0].ID)
}

func TestCatalogSkipsMalformedEvents(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.db.ExecContext(ctx, "UPDATE events SET dateof = '2020-13-45' WHERE id = 'e2'")
	require.NoError(t, err)

	events, err := fx.access.GetEvents(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 2)

	promotions, err := fx.access.GetPromotions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Promotion{{ID: "ufc", Name: "UFC"}}, promotions)
}

func TestMachineOverDataAccess(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	m := selection.New(fx.access, zerolog.Nop(), nil)
	require.NoError(t, m.Mount(ctx))

	s := m.State()
	assert.Equal(t, 3, s.Domain.FighterCount)
	require.Len(t, s.Pool, 1)
	assert.Equal(t, []int{-1, -2}, []int{s.Pool[0].Fights[0].Line, s.Pool[0].Fights[1].Line})
	assert.Len(t, s.Events, 3)

	require.NoError(t, m.SelectFight(ctx, selection.FightRef{FighterID: "alice", FightID: "f2"}))
	s = m.State()
	require.Len(t, s.SelectedFights, 1)
	assert.Equal(t, "carol", s.SelectedFights[0].Opponent.ID)
	require.NotNil(t, s.Detail)
	assert.Len(t, s.Detail.Participants, 2)

	require.NoError(t, m.SelectFighter(ctx, domain.Fighter{ID: "bob"}))
	assert.Len(t, m.State().Pool, 2)

	require.NoError(t, m.Reset(ctx))
	assert.Len(t, m.State().Table, 3)
	assert.Zero(t, m.State().HiddenCount)
}

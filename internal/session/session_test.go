package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"fight-timeline/internal/domain"
	"fight-timeline/internal/label"
	"fight-timeline/internal/scene"
	"fight-timeline/internal/selection"
	"fight-timeline/internal/testutil/testdb"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identity(int, func(i, j int)) {}

func newManager(t *testing.T, ds selection.DataSource, ttl time.Duration) *Manager {
	t.Helper()
	return NewManager(ds, label.FixedMeasurer{RuneWidth: 6, Height: 10}, Options{TTL: ttl, Shuffler: identity}, zerolog.Nop(), nil)
}

func changesOf(changes []scene.Change, kind scene.Kind, op scene.Op) []string {
	var keys []string
	for _, c := range changes {
		if c.Kind == kind && c.Op == op {
			keys = append(keys, c.Key)
		}
	}
	return keys
}

type failingBounds struct {
	selection.DataSource
}

func (failingBounds) GetBounds(context.Context) (domain.Domain, error) {
	return domain.Domain{}, errors.New("bounds unavailable")
}

func TestCreateMountsAndBuildsScene(t *testing.T) {
	db := testdb.New(t)
	mgr := newManager(t, db.Access, time.Minute)

	sess, err := mgr.Create(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, 1, mgr.Count())

	st := sess.State()
	assert.True(t, st.Mounted)
	assert.Len(t, st.Pool, 2)
	assert.Empty(t, st.Table, "the initial filter needs five wins")
	assert.Equal(t, 4, st.HiddenCount)

	sc := sess.Scene()
	assert.Len(t, sc.Lines, 2)
	assert.Len(t, sc.Discs, 6)
	assert.Len(t, sc.Labels, 2)
	assert.Empty(t, sc.Markers)

	for _, c := range sess.LastChanges() {
		assert.Equal(t, scene.OpCreate, c.Op)
	}
}

func TestDispatchSelectFight(t *testing.T) {
	db := testdb.New(t)
	mgr := newManager(t, db.Access, time.Minute)
	ctx := context.Background()

	sess, err := mgr.Create(ctx)
	require.NoError(t, err)

	update, err := sess.Dispatch(ctx, Action{Type: SelectFight, Fight: &selection.FightRef{FighterID: "alice", FightID: "f1"}})
	require.NoError(t, err)

	require.Len(t, update.State.SelectedFights, 1)
	assert.Equal(t, "bob", update.State.SelectedFights[0].Opponent.ID)
	require.NotNil(t, update.State.Detail)
	assert.Equal(t, "KO/TKO", update.State.Detail.Method)

	assert.Equal(t, []string{"bob"}, changesOf(update.Changes, scene.KindLine, scene.OpCreate), "the opponent joins the chart")
	assert.Equal(t, []string{"f1"}, changesOf(update.Changes, scene.KindMarker, scene.OpCreate))
	assert.Contains(t, changesOf(update.Changes, scene.KindDisc, scene.OpUpdate), scene.DiscKey("alice", "f1"))
	assert.Equal(t, update.Changes, sess.LastChanges())

	update, err = sess.Dispatch(ctx, Action{Type: DeselectAllFights})
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, changesOf(update.Changes, scene.KindLine, scene.OpRemove))
	assert.Equal(t, []string{"f1"}, changesOf(update.Changes, scene.KindMarker, scene.OpRemove))
}

func TestDispatchFilterAndFighters(t *testing.T) {
	db := testdb.New(t)
	mgr := newManager(t, db.Access, time.Minute)
	ctx := context.Background()

	sess, err := mgr.Create(ctx)
	require.NoError(t, err)

	update, err := sess.Dispatch(ctx, Action{Type: ChangeFilter, Filter: &domain.Filter{Search: "d"}})
	require.NoError(t, err)
	assert.Len(t, update.State.Table, 1)
	assert.Empty(t, update.Changes, "the table is not part of the chart")

	update, err = sess.Dispatch(ctx, Action{Type: SelectFighter, FighterID: "dave"})
	require.NoError(t, err)
	assert.Len(t, update.State.Pool, 3)
	assert.Equal(t, []string{"dave"}, changesOf(update.Changes, scene.KindLine, scene.OpCreate))

	update, err = sess.Dispatch(ctx, Action{Type: DeselectAllFighters})
	require.NoError(t, err)
	assert.Empty(t, update.State.Pool)
	assert.Empty(t, sess.Scene().Lines)

	update, err = sess.Dispatch(ctx, Action{Type: Reset})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultFilter(), update.State.Filter)
	assert.Len(t, update.State.Table, 4)
}

func TestSceneRebuildsOncePerCommit(t *testing.T) {
	db := testdb.New(t)
	mgr := newManager(t, db.Access, time.Minute)
	ctx := context.Background()

	sess, err := mgr.Create(ctx)
	require.NoError(t, err)
	rebuilds := func() int {
		sess.mu.Lock()
		defer sess.mu.Unlock()
		return sess.rebuilds
	}
	require.Equal(t, 1, rebuilds(), "mount commits once")

	_, err = sess.Dispatch(ctx, Action{Type: SelectFight, Fight: &selection.FightRef{FighterID: "alice", FightID: "f1"}})
	require.NoError(t, err)
	assert.Equal(t, 2, rebuilds())

	_, err = sess.Dispatch(ctx, Action{Type: InspectFight, Fight: &selection.FightRef{FighterID: "carol", FightID: "f2"}})
	require.NoError(t, err)
	assert.Equal(t, 3, rebuilds())

	update, err := sess.Dispatch(ctx, Action{Type: UninspectFight, Fight: &selection.FightRef{FighterID: "carol", FightID: "f3"}})
	require.NoError(t, err)
	assert.Equal(t, 3, rebuilds(), "uninspecting a fight that is not hovered commits nothing")
	assert.Empty(t, update.Changes)
	assert.Len(t, update.State.InspectedFights, 1)

	_, err = sess.Dispatch(ctx, Action{Type: SelectFighter, FighterID: "zed"})
	require.Error(t, err)
	assert.Equal(t, 3, rebuilds())

	_, err = sess.Dispatch(ctx, Action{Type: DeselectAllFights})
	require.NoError(t, err)
	assert.Equal(t, 4, rebuilds())
	assert.Empty(t, sess.Scene().Markers)
}

func TestDispatchRejectsBadActions(t *testing.T) {
	db := testdb.New(t)
	mgr := newManager(t, db.Access, time.Minute)
	ctx := context.Background()

	sess, err := mgr.Create(ctx)
	require.NoError(t, err)
	before := sess.Scene()

	tests := []struct {
		name    string
		action  Action
		wantErr error
	}{
		{"unknown type", Action{Type: "explode"}, ErrInvalidAction},
		{"select fighter without id", Action{Type: SelectFighter}, ErrInvalidAction},
		{"inspect without ref", Action{Type: InspectFight}, ErrInvalidAction},
		{"filter without filter", Action{Type: ChangeFilter}, ErrInvalidAction},
		{"fight not on chart", Action{Type: SelectFight, Fight: &selection.FightRef{FighterID: "bob", FightID: "f1"}}, selection.ErrUnknownFight},
		{"unknown fighter", Action{Type: SelectFighter, FighterID: "zed"}, selection.ErrFighterNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sess.Dispatch(ctx, tt.action)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Equal(t, before, sess.Scene())
}

func TestGetAndClose(t *testing.T) {
	db := testdb.New(t)
	mgr := newManager(t, db.Access, time.Minute)

	sess, err := mgr.Create(context.Background())
	require.NoError(t, err)

	got, err := mgr.Get(sess.ID)
	require.NoError(t, err)
	assert.Same(t, sess, got)

	require.NoError(t, mgr.Close(sess.ID))
	_, err = mgr.Get(sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, mgr.Close(sess.ID), ErrSessionNotFound)
	assert.Zero(t, mgr.Count())
}

func TestSessionsExpire(t *testing.T) {
	db := testdb.New(t)
	mgr := newManager(t, db.Access, 20*time.Millisecond)

	sess, err := mgr.Create(context.Background())
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	_, err = mgr.Get(sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCreateFailsWhenDataUnavailable(t *testing.T) {
	db := testdb.New(t)
	mgr := newManager(t, failingBounds{db.Access}, time.Minute)

	sess, err := mgr.Create(context.Background())
	assert.Error(t, err)
	assert.Nil(t, sess)
	assert.Zero(t, mgr.Count())
}

func TestCreateKeepsSessionWithRejectedFighters(t *testing.T) {
	db := testdb.New(t)
	mgr := newManager(t, db.Access, time.Minute)
	ctx := context.Background()

	_, err := db.SQL.ExecContext(ctx, "UPDATE events SET dateof = 'soon' WHERE id = 'e3'")
	require.NoError(t, err)

	sess, err := mgr.Create(ctx)
	var dataErr *domain.DataError
	require.ErrorAs(t, err, &dataErr)
	require.NotNil(t, sess)

	st := sess.State()
	require.Len(t, st.Pool, 1, "carol fought at the broken event")
	assert.Equal(t, "alice", st.Pool[0].ID)
	assert.Len(t, sess.Scene().Lines, 1)
	assert.Equal(t, 1, mgr.Count())
}

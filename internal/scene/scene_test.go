package scene

import (
	"testing"

	"fight-timeline/internal/bounds"
	"fight-timeline/internal/chart"
	"fight-timeline/internal/domain"
	"fight-timeline/internal/label"
	"fight-timeline/internal/selection"
	"fight-timeline/internal/testutil"
	"fight-timeline/internal/timeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identity(int, func(i, j int)) {}

type fixture struct {
	alice, bob, carol domain.Fighter
	dom               domain.Domain
	fightID           string
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	all, err := timeline.Transform([]domain.Fighter{
		testutil.Fighter("alice", "Alice",
			testutil.Bout{Date: "2019-01-01", Result: domain.ResultWin, OpponentID: "bob"},
			testutil.Loss("2020-01-01"),
		),
		testutil.Fighter("bob", "Bob",
			testutil.Bout{Date: "2019-01-01", Result: domain.ResultLoss, OpponentID: "alice"},
		),
		testutil.Fighter("carol", "Carol", testutil.Win("2018-06-01"), testutil.Win("2021-06-01")),
	})
	require.NoError(t, err)

	return fixture{
		alice:   all[0],
		bob:     all[1],
		carol:   all[2],
		dom:     bounds.Calculate(all),
		fightID: testutil.SharedFightID("alice", "bob", "2019-01-01"),
	}
}

func newBuilder() *Builder {
	return NewBuilder(
		chart.DefaultDimensions(),
		label.FixedMeasurer{RuneWidth: 6, Height: 10},
		NewPalette(),
		nil,
		label.WithShuffler(identity),
	)
}

func discByKey(sc Scene, key string) (Disc, bool) {
	for _, d := range sc.Discs {
		if d.Key == key {
			return d, true
		}
	}
	return Disc{}, false
}

func lineByKey(sc Scene, key string) (Line, bool) {
	for _, l := range sc.Lines {
		if l.Key == key {
			return l, true
		}
	}
	return Line{}, false
}

func TestBuildBeforeMountIsEmpty(t *testing.T) {
	t.Parallel()

	sc := newBuilder().Build(selection.State{})
	assert.Equal(t, 960.0, sc.Width)
	assert.Equal(t, 500.0, sc.Height)
	assert.Empty(t, sc.Lines)
	assert.Empty(t, sc.Discs)
}

func TestBuildWithoutActiveFights(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	state := selection.State{
		Mounted: true,
		Domain:  fx.dom,
		Pool:    []domain.Fighter{fx.alice, fx.carol},
	}

	sc := newBuilder().Build(state)
	proj := chart.NewProjection(fx.dom, chart.DefaultDimensions())

	require.Len(t, sc.Lines, 2)
	alice, ok := lineByKey(sc, "alice")
	require.True(t, ok)
	require.Len(t, alice.Points, 3, "origin plus two fights")
	assert.InDelta(t, proj.X(testutil.Date("2019-01-01").AddDays(-84)), alice.Points[0].X, 1e-9)
	assert.InDelta(t, proj.Y(0), alice.Points[0].Y, 1e-9)
	assert.InDelta(t, proj.Y(1), alice.Points[1].Y, 1e-9)
	assert.Equal(t, 1.0, alice.Opacity)

	assert.Len(t, sc.Discs, 4)
	for _, d := range sc.Discs {
		assert.Equal(t, DiscRadius, d.Radius, d.Key)
		assert.Empty(t, d.Stroke, d.Key)
		assert.Equal(t, 1.0, d.Opacity, d.Key)
	}

	require.Len(t, sc.Labels, 2)
	assert.Equal(t, "Alice", sc.Labels[0].Text)
	assert.Equal(t, sc.Labels[0].Box.Y+label.DefaultMargin+sc.Labels[0].Box.H/2, sc.Labels[0].Y)
	assert.Empty(t, sc.Markers)
}

func TestBuildHighlightsActiveFight(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	fight := fx.alice.Fights[0].Fight
	state := selection.State{
		Mounted:        true,
		Domain:         fx.dom,
		Pool:           []domain.Fighter{fx.alice, fx.carol},
		SelectedFights: []selection.FightFocus{{Fight: fight, FighterID: "alice", Opponent: fx.bob}},
		Detail:         &fight,
	}

	b := newBuilder()
	sc := b.Build(state)

	require.Len(t, sc.Lines, 3, "the opponent joins the chart")
	bob, ok := lineByKey(sc, "bob")
	require.True(t, ok)
	assert.Equal(t, 1.0, bob.Opacity)
	assert.True(t, bob.Highlighted)

	carol, ok := lineByKey(sc, "carol")
	require.True(t, ok)
	assert.Equal(t, DimmedOpacity, carol.Opacity)

	win, ok := discByKey(sc, DiscKey("alice", fx.fightID))
	require.True(t, ok)
	assert.Equal(t, HighlightedDiscRadius, win.Radius)
	assert.Equal(t, "lime", win.Stroke)

	loss, ok := discByKey(sc, DiscKey("bob", fx.fightID))
	require.True(t, ok)
	assert.Equal(t, "crimson", loss.Stroke)

	other, ok := discByKey(sc, DiscKey("alice", "alice-f2"))
	require.True(t, ok)
	assert.Equal(t, DiscRadius, other.Radius)
	assert.Empty(t, other.Stroke)

	require.Len(t, sc.Markers, 1)
	marker := sc.Markers[0]
	proj := chart.NewProjection(fx.dom, chart.DefaultDimensions())
	assert.Equal(t, fx.fightID, marker.Key)
	assert.Equal(t, "Event 2019-01-01", marker.Name)
	assert.InDelta(t, proj.X(fight.Event.DateOf), marker.X, 1e-9)
	assert.Equal(t, 50.0, marker.Y1)
	assert.Equal(t, 480.0, marker.Y2)

	for _, l := range sc.Labels {
		if l.Key == "carol" {
			assert.Equal(t, DimmedOpacity, l.Opacity)
		} else {
			assert.Equal(t, 1.0, l.Opacity, l.Key)
		}
	}
}

func TestColorsFollowNamesAcrossBuilds(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	b := newBuilder()

	first := b.Build(selection.State{Mounted: true, Domain: fx.dom, Pool: []domain.Fighter{fx.carol}})
	second := b.Build(selection.State{Mounted: true, Domain: fx.dom, Pool: []domain.Fighter{fx.alice, fx.carol}})

	carol, _ := lineByKey(second, "carol")
	alice, _ := lineByKey(second, "alice")
	assert.Equal(t, first.Lines[0].Color, carol.Color)
	assert.Equal(t, Category20[0], carol.Color)
	assert.Equal(t, Category20[1], alice.Color)
}

func TestPaletteCycles(t *testing.T) {
	t.Parallel()

	p := NewPalette("red", "blue")
	assert.Equal(t, "red", p.Color("a"))
	assert.Equal(t, "blue", p.Color("b"))
	assert.Equal(t, "red", p.Color("c"))
	assert.Equal(t, "blue", p.Color("b"))
}

func TestDiff(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	b := newBuilder()
	base := selection.State{Mounted: true, Domain: fx.dom, Pool: []domain.Fighter{fx.alice, fx.carol}}

	empty := b.Build(selection.State{})
	initial := b.Build(base)

	created := Diff(empty, initial)
	require.Len(t, created, len(initial.Lines)+len(initial.Discs)+len(initial.Labels))
	for _, c := range created {
		assert.Equal(t, OpCreate, c.Op)
	}

	assert.Empty(t, Diff(initial, initial))

	fight := fx.alice.Fights[0].Fight
	active := base
	active.SelectedFights = []selection.FightFocus{{Fight: fight, FighterID: "alice", Opponent: fx.bob}}
	next := b.Build(active)

	changes := Diff(initial, next)
	byKey := make(map[Kind]map[string]Op)
	for _, c := range changes {
		if byKey[c.Kind] == nil {
			byKey[c.Kind] = make(map[string]Op)
		}
		byKey[c.Kind][c.Key] = c.Op
	}
	assert.Equal(t, OpCreate, byKey[KindLine]["bob"])
	assert.Equal(t, OpUpdate, byKey[KindLine]["carol"], "carol is dimmed")
	assert.Equal(t, OpUpdate, byKey[KindDisc][DiscKey("alice", fx.fightID)])
	assert.Equal(t, OpCreate, byKey[KindMarker][fx.fightID])
	assert.Equal(t, OpUpdate, byKey[KindLine]["alice"], "alice is highlighted")
	_, touched := byKey[KindDisc][DiscKey("alice", "alice-f2")]
	assert.False(t, touched, "alice's other fight is unchanged")

	removed := Diff(next, initial)
	var removals []string
	for _, c := range removed {
		if c.Op == OpRemove {
			assert.Nil(t, c.Node)
			removals = append(removals, string(c.Kind)+":"+c.Key)
		}
	}
	assert.Contains(t, removals, "line:bob")
	assert.Contains(t, removals, "marker:"+fx.fightID)
}

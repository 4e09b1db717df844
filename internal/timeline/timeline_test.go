package timeline

import (
	"testing"

	"fight-timeline/internal/domain"
	"fight-timeline/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines(f domain.Fighter) []int {
	out := make([]int, len(f.Fights))
	for i, p := range f.Fights {
		out[i] = p.Line
	}
	return out
}

func TestTransformRunningLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		bouts []testutil.Bout
		want  []int
	}{
		{
			name:  "win loss win",
			bouts: []testutil.Bout{testutil.Win("2010-01-01"), testutil.Loss("2011-01-01"), testutil.Win("2012-01-01")},
			want:  []int{1, 0, 1},
		},
		{
			name:  "unsorted input",
			bouts: []testutil.Bout{testutil.Win("2012-01-01"), testutil.Loss("2010-01-01"), testutil.Loss("2011-01-01")},
			want:  []int{-1, -2, -1},
		},
		{
			name:  "draw is plotted but flat",
			bouts: []testutil.Bout{testutil.Win("2010-01-01"), testutil.Draw("2010-06-01"), testutil.Win("2011-01-01")},
			want:  []int{1, 1, 2},
		},
		{
			name: "no fights",
			want: []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Transform([]domain.Fighter{testutil.Fighter("f1", "A", tt.bouts...)})
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, lines(got[0]))
		})
	}
}

func TestTransformLineIsRunningSum(t *testing.T) {
	t.Parallel()

	f := testutil.Fighter("f1", "A",
		testutil.Loss("2003-02-01"), testutil.Win("2001-05-01"), testutil.Draw("2002-07-01"),
		testutil.Win("2004-01-01"), testutil.Loss("2000-01-01"), testutil.Win("2005-09-09"),
	)
	got, err := TransformFighter(f)
	require.NoError(t, err)

	prev := 0
	for i, p := range got.Fights {
		assert.Equal(t, prev+p.Result.Delta(), p.Line, "fight %d", i)
		prev = p.Line
		if i > 0 {
			assert.False(t, p.Fight.Event.DateOf.Before(got.Fights[i-1].Fight.Event.DateOf), "fight %d out of order", i)
		}
	}
}

func TestTransformStableOnTies(t *testing.T) {
	t.Parallel()

	f := testutil.Fighter("f1", "A", testutil.Win("2010-01-01"), testutil.Loss("2010-01-01"), testutil.Draw("2010-01-01"))
	got, err := TransformFighter(f)
	require.NoError(t, err)

	ids := []string{got.Fights[0].Fight.ID, got.Fights[1].Fight.ID, got.Fights[2].Fight.ID}
	assert.Equal(t, []string{"f1-f1", "f1-f2", "f1-f3"}, ids)
	assert.Equal(t, []int{1, 0, 0}, lines(got))
}

func TestTransformDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	in := []domain.Fighter{testutil.Fighter("f1", "A", testutil.Win("2012-01-01"), testutil.Loss("2010-01-01"))}
	first, err := Transform(in)
	require.NoError(t, err)
	second, err := Transform(in)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "f1-f1", in[0].Fights[0].Fight.ID)
	assert.Zero(t, in[0].Fights[0].Line)
}

func TestTransformRejectsBadRecords(t *testing.T) {
	t.Parallel()

	good := testutil.Fighter("good", "Good", testutil.Win("2010-01-01"))
	missingDate := testutil.Fighter("nodate", "No Date", testutil.Win("2010-01-01"))
	missingDate.Fights[0].Fight.Event.DateOf = domain.Date{}
	badResult := testutil.Fighter("badresult", "Bad Result", testutil.Win("2010-01-01"))
	badResult.Fights[0].Result = "nc"

	got, err := Transform([]domain.Fighter{missingDate, good, badResult})
	require.Error(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "good", got[0].ID)

	var dataErr *domain.DataError
	require.ErrorAs(t, err, &dataErr)
	assert.Equal(t, "nodate", dataErr.FighterID)
	assert.Equal(t, "nodate-f1", dataErr.FightID)
	assert.ErrorIs(t, err, ErrMissingDate)
	assert.ErrorIs(t, err, domain.ErrUnknownResult)
}

func TestPointsOrigin(t *testing.T) {
	t.Parallel()

	f, err := TransformFighter(testutil.Fighter("f1", "A", testutil.Win("2010-03-26"), testutil.Loss("2011-01-01")))
	require.NoError(t, err)

	points := Points(f)
	require.Len(t, points, 3)
	assert.True(t, points[0].Origin)
	assert.Equal(t, 0, points[0].Line)
	assert.Equal(t, "2010-01-01", points[0].Date.String())
	assert.Equal(t, PreCareerOffset, points[1].Date.Sub(points[0].Date))
	assert.Equal(t, []int{1, 0}, []int{points[1].Line, points[2].Line})

	assert.Nil(t, Points(domain.Fighter{ID: "empty"}))
}

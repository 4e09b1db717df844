package timeline

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"fight-timeline/internal/domain"
)

// PreCareerOffset places the synthetic zero point of a career line three
// four-week months before the first real fight.
const PreCareerOffset = 3 * 4 * 7 * 24 * time.Hour

const preCareerDays = int(PreCareerOffset / (24 * time.Hour))

var ErrMissingDate = errors.New("missing event date")

type Point struct {
	Date    domain.Date
	Line    int
	FightID string
	Result  domain.Result

	// Origin is the synthetic left anchor, not a real fight.
	Origin bool
}

// Transform sorts every fighter's participations by event date and computes
// the running net wins line. Fighters with unusable records are left out and
// reported as *domain.DataError values joined into the returned error; the
// remaining fighters are still returned. The input is not modified.
func Transform(fighters []domain.Fighter) ([]domain.Fighter, error) {
	out := make([]domain.Fighter, 0, len(fighters))
	var errs []error

	for _, f := range fighters {
		transformed, err := TransformFighter(f)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, transformed)
	}

	return out, errors.Join(errs...)
}

func TransformFighter(f domain.Fighter) (domain.Fighter, error) {
	fights := slices.Clone(f.Fights)

	for _, p := range fights {
		if p.Fight.Event.DateOf.IsZero() {
			return domain.Fighter{}, &domain.DataError{FighterID: f.ID, FightID: p.Fight.ID, Err: ErrMissingDate}
		}
		if _, err := domain.ParseResult(string(p.Result)); err != nil {
			return domain.Fighter{}, &domain.DataError{
				FighterID: f.ID,
				FightID:   p.Fight.ID,
				Err:       fmt.Errorf("%w: %q", err, p.Result),
			}
		}
	}

	slices.SortStableFunc(fights, func(a, b domain.FightParticipation) int {
		return a.Fight.Event.DateOf.Time().Compare(b.Fight.Event.DateOf.Time())
	})

	line := 0
	for i := range fights {
		line += fights[i].Result.Delta()
		fights[i].Line = line
	}

	f.Fights = fights
	return f, nil
}

// Points is the polyline drawn for a transformed fighter: the synthetic origin
// followed by one point per fight. A fighter without fights has no points.
func Points(f domain.Fighter) []Point {
	if len(f.Fights) == 0 {
		return nil
	}

	points := make([]Point, 0, len(f.Fights)+1)
	points = append(points, Point{
		Date:   f.Fights[0].Fight.Event.DateOf.AddDays(-preCareerDays),
		Origin: true,
	})
	for _, p := range f.Fights {
		points = append(points, Point{
			Date:    p.Fight.Event.DateOf,
			Line:    p.Line,
			FightID: p.Fight.ID,
			Result:  p.Result,
		})
	}
	return points
}

// Counts tallies wins, losses and total fights from the participations.
func Counts(f domain.Fighter) (wins, losses, total int) {
	for _, p := range f.Fights {
		switch p.Result {
		case domain.ResultWin:
			wins++
		case domain.ResultLoss:
			losses++
		}
	}
	return wins, losses, len(f.Fights)
}

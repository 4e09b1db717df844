// Package testutil builds fighter fixtures for tests.
package testutil

import (
	"fmt"

	"fight-timeline/internal/domain"
)

// Bout describes one fight from a fighter's point of view.
type Bout struct {
	Date       string
	Result     domain.Result
	OpponentID string
}

// Date parses an ISO date and panics on bad input; fixtures are static.
func Date(s string) domain.Date {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Fighter builds a fighter with one participation per bout. Fight ids are
// derived from the fighter id and bout index unless the bout date and
// opponent make it a shared fight, in which case SharedFightID is used.
func Fighter(id, name string, bouts ...Bout) domain.Fighter {
	f := domain.Fighter{ID: id, Name: name}
	for i, b := range bouts {
		fightID := fmt.Sprintf("%s-f%d", id, i+1)
		if b.OpponentID != "" {
			fightID = SharedFightID(id, b.OpponentID, b.Date)
		}
		f.Fights = append(f.Fights, domain.FightParticipation{
			Fight: domain.Fight{
				ID: fightID,
				Event: domain.Event{
					ID:     "ev-" + b.Date,
					Name:   "Event " + b.Date,
					DateOf: Date(b.Date),
				},
				Participants: participants(id, name, b),
			},
			Result: b.Result,
		})
		switch b.Result {
		case domain.ResultWin:
			f.WinCount++
		case domain.ResultLoss:
			f.LossCount++
		}
		f.FightCount++
	}
	return f
}

// SharedFightID gives both sides of a fight the same id regardless of order.
func SharedFightID(a, b, date string) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%s-%s-%s", a, b, date)
}

func participants(id, name string, b Bout) []domain.Participant {
	opponent := b.OpponentID
	if opponent == "" {
		opponent = "unknown"
	}
	return []domain.Participant{
		{FighterID: id, Name: name, Result: b.Result},
		{FighterID: opponent, Result: mirror(b.Result)},
	}
}

func mirror(r domain.Result) domain.Result {
	switch r {
	case domain.ResultWin:
		return domain.ResultLoss
	case domain.ResultLoss:
		return domain.ResultWin
	}
	return r
}

func Win(date string) Bout  { return Bout{Date: date, Result: domain.ResultWin} }
func Loss(date string) Bout { return Bout{Date: date, Result: domain.ResultLoss} }
func Draw(date string) Bout { return Bout{Date: date, Result: domain.ResultDraw} }

// Package bounds computes the chart scale domain over a fighter universe.
package bounds

import (
	"fight-timeline/internal/domain"
	"fight-timeline/internal/timeline"
)

// Calculate makes a single pass over fighters whose lines have already been
// computed by timeline.Transform. It must be given the full, unfiltered
// universe so that axes do not move when the displayed population changes.
func Calculate(fighters []domain.Fighter) domain.Domain {
	d := domain.Domain{FighterCount: len(fighters)}
	seenLine := false

	for _, f := range fighters {
		wins, losses, total := f.WinCount, f.LossCount, f.FightCount
		if len(f.Fights) > 0 {
			wins, losses, total = timeline.Counts(f)
		}
		d.MaxWinCount = max(d.MaxWinCount, wins)
		d.MaxLossCount = max(d.MaxLossCount, losses)
		d.MaxFightCount = max(d.MaxFightCount, total)

		for _, p := range f.Fights {
			date := p.Fight.Event.DateOf
			if !date.IsZero() {
				if d.MinDate.IsZero() || date.Before(d.MinDate) {
					d.MinDate = date
				}
				if d.MaxDate.IsZero() || date.After(d.MaxDate) {
					d.MaxDate = date
				}
			}

			if !seenLine {
				d.MinLine, d.MaxLine = p.Line, p.Line
				seenLine = true
				continue
			}
			d.MinLine = min(d.MinLine, p.Line)
			d.MaxLine = max(d.MaxLine, p.Line)
		}
	}

	return d
}

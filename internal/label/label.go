// Package label places fighter name tags over the career chart.
//
// Placement is greedy and randomized: fighters are visited in a shuffled
// order, each tries its fights in a shuffled order, and the first box that
// does not hit an already placed box is kept. When every candidate collides
// the fighter falls back to its first fight so that no label is ever dropped.
// Nothing is remembered between calls.
package label

import (
	"math/rand/v2"
)

const (
	DefaultPadding = 3.0
	DefaultMargin  = 5.0
)

type Box struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Intersects reports whether b overlaps a using only a's extent as the
// threshold. The test is asymmetric; existing layouts depend on it.
func Intersects(a, b Box) bool {
	return abs(a.X-b.X) < a.W && abs(a.Y-b.Y) < a.H
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// Candidate is a projected fight point a label may be centered on.
type Candidate struct {
	FightID string
	X       float64
	Y       float64
}

// Subject is a fighter needing a label; Candidates are in chronological order.
type Subject struct {
	FighterID  string
	Name       string
	Candidates []Candidate
}

type Placement struct {
	FighterID     string `json:"fighter_id"`
	AnchorFightID string `json:"anchor_fight_id"`
	Box           Box    `json:"box"`
	Fallback      bool   `json:"fallback,omitempty"`

	// Order is the position in the visiting order of the pass. Earlier
	// placements are the reference boxes for later ones.
	Order int `json:"order"`
}

type Layout struct {
	ChartWidth   float64
	RightPadding float64
	Padding      float64
	Margin       float64
}

// Shuffler permutes n items via swap.
type Shuffler func(n int, swap func(i, j int))

type Engine struct {
	measurer Measurer
	layout   Layout
	shuffle  Shuffler
}

type Option func(*Engine)

// WithShuffler replaces the default math/rand/v2 shuffle, mainly for tests.
func WithShuffler(s Shuffler) Option {
	return func(e *Engine) { e.shuffle = s }
}

func NewEngine(measurer Measurer, layout Layout, opts ...Option) *Engine {
	if layout.Padding == 0 {
		layout.Padding = DefaultPadding
	}
	if layout.Margin == 0 {
		layout.Margin = DefaultMargin
	}
	e := &Engine{measurer: measurer, layout: layout, shuffle: rand.Shuffle}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Layout() Layout {
	return e.layout
}

// Place returns one placement per subject that has at least one candidate.
func (e *Engine) Place(subjects []Subject) map[string]Placement {
	order := make([]int, len(subjects))
	for i := range order {
		order[i] = i
	}
	e.shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	placed := make([]Box, 0, len(subjects))
	result := make(map[string]Placement, len(subjects))

	for _, idx := range order {
		s := subjects[idx]
		if len(s.Candidates) == 0 {
			continue
		}

		w, h := e.size(s.Name)
		p, ok := e.fit(s, w, h, placed)
		if !ok {
			first := s.Candidates[0]
			p = Placement{
				FighterID:     s.FighterID,
				AnchorFightID: first.FightID,
				Box:           e.box(first, w, h),
				Fallback:      true,
			}
		}

		p.Order = len(placed)
		placed = append(placed, p.Box)
		result[s.FighterID] = p
	}

	return result
}

func (e *Engine) fit(s Subject, w, h float64, placed []Box) (Placement, bool) {
	candidates := make([]Candidate, len(s.Candidates))
	copy(candidates, s.Candidates)
	e.shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })

	for _, c := range candidates {
		box := e.box(c, w, h)
		if !collides(placed, box) {
			return Placement{FighterID: s.FighterID, AnchorFightID: c.FightID, Box: box}, true
		}
	}
	return Placement{}, false
}

func collides(placed []Box, box Box) bool {
	for _, p := range placed {
		if Intersects(p, box) {
			return true
		}
	}
	return false
}

func (e *Engine) size(name string) (w, h float64) {
	tw, th := e.measurer.Measure(name)
	return tw + e.layout.Padding*2, th + e.layout.Padding*2
}

// box centers a w×h box on c, clamping x into the drawable width.
func (e *Engine) box(c Candidate, w, h float64) Box {
	x := max(0, min(e.layout.ChartWidth-e.layout.RightPadding-w, c.X-w/2))
	return Box{X: x, Y: c.Y - h/2, W: w, H: h}
}

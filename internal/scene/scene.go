// Package scene turns a selection snapshot into keyed drawing primitives for
// the career chart. A renderer keeps the previous scene and applies Diff.
package scene

import (
	"fight-timeline/internal/chart"
	"fight-timeline/internal/domain"
	"fight-timeline/internal/label"
	"fight-timeline/internal/metrics"
	"fight-timeline/internal/selection"
	"fight-timeline/internal/timeline"
)

const (
	DiscRadius            = 3.0
	HighlightedDiscRadius = 5.0
	DimmedOpacity         = 0.1

	markerStroke = "#aaa"
)

var resultStroke = map[domain.Result]string{
	domain.ResultWin:  "lime",
	domain.ResultLoss: "crimson",
	domain.ResultDraw: "slategray",
}

type Vertex struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Line struct {
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	Color       string   `json:"color"`
	Points      []Vertex `json:"points"`
	Opacity     float64  `json:"opacity"`
	Highlighted bool     `json:"highlighted,omitempty"`
}

type Disc struct {
	Key       string  `json:"key"`
	FighterID string  `json:"fighter_id"`
	FightID   string  `json:"fight_id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Radius    float64 `json:"r"`
	Fill      string  `json:"fill"`
	Stroke    string  `json:"stroke,omitempty"` // empty unless highlighted
	Opacity   float64 `json:"opacity"`
}

type Label struct {
	Key      string    `json:"key"`
	Text     string    `json:"text"`
	Color    string    `json:"color"`
	Box      label.Box `json:"box"`
	X        float64   `json:"x"`
	Y        float64   `json:"y"`
	AnchorID string    `json:"anchor_fight_id"`
	Fallback bool      `json:"fallback,omitempty"`
	Opacity  float64   `json:"opacity"`
}

// EventMarker is the vertical rule and caption drawn for an active fight.
type EventMarker struct {
	Key     string    `json:"key"`
	Name    string    `json:"name"`
	Date    string    `json:"date"`
	X       float64   `json:"x"`
	Y1      float64   `json:"y1"`
	Y2      float64   `json:"y2"`
	Caption label.Box `json:"caption"`
	Stroke  string    `json:"stroke"`
}

type Scene struct {
	Width   float64       `json:"width"`
	Height  float64       `json:"height"`
	Lines   []Line        `json:"lines"`
	Discs   []Disc        `json:"discs"`
	Labels  []Label       `json:"labels"`
	Markers []EventMarker `json:"markers"`
}

type Builder struct {
	dims     chart.Dimensions
	measurer label.Measurer
	engine   *label.Engine
	palette  *Palette
	metrics  *metrics.Metrics
}

func NewBuilder(dims chart.Dimensions, measurer label.Measurer, palette *Palette, m *metrics.Metrics, opts ...label.Option) *Builder {
	engine := label.NewEngine(measurer, label.Layout{
		ChartWidth:   dims.Width,
		RightPadding: dims.Padding.R,
	}, opts...)

	return &Builder{
		dims:     dims,
		measurer: measurer,
		engine:   engine,
		palette:  palette,
		metrics:  m,
	}
}

// Build projects s onto the chart. Everything but the label layout is a pure
// function of the snapshot and the palette.
func (b *Builder) Build(s selection.State) Scene {
	sc := Scene{Width: b.dims.Width, Height: b.dims.Height}
	if !s.Mounted {
		return sc
	}

	proj := chart.NewProjection(s.Domain, b.dims)
	active := s.ActiveFights()
	anyActive := len(active) > 0

	activeFight := make(map[string]struct{}, len(active))
	involved := make(map[string]struct{}, len(active)*2)
	for _, f := range active {
		activeFight[f.Fight.ID] = struct{}{}
		involved[f.FighterID] = struct{}{}
		involved[f.Opponent.ID] = struct{}{}
	}

	fighters := s.ChartFighters()
	subjects := make([]label.Subject, 0, len(fighters))

	for _, f := range fighters {
		points := timeline.Points(f)
		if len(points) == 0 {
			continue
		}

		color := b.palette.Color(f.Name)
		_, highlighted := involved[f.ID]
		opacity := opacityFor(anyActive, highlighted)

		line := Line{Key: f.ID, Name: f.Name, Color: color, Opacity: opacity, Highlighted: highlighted}
		subject := label.Subject{FighterID: f.ID, Name: f.Name}

		for _, p := range points {
			x, y := proj.X(p.Date), proj.Y(p.Line)
			line.Points = append(line.Points, Vertex{X: x, Y: y})
			if p.Origin {
				continue
			}

			disc := Disc{
				Key:       DiscKey(f.ID, p.FightID),
				FighterID: f.ID,
				FightID:   p.FightID,
				X:         x,
				Y:         y,
				Radius:    DiscRadius,
				Fill:      color,
				Opacity:   opacity,
			}
			if _, ok := activeFight[p.FightID]; ok {
				disc.Radius = HighlightedDiscRadius
				disc.Stroke = resultStroke[p.Result]
			}
			sc.Discs = append(sc.Discs, disc)
			subject.Candidates = append(subject.Candidates, label.Candidate{FightID: p.FightID, X: x, Y: y})
		}

		sc.Lines = append(sc.Lines, line)
		subjects = append(subjects, subject)
	}

	sc.Labels = b.labels(fighters, subjects, involved, anyActive)
	sc.Markers = b.markers(proj, active)
	return sc
}

func (b *Builder) labels(fighters []domain.Fighter, subjects []label.Subject, involved map[string]struct{}, anyActive bool) []Label {
	placements := b.engine.Place(subjects)
	margin := b.engine.Layout().Margin

	labels := make([]Label, 0, len(placements))
	fallbacks := 0
	for _, f := range fighters {
		p, ok := placements[f.ID]
		if !ok {
			continue
		}
		if p.Fallback {
			fallbacks++
		}
		_, highlighted := involved[f.ID]
		labels = append(labels, Label{
			Key:      f.ID,
			Text:     f.Name,
			Color:    b.palette.Color(f.Name),
			Box:      p.Box,
			X:        p.Box.X,
			Y:        p.Box.Y + margin + p.Box.H/2,
			AnchorID: p.AnchorFightID,
			Fallback: p.Fallback,
			Opacity:  opacityFor(anyActive, highlighted),
		})
	}
	b.metrics.LabelFallbacks(fallbacks)
	return labels
}

func (b *Builder) markers(proj chart.Projection, active []selection.FightFocus) []EventMarker {
	pad := b.dims.Padding
	markers := make([]EventMarker, 0, len(active))

	for _, f := range active {
		x := proj.X(f.Fight.Event.DateOf)
		w, h := b.measurer.Measure(f.Fight.Event.Name)
		markers = append(markers, EventMarker{
			Key:  f.Fight.ID,
			Name: f.Fight.Event.Name,
			Date: f.Fight.Event.DateOf.String(),
			X:    x,
			Y1:   pad.T,
			Y2:   b.dims.Height - pad.B,
			Caption: label.Box{
				X: min(b.dims.Width-pad.R-w-6, x),
				Y: b.dims.Height - pad.B - 5 - h/2 - 8,
				W: w + 6,
				H: h + 6,
			},
			Stroke: markerStroke,
		})
	}
	return markers
}

func opacityFor(anyActive, highlighted bool) float64 {
	if anyActive && !highlighted {
		return DimmedOpacity
	}
	return 1
}

func DiscKey(fighterID, fightID string) string {
	return fighterID + "/" + fightID
}

// Package chart maps dates and net wins values to pixel positions.
package chart

import (
	"math"

	"fight-timeline/internal/domain"
)

// TimeExponent stretches recent years, where most fights happened.
const TimeExponent = 4

type Padding struct {
	T float64 `json:"t"`
	R float64 `json:"r"`
	B float64 `json:"b"`
	L float64 `json:"l"`
}

type Dimensions struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Padding Padding `json:"padding"`
}

func DefaultDimensions() Dimensions {
	return Dimensions{
		Width:   960,
		Height:  500,
		Padding: Padding{T: 50, R: 20, B: 20, L: 50},
	}
}

func (d Dimensions) InnerWidth() float64 {
	return d.Width - (d.Padding.L + d.Padding.R)
}

func (d Dimensions) InnerHeight() float64 {
	return d.Height - (d.Padding.T + d.Padding.B)
}

// Projection is fixed for a session: it is built from the unfiltered domain.
type Projection struct {
	dims Dimensions

	t0, t1       float64
	line0, line1 float64
}

func NewProjection(dom domain.Domain, dims Dimensions) Projection {
	return Projection{
		dims:  dims,
		t0:    powValue(epochSeconds(dom.MinDate)),
		t1:    powValue(epochSeconds(dom.MaxDate)),
		line0: float64(dom.MaxLine),
		line1: float64(dom.MinLine),
	}
}

func (p Projection) Dimensions() Dimensions {
	return p.dims
}

// X is the absolute horizontal pixel position of date.
func (p Projection) X(date domain.Date) float64 {
	return p.dims.Padding.L + p.TimeOffset(date)
}

// TimeOffset is the position of date within the plot area.
func (p Projection) TimeOffset(date domain.Date) float64 {
	return normalize(p.t0, p.t1, powValue(epochSeconds(date))) * p.dims.InnerWidth()
}

// Y is the absolute vertical pixel position of a net wins value; higher
// values sit nearer the top.
func (p Projection) Y(line int) float64 {
	return p.dims.Padding.T + p.LineOffset(line)
}

func (p Projection) LineOffset(line int) float64 {
	return normalize(p.line0, p.line1, float64(line)) * p.dims.InnerHeight()
}

func normalize(a, b, v float64) float64 {
	if b == a {
		return 0.5
	}
	return (v - a) / (b - a)
}

func powValue(v float64) float64 {
	if v < 0 {
		return -math.Pow(-v, TimeExponent)
	}
	return math.Pow(v, TimeExponent)
}

func epochSeconds(d domain.Date) float64 {
	return float64(d.Time().Unix())
}

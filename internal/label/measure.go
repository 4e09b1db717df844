package label

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Measurer returns the rendered width and height of a label's text in pixels.
type Measurer interface {
	Measure(text string) (w, h float64)
}

// FontMeasurer measures text with the Go Regular face. Sizes are cached per
// string because a fighter's name never changes within a session.
type FontMeasurer struct {
	mu     sync.Mutex
	face   font.Face
	height float64
	cache  map[string]float64
}

func NewFontMeasurer(size float64) (*FontMeasurer, error) {
	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse label font: %w", err)
	}

	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create label font face: %w", err)
	}

	metrics := face.Metrics()
	return &FontMeasurer{
		face:   face,
		height: float64((metrics.Ascent + metrics.Descent).Ceil()),
		cache:  make(map[string]float64),
	}, nil
}

func (m *FontMeasurer) Measure(text string) (float64, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if w, ok := m.cache[text]; ok {
		return w, m.height
	}
	w := float64(font.MeasureString(m.face, text).Ceil())
	m.cache[text] = w
	return w, m.height
}

// FixedMeasurer treats every rune as the same width. Used where no font is
// available and in tests.
type FixedMeasurer struct {
	RuneWidth float64
	Height    float64
}

func (m FixedMeasurer) Measure(text string) (float64, float64) {
	return float64(len([]rune(text))) * m.RuneWidth, m.Height
}

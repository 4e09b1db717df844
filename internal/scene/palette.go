package scene

import "sync"

// Category20 is the twenty colour categorical palette used for fighter lines.
var Category20 = []string{
	"#1f77b4", "#aec7e8", "#ff7f0e", "#ffbb78", "#2ca02c",
	"#98df8a", "#d62728", "#ff9896", "#9467bd", "#c5b0d5",
	"#8c564b", "#c49c94", "#e377c2", "#f7b6d2", "#7f7f7f",
	"#c7c7c7", "#bcbd22", "#dbdb8d", "#17becf", "#9edae5",
}

// Palette hands out colours by name in first-seen order and cycles once the
// palette is exhausted. A name keeps its colour for the life of the palette.
type Palette struct {
	mu       sync.Mutex
	colors   []string
	assigned map[string]string
}

func NewPalette(colors ...string) *Palette {
	if len(colors) == 0 {
		colors = Category20
	}
	return &Palette{colors: colors, assigned: make(map[string]string)}
}

func (p *Palette) Color(name string) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.assigned[name]; ok {
		return c
	}
	c := p.colors[len(p.assigned)%len(p.colors)]
	p.assigned[name] = c
	return c
}

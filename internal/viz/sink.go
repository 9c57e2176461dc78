package viz

import (
	"sort"
	"sync"
)

// Scene collects the latest ligament per name. It is the sink shared by
// every mechanism drawn in one view, and is safe to read from a UI goroutine
// while a control loop renders into it.
type Scene struct {
	mu        sync.RWMutex
	ligaments map[string]Ligament
}

func NewScene() *Scene {
	return &Scene{ligaments: make(map[string]Ligament)}
}

func (s *Scene) Render(l Ligament) {
	s.mu.Lock()
	s.ligaments[l.Name] = l
	s.mu.Unlock()
}

func (s *Scene) Get(name string) (Ligament, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.ligaments[name]
	return l, ok
}

// Ligaments returns a name-ordered copy.
func (s *Scene) Ligaments() []Ligament {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Ligament, 0, len(s.ligaments))
	for _, l := range s.ligaments {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Draw rasterizes the scene onto c. worldW and worldH give the visible
// extent in meters with the origin at the bottom left. Every ligament root
// is marked so joints stay visible when segments overlap.
func (s *Scene) Draw(c *Canvas, worldW, worldH float64) {
	c.Clear()
	for _, l := range s.Ligaments() {
		tip := l.Tip()
		x0, y0 := c.Project(l.Root.X, l.Root.Y, worldW, worldH)
		x1, y1 := c.Project(tip.X, tip.Y, worldW, worldH)
		c.DrawThickLine(x0, y0, x1, y1, strokeDots(l.LineWidth))
		c.Mark(x0, y0)
	}
}

// strokeDots maps a ligament line width (nominal pixels) onto braille dots.
func strokeDots(lineWidth float64) int {
	if lineWidth >= 10 {
		return 2
	}
	return 1
}

// SinkFunc adapts a plain function to Sink.
type SinkFunc func(Ligament)

func (f SinkFunc) Render(l Ligament) { f(l) }

// MultiSink fans out to every sink in order.
type MultiSink []Sink

func (m MultiSink) Render(l Ligament) {
	for _, s := range m {
		s.Render(l)
	}
}

package viz

import (
	"math"

	"github.com/san-kum/pivotsim/internal/config"
	"github.com/san-kum/pivotsim/internal/units"
)

// Point is a position on the 2D mechanism plane, in meters.
type Point struct {
	X, Y float64
}

// Ligament is one segment of a mechanism drawing. Angle is in degrees,
// counterclockwise from +X.
type Ligament struct {
	Name      string
	Root      Point
	Length    float64
	Angle     float64
	LineWidth float64
	Color     string
}

// Tip is the free end of the ligament.
func (l Ligament) Tip() Point {
	rad := units.DegreesToRadians(l.Angle)
	return Point{
		X: l.Root.X + l.Length*math.Cos(rad),
		Y: l.Root.Y + l.Length*math.Sin(rad),
	}
}

type Sink interface {
	Render(l Ligament)
}

// AnchorSupplier reports where another subsystem currently places the
// mechanism root, as a vertical offset in meters.
type AnchorSupplier func() float64

// Mechanism projects a joint angle onto a ligament whose root rides on an
// anchor owned by someone else.
type Mechanism struct {
	cfg  config.VizConfig
	name string
	sink Sink
	last Ligament
}

func NewMechanism(name string, cfg config.VizConfig, sink Sink) *Mechanism {
	return &Mechanism{
		cfg:  cfg,
		name: name,
		sink: sink,
		last: Ligament{
			Name:      name,
			Root:      Point{X: cfg.RootX, Y: cfg.RootY},
			Length:    cfg.LigamentLength,
			Angle:     cfg.LigamentAngle,
			LineWidth: cfg.LineWidth,
			Color:     cfg.Color,
		},
	}
}

// Update reads the anchor once and pushes the resulting ligament to the sink.
func (m *Mechanism) Update(angleRad float64, anchor AnchorSupplier) Ligament {
	return m.Place(angleRad, Offset(anchor))
}

// Place pushes the ligament for angleRad with its root raised by offset.
// Display angles are degrees; this is the only place the mechanism drawing
// leaves radians.
func (m *Mechanism) Place(angleRad, offset float64) Ligament {
	m.last.Root = Point{X: m.cfg.RootX, Y: m.cfg.RootY + offset}
	m.last.Angle = units.RadiansToDegrees(angleRad)
	if m.sink != nil {
		m.sink.Render(m.last)
	}
	return m.last
}

// Offset reads anchor once. A nil anchor is treated as zero offset.
func Offset(anchor AnchorSupplier) float64 {
	if anchor == nil {
		return 0
	}
	return anchor()
}

func (m *Mechanism) Last() Ligament { return m.last }

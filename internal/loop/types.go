package loop

import "github.com/san-kum/pivotsim/internal/dynamo"

// Subsystem is anything with a periodic update, such as the pivot or the
// elevator.
type Subsystem interface {
	Tick(dt float64) error
}

// Probe samples the recorded state and control after every tick.
type Probe func() (dynamo.State, dynamo.Control)

type Config struct {
	Period      float64
	Ticks       int
	StopOnFault bool
}

type Result struct {
	States   []dynamo.State
	Controls []dynamo.Control
	Times    []float64
	Metrics  map[string]float64
	Errors   []error
	TicksRun int
	Faults   int
}

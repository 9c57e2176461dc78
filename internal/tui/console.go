package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/pivotsim/internal/dynamo"
	"github.com/san-kum/pivotsim/internal/rig"
	"github.com/san-kum/pivotsim/internal/units"
	"github.com/san-kum/pivotsim/internal/viz"
)

const (
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// ConsoleRenderer redraws the rig's scene to a plain terminal every Every
// ticks. It is a loop observer for headless runs.
type ConsoleRenderer struct {
	out    io.Writer
	rig    *rig.Rig
	canvas *viz.Canvas
	every  int
	steps  int
	frames int

	// Clear prefixes each frame with an ANSI clear.
	Clear bool
}

func NewConsoleRenderer(out io.Writer, r *rig.Rig, every int) *ConsoleRenderer {
	if every < 1 {
		every = 1
	}
	return &ConsoleRenderer{
		out:    out,
		rig:    r,
		canvas: viz.NewCanvas(canvasWidth, canvasHeight),
		every:  every,
		Clear:  true,
	}
}

func (c *ConsoleRenderer) OnStep(x dynamo.State, u dynamo.Control, t float64) {
	c.steps++
	if c.steps%c.every != 0 {
		return
	}
	c.frames++

	w, h := c.rig.WorldSize()
	c.rig.Scene.Draw(c.canvas, w, h)

	var b strings.Builder
	if c.Clear {
		b.WriteString(clearScreen)
	}
	fmt.Fprintf(&b, "  %s  t=%.2fs\n", c.rig.Config.Name, t)
	border := "  " + strings.Repeat("-", canvasWidth) + "\n"
	b.WriteString(border)
	for _, row := range strings.Split(strings.TrimSuffix(c.canvas.String(), "\n"), "\n") {
		b.WriteString("  " + row + "\n")
	}
	b.WriteString(border)
	if len(x) >= 2 {
		fmt.Fprintf(&b, "  angle=%.2f° vel=%.2f rad/s", units.RadiansToDegrees(x[0]), x[1])
	}
	if len(u) >= 1 {
		fmt.Fprintf(&b, " u=%.2f V", u[0])
	}
	b.WriteString("\n")

	io.WriteString(c.out, b.String())
}

func (c *ConsoleRenderer) Frames() int { return c.frames }

func (c *ConsoleRenderer) Start() { io.WriteString(c.out, hideCursor) }
func (c *ConsoleRenderer) Stop()  { io.WriteString(c.out, showCursor) }

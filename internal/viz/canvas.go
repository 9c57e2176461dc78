package viz

import (
	"math"
	"strings"
)

const blankCell = 0x2800

// Braille dot bits by (sub-row, sub-column):
//
//	1 4
//	2 5
//	3 6
//	7 8
var dotBits = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// Canvas is a grid of braille cells. Each cell holds 2x4 dots, so a
// Width x Height canvas addresses (2*Width) x (4*Height) sub-pixels with
// the origin at the top left.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, Grid: make([][]rune, h)}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

func (c *Canvas) cell(x, y int) (row, col int, bit rune, ok bool) {
	if x < 0 || y < 0 {
		return 0, 0, 0, false
	}
	row, col = y/4, x/2
	if row >= c.Height || col >= c.Width {
		return 0, 0, 0, false
	}
	return row, col, dotBits[y%4][x%2], true
}

// Set lights the sub-pixel at (x, y). Out of range points are ignored.
func (c *Canvas) Set(x, y int) {
	if row, col, bit, ok := c.cell(x, y); ok {
		c.Grid[row][col] |= bit
	}
}

func (c *Canvas) IsSet(x, y int) bool {
	row, col, bit, ok := c.cell(x, y)
	return ok && c.Grid[row][col]&bit != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blankCell
		}
	}
}

// DrawLine draws a one sub-pixel line with Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx, dy := absInt(x1-x0), absInt(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawThickLine draws width parallel lines offset across the direction of
// travel. Widths below 2 fall back to DrawLine.
func (c *Canvas) DrawThickLine(x0, y0, x1, y1, width int) {
	if width < 2 {
		c.DrawLine(x0, y0, x1, y1)
		return
	}
	// Offset along whichever axis is perpendicular-ish to the line.
	horizontal := absInt(x1-x0) >= absInt(y1-y0)
	for i := 0; i < width; i++ {
		off := i - width/2
		if horizontal {
			c.DrawLine(x0, y0+off, x1, y1+off)
		} else {
			c.DrawLine(x0+off, y0, x1+off, y1)
		}
	}
}

// Mark draws a small plus centered on (x, y).
func (c *Canvas) Mark(x, y int) {
	c.Set(x, y)
	c.Set(x-1, y)
	c.Set(x+1, y)
	c.Set(x, y-1)
	c.Set(x, y+1)
}

// Project maps a world point in meters to sub-pixel coordinates. The world
// origin sits at the bottom left and y grows upward.
func (c *Canvas) Project(x, y, worldW, worldH float64) (int, int) {
	pw, ph := float64(c.Width*2-1), float64(c.Height*4-1)
	px := int(math.Round(x / worldW * pw))
	py := int(math.Round((1 - y/worldH) * ph))
	return px, py
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

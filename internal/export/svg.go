package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/pkg/errors"

	"github.com/san-kum/pivotsim/internal/viz"
)

const background = "#0a0a0a"

// SceneSVG draws every ligament of the scene as a stroked line. worldW and
// worldH are the visible extent in meters; scale is pixels per meter.
func SceneSVG(w io.Writer, scene *viz.Scene, worldW, worldH, scale float64) error {
	if !(worldW > 0) || !(worldH > 0) || !(scale > 0) {
		return errors.Errorf("export: invalid extent %vx%v at scale %v", worldW, worldH, scale)
	}

	width := worldW * scale
	height := worldH * scale

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)

	for _, l := range scene.Ligaments() {
		tip := l.Tip()
		color := l.Color
		if color == "" {
			color = "#00ff00"
		}
		stroke := l.LineWidth
		if stroke <= 0 {
			stroke = 1
		}
		// SVG y grows downward.
		fmt.Fprintf(&sb, `<line id="%s" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="%.1f" stroke-linecap="round"/>
`, l.Name, l.Root.X*scale, height-l.Root.Y*scale, tip.X*scale, height-tip.Y*scale, color, stroke)
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return errors.Wrap(err, "writing svg")
}

// TraceSVG plots values against times as a single polyline with 10%
// padding on both axes.
func TraceSVG(w io.Writer, times, values []float64, width, height int, strokeColor string) error {
	if len(times) != len(values) {
		return errors.Errorf("export: %d times but %d values", len(times), len(values))
	}
	if len(values) < 2 {
		return errors.New("export: need at least two samples")
	}

	minX, maxX := times[0], times[0]
	minY, maxY := values[0], values[0]
	for i := range values {
		minX, maxX = math.Min(minX, times[i]), math.Max(maxX, times[i])
		minY, maxY = math.Min(minY, values[i]), math.Max(maxY, values[i])
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, background, strokeColor)

	for i := range values {
		x := (times[i] - minX) / rangeX * float64(width)
		y := float64(height) - (values[i]-minY)/rangeY*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString("\"/>\n</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return errors.Wrap(err, "writing svg")
}

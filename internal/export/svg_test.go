package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/san-kum/pivotsim/internal/viz"
)

func TestSceneSVG(t *testing.T) {
	scene := viz.NewScene()
	scene.Render(viz.Ligament{Name: "pivot", Root: viz.Point{X: 1, Y: 0}, Length: 1, Angle: 90, LineWidth: 10, Color: "#FFFF00"})
	scene.Render(viz.Ligament{Name: "elevator", Root: viz.Point{X: 1, Y: 0}, Length: 0.5, Angle: 90})

	var buf bytes.Buffer
	if err := SceneSVG(&buf, scene, 2, 2, 100); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if !strings.Contains(out, `width="200" height="200"`) {
		t.Errorf("unexpected size:\n%s", out)
	}
	if !strings.Contains(out, `<line id="pivot" x1="100.0" y1="200.0" x2="100.0" y2="100.0" stroke="#FFFF00" stroke-width="10.0"`) {
		t.Errorf("pivot line missing or wrong:\n%s", out)
	}
	if !strings.Contains(out, `<line id="elevator"`) || !strings.Contains(out, `stroke="#00ff00" stroke-width="1.0"`) {
		t.Errorf("elevator line should use default stroke:\n%s", out)
	}
	if !strings.HasSuffix(out, "</svg>\n") {
		t.Error("svg not closed")
	}
}

func TestSceneSVGRejectsBadExtent(t *testing.T) {
	if err := SceneSVG(&bytes.Buffer{}, viz.NewScene(), 0, 1, 1); err == nil {
		t.Error("expected error for zero width")
	}
}

func TestTraceSVG(t *testing.T) {
	var buf bytes.Buffer
	err := TraceSVG(&buf, []float64{0, 1, 2}, []float64{0, 10, 5}, 120, 60, "#00ccff")
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, `stroke="#00ccff"`) {
		t.Error("stroke color missing")
	}
	if strings.Count(out, " L") != 2 {
		t.Errorf("expected 2 line segments:\n%s", out)
	}
	// first sample sits 10% in from the left and bottom edges
	if !strings.Contains(out, `d="M10.0,55.0`) {
		t.Errorf("unexpected first point:\n%s", out)
	}
}

func TestTraceSVGValidation(t *testing.T) {
	if err := TraceSVG(&bytes.Buffer{}, []float64{0}, []float64{0}, 10, 10, "#fff"); err == nil {
		t.Error("expected error for single sample")
	}
	if err := TraceSVG(&bytes.Buffer{}, []float64{0, 1}, []float64{0}, 10, 10, "#fff"); err == nil {
		t.Error("expected error for length mismatch")
	}
}

package viz

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/pivotsim/internal/config"
)

func testVizConfig() config.VizConfig {
	return config.VizConfig{
		RootX:          0.75,
		RootY:          0.1,
		LigamentLength: 0.4,
		LigamentAngle:  90,
		LineWidth:      10,
		Color:          "#FFFF00",
	}
}

func TestMechanismAnchorCoupling(t *testing.T) {
	scene := NewScene()
	m := NewMechanism("pivot", testVizConfig(), scene)

	anchor := 0.3
	l1 := m.Update(math.Pi/4, func() float64 { return anchor })
	anchor = 0.9
	l2 := m.Update(math.Pi/4, func() float64 { return anchor })

	if dy := l2.Root.Y - l1.Root.Y; math.Abs(dy-0.6) > 1e-12 {
		t.Errorf("expected root to move with anchor by 0.6, got %f", dy)
	}
	if l1.Root.X != 0.75 || l2.Root.X != 0.75 {
		t.Errorf("root X should stay fixed, got %f and %f", l1.Root.X, l2.Root.X)
	}
	if math.Abs(l2.Angle-45) > 1e-12 {
		t.Errorf("expected 45 degrees, got %f", l2.Angle)
	}

	got, ok := scene.Get("pivot")
	if !ok || got != l2 {
		t.Errorf("scene should hold the latest ligament, got %+v", got)
	}
	if m.Last() != l2 {
		t.Error("Last should return the latest ligament")
	}
}

func TestMechanismNilAnchorAndSink(t *testing.T) {
	m := NewMechanism("pivot", testVizConfig(), nil)
	l := m.Update(0, nil)
	if l.Root.Y != 0.1 {
		t.Errorf("expected root at RootY, got %f", l.Root.Y)
	}
	if l.Angle != 0 {
		t.Errorf("expected 0 degrees, got %f", l.Angle)
	}
}

func TestMechanismPlaceUsesGivenOffset(t *testing.T) {
	calls := 0
	offset := Offset(func() float64 { calls++; return 0.25 })
	m := NewMechanism("pivot", testVizConfig(), nil)
	l := m.Place(math.Pi/2, offset)

	if calls != 1 {
		t.Errorf("expected one anchor read, got %d", calls)
	}
	if math.Abs(l.Root.Y-0.35) > 1e-12 || math.Abs(l.Angle-90) > 1e-12 {
		t.Errorf("unexpected ligament %+v", l)
	}
	if Offset(nil) != 0 {
		t.Error("nil anchor should give zero offset")
	}
}

func TestLigamentTip(t *testing.T) {
	tests := []struct {
		angle float64
		wantX float64
		wantY float64
	}{
		{0, 1.5, 1},
		{90, 1, 1.5},
		{180, 0.5, 1},
		{-90, 1, 0.5},
	}
	for _, tt := range tests {
		l := Ligament{Root: Point{1, 1}, Length: 0.5, Angle: tt.angle}
		tip := l.Tip()
		if math.Abs(tip.X-tt.wantX) > 1e-12 || math.Abs(tip.Y-tt.wantY) > 1e-12 {
			t.Errorf("angle %v: expected (%v, %v), got (%v, %v)", tt.angle, tt.wantX, tt.wantY, tip.X, tip.Y)
		}
	}
}

func TestSceneLigamentsSorted(t *testing.T) {
	s := NewScene()
	s.Render(Ligament{Name: "pivot"})
	s.Render(Ligament{Name: "elevator"})
	s.Render(Ligament{Name: "pivot", Angle: 10})

	ls := s.Ligaments()
	if len(ls) != 2 || ls[0].Name != "elevator" || ls[1].Name != "pivot" {
		t.Fatalf("unexpected ligaments %+v", ls)
	}
	if ls[1].Angle != 10 {
		t.Error("later render should replace earlier one")
	}
}

func TestMultiSinkFansOut(t *testing.T) {
	var names []string
	s := NewScene()
	sink := MultiSink{s, SinkFunc(func(l Ligament) { names = append(names, l.Name) })}
	NewMechanism("pivot", testVizConfig(), sink).Update(0, nil)

	if len(names) != 1 || names[0] != "pivot" {
		t.Errorf("func sink got %v", names)
	}
	if _, ok := s.Get("pivot"); !ok {
		t.Error("scene missed the render")
	}
}

func TestCanvasProject(t *testing.T) {
	c := NewCanvas(10, 5)
	if x, y := c.Project(0, 0, 2, 1); x != 0 || y != 19 {
		t.Errorf("origin should map to bottom left, got (%d, %d)", x, y)
	}
	if x, y := c.Project(2, 1, 2, 1); x != 19 || y != 0 {
		t.Errorf("far corner should map to top right, got (%d, %d)", x, y)
	}
}

func TestCanvasSetBounds(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(3, 3)
	c.Set(-1, 0)
	c.Set(4, 0)
	if !c.IsSet(3, 3) {
		t.Error("expected (3, 3) set")
	}
	if c.IsSet(0, 0) || c.IsSet(4, 0) {
		t.Error("unexpected pixels set")
	}
	if got := c.Grid[0][1]; got != 0x2800|0x80 {
		t.Errorf("expected dot 8 in second cell, got %U", got)
	}
}

func TestCanvasThickLine(t *testing.T) {
	c := NewCanvas(10, 5)
	c.DrawThickLine(0, 10, 19, 10, 2)
	for x := 0; x < 20; x++ {
		if !c.IsSet(x, 9) || !c.IsSet(x, 10) {
			t.Fatalf("column %d should be two dots thick", x)
		}
	}
	if c.IsSet(5, 8) || c.IsSet(5, 11) {
		t.Error("line is thicker than requested")
	}
}

func TestSceneDraw(t *testing.T) {
	s := NewScene()
	s.Render(Ligament{Name: "pivot", Root: Point{1, 0}, Length: 1, Angle: 90})
	c := NewCanvas(10, 5)
	s.Draw(c, 2, 1)

	out := c.String()
	if strings.Count(out, "\n") != 5 {
		t.Fatalf("expected 5 rows, got %q", out)
	}
	blank := string(rune(0x2800))
	for i, row := range strings.Split(strings.TrimSuffix(out, "\n"), "\n") {
		if strings.Trim(row, blank) == "" {
			t.Errorf("row %d empty, vertical ligament should cross every row", i)
		}
	}
}

func TestVoltageBar(t *testing.T) {
	if got := VoltageBar(0, 12, 10); strings.Count(got, "█") != 0 {
		t.Errorf("zero volts should be empty, got %q", got)
	}
	if got := VoltageBar(-12, 12, 10); strings.Count(got, "█") != 10 {
		t.Errorf("full negative should fill the bar, got %q", got)
	}
	if got := VoltageBar(6, 12, 10); strings.Count(got, "█") != 5 {
		t.Errorf("half should fill half, got %q", got)
	}
}

package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/pivotsim/internal/pivot"
	"github.com/san-kum/pivotsim/internal/rig"
	"github.com/san-kum/pivotsim/internal/units"
	"github.com/san-kum/pivotsim/internal/viz"
)

const (
	canvasWidth  = 40
	canvasHeight = 20
	plotWidth    = 40
	setpointStep = 5.0
	heightStep   = 0.1
)

type TickMsg time.Time

type screen int

const (
	screenMenu screen = iota
	screenLive
)

// Builder makes a fresh rig for a preset name.
type Builder func(preset string) (*rig.Rig, error)

// Model is the live dashboard. With a Builder it opens on a preset menu;
// otherwise it drives the rig it was given.
type Model struct {
	screen  screen
	presets []string
	cursor  int
	build   Builder

	rig      *rig.Rig
	canvas   *viz.Canvas
	running  bool
	showHelp bool
	lastErr  error
}

func NewMenuModel(presets []string, build Builder) Model {
	return Model{screen: screenMenu, presets: presets, build: build}
}

func NewLiveModel(r *rig.Rig) Model {
	return Model{
		screen:  screenLive,
		rig:     r,
		canvas:  viz.NewCanvas(canvasWidth, canvasHeight),
		running: true,
	}
}

func tick(period float64) tea.Cmd {
	return tea.Tick(time.Duration(period*float64(time.Second)), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	if m.screen == screenLive {
		return tick(m.rig.Config.Period)
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.screen == screenMenu {
			return m.updateMenu(msg)
		}
		return m.updateLive(msg)
	case TickMsg:
		if m.screen != screenLive {
			return m, nil
		}
		if m.running {
			if err := m.rig.Tick(m.rig.Config.Period); err != nil {
				m.lastErr = err
			}
		}
		return m, tick(m.rig.Config.Period)
	}
	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter":
		if len(m.presets) == 0 {
			return m, nil
		}
		r, err := m.build(m.presets[m.cursor])
		if err != nil {
			m.lastErr = err
			return m, nil
		}
		live := NewLiveModel(r)
		live.presets, live.cursor, live.build = m.presets, m.cursor, m.build
		return live, live.Init()
	}
	return m, nil
}

func (m Model) updateLive(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.rig.Pivot
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		if m.build != nil {
			menu := NewMenuModel(m.presets, m.build)
			menu.cursor = m.cursor
			return menu, nil
		}
	case " ":
		m.running = !m.running
	case "left", "h":
		p.SetAngle(p.Setpoint() - setpointStep)
	case "right", "l":
		p.SetAngle(p.Setpoint() + setpointStep)
	case "p":
		p.RequestProfiledMove(units.DegreesToRadians(p.Setpoint()))
	case "up", "k":
		if e := m.rig.Elevator; e != nil {
			e.SetHeight(e.Setpoint() + heightStep)
		}
	case "down", "j":
		if e := m.rig.Elevator; e != nil {
			e.SetHeight(e.Setpoint() - heightStep)
		}
	case "d":
		m.rig.Driver.SetConnected(!m.rig.Driver.Connected())
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m Model) View() string {
	if m.screen == screenMenu {
		return m.viewMenu()
	}
	return m.viewLive()
}

func (m Model) viewMenu() string {
	var s strings.Builder
	s.WriteString(viz.Title.Render("PIVOTSIM") + "\n\n")
	for i, name := range m.presets {
		line := "  " + name
		if i == m.cursor {
			line = viz.StatusRunning.Render("> " + name)
		}
		s.WriteString(line + "\n")
	}
	if m.lastErr != nil {
		s.WriteString("\n" + viz.StatusFault.Render(m.lastErr.Error()) + "\n")
	}
	s.WriteString("\n" + viz.KeyHint.Render("↑↓ select  enter run  q quit"))
	return viz.Panel.Render(s.String())
}

func (m Model) viewLive() string {
	w, h := m.rig.WorldSize()
	m.rig.Scene.Draw(m.canvas, w, h)
	canvasView := viz.Panel.Render(m.canvas.String())

	snap := m.rig.Pivot.Snapshot()
	cfg := m.rig.Config

	status := viz.StatusRunning.Render("RUNNING")
	if !m.running {
		status = viz.StatusPaused.Render("PAUSED")
	}
	if snap.Stale {
		status += "  " + viz.StatusFault.Render("STALE")
	}

	var s strings.Builder
	s.WriteString(viz.Title.Render(strings.ToUpper(cfg.Name)) + "  " + status + "\n\n")

	row := func(label, value string) {
		s.WriteString(viz.MetricLabel.Render(label) + viz.MetricValue.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", snap.Time))
	row("Mode", snap.Mode.String())
	row("Angle", fmt.Sprintf("%7.2f°", units.RadiansToDegrees(snap.AngleRad)))
	if snap.Mode == pivot.DriverProfiled {
		row("Target", fmt.Sprintf("%7.2f°", units.RadiansToDegrees(snap.ProfileTarget)))
	} else {
		row("Setpoint", fmt.Sprintf("%7.2f°", snap.SetpointDeg))
	}
	row("Effort", fmt.Sprintf("%6.2f V", snap.Command))
	s.WriteString(viz.MetricLabel.Render("") + viz.VoltageBar(snap.Command, cfg.MaxVoltage, 20) + "\n")
	row("Feedforward", fmt.Sprintf("%6.2f V", snap.Feedforward))
	row("Feedback", fmt.Sprintf("%6.2f V", snap.Feedback))
	row("Faults", fmt.Sprintf("%d", snap.Faults))
	if e := m.rig.Elevator; e != nil {
		row("Elevator", fmt.Sprintf("%.2f m → %.2f m", e.Height(), e.Setpoint()))
	}

	if hist := m.rig.Table.History(pivot.KeyAngle); len(hist) > 1 {
		chart := asciigraph.Plot(hist, asciigraph.Height(6), asciigraph.Width(plotWidth), asciigraph.Caption("Angle (deg)"))
		s.WriteString("\n" + chart + "\n")
	}
	if hist := m.rig.Table.History(pivot.KeyEffort); len(hist) > 0 {
		s.WriteString("\n" + viz.SparklineChart(hist, plotWidth) + "\n")
	}

	if m.lastErr != nil {
		s.WriteString("\n" + viz.StatusFault.Render(m.lastErr.Error()) + "\n")
	}
	s.WriteString("\n" + viz.KeyHint.Render("←→ setpoint  p profiled  ↑↓ elevator  d cable  space pause  ? help  q quit"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, viz.Panel.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + main
	}
	return main
}

const helpText = `
  ←/h →/l   setpoint -/+ 5°
  p         profiled move to the setpoint
  ↑/k ↓/j   elevator height -/+ 0.1 m
  d         pull or reseat the motor cable
  space     pause
  esc       back to presets
  q         quit
`

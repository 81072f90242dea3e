// Package viz renders a live terminal view of a running ensemble: a
// phase-colored braille scatter, order-parameter history, and keys to tune
// couplings, chirality, and the target point between ticks.
package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/swarmlab/internal/metrics"
	"github.com/san-kum/swarmlab/internal/seed"
	"github.com/san-kum/swarmlab/internal/swarm"
)

const (
	canvasWidth     = 60
	canvasHeight    = 24
	historyCapacity = 400
	stepsPerFrame   = 2
	targetStep      = 0.1
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(42)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

type TickMsg time.Time

// Model is the bubbletea model wrapping one live engine.
type Model struct {
	engine *swarm.Engine
	spec   seed.Spec
	dt     float64
	t      float64

	canvas        *Canvas
	running       bool
	selected      int // 0 = K, 1 = J
	coherenceHist []float64

	chirality []float64 // toggled in and out with 'c'
	tx, ty    float64
	hasTarget bool

	err error
}

// NewModel builds the engine from spec and wraps it for display.
func NewModel(spec seed.Spec, dt float64) (Model, error) {
	engine, err := buildEngine(spec)
	if err != nil {
		return Model{}, err
	}

	m := Model{
		engine:        engine,
		spec:          spec,
		dt:            dt,
		canvas:        NewCanvas(canvasWidth, canvasHeight),
		running:       true,
		coherenceHist: make([]float64, 0, historyCapacity),
		chirality:     flatChirality(spec),
	}
	if len(spec.Target) == 2 {
		m.tx, m.ty = spec.Target[0], spec.Target[1]
		m.hasTarget = true
	}
	return m, nil
}

// Run starts the live view and blocks until the user quits.
func Run(spec seed.Spec, dt float64) error {
	m, err := NewModel(spec, dt)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func buildEngine(spec seed.Spec) (*swarm.Engine, error) {
	params, err := seed.Build(spec)
	if err != nil {
		return nil, err
	}
	return swarm.New(params)
}

// flatChirality gives the toggle key something to install when the spec
// itself carries no chirality: half the agents spin one way, half the other.
func flatChirality(spec seed.Spec) []float64 {
	c := make([]float64, spec.Agents)
	spin := spec.ChiralitySpin
	if spin == 0 {
		spin = 1.0
	}
	for i := range c {
		if i < len(c)/2 {
			c[i] = spin
		} else {
			c[i] = -spin
		}
	}
	return c
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input and advances the simulation. Every engine mutation
// happens between ticks, never mid-step.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "tab":
			m.selected = (m.selected + 1) % 2
		case "up", "k":
			m.adjustParam(0.05)
		case "down", "j":
			m.adjustParam(-0.05)
		case "c":
			m.toggleChirality()
		case "left":
			m.moveTarget(-targetStep, 0)
		case "right":
			m.moveTarget(targetStep, 0)
		case "shift+up":
			m.moveTarget(0, targetStep)
		case "shift+down":
			m.moveTarget(0, -targetStep)
		case "x":
			m.engine.ClearTarget()
			m.hasTarget = false
		}
	case TickMsg:
		if m.running {
			for i := 0; i < stepsPerFrame; i++ {
				m.engine.Update(m.dt)
				m.t += m.dt
			}
			m.record()
		}
		return m, tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m *Model) adjustParam(delta float64) {
	if m.selected == 0 {
		m.engine.SetK(m.engine.K() + delta)
	} else {
		m.engine.SetJ(m.engine.J() + delta)
	}
}

func (m *Model) toggleChirality() {
	if m.engine.Chiral() {
		m.err = m.engine.SetChirality(nil)
	} else {
		m.err = m.engine.SetChirality(m.chirality)
	}
}

func (m *Model) moveTarget(dx, dy float64) {
	if !m.hasTarget {
		m.tx, m.ty = 0, 0
	}
	m.tx += dx
	m.ty += dy
	m.err = m.engine.SetTarget([]float64{m.tx, m.ty})
	m.hasTarget = true
}

func (m *Model) reset() {
	engine, err := buildEngine(m.spec)
	if err != nil {
		m.err = err
		return
	}
	m.engine = engine
	m.t = 0
	m.coherenceHist = m.coherenceHist[:0]
	if len(m.spec.Target) == 2 {
		m.tx, m.ty = m.spec.Target[0], m.spec.Target[1]
		m.hasTarget = true
	} else {
		m.hasTarget = false
	}
}

func (m *Model) record() {
	m.coherenceHist = append(m.coherenceHist, metrics.Coherence(m.engine.Phases()))
	if len(m.coherenceHist) > historyCapacity {
		m.coherenceHist = m.coherenceHist[1:]
	}
}

// View renders the scatter and the side panel.
func (m Model) View() string {
	m.draw()

	var s strings.Builder
	s.WriteString(headerStyle.Render("SWARMALATORS") + "\n")

	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	}
	if !m.engine.Valid() {
		status = "DEGENERATE (NaN)"
	}
	s.WriteString(status + "\n\n")

	if len(m.coherenceHist) > 1 {
		chart := asciigraph.Plot(m.coherenceHist,
			asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("coherence"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.1fs", m.t)) + "\n")
	s.WriteString(labelStyle.Render("Agents") + valueStyle.Render(fmt.Sprintf("%d", m.engine.Agents())) + "\n")

	coherence := 0.0
	if len(m.coherenceHist) > 0 {
		coherence = m.coherenceHist[len(m.coherenceHist)-1]
	}
	s.WriteString(labelStyle.Render("Coherence") + valueStyle.Render(fmt.Sprintf("%.3f", coherence)) + "\n")

	chiral := "off"
	if m.engine.Chiral() {
		chiral = "on"
	}
	s.WriteString(labelStyle.Render("Chirality") + valueStyle.Render(chiral) + "\n")

	target := "none"
	if x, y, ok := m.engine.Target(); ok {
		target = fmt.Sprintf("(%.1f, %.1f)", x, y)
	}
	s.WriteString(labelStyle.Render("Target") + valueStyle.Render(target) + "\n")

	s.WriteString("\nPARAMETERS\n")
	s.WriteString(m.paramLine("K", m.engine.K(), 0) + "\n")
	s.WriteString(m.paramLine("J", m.engine.J(), 1) + "\n")

	if m.err != nil {
		s.WriteString("\n" + activeStyle.Render(m.err.Error()) + "\n")
	}

	s.WriteString(helpStyle.Render("─────────────────────\nSP:Pause R:Reset Q:Quit\nTab:Param ↑↓:Tune C:Chirality\n←→/S-↑↓:Target X:Clear"))

	return lipgloss.JoinHorizontal(lipgloss.Top,
		canvasStyle.Render(m.canvas.String()),
		statsStyle.Render(s.String()),
	)
}

func (m Model) paramLine(name string, val float64, idx int) string {
	line := fmt.Sprintf("%-4s %+.2f", name, val)
	if idx == m.selected {
		return activeStyle.Render("> " + line)
	}
	return "  " + labelStyle.Render(line)
}

// draw projects the ensemble into the canvas with adaptive bounds.
func (m Model) draw() {
	m.canvas.Clear()

	n := m.engine.Agents()
	positions := m.engine.Positions()
	phases := m.engine.Phases()

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for i := 0; i < n; i++ {
		minX = math.Min(minX, positions[i*2])
		maxX = math.Max(maxX, positions[i*2])
		minY = math.Min(minY, positions[i*2+1])
		maxY = math.Max(maxY, positions[i*2+1])
	}
	if tx, ty, ok := m.engine.Target(); ok {
		minX = math.Min(minX, tx)
		maxX = math.Max(maxX, tx)
		minY = math.Min(minY, ty)
		maxY = math.Max(maxY, ty)
	}

	spanX := maxX - minX
	spanY := maxY - minY
	if spanX == 0 || math.IsNaN(spanX) {
		spanX = 1
	}
	if spanY == 0 || math.IsNaN(spanY) {
		spanY = 1
	}
	// Pad so edge agents stay visible.
	minX -= spanX * 0.05
	minY -= spanY * 0.05
	spanX *= 1.1
	spanY *= 1.1

	cw, ch := float64(canvasWidth*2-1), float64(canvasHeight*4-1)
	for i := 0; i < n; i++ {
		x := (positions[i*2] - minX) / spanX * cw
		y := (1 - (positions[i*2+1]-minY)/spanY) * ch
		if math.IsNaN(x) || math.IsNaN(y) {
			continue
		}
		m.canvas.Set(int(x), int(y), phases[i])
	}

	if tx, ty, ok := m.engine.Target(); ok {
		x := (tx - minX) / spanX * cw
		y := (1 - (ty-minY)/spanY) * ch
		m.canvas.SetMark(int(x), int(y), '✛')
	}
}
